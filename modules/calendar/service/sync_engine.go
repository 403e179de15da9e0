package service

import (
	"context"
	"time"

	"github.com/assistflowpro-cyber/assistflow-backend/core/constants"
	"github.com/assistflowpro-cyber/assistflow-backend/core/errors"
	"github.com/assistflowpro-cyber/assistflow-backend/core/logger"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/entity"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/mapper"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/provider"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/repository"
)

type SyncResult struct {
	Count int
}

// SyncEngine replaces a user's mirrored events with the provider's current
// upcoming events. It does not lock; callers serialize per user.
type SyncEngine struct {
	connections       repository.ConnectionRepository
	events            repository.EventRepository
	provider          provider.Provider
	cipher            TokenCipher
	refreshBeforeSync bool
	now               func() time.Time
}

func NewSyncEngine(
	connections repository.ConnectionRepository,
	events repository.EventRepository,
	p provider.Provider,
	cipher TokenCipher,
	refreshBeforeSync bool,
) *SyncEngine {
	return &SyncEngine{
		connections:       connections,
		events:            events,
		provider:          p,
		cipher:            cipher,
		refreshBeforeSync: refreshBeforeSync,
		now:               time.Now,
	}
}

func (e *SyncEngine) Sync(ctx context.Context, userID string) (*SyncResult, error) {
	conn, err := e.connections.Get(ctx, userID, constants.ProviderGoogle)
	if err != nil {
		if errors.HasCode(err, errors.ErrNotFound) {
			return nil, errors.NotConnectedError(userID)
		}
		return nil, errors.StoreError("failed to load calendar connection", err)
	}

	accessToken, err := e.cipher.Decrypt(conn.AccessToken)
	if err != nil {
		logger.Error("SyncEngine:Sync:DecryptError", "user_id", userID, "error", err)
		return nil, err
	}

	if e.refreshBeforeSync {
		accessToken, err = e.ensureValidToken(ctx, conn, accessToken)
		if err != nil {
			return nil, err
		}
	}

	now := e.now().UTC()
	items, err := e.provider.ListUpcomingEvents(ctx, accessToken, now, constants.SyncMaxResults)
	if err != nil {
		return nil, errors.ProviderError("failed to fetch events from Google Calendar", err)
	}

	events := mapper.ToExternalEvents(userID, items, now)
	if err := e.events.ReplaceAll(ctx, userID, constants.ProviderGoogle, events); err != nil {
		return nil, errors.StoreError("failed to store synced events", err)
	}

	logger.Info("SyncEngine:Sync:Success", "user_id", userID, "count", len(events))
	return &SyncResult{Count: len(events)}, nil
}

// ensureValidToken refreshes the access token when it is about to expire and a
// refresh token is stored, persisting the new tokens before returning.
func (e *SyncEngine) ensureValidToken(ctx context.Context, conn *entity.CalendarConnection, accessToken string) (string, error) {
	now := e.now().UTC()
	if !conn.IsExpired(now, constants.TokenExpirySkew) || conn.RefreshToken == nil {
		return accessToken, nil
	}

	logger.Info("SyncEngine:ensureValidToken:Refreshing", "user_id", conn.UserID)

	refreshToken, err := e.cipher.Decrypt(*conn.RefreshToken)
	if err != nil {
		logger.Error("SyncEngine:ensureValidToken:DecryptError", "user_id", conn.UserID, "error", err)
		return "", err
	}

	token, err := e.provider.RefreshToken(ctx, refreshToken)
	if err != nil {
		return "", errors.ProviderError("failed to refresh Google access token", err)
	}

	encAccess, err := e.cipher.Encrypt(token.AccessToken)
	if err != nil {
		return "", err
	}
	conn.AccessToken = encAccess

	if token.RefreshToken != "" && token.RefreshToken != refreshToken {
		encRefresh, err := e.cipher.Encrypt(token.RefreshToken)
		if err != nil {
			return "", err
		}
		conn.RefreshToken = &encRefresh
	}

	if !token.Expiry.IsZero() {
		expiry := token.Expiry.UTC()
		conn.ExpiresAt = &expiry
	}
	conn.UpdatedAt = now

	if err := e.connections.Upsert(ctx, conn); err != nil {
		return "", errors.StoreError("failed to store refreshed token", err)
	}

	logger.Info("SyncEngine:ensureValidToken:Success", "user_id", conn.UserID)
	return token.AccessToken, nil
}
