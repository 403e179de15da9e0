package service

import (
	"context"
	"net/url"
	"time"

	"github.com/assistflowpro-cyber/assistflow-backend/core/constants"
	"github.com/assistflowpro-cyber/assistflow-backend/core/errors"
	"github.com/assistflowpro-cyber/assistflow-backend/core/logger"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/entity"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/provider"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/repository"
)

// TokenCipher encrypts tokens before they reach storage.
type TokenCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(opaque string) (string, error)
}

type CallbackResult struct {
	Status string // constants.StatusConnected or constants.StatusError
	UserID string
}

// RedirectURL is where the browser goes after the callback.
func (r CallbackResult) RedirectURL(frontendURL string) string {
	q := url.Values{}
	q.Set("status", r.Status)
	if r.Status == constants.StatusConnected {
		q.Set("userId", r.UserID)
	}
	return frontendURL + constants.SettingsPath + "?" + q.Encode()
}

// OAuthFlow runs the consent half of connecting a calendar: building the
// consent URL and turning the returned code into a stored connection.
type OAuthFlow struct {
	provider    provider.Provider
	cipher      TokenCipher
	connections repository.ConnectionRepository
	now         func() time.Time
}

func NewOAuthFlow(p provider.Provider, cipher TokenCipher, connections repository.ConnectionRepository) *OAuthFlow {
	return &OAuthFlow{
		provider:    p,
		cipher:      cipher,
		connections: connections,
		now:         time.Now,
	}
}

// Start returns the consent URL; userID is passed through as the OAuth state.
func (f *OAuthFlow) Start(userID string) (string, error) {
	if userID == "" {
		return "", errors.NewAppError(errors.ErrInvalidInput, "state (user id) is required", nil)
	}
	return f.provider.AuthCodeURL(userID), nil
}

// Callback never returns an error: every failure is logged and reported as
// an error status, and nothing is stored.
func (f *OAuthFlow) Callback(ctx context.Context, code, state string) CallbackResult {
	fail := CallbackResult{Status: constants.StatusError, UserID: state}

	if code == "" || state == "" {
		logger.Warn("OAuthFlow:Callback:MissingParams", "has_code", code != "", "has_state", state != "")
		return fail
	}

	token, err := f.provider.Exchange(ctx, code)
	if err != nil {
		logger.Error("OAuthFlow:Callback:ExchangeError", "user_id", state, "error", err)
		return fail
	}

	access, err := f.cipher.Encrypt(token.AccessToken)
	if err != nil {
		logger.Error("OAuthFlow:Callback:EncryptError", "user_id", state, "error", err)
		return fail
	}

	var refresh *string
	if token.RefreshToken != "" {
		enc, err := f.cipher.Encrypt(token.RefreshToken)
		if err != nil {
			logger.Error("OAuthFlow:Callback:EncryptError", "user_id", state, "error", err)
			return fail
		}
		refresh = &enc
	}

	now := f.now().UTC()
	conn := &entity.CalendarConnection{
		UserID:       state,
		Provider:     constants.ProviderGoogle,
		AccessToken:  access,
		RefreshToken: refresh,
		UpdatedAt:    now,
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry.UTC()
		conn.ExpiresAt = &expiry
	}

	if err := f.connections.Upsert(ctx, conn); err != nil {
		logger.Error("OAuthFlow:Callback:StoreError", "user_id", state, "error", err)
		return fail
	}

	logger.Info("OAuthFlow:Callback:Connected", "user_id", state, "has_refresh_token", refresh != nil)
	return CallbackResult{Status: constants.StatusConnected, UserID: state}
}
