package service

import (
	"context"

	"github.com/assistflowpro-cyber/assistflow-backend/core/cache"
	"github.com/assistflowpro-cyber/assistflow-backend/core/constants"
	"github.com/assistflowpro-cyber/assistflow-backend/core/errors"
	"github.com/assistflowpro-cyber/assistflow-backend/core/logger"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/dto"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/entity"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/mapper"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/repository"
)

// SyncEnqueuer schedules a sync to run in the background worker.
type SyncEnqueuer interface {
	EnqueueSync(ctx context.Context, userID string) error
}

type CalendarService interface {
	// Connection lifecycle
	Connect(userID string) (string, error)
	Callback(ctx context.Context, code, state string) CallbackResult
	Sync(ctx context.Context, userID string) (*SyncResult, error)
	Disconnect(ctx context.Context, userID string) error

	// Read views
	GetConnection(ctx context.Context, userID string) (*dto.ConnectionStatusResponse, error)
	ListEvents(ctx context.Context, userID string) ([]entity.ExternalEvent, error)

	// Background sync
	EnqueueSync(ctx context.Context, userID string) error
	SyncAll(ctx context.Context) (int, error)
}

type calendarService struct {
	oauth       *OAuthFlow
	engine      *SyncEngine
	connections repository.ConnectionRepository
	events      repository.EventRepository
	locker      cache.Locker
	enqueuer    SyncEnqueuer
}

// NewCalendarService wires the lifecycle manager. enqueuer may be nil when no
// background worker is configured.
func NewCalendarService(
	oauth *OAuthFlow,
	engine *SyncEngine,
	connections repository.ConnectionRepository,
	events repository.EventRepository,
	locker cache.Locker,
	enqueuer SyncEnqueuer,
) CalendarService {
	return &calendarService{
		oauth:       oauth,
		engine:      engine,
		connections: connections,
		events:      events,
		locker:      locker,
		enqueuer:    enqueuer,
	}
}

func requireUserID(userID string) error {
	if userID == "" {
		return errors.NewAppError(errors.ErrInvalidInput, "userId is required", nil)
	}
	return nil
}

func lockKey(userID string) string {
	return "calendar:" + constants.ProviderGoogle + ":" + userID
}

// withUserLock runs fn while holding the per-user lock shared by sync and
// disconnect.
func (s *calendarService) withUserLock(ctx context.Context, userID string, fn func() error) error {
	lock, err := s.locker.Acquire(ctx, lockKey(userID))
	if err != nil {
		logger.Warn("CalendarService:Lock:Busy", "user_id", userID, "error", err)
		return err
	}
	defer func() {
		// The lock must be freed even when ctx was cancelled.
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Error("CalendarService:Lock:ReleaseError", "user_id", userID, "error", err)
		}
	}()
	return fn()
}

func (s *calendarService) Connect(userID string) (string, error) {
	return s.oauth.Start(userID)
}

func (s *calendarService) Callback(ctx context.Context, code, state string) CallbackResult {
	return s.oauth.Callback(ctx, code, state)
}

func (s *calendarService) Sync(ctx context.Context, userID string) (*SyncResult, error) {
	if err := requireUserID(userID); err != nil {
		return nil, err
	}

	var result *SyncResult
	err := s.withUserLock(ctx, userID, func() error {
		var err error
		result, err = s.engine.Sync(ctx, userID)
		return err
	})
	if err != nil {
		logger.Error("CalendarService:Sync:Error", "user_id", userID, "error", err)
		return nil, err
	}
	return result, nil
}

// Disconnect removes the connection and every mirrored event. It succeeds when
// there was nothing to remove.
func (s *calendarService) Disconnect(ctx context.Context, userID string) error {
	if err := requireUserID(userID); err != nil {
		return err
	}

	return s.withUserLock(ctx, userID, func() error {
		if err := s.connections.Delete(ctx, userID, constants.ProviderGoogle); err != nil {
			return errors.StoreError("failed to delete calendar connection", err)
		}
		if err := s.events.DeleteAll(ctx, userID, constants.ProviderGoogle); err != nil {
			return errors.StoreError("failed to delete mirrored events", err)
		}
		logger.Info("CalendarService:Disconnect:Success", "user_id", userID)
		return nil
	})
}

func (s *calendarService) GetConnection(ctx context.Context, userID string) (*dto.ConnectionStatusResponse, error) {
	if err := requireUserID(userID); err != nil {
		return nil, err
	}

	conn, err := s.connections.Get(ctx, userID, constants.ProviderGoogle)
	if err != nil {
		if errors.HasCode(err, errors.ErrNotFound) {
			return mapper.ToConnectionStatusResponse(nil), nil
		}
		return nil, errors.StoreError("failed to load calendar connection", err)
	}
	return mapper.ToConnectionStatusResponse(conn), nil
}

func (s *calendarService) ListEvents(ctx context.Context, userID string) ([]entity.ExternalEvent, error) {
	if err := requireUserID(userID); err != nil {
		return nil, err
	}

	events, err := s.events.List(ctx, userID, constants.ProviderGoogle)
	if err != nil {
		return nil, errors.StoreError("failed to list events", err)
	}
	return events, nil
}

func (s *calendarService) EnqueueSync(ctx context.Context, userID string) error {
	if err := requireUserID(userID); err != nil {
		return err
	}
	if s.enqueuer == nil {
		return errors.NewAppError(errors.ErrInvalidRequestData, "background sync is not available", nil)
	}
	return s.enqueuer.EnqueueSync(ctx, userID)
}

// SyncAll schedules a sync for every connected user, or runs them inline when
// no enqueuer is configured. Per-user failures are logged and skipped.
func (s *calendarService) SyncAll(ctx context.Context) (int, error) {
	connections, err := s.connections.List(ctx, constants.ProviderGoogle)
	if err != nil {
		return 0, errors.StoreError("failed to list calendar connections", err)
	}

	scheduled := 0
	for _, conn := range connections {
		if ctx.Err() != nil {
			return scheduled, ctx.Err()
		}

		if s.enqueuer != nil {
			err = s.enqueuer.EnqueueSync(ctx, conn.UserID)
		} else {
			_, err = s.Sync(ctx, conn.UserID)
		}
		if err != nil {
			logger.Warn("CalendarService:SyncAll:UserFailed", "user_id", conn.UserID, "error", err)
			continue
		}
		scheduled++
	}

	logger.Info("CalendarService:SyncAll:Done", "connections", len(connections), "scheduled", scheduled)
	return scheduled, nil
}
