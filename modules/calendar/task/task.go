package task

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/assistflowpro-cyber/assistflow-backend/core/config"
	"github.com/assistflowpro-cyber/assistflow-backend/core/constants"
	"github.com/assistflowpro-cyber/assistflow-backend/core/errors"
	"github.com/assistflowpro-cyber/assistflow-backend/core/logger"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/service"

	"github.com/hibiken/asynq"
)

type SyncPayload struct {
	UserID string `json:"user_id"`
}

func NewSyncTask(userID string) (*asynq.Task, error) {
	payload, err := json.Marshal(SyncPayload{UserID: userID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(constants.TaskCalendarSync, payload), nil
}

func NewSyncAllTask() *asynq.Task {
	return asynq.NewTask(constants.TaskCalendarSyncAll, nil)
}

func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

type taskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer puts sync tasks on the queue. At most one pending sync per user is
// kept; a duplicate request is treated as already scheduled.
type Enqueuer struct {
	client taskClient
}

func NewEnqueuer(client taskClient) *Enqueuer {
	return &Enqueuer{client: client}
}

func (e *Enqueuer) EnqueueSync(ctx context.Context, userID string) error {
	t, err := NewSyncTask(userID)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to build sync task", err)
	}

	info, err := e.client.EnqueueContext(ctx, t,
		asynq.Queue(constants.QueueDefault),
		asynq.MaxRetry(0),
		asynq.Unique(constants.SyncTaskUniqueTTL),
	)
	if err != nil {
		if stderrors.Is(err, asynq.ErrDuplicateTask) {
			logger.Debug("Task:EnqueueSync:AlreadyQueued", "user_id", userID)
			return nil
		}
		logger.Error("Task:EnqueueSync:Error", "user_id", userID, "error", err)
		return errors.NewAppError(errors.ErrInternalServer, "failed to enqueue sync", err)
	}

	logger.Info("Task:EnqueueSync:Queued", "user_id", userID, "task_id", info.ID)
	return nil
}

// Handler runs queued calendar tasks against the service.
type Handler struct {
	service service.CalendarService
}

func NewHandler(svc service.CalendarService) *Handler {
	return &Handler{service: svc}
}

func (h *Handler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(constants.TaskCalendarSync, h.HandleSync)
	mux.HandleFunc(constants.TaskCalendarSyncAll, h.HandleSyncAll)
}

func (h *Handler) HandleSync(ctx context.Context, t *asynq.Task) error {
	var p SyncPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("invalid sync payload: %v: %w", err, asynq.SkipRetry)
	}

	res, err := h.service.Sync(ctx, p.UserID)
	if err != nil {
		if errors.HasCode(err, errors.ErrNotConnected) || errors.HasCode(err, errors.ErrInvalidInput) {
			logger.Warn("Task:HandleSync:Skipped", "user_id", p.UserID, "error", err)
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	logger.Info("Task:HandleSync:Done", "user_id", p.UserID, "count", res.Count)
	return nil
}

func (h *Handler) HandleSyncAll(ctx context.Context, _ *asynq.Task) error {
	n, err := h.service.SyncAll(ctx)
	if err != nil {
		return err
	}
	logger.Info("Task:HandleSyncAll:Done", "scheduled", n)
	return nil
}
