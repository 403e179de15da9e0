package task

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/assistflowpro-cyber/assistflow-backend/core/config"
	"github.com/assistflowpro-cyber/assistflow-backend/core/errors"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/service"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type enqueueCall struct {
	task *asynq.Task
	opts []asynq.Option
}

type fakeClient struct {
	calls []enqueueCall
	err   error
}

func (c *fakeClient) EnqueueContext(_ context.Context, t *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	c.calls = append(c.calls, enqueueCall{task: t, opts: opts})
	if c.err != nil {
		return nil, c.err
	}
	return &asynq.TaskInfo{ID: "task-1", Type: t.Type(), Payload: t.Payload()}, nil
}

// stubService overrides only what the handlers call.
type stubService struct {
	service.CalendarService
	syncUsers  []string
	syncErr    error
	syncAllN   int
	syncAllErr error
}

func (s *stubService) Sync(_ context.Context, userID string) (*service.SyncResult, error) {
	s.syncUsers = append(s.syncUsers, userID)
	if s.syncErr != nil {
		return nil, s.syncErr
	}
	return &service.SyncResult{Count: 3}, nil
}

func (s *stubService) SyncAll(context.Context) (int, error) {
	return s.syncAllN, s.syncAllErr
}

func TestNewSyncTask(t *testing.T) {
	tk, err := NewSyncTask("u1")
	require.NoError(t, err)
	assert.Equal(t, "calendar:sync", tk.Type())

	var p SyncPayload
	require.NoError(t, json.Unmarshal(tk.Payload(), &p))
	assert.Equal(t, "u1", p.UserID)

	assert.Equal(t, "calendar:sync_all", NewSyncAllTask().Type())
}

func TestRedisOpt(t *testing.T) {
	opt := RedisOpt(config.RedisConfig{Addr: "localhost:6379", Password: "pw", DB: 2})
	assert.Equal(t, "localhost:6379", opt.Addr)
	assert.Equal(t, "pw", opt.Password)
	assert.Equal(t, 2, opt.DB)
}

func TestEnqueuer_EnqueueSync(t *testing.T) {
	client := &fakeClient{}
	e := NewEnqueuer(client)

	require.NoError(t, e.EnqueueSync(context.Background(), "u1"))
	require.Len(t, client.calls, 1)
	assert.Equal(t, "calendar:sync", client.calls[0].task.Type())

	types := make(map[asynq.OptionType]any)
	for _, o := range client.calls[0].opts {
		types[o.Type()] = o.Value()
	}
	assert.Equal(t, "default", types[asynq.QueueOpt])
	assert.Equal(t, 0, types[asynq.MaxRetryOpt])
	assert.Equal(t, 5*time.Minute, types[asynq.UniqueOpt])
}

func TestEnqueuer_DuplicateIsNotAnError(t *testing.T) {
	e := NewEnqueuer(&fakeClient{err: asynq.ErrDuplicateTask})
	assert.NoError(t, e.EnqueueSync(context.Background(), "u1"))
}

func TestEnqueuer_Failure(t *testing.T) {
	e := NewEnqueuer(&fakeClient{err: stderrors.New("redis down")})
	err := e.EnqueueSync(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInternalServer))
}

func TestHandler_HandleSync(t *testing.T) {
	svc := &stubService{}
	h := NewHandler(svc)

	tk, err := NewSyncTask("u1")
	require.NoError(t, err)

	require.NoError(t, h.HandleSync(context.Background(), tk))
	assert.Equal(t, []string{"u1"}, svc.syncUsers)
}

func TestHandler_HandleSyncSkipsRetryWhenNotConnected(t *testing.T) {
	h := NewHandler(&stubService{syncErr: errors.NotConnectedError("u1")})

	tk, err := NewSyncTask("u1")
	require.NoError(t, err)

	err = h.HandleSync(context.Background(), tk)
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandler_HandleSyncProviderErrorPropagates(t *testing.T) {
	provErr := errors.ProviderError("failed to fetch events", stderrors.New("boom"))
	h := NewHandler(&stubService{syncErr: provErr})

	tk, err := NewSyncTask("u1")
	require.NoError(t, err)

	err = h.HandleSync(context.Background(), tk)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
	assert.True(t, errors.HasCode(err, errors.ErrProvider))
}

func TestHandler_HandleSyncBadPayload(t *testing.T) {
	h := NewHandler(&stubService{})
	err := h.HandleSync(context.Background(), asynq.NewTask("calendar:sync", []byte("{")))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandler_HandleSyncAll(t *testing.T) {
	h := NewHandler(&stubService{syncAllN: 4})
	assert.NoError(t, h.HandleSyncAll(context.Background(), NewSyncAllTask()))

	h = NewHandler(&stubService{syncAllErr: errors.StoreError("list failed", nil)})
	assert.Error(t, h.HandleSyncAll(context.Background(), NewSyncAllTask()))
}

func TestHandler_Register(t *testing.T) {
	mux := asynq.NewServeMux()
	NewHandler(&stubService{}).Register(mux)

	tk, err := NewSyncTask("u1")
	require.NoError(t, err)
	assert.NoError(t, mux.ProcessTask(context.Background(), tk))
}
