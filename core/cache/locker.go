package cache

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/assistflowpro-cyber/assistflow-backend/core/constants"
	"github.com/assistflowpro-cyber/assistflow-backend/core/errors"
	"github.com/assistflowpro-cyber/assistflow-backend/core/logger"
	"github.com/assistflowpro-cyber/assistflow-backend/core/utils"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// Lock is a held keyed lock.
type Lock interface {
	Key() string
	Release(ctx context.Context) error
}

// Locker hands out exclusive locks per key. Acquire blocks until the lock is
// free, the context ends, or the locker's wait limit passes; the latter two
// return an ErrConflict AppError.
type Locker interface {
	Acquire(ctx context.Context, key string) (Lock, error)
}

type LockOptions struct {
	TTL     time.Duration // Redis only; expiry that frees a lock whose holder died
	Wait    time.Duration
	Backoff time.Duration
}

func (o LockOptions) withDefaults() LockOptions {
	if o.TTL <= 0 {
		o.TTL = constants.SyncLockTTL
	}
	if o.Wait <= 0 {
		o.Wait = constants.SyncLockWait
	}
	if o.Backoff <= 0 {
		o.Backoff = constants.SyncLockRetryBackoff
	}
	return o
}

func conflict(key string, cause error) error {
	return errors.NewAppError(errors.ErrConflict, "operation already in progress", fmt.Errorf("lock %q: %w", key, cause))
}

// RedisLocker hands out locks shared by every process on the same Redis,
// built on redsync mutexes.
type RedisLocker struct {
	rs     *redsync.Redsync
	prefix string
	opts   LockOptions
}

func NewRedisLocker(client redis.UniversalClient, prefix string, opts LockOptions) *RedisLocker {
	return &RedisLocker{
		rs:     redsync.New(goredis.NewPool(client)),
		prefix: prefix,
		opts:   opts.withDefaults(),
	}
}

type redisLock struct {
	mutex *redsync.Mutex
	key   string
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (Lock, error) {
	fullKey := l.prefix + key

	mutex := l.rs.NewMutex(fullKey,
		redsync.WithExpiry(l.opts.TTL),
		redsync.WithTries(int(l.opts.Wait/l.opts.Backoff)+1),
		redsync.WithRetryDelay(l.opts.Backoff),
		redsync.WithGenValueFunc(func() (string, error) {
			return utils.GenerateLockToken(), nil
		}),
	)

	waitCtx, cancel := context.WithTimeout(ctx, l.opts.Wait)
	defer cancel()

	if err := mutex.LockContext(waitCtx); err != nil {
		var taken *redsync.ErrTaken
		if waitCtx.Err() != nil || stderrors.Is(err, redsync.ErrFailed) || stderrors.As(err, &taken) {
			return nil, conflict(fullKey, err)
		}
		logger.Error("Cache:RedisLocker:AcquireError", "key", fullKey, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to acquire lock", err)
	}
	return &redisLock{mutex: mutex, key: fullKey}, nil
}

func (l *redisLock) Key() string {
	return l.key
}

// Release deletes the key only if this lock still owns it. A lock that
// expired or was taken over by another owner is not an error.
func (l *redisLock) Release(ctx context.Context) error {
	ok, err := l.mutex.UnlockContext(ctx)
	var taken *redsync.ErrTaken
	if err != nil && !stderrors.Is(err, redsync.ErrLockAlreadyExpired) && !stderrors.As(err, &taken) {
		logger.Error("Cache:RedisLock:ReleaseError", "key", l.key, "error", err)
		return err
	}
	if !ok {
		logger.Warn("Cache:RedisLock:ReleaseLost", "key", l.key)
	}
	return nil
}

// LocalLocker is an in-process keyed mutex for single-instance deployments.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
	wait  time.Duration
}

type slot struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker(wait time.Duration) *LocalLocker {
	if wait <= 0 {
		wait = constants.SyncLockWait
	}
	return &LocalLocker{slots: make(map[string]*slot), wait: wait}
}

type localLock struct {
	owner *LocalLocker
	key   string
	slot  *slot
	once  sync.Once
}

func (l *LocalLocker) Acquire(ctx context.Context, key string) (Lock, error) {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	select {
	case s.ch <- struct{}{}:
		return &localLock{owner: l, key: key, slot: s}, nil
	case <-waitCtx.Done():
		l.unref(key, s)
		return nil, conflict(key, waitCtx.Err())
	}
}

func (l *LocalLocker) unref(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

func (l *localLock) Key() string {
	return l.key
}

func (l *localLock) Release(context.Context) error {
	l.once.Do(func() {
		<-l.slot.ch
		l.owner.unref(l.key, l.slot)
	})
	return nil
}
