package server

import (
	"context"
	"time"

	"github.com/assistflowpro-cyber/assistflow-backend/core/cache"
	"github.com/assistflowpro-cyber/assistflow-backend/core/config"
	"github.com/assistflowpro-cyber/assistflow-backend/core/crypto"
	"github.com/assistflowpro-cyber/assistflow-backend/core/database"
	"github.com/assistflowpro-cyber/assistflow-backend/core/logger"

	"github.com/redis/go-redis/v9"
)

// Infra holds the process-wide resources shared by the API server and the
// worker. Redis is nil when REDIS_ADDR is not set.
type Infra struct {
	Config *config.Config
	DB     *database.Database
	Cipher *crypto.Cipher
	Redis  *redis.Client
	Locker cache.Locker
}

func NewInfra(ctx context.Context, cfg *config.Config) (*Infra, error) {
	cipher, err := crypto.NewCipher(cfg.Security.EncryptionKey)
	if err != nil {
		return nil, err
	}

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return nil, err
	}

	infra := &Infra{Config: cfg, DB: db, Cipher: cipher}

	lockOpts := cache.LockOptions{
		TTL:  time.Duration(cfg.Calendar.LockTTLSeconds) * time.Second,
		Wait: time.Duration(cfg.Calendar.LockWaitSeconds) * time.Second,
	}

	if cfg.Redis.Enabled() {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		infra.Redis = client
		infra.Locker = cache.NewRedisLocker(client, "lock:", lockOpts)
	} else {
		logger.Warn("Server:NewInfra:NoRedis", "locker", "local")
		infra.Locker = cache.NewLocalLocker(lockOpts.Wait)
	}

	return infra, nil
}

func (i *Infra) Close() {
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			logger.Error("Server:Infra:RedisCloseError", "error", err)
		}
	}
	if err := i.DB.Close(); err != nil {
		logger.Error("Server:Infra:DatabaseCloseError", "error", err)
	}
}
