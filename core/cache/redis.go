package cache

import (
	"context"
	"fmt"

	"github.com/assistflowpro-cyber/assistflow-backend/core/config"
	"github.com/assistflowpro-cyber/assistflow-backend/core/constants"
	"github.com/assistflowpro-cyber/assistflow-backend/core/logger"

	"github.com/redis/go-redis/v9"
)

// NewRedis opens a client and verifies the server is reachable.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, constants.DefaultTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		logger.Error("Cache:NewRedis:PingError", "addr", cfg.Addr, "error", err)
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	logger.Info("Cache:NewRedis:Success", "addr", cfg.Addr, "db", cfg.DB)
	return client, nil
}
