// Command worker runs queued calendar syncs and the periodic sync-all schedule.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/assistflowpro-cyber/assistflow-backend/core/config"
	"github.com/assistflowpro-cyber/assistflow-backend/core/constants"
	"github.com/assistflowpro-cyber/assistflow-backend/core/errors"
	"github.com/assistflowpro-cyber/assistflow-backend/core/logger"
	"github.com/assistflowpro-cyber/assistflow-backend/core/server"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/task"

	"github.com/hibiken/asynq"
)

func main() {
	if err := run(); err != nil {
		logger.Error("run worker error", "error", err)
		logger.Sync()
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.Init(cfg.App.LogLevel)
	defer logger.Sync()

	if !cfg.Redis.Enabled() {
		return errors.ConfigurationError("REDIS_ADDR is required to run the worker", nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	infra, err := server.NewInfra(ctx, cfg)
	if err != nil {
		return err
	}
	defer infra.Close()

	redisOpt := task.RedisOpt(cfg.Redis)
	client := asynq.NewClient(redisOpt)
	defer client.Close()

	svc := calendar.NewService(cfg, calendar.Deps{
		DB:       infra.DB,
		Cipher:   infra.Cipher,
		Locker:   infra.Locker,
		Enqueuer: task.NewEnqueuer(client),
	})

	mux := asynq.NewServeMux()
	task.NewHandler(svc).Register(mux)

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
		Queues:      map[string]int{constants.QueueDefault: 1},
		Logger:      logger.Zap().Sugar(),
	})
	if err := srv.Start(mux); err != nil {
		return err
	}
	defer srv.Shutdown()

	if cfg.Calendar.SyncCron != "" {
		scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Logger: logger.Zap().Sugar()})
		entryID, err := scheduler.Register(cfg.Calendar.SyncCron, task.NewSyncAllTask(),
			asynq.Queue(constants.QueueDefault),
			asynq.MaxRetry(0),
			asynq.Unique(constants.SyncTaskUniqueTTL),
		)
		if err != nil {
			return err
		}
		if err := scheduler.Start(); err != nil {
			return err
		}
		defer scheduler.Shutdown()
		logger.Info("Worker:Run:Scheduled", "cron", cfg.Calendar.SyncCron, "entry_id", entryID)
	}

	logger.Info("Worker:Run:Started", "queue", constants.QueueDefault)
	<-ctx.Done()
	logger.Info("Worker:Run:ShuttingDown")
	return nil
}
