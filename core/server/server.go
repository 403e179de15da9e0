package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/assistflowpro-cyber/assistflow-backend/core/config"
	"github.com/assistflowpro-cyber/assistflow-backend/core/constants"
	"github.com/assistflowpro-cyber/assistflow-backend/core/logger"
	"github.com/assistflowpro-cyber/assistflow-backend/core/utils"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/service"
	"github.com/assistflowpro-cyber/assistflow-backend/modules/calendar/task"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// NewEcho returns an echo instance with the shared middleware stack.
func NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: utils.GenerateRequestID,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			kv := []any{
				"method", v.Method,
				"path", v.URIPath,
				"status", v.Status,
				"latency", v.Latency.String(),
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				logger.Error("HTTP:Request:Error", append(kv, "error", v.Error)...)
				return nil
			}
			logger.Info("HTTP:Request", kv...)
			return nil
		},
	}))
	return e
}

func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.Init(cfg.App.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	infra, err := NewInfra(ctx, cfg)
	if err != nil {
		return err
	}
	defer infra.Close()

	var enqueuer service.SyncEnqueuer
	if infra.Redis != nil {
		client := asynq.NewClient(task.RedisOpt(cfg.Redis))
		defer client.Close()
		enqueuer = task.NewEnqueuer(client)
	}

	e := NewEcho()
	calendar.Init(e, cfg, calendar.Deps{
		DB:       infra.DB,
		Cipher:   infra.Cipher,
		Locker:   infra.Locker,
		Enqueuer: enqueuer,
	})

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server:Run:Listening", "addr", addr, "background_sync", enqueuer != nil)
		if err := e.Start(addr); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Error("Server:Run:Error", "error", err)
		return err
	case <-ctx.Done():
	}

	logger.Info("Server:Run:ShuttingDown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ServerShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
