package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/tempora/adapter/cli"
	"github.com/felixgeelhaar/tempora/internal/app"
	"github.com/felixgeelhaar/tempora/pkg/config"
	"github.com/felixgeelhaar/tempora/pkg/observability"
	"github.com/google/uuid"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		cfg = &config.Config{AppEnv: "development"}
	}

	logCfg := observability.DefaultLogConfig()
	logCfg.Level = observability.LogLevel(cfg.LogLevel)
	logCfg.ServiceVersion = cli.Version
	if cfg.IsProduction() {
		logCfg.Format = observability.LogFormatJSON
	}
	logger := observability.NewLogger(logCfg)
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	userID, err := uuid.Parse(cfg.UserID)
	if err != nil {
		logger.Error("invalid TEMPORA_USER_ID", "error", err)
		os.Exit(1)
	}

	cli.SetApp(&cli.App{
		CreateTaskHandler:   container.CreateTaskHandler,
		CompleteTaskHandler: container.CompleteTaskHandler,
		UpdateTaskHandler:   container.UpdateTaskHandler,
		CancelTaskHandler:   container.CancelTaskHandler,
		GetTaskHandler:      container.GetTaskHandler,
		ListTasksHandler:    container.ListTasksHandler,
		ScheduleTaskHandler: container.ScheduleTaskHandler,
		ListChangesHandler:  container.ListChangesHandler,
		FindSlotHandler:     container.FindSlotHandler,
		MemoryService:       container.MemoryService,
		Notifier:            container.Notifier,
		CurrentUserID:       userID,
	})

	cli.Execute(ctx)
}
