package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/gatehouse-authz/gatehouse/internal/app"
	"github.com/gatehouse-authz/gatehouse/internal/authz"
	"github.com/gatehouse-authz/gatehouse/internal/loader"
	"github.com/gatehouse-authz/gatehouse/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	l := loader.New()
	policies, err := l.LoadPolicies(cfg.PolicyPath)
	if err != nil {
		logger.Error("load policies", slog.Any("error", err))
		os.Exit(1)
	}
	entities, _, err := l.LoadEntities(cfg.EntitiesPath)
	if err != nil {
		logger.Error("load entities", slog.Any("error", err))
		os.Exit(1)
	}

	store := authz.NewStore(entities, policies)
	reloadJob := jobs.NewPolicyReloadJob(store, l, logger, cfg.PolicyPath, cfg.EntitiesPath)

	reloadTask, err := jobs.NewPolicyReloadTask(jobs.PolicyReloadPayload{})
	if err != nil {
		logger.Error("build reload task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskPolicyReload, Handler: reloadJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.ReloadCron, Task: reloadTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("redis", cfg.RedisAddr), slog.String("cron", cfg.ReloadCron))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
