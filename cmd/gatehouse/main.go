package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/gatehouse-authz/gatehouse/cmd/gatehouse/cli"
	"github.com/gatehouse-authz/gatehouse/internal/app"
	"github.com/gatehouse-authz/gatehouse/internal/loader"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(cli.ExitError)
	}
	logger := app.NewLogger(cfg)

	a := &cli.App{
		Loader:       loader.New(),
		Logger:       logger,
		Stdout:       os.Stdout,
		PolicyPath:   cfg.PolicyPath,
		EntitiesPath: cfg.EntitiesPath,
	}
	os.Exit(a.Run(context.Background(), os.Args[1:]))
}
