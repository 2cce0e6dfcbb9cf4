package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DanielPopoola/photobooth/internal/application/services"
	"github.com/DanielPopoola/photobooth/internal/config"
	"github.com/DanielPopoola/photobooth/internal/infrastructure/persistence/postgres"
	"github.com/DanielPopoola/photobooth/internal/infrastructure/storage"
)

// app holds what every subcommand needs: configuration, logger and database.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *postgres.DB
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &app{cfg: cfg, logger: logger, db: db}, nil
}

func (a *app) Close() {
	a.db.Close()
}

func (a *app) sweepService(photos *postgres.PhotoRepository) (*services.SweepService, error) {
	artifacts, err := storage.NewOSStore(a.cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare artifact storage: %w", err)
	}
	return services.NewSweepService(photos, artifacts, services.SweepOptions{
		AbandonAfter: a.cfg.Worker.AbandonAfter,
		BatchSize:    a.cfg.Worker.BatchSize,
	}, a.logger), nil
}
