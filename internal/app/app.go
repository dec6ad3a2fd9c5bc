package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"aud-rate-history/internal/config"
	"aud-rate-history/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

// openStore connects the durable store and ensures its schema. The caller
// owns the returned closer.
func (a *App) openStore(ctx context.Context) (*storage.Postgres, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, errors.New("database.dsn not configured")
	}

	store, err := storage.Connect(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

// RateOptions configure a point query.
type RateOptions struct {
	Date  string
	Asset string
}

// RangeOptions configure a range query.
type RangeOptions struct {
	Start string
	End   string
	Asset string
}

// CSVOptions configure wide CSV export. An empty OutPath writes to stdout.
type CSVOptions struct {
	Date    string
	Start   string
	End     string
	OutPath string
}

// ImportOptions configure the one-time bulk archive import.
type ImportOptions struct {
	Path   string
	DryRun bool
}

// UpdateOptions configure a daily incremental update.
type UpdateOptions struct {
	Path string
}
