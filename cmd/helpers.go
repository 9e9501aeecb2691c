package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/barelyfunctional/site/content"
	"github.com/barelyfunctional/site/internal/config"
	"github.com/barelyfunctional/site/internal/counter"
	"github.com/barelyfunctional/site/internal/db"
	"github.com/barelyfunctional/site/internal/markdown"
	"github.com/barelyfunctional/site/internal/site"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `blog init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// contentFS returns the configured content directory, or the bundled
// content when none is set.
func contentFS(cfg *config.Config) (fs.FS, error) {
	if cfg.Content.Dir == "" {
		return content.FS, nil
	}
	info, err := os.Stat(cfg.Content.Dir)
	if err != nil {
		return nil, fmt.Errorf("content dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content dir %s is not a directory", cfg.Content.Dir)
	}
	return os.DirFS(cfg.Content.Dir), nil
}

func newSite(cfg *config.Config, logger *slog.Logger, liveReload bool) (*site.Site, error) {
	renderer, err := markdown.New(markdown.Options{
		Style:    cfg.Markdown.Style,
		Sanitize: cfg.Markdown.Sanitize,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	fsys, err := contentFS(cfg)
	if err != nil {
		return nil, err
	}
	return site.New(site.Options{
		Config:     cfg.Site,
		Renderer:   renderer,
		Content:    fsys,
		Include:    cfg.Content.Include,
		LiveReload: liveReload,
		Logger:     logger,
	})
}

// openStore opens the configured counter backend. On success the returned
// close function is never nil. A nil store means the counter is disabled.
func openStore(ctx context.Context, cfg *config.Config) (counter.Store, func(), error) {
	switch cfg.Counter.Backend {
	case config.BackendSQLite:
		database, err := db.Open(cfg.Counter.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		return counter.NewSQLiteStore(database), func() { database.Close() }, nil
	case config.BackendPostgres:
		pool, store, err := counter.ConnectPostgres(ctx, cfg.Counter.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return store, pool.Close, nil
	default:
		return nil, func() {}, nil
	}
}
