package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"pouch/internal/config"
	"pouch/internal/store"
	"pouch/internal/store/memory"
	"pouch/internal/store/sqlite"
)

// loadConfig resolves the effective config: file (explicit or discovered),
// then flag overrides on top.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if opts.ConfigPath != "" {
		cfg, _, err = config.LoadFromPath(opts.ConfigPath)
	} else {
		cfg, _, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if opts.Backend != "" {
		cfg.Database.Backend = opts.Backend
	}
	if opts.DBPath != "" {
		cfg.Database.Path = opts.DBPath
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the CLI logger. Diagnostics go to stderr so JSON output
// on stdout stays parseable.
func newLogger(cfg *config.Config, opts *RootOptions) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if opts.Verbose && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// openStore builds and opens the configured backend. The returned close
// function is safe to defer.
func openStore(ctx context.Context, opts *RootOptions) (store.Store, func(), error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	log := newLogger(cfg, opts)

	var s store.Store
	switch cfg.Database.Backend {
	case config.BackendMemory:
		s = memory.New()
	default:
		s = sqlite.New(sqlite.Config{
			Path:        cfg.Database.Path,
			BusyTimeout: cfg.Database.BusyTimeout.Duration(),
			Logger:      log,
		})
	}

	if err := s.Open(ctx); err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	closeFn := func() {
		if err := s.Close(); err != nil {
			log.Warn().Err(err).Msg("close store")
		}
	}
	return s, closeFn, nil
}
