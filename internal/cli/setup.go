package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/roach88/mediacore/internal/config"
	"github.com/roach88/mediacore/internal/env"
	"github.com/roach88/mediacore/internal/store"
)

// loadConfig reads the --config file, or returns defaults when none is given.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	if opts.Config == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return cfg, nil
}

// setupLogging installs the default slog text handler on w. --verbose
// forces Debug; otherwise the config's log_level applies.
func setupLogging(opts *RootOptions, cfg *config.Config, w io.Writer) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// openStorage opens the storage backend selected by cfg. The returned close
// function releases it.
func openStorage(ctx context.Context, cfg *config.Config) (env.Storage, func() error, error) {
	switch cfg.Storage.Driver {
	case "sqlite":
		slog.Debug("opening database", "path", cfg.Storage.Path)
		st, err := store.Open(cfg.Storage.Path)
		if err != nil {
			return nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		return st, st.Close, nil

	case "redis":
		slog.Debug("connecting to redis", "addr", cfg.Storage.Addr)
		rs := env.NewRedisStorage(cfg.Storage.Addr, cfg.Storage.Password, cfg.Storage.DB, cfg.Storage.Prefix)
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, nil, WrapExitError(ExitCommandError, "failed to connect to redis", err)
		}
		return rs, rs.Close, nil

	case "memory":
		return env.NewMemoryStorage(), func() error { return nil }, nil
	}
	return nil, nil, NewExitError(ExitCommandError, fmt.Sprintf("unknown storage driver %q", cfg.Storage.Driver))
}

// newLive creates the live Environment configured by cfg.
func newLive(cfg *config.Config, storage env.Storage) *env.Live {
	opts := []env.LiveOption{
		env.WithTimeout(cfg.HTTP.TimeoutDuration()),
		env.WithUserAgent(cfg.HTTP.UserAgent),
	}
	if cfg.HTTP.RateLimit > 0 {
		opts = append(opts, env.WithRateLimit(rate.Limit(cfg.HTTP.RateLimit), cfg.HTTP.Burst))
	}
	return env.NewLive(storage, opts...)
}

// session is the per-command wiring shared by commands that touch the
// network or storage.
type session struct {
	cfg     *config.Config
	storage env.Storage
	env     *env.Live
	close   func() error
}

func openSession(ctx context.Context, opts *RootOptions, logOut io.Writer) (*session, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	setupLogging(opts, cfg, logOut)

	storage, closeFn, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &session{
		cfg:     cfg,
		storage: storage,
		env:     newLive(cfg, storage),
		close:   closeFn,
	}, nil
}

// Close waits for running effects and releases the storage.
func (s *session) Close() {
	s.env.Wait()
	if err := s.close(); err != nil {
		slog.Error("error closing storage", "error", err)
	}
}
