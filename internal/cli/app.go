package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/roach88/flightbook/internal/booking"
	"github.com/roach88/flightbook/internal/cache"
	"github.com/roach88/flightbook/internal/config"
	"github.com/roach88/flightbook/internal/retry"
	"github.com/roach88/flightbook/internal/store"
)

// app bundles everything a command needs to talk to the database.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	store   *store.Store
	cache   cache.Cache
	service *booking.Service
}

// loadConfig resolves the configuration and applies flag overrides.
func (o *RootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}

	if o.Driver != "" {
		cfg.Database.Driver = o.Driver
	}
	if o.Database != "" {
		cfg.Database.DSN = o.Database
	}
	if o.Verbose {
		cfg.LogLevel = "debug"
	}
	if o.Driver != "" || o.Database != "" {
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

// newLogger builds the text handler used by every command.
func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
}

// openApp loads the configuration, opens the store and, when enabled, the
// Redis cache. Callers must Close the result.
func openApp(ctx context.Context, opts *RootOptions, logOut io.Writer) (*app, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	logger := newLogger(logOut, cfg)
	slog.SetDefault(logger)

	logger.Debug("opening database", "driver", cfg.Database.Driver)
	st, err := store.OpenDriver(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	var c cache.Cache = cache.NewNoOpCache()
	if cfg.Cache.Enabled {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			TTL:      cfg.Cache.TTL,
		})
		if err != nil {
			// Searches still work without the cache.
			logger.Warn("search cache unavailable", "addr", cfg.Cache.Addr, "error", err)
		} else {
			c = rc
			logger.Debug("search cache enabled", "addr", cfg.Cache.Addr, "ttl", cfg.Cache.TTL)
		}
	}

	svc := booking.NewService(st, booking.Options{
		Cache: c,
		Retry: retry.Policy{
			Limiter: retry.NewLimiter(cfg.Retry.Backoff, cfg.Retry.Burst),
			Logger:  logger,
		},
		Logger: logger,
	})

	return &app{cfg: cfg, logger: logger, store: st, cache: c, service: svc}, nil
}

// purgeCache drops cached search results after the flight table changed.
func (a *app) purgeCache(ctx context.Context) {
	rc, ok := a.cache.(*cache.RedisCache)
	if !ok {
		return
	}
	if err := rc.Purge(ctx); err != nil {
		a.logger.Warn("failed to purge search cache", "error", err)
		return
	}
	a.logger.Debug("purged search cache")
}

// Close releases the cache and the database.
func (a *app) Close() error {
	return errors.Join(a.cache.Close(), a.store.Close())
}
