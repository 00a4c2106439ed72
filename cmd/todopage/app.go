package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cirocosta/todopage/internal/api"
	"github.com/cirocosta/todopage/internal/config"
	"github.com/cirocosta/todopage/internal/identity"
	"github.com/cirocosta/todopage/internal/pagecache"
	"github.com/cirocosta/todopage/internal/repository"
	"github.com/cirocosta/todopage/internal/service"
)

// app is the wired server and whatever must be released on shutdown
type app struct {
	handler http.Handler
	closers []func()
}

func (a *app) close() {
	// release in reverse order of acquisition
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	a := &app{}

	repo, err := a.newRepository(ctx, cfg.Store, logger)
	if err != nil {
		a.close()
		return nil, err
	}

	cache, err := a.newCache(ctx, cfg, logger)
	if err != nil {
		a.close()
		return nil, err
	}

	resolver, err := newResolver(cfg.Identity)
	if err != nil {
		a.close()
		return nil, err
	}

	svc := service.NewTodoService(repo, cache, service.OptionsFor(resolver.Mode()), logger)

	a.handler = api.NewRouter(api.Deps{
		Service:    svc,
		Resolver:   resolver,
		Cache:      cache,
		Logger:     logger,
		Env:        cfg.App.Env,
		Version:    cfg.App.Version,
		CookieName: cfg.Identity.CookieName,
	})

	return a, nil
}

func (a *app) newRepository(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (repository.TodoRepository, error) {
	switch cfg.Driver {
	case config.StorePostgres:
		pool, err := repository.NewPGPool(ctx, cfg.DSN, cfg.MaxConns)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		logger.Info("connected to postgres", "max_conns", cfg.MaxConns)

		return repository.NewPGTodoRepository(pool), nil
	default:
		logger.Warn("using in-memory store, todos are lost on restart")
		return repository.NewInMemoryTodoRepository(), nil
	}
}

func (a *app) newCache(ctx context.Context, cfg config.Config, logger *slog.Logger) (pagecache.Cache, error) {
	ttl := cfg.Cache.TTL.Duration()

	switch cfg.Cache.Driver {
	case config.CacheRedis:
		opts, err := cfg.Redis.Options()
		if err != nil {
			return nil, err
		}
		rdb := redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
		}
		a.closers = append(a.closers, func() {
			if err := rdb.Close(); err != nil {
				logger.Error("close redis", "error", err)
			}
		})
		logger.Info("connected to redis", "addr", opts.Addr, "tls", opts.TLSConfig != nil, "ttl", ttl.String())

		return pagecache.NewRedis(rdb, ttl), nil
	case config.CacheNone:
		return pagecache.Nop{}, nil
	default:
		return pagecache.NewMemory(ttl), nil
	}
}

func newResolver(cfg config.IdentityConfig) (identity.Resolver, error) {
	if cfg.Mode == config.IdentityFixed {
		fixed, err := identity.NewFixed(cfg.FixedUserID)
		if err != nil {
			return nil, err
		}
		return fixed, nil
	}

	session, err := identity.NewSession(identity.SessionConfig{
		Secret:     []byte(cfg.JWTSecret),
		Audience:   cfg.JWTAudience,
		CookieName: cfg.CookieName,
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}
