package providers

import (
	"context"
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/sensifinder/sensifinder-server/internal/cache"
	"github.com/sensifinder/sensifinder-server/internal/config"
	"github.com/sensifinder/sensifinder-server/internal/logger"
	"github.com/sensifinder/sensifinder-server/internal/store/sqlstore"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlstore.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the profile store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Data.Path, 0o750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dsn := cfg.Database.DSN
	if cfg.Database.Driver == config.DriverSQLite && dsn == "" {
		dsn = cfg.SQLitePath()
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	db, err := sqlstore.Open(ctx, sqlstore.Options{
		Driver: sqlstore.Driver(cfg.Database.Driver),
		DSN:    dsn,
		Logger: log.Component("store"),
	})
	if err != nil {
		return nil, err
	}

	count, _ := db.CountProfiles(ctx)
	log.Info("Database initialized", "driver", cfg.Database.Driver, "profiles", count)

	return &StoreHandle{Store: db}, nil
}

// CacheHandle wraps the trending cache. Redis is optional; without an
// address the handle carries a no-op cache.
type CacheHandle struct {
	cache.TrendingCache
	redis *cache.RedisCache
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	if h.redis == nil {
		return nil
	}
	return h.redis.Close()
}

// Redis returns the redis client wrapper, or nil when caching is disabled.
func (h *CacheHandle) Redis() *cache.RedisCache {
	return h.redis
}

// ProvideTrendingCache provides the trending list cache.
func ProvideTrendingCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Redis.Addr == "" {
		log.Info("Trending cache disabled")
		return &CacheHandle{TrendingCache: cache.NewNoopCache()}, nil
	}

	rc := cache.NewRedisCache(cache.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.TTL,
		Logger:   log.Component("cache"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	// An unreachable redis degrades to uncached ranking rather than failing startup.
	if err := rc.Ping(ctx); err != nil {
		log.Warn("Redis unreachable, trending lists will be ranked per request",
			"addr", cfg.Redis.Addr,
			"error", err,
		)
	} else {
		log.Info("Trending cache connected", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
	}

	return &CacheHandle{TrendingCache: rc, redis: rc}, nil
}
