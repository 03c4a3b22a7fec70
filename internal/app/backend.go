package app

import (
	"context"
	"fmt"
	"io"
	"os"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/linkdash/internal/config"
	"github.com/MrSnakeDoc/linkdash/internal/logger"
	"github.com/MrSnakeDoc/linkdash/internal/redis"
	"github.com/MrSnakeDoc/linkdash/internal/storage"
	"github.com/MrSnakeDoc/linkdash/internal/storage/fs"
	"github.com/MrSnakeDoc/linkdash/internal/storage/sqlite"
	redisstore "github.com/MrSnakeDoc/linkdash/internal/store/redis"
	"github.com/MrSnakeDoc/linkdash/internal/utils"
)

// Backend is the storage side of the application: the primary adapter and the
// degraded-mode cache, plus the connections behind them.
type Backend struct {
	Adapter     storage.Adapter
	Cache       storage.Cache
	RedisClient *goredis.Client // nil when redis is not configured
	Ping        func(ctx context.Context) error

	closers map[string]io.Closer
}

// OpenBackend connects the configured primary adapter. Redis is mandatory
// when it is the primary storage; as a cache it is optional and the backend
// falls back to an in-memory cache when it cannot be reached.
func OpenBackend(cfg *config.Config, log logger.Logger) (*Backend, error) {
	b := &Backend{closers: make(map[string]io.Closer)}

	if cfg.RedisEnabled() {
		purpose := "cache"
		if cfg.Storage == config.StorageRedis {
			purpose = "storage"
		}
		client, err := redis.New(context.Background(), redisOptions(cfg, purpose), log)
		switch {
		case err == nil:
			b.RedisClient = client
			b.closers["redis"] = client
		case cfg.Storage == config.StorageRedis:
			return nil, fmt.Errorf("connect redis storage: %w", err)
		default:
			log.Warn("redis unavailable, using in-memory degraded-mode cache",
				logger.String("addr", cfg.RedisAddr),
				logger.Error(err))
		}
	}

	switch cfg.Storage {
	case config.StorageRedis:
		client := b.RedisClient
		b.Adapter = redisstore.NewStore(client)
		b.Ping = func(ctx context.Context) error { return redisstore.Ping(ctx, client) }

	case config.StorageSQLite:
		adapter, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			b.Close(log)
			return nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		b.Adapter = adapter
		b.Ping = adapter.Ping
		b.closers["sqlite"] = adapter

	default:
		if err := os.MkdirAll(cfg.StorageDir, 0o755); err != nil {
			b.Close(log)
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
		adapter := fs.New(cfg.StorageDir)
		b.Adapter = adapter
		b.Ping = func(context.Context) error {
			_, err := os.Stat(adapter.Root())
			return err
		}
	}

	if b.RedisClient != nil {
		b.Cache = redisstore.NewCache(b.RedisClient, cfg.RedisCacheTTL)
	} else {
		b.Cache = storage.NewMemoryCache()
	}

	log.Info("storage ready",
		logger.String("adapter", b.Adapter.Name()),
		logger.Bool("redis_cache", b.RedisClient != nil))
	return b, nil
}

// Close releases every connection opened by the backend.
func (b *Backend) Close(log logger.Logger) {
	for name, c := range b.closers {
		utils.MustClose(c, name, log)
	}
}

func redisOptions(cfg *config.Config, purpose string) redis.ConnectOptions {
	return redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
		Purpose:        purpose,
	}
}
