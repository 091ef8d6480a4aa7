package cache

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"search-insight-miner/config"
)

// NewRedis returns nil when REDIS_HOST is empty so that optional consumers can
// fall back to another backend.
func NewRedis(lc fx.Lifecycle, cfg *config.Config, log *zap.SugaredLogger) (*redis.Client, error) {
	if strings.TrimSpace(cfg.RedisHost) == "" {
		if cfg.StoreDriver == "redis" {
			return nil, fmt.Errorf("STORE_DRIVER=redis requires REDIS_HOST")
		}
		log.Infow("redis_disabled", "reason", "missing REDIS_HOST")
		return nil, nil
	}

	client := redis.NewClient(Options(cfg))
	addr := client.Options().Addr

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := client.Ping(pingCtx).Err(); err != nil {
				_ = client.Close()
				return fmt.Errorf("redis ping failed: %w", err)
			}
			log.Infow("redis_connected", "addr", addr)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := client.Close(); err != nil {
				log.Warnw("redis_close_failed", "err", err)
			}
			return nil
		},
	})

	return client, nil
}

// Options builds client options from config; rediss enables TLS.
func Options(cfg *config.Config) *redis.Options {
	opts := &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Username: strings.TrimSpace(cfg.RedisUser),
		Password: cfg.RedisPassword,
	}
	if strings.EqualFold(strings.TrimSpace(cfg.RedisScheme), "rediss") {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts
}
