// AngelaMos | 2026
// redis.go

package core

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/moodflow/internal/config"
)

const redisIdleTimeout = 5 * time.Minute

// Redis wraps the client used by the rate limiter. Every command inherits
// opTimeout, which keeps a stalled server from stalling requests.
type Redis struct {
	Client    *redis.Client
	opTimeout time.Duration
}

func NewRedis(ctx context.Context, cfg config.RedisConfig) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.ClientName = applicationName
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.ConnMaxIdleTime = redisIdleTimeout
	if cfg.OpTimeout > 0 {
		opts.DialTimeout = cfg.OpTimeout
		opts.ReadTimeout = cfg.OpTimeout
		opts.WriteTimeout = cfg.OpTimeout
		opts.PoolTimeout = 2 * cfg.OpTimeout
	}

	r := &Redis{
		Client:    redis.NewClient(opts),
		opTimeout: cfg.OpTimeout,
	}

	if err := r.Ping(ctx); err != nil {
		_ = r.Client.Close() //nolint:errcheck // never became usable
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	return r, nil
}

func (r *Redis) Ping(ctx context.Context) error {
	timeout := r.opTimeout
	if timeout <= 0 {
		timeout = dbConnectTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := r.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

func (r *Redis) PoolStats() *redis.PoolStats {
	return r.Client.PoolStats()
}

func (r *Redis) Close() error {
	if r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
