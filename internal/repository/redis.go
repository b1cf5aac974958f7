package repository

import (
	"context"
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"

	"tinylink/pkg/logging"
)

// RedisOptions configures the analytics Redis pool.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisPool returns nil when no address is configured; callers treat a nil pool as
// "daily stats disabled".
func NewRedisPool(opts RedisOptions) *redis.Pool {
	if opts.Addr == "" {
		return nil
	}

	return &redis.Pool{
		MaxIdle:     10,
		IdleTimeout: 240 * time.Second,
		DialContext: func(ctx context.Context) (redis.Conn, error) {
			conn, err := redis.DialContext(ctx, "tcp", opts.Addr,
				redis.DialPassword(opts.Password),
				redis.DialDatabase(opts.DB),
				redis.DialConnectTimeout(5*time.Second),
			)
			if err != nil {
				logging.Logger.Error("Failed to connect Redis",
					zap.String("addr", opts.Addr),
					zap.Error(err),
				)
				return nil, err
			}
			logging.Logger.Debug("Redis connection established",
				zap.String("addr", opts.Addr),
				zap.Bool("auth", opts.Password != ""),
			)
			return conn, nil
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			if err != nil {
				logging.Logger.Warn("Redis connection health check failed",
					zap.String("addr", opts.Addr),
					zap.Error(err),
				)
			}
			return err
		},
	}
}
