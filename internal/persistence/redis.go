package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/vendor-signup-service/internal/config"
)

// Redis owns the client behind the redis signup store.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds a client and probes it once. An unreachable server is
// logged, not fatal; the readiness probe keeps reporting it.
func NewRedis(ctx context.Context, cfg config.RedisConfig, appName string, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:       cfg.Addr,
		Password:   cfg.Password,
		DB:         cfg.DB,
		ClientName: appName,
	})

	fields := []zap.Field{zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB), zap.String("key_prefix", cfg.KeyPrefix)}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("unable to reach redis", append(fields, zap.Error(err))...)
	} else {
		logger.Info("connected to redis", fields...)
	}
	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping is used by the readiness probe.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}
