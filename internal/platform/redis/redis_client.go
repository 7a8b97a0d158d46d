// Package redis bootstraps the shared redis client used for quote caching.
package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/fuzzychicken/cs50-finance/internal/platform/config"
	"github.com/fuzzychicken/cs50-finance/internal/platform/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const pingTimeout = 3 * time.Second

// NewRedisClient connects to redis and verifies the connection with PING.
// Callers treat an error as "run without redis".
func NewRedisClient(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	addr := net.JoinHostPort(cfg.Host, cfg.Port)

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 接続確認
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		logger.Warn("redis connection failed", zap.String("address", addr), zap.Error(err))
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	logger.Info("redis connection successful", zap.String("address", addr))
	return rdb, nil
}
