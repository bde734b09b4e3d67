package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/edulab/assess-backend/internal/config"
)

// NewRedisClient connects to the Redis instance named by cfg.RedisURL and
// pings it before handing the client out. Redis carries the exam payload and
// answer-key fast lane plus the attempt-start stamps, so a dead instance
// should fail startup loudly rather than surface later as cache misses.
func NewRedisClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Info().Str("addr", opt.Addr).Int("db", opt.DB).Msg("Redis connected")
	return client, nil
}
