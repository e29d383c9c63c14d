package database

import (
	"context"
	"fmt"
	"log"

	"github.com/go-redis/redis/v8"

	"github.com/savingsjars/backend/internal/config"
)

// InitRedis dials Redis and pings it once.
func InitRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis connection failed at %s: %w", cfg.Addr(), err)
	}

	log.Printf("[Database] InitRedis - connected to %s db=%d", cfg.Addr(), cfg.DB)
	return rdb, nil
}
