package db

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"io.winapps.starlight/internal/config"
)

// InitRedis initializes and returns a Redis client
func InitRedis() (*redis.Client, error) {
	host := config.GetEnvOrDefault("REDIS_HOST", "localhost")
	port := config.GetEnvOrDefault("REDIS_PORT", "6379")
	db, err := strconv.Atoi(config.GetEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		Password:     config.GetEnvOrDefault("REDIS_PASSWORD", ""),
		DB:           db,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		PoolSize:     10,
		PoolTimeout:  10 * time.Second,
		MaxRetries:   3,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
