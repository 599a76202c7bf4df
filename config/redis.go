package config

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/teamsales/salesportal/logger"
)

// ConnectRedis establishes connection to Redis. It returns nil when Redis is
// unreachable; session caching and logout revocation are then disabled.
func ConnectRedis(cfg *Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log := logger.Get("app")
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.WithError(err).Warn("Redis connection failed; session cache and logout revocation disabled")
		_ = client.Close()
		return nil
	}

	log.WithField("addr", cfg.RedisAddr).Info("Connected to Redis")
	return client
}
