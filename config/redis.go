package config

import (
	"context"
	"os"

	"github.com/redis/go-redis/v9"
)

// RedisClient is a global Redis client instance; nil when caching is disabled.
// Accessed as config.RedisClient in other files
var RedisClient *redis.Client

func InitRedis() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		RedisClient = nil
		return
	}
	RedisClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASS"),
		DB:       GetEnvInt("REDIS_DB", 0),
	})
}

func RedisCtx() context.Context {
	return context.Background()
}

// ProbeRedis pings the configured client and disables it when unreachable.
func ProbeRedis() string {
	if RedisClient == nil {
		return "Redis not configured, facet caching uses process memory."
	}
	if err := RedisClient.Ping(RedisCtx()).Err(); err != nil {
		RedisClient = nil
		return "Redis configured but not reachable, facet caching uses process memory."
	}
	return "Redis connection successful."
}
