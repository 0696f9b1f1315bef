// File: utils/cache.go
package utils

import (
	"context"
	"fmt"
	"time"

	"agriassist/config"

	"github.com/go-redis/redis/v8"
)

// CacheClient is the redis client behind the geocode/weather response cache.
var CacheClient *redis.Client

// InitCache connects the cache client. Unlike the rest of the server a dead redis is not fatal:
// callers fall back to running uncached.
func InitCache() error {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("connect to redis (cache) at %s: %w", config.AppConfig.RedisAddr, err)
	}
	CacheClient = client
	return nil
}

// GetCacheClient returns the cache client, or nil when caching is off or unavailable.
func GetCacheClient() *redis.Client {
	return CacheClient
}
