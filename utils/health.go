package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Status    string    `json:"status"`
	Provider  string    `json:"provider"`
	Redis     []bool    `json:"redis"`
	CheckedAt time.Time `json:"checkedAt"`
}

var (
	currentHealth = HealthStatus{Status: "ok", Redis: []bool{}}
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	snapshot := currentHealth
	snapshot.Redis = append([]bool(nil), currentHealth.Redis...)
	return snapshot
}

// SetHealthProvider records which generation provider the server runs with.
func SetHealthProvider(provider string) {
	mu.Lock()
	defer mu.Unlock()
	currentHealth.Provider = provider
}

// CheckHealth pings every redis client once and stores the snapshot.
func CheckHealth(ctx context.Context, redisClients []*redis.Client) HealthStatus {
	redisHealth := make([]bool, 0, len(redisClients))
	for _, client := range redisClients {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		redisHealth = append(redisHealth, err == nil)
	}

	mu.Lock()
	currentHealth.Status = "ok"
	currentHealth.Redis = redisHealth
	currentHealth.CheckedAt = time.Now()
	snapshot := currentHealth
	mu.Unlock()
	return snapshot
}

// StartHealthMonitor performs periodic health checks until ctx is done.
func StartHealthMonitor(ctx context.Context, redisClients []*redis.Client, interval time.Duration) {
	CheckHealth(ctx, redisClients)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				CheckHealth(ctx, redisClients)
			}
		}
	}()
}
