// Package cache is a thin go-redis wrapper for read-side caching. Redis is
// optional: when REDIS_URL is unset the service runs uncached.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"bizsense/internal/core"
)

const forecastTTL = time.Hour

type Cache struct {
	client *redis.Client
}

// New connects to redisURL and verifies the connection with a ping.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		// Accept a bare host:port as well as a redis:// URL.
		opt = &redis.Options{Addr: redisURL}
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Cache{client: client}, nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func forecastKey(businessID string) string {
	return "forecast:latest:" + businessID
}

// GetForecast implements core.ForecastCache.
func (c *Cache) GetForecast(ctx context.Context, businessID string) (*core.ForecastResult, bool) {
	data, err := c.client.Get(ctx, forecastKey(businessID)).Bytes()
	if err != nil {
		return nil, false
	}
	var result core.ForecastResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false
	}
	return &result, true
}

// SetForecast implements core.ForecastCache. Cache writes are best effort;
// a failed write only costs a recomputation.
func (c *Cache) SetForecast(ctx context.Context, businessID string, result *core.ForecastResult) {
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, forecastKey(businessID), data, forecastTTL).Err(); err != nil {
		log.Printf("cache: failed to store forecast for business %s: %v", businessID, err)
	}
}
