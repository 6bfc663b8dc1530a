package repository

import (
	"context"
	"encoding/json"
	"errors"
	"evcharge-storefront/internal/model"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RateCache interface {
	Get(ctx context.Context, key string) ([]model.RateQuote, bool, error)
	Set(ctx context.Context, key string, rates []model.RateQuote, ttl time.Duration) error
}

type redisRateCache struct {
	client *redis.Client
}

// NewRateCache falls back to a cache that never hits when rdb is nil.
func NewRateCache(rdb *redis.Client) RateCache {
	if rdb == nil {
		return noopRateCache{}
	}
	return &redisRateCache{client: rdb}
}

func (c *redisRateCache) Get(ctx context.Context, key string) ([]model.RateQuote, bool, error) {
	data, err := c.client.Get(ctx, rateCacheKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var rates []model.RateQuote
	if err := json.Unmarshal(data, &rates); err != nil {
		return nil, false, fmt.Errorf("unmarshal rates failed: %w", err)
	}
	return rates, true, nil
}

func (c *redisRateCache) Set(ctx context.Context, key string, rates []model.RateQuote, ttl time.Duration) error {
	data, err := json.Marshal(rates)
	if err != nil {
		return fmt.Errorf("marshal rates failed: %w", err)
	}
	if err := c.client.Set(ctx, rateCacheKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func rateCacheKey(key string) string {
	return "shipping:rates:" + key
}

type noopRateCache struct{}

func (noopRateCache) Get(context.Context, string) ([]model.RateQuote, bool, error) {
	return nil, false, nil
}

func (noopRateCache) Set(context.Context, string, []model.RateQuote, time.Duration) error {
	return nil
}
