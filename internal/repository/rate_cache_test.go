package repository

import (
	"context"
	"evcharge-storefront/internal/model"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRateCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	cache := NewRateCache(rdb)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	days := 2
	rates := []model.RateQuote{{Provider: "DHL", ServiceLevelName: "Paket", ServiceLevelToken: "dhl_paket", Amount: 790, Currency: "EUR", EstimatedDays: &days}}
	require.NoError(t, cache.Set(ctx, "abc", rates, 10*time.Minute))

	assert.True(t, mr.Exists("shipping:rates:abc"))
	assert.Equal(t, 10*time.Minute, mr.TTL("shipping:rates:abc"))

	got, ok, err := cache.Get(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, rates, got)

	mr.FastForward(11 * time.Minute)
	_, ok, err = cache.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNoopRateCache(t *testing.T) {
	cache := NewRateCache(nil)
	require.NoError(t, cache.Set(context.Background(), "k", nil, time.Minute))

	_, ok, err := cache.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
