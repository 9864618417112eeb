package caching

import (
	"context"
	"os"
	"testing"
	"time"

	"cityshops/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	id := uuid.MustParse("6f1c1f4e-6a55-4d55-9f3f-0a1b2c3d4e5f")
	assert.Equal(t, "cityshops:product:6f1c1f4e-6a55-4d55-9f3f-0a1b2c3d4e5f", ProductKey(id))
	assert.Equal(t, "cityshops:shop:6f1c1f4e-6a55-4d55-9f3f-0a1b2c3d4e5f", ShopKey(id))
	assert.Equal(t, "cityshops:category:6f1c1f4e-6a55-4d55-9f3f-0a1b2c3d4e5f", CategoryKey(id))
	assert.Equal(t, "cityshops:ratelimit:login:alice", RateLimitKey("login:alice"))
}

// setupRedis connects to TEST_REDIS_ADDR or skips.
func setupRedis(t *testing.T) CacheService {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() { client.FlushDB(context.Background()); client.Close() })

	return NewCacheServiceFromClient(client)
}

func TestProductRoundTrip(t *testing.T) {
	cache := setupRedis(t)
	ctx := context.Background()

	product := &models.Product{
		ID:            uuid.New(),
		ShopID:        uuid.New(),
		Name:          "Sourdough",
		Price:         decimal.RequireFromString("4.50"),
		StockQuantity: 12,
		IsAvailable:   true,
	}

	miss, err := cache.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, cache.SetProduct(ctx, product, time.Minute))

	hit, err := cache.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "Sourdough", hit.Name)
	assert.True(t, hit.Price.Equal(product.Price))

	require.NoError(t, cache.DeleteProduct(ctx, product.ID))
	gone, err := cache.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestIsRateLimited(t *testing.T) {
	cache := setupRedis(t)
	ctx := context.Background()
	key := "login:" + uuid.NewString()

	for i := 0; i < 3; i++ {
		limited, err := cache.IsRateLimited(ctx, key, 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, limited)
	}

	limited, err := cache.IsRateLimited(ctx, key, 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, limited)

	require.NoError(t, cache.ResetRateLimit(ctx, key))
	limited, err = cache.IsRateLimited(ctx, key, 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, limited)
}
