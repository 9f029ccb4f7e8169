package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cache := NewRedisCache(client, time.Hour)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return cache, mr, cleanup
}

func testState() *domain.SessionState {
	return &domain.SessionState{
		View: domain.ViewCart,
		Cart: domain.Cart{
			{Product: domain.Product{ID: "1", Name: "Sunshine Floral Dress", Price: 1200, Currency: "ETB", Category: domain.CategoryKids}, Quantity: 1},
			{Product: domain.Product{ID: "3", Name: "Cozy Bear Onesie", Price: 950, Currency: "ETB", Category: domain.CategoryBaby}, Quantity: 2},
		},
		User: &domain.User{ID: "mock-1", Email: "parent@example.com", DisplayName: "parent"},
	}
}

func TestGet_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	data, _ := json.Marshal(testState())
	mr.Set(cacheKey("s1"), string(data))

	result, err := cache.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.ViewCart, result.View)
	assert.Len(t, result.Cart, 2)
	assert.Equal(t, 3100.0, result.Cart.Total())
	require.NotNil(t, result.User)
	assert.Equal(t, "parent@example.com", result.User.Email)
}

func TestGet_CacheMiss(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	result, err := cache.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, result)
}

func TestGet_InvalidJSON(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	mr.Set(cacheKey("s1"), "{not json")

	result, err := cache.Get(context.Background(), "s1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, result)
}

func TestSet_RoundTripWithTTL(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "s1", testState()))
	assert.True(t, mr.Exists(cacheKey("s1")))

	ttl := mr.TTL(cacheKey("s1"))
	assert.GreaterOrEqual(t, ttl, time.Hour)
	assert.Less(t, ttl, time.Hour+5*time.Minute)

	got, err := cache.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, testState(), got)
}

func TestSet_Expires(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "s1", testState()))
	mr.FastForward(2 * time.Hour)

	_, err := cache.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestDelete(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "s1", testState()))
	require.NoError(t, cache.Delete(ctx, "s1"))
	assert.False(t, mr.Exists(cacheKey("s1")))

	assert.NoError(t, cache.Delete(ctx, "never-set"))
}

func TestRedisUnavailable(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()
	mr.Close()

	_, err := cache.Get(context.Background(), "s1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
	assert.Error(t, cache.Set(context.Background(), "s1", testState()))
}

func TestNopCache(t *testing.T) {
	var c SessionCache = NopCache{}
	assert.NoError(t, c.Set(context.Background(), "s", testState()))
	_, err := c.Get(context.Background(), "s")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, c.Delete(context.Background(), "s"))
}
