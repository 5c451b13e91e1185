package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenSet struct {
	Colors []string `json:"colors"`
}

func setupRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	c := NewRedisCache(client, "cs:")
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCacheSetGetExpire(t *testing.T) {
	c, mr := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, c, "design:tokens:f1", tokenSet{Colors: []string{"#ff0000"}}, time.Minute))
	assert.True(t, mr.Exists("cs:design:tokens:f1"), "key phải có prefix")

	got, err := GetJSON[tokenSet](ctx, c, "design:tokens:f1")
	require.NoError(t, err)
	assert.Equal(t, []string{"#ff0000"}, got.Colors)

	mr.FastForward(2 * time.Minute)
	_, err = c.Get(ctx, "design:tokens:f1")
	assert.True(t, errors.Is(err, ErrMiss))
}

func TestRedisCacheDelete(t *testing.T) {
	c, _ := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, c.Delete(ctx, "k"))
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(0)
	defer c.Close()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Second))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))

	v, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	now = now.Add(2 * time.Second)
	_, err = c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrMiss)

	v, err = c.Get(ctx, "b")
	require.NoError(t, err, "ttl = 0 không hết hạn")
	assert.Equal(t, []byte("2"), v)
}

func TestGetJSONCorruptIsMiss(t *testing.T) {
	c := NewMemoryCache(0)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "bad", []byte("{not json"), 0))
	_, err := GetJSON[tokenSet](ctx, c, "bad")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = c.Get(ctx, "bad")
	assert.ErrorIs(t, err, ErrMiss, "dữ liệu hỏng phải bị xóa")
}
