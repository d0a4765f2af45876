package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "user-profile-service/internal/domain/user"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, mr
}

func testUser(id int64) *domain.User {
	return &domain.User{
		Auditable:   domain.Auditable{ID: id, CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		FirebaseUID: "uid-1",
		Email:       "john@example.com",
		FirstName:   "John",
		LastName:    "Doe",
		Github:      domain.StringPtr("https://github.com/john"),
		Role:        domain.DefaultRole,
		Group:       domain.DefaultGroup,
	}
}

func TestRedisUserCache_SetAndGet(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))

	user := testUser(1)
	require.NoError(t, cache.Set(context.Background(), user))
	assert.True(t, mr.Exists("user:1"))

	cached, err := cache.Get(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, user.ID, cached.ID)
	assert.Equal(t, user.Email, cached.Email)
	assert.Equal(t, "https://github.com/john", domain.StringValue(cached.Github))
	assert.Nil(t, cached.Phone)
	assert.True(t, user.CreatedAt.Equal(cached.CreatedAt))
}

func TestRedisUserCache_Set_NilUser(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))

	err := cache.Set(context.Background(), nil)
	assert.EqualError(t, err, "cannot cache nil user")
}

func TestRedisUserCache_Get_CacheMiss(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))

	cached, err := cache.Get(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestRedisUserCache_Get_CorruptEntry(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))

	require.NoError(t, mr.Set(CacheKey(3), "{not json"))

	cached, err := cache.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Nil(t, cached)
	assert.False(t, mr.Exists(CacheKey(3)))
}

func TestRedisUserCache_Get_RedisDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))
	mr.Close()

	_, err := cache.Get(context.Background(), 1)
	assert.Error(t, err)
}

func TestRedisUserCache_Delete(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))

	require.NoError(t, cache.Set(context.Background(), testUser(1)))
	require.NoError(t, cache.Delete(context.Background(), 1))

	cached, err := cache.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestRedisUserCache_Get_StaleVersion(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))

	require.NoError(t, mr.Set(CacheKey(4), `{"v":0,"id":4,"email":"old@example.com"}`))

	cached, err := cache.Get(context.Background(), 4)
	require.NoError(t, err)
	assert.Nil(t, cached)
	assert.False(t, mr.Exists(CacheKey(4)))
}

func TestRedisUserCache_EntryLayout(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))

	require.NoError(t, cache.Set(context.Background(), testUser(5)))

	raw, err := mr.Get(CacheKey(5))
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &fields))
	assert.Equal(t, float64(entryVersion), fields["v"])
	assert.Equal(t, "uid-1", fields["firebase_uid"])
	assert.Equal(t, "https://github.com/john", fields["github"])
	assert.NotContains(t, fields, "phone")
}

func TestRedisUserCache_DeleteMissingKey(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))

	assert.NoError(t, cache.Delete(context.Background(), 42))
}

func TestRedisUserCache_TTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserCache(client, 2*time.Second, zaptest.NewLogger(t))

	require.NoError(t, cache.Set(context.Background(), testUser(1)))

	mr.FastForward(3 * time.Second)

	cached, err := cache.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, cached)
}
