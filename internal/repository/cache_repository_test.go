package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/byebilly/waitlist-api/pkg/errors"
)

type cachedStats struct {
	TotalCount int `json:"totalCount"`
}

func newCacheRepo(t *testing.T) (*CacheRepository, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheRepository(client), mr
}

func TestCacheRepositorySetGet(t *testing.T) {
	repo, mr := newCacheRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "waitlist:stats", cachedStats{TotalCount: 3}, 30*time.Second))

	var got cachedStats
	require.NoError(t, repo.Get(ctx, "waitlist:stats", &got))
	assert.Equal(t, 3, got.TotalCount)

	mr.FastForward(31 * time.Second)
	err := repo.Get(ctx, "waitlist:stats", &got)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
}

func TestCacheRepositoryCorruptPayload(t *testing.T) {
	repo, mr := newCacheRepo(t)
	require.NoError(t, mr.Set("waitlist:stats", "{not json"))

	var got cachedStats
	err := repo.Get(context.Background(), "waitlist:stats", &got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrCacheMiss)
}

func TestCacheRepositoryDeleteByPattern(t *testing.T) {
	repo, mr := newCacheRepo(t)
	ctx := context.Background()

	for i := 0; i < 150; i++ {
		require.NoError(t, mr.Set(fmt.Sprintf("waitlist:stats:%d", i), "1"))
	}
	require.NoError(t, mr.Set("ratelimit:enroll:127.0.0.1", "1"))

	require.NoError(t, repo.DeleteByPattern(ctx, "waitlist:stats*"))
	assert.Equal(t, []string{"ratelimit:enroll:127.0.0.1"}, mr.Keys())
}

func TestCacheRepositoryNilClient(t *testing.T) {
	repo := NewCacheRepository(nil)
	ctx := context.Background()

	assert.NoError(t, repo.Set(ctx, "k", 1, time.Second))
	assert.ErrorIs(t, repo.Get(ctx, "k", new(int)), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.DeleteByPattern(ctx, "*"))
}
