package redis

import (
	"context"
	"testing"
	"time"

	"alumni-talent-platform/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (domain.RegistrationCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRegistrationCache(client, ttl), mr
}

func pendingPage() *domain.RegistrationPage {
	return &domain.RegistrationPage{
		Items: []domain.Registration{{ID: 7, Kind: domain.KindAlumni, Email: "a@x.edu", Status: domain.RegistrationPending}},
		Total: 1,
		Page:  1,
		Limit: 20,
	}
}

func TestNewRegistrationCache_NilClientIsNop(t *testing.T) {
	cache := NewRegistrationCache(nil, 0)
	_, ok := cache.(NopRegistrationCache)
	assert.True(t, ok)

	ctx := context.Background()
	filter := domain.RegistrationFilter{Page: 1, Limit: 20}
	_, v, _ := cache.GetList(ctx, filter)
	cache.SetList(ctx, v, filter, &domain.RegistrationPage{Total: 1})
	_, _, hit := cache.GetList(ctx, filter)
	assert.False(t, hit)
	assert.NoError(t, cache.Invalidate(ctx))
}

func TestPageKey_DependsOnVersionAndFilter(t *testing.T) {
	f := domain.RegistrationFilter{Kind: domain.KindAlumni, Status: domain.RegistrationPending, Page: 1, Limit: 20}

	assert.NotEqual(t, pageKey(1, f), pageKey(2, f))

	g := f
	g.Page = 2
	assert.NotEqual(t, pageKey(1, f), pageKey(1, g))
}

func TestRegistrationCache_HitAfterSet(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	filter := domain.RegistrationFilter{Status: domain.RegistrationPending, Page: 1, Limit: 20}

	_, v, hit := cache.GetList(ctx, filter)
	require.False(t, hit)
	assert.Equal(t, int64(0), v)

	cache.SetList(ctx, v, filter, pendingPage())

	page, _, hit := cache.GetList(ctx, filter)
	require.True(t, hit)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, domain.RegistrationPending, page.Items[0].Status)

	other := filter
	other.Page = 2
	_, _, hit = cache.GetList(ctx, other)
	assert.False(t, hit)

	assert.Equal(t, time.Minute, mr.TTL(pageKey(0, filter)))
}

func TestRegistrationCache_MissAfterInvalidate(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()
	filter := domain.RegistrationFilter{Page: 1, Limit: 20}

	_, v, _ := cache.GetList(ctx, filter)
	cache.SetList(ctx, v, filter, pendingPage())
	require.NoError(t, cache.Invalidate(ctx))

	_, next, hit := cache.GetList(ctx, filter)
	assert.False(t, hit)
	assert.Equal(t, v+1, next)
}

func TestRegistrationCache_StaleWriteAfterInvalidateIsNotServed(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()
	filter := domain.RegistrationFilter{Status: domain.RegistrationPending, Page: 1, Limit: 20}

	// a list request misses, then a decision commits before it writes
	_, v, hit := cache.GetList(ctx, filter)
	require.False(t, hit)
	require.NoError(t, cache.Invalidate(ctx))
	cache.SetList(ctx, v, filter, pendingPage())

	_, _, hit = cache.GetList(ctx, filter)
	assert.False(t, hit)
}

func TestRegistrationCache_ExpiresWithTTL(t *testing.T) {
	cache, mr := newTestCache(t, 30*time.Second)
	ctx := context.Background()
	filter := domain.RegistrationFilter{Page: 1, Limit: 20}

	_, v, _ := cache.GetList(ctx, filter)
	cache.SetList(ctx, v, filter, pendingPage())
	mr.FastForward(31 * time.Second)

	_, _, hit := cache.GetList(ctx, filter)
	assert.False(t, hit)
}

func TestRegistrationCache_CorruptEntryIsMiss(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	filter := domain.RegistrationFilter{Page: 1, Limit: 20}

	require.NoError(t, mr.Set(pageKey(0, filter), "{not json"))

	_, v, hit := cache.GetList(ctx, filter)
	assert.False(t, hit)
	assert.Equal(t, int64(0), v)
}

func TestRegistrationCache_UnavailableRedisIsMiss(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	filter := domain.RegistrationFilter{Page: 1, Limit: 20}
	mr.Close()

	_, v, hit := cache.GetList(ctx, filter)
	assert.False(t, hit)
	cache.SetList(ctx, v, filter, pendingPage())
	assert.Error(t, cache.Invalidate(ctx))
}
