package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const versionKey = "registrations:list:version"

// registrationCache stores admin list pages under a versioned key.
// Invalidate bumps the version so every cached page is skipped at once;
// orphaned pages expire through their TTL.
type registrationCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRegistrationCache(client *redis.Client, ttl time.Duration) domain.RegistrationCache {
	if client == nil {
		return NopRegistrationCache{}
	}
	return &registrationCache{client: client, ttl: ttl}
}

func (c *registrationCache) version(ctx context.Context) (int64, error) {
	v, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func pageKey(version int64, f domain.RegistrationFilter) string {
	return fmt.Sprintf("registrations:list:v%d:%s:%s:%s:%d:%d", version, f.Kind, f.Status, f.Search, f.Page, f.Limit)
}

// noVersion marks a version that could not be read; pages are not stored
// under it.
const noVersion int64 = -1

func (c *registrationCache) GetList(ctx context.Context, filter domain.RegistrationFilter) (*domain.RegistrationPage, int64, bool) {
	v, err := c.version(ctx)
	if err != nil {
		logger.Log.Warn("Registration cache version read failed", "error", err)
		return nil, noVersion, false
	}
	raw, err := c.client.Get(ctx, pageKey(v, filter)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.Warn("Registration cache read failed", "error", err)
		}
		return nil, v, false
	}
	var page domain.RegistrationPage
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, v, false
	}
	return &page, v, true
}

// SetList writes under the version the caller read. If Invalidate ran in
// between, the page lands on an orphaned key and expires unread.
func (c *registrationCache) SetList(ctx context.Context, version int64, filter domain.RegistrationFilter, page *domain.RegistrationPage) {
	if version < 0 {
		return
	}
	data, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, pageKey(version, filter), data, c.ttl).Err(); err != nil {
		logger.Log.Warn("Registration cache write failed", "error", err)
	}
}

func (c *registrationCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, versionKey).Err()
}

// NopRegistrationCache is used when Redis is not configured.
type NopRegistrationCache struct{}

func (NopRegistrationCache) GetList(context.Context, domain.RegistrationFilter) (*domain.RegistrationPage, int64, bool) {
	return nil, noVersion, false
}

func (NopRegistrationCache) SetList(context.Context, int64, domain.RegistrationFilter, *domain.RegistrationPage) {
}

func (NopRegistrationCache) Invalidate(context.Context) error { return nil }
