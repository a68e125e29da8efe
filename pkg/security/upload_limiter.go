package security

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// UploadLimiter caps uploads per user per day with a Redis sliding window.
type UploadLimiter struct {
	client    *goredis.Client
	maxPerDay int
}

// KEYS[1] = window key
// ARGV[1] = limit, ARGV[2] = window seconds, ARGV[3] = now (unix seconds)
// Returns 1 if allowed, 0 if limited.
const uploadRateLimitScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

if redis.call('ZCARD', key) >= limit then
    return 0
end

redis.call('ZADD', key, now, now .. '-' .. math.random(1000000))
redis.call('EXPIRE', key, window)
return 1
`

func NewUploadLimiter(client *goredis.Client, perDay int) *UploadLimiter {
	if perDay <= 0 {
		perDay = 50
	}
	return &UploadLimiter{client: client, maxPerDay: perDay}
}

// Allow reports whether userID may upload another file. Without Redis it
// fails open and returns an error the caller should log.
func (ul *UploadLimiter) Allow(ctx context.Context, userID string) (bool, error) {
	if ul == nil || ul.client == nil {
		return true, fmt.Errorf("upload limiter unavailable: redis not connected")
	}

	key := fmt.Sprintf("ratelimit:upload:user:%s", userID)
	result, err := ul.client.Eval(ctx, uploadRateLimitScript, []string{key}, ul.maxPerDay, 86400, time.Now().Unix()).Result()
	if err != nil {
		return true, fmt.Errorf("upload limit check failed: %w", err)
	}
	allowed, ok := result.(int64)
	if !ok {
		return true, fmt.Errorf("unexpected result type from upload limit script")
	}
	return allowed == 1, nil
}
