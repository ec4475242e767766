package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow prunes, counts and records in one step so concurrent
// servers cannot both take the last slot.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
if redis.call('ZCARD', key) < max then
  redis.call('ZADD', key, now, ARGV[4])
  redis.call('PEXPIRE', key, window)
  return {1, 0}
end
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local retry = tonumber(oldest[2]) + window - now
if retry < 1 then retry = 1 end
return {0, retry}
`)

// RedisLimiter shares one sliding window per identity across processes.
// Each identity is a sorted set of hit ids scored by millisecond timestamp.
type RedisLimiter struct {
	client redis.UniversalClient
	prefix string
	max    int
	window time.Duration
	now    func() time.Time
}

// NewRedis creates a limiter on client. An empty prefix uses "anger".
func NewRedis(client redis.UniversalClient, prefix string, maxRequests int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "anger"
	}
	if maxRequests < 1 {
		maxRequests = 1
	}
	return &RedisLimiter{client: client, prefix: prefix, max: maxRequests, window: window, now: time.Now}
}

// TryAdmit implements Admitter
func (r *RedisLimiter) TryAdmit(ctx context.Context, identity string) (Decision, error) {
	key := r.prefix + ":ratelimit:" + identity
	res, err := slidingWindow.Run(ctx, r.client, []string{key},
		r.now().UnixMilli(), r.window.Milliseconds(), r.max, uuid.NewString()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("failed to run rate limit script: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("unexpected rate limit reply: %v", res)
	}
	if res[0] == 1 {
		return Decision{Admitted: true}, nil
	}
	return Decision{RetryAfter: time.Duration(res[1]) * time.Millisecond}, nil
}
