package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisWindowScript performs the fixed-window check-and-increment atomically.
// KEYS[1] = window key (e.g. "ratelimit:vote:123")
// ARGV[1] = limit (max actions per window)
// ARGV[2] = window length in seconds
// ARGV[3] = current unix timestamp (seconds)
var redisWindowScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local state = redis.call("HMGET", key, "count", "window_start")
local count = tonumber(state[1])
local window_start = tonumber(state[2])

-- Reset when the window has rolled over
if not count or not window_start or now - window_start > window then
    count = 0
    window_start = now
end

local allowed = 0
if count < limit then
    count = count + 1
    allowed = 1
end

redis.call("HMSET", key, "count", count, "window_start", window_start)
redis.call("EXPIRE", key, window * 2)

return {allowed, limit - count, window_start}
`)

// RedisStore implements Store over Redis. One script execution is one logical
// check+increment, so concurrent processes share a single authoritative count.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a store backed by the given Redis client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Reserve executes the window script and decodes the decision
func (s *RedisStore) Reserve(ctx context.Context, key string, policy Policy, now time.Time) (Decision, error) {
	windowSecs := int64(policy.Window / time.Second)

	res, err := redisWindowScript.Run(ctx, s.client, []string{key},
		policy.Limit, windowSecs, now.Unix()).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("failed to run rate limit script: %w", err)
	}

	results, ok := res.([]interface{})
	if !ok || len(results) != 3 {
		return Decision{}, fmt.Errorf("unexpected rate limit script response: %v", res)
	}

	allowed, _ := results[0].(int64)
	remaining, _ := results[1].(int64)
	windowStart, _ := results[2].(int64)

	return Decision{
		Allowed:   allowed == 1,
		Remaining: int(remaining),
		ResetAt:   time.Unix(windowStart, 0).Add(policy.Window),
	}, nil
}
