// Package ratelimit implements a Redis-backed token bucket shared by the gRPC and Gin surfaces.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces bucket keys in Redis.
const KeyPrefix = "ratelimit:tb:"

// tokenBucket refills at rate tokens per second up to capacity and consumes one token per call.
// State is kept in a hash {last_refill, tokens} so the check-and-consume is atomic.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
local last_refill = tonumber(bucket[1]) or now
local tokens = tonumber(bucket[2]) or capacity

local elapsed = math.max(0, now - last_refill)
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
end

redis.call('HSET', key, 'last_refill', tostring(now), 'tokens', tostring(tokens))
redis.call('EXPIRE', key, ttl)
return allowed
`)

// Config holds token bucket parameters.
type Config struct {
	RequestsPerSecond float64
	BurstCapacity     int
	Enabled           bool
}

// Limiter decides whether a request identified by a key may proceed.
type Limiter struct {
	client *redis.Client
	config Config
	now    func() time.Time
}

// New creates a limiter. A nil client disables limiting.
func New(client *redis.Client, config Config) *Limiter {
	return &Limiter{client: client, config: config, now: time.Now}
}

// Config returns the limiter parameters.
func (l *Limiter) Config() Config {
	return l.config
}

// Enabled reports whether requests are checked at all.
func (l *Limiter) Enabled() bool {
	return l != nil && l.client != nil && l.config.Enabled
}

// Allow consumes a token from the bucket named by key.
// Callers decide whether to fail open when an error is returned.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}

	now := float64(l.now().UnixMilli()) / 1000
	ttl := l.bucketTTL()

	allowed, err := tokenBucket.Run(ctx, l.client, []string{KeyPrefix + key},
		l.config.RequestsPerSecond,
		l.config.BurstCapacity,
		now,
		ttl,
	).Int64()
	if err != nil {
		return false, fmt.Errorf("rate limit script failed: %w", err)
	}

	return allowed == 1, nil
}

// bucketTTL keeps a bucket at least as long as it takes to refill completely.
func (l *Limiter) bucketTTL() int {
	ttl := 60
	if l.config.RequestsPerSecond > 0 {
		refill := int(float64(l.config.BurstCapacity)/l.config.RequestsPerSecond) + 1
		if refill > ttl {
			ttl = refill
		}
	}
	return ttl
}
