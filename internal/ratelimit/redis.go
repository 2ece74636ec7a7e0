package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisTimeout = 250 * time.Millisecond

const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// RedisLimiter shares fixed windows across processes through Redis.
type RedisLimiter struct {
	client redis.Scripter
	prefix string
	script *redis.Script
}

// NewRedisLimiter returns a limiter storing counters under prefix.
func NewRedisLimiter(client redis.Scripter, prefix string) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, script: redis.NewScript(rateLimitScript)}
}

// Allow implements Limiter. Redis failures allow the request and are
// returned for logging.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if l == nil || l.client == nil || key == "" || limit <= 0 || window <= 0 {
		return true, nil
	}

	redisKey := key
	if l.prefix != "" {
		redisKey = l.prefix + ":" + key
	}
	ttl := window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}

	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()
	allowed, err := l.script.Run(ctx, l.client, []string{redisKey}, ttl, limit).Int64()
	if err != nil {
		return true, fmt.Errorf("ratelimit: redis: %w", err)
	}
	return allowed == 1, nil
}
