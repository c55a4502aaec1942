package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"tasktracker/internal/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

// 基于 Redis 的令牌桶，按 key（如用户名）限制登录尝试频率。
// 补发与扣减在一段 Lua 脚本里单次往返完成，多实例共享同一个桶。
const tokenBucketLua = `
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])

if rate <= 0 or burst <= 0 then
  return {1, burst}
end

local data = redis.call("HMGET", key, "tokens", "ts")
local tokens = tonumber(data[1])
local ts = tonumber(data[2])
if tokens == nil then
  tokens = burst
end
if ts == nil then
  ts = now
end

local delta = math.max(0, now - ts)
local refill = (delta * rate) / 1000.0
tokens = math.min(burst, tokens + refill)

local allowed = tokens >= requested
if allowed then
  tokens = tokens - requested
end

redis.call("HMSET", key, "tokens", tokens, "ts", now)
redis.call("PEXPIRE", key, math.ceil((burst / rate) * 1000.0 * 2))

return {allowed and 1 or 0, tokens}
`

// SignInLimiter 限制同一 key 的登录尝试频率。
type SignInLimiter struct {
	rdb    *redis.Client
	prefix string
	rate   float64
	burst  float64
	logger *slog.Logger
	script *redis.Script
}

// NewSignInLimiter 创建登录限流器。
// rate 为每秒补发的令牌数，burst 为桶容量。
func NewSignInLimiter(rdb *redis.Client, logger *slog.Logger, prefix string, rate, burst float64) *SignInLimiter {
	if prefix == "" {
		prefix = "tasktracker:ratelimit:signin:"
	}
	return &SignInLimiter{
		rdb:    rdb,
		prefix: prefix,
		rate:   rate,
		burst:  burst,
		logger: logger,
		script: redis.NewScript(tokenBucketLua),
	}
}

// Allow 尝试为 key 扣减一个令牌，不阻塞等待。
// 限流器未配置（rate 或 burst <= 0）时直接放行。
func (l *SignInLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l == nil || l.rate <= 0 || l.burst <= 0 {
		return true, nil
	}

	now := time.Now().UnixMilli()
	res, err := l.script.Run(ctx, l.rdb, []string{l.prefix + key}, l.rate, l.burst, now, 1).Result()
	if err != nil {
		return false, fmt.Errorf("ratelimit eval: %w", err)
	}

	values, ok := res.([]interface{})
	if !ok || len(values) < 1 {
		return false, fmt.Errorf("ratelimit invalid result")
	}

	allowed := toInt64(values[0]) == 1
	if !allowed {
		metrics.SignInThrottledTotal.Inc()
		if l.logger != nil {
			l.logger.Warn("sign-in throttled", slog.String("key", key))
		}
	}
	return allowed, nil
}

func toInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if t == "" {
			return 0
		}
		if parsed, err := strconv.ParseInt(t, 10, 64); err == nil {
			return parsed
		}
	}
	return 0
}
