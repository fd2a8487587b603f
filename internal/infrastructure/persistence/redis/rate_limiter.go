package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter 基于 Redis 的滑动窗口限流器
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRateLimiter 创建限流器
func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, window: window}
}

// slidingWindowScript 滑动窗口限流脚本
//
// ZSET 成员为请求时间戳，先清理窗口外的成员再计数，
// 未超限时写入本次请求并返回 1。
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
	return 0
end
redis.call('ZADD', key, now, now .. '-' .. math.random(1000000))
redis.call('PEXPIRE', key, window)
return 1
`)

// Allow 判断 key 是否允许通过
//
// Redis 不可用时放行，限流不作为强一致保障。
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now().UnixMilli()
	fullKey := fmt.Sprintf("ratelimit:%s", key)

	res, err := slidingWindowScript.Run(ctx, l.client,
		[]string{fullKey}, now, l.window.Milliseconds(), l.limit).Int()
	if err != nil {
		return true, err
	}
	return res == 1, nil
}
