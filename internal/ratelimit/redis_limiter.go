package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisLimiter keeps a sorted set of attempt timestamps per user and scope, so the
// cap holds across server instances.
type RedisLimiter struct {
	client *redis.Client
	config Config
	prefix string
	script *redis.Script
}

// slidingWindowScript trims expired entries, counts, and adds the attempt when
// under the limit. Returns {allowed, count, oldestMs}.
const slidingWindowScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local oldestMs = 0
if oldest[2] then
  oldestMs = tonumber(oldest[2])
end

if count >= limit then
  return {0, count, oldestMs}
end

redis.call('ZADD', key, now, member)
redis.call('PEXPIRE', key, window)
return {1, count, oldestMs}
`

func NewRedisLimiter(ctx context.Context, redisConfig RedisConfig, config Config) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         redisConfig.Addr,
		Password:     redisConfig.Password,
		DB:           redisConfig.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	prefix := redisConfig.Prefix
	if prefix == "" {
		prefix = "focusflow:generations"
	}

	return &RedisLimiter{
		client: client,
		config: config.withDefaults(),
		prefix: prefix,
		script: redis.NewScript(slidingWindowScript),
	}, nil
}

func (l *RedisLimiter) Reserve(ctx context.Context, userID, scope string, now time.Time) (Result, error) {
	key := l.key(userID, scope)
	raw, err := l.script.Run(
		ctx,
		l.client,
		[]string{key},
		now.UnixMilli(),
		l.config.Window.Milliseconds(),
		l.config.Limit,
		strconv.FormatInt(now.UnixMilli(), 10)+"-"+uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("run sliding window script: %w", err)
	}
	if len(raw) != 3 {
		return Result{}, fmt.Errorf("unexpected sliding window reply %v", raw)
	}

	var oldest time.Time
	if raw[2] > 0 {
		oldest = time.UnixMilli(raw[2])
	}
	return result(int(raw[1]), l.config, oldest, now), nil
}

func (l *RedisLimiter) key(userID, scope string) string {
	return l.prefix + ":" + scope + ":" + userID
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
