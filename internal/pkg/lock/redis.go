package lock

import (
	"context"
	"time"

	"switchmap/internal/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// unlockScript 仅当值仍为本次持有的令牌时删除，避免误删过期后被他人获取的锁
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker 基于 SET NX 的跨进程锁
type RedisLocker struct {
	client        *redis.Client
	prefix        string
	ttl           time.Duration
	retryInterval time.Duration
}

// NewRedisLocker 创建 Redis 锁
func NewRedisLocker(client *redis.Client, prefix string, ttl, retryInterval time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if retryInterval <= 0 {
		retryInterval = 50 * time.Millisecond
	}
	return &RedisLocker{
		client:        client,
		prefix:        prefix,
		ttl:           ttl,
		retryInterval: retryInterval,
	}
}

// Lock 轮询获取锁直到成功或 ctx 结束
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	fullKey := l.prefix + key
	token := uuid.New().String()

	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
		if err != nil {
			logger.LogError(err, 3101, "lock.redis", "acquire", map[string]interface{}{
				"key": fullKey,
			})
			return nil, err
		}
		if ok {
			return func() {
				// 释放使用独立的 ctx，调用方 ctx 已取消时也要删除
				releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := unlockScript.Run(releaseCtx, l.client, []string{fullKey}, token).Err(); err != nil {
					logger.LogError(err, 3102, "lock.redis", "release", map[string]interface{}{
						"key": fullKey,
					})
				}
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
