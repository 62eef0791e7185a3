// 区域共享表锁
// Mac/Ip/MacIp 是区域内所有设备共享的表，查询后插入的过程按 (区域, 表) 串行化
package lock

import (
	"context"
	"fmt"
	"sync"

	"switchmap/internal/config"

	"github.com/go-redis/redis/v8"
)

// Locker 获取命名锁，返回的函数用于释放
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// ZoneKey 生成区域表锁的键
func ZoneKey(zoneID uint64, table string) string {
	return fmt.Sprintf("zone:%d:%s", zoneID, table)
}

// New 根据配置创建锁实现；redis 后端需要传入客户端
func New(cfg *config.LockConfig, client *redis.Client) (Locker, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryLocker(), nil
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("redis lock backend requires a redis client")
		}
		return NewRedisLocker(client, cfg.Prefix, cfg.TTL, cfg.RetryInterval), nil
	default:
		return nil, fmt.Errorf("unsupported lock backend: %s", cfg.Backend)
	}
}

// MemoryLocker 进程内互斥锁，按键分配
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// NewMemoryLocker 创建进程内锁
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]chan struct{})}
}

// Lock 获取锁，ctx 取消时放弃等待
func (l *MemoryLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	ch, ok := l.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[key] = ch
	}
	l.mu.Unlock()

	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
