package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"switchmap/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseMutualExclusion 并发获取同一把锁，临界区内最多一个持有者
func exerciseMutualExclusion(t *testing.T, locker Locker) {
	t.Helper()
	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), ZoneKey(1, "mac"))
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInside))
}

func TestMemoryLocker(t *testing.T) {
	exerciseMutualExclusion(t, NewMemoryLocker())
}

func TestMemoryLocker_ContextCancel(t *testing.T) {
	locker := NewMemoryLocker()
	unlock, err := locker.Lock(context.Background(), "k")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "k")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// 其他键不受影响
	other, err := locker.Lock(context.Background(), "other")
	require.NoError(t, err)
	other()
}

func TestRedisLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	locker := NewRedisLocker(client, "switchmap:lock:", time.Second, time.Millisecond)
	exerciseMutualExclusion(t, locker)

	unlock, err := locker.Lock(context.Background(), ZoneKey(2, "ip"))
	require.NoError(t, err)
	assert.True(t, mr.Exists("switchmap:lock:zone:2:ip"))
	unlock()
	assert.False(t, mr.Exists("switchmap:lock:zone:2:ip"))
}

func TestRedisLocker_DoesNotReleaseForeignToken(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	locker := NewRedisLocker(client, "p:", time.Second, time.Millisecond)
	unlock, err := locker.Lock(context.Background(), "k")
	require.NoError(t, err)

	// 锁过期后被其他持有者获取
	require.NoError(t, mr.Set("p:k", "someone-else"))
	unlock()
	got, err := mr.Get("p:k")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestNew(t *testing.T) {
	l, err := New(&config.LockConfig{Backend: "memory"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryLocker{}, l)

	_, err = New(&config.LockConfig{Backend: "redis"}, nil)
	assert.Error(t, err)

	_, err = New(&config.LockConfig{Backend: "etcd"}, nil)
	assert.Error(t, err)
}
