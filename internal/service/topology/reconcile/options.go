package reconcile

import (
	"time"

	"switchmap/internal/pkg/lock"
	"switchmap/internal/pkg/resolver"
)

// deps 对账器的可替换协作者
type deps struct {
	resolver  resolver.Resolver
	locker    lock.Locker
	now       func() time.Time
	stageHook func(stage string) error
}

func defaultDeps() deps {
	return deps{
		resolver: resolver.NoopResolver{},
		locker:   lock.NewMemoryLocker(),
		now:      time.Now,
	}
}

// Option 对账器选项
type Option func(*deps)

// WithResolver 设置反向DNS解析器
func WithResolver(r resolver.Resolver) Option {
	return func(d *deps) {
		if r != nil {
			d.resolver = r
		}
	}
}

// WithLocker 设置区域共享表锁
func WithLocker(l lock.Locker) Option {
	return func(d *deps) {
		if l != nil {
			d.locker = l
		}
	}
}

// WithClock 设置时钟 (ts_idle 使用)
func WithClock(now func() time.Time) Option {
	return func(d *deps) {
		if now != nil {
			d.now = now
		}
	}
}

// WithStageHook 每个阶段开始前调用，返回错误时中止后续阶段
func WithStageHook(hook func(stage string) error) Option {
	return func(d *deps) {
		d.stageHook = hook
	}
}
