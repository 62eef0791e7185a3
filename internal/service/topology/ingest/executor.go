package ingest

import (
	"context"

	"switchmap/internal/config"

	"github.com/sourcegraph/conc/pool"
)

// Job 一个入库任务 (一个区域或一个设备文件)
type Job func(ctx context.Context)

// Executor 任务执行策略
// Execute 在全部任务结束后返回；任务自行记录结果，不向执行器返回错误
type Executor interface {
	Execute(ctx context.Context, jobs []Job)
}

// SerialExecutor 在调用方协程内按顺序执行
type SerialExecutor struct{}

// Execute 顺序执行全部任务
func (SerialExecutor) Execute(ctx context.Context, jobs []Job) {
	for _, job := range jobs {
		job(ctx)
	}
}

// PoolExecutor 有界协程池
type PoolExecutor struct {
	size int // 最大并发数
}

// NewPoolExecutor 创建协程池执行器，size <= 0 时为 1
func NewPoolExecutor(size int) *PoolExecutor {
	if size <= 0 {
		size = 1
	}
	return &PoolExecutor{size: size}
}

// Size 最大并发数
func (e *PoolExecutor) Size() int {
	return e.size
}

// Execute 并发执行全部任务并等待完成
func (e *PoolExecutor) Execute(ctx context.Context, jobs []Job) {
	p := pool.New().WithMaxGoroutines(e.size)
	for _, job := range jobs {
		job := job
		p.Go(func() {
			job(ctx)
		})
	}
	p.Wait()
}

// NewExecutor 根据入库配置选择执行策略
func NewExecutor(cfg *config.IngestConfig) Executor {
	if cfg == nil || !cfg.Multiprocessing || cfg.AgentSubprocesses <= 1 {
		return SerialExecutor{}
	}
	return NewPoolExecutor(cfg.AgentSubprocesses)
}
