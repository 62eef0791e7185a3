// 区域级入库编排
// 一次运行: 发现暂存目录中的快照 -> 创建事件 -> 分配区域 -> 按区域写入 Mac/Ip/MacIp ->
// 逐设备对账 -> 推进 Root 并按需清理旧事件
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"switchmap/internal/config"
	"switchmap/internal/pkg/lock"
	"switchmap/internal/pkg/logger"
	"switchmap/internal/pkg/resolver"
	"switchmap/internal/pkg/utils"
	repo "switchmap/internal/repo/mysql/topology"
	"switchmap/internal/service/topology/normalizer"
	"switchmap/internal/service/topology/reconcile"
	"switchmap/internal/service/topology/snapshot"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrSkipped 跳过标记存在
	ErrSkipped = errors.New("ingest skipped: skip marker present")
	// ErrNoFiles 暂存目录中没有快照
	ErrNoFiles = errors.New("no snapshot files to ingest")
	// ErrRunning 同一进程内已有运行中的入库
	ErrRunning = errors.New("ingest run already in progress")
)

const (
	ingestPath   = "ingest.ingester"
	snapshotExt  = ".yaml"
	retryBackoff = 200 * time.Millisecond
)

// Ingester 入库编排器
type Ingester struct {
	cfg      *config.IngestConfig
	store    *repo.Store
	executor Executor
	resolver resolver.Resolver
	locker   lock.Locker
	now      func() time.Time
	backoff  time.Duration

	running atomic.Bool
	mu      sync.RWMutex
	last    *Report
}

// Option 入库编排器选项
type Option func(*Ingester)

// WithExecutor 设置执行策略
func WithExecutor(e Executor) Option {
	return func(i *Ingester) {
		if e != nil {
			i.executor = e
		}
	}
}

// WithResolver 设置反向DNS解析器
func WithResolver(r resolver.Resolver) Option {
	return func(i *Ingester) {
		if r != nil {
			i.resolver = r
		}
	}
}

// WithLocker 设置区域共享表锁
func WithLocker(l lock.Locker) Option {
	return func(i *Ingester) {
		if l != nil {
			i.locker = l
		}
	}
}

// WithClock 设置时钟
func WithClock(now func() time.Time) Option {
	return func(i *Ingester) {
		if now != nil {
			i.now = now
		}
	}
}

// New 创建入库编排器
func New(cfg *config.IngestConfig, store *repo.Store, opts ...Option) *Ingester {
	i := &Ingester{
		cfg:      cfg,
		store:    store,
		executor: NewExecutor(cfg),
		resolver: resolver.NoopResolver{},
		locker:   lock.NewMemoryLocker(),
		now:      time.Now,
		backoff:  retryBackoff,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// LastReport 最近一次完成的运行报告，尚未运行时为 nil
func (i *Ingester) LastReport() *Report {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.last
}

// Running 是否有运行中的入库
func (i *Ingester) Running() bool {
	return i.running.Load()
}

// unit 一个已分配区域的快照文件
type unit struct {
	result *FileResult
	snap   *snapshot.Snapshot
	zoneID uint64
}

// Run 执行一次完整入库
// 单个文件失败不影响其他文件；至少一个文件完成时推进 Root
func (i *Ingester) Run(ctx context.Context) (*Report, error) {
	if !i.running.CompareAndSwap(false, true) {
		return nil, ErrRunning
	}
	defer i.running.Store(false)

	if i.skipRequested() {
		logger.LogSystemEvent("ingest", "skip", "skip marker present, run not started", logrus.InfoLevel, map[string]interface{}{
			"marker": i.cfg.SkipFilePath(),
		})
		return nil, ErrSkipped
	}

	paths, err := utils.ListFiles(i.cfg.Directory, snapshotExt)
	if err != nil {
		logger.LogError(err, 5001, ingestPath, "discover", map[string]interface{}{
			"directory": i.cfg.Directory,
		})
		return nil, err
	}
	if len(paths) == 0 {
		logger.LogDebug("No snapshot files found", 5002, ingestPath, "discover", map[string]interface{}{
			"directory": i.cfg.Directory,
		})
		return nil, ErrNoFiles
	}

	started := i.now()
	event, err := i.store.Events.CreateEvent(ctx, uuid.NewString(), started.Unix())
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	report := &Report{
		EventID:   event.ID,
		EventName: event.Name,
		StartedAt: started,
		Files:     make([]*FileResult, 0, len(paths)),
	}
	for _, path := range paths {
		report.Files = append(report.Files, &FileResult{Path: path, State: StateDiscovered})
	}
	logger.LogSystemEvent("ingest", "start", "ingest run started", logrus.InfoLevel, map[string]interface{}{
		"event": event.ID,
		"files": len(paths),
	})

	units := i.assignZones(ctx, event.ID, report.Files)
	i.ingestZones(ctx, units)
	i.reconcileDevices(ctx, units)

	err = i.finish(ctx, report)
	report.FinishedAt = i.now()

	i.mu.Lock()
	i.last = report
	i.mu.Unlock()

	logger.LogSystemEvent("ingest", "finish", "ingest run finished", logrus.InfoLevel, map[string]interface{}{
		"event":   report.EventID,
		"done":    report.Done,
		"skipped": report.Skipped,
		"failed":  report.Failed,
		"root":    report.RootEvent,
		"purged":  report.Purged,
	})
	return report, err
}

// assignZones 加载并归一化全部快照，创建各自的区域
func (i *Ingester) assignZones(ctx context.Context, eventID uint64, files []*FileResult) []*unit {
	zones := make(map[string]uint64)
	units := make([]*unit, 0, len(files))

	for _, f := range files {
		if err := i.checkpoint(ctx); err != nil {
			f.skip(err)
			continue
		}

		snap, err := snapshot.Load(f.Path)
		if err != nil {
			logger.LogError(err, 5011, ingestPath, "load_snapshot", map[string]interface{}{
				"file": f.Path,
			})
			f.fail(err)
			continue
		}
		normalizer.Normalize(snap)
		f.Hostname = snap.Hostname()
		f.Zone = snap.ZoneName(i.cfg.DefaultZone)

		zoneID, ok := zones[f.Zone]
		if !ok {
			zone, err := i.store.Zones.GetOrCreateZone(ctx, eventID, f.Zone)
			if err != nil {
				f.fail(err)
				continue
			}
			zoneID = zone.ID
			zones[f.Zone] = zoneID
		}

		f.State = StateZoneAssigned
		units = append(units, &unit{result: f, snap: snap, zoneID: zoneID})
	}
	return units
}

// ingestZones 第一阶段: 每个区域合并全部设备的 ARP/NDP 配对后写入一次
func (i *Ingester) ingestZones(ctx context.Context, units []*unit) {
	groups := make(map[uint64][]*unit)
	var zoneIDs []uint64
	for _, u := range units {
		if _, ok := groups[u.zoneID]; !ok {
			zoneIDs = append(zoneIDs, u.zoneID)
		}
		groups[u.zoneID] = append(groups[u.zoneID], u)
	}
	sort.Slice(zoneIDs, func(a, b int) bool { return zoneIDs[a] < zoneIDs[b] })

	jobs := make([]Job, 0, len(zoneIDs))
	for _, zoneID := range zoneIDs {
		zoneID, members := zoneID, groups[zoneID]
		jobs = append(jobs, func(ctx context.Context) {
			if err := i.checkpoint(ctx); err != nil {
				for _, u := range members {
					u.result.skip(err)
				}
				return
			}

			sets := make([][]reconcile.Pair, 0, len(members))
			for _, u := range members {
				sets = append(sets, reconcile.ExtractPairs(u.snap))
			}
			pairs := reconcile.MergePairs(sets...)

			err := i.retry(ctx, "zone", func() error {
				return reconcile.NewZone(i.store, zoneID, i.reconcileOptions()...).Process(ctx, pairs)
			})
			for _, u := range members {
				if err != nil {
					u.result.fail(err)
					continue
				}
				u.result.State = StateZoneMacIpIngested
			}
		})
	}
	i.executor.Execute(ctx, jobs)
}

// reconcileDevices 第二阶段: 每个文件独立执行设备级对账
func (i *Ingester) reconcileDevices(ctx context.Context, units []*unit) {
	jobs := make([]Job, 0, len(units))
	for _, u := range units {
		if u.result.State != StateZoneMacIpIngested {
			continue
		}
		u := u
		jobs = append(jobs, func(ctx context.Context) {
			if err := i.checkpoint(ctx); err != nil {
				u.result.skip(err)
				return
			}

			var topo *reconcile.Topology
			err := i.retry(ctx, u.result.Hostname, func() error {
				opts := append(i.reconcileOptions(), reconcile.WithStageHook(i.stageHook))
				topo = reconcile.NewTopology(i.store, u.zoneID, u.snap, opts...)
				return topo.Process(ctx)
			})
			if topo != nil {
				u.result.Stages = topo.Status
			}

			switch {
			case errors.Is(err, ErrSkipped), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				u.result.skip(err)
			case err != nil:
				logger.LogError(err, 5021, ingestPath, "reconcile_device", map[string]interface{}{
					"file":     u.result.Path,
					"hostname": u.result.Hostname,
				})
				u.result.fail(err)
			default:
				u.result.State = StateDeviceReconciled
				i.complete(u.result)
			}
		})
	}
	i.executor.Execute(ctx, jobs)
}

// complete 文件处理完成，按配置删除快照
func (i *Ingester) complete(f *FileResult) {
	if i.cfg.DeleteFiles {
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			logger.LogWarn("Failed to delete processed snapshot", 5031, ingestPath, "delete_file", map[string]interface{}{
				"file":  f.Path,
				"error": err.Error(),
			})
		}
	}
	f.State = StateDone
}

// finish 汇总结果并推进 Root
func (i *Ingester) finish(ctx context.Context, report *Report) error {
	report.tally()
	if report.Done == 0 {
		logger.LogWarn("No snapshot completed, root unchanged", 5041, ingestPath, "advance_root", map[string]interface{}{
			"event": report.EventID,
		})
		return nil
	}

	err := i.retry(ctx, "root", func() error {
		purged, err := i.store.Events.AdvanceRoot(ctx, report.EventID, i.cfg.Purge)
		report.Purged = purged
		return err
	})
	if err != nil {
		return fmt.Errorf("advance root: %w", err)
	}

	root, err := i.store.Events.GetRoot(ctx)
	if err != nil {
		return fmt.Errorf("read root: %w", err)
	}
	if root != nil {
		report.RootEvent = root.IdxEvent
	}
	return nil
}

// retry 瞬时错误按配置次数重试
func (i *Ingester) retry(ctx context.Context, target string, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !repo.IsTransient(err) || attempt >= i.cfg.Retries {
			return err
		}
		logger.LogWarn("Transient error, retrying", 5051, ingestPath, "retry", map[string]interface{}{
			"target":  target,
			"attempt": attempt + 1,
			"error":   err.Error(),
		})
		select {
		case <-ctx.Done():
			return err
		case <-time.After(i.backoff * time.Duration(attempt+1)):
		}
	}
}

// checkpoint 每个任务开始前检查取消与跳过标记
func (i *Ingester) checkpoint(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if i.skipRequested() {
		return ErrSkipped
	}
	return nil
}

// stageHook 每个对账阶段开始前检查跳过标记
func (i *Ingester) stageHook(stage string) error {
	if i.skipRequested() {
		logger.LogInfo("Skip marker detected, aborting device", 5061, ingestPath, "stage_hook", map[string]interface{}{
			"stage": stage,
		})
		return ErrSkipped
	}
	return nil
}

func (i *Ingester) skipRequested() bool {
	return utils.FileExists(i.cfg.SkipFilePath())
}

func (i *Ingester) reconcileOptions() []reconcile.Option {
	return []reconcile.Option{
		reconcile.WithResolver(i.resolver),
		reconcile.WithLocker(i.locker),
		reconcile.WithClock(i.now),
	}
}
