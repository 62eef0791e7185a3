/**
 * 入库守护进程
 * @description: cron 定时触发与暂存目录监听触发入库，触发合并为单个待执行信号；
 * 同时提供 /healthz 与 /status，并在配置变化时调整日志参数
 */
package ingester

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"switchmap/internal/config"
	"switchmap/internal/handler/status"
	"switchmap/internal/pkg/logger"
	"switchmap/internal/service/topology/ingest"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Daemon 入库守护进程
type Daemon struct {
	rt         *Runtime
	cron       *cron.Cron
	dirWatcher *ingest.DirWatcher
	httpServer *http.Server
	triggers   chan struct{}
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// NewDaemon 创建守护进程
func NewDaemon(rt *Runtime) *Daemon {
	return &Daemon{
		rt:       rt,
		triggers: make(chan struct{}, 1),
	}
}

// Trigger 请求一次入库；已有待执行请求时合并
func (d *Daemon) Trigger() {
	select {
	case d.triggers <- struct{}{}:
	default:
	}
}

// Start 启动调度、目录监听与HTTP服务
func (d *Daemon) Start(ctx context.Context) error {
	cfg := d.rt.Config
	ctx, d.cancel = context.WithCancel(ctx)

	d.cron = cron.New()
	if _, err := d.cron.AddFunc(cfg.Ingest.Schedule, d.Trigger); err != nil {
		d.cancel()
		return fmt.Errorf("invalid ingest schedule %q: %w", cfg.Ingest.Schedule, err)
	}

	if cfg.Ingest.Watch {
		w, err := ingest.NewDirWatcher(cfg.Ingest.Directory, cfg.Ingest.Debounce, d.Trigger)
		if err != nil {
			d.cancel()
			return err
		}
		if err := w.Start(); err != nil {
			d.cancel()
			return err
		}
		d.dirWatcher = w
	}

	d.wg.Add(1)
	go d.loop(ctx)
	d.cron.Start()

	if cfg.Server.Enabled {
		d.startHTTP()
	}

	logger.LogSystemEvent("daemon", "start", "switchmap daemon started", logrus.InfoLevel, map[string]interface{}{
		"schedule":  cfg.Ingest.Schedule,
		"watch":     cfg.Ingest.Watch,
		"directory": cfg.Ingest.Directory,
	})
	return nil
}

// Stop 停止触发源，等待运行中的入库结束后关闭HTTP服务
func (d *Daemon) Stop(ctx context.Context) error {
	if d.cron != nil {
		<-d.cron.Stop().Done()
	}
	if d.dirWatcher != nil {
		if err := d.dirWatcher.Stop(); err != nil {
			logger.Warnf("Failed to stop directory watcher: %v", err)
		}
	}
	if d.cancel != nil {
		d.cancel()
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("timed out waiting for ingest run: %w", ctx.Err())
	}

	if d.httpServer != nil {
		if err := d.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to stop HTTP server: %w", err)
		}
	}

	logger.LogSystemEvent("daemon", "stop", "switchmap daemon stopped", logrus.InfoLevel, nil)
	return nil
}

// OnConfigReload 配置热加载回调，调整日志参数
func (d *Daemon) OnConfigReload(oldConfig, newConfig *config.Config) error {
	if logger.LoggerInstance == nil || newConfig == nil {
		return nil
	}
	if err := logger.LoggerInstance.UpdateConfig(&newConfig.Log); err != nil {
		return err
	}
	logger.LogSystemEvent("daemon", "reload", "configuration reloaded", logrus.InfoLevel, map[string]interface{}{
		"log_level": newConfig.Log.Level,
	})
	return nil
}

// Handler HTTP 路由 (测试可直接使用)
func (d *Daemon) Handler() http.Handler {
	if mode := d.rt.Config.Server.Mode; mode != "" {
		gin.SetMode(mode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	status.NewStatusHandler(d.rt.Store, d.rt.Ingester).Register(engine)
	return engine
}

func (d *Daemon) startHTTP() {
	cfg := d.rt.Config.Server
	d.httpServer = &http.Server{
		Addr:         cfg.GetAddress(),
		Handler:      d.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	go func() {
		if err := d.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogError(err, 7001, "app.daemon", "listen", map[string]interface{}{
				"addr": cfg.GetAddress(),
			})
		}
	}()
}

// loop 串行消费触发信号
func (d *Daemon) loop(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.triggers:
			d.runOnce(ctx)
		}
	}
}

func (d *Daemon) runOnce(ctx context.Context) {
	report, err := d.rt.Ingester.Run(ctx)
	switch {
	case errors.Is(err, ingest.ErrNoFiles), errors.Is(err, ingest.ErrSkipped), errors.Is(err, ingest.ErrRunning):
		logger.LogSystemEvent("daemon", "run", err.Error(), logrus.DebugLevel, nil)
	case err != nil:
		logger.LogError(err, 7011, "app.daemon", "run", nil)
	default:
		logger.LogSystemEvent("daemon", "run", "ingest run completed", logrus.InfoLevel, map[string]interface{}{
			"event":  report.EventID,
			"done":   report.Done,
			"failed": report.Failed,
		})
	}
}
