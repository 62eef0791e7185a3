package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"switchmap/internal/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DirWatcher 暂存目录监听器
// 新快照写入后(防抖)触发一次回调，连续写入只触发一次
type DirWatcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	debounce time.Duration
	trigger  func()
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewDirWatcher 创建暂存目录监听器
func NewDirWatcher(dir string, debounce time.Duration, trigger func()) (*DirWatcher, error) {
	if trigger == nil {
		return nil, fmt.Errorf("trigger is required")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create directory watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = 2 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &DirWatcher{
		watcher:  watcher,
		dir:      dir,
		debounce: debounce,
		trigger:  trigger,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}, nil
}

// Start 开始监听
func (w *DirWatcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	go w.loop()

	logger.LogSystemEvent("watcher", "start", "watching staging directory", logrus.InfoLevel, map[string]interface{}{
		"directory": w.dir,
	})
	return nil
}

// Stop 停止监听并等待循环退出
func (w *DirWatcher) Stop() error {
	w.cancel()
	select {
	case <-w.done:
	case <-time.After(5 * time.Second):
		logger.Warnf("Directory watcher stop timeout")
	}
	return w.watcher.Close()
}

func (w *DirWatcher) loop() {
	defer close(w.done)

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-w.ctx.Done():
			timer.Stop()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if isSnapshotFile(event.Name) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.LogWarn("Directory watcher error", 5071, "ingest.watcher", "watch", map[string]interface{}{
				"error": err.Error(),
			})

		case <-timer.C:
			logger.LogSystemEvent("watcher", "trigger", "new snapshots detected", logrus.DebugLevel, map[string]interface{}{
				"directory": w.dir,
			})
			w.trigger()
		}
	}
}

func isSnapshotFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), snapshotExt)
}
