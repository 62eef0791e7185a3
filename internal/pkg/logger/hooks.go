package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"switchmap/internal/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileHook 将不同类型的日志写入不同的滚动文件
// 主文件为 log.file_path，其余类型写在同一目录下的 <type>.log
type FileHook struct {
	logConfig *config.LogConfig
	writers   map[string]io.Writer
	formatter logrus.Formatter
	mutex     sync.Mutex
}

// NewFileHook 创建一个新的FileHook实例
func NewFileHook(logConfig *config.LogConfig) *FileHook {
	hook := &FileHook{
		logConfig: logConfig,
		writers:   make(map[string]io.Writer),
		formatter: &logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
				logrus.FieldKeyFunc:  "function",
				logrus.FieldKeyFile:  "file",
			},
		},
	}

	if logConfig.FilePath != "" {
		hook.writers["default"] = hook.newWriter(logConfig.FilePath)
	}

	return hook
}

// Levels 返回此Hook关心的所有日志级别
func (hook *FileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire 在日志触发时执行
func (hook *FileHook) Fire(entry *logrus.Entry) error {
	logType := "default"
	if lt, ok := entry.Data["type"]; ok {
		switch t := lt.(type) {
		case LogType:
			logType = string(t)
		case string:
			logType = t
		}
	}

	formatted, err := hook.formatter.Format(entry)
	if err != nil {
		return err
	}

	hook.mutex.Lock()
	defer hook.mutex.Unlock()

	writer := hook.getWriter(logType)
	if writer == nil {
		return nil
	}
	_, err = writer.Write(formatted)
	return err
}

// getWriter 获取指定类型的writer，如果不存在则创建 (调用方持有锁)
func (hook *FileHook) getWriter(logType string) io.Writer {
	if writer, exists := hook.writers[logType]; exists {
		return writer
	}

	switch LogType(logType) {
	case IngestLog, ErrorLog, SystemLog, DebugLog:
	default:
		return hook.writers["default"]
	}

	if hook.logConfig.FilePath == "" {
		return nil
	}

	filename := filepath.Join(filepath.Dir(hook.logConfig.FilePath), logType+".log")
	writer := hook.newWriter(filename)
	hook.writers[logType] = writer
	return writer
}

// newWriter 创建lumberjack滚动文件writer
func (hook *FileHook) newWriter(filename string) io.Writer {
	_ = os.MkdirAll(filepath.Dir(filename), 0755)
	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    hook.logConfig.MaxSize,
		MaxBackups: hook.logConfig.MaxBackups,
		MaxAge:     hook.logConfig.MaxAge,
		Compress:   hook.logConfig.Compress,
	}
}
