// 结构化日志辅助方法
// 拓扑入库的每条日志都带有数字诊断码(code)，便于跨进程关联同一处调用
package logger

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// FormatTimestamp 格式化时间戳为统一的毫秒精度格式
func FormatTimestamp(t time.Time) string {
	return t.Format(timestampFormat)
}

// LogType 日志类型枚举
type LogType string

const (
	// IngestLog 入库日志 - 记录快照入库各阶段的进度
	IngestLog LogType = "ingest"
	// ErrorLog 错误日志 - 记录持久化失败等异常
	ErrorLog LogType = "error"
	// SystemLog 系统日志 - 记录启动、调度、关闭等系统事件
	SystemLog LogType = "system"
	// DebugLog 调试日志 - 记录逐行对账细节
	DebugLog LogType = "debug"
)

// buildFields 合并公共字段与额外字段
func buildFields(logType LogType, code int, path, operation string, extraFields map[string]interface{}) logrus.Fields {
	fields := logrus.Fields{
		"type":      logType,
		"code":      code,
		"path":      path,
		"operation": operation,
	}
	for k, v := range extraFields {
		fields[k] = v
	}
	return fields
}

// LogError 记录错误日志
// 用于记录持久化失败、文件读取失败等需要运维关注的错误
func LogError(err error, code int, path, operation string, extraFields map[string]interface{}) {
	if LoggerInstance == nil || err == nil {
		return
	}

	fields := buildFields(ErrorLog, code, path, operation, extraFields)
	fields["error"] = err.Error()

	LoggerInstance.logger.WithFields(fields).Errorf("System error occurred: %s", err.Error())
}

// LogInfo 记录信息日志
func LogInfo(message string, code int, path, operation string, extraFields map[string]interface{}) {
	if LoggerInstance == nil || message == "" {
		return
	}
	LoggerInstance.logger.WithFields(buildFields(IngestLog, code, path, operation, extraFields)).Info(message)
}

// LogWarn 记录警告日志
func LogWarn(message string, code int, path, operation string, extraFields map[string]interface{}) {
	if LoggerInstance == nil || message == "" {
		return
	}
	LoggerInstance.logger.WithFields(buildFields(IngestLog, code, path, operation, extraFields)).Warn(message)
}

// LogDebug 记录调试日志
func LogDebug(message string, code int, path, operation string, extraFields map[string]interface{}) {
	if LoggerInstance == nil || message == "" {
		return
	}
	LoggerInstance.logger.WithFields(buildFields(DebugLog, code, path, operation, extraFields)).Debug(message)
}

// LogIngestStage 记录单个对账阶段的结果
// result 取值: completed, skipped, failed
func LogIngestStage(stage string, code int, result string, extraFields map[string]interface{}) {
	if LoggerInstance == nil {
		return
	}

	fields := buildFields(IngestLog, code, "reconcile."+stage, stage, extraFields)
	fields["result"] = result

	entry := LoggerInstance.logger.WithFields(fields)
	msg := fmt.Sprintf("Stage %s %s", stage, result)
	switch result {
	case "failed":
		entry.Warn(msg)
	case "skipped":
		entry.Debug(msg)
	default:
		entry.Info(msg)
	}
}

// LogSystemEvent 记录系统事件日志
// 用于记录启动、关闭、调度触发、配置重载等系统级事件
func LogSystemEvent(component, event, message string, level logrus.Level, extraFields map[string]interface{}) {
	if LoggerInstance == nil {
		return
	}

	fields := logrus.Fields{
		"type":      SystemLog,
		"component": component,
		"event":     event,
		"detail":    message,
	}
	for k, v := range extraFields {
		fields[k] = v
	}

	entry := LoggerInstance.logger.WithFields(fields)
	msg := fmt.Sprintf("System event: %s - %s", component, event)
	switch level {
	case logrus.DebugLevel:
		entry.Debug(msg)
	case logrus.WarnLevel:
		entry.Warn(msg)
	case logrus.ErrorLevel:
		entry.Error(msg)
	case logrus.FatalLevel:
		entry.Fatal(msg)
	default:
		entry.Info(msg)
	}
}
