/**
 * 处理器:入库状态
 * @description: 守护进程的健康检查与最近一次入库报告
 * @func: Healthz, Status
 */
package status

import (
	"context"
	"net/http"
	"time"

	"switchmap/internal/model"
	"switchmap/internal/pkg/logger"
	"switchmap/internal/pkg/version"
	repo "switchmap/internal/repo/mysql/topology"
	"switchmap/internal/service/topology/ingest"

	"github.com/gin-gonic/gin"
)

// ReportSource 提供入库运行状态
type ReportSource interface {
	LastReport() *ingest.Report
	Running() bool
}

// StatusHandler 状态处理器
type StatusHandler struct {
	store  *repo.Store
	source ReportSource
}

// NewStatusHandler 创建状态处理器
func NewStatusHandler(store *repo.Store, source ReportSource) *StatusHandler {
	return &StatusHandler{store: store, source: source}
}

// Register 注册路由
func (h *StatusHandler) Register(r gin.IRouter) {
	r.GET("/healthz", h.Healthz)
	r.GET("/status", h.Status)
}

// Healthz 健康检查，数据库不可用时返回 503
// GET /healthz
func (h *StatusHandler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.ping(ctx); err != nil {
		logger.LogError(err, 6001, "handler.status", "healthz", map[string]interface{}{
			"client_ip": c.ClientIP(),
		})
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"error":     err.Error(),
			"timestamp": logger.FormatTimestamp(time.Now()),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"version":   version.Version,
		"timestamp": logger.FormatTimestamp(time.Now()),
	})
}

// Status 当前 Root 与最近一次入库报告
// GET /status
func (h *StatusHandler) Status(c *gin.Context) {
	root, err := h.store.Events.GetRoot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.APIResponse{Code: http.StatusInternalServerError, Status: "error", Message: "failed to read root", Error: err.Error()})
		return
	}

	data := gin.H{
		"running":     h.source.Running(),
		"last_report": h.source.LastReport(),
	}
	if root != nil {
		data["root_event"] = root.IdxEvent
	}
	c.JSON(http.StatusOK, model.APIResponse{Code: http.StatusOK, Status: "success", Message: "ok", Data: data})
}

func (h *StatusHandler) ping(ctx context.Context) error {
	sqlDB, err := h.store.DB().DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
