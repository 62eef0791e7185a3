/**
 * 入库运行时装配
 * @description: 按配置创建数据库、Redis、锁、解析器与入库编排器，CLI 与守护进程共用
 */
package ingester

import (
	"fmt"

	"switchmap/internal/config"
	"switchmap/internal/pkg/database"
	"switchmap/internal/pkg/lock"
	"switchmap/internal/pkg/logger"
	"switchmap/internal/pkg/resolver"
	repo "switchmap/internal/repo/mysql/topology"
	"switchmap/internal/service/topology/ingest"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Runtime 入库所需的全部组件
type Runtime struct {
	Config   *config.Config
	DB       *gorm.DB
	Redis    *redis.Client
	Store    *repo.Store
	Ingester *ingest.Ingester
}

// NewRuntime 装配入库运行时
// opts 追加在配置派生的选项之后 (测试用于替换执行器或时钟)
func NewRuntime(cfg *config.Config, opts ...ingest.Option) (*Runtime, error) {
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	rt := &Runtime{Config: cfg, DB: db}

	if cfg.Lock.Backend == "redis" {
		client, err := database.NewRedisConnection(&cfg.Database.Redis)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to connect redis: %w", err)
		}
		rt.Redis = client
	}

	locker, err := lock.New(&cfg.Lock, rt.Redis)
	if err != nil {
		rt.Close()
		return nil, err
	}
	res, err := resolver.New(&cfg.DNS)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to create resolver: %w", err)
	}

	rt.Store = repo.NewStore(db, cfg.Ingest.BatchSize)
	base := []ingest.Option{ingest.WithLocker(locker), ingest.WithResolver(res)}
	rt.Ingester = ingest.New(&cfg.Ingest, rt.Store, append(base, opts...)...)

	logger.LogSystemEvent("runtime", "init", "ingest runtime ready", logrus.InfoLevel, map[string]interface{}{
		"driver":  cfg.Database.Driver,
		"lock":    cfg.Lock.Backend,
		"dns":     cfg.DNS.Enabled,
		"workers": cfg.Ingest.AgentSubprocesses,
	})
	return rt, nil
}

// Close 释放数据库与 Redis 连接
func (rt *Runtime) Close() error {
	var firstErr error
	if rt.Redis != nil {
		if err := rt.Redis.Close(); err != nil {
			firstErr = err
		}
	}
	if rt.DB != nil {
		sqlDB, err := rt.DB.DB()
		if err == nil {
			err = sqlDB.Close()
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
