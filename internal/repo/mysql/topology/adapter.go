// 拓扑持久化适配层
// 对账核心只依赖五类操作: 单行查询、列表查询、存在性判断、批量插入、整行更新；
// 每个调用点提供一个数字诊断码，仅用于日志关联
package topology

import (
	"context"
	"errors"
	"fmt"

	model "switchmap/internal/model/topology"
	"switchmap/internal/pkg/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// repoPath 日志中的路径字段
const repoPath = "repo.topology"

// defaultBatchSize 未配置时的批量插入大小
const defaultBatchSize = 100

// inChunkSize IN 查询的分片大小，避免超出驱动的参数上限
const inChunkSize = 500

// Store 拓扑仓库集合
// 对账器只持有 Store，按表访问各个仓库
type Store struct {
	db *gorm.DB

	Events       *EventRepository
	Zones        *ZoneRepository
	Devices      *DeviceRepository
	L1Interfaces *L1InterfaceRepository
	Vlans        *VlanRepository
	VlanPorts    *VlanPortRepository
	Ouis         *OuiRepository
	Macs         *MacRepository
	MacPorts     *MacPortRepository
	Ips          *IpRepository
	MacIps       *MacIpRepository
	IpPorts      *IpPortRepository
}

// NewStore 创建 Store 实例
func NewStore(db *gorm.DB, batchSize int) *Store {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	b := base{db: db, batchSize: batchSize}
	return &Store{
		db:           db,
		Events:       &EventRepository{base: b},
		Zones:        &ZoneRepository{base: b},
		Devices:      &DeviceRepository{base: b},
		L1Interfaces: &L1InterfaceRepository{base: b},
		Vlans:        &VlanRepository{base: b},
		VlanPorts:    &VlanPortRepository{base: b},
		Ouis:         &OuiRepository{base: b},
		Macs:         &MacRepository{base: b},
		MacPorts:     &MacPortRepository{base: b},
		Ips:          &IpRepository{base: b},
		MacIps:       &MacIpRepository{base: b},
		IpPorts:      &IpPortRepository{base: b},
	}
}

// DB 返回底层连接
func (s *Store) DB() *gorm.DB {
	return s.db
}

// AutoMigrate 创建或更新全部拓扑表
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		return fmt.Errorf("auto migrate topology tables: %w", err)
	}
	return nil
}

// DropAll 按依赖逆序删除全部拓扑表
func DropAll(db *gorm.DB) error {
	models := model.AllModels()
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(models[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}

// base 各仓库共享的连接与批量参数
type base struct {
	db        *gorm.DB
	batchSize int
}

// selectOne 单行查询，未找到时返回 (nil, nil)
func selectOne[T any](ctx context.Context, b base, code int, operation string, query interface{}, args ...interface{}) (*T, error) {
	var row T
	err := b.db.WithContext(ctx).Where(query, args...).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.LogError(err, code, repoPath, operation, map[string]interface{}{
			"args": args,
		})
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return &row, nil
}

// selectRows 列表查询，按主键升序
func selectRows[T any](ctx context.Context, b base, code int, operation string, query interface{}, args ...interface{}) ([]*T, error) {
	var rows []*T
	err := b.db.WithContext(ctx).Where(query, args...).Order("id").Find(&rows).Error
	if err != nil {
		logger.LogError(err, code, repoPath, operation, nil)
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return rows, nil
}

// exists 判断是否存在满足条件的行
func exists[T any](ctx context.Context, b base, code int, operation string, query interface{}, args ...interface{}) (bool, error) {
	var n int64
	err := b.db.WithContext(ctx).Model(new(T)).Where(query, args...).Limit(1).Count(&n).Error
	if err != nil {
		logger.LogError(err, code, repoPath, operation, nil)
		return false, fmt.Errorf("%s: %w", operation, err)
	}
	return n > 0, nil
}

// selectIn 分片执行 column IN (...) 查询，scope 为附加条件(如区域)
func selectIn[T any, K any](ctx context.Context, b base, code int, operation, column string, keys []K, scope func(*gorm.DB) *gorm.DB) ([]*T, error) {
	var result []*T
	for start := 0; start < len(keys); start += inChunkSize {
		end := start + inChunkSize
		if end > len(keys) {
			end = len(keys)
		}
		var rows []*T
		query := b.db.WithContext(ctx)
		if scope != nil {
			query = scope(query)
		}
		err := query.Where(clause.IN{Column: clause.Column{Name: column}, Values: toValues(keys[start:end])}).
			Order("id").Find(&rows).Error
		if err != nil {
			logger.LogError(err, code, repoPath, operation, map[string]interface{}{
				"keys": end - start,
			})
			return nil, fmt.Errorf("%s: %w", operation, err)
		}
		result = append(result, rows...)
	}
	return result, nil
}

// bulkInsert 批量插入，唯一键冲突的行被忽略；调用方随后重新查询以获得主键
func bulkInsert[T any](ctx context.Context, b base, code int, operation string, rows []*T) error {
	if len(rows) == 0 {
		return nil
	}
	err := b.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(rows, b.batchSize).Error
	if err != nil {
		logger.LogError(err, code, repoPath, operation, map[string]interface{}{
			"rows": len(rows),
		})
		return fmt.Errorf("%s: %w", operation, err)
	}
	return nil
}

// updateRow 整行更新
// Select("*") 保证零值字段(如 ts_idle=0)也会写入，created_at 保持不变
func updateRow[T any](ctx context.Context, b base, code int, operation string, row *T) error {
	err := b.db.WithContext(ctx).Model(row).
		Select("*").
		Omit("created_at", clause.Associations).
		Updates(row).Error
	if err != nil {
		logger.LogError(err, code, repoPath, operation, nil)
		return fmt.Errorf("%s: %w", operation, err)
	}
	return nil
}

func toValues[K any](keys []K) []interface{} {
	values := make([]interface{}, len(keys))
	for i, k := range keys {
		values[i] = k
	}
	return values
}
