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

// OuiRepository 厂商前缀仓库
type OuiRepository struct {
	base
}

// GetOui 根据前缀获取厂商
func (r *OuiRepository) GetOui(ctx context.Context, prefix string) (*model.Oui, error) {
	return selectOne[model.Oui](ctx, r.base, 1601, "get_oui", "oui = ?", prefix)
}

// ResolveOuis 批量解析前缀到 Oui 主键，未知前缀映射到 UnknownOuiID
func (r *OuiRepository) ResolveOuis(ctx context.Context, prefixes []string) (map[string]uint64, error) {
	rows, err := selectIn[model.Oui](ctx, r.base, 1602, "resolve_ouis", "oui", prefixes, nil)
	if err != nil {
		return nil, err
	}

	found := make(map[string]uint64, len(rows))
	for _, row := range rows {
		found[row.Oui] = row.ID
	}

	result := make(map[string]uint64, len(prefixes))
	for _, prefix := range prefixes {
		if id, ok := found[prefix]; ok {
			result[prefix] = id
		} else {
			result[prefix] = model.UnknownOuiID
		}
	}
	return result, nil
}

// UpsertOuis 导入厂商前缀，已存在的前缀更新厂商名称
func (r *OuiRepository) UpsertOuis(ctx context.Context, rows []*model.Oui) error {
	if len(rows) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "oui"}},
			DoUpdates: clause.AssignmentColumns([]string{"organization", "updated_at"}),
		}).
		CreateInBatches(rows, r.batchSize).Error
	if err != nil {
		logger.LogError(err, 1603, repoPath, "upsert_ouis", map[string]interface{}{
			"rows": len(rows),
		})
		return fmt.Errorf("upsert_ouis: %w", err)
	}
	return nil
}

// MacRepository MAC仓库 (区域共享表)
type MacRepository struct {
	base
}

// GetMac 根据区域与MAC获取记录
func (r *MacRepository) GetMac(ctx context.Context, zoneID uint64, mac string) (*model.Mac, error) {
	return selectOne[model.Mac](ctx, r.base, 1701, "get_mac", "idx_zone = ? AND mac = ?", zoneID, mac)
}

// ListMacs 批量获取区域内的MAC，返回 mac -> 记录
func (r *MacRepository) ListMacs(ctx context.Context, zoneID uint64, macs []string) (map[string]*model.Mac, error) {
	rows, err := selectIn[model.Mac](ctx, r.base, 1702, "list_macs", "mac", macs, func(db *gorm.DB) *gorm.DB {
		return db.Where("idx_zone = ?", zoneID)
	})
	if err != nil {
		return nil, err
	}
	result := make(map[string]*model.Mac, len(rows))
	for _, row := range rows {
		result[row.Mac] = row
	}
	return result, nil
}

// ListMacsByID 根据主键批量获取MAC
func (r *MacRepository) ListMacsByID(ctx context.Context, ids []uint64) ([]*model.Mac, error) {
	return selectIn[model.Mac](ctx, r.base, 1703, "list_macs_by_id", "id", ids, nil)
}

// BulkCreateMacs 批量插入MAC，已存在的 (mac, zone) 被忽略
func (r *MacRepository) BulkCreateMacs(ctx context.Context, rows []*model.Mac) error {
	return bulkInsert(ctx, r.base, 1704, "insert_macs", rows)
}

// UpdateMac 整行更新MAC
func (r *MacRepository) UpdateMac(ctx context.Context, row *model.Mac) error {
	if row == nil || row.ID == 0 {
		return errors.New("invalid mac or id")
	}
	return updateRow(ctx, r.base, 1705, "update_mac", row)
}

// MacPortRepository 接口-MAC关联仓库
type MacPortRepository struct {
	base
}

// GetMacPort 根据接口与MAC获取关联
func (r *MacPortRepository) GetMacPort(ctx context.Context, l1InterfaceID, macID uint64) (*model.MacPort, error) {
	return selectOne[model.MacPort](ctx, r.base, 1801, "get_macport", "idx_l1interface = ? AND idx_mac = ?", l1InterfaceID, macID)
}

// ListMacPorts 获取一组接口上学习到的全部MAC关联
func (r *MacPortRepository) ListMacPorts(ctx context.Context, l1InterfaceIDs []uint64) ([]*model.MacPort, error) {
	return selectIn[model.MacPort](ctx, r.base, 1802, "list_macports", "idx_l1interface", l1InterfaceIDs, nil)
}

// BulkCreateMacPorts 批量插入关联
func (r *MacPortRepository) BulkCreateMacPorts(ctx context.Context, rows []*model.MacPort) error {
	return bulkInsert(ctx, r.base, 1803, "insert_macports", rows)
}

// UpdateMacPort 更新关联
func (r *MacPortRepository) UpdateMacPort(ctx context.Context, row *model.MacPort) error {
	if row == nil || row.ID == 0 {
		return errors.New("invalid macport or id")
	}
	return updateRow(ctx, r.base, 1804, "update_macport", row)
}
