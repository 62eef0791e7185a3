package topology

import (
	"context"

	model "switchmap/internal/model/topology"
)

// ZoneRepository 区域仓库
type ZoneRepository struct {
	base
}

// GetZone 根据事件与名称获取区域
func (r *ZoneRepository) GetZone(ctx context.Context, eventID uint64, name string) (*model.Zone, error) {
	return selectOne[model.Zone](ctx, r.base, 1101, "get_zone", "idx_event = ? AND name = ?", eventID, name)
}

// GetZoneByID 根据ID获取区域
func (r *ZoneRepository) GetZoneByID(ctx context.Context, id uint64) (*model.Zone, error) {
	return selectOne[model.Zone](ctx, r.base, 1102, "get_zone_by_id", "id = ?", id)
}

// ListZones 获取事件下全部区域
func (r *ZoneRepository) ListZones(ctx context.Context, eventID uint64) ([]*model.Zone, error) {
	return selectRows[model.Zone](ctx, r.base, 1103, "list_zones", "idx_event = ?", eventID)
}

// GetOrCreateZone 获取区域，不存在则创建
// 并发创建时唯一键冲突被忽略，再次查询得到胜出的行
func (r *ZoneRepository) GetOrCreateZone(ctx context.Context, eventID uint64, name string) (*model.Zone, error) {
	zone, err := r.GetZone(ctx, eventID, name)
	if err != nil || zone != nil {
		return zone, err
	}

	if err := bulkInsert(ctx, r.base, 1104, "insert_zone", []*model.Zone{{
		IdxEvent: eventID,
		Name:     name,
		Enabled:  1,
	}}); err != nil {
		return nil, err
	}
	return r.GetZone(ctx, eventID, name)
}
