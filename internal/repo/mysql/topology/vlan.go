package topology

import (
	"context"
	"errors"

	model "switchmap/internal/model/topology"
)

// VlanRepository VLAN仓库
type VlanRepository struct {
	base
}

// GetVlan 根据设备与VLAN编号获取VLAN
func (r *VlanRepository) GetVlan(ctx context.Context, deviceID uint64, vlan int) (*model.Vlan, error) {
	return selectOne[model.Vlan](ctx, r.base, 1401, "get_vlan", "idx_device = ? AND vlan = ?", deviceID, vlan)
}

// ListVlans 获取设备下全部VLAN
func (r *VlanRepository) ListVlans(ctx context.Context, deviceID uint64) ([]*model.Vlan, error) {
	return selectRows[model.Vlan](ctx, r.base, 1402, "list_vlans", "idx_device = ?", deviceID)
}

// BulkCreateVlans 批量插入VLAN
func (r *VlanRepository) BulkCreateVlans(ctx context.Context, rows []*model.Vlan) error {
	return bulkInsert(ctx, r.base, 1403, "insert_vlans", rows)
}

// UpdateVlan 整行更新VLAN
func (r *VlanRepository) UpdateVlan(ctx context.Context, row *model.Vlan) error {
	if row == nil || row.ID == 0 {
		return errors.New("invalid vlan or id")
	}
	return updateRow(ctx, r.base, 1404, "update_vlan", row)
}

// VlanPortRepository 接口-VLAN关联仓库
type VlanPortRepository struct {
	base
}

// GetVlanPort 根据接口与VLAN获取关联
func (r *VlanPortRepository) GetVlanPort(ctx context.Context, l1InterfaceID, vlanID uint64) (*model.VlanPort, error) {
	return selectOne[model.VlanPort](ctx, r.base, 1501, "get_vlanport", "idx_l1interface = ? AND idx_vlan = ?", l1InterfaceID, vlanID)
}

// ListVlanPorts 获取一组接口上的全部关联
func (r *VlanPortRepository) ListVlanPorts(ctx context.Context, l1InterfaceIDs []uint64) ([]*model.VlanPort, error) {
	return selectIn[model.VlanPort](ctx, r.base, 1502, "list_vlanports", "idx_l1interface", l1InterfaceIDs, nil)
}

// BulkCreateVlanPorts 批量插入关联
func (r *VlanPortRepository) BulkCreateVlanPorts(ctx context.Context, rows []*model.VlanPort) error {
	return bulkInsert(ctx, r.base, 1503, "insert_vlanports", rows)
}

// UpdateVlanPort 更新关联
func (r *VlanPortRepository) UpdateVlanPort(ctx context.Context, row *model.VlanPort) error {
	if row == nil || row.ID == 0 {
		return errors.New("invalid vlanport or id")
	}
	return updateRow(ctx, r.base, 1504, "update_vlanport", row)
}
