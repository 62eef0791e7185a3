package topology

import (
	"context"
	"errors"
	"fmt"

	model "switchmap/internal/model/topology"
	"switchmap/internal/pkg/logger"
)

// DeviceRepository 设备仓库
type DeviceRepository struct {
	base
}

// GetDevice 根据区域与主机名获取设备
func (r *DeviceRepository) GetDevice(ctx context.Context, zoneID uint64, hostname string) (*model.Device, error) {
	return selectOne[model.Device](ctx, r.base, 1201, "get_device", "idx_zone = ? AND hostname = ?", zoneID, hostname)
}

// GetDeviceByID 根据ID获取设备
func (r *DeviceRepository) GetDeviceByID(ctx context.Context, id uint64) (*model.Device, error) {
	return selectOne[model.Device](ctx, r.base, 1202, "get_device_by_id", "id = ?", id)
}

// ExistsDevice 区域内是否已有该主机名的设备
func (r *DeviceRepository) ExistsDevice(ctx context.Context, zoneID uint64, hostname string) (bool, error) {
	return exists[model.Device](ctx, r.base, 1207, "exists_device", "idx_zone = ? AND hostname = ?", zoneID, hostname)
}

// ListDevices 获取区域下全部设备
func (r *DeviceRepository) ListDevices(ctx context.Context, zoneID uint64) ([]*model.Device, error) {
	return selectRows[model.Device](ctx, r.base, 1203, "list_devices", "idx_zone = ?", zoneID)
}

// CreateDevice 插入设备并重新查询以获得主键
func (r *DeviceRepository) CreateDevice(ctx context.Context, device *model.Device) (*model.Device, error) {
	if device == nil {
		return nil, errors.New("device is nil")
	}
	if err := bulkInsert(ctx, r.base, 1204, "insert_device", []*model.Device{device}); err != nil {
		return nil, err
	}
	stored, err := r.GetDevice(ctx, device.IdxZone, device.Hostname)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		err := fmt.Errorf("device %s not found after insert", device.Hostname)
		logger.LogError(err, 1205, repoPath, "insert_device", nil)
		return nil, err
	}
	return stored, nil
}

// UpdateDevice 整行更新设备
func (r *DeviceRepository) UpdateDevice(ctx context.Context, device *model.Device) error {
	if device == nil || device.ID == 0 {
		return errors.New("invalid device or id")
	}
	return updateRow(ctx, r.base, 1206, "update_device", device)
}

// L1InterfaceRepository 接口仓库
type L1InterfaceRepository struct {
	base
}

// GetL1Interface 根据设备与 ifIndex 获取接口
func (r *L1InterfaceRepository) GetL1Interface(ctx context.Context, deviceID uint64, ifIndex int) (*model.L1Interface, error) {
	return selectOne[model.L1Interface](ctx, r.base, 1301, "get_l1interface", "idx_device = ? AND ifindex = ?", deviceID, ifIndex)
}

// ListL1Interfaces 获取设备下全部接口，按 ifIndex 升序
func (r *L1InterfaceRepository) ListL1Interfaces(ctx context.Context, deviceID uint64) ([]*model.L1Interface, error) {
	var rows []*model.L1Interface
	err := r.db.WithContext(ctx).Where("idx_device = ?", deviceID).Order("ifindex").Find(&rows).Error
	if err != nil {
		logger.LogError(err, 1302, repoPath, "list_l1interfaces", map[string]interface{}{
			"device": deviceID,
		})
		return nil, fmt.Errorf("list_l1interfaces: %w", err)
	}
	return rows, nil
}

// BulkCreateL1Interfaces 批量插入接口
func (r *L1InterfaceRepository) BulkCreateL1Interfaces(ctx context.Context, rows []*model.L1Interface) error {
	return bulkInsert(ctx, r.base, 1303, "insert_l1interfaces", rows)
}

// UpdateL1Interface 整行更新接口
func (r *L1InterfaceRepository) UpdateL1Interface(ctx context.Context, row *model.L1Interface) error {
	if row == nil || row.ID == 0 {
		return errors.New("invalid l1interface or id")
	}
	return updateRow(ctx, r.base, 1304, "update_l1interface", row)
}
