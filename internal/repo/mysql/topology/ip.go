package topology

import (
	"context"
	"errors"

	model "switchmap/internal/model/topology"

	"gorm.io/gorm"
)

// IpRepository IP仓库 (区域共享表)
type IpRepository struct {
	base
}

// GetIp 根据区域与地址获取IP
func (r *IpRepository) GetIp(ctx context.Context, zoneID uint64, address string) (*model.Ip, error) {
	return selectOne[model.Ip](ctx, r.base, 1901, "get_ip", "idx_zone = ? AND address = ?", zoneID, address)
}

// ListIps 批量获取区域内的IP，返回 address -> 记录
func (r *IpRepository) ListIps(ctx context.Context, zoneID uint64, addresses []string) (map[string]*model.Ip, error) {
	rows, err := selectIn[model.Ip](ctx, r.base, 1902, "list_ips", "address", addresses, func(db *gorm.DB) *gorm.DB {
		return db.Where("idx_zone = ?", zoneID)
	})
	if err != nil {
		return nil, err
	}
	result := make(map[string]*model.Ip, len(rows))
	for _, row := range rows {
		result[row.Address] = row
	}
	return result, nil
}

// BulkCreateIps 批量插入IP，已存在的 (zone, address) 被忽略
func (r *IpRepository) BulkCreateIps(ctx context.Context, rows []*model.Ip) error {
	return bulkInsert(ctx, r.base, 1903, "insert_ips", rows)
}

// UpdateIp 整行更新IP
func (r *IpRepository) UpdateIp(ctx context.Context, row *model.Ip) error {
	if row == nil || row.ID == 0 {
		return errors.New("invalid ip or id")
	}
	return updateRow(ctx, r.base, 1904, "update_ip", row)
}

// MacIpRepository MAC-IP 关联仓库
type MacIpRepository struct {
	base
}

// GetMacIp 根据IP与MAC获取关联
func (r *MacIpRepository) GetMacIp(ctx context.Context, ipID, macID uint64) (*model.MacIp, error) {
	return selectOne[model.MacIp](ctx, r.base, 2001, "get_macip", "idx_ip = ? AND idx_mac = ?", ipID, macID)
}

// ListMacIpsByMac 获取一组MAC对应的全部关联
func (r *MacIpRepository) ListMacIpsByMac(ctx context.Context, macIDs []uint64) ([]*model.MacIp, error) {
	return selectIn[model.MacIp](ctx, r.base, 2002, "list_macips_by_mac", "idx_mac", macIDs, nil)
}

// BulkCreateMacIps 批量插入关联
func (r *MacIpRepository) BulkCreateMacIps(ctx context.Context, rows []*model.MacIp) error {
	return bulkInsert(ctx, r.base, 2003, "insert_macips", rows)
}

// IpPortRepository 接口-IP关联仓库
type IpPortRepository struct {
	base
}

// GetIpPort 根据接口与IP获取关联
func (r *IpPortRepository) GetIpPort(ctx context.Context, l1InterfaceID, ipID uint64) (*model.IpPort, error) {
	return selectOne[model.IpPort](ctx, r.base, 2101, "get_ipport", "idx_l1interface = ? AND idx_ip = ?", l1InterfaceID, ipID)
}

// ListIpPorts 获取一组接口上的全部IP关联
func (r *IpPortRepository) ListIpPorts(ctx context.Context, l1InterfaceIDs []uint64) ([]*model.IpPort, error) {
	return selectIn[model.IpPort](ctx, r.base, 2102, "list_ipports", "idx_l1interface", l1InterfaceIDs, nil)
}

// BulkCreateIpPorts 批量插入关联
func (r *IpPortRepository) BulkCreateIpPorts(ctx context.Context, rows []*model.IpPort) error {
	return bulkInsert(ctx, r.base, 2103, "insert_ipports", rows)
}
