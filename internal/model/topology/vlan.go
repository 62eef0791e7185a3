package topology

import (
	basemodel "switchmap/internal/model/basemodel"
)

// Vlan 设备上的VLAN，(idx_device, vlan) 唯一；name/state 尽力而为，常为空
type Vlan struct {
	basemodel.BaseModel
	IdxDevice uint64  `json:"idx_device" gorm:"column:idx_device;not null;uniqueIndex:uk_vlan_device_vlan,priority:1;comment:所属设备ID"`
	Device    *Device `json:"-" gorm:"foreignKey:IdxDevice;constraint:OnDelete:CASCADE"`
	Vlan      int     `json:"vlan" gorm:"column:vlan;not null;uniqueIndex:uk_vlan_device_vlan,priority:2;comment:VLAN编号"`
	Name      string  `json:"name" gorm:"column:name;size:255;comment:VLAN名称"`
	State     int     `json:"state" gorm:"column:state;comment:VLAN状态"`
	Enabled   int     `json:"enabled" gorm:"column:enabled;not null;comment:是否启用"`
}

// TableName 定义数据库表名
func (Vlan) TableName() string {
	return "vlan"
}

// VlanPort 接口承载VLAN的关联表
type VlanPort struct {
	basemodel.BaseModel
	IdxL1Interface uint64       `json:"idx_l1interface" gorm:"column:idx_l1interface;not null;uniqueIndex:uk_vlanport,priority:1;comment:接口ID"`
	L1Interface    *L1Interface `json:"-" gorm:"foreignKey:IdxL1Interface;constraint:OnDelete:CASCADE"`
	IdxVlan        uint64       `json:"idx_vlan" gorm:"column:idx_vlan;not null;uniqueIndex:uk_vlanport,priority:2;comment:VLAN ID"`
	Vlan           *Vlan        `json:"-" gorm:"foreignKey:IdxVlan;constraint:OnDelete:CASCADE"`
	Enabled        int          `json:"enabled" gorm:"column:enabled;not null;comment:是否启用"`
}

// TableName 定义数据库表名
func (VlanPort) TableName() string {
	return "vlanport"
}
