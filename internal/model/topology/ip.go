package topology

import (
	basemodel "switchmap/internal/model/basemodel"
)

// Ip 区域内的IP地址，(idx_zone, address) 唯一
type Ip struct {
	basemodel.BaseModel
	IdxZone  uint64 `json:"idx_zone" gorm:"column:idx_zone;not null;uniqueIndex:uk_ip_zone_address,priority:1;comment:所属区域ID"`
	Zone     *Zone  `json:"-" gorm:"foreignKey:IdxZone;constraint:OnDelete:CASCADE"`
	Address  string `json:"address" gorm:"column:address;size:39;not null;uniqueIndex:uk_ip_zone_address,priority:2;comment:规范化地址"`
	Version  int    `json:"version" gorm:"column:version;not null;comment:4或6"`
	Hostname string `json:"hostname" gorm:"column:hostname;size:255;comment:反向DNS主机名(空表示未知)"`
	Enabled  int    `json:"enabled" gorm:"column:enabled;not null;comment:是否启用"`
}

// TableName 定义数据库表名
func (Ip) TableName() string {
	return "ip"
}

// MacIp ARP/NDP 配对关联表
type MacIp struct {
	basemodel.BaseModel
	IdxIp   uint64 `json:"idx_ip" gorm:"column:idx_ip;not null;uniqueIndex:uk_macip,priority:1;comment:IP ID"`
	Ip      *Ip    `json:"-" gorm:"foreignKey:IdxIp;constraint:OnDelete:CASCADE"`
	IdxMac  uint64 `json:"idx_mac" gorm:"column:idx_mac;not null;uniqueIndex:uk_macip,priority:2;index:idx_macip_mac;comment:MAC ID"`
	Mac     *Mac   `json:"-" gorm:"foreignKey:IdxMac;constraint:OnDelete:CASCADE"`
	Enabled int    `json:"enabled" gorm:"column:enabled;not null;comment:是否启用"`
}

// TableName 定义数据库表名
func (MacIp) TableName() string {
	return "macip"
}

// IpPort IP经由其MAC被学习到的接口关联表
type IpPort struct {
	basemodel.BaseModel
	IdxL1Interface uint64       `json:"idx_l1interface" gorm:"column:idx_l1interface;not null;uniqueIndex:uk_ipport,priority:1;comment:接口ID"`
	L1Interface    *L1Interface `json:"-" gorm:"foreignKey:IdxL1Interface;constraint:OnDelete:CASCADE"`
	IdxIp          uint64       `json:"idx_ip" gorm:"column:idx_ip;not null;uniqueIndex:uk_ipport,priority:2;comment:IP ID"`
	Ip             *Ip          `json:"-" gorm:"foreignKey:IdxIp;constraint:OnDelete:CASCADE"`
	Enabled        int          `json:"enabled" gorm:"column:enabled;not null;comment:是否启用"`
}

// TableName 定义数据库表名
func (IpPort) TableName() string {
	return "ipport"
}
