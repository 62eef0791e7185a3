package topology

import (
	basemodel "switchmap/internal/model/basemodel"
)

// UnknownOuiID 未匹配厂商时使用的 Oui 行
const UnknownOuiID uint64 = 1

// Oui 厂商前缀参考表 (带外导入，对账过程只读)
type Oui struct {
	basemodel.BaseModel
	Oui          string `json:"oui" gorm:"column:oui;size:6;not null;uniqueIndex:uk_oui;comment:6位小写十六进制前缀"`
	Organization string `json:"organization" gorm:"column:organization;size:255;comment:厂商名称"`
	Enabled      int    `json:"enabled" gorm:"column:enabled;not null;comment:是否启用"`
}

// TableName 定义数据库表名
func (Oui) TableName() string {
	return "oui"
}

// Mac 区域内的MAC地址，(mac, idx_zone) 唯一
type Mac struct {
	basemodel.BaseModel
	IdxOui  uint64 `json:"idx_oui" gorm:"column:idx_oui;not null;index:idx_mac_oui;comment:厂商前缀ID"`
	Oui     *Oui   `json:"-" gorm:"foreignKey:IdxOui"`
	IdxZone uint64 `json:"idx_zone" gorm:"column:idx_zone;not null;uniqueIndex:uk_mac_zone,priority:2;comment:所属区域ID"`
	Zone    *Zone  `json:"-" gorm:"foreignKey:IdxZone;constraint:OnDelete:CASCADE"`
	Mac     string `json:"mac" gorm:"column:mac;size:12;not null;uniqueIndex:uk_mac_zone,priority:1;comment:12位小写十六进制MAC"`
	Enabled int    `json:"enabled" gorm:"column:enabled;not null;comment:是否启用"`
}

// TableName 定义数据库表名
func (Mac) TableName() string {
	return "mac"
}

// MacPort MAC在接口上被学习到的关联表
type MacPort struct {
	basemodel.BaseModel
	IdxL1Interface uint64       `json:"idx_l1interface" gorm:"column:idx_l1interface;not null;uniqueIndex:uk_macport,priority:1;comment:接口ID"`
	L1Interface    *L1Interface `json:"-" gorm:"foreignKey:IdxL1Interface;constraint:OnDelete:CASCADE"`
	IdxMac         uint64       `json:"idx_mac" gorm:"column:idx_mac;not null;uniqueIndex:uk_macport,priority:2;comment:MAC ID"`
	Mac            *Mac         `json:"-" gorm:"foreignKey:IdxMac;constraint:OnDelete:CASCADE"`
	Enabled        int          `json:"enabled" gorm:"column:enabled;not null;comment:是否启用"`
}

// TableName 定义数据库表名
func (MacPort) TableName() string {
	return "macport"
}
