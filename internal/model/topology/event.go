/**
 * 拓扑模型: 事件 / 根指针 / 区域
 * @description: 一次完整的轮询入库对应一个 Event；Root(id=1) 指向读侧当前使用的 Event；
 * Zone 是 Event 下按名称划分的设备分组，事件删除时由外键级联清理。
 */
package topology

import (
	basemodel "switchmap/internal/model/basemodel"
)

// RootID 根指针行的固定主键
const RootID uint64 = 1

// BootstrapEventID 初始化事件主键，清理策略永远保留
const BootstrapEventID uint64 = 1

// Event 轮询周期
type Event struct {
	basemodel.BaseModel
	Name     string `json:"name" gorm:"column:name;size:64;not null;uniqueIndex:uk_event_name;comment:事件名称(随机令牌)"`
	EpochUTC int64  `json:"epoch_utc" gorm:"column:epoch_utc;not null;comment:创建时间戳(秒)"`
	Enabled  int    `json:"enabled" gorm:"column:enabled;not null;comment:是否启用"`
}

// TableName 定义数据库表名
func (Event) TableName() string {
	return "event"
}

// Root 当前事件指针 (单行表)
type Root struct {
	basemodel.BaseModel
	IdxEvent uint64 `json:"idx_event" gorm:"column:idx_event;not null;index:idx_root_event;comment:当前事件ID"`
	Event    *Event `json:"-" gorm:"foreignKey:IdxEvent"`
	Name     string `json:"name" gorm:"column:name;size:64;comment:名称"`
	Enabled  int    `json:"enabled" gorm:"column:enabled;not null;comment:是否启用"`
}

// TableName 定义数据库表名
func (Root) TableName() string {
	return "root"
}

// Zone 事件下的设备分组
type Zone struct {
	basemodel.BaseModel
	IdxEvent uint64 `json:"idx_event" gorm:"column:idx_event;not null;uniqueIndex:uk_zone_event_name,priority:1;comment:所属事件ID"`
	Event    *Event `json:"-" gorm:"foreignKey:IdxEvent;constraint:OnDelete:CASCADE"`
	Name     string `json:"name" gorm:"column:name;size:128;not null;uniqueIndex:uk_zone_event_name,priority:2;comment:区域名称"`
	Notes    string `json:"notes" gorm:"column:notes;size:255;comment:备注"`
	Enabled  int    `json:"enabled" gorm:"column:enabled;not null;comment:是否启用"`
}

// TableName 定义数据库表名
func (Zone) TableName() string {
	return "zone"
}
