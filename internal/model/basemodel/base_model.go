package model

import "time"

// BaseModel 提供统一的基础字段：ID、CreatedAt、UpdatedAt。
// ID 为自增代理主键，拓扑表之间的外键(idx_*)都引用它。
// CreatedAt/UpdatedAt 由 GORM 自动维护；全量更新时需要 Omit("created_at")。
type BaseModel struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement;comment:主键ID"` // 数据库字段类型为 bigint unsigned ，对应 Go 语言 uint64
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;comment:创建时间"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime;comment:更新时间"`
}
