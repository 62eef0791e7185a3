package topology

// AllModels 按依赖顺序返回全部拓扑模型，供迁移与测试使用
func AllModels() []interface{} {
	return []interface{}{
		&Event{},
		&Root{},
		&Zone{},
		&Device{},
		&L1Interface{},
		&Vlan{},
		&VlanPort{},
		&Oui{},
		&Mac{},
		&MacPort{},
		&Ip{},
		&MacIp{},
		&IpPort{},
	}
}
