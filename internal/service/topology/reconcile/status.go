package reconcile

// Status 单台设备各阶段的完成标记
// 每个阶段只检查前一阶段的标记，未完成时记录日志并跳过，不返回错误
type Status struct {
	Device      bool
	L1Interface bool
	Vlan        bool
	VlanPort    bool
	Mac         bool
	MacPort     bool
	Ip          bool
	MacIp       bool
	IpPort      bool
}

// ifStatusUp ifAdminStatus / ifOperStatus 的 up 取值
const ifStatusUp = 1

// ifAdminDown ifAdminStatus 的 down 取值
const ifAdminDown = 2

// IdleSince 计算接口的 ts_idle
//   - 管理启用且链路 up: 0
//   - 管理禁用: 0
//   - 管理启用但链路不 up: 已有非零值保持不变，否则为 now
func IdleSince(prev int64, adminStatus, operStatus int, now int64) int64 {
	switch {
	case adminStatus == ifStatusUp && operStatus == ifStatusUp:
		return 0
	case adminStatus == ifAdminDown:
		return 0
	case adminStatus == ifStatusUp:
		if prev != 0 {
			return prev
		}
		return now
	default:
		return 0
	}
}
