// 厂商字段归一化
// 不同厂商把 VLAN / Trunk / 双工信息放在不同的 MIB 字段里，这里按固定优先级的策略表逐项推导，
// 结果写入每个接口的 Facts，不做任何 I/O
package normalizer

import (
	"sort"
	"strings"

	"switchmap/internal/service/topology/snapshot"
)

// ifTypeEthernet IANAifType ethernetCsmacd
const ifTypeEthernet = 6

// 双工编码
const (
	DuplexUnknown  = 0
	DuplexHalf     = 1
	DuplexFull     = 2
	DuplexHalfAuto = 3
	DuplexFullAuto = 4
)

// c2900 传统字段取值
const (
	c2900LinkbeatAbsent = 3
	c2900DuplexFull     = 1
	c2900DuplexHalf     = 2
)

// vlanStrategies VLAN 提取策略，第一个命中的生效
var vlanStrategies = []func(*snapshot.Interface) ([]int, bool){
	// Cisco vmVlan: 单个 access VLAN
	func(i *snapshot.Interface) ([]int, bool) {
		if i.VmVlan == nil {
			return nil, false
		}
		return []int{*i.VmVlan}, true
	},
	// Juniper jnxExVlanTag: VLAN 列表
	func(i *snapshot.Interface) ([]int, bool) {
		if len(i.JnxExVlanTag) == 0 {
			return nil, false
		}
		return append([]int(nil), i.JnxExVlanTag...), true
	},
}

// nativeVlanStrategies Native VLAN 提取策略，第一个存在的字段生效
var nativeVlanStrategies = []func(*snapshot.Interface) *int{
	func(i *snapshot.Interface) *int { return i.VlanTrunkPortNativeVlan },
	func(i *snapshot.Interface) *int { return i.Dot1qPvid },
}

// trunkPredicates 任一成立即为 Trunk
var trunkPredicates = []func(*snapshot.Interface) bool{
	func(i *snapshot.Interface) bool {
		return i.VlanTrunkPortDynamicStatus != nil && *i.VlanTrunkPortDynamicStatus == 1
	},
	func(i *snapshot.Interface) bool {
		return i.JnxExVlanPortAccessMode != nil && *i.JnxExVlanPortAccessMode == 2
	},
}

// duplexStrategy 双工字段(swPortDuplexStatus, dot3StatsDuplexStatus, portDuplex)及其取值映射，只检查第一个存在的字段
type duplexStrategy struct {
	value   func(*snapshot.Interface) *int
	mapping map[int]int
}

var duplexStrategies = []duplexStrategy{
	{
		value:   func(i *snapshot.Interface) *int { return i.SwPortDuplexStatus },
		mapping: map[int]int{1: DuplexFull, 2: DuplexHalf},
	},
	{
		value:   func(i *snapshot.Interface) *int { return i.Dot3StatsDuplexStatus },
		mapping: map[int]int{1: DuplexUnknown, 2: DuplexHalf, 3: DuplexFull},
	},
	{
		value:   func(i *snapshot.Interface) *int { return i.PortDuplex },
		mapping: map[int]int{1: DuplexHalf, 2: DuplexFull},
	},
}

// Normalize 推导全部接口的 Facts 并原地写回
func Normalize(snap *snapshot.Snapshot) *snapshot.Snapshot {
	if snap == nil {
		return nil
	}
	for _, ifIndex := range snap.IfIndexes() {
		iface := snap.Layer1[ifIndex]
		iface.Facts = snapshot.Facts{}

		if !IsEthernet(iface) {
			continue
		}

		facts := snapshot.Facts{Ethernet: true, Duplex: Duplex(iface)}
		for _, source := range vlanSources(snap, ifIndex) {
			facts.Vlans = append(facts.Vlans, Vlans(source)...)
			facts.NativeVlan = NativeVlan(source)
			facts.Trunk = Trunk(source)
		}
		iface.Facts = facts
	}
	return snap
}

// IsEthernet ifType 为 6 且名称不以 vl 开头 (排除厂商以 ifType 6 暴露的 VLAN 接口)
func IsEthernet(iface *snapshot.Interface) bool {
	if iface == nil || iface.IfType != ifTypeEthernet {
		return false
	}
	return !strings.HasPrefix(strings.ToLower(iface.Name()), "vl")
}

// vlanSources 返回承载 VLAN 事实的接口，只向上看一层
// 没有上层(或仅为 0)时为接口自身；多个上层时按 ifIndex 升序
func vlanSources(snap *snapshot.Snapshot, ifIndex int) []*snapshot.Interface {
	self := snap.Layer1[ifIndex]

	var higher []int
	for _, h := range snap.System.IF.IfStackStatus[ifIndex] {
		if h != 0 {
			higher = append(higher, h)
		}
	}
	if len(higher) == 0 {
		return []*snapshot.Interface{self}
	}
	sort.Ints(higher)

	sources := make([]*snapshot.Interface, 0, len(higher))
	for _, h := range higher {
		if upper, ok := snap.Layer1[h]; ok && upper != nil {
			sources = append(sources, upper)
		}
	}
	if len(sources) == 0 {
		return []*snapshot.Interface{self}
	}
	return sources
}

// Vlans 按策略表提取 VLAN 列表
func Vlans(iface *snapshot.Interface) []int {
	for _, extract := range vlanStrategies {
		if vlans, ok := extract(iface); ok {
			return vlans
		}
	}
	return nil
}

// NativeVlan 按策略表提取 Native VLAN，未采集时为 0
func NativeVlan(iface *snapshot.Interface) int {
	for _, extract := range nativeVlanStrategies {
		if v := extract(iface); v != nil {
			return *v
		}
	}
	return 0
}

// Trunk 任一厂商字段表明为 Trunk 即返回 true
func Trunk(iface *snapshot.Interface) bool {
	for _, p := range trunkPredicates {
		if p(iface) {
			return true
		}
	}
	return false
}

// Duplex 计算双工编码
// 结果未知且存在 c2900 字段时用链路脉冲区分自协商与强制模式
func Duplex(iface *snapshot.Interface) int {
	duplex := DuplexUnknown
	for _, s := range duplexStrategies {
		if v := s.value(iface); v != nil {
			duplex = s.mapping[*v]
			break
		}
	}

	if duplex != DuplexUnknown || iface.C2900PortLinkbeatStatus == nil || iface.C2900PortDuplexStatus == nil {
		return duplex
	}

	autonegotiated := *iface.C2900PortLinkbeatStatus != c2900LinkbeatAbsent
	switch *iface.C2900PortDuplexStatus {
	case c2900DuplexFull:
		if autonegotiated {
			return DuplexFullAuto
		}
		return DuplexFull
	case c2900DuplexHalf:
		if autonegotiated {
			return DuplexHalfAuto
		}
		return DuplexHalf
	}
	return duplex
}
