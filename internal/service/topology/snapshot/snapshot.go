// 设备快照模型
// 轮询器为每台设备写出一个 YAML 文档，顶层包含 misc/system/layer1/layer2/layer3 五个部分
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingHost 快照缺少 misc.host
var ErrMissingHost = errors.New("snapshot has no misc.host")

// 厂商企业号 (sysObjectID 中 1.3.6.1.4.1 之后的第一段)
const (
	EnterpriseCisco   = 9
	EnterpriseJuniper = 2636
)

// enterprisePrefix sysObjectID 的 enterprises 前缀
const enterprisePrefix = "1.3.6.1.4.1."

// Snapshot 单台设备的轮询结果
type Snapshot struct {
	Misc   Misc               `yaml:"misc"`
	System System             `yaml:"system"`
	Layer1 map[int]*Interface `yaml:"layer1"`
	Layer2 map[int]*VlanInfo  `yaml:"layer2"`
	Layer3 Layer3             `yaml:"layer3"`
}

// Misc 元信息
type Misc struct {
	Host      string `yaml:"host"`
	Zone      string `yaml:"zone"`
	Timestamp int64  `yaml:"timestamp"`
}

// System 按 MIB 分组的系统信息
type System struct {
	SNMPv2 SNMPv2MIB `yaml:"SNMPv2-MIB"`
	IF     IFMIB     `yaml:"IF-MIB"`
}

// SNMPv2MIB 取值以实例号为键，通常只有 0
type SNMPv2MIB struct {
	SysName     map[int]string `yaml:"sysName"`
	SysDescr    map[int]string `yaml:"sysDescr"`
	SysObjectID map[int]string `yaml:"sysObjectID"`
	SysUpTime   map[int]int64  `yaml:"sysUpTime"`
}

// IFMIB 接口栈关系: ifIndex -> 上层 ifIndex 列表，0 表示没有上层
type IFMIB struct {
	IfStackStatus map[int]IntList `yaml:"ifStackStatus"`
}

// Interface layer1 中的单个接口
// 指针字段用于区分"未采集"与"值为0"
type Interface struct {
	IfAlias       string `yaml:"ifAlias"`
	IfName        string `yaml:"ifName"`
	IfDescr       string `yaml:"ifDescr"`
	IfType        int    `yaml:"ifType"`
	IfAdminStatus int    `yaml:"ifAdminStatus"`
	IfOperStatus  int    `yaml:"ifOperStatus"`
	IfSpeed       int64  `yaml:"ifSpeed"`
	IfHighSpeed   int64  `yaml:"ifHighSpeed"`

	// Cisco
	VmVlan                     *int `yaml:"vmVlan"`
	VlanTrunkPortNativeVlan    *int `yaml:"vlanTrunkPortNativeVlan"`
	VlanTrunkPortDynamicStatus *int `yaml:"vlanTrunkPortDynamicStatus"`
	C2900PortLinkbeatStatus    *int `yaml:"c2900PortLinkbeatStatus"`
	C2900PortDuplexStatus      *int `yaml:"c2900PortDuplexStatus"`
	SwPortDuplexStatus         *int `yaml:"swPortDuplexStatus"`
	PortDuplex                 *int `yaml:"portDuplex"`

	// Juniper / 标准 MIB
	JnxExVlanTag            IntList `yaml:"jnxExVlanTag"`
	JnxExVlanPortAccessMode *int    `yaml:"jnxExVlanPortAccessMode"`
	Dot1qPvid               *int    `yaml:"dot1qPvid"`
	Dot3StatsDuplexStatus   *int    `yaml:"dot3StatsDuplexStatus"`

	// 邻居发现
	CdpCacheDeviceID     string     `yaml:"cdpCacheDeviceId"`
	CdpCacheDevicePort   string     `yaml:"cdpCacheDevicePort"`
	CdpCachePlatform     string     `yaml:"cdpCachePlatform"`
	LldpRemPortDesc      string     `yaml:"lldpRemPortDesc"`
	LldpRemSysCapEnabled StringList `yaml:"lldpRemSysCapEnabled"`
	LldpRemSysDesc       string     `yaml:"lldpRemSysDesc"`
	LldpRemSysName       string     `yaml:"lldpRemSysName"`

	// 桥接表中在该接口上学习到的MAC
	Macs StringList `yaml:"l1_macs"`

	Facts `yaml:",inline"`
}

// Facts 归一化后推导出的接口事实
type Facts struct {
	Ethernet   bool  `yaml:"jm_ethernet"`
	Vlans      []int `yaml:"jm_vlan,flow"`
	NativeVlan int   `yaml:"jm_nativevlan"`
	Trunk      bool  `yaml:"jm_trunk"`
	Duplex     int   `yaml:"jm_duplex"`
}

// Name 接口名称: 优先 ifName，否则 ifDescr
func (i *Interface) Name() string {
	if i.IfName != "" {
		return i.IfName
	}
	return i.IfDescr
}

// VlanInfo layer2 中的VLAN元信息，均为可选
type VlanInfo struct {
	VtpVlanName         string `yaml:"vtpVlanName"`
	Dot1qVlanStaticName string `yaml:"dot1qVlanStaticName"`
	VtpVlanState        int    `yaml:"vtpVlanState"`
}

// Name VLAN名称: 优先 VTP 名称
func (v *VlanInfo) Name() string {
	if v.VtpVlanName != "" {
		return v.VtpVlanName
	}
	return v.Dot1qVlanStaticName
}

// Layer3 ARP(IPv4) 与 NDP(IPv6) 表，IP -> MAC
type Layer3 struct {
	IpNetToMediaTable          map[string]string `yaml:"ipNetToMediaTable"`
	IpNetToPhysicalPhysAddress map[string]string `yaml:"ipNetToPhysicalPhysAddress"`
}

// Load 读取并解析快照文件
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	snap, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

// Parse 解析快照内容
func Parse(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	snap.Misc.Host = strings.TrimSpace(snap.Misc.Host)
	if snap.Misc.Host == "" {
		return nil, ErrMissingHost
	}
	if snap.Layer1 == nil {
		snap.Layer1 = make(map[int]*Interface)
	}
	for ifIndex, iface := range snap.Layer1 {
		if iface == nil {
			snap.Layer1[ifIndex] = &Interface{}
		}
	}
	return &snap, nil
}

// Hostname 设备主机名
func (s *Snapshot) Hostname() string {
	return s.Misc.Host
}

// ZoneName 快照声明的区域，未声明时使用 fallback
func (s *Snapshot) ZoneName(fallback string) string {
	if zone := strings.TrimSpace(s.Misc.Zone); zone != "" {
		return zone
	}
	return fallback
}

// IfIndexes 升序返回全部 ifIndex
func (s *Snapshot) IfIndexes() []int {
	indexes := make([]int, 0, len(s.Layer1))
	for ifIndex := range s.Layer1 {
		indexes = append(indexes, ifIndex)
	}
	sort.Ints(indexes)
	return indexes
}

// Enterprise 从 sysObjectID 中取企业号，无法识别时返回 0
func (s *Snapshot) Enterprise() int {
	oid := strings.TrimPrefix(strings.TrimSpace(s.System.SNMPv2.SysObjectID[0]), ".")
	if !strings.HasPrefix(oid, enterprisePrefix) {
		return 0
	}
	rest := strings.TrimPrefix(oid, enterprisePrefix)
	if i := strings.IndexByte(rest, '.'); i >= 0 {
		rest = rest[:i]
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0
	}
	return n
}

// IsCisco 是否为 Cisco 设备
func (s *Snapshot) IsCisco() bool {
	return s.Enterprise() == EnterpriseCisco
}

// IsJuniper 是否为 Juniper 设备
func (s *Snapshot) IsJuniper() bool {
	return s.Enterprise() == EnterpriseJuniper
}
