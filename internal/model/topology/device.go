package topology

import (
	basemodel "switchmap/internal/model/basemodel"
)

// Device 网络设备，(idx_zone, hostname) 唯一
type Device struct {
	basemodel.BaseModel
	IdxZone        uint64 `json:"idx_zone" gorm:"column:idx_zone;not null;uniqueIndex:uk_device_zone_hostname,priority:1;comment:所属区域ID"`
	Zone           *Zone  `json:"-" gorm:"foreignKey:IdxZone;constraint:OnDelete:CASCADE"`
	SysName        string `json:"sys_name" gorm:"column:sys_name;size:255;comment:SNMPv2-MIB sysName"`
	Hostname       string `json:"hostname" gorm:"column:hostname;size:255;not null;uniqueIndex:uk_device_zone_hostname,priority:2;comment:主机名(入库键)"`
	Name           string `json:"name" gorm:"column:name;size:255;comment:显示名称"`
	SysDescription string `json:"sys_description" gorm:"column:sys_description;size:1024;comment:SNMPv2-MIB sysDescr"`
	SysObjectID    string `json:"sys_objectid" gorm:"column:sys_objectid;size:255;comment:SNMPv2-MIB sysObjectID"`
	SysUptime      int64  `json:"sys_uptime" gorm:"column:sys_uptime;comment:SNMPv2-MIB sysUpTime"`
	LastPolled     int64  `json:"last_polled" gorm:"column:last_polled;comment:最近轮询时间戳"`
	Enabled        int    `json:"enabled" gorm:"column:enabled;not null;comment:是否启用"`
}

// TableName 定义数据库表名
func (Device) TableName() string {
	return "device"
}

// L1Interface 设备物理/逻辑接口，(idx_device, ifindex) 唯一
type L1Interface struct {
	basemodel.BaseModel
	IdxDevice            uint64  `json:"idx_device" gorm:"column:idx_device;not null;uniqueIndex:uk_l1interface_device_ifindex,priority:1;comment:所属设备ID"`
	Device               *Device `json:"-" gorm:"foreignKey:IdxDevice;constraint:OnDelete:CASCADE"`
	IfIndex              int     `json:"ifindex" gorm:"column:ifindex;not null;uniqueIndex:uk_l1interface_device_ifindex,priority:2;comment:SNMP ifIndex"`
	Duplex               int     `json:"duplex" gorm:"column:duplex;comment:双工 0未知 1半双工 2全双工 3半双工自协商 4全双工自协商"`
	Ethernet             int     `json:"ethernet" gorm:"column:ethernet;comment:是否以太网口"`
	NativeVlan           int     `json:"nativevlan" gorm:"column:nativevlan;comment:Native VLAN"`
	Trunk                int     `json:"trunk" gorm:"column:trunk;comment:是否Trunk口"`
	IfSpeed              int64   `json:"ifspeed" gorm:"column:ifspeed;comment:速率(Mbps)"`
	IfAlias              string  `json:"ifalias" gorm:"column:ifalias;size:255;comment:ifAlias"`
	IfName               string  `json:"ifname" gorm:"column:ifname;size:255;comment:ifName"`
	IfDescr              string  `json:"ifdescr" gorm:"column:ifdescr;size:255;comment:ifDescr"`
	IfType               int     `json:"iftype" gorm:"column:iftype;comment:ifType"`
	IfAdminStatus        int     `json:"ifadminstatus" gorm:"column:ifadminstatus;comment:ifAdminStatus"`
	IfOperStatus         int     `json:"ifoperstatus" gorm:"column:ifoperstatus;comment:ifOperStatus"`
	TsIdle               int64   `json:"ts_idle" gorm:"column:ts_idle;not null;comment:首次观察到启用但无链路的时间戳"`
	CdpCacheDeviceID     string  `json:"cdpcachedeviceid" gorm:"column:cdpcachedeviceid;size:255;comment:CDP邻居设备ID"`
	CdpCacheDevicePort   string  `json:"cdpcachedeviceport" gorm:"column:cdpcachedeviceport;size:255;comment:CDP邻居端口"`
	CdpCachePlatform     string  `json:"cdpcacheplatform" gorm:"column:cdpcacheplatform;size:255;comment:CDP邻居平台"`
	LldpRemPortDesc      string  `json:"lldpremportdesc" gorm:"column:lldpremportdesc;size:255;comment:LLDP邻居端口描述"`
	LldpRemSysCapEnabled string  `json:"lldpremsyscapenabled" gorm:"column:lldpremsyscapenabled;size:255;comment:LLDP邻居能力"`
	LldpRemSysDesc       string  `json:"lldpremsysdesc" gorm:"column:lldpremsysdesc;size:1024;comment:LLDP邻居系统描述"`
	LldpRemSysName       string  `json:"lldpremsysname" gorm:"column:lldpremsysname;size:255;comment:LLDP邻居系统名"`
	Enabled              int     `json:"enabled" gorm:"column:enabled;not null;comment:是否启用"`
}

// TableName 定义数据库表名
func (L1Interface) TableName() string {
	return "l1interface"
}
