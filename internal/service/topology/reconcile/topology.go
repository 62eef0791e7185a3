// 设备级拓扑对账
// 单台设备按固定顺序执行: Device -> L1Interface -> Vlan -> VlanPort -> Mac -> MacPort -> Ip(+MacIp) -> IpPort
package reconcile

import (
	"context"
	"fmt"
	"strings"

	model "switchmap/internal/model/topology"
	"switchmap/internal/pkg/logger"
	repo "switchmap/internal/repo/mysql/topology"
	"switchmap/internal/service/topology/snapshot"
)

// Topology 单台设备的对账器
type Topology struct {
	deps
	store  *repo.Store
	zoneID uint64
	snap   *snapshot.Snapshot
	device *model.Device

	Status Status
}

// NewTopology 创建设备对账器，snap 应已经过归一化
func NewTopology(store *repo.Store, zoneID uint64, snap *snapshot.Snapshot, opts ...Option) *Topology {
	d := defaultDeps()
	for _, opt := range opts {
		opt(&d)
	}
	return &Topology{
		deps:   d,
		store:  store,
		zoneID: zoneID,
		snap:   snap,
	}
}

// DeviceRow 返回 Device 阶段写入的设备行
func (t *Topology) DeviceRow() *model.Device {
	return t.device
}

// Process 依次执行全部阶段，遇到持久化错误立即返回
func (t *Topology) Process(ctx context.Context) error {
	stages := []struct {
		name string
		run  func(context.Context) error
	}{
		{"device", t.Device},
		{"l1interface", t.L1Interface},
		{"vlan", t.Vlan},
		{"vlanport", t.VlanPort},
		{"mac", t.Mac},
		{"macport", t.MacPort},
		{"ip", t.Ip},
		{"ipport", t.IpPort},
	}
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if t.stageHook != nil {
			if err := t.stageHook(stage.name); err != nil {
				return err
			}
		}
		if err := stage.run(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Device 写入或更新设备行
func (t *Topology) Device(ctx context.Context) error {
	snmp := t.snap.System.SNMPv2
	candidate := &model.Device{
		IdxZone:        t.zoneID,
		SysName:        snmp.SysName[0],
		Hostname:       t.snap.Hostname(),
		Name:           t.snap.Hostname(),
		SysDescription: snmp.SysDescr[0],
		SysObjectID:    snmp.SysObjectID[0],
		SysUptime:      snmp.SysUpTime[0],
		LastPolled:     t.snap.Misc.Timestamp,
		Enabled:        1,
	}

	existing, err := t.store.Devices.GetDevice(ctx, t.zoneID, candidate.Hostname)
	if err != nil {
		return t.fail("device", 4001, err)
	}

	if existing != nil {
		candidate.ID = existing.ID
		candidate.CreatedAt = existing.CreatedAt
		if err := t.store.Devices.UpdateDevice(ctx, candidate); err != nil {
			return t.fail("device", 4002, err)
		}
		t.device = candidate
	} else {
		stored, err := t.store.Devices.CreateDevice(ctx, candidate)
		if err != nil {
			return t.fail("device", 4003, err)
		}
		t.device = stored
	}

	t.Status.Device = true
	logger.LogIngestStage("device", 4004, "completed", map[string]interface{}{
		"hostname": candidate.Hostname,
		"device":   t.device.ID,
	})
	return nil
}

// L1Interface 对账设备接口，计算 ts_idle 并写入归一化事实
func (t *Topology) L1Interface(ctx context.Context) error {
	if !t.Status.Device || t.device == nil {
		return t.skip("l1interface", 4011, "device stage not completed")
	}
	if len(t.snap.Layer1) == 0 {
		return t.skip("l1interface", 4012, "no layer1 data")
	}
	row, err := t.store.Devices.GetDeviceByID(ctx, t.device.ID)
	if err != nil {
		return t.fail("l1interface", 4013, err)
	}
	if row == nil {
		return t.skip("l1interface", 4014, "device row not found")
	}

	existingRows, err := t.store.L1Interfaces.ListL1Interfaces(ctx, t.device.ID)
	if err != nil {
		return t.fail("l1interface", 4015, err)
	}
	existing := make(map[int]*model.L1Interface, len(existingRows))
	for _, r := range existingRows {
		existing[r.IfIndex] = r
	}

	now := t.now().Unix()
	var inserts []*model.L1Interface
	updated := 0
	for _, ifIndex := range t.snap.IfIndexes() {
		iface := t.snap.Layer1[ifIndex]
		prev := existing[ifIndex]

		var prevIdle int64
		if prev != nil {
			prevIdle = prev.TsIdle
		}
		candidate := buildInterface(t.device.ID, ifIndex, iface)
		candidate.TsIdle = IdleSince(prevIdle, iface.IfAdminStatus, iface.IfOperStatus, now)

		if prev != nil {
			candidate.ID = prev.ID
			candidate.CreatedAt = prev.CreatedAt
			candidate.Enabled = prev.Enabled
			if err := t.store.L1Interfaces.UpdateL1Interface(ctx, candidate); err != nil {
				return t.fail("l1interface", 4016, err)
			}
			updated++
			continue
		}
		candidate.Enabled = 1
		inserts = append(inserts, candidate)
	}

	if err := t.store.L1Interfaces.BulkCreateL1Interfaces(ctx, inserts); err != nil {
		return t.fail("l1interface", 4017, err)
	}

	t.Status.L1Interface = true
	logger.LogIngestStage("l1interface", 4018, "completed", map[string]interface{}{
		"hostname": t.snap.Hostname(),
		"inserted": len(inserts),
		"updated":  updated,
	})
	return nil
}

// buildInterface 由快照接口构造候选行 (不含 ts_idle / enabled)
func buildInterface(deviceID uint64, ifIndex int, iface *snapshot.Interface) *model.L1Interface {
	return &model.L1Interface{
		IdxDevice:            deviceID,
		IfIndex:              ifIndex,
		Duplex:               iface.Duplex,
		Ethernet:             boolToInt(iface.Ethernet),
		NativeVlan:           iface.NativeVlan,
		Trunk:                boolToInt(iface.Trunk),
		IfSpeed:              ifSpeedMbps(iface),
		IfAlias:              iface.IfAlias,
		IfName:               iface.IfName,
		IfDescr:              iface.IfDescr,
		IfType:               iface.IfType,
		IfAdminStatus:        iface.IfAdminStatus,
		IfOperStatus:         iface.IfOperStatus,
		CdpCacheDeviceID:     iface.CdpCacheDeviceID,
		CdpCacheDevicePort:   iface.CdpCacheDevicePort,
		CdpCachePlatform:     iface.CdpCachePlatform,
		LldpRemPortDesc:      iface.LldpRemPortDesc,
		LldpRemSysCapEnabled: strings.Join(iface.LldpRemSysCapEnabled, " "),
		LldpRemSysDesc:       iface.LldpRemSysDesc,
		LldpRemSysName:       iface.LldpRemSysName,
	}
}

// ifSpeedMbps 优先 ifHighSpeed (Mbps)，否则 ifSpeed (bps) 换算
func ifSpeedMbps(iface *snapshot.Interface) int64 {
	if iface.IfHighSpeed > 0 {
		return iface.IfHighSpeed
	}
	if iface.IfSpeed > 0 {
		return iface.IfSpeed / 1_000_000
	}
	return 0
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// skip 前置条件不满足: 记录日志后返回 nil
func (t *Topology) skip(stage string, code int, reason string) error {
	logger.LogIngestStage(stage, code, "skipped", map[string]interface{}{
		"hostname": t.snap.Hostname(),
		"reason":   reason,
	})
	return nil
}

// fail 持久化失败: 记录日志并包装返回
func (t *Topology) fail(stage string, code int, err error) error {
	logger.LogIngestStage(stage, code, "failed", map[string]interface{}{
		"hostname": t.snap.Hostname(),
		"error":    err.Error(),
	})
	return fmt.Errorf("%s stage for %s: %w", stage, t.snap.Hostname(), err)
}
