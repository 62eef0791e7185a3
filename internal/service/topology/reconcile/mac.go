package reconcile

import (
	"context"

	model "switchmap/internal/model/topology"
	"switchmap/internal/pkg/logger"
	"switchmap/internal/pkg/utils"
)

// interfaceMacs 每个接口上学习到的规范化MAC (非法值丢弃，保持顺序去重)
func (t *Topology) interfaceMacs(ifIndex int) []string {
	seen := make(map[string]struct{})
	var macs []string
	for _, raw := range t.snap.Layer1[ifIndex].Macs {
		mac, ok := utils.CanonicalMAC(raw)
		if !ok {
			continue
		}
		if _, dup := seen[mac]; dup {
			continue
		}
		seen[mac] = struct{}{}
		macs = append(macs, mac)
	}
	return macs
}

// allMacs 设备全部接口上的MAC
func (t *Topology) allMacs() []string {
	var macs []string
	for _, ifIndex := range t.snap.IfIndexes() {
		macs = append(macs, t.interfaceMacs(ifIndex)...)
	}
	return uniqueSorted(macs)
}

// Mac 写入设备桥接表中出现的MAC (区域共享表)
func (t *Topology) Mac(ctx context.Context) error {
	if !t.Status.VlanPort {
		return t.skip("mac", 4041, "vlanport stage not completed")
	}

	macs := t.allMacs()
	rows, err := upsertMacs(ctx, t.deps, t.store, t.zoneID, macs)
	if err != nil {
		return t.fail("mac", 4042, err)
	}

	t.Status.Mac = true
	logger.LogIngestStage("mac", 4043, "completed", map[string]interface{}{
		"hostname": t.snap.Hostname(),
		"macs":     len(rows),
	})
	return nil
}

// MacPort 对账接口与MAC的关联
func (t *Topology) MacPort(ctx context.Context) error {
	if !t.Status.Mac {
		return t.skip("macport", 4051, "mac stage not completed")
	}

	interfaces, err := t.interfacesByIfIndex(ctx)
	if err != nil {
		return t.fail("macport", 4052, err)
	}
	macs, err := t.store.Macs.ListMacs(ctx, t.zoneID, t.allMacs())
	if err != nil {
		return t.fail("macport", 4053, err)
	}
	existingRows, err := t.store.MacPorts.ListMacPorts(ctx, interfaceIDs(interfaces))
	if err != nil {
		return t.fail("macport", 4054, err)
	}
	existing := make(map[[2]uint64]*model.MacPort, len(existingRows))
	for _, r := range existingRows {
		existing[[2]uint64{r.IdxL1Interface, r.IdxMac}] = r
	}

	var inserts []*model.MacPort
	missed := 0
	for _, ifIndex := range t.snap.IfIndexes() {
		l1 := interfaces[ifIndex]
		for _, value := range t.interfaceMacs(ifIndex) {
			mac := macs[value]
			if l1 == nil || mac == nil {
				missed++
				continue
			}
			key := [2]uint64{l1.ID, mac.ID}
			if prev := existing[key]; prev != nil {
				if prev.Enabled != 1 {
					prev.Enabled = 1
					if err := t.store.MacPorts.UpdateMacPort(ctx, prev); err != nil {
						return t.fail("macport", 4055, err)
					}
				}
				continue
			}
			existing[key] = &model.MacPort{IdxL1Interface: l1.ID, IdxMac: mac.ID, Enabled: 1}
			inserts = append(inserts, existing[key])
		}
	}

	if err := t.store.MacPorts.BulkCreateMacPorts(ctx, inserts); err != nil {
		return t.fail("macport", 4056, err)
	}

	t.Status.MacPort = true
	logger.LogIngestStage("macport", 4057, "completed", map[string]interface{}{
		"hostname": t.snap.Hostname(),
		"inserted": len(inserts),
		"missed":   missed,
	})
	return nil
}
