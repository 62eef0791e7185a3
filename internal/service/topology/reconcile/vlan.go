package reconcile

import (
	"context"
	"sort"

	model "switchmap/internal/model/topology"
	"switchmap/internal/pkg/logger"
)

// Vlan 对账接口引用到的全部 VLAN
// 名称与状态来自可选的 layer2 部分，缺失时为空
func (t *Topology) Vlan(ctx context.Context) error {
	if !t.Status.L1Interface {
		return t.skip("vlan", 4021, "l1interface stage not completed")
	}

	numbers := t.vlanNumbers()

	existingRows, err := t.store.Vlans.ListVlans(ctx, t.device.ID)
	if err != nil {
		return t.fail("vlan", 4022, err)
	}
	existing := make(map[int]*model.Vlan, len(existingRows))
	for _, r := range existingRows {
		existing[r.Vlan] = r
	}

	var inserts []*model.Vlan
	for _, number := range numbers {
		candidate := &model.Vlan{IdxDevice: t.device.ID, Vlan: number, Enabled: 1}
		if info := t.snap.Layer2[number]; info != nil {
			candidate.Name = info.Name()
			candidate.State = info.VtpVlanState
		}

		if prev := existing[number]; prev != nil {
			candidate.ID = prev.ID
			candidate.CreatedAt = prev.CreatedAt
			if err := t.store.Vlans.UpdateVlan(ctx, candidate); err != nil {
				return t.fail("vlan", 4023, err)
			}
			continue
		}
		inserts = append(inserts, candidate)
	}

	if err := t.store.Vlans.BulkCreateVlans(ctx, inserts); err != nil {
		return t.fail("vlan", 4024, err)
	}

	t.Status.Vlan = true
	logger.LogIngestStage("vlan", 4025, "completed", map[string]interface{}{
		"hostname": t.snap.Hostname(),
		"vlans":    len(numbers),
		"inserted": len(inserts),
	})
	return nil
}

// vlanNumbers 去重并排序后的 VLAN 编号
func (t *Topology) vlanNumbers() []int {
	seen := make(map[int]struct{})
	var numbers []int
	for _, ifIndex := range t.snap.IfIndexes() {
		for _, v := range t.snap.Layer1[ifIndex].Vlans {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			numbers = append(numbers, v)
		}
	}
	sort.Ints(numbers)
	return numbers
}

// VlanPort 对账接口与 VLAN 的关联
// 接口或 VLAN 查不到时静默跳过该对
func (t *Topology) VlanPort(ctx context.Context) error {
	if !t.Status.Vlan {
		return t.skip("vlanport", 4031, "vlan stage not completed")
	}

	interfaces, err := t.interfacesByIfIndex(ctx)
	if err != nil {
		return t.fail("vlanport", 4032, err)
	}

	vlanRows, err := t.store.Vlans.ListVlans(ctx, t.device.ID)
	if err != nil {
		return t.fail("vlanport", 4033, err)
	}
	vlans := make(map[int]*model.Vlan, len(vlanRows))
	for _, r := range vlanRows {
		vlans[r.Vlan] = r
	}

	existingRows, err := t.store.VlanPorts.ListVlanPorts(ctx, interfaceIDs(interfaces))
	if err != nil {
		return t.fail("vlanport", 4034, err)
	}
	existing := make(map[[2]uint64]*model.VlanPort, len(existingRows))
	for _, r := range existingRows {
		existing[[2]uint64{r.IdxL1Interface, r.IdxVlan}] = r
	}

	queued := make(map[[2]uint64]struct{})
	var inserts []*model.VlanPort
	missed := 0
	for _, ifIndex := range t.snap.IfIndexes() {
		for _, number := range t.snap.Layer1[ifIndex].Vlans {
			l1 := interfaces[ifIndex]
			vlan := vlans[number]
			if l1 == nil || vlan == nil {
				missed++
				continue
			}

			key := [2]uint64{l1.ID, vlan.ID}
			if prev := existing[key]; prev != nil {
				if prev.Enabled != 1 {
					prev.Enabled = 1
					if err := t.store.VlanPorts.UpdateVlanPort(ctx, prev); err != nil {
						return t.fail("vlanport", 4035, err)
					}
				}
				continue
			}
			if _, ok := queued[key]; ok {
				continue
			}
			queued[key] = struct{}{}
			inserts = append(inserts, &model.VlanPort{IdxL1Interface: l1.ID, IdxVlan: vlan.ID, Enabled: 1})
		}
	}

	if err := t.store.VlanPorts.BulkCreateVlanPorts(ctx, inserts); err != nil {
		return t.fail("vlanport", 4036, err)
	}

	t.Status.VlanPort = true
	logger.LogIngestStage("vlanport", 4037, "completed", map[string]interface{}{
		"hostname": t.snap.Hostname(),
		"inserted": len(inserts),
		"missed":   missed,
	})
	return nil
}

// interfacesByIfIndex 读取设备已持久化的接口，按 ifIndex 索引
func (t *Topology) interfacesByIfIndex(ctx context.Context) (map[int]*model.L1Interface, error) {
	rows, err := t.store.L1Interfaces.ListL1Interfaces(ctx, t.device.ID)
	if err != nil {
		return nil, err
	}
	result := make(map[int]*model.L1Interface, len(rows))
	for _, r := range rows {
		result[r.IfIndex] = r
	}
	return result, nil
}

func interfaceIDs(interfaces map[int]*model.L1Interface) []uint64 {
	ids := make([]uint64, 0, len(interfaces))
	for _, r := range interfaces {
		ids = append(ids, r.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
