package reconcile

import (
	"context"
	"sort"

	model "switchmap/internal/model/topology"
	"switchmap/internal/pkg/logger"
)

// Ip 写入设备 ARP/NDP 表中的 IP 与 MAC-IP 关联 (区域共享表)
func (t *Topology) Ip(ctx context.Context) error {
	if !t.Status.MacPort {
		return t.skip("ip", 4061, "macport stage not completed")
	}

	pairs := ExtractPairs(t.snap)
	macs := make([]string, 0, len(pairs))
	for _, p := range pairs {
		macs = append(macs, p.Mac)
	}

	macRows, err := upsertMacs(ctx, t.deps, t.store, t.zoneID, macs)
	if err != nil {
		return t.fail("ip", 4062, err)
	}
	ipRows, err := upsertIps(ctx, t.deps, t.store, t.zoneID, pairs)
	if err != nil {
		return t.fail("ip", 4063, err)
	}
	t.Status.Ip = true

	inserted, err := upsertMacIps(ctx, t.deps, t.store, t.zoneID, pairs, macRows, ipRows)
	if err != nil {
		return t.fail("macip", 4064, err)
	}
	t.Status.MacIp = true

	logger.LogIngestStage("ip", 4065, "completed", map[string]interface{}{
		"hostname": t.snap.Hostname(),
		"ips":      len(ipRows),
		"macips":   inserted,
	})
	return nil
}

// IpPort 由 MacPort 与 MacIp 推导接口与 IP 的关联
func (t *Topology) IpPort(ctx context.Context) error {
	if !t.Status.MacIp {
		return t.skip("ipport", 4081, "macip stage not completed")
	}

	interfaces, err := t.interfacesByIfIndex(ctx)
	if err != nil {
		return t.fail("ipport", 4082, err)
	}
	l1IDs := interfaceIDs(interfaces)

	macPorts, err := t.store.MacPorts.ListMacPorts(ctx, l1IDs)
	if err != nil {
		return t.fail("ipport", 4083, err)
	}
	macSet := make(map[uint64]struct{})
	var macIDs []uint64
	for _, mp := range macPorts {
		if _, ok := macSet[mp.IdxMac]; !ok {
			macSet[mp.IdxMac] = struct{}{}
			macIDs = append(macIDs, mp.IdxMac)
		}
	}

	macIps, err := t.store.MacIps.ListMacIpsByMac(ctx, macIDs)
	if err != nil {
		return t.fail("ipport", 4084, err)
	}
	ipsByMac := make(map[uint64][]uint64)
	for _, mi := range macIps {
		ipsByMac[mi.IdxMac] = append(ipsByMac[mi.IdxMac], mi.IdxIp)
	}

	existingRows, err := t.store.IpPorts.ListIpPorts(ctx, l1IDs)
	if err != nil {
		return t.fail("ipport", 4085, err)
	}
	seen := make(map[[2]uint64]struct{}, len(existingRows))
	for _, r := range existingRows {
		seen[[2]uint64{r.IdxL1Interface, r.IdxIp}] = struct{}{}
	}

	var candidates [][2]uint64
	for _, mp := range macPorts {
		for _, ipID := range ipsByMac[mp.IdxMac] {
			key := [2]uint64{mp.IdxL1Interface, ipID}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			candidates = append(candidates, key)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i][0] != candidates[j][0] {
			return candidates[i][0] < candidates[j][0]
		}
		return candidates[i][1] < candidates[j][1]
	})

	inserts := make([]*model.IpPort, 0, len(candidates))
	for _, c := range candidates {
		inserts = append(inserts, &model.IpPort{IdxL1Interface: c[0], IdxIp: c[1], Enabled: 1})
	}
	if err := t.store.IpPorts.BulkCreateIpPorts(ctx, inserts); err != nil {
		return t.fail("ipport", 4086, err)
	}

	t.Status.IpPort = true
	logger.LogIngestStage("ipport", 4087, "completed", map[string]interface{}{
		"hostname": t.snap.Hostname(),
		"inserted": len(inserts),
	})
	return nil
}
