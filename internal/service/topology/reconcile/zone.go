// 区域级共享表对账
// Mac / Ip / MacIp 在区域内被所有设备共享，入库时先按区域合并全部设备的 ARP/NDP 配对一次性写入，
// 设备级阶段随后只需建立与接口的关联
package reconcile

import (
	"context"
	"fmt"
	"sort"

	model "switchmap/internal/model/topology"
	"switchmap/internal/pkg/lock"
	"switchmap/internal/pkg/logger"
	"switchmap/internal/pkg/utils"
	repo "switchmap/internal/repo/mysql/topology"
	"switchmap/internal/service/topology/snapshot"
)

// Pair 一条规范化后的 IP-MAC 配对
type Pair struct {
	Address string
	Version int
	Mac     string
}

// ExtractPairs 从快照的 ARP 与 NDP 表提取配对
// 非法的地址或MAC被丢弃；结果去重并按 (地址, MAC) 排序
func ExtractPairs(snap *snapshot.Snapshot) []Pair {
	if snap == nil {
		return nil
	}
	var pairs []Pair
	for _, table := range []map[string]string{
		snap.Layer3.IpNetToMediaTable,
		snap.Layer3.IpNetToPhysicalPhysAddress,
	} {
		for rawIP, rawMac := range table {
			address, version, ok := utils.CanonicalIP(rawIP)
			if !ok {
				continue
			}
			mac, ok := utils.CanonicalMAC(rawMac)
			if !ok {
				continue
			}
			pairs = append(pairs, Pair{Address: address, Version: version, Mac: mac})
		}
	}
	return MergePairs(pairs)
}

// MergePairs 合并多组配对，去重并排序
func MergePairs(sets ...[]Pair) []Pair {
	seen := make(map[Pair]struct{})
	var merged []Pair
	for _, set := range sets {
		for _, p := range set {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			merged = append(merged, p)
		}
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Address != merged[j].Address {
			return merged[i].Address < merged[j].Address
		}
		return merged[i].Mac < merged[j].Mac
	})
	return merged
}

// Zone 区域级对账器
type Zone struct {
	deps
	store  *repo.Store
	zoneID uint64
}

// NewZone 创建区域级对账器
func NewZone(store *repo.Store, zoneID uint64, opts ...Option) *Zone {
	d := defaultDeps()
	for _, opt := range opts {
		opt(&d)
	}
	return &Zone{deps: d, store: store, zoneID: zoneID}
}

// Process 写入区域内的 Mac、Ip 与 MacIp
func (z *Zone) Process(ctx context.Context, pairs []Pair) error {
	if len(pairs) == 0 {
		logger.LogIngestStage("zone", 4091, "skipped", map[string]interface{}{
			"zone":   z.zoneID,
			"reason": "no arp or ndp entries",
		})
		return nil
	}

	macs := make([]string, 0, len(pairs))
	for _, p := range pairs {
		macs = append(macs, p.Mac)
	}
	macRows, err := upsertMacs(ctx, z.deps, z.store, z.zoneID, macs)
	if err != nil {
		return fmt.Errorf("zone %d macs: %w", z.zoneID, err)
	}

	ipRows, err := upsertIps(ctx, z.deps, z.store, z.zoneID, pairs)
	if err != nil {
		return fmt.Errorf("zone %d ips: %w", z.zoneID, err)
	}

	inserted, err := upsertMacIps(ctx, z.deps, z.store, z.zoneID, pairs, macRows, ipRows)
	if err != nil {
		return fmt.Errorf("zone %d macips: %w", z.zoneID, err)
	}

	logger.LogIngestStage("zone", 4092, "completed", map[string]interface{}{
		"zone":   z.zoneID,
		"pairs":  len(pairs),
		"macs":   len(macRows),
		"ips":    len(ipRows),
		"macips": inserted,
	})
	return nil
}

// upsertMacs 确保区域内存在给定的MAC，返回 mac -> 行
// 查询与插入在区域 mac 锁内完成，插入冲突被忽略后重新查询
func upsertMacs(ctx context.Context, d deps, store *repo.Store, zoneID uint64, macs []string) (map[string]*model.Mac, error) {
	macs = uniqueSorted(macs)
	if len(macs) == 0 {
		return map[string]*model.Mac{}, nil
	}

	unlock, err := d.locker.Lock(ctx, lock.ZoneKey(zoneID, "mac"))
	if err != nil {
		return nil, err
	}
	defer unlock()

	existing, err := store.Macs.ListMacs(ctx, zoneID, macs)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, mac := range macs {
		if _, ok := existing[mac]; !ok {
			missing = append(missing, mac)
		}
	}
	if len(missing) == 0 {
		return existing, nil
	}

	prefixes := make([]string, 0, len(missing))
	for _, mac := range missing {
		prefixes = append(prefixes, mac[:6])
	}
	ouis, err := store.Ouis.ResolveOuis(ctx, uniqueSorted(prefixes))
	if err != nil {
		return nil, err
	}

	rows := make([]*model.Mac, 0, len(missing))
	for _, mac := range missing {
		rows = append(rows, &model.Mac{
			IdxOui:  ouis[mac[:6]],
			IdxZone: zoneID,
			Mac:     mac,
			Enabled: 1,
		})
	}
	if err := store.Macs.BulkCreateMacs(ctx, rows); err != nil {
		return nil, err
	}
	return store.Macs.ListMacs(ctx, zoneID, macs)
}

// upsertIps 写入区域内的IP，返回 address -> 行
// 已存在且逐字段一致的行不更新；DNS 解析在加锁前完成
func upsertIps(ctx context.Context, d deps, store *repo.Store, zoneID uint64, pairs []Pair) (map[string]*model.Ip, error) {
	versions := make(map[string]int)
	var addresses []string
	for _, p := range pairs {
		if _, ok := versions[p.Address]; !ok {
			versions[p.Address] = p.Version
			addresses = append(addresses, p.Address)
		}
	}
	sort.Strings(addresses)
	if len(addresses) == 0 {
		return map[string]*model.Ip{}, nil
	}

	hostnames := make(map[string]string, len(addresses))
	for _, address := range addresses {
		hostnames[address] = d.resolver.LookupHostname(ctx, address)
	}

	unlock, err := d.locker.Lock(ctx, lock.ZoneKey(zoneID, "ip"))
	if err != nil {
		return nil, err
	}
	defer unlock()

	existing, err := store.Ips.ListIps(ctx, zoneID, addresses)
	if err != nil {
		return nil, err
	}

	var inserts []*model.Ip
	for _, address := range addresses {
		candidate := &model.Ip{
			IdxZone:  zoneID,
			Address:  address,
			Version:  versions[address],
			Hostname: hostnames[address],
			Enabled:  1,
		}
		prev := existing[address]
		if prev == nil {
			inserts = append(inserts, candidate)
			continue
		}
		if sameIp(prev, candidate) {
			continue
		}
		candidate.ID = prev.ID
		candidate.CreatedAt = prev.CreatedAt
		if err := store.Ips.UpdateIp(ctx, candidate); err != nil {
			return nil, err
		}
	}

	if len(inserts) == 0 {
		return existing, nil
	}
	if err := store.Ips.BulkCreateIps(ctx, inserts); err != nil {
		return nil, err
	}
	return store.Ips.ListIps(ctx, zoneID, addresses)
}

// sameIp 除主键与时间戳外逐字段比较
func sameIp(a, b *model.Ip) bool {
	return a.IdxZone == b.IdxZone &&
		a.Address == b.Address &&
		a.Version == b.Version &&
		a.Hostname == b.Hostname &&
		a.Enabled == b.Enabled
}

// upsertMacIps 写入缺失的 MAC-IP 关联，返回插入数
func upsertMacIps(ctx context.Context, d deps, store *repo.Store, zoneID uint64, pairs []Pair, macs map[string]*model.Mac, ips map[string]*model.Ip) (int, error) {
	unlock, err := d.locker.Lock(ctx, lock.ZoneKey(zoneID, "macip"))
	if err != nil {
		return 0, err
	}
	defer unlock()

	macIDs := make([]uint64, 0, len(macs))
	for _, m := range macs {
		macIDs = append(macIDs, m.ID)
	}
	sort.Slice(macIDs, func(i, j int) bool { return macIDs[i] < macIDs[j] })

	existingRows, err := store.MacIps.ListMacIpsByMac(ctx, macIDs)
	if err != nil {
		return 0, err
	}
	seen := make(map[[2]uint64]struct{}, len(existingRows))
	for _, r := range existingRows {
		seen[[2]uint64{r.IdxIp, r.IdxMac}] = struct{}{}
	}

	var inserts []*model.MacIp
	for _, p := range pairs {
		mac, ip := macs[p.Mac], ips[p.Address]
		if mac == nil || ip == nil {
			continue
		}
		key := [2]uint64{ip.ID, mac.ID}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		inserts = append(inserts, &model.MacIp{IdxIp: ip.ID, IdxMac: mac.ID, Enabled: 1})
	}

	if err := store.MacIps.BulkCreateMacIps(ctx, inserts); err != nil {
		return 0, err
	}
	return len(inserts), nil
}

func uniqueSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	sort.Strings(result)
	return result
}
