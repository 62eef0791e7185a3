package normalizer

import (
	"path/filepath"
	"testing"

	"switchmap/internal/service/topology/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func newSnapshot(layer1 map[int]*snapshot.Interface, stack map[int]snapshot.IntList) *snapshot.Snapshot {
	snap := &snapshot.Snapshot{Layer1: layer1}
	snap.Misc.Host = "sw"
	snap.System.IF.IfStackStatus = stack
	return snap
}

func TestNormalize_CiscoAccessVlan(t *testing.T) {
	snap := newSnapshot(map[int]*snapshot.Interface{
		5: {IfName: "Gi0/5", IfType: 6, VmVlan: intp(100)},
	}, map[int]snapshot.IntList{5: {0}})

	Normalize(snap)

	facts := snap.Layer1[5].Facts
	assert.True(t, facts.Ethernet)
	assert.Equal(t, []int{100}, facts.Vlans)
	assert.False(t, facts.Trunk)
}

func TestNormalize_JuniperTrunk(t *testing.T) {
	snap := newSnapshot(map[int]*snapshot.Interface{
		7: {IfName: "ge-0/0/7", IfType: 6, JnxExVlanPortAccessMode: intp(2)},
	}, nil)

	Normalize(snap)
	assert.True(t, snap.Layer1[7].Trunk)
}

func TestNormalize_JuniperSubInterface(t *testing.T) {
	snap := newSnapshot(map[int]*snapshot.Interface{
		510: {IfName: "ge-0/0/0", IfType: 6},
		511: {IfName: "ge-0/0/0.0", IfType: 53, JnxExVlanTag: snapshot.IntList{10, 20}, Dot1qPvid: intp(10), JnxExVlanPortAccessMode: intp(2)},
	}, map[int]snapshot.IntList{510: {511}})

	Normalize(snap)

	facts := snap.Layer1[510].Facts
	assert.Equal(t, []int{10, 20}, facts.Vlans)
	assert.Equal(t, 10, facts.NativeVlan)
	assert.True(t, facts.Trunk)
	// 上层逻辑接口不是以太网口
	assert.False(t, snap.Layer1[511].Ethernet)
	assert.Empty(t, snap.Layer1[511].Vlans)
}

func TestNormalize_MultipleHigherLayers(t *testing.T) {
	snap := newSnapshot(map[int]*snapshot.Interface{
		1:  {IfName: "ge-0/0/1", IfType: 6},
		30: {IfName: "ge-0/0/1.30", JnxExVlanTag: snapshot.IntList{30}, Dot1qPvid: intp(30), JnxExVlanPortAccessMode: intp(2)},
		20: {IfName: "ge-0/0/1.20", JnxExVlanTag: snapshot.IntList{20}, Dot1qPvid: intp(20)},
	}, map[int]snapshot.IntList{1: {30, 20}})

	Normalize(snap)

	facts := snap.Layer1[1].Facts
	// 上层按 ifIndex 升序访问，Native VLAN / Trunk 以最后一个为准
	assert.Equal(t, []int{20, 30}, facts.Vlans)
	assert.Equal(t, 30, facts.NativeVlan)
	assert.True(t, facts.Trunk)
}

func TestNormalize_MissingHigherLayerFallsBackToSelf(t *testing.T) {
	snap := newSnapshot(map[int]*snapshot.Interface{
		3: {IfName: "Gi0/3", IfType: 6, VmVlan: intp(3)},
	}, map[int]snapshot.IntList{3: {99}})

	Normalize(snap)
	assert.Equal(t, []int{3}, snap.Layer1[3].Vlans)
}

func TestIsEthernet(t *testing.T) {
	tests := []struct {
		name  string
		iface *snapshot.Interface
		want  bool
	}{
		{name: "gig", iface: &snapshot.Interface{IfName: "Gi1/0/1", IfType: 6}, want: true},
		{name: "descr_only", iface: &snapshot.Interface{IfDescr: "GigabitEthernet1/0/1", IfType: 6}, want: true},
		{name: "vlan_interface_type6", iface: &snapshot.Interface{IfName: "Vlan10", IfType: 6}, want: false},
		{name: "vlan_upper", iface: &snapshot.Interface{IfDescr: "VL20", IfType: 6}, want: false},
		{name: "other_type", iface: &snapshot.Interface{IfName: "Po1", IfType: 161}, want: false},
		{name: "nil", iface: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEthernet(tt.iface))
		})
	}
}

func TestDuplex(t *testing.T) {
	tests := []struct {
		name  string
		iface *snapshot.Interface
		want  int
	}{
		{name: "swPortDuplexStatus_full", iface: &snapshot.Interface{SwPortDuplexStatus: intp(1)}, want: DuplexFull},
		{name: "swPortDuplexStatus_half", iface: &snapshot.Interface{SwPortDuplexStatus: intp(2)}, want: DuplexHalf},
		{name: "dot3_full", iface: &snapshot.Interface{Dot3StatsDuplexStatus: intp(3)}, want: DuplexFull},
		{name: "dot3_half", iface: &snapshot.Interface{Dot3StatsDuplexStatus: intp(2)}, want: DuplexHalf},
		{name: "dot3_unknown", iface: &snapshot.Interface{Dot3StatsDuplexStatus: intp(1)}, want: DuplexUnknown},
		{name: "portDuplex_full", iface: &snapshot.Interface{PortDuplex: intp(2)}, want: DuplexFull},
		{name: "portDuplex_half", iface: &snapshot.Interface{PortDuplex: intp(1)}, want: DuplexHalf},
		{name: "priority_first_present", iface: &snapshot.Interface{SwPortDuplexStatus: intp(2), PortDuplex: intp(2)}, want: DuplexHalf},
		{name: "none", iface: &snapshot.Interface{}, want: DuplexUnknown},
		{name: "c2900_auto_full", iface: &snapshot.Interface{C2900PortLinkbeatStatus: intp(1), C2900PortDuplexStatus: intp(1)}, want: DuplexFullAuto},
		{name: "c2900_auto_half", iface: &snapshot.Interface{C2900PortLinkbeatStatus: intp(2), C2900PortDuplexStatus: intp(2)}, want: DuplexHalfAuto},
		{name: "c2900_forced_full", iface: &snapshot.Interface{C2900PortLinkbeatStatus: intp(3), C2900PortDuplexStatus: intp(1)}, want: DuplexFull},
		{name: "c2900_forced_half", iface: &snapshot.Interface{C2900PortLinkbeatStatus: intp(3), C2900PortDuplexStatus: intp(2)}, want: DuplexHalf},
		{name: "c2900_only_refines_unknown", iface: &snapshot.Interface{PortDuplex: intp(1), C2900PortLinkbeatStatus: intp(1), C2900PortDuplexStatus: intp(1)}, want: DuplexHalf},
		{name: "c2900_refines_dot3_unknown", iface: &snapshot.Interface{Dot3StatsDuplexStatus: intp(1), C2900PortLinkbeatStatus: intp(3), C2900PortDuplexStatus: intp(2)}, want: DuplexHalf},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Duplex(tt.iface))
		})
	}
}

func TestNormalize_NonEthernetHasNoFacts(t *testing.T) {
	snap := newSnapshot(map[int]*snapshot.Interface{
		1: {IfName: "Vl1", IfType: 53, VmVlan: intp(1), SwPortDuplexStatus: intp(1), VlanTrunkPortDynamicStatus: intp(1)},
	}, nil)
	Normalize(snap)
	assert.Equal(t, snapshot.Facts{}, snap.Layer1[1].Facts)
}

func TestNormalize_Fixture(t *testing.T) {
	snap, err := snapshot.Load(filepath.Join("..", "snapshot", "testdata", "device-08.example.org.yaml"))
	require.NoError(t, err)

	Normalize(snap)

	gi1 := snap.Layer1[10101].Facts
	assert.True(t, gi1.Ethernet)
	assert.Equal(t, DuplexFull, gi1.Duplex)
	assert.Equal(t, 1, gi1.NativeVlan)
	assert.Equal(t, []int{1}, gi1.Vlans)
	assert.False(t, gi1.Trunk)

	gi2 := snap.Layer1[10102].Facts
	assert.True(t, gi2.Trunk)
	assert.Equal(t, DuplexFull, gi2.Duplex)

	assert.False(t, snap.Layer1[1].Ethernet)
	assert.Nil(t, Normalize(nil))
}
