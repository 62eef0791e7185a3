package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Fixture(t *testing.T) {
	snap, err := Load(filepath.Join("testdata", "device-08.example.org.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "device-08.example.org", snap.Hostname())
	assert.Equal(t, "campus", snap.ZoneName("default"))
	assert.Equal(t, int64(1700000000), snap.Misc.Timestamp)
	assert.Equal(t, "device-08", snap.System.SNMPv2.SysName[0])
	assert.Equal(t, int64(123456789), snap.System.SNMPv2.SysUpTime[0])
	assert.True(t, snap.IsCisco())
	assert.False(t, snap.IsJuniper())

	assert.Equal(t, []int{1, 10101, 10102, 10103}, snap.IfIndexes())
	assert.Equal(t, IntList{0}, snap.System.IF.IfStackStatus[10103])

	gi1 := snap.Layer1[10101]
	require.NotNil(t, gi1)
	assert.Equal(t, "Gi1/0/1", gi1.Name())
	require.NotNil(t, gi1.VmVlan)
	assert.Equal(t, 1, *gi1.VmVlan)
	assert.Nil(t, gi1.SwPortDuplexStatus)
	assert.Equal(t, StringList{"bridge", "router"}, gi1.LldpRemSysCapEnabled)
	assert.Equal(t, StringList{"0011.2233.4455"}, gi1.Macs)

	assert.Equal(t, "users", snap.Layer2[20].Name())
	assert.Equal(t, "00:11:22:33:44:55", snap.Layer3.IpNetToMediaTable["10.0.0.10"])
}

func TestParse_MissingHost(t *testing.T) {
	_, err := Parse([]byte("misc:\n  zone: x\n"))
	assert.ErrorIs(t, err, ErrMissingHost)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("misc: [unterminated"))
	assert.Error(t, err)

	_, err = Load(filepath.Join("testdata", "missing.yaml"))
	assert.Error(t, err)
}

func TestParse_ScalarOrList(t *testing.T) {
	snap, err := Parse([]byte(`
misc:
  host: sw
layer1:
  5:
    jnxExVlanTag: 30
    l1_macs: aabbccddeeff
  6:
    jnxExVlanTag: [10, 20]
  7:
`))
	require.NoError(t, err)
	assert.Equal(t, IntList{30}, snap.Layer1[5].JnxExVlanTag)
	assert.Equal(t, StringList{"aabbccddeeff"}, snap.Layer1[5].Macs)
	assert.Equal(t, IntList{10, 20}, snap.Layer1[6].JnxExVlanTag)
	require.NotNil(t, snap.Layer1[7])
	assert.Equal(t, "default", snap.ZoneName("default"))
}

func TestEnterprise(t *testing.T) {
	tests := []struct {
		oid  string
		want int
	}{
		{oid: ".1.3.6.1.4.1.9.1.516", want: 9},
		{oid: "1.3.6.1.4.1.2636.1.1.1.2.57", want: 2636},
		{oid: ".1.3.6.1.4.1.9", want: 9},
		{oid: ".1.3.6.1.2.1.1", want: 0},
		{oid: "", want: 0},
	}
	for _, tt := range tests {
		snap := &Snapshot{}
		snap.System.SNMPv2.SysObjectID = map[int]string{0: tt.oid}
		assert.Equal(t, tt.want, snap.Enterprise(), tt.oid)
	}
}
