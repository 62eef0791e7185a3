package topology

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"switchmap/internal/config"
	model "switchmap/internal/model/topology"
	"switchmap/internal/pkg/database"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewSQLiteConnection(&config.SQLiteConfig{
		Path:     filepath.Join(t.TempDir(), "topology.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	store := NewStore(db, 4)
	require.NoError(t, store.Events.Bootstrap(context.Background()))
	return store
}

func TestBootstrap_Idempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Events.Bootstrap(ctx))

	events, err := store.Events.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "bootstrap", events[0].Name)

	root, err := store.Events.GetRoot(ctx)
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.Equal(t, model.BootstrapEventID, root.IdxEvent)

	oui, err := store.Ouis.GetOui(ctx, "")
	require.NoError(t, err)
	require.NotNil(t, oui)
	assert.Equal(t, model.UnknownOuiID, oui.ID)
}

func TestSelectOne_NotFound(t *testing.T) {
	store := newTestStore(t)
	device, err := store.Devices.GetDevice(context.Background(), 99, "missing")
	assert.NoError(t, err)
	assert.Nil(t, device)
}

func TestPurge_KeepsBootstrapAndTwoMostRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var last *model.Event
	for i := 0; i < 12; i++ {
		event, err := store.Events.CreateEvent(ctx, fmt.Sprintf("event-%d", i), int64(i))
		require.NoError(t, err)
		last = event
	}

	purged, err := store.Events.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), purged)

	events, err := store.Events.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, model.BootstrapEventID, events[0].ID)
	assert.Equal(t, last.ID-1, events[1].ID)
	assert.Equal(t, last.ID, events[2].ID)
}

func TestAdvanceRoot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Events.CreateEvent(ctx, "first", 1)
	require.NoError(t, err)
	second, err := store.Events.CreateEvent(ctx, "second", 2)
	require.NoError(t, err)

	_, err = store.Events.AdvanceRoot(ctx, second.ID, false)
	require.NoError(t, err)
	root, err := store.Events.GetRoot(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, root.IdxEvent)

	// 不回退
	_, err = store.Events.AdvanceRoot(ctx, first.ID, false)
	require.NoError(t, err)
	root, err = store.Events.GetRoot(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, root.IdxEvent)
}

func TestAdvanceRoot_PurgeCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	old, err := store.Events.CreateEvent(ctx, "old", 1)
	require.NoError(t, err)
	zone, err := store.Zones.GetOrCreateZone(ctx, old.ID, "default")
	require.NoError(t, err)
	device, err := store.Devices.CreateDevice(ctx, &model.Device{IdxZone: zone.ID, Hostname: "sw1", Enabled: 1})
	require.NoError(t, err)
	require.NoError(t, store.L1Interfaces.BulkCreateL1Interfaces(ctx, []*model.L1Interface{
		{IdxDevice: device.ID, IfIndex: 1, Enabled: 1},
	}))

	var newest *model.Event
	for i := 0; i < 3; i++ {
		newest, err = store.Events.CreateEvent(ctx, fmt.Sprintf("n%d", i), int64(10+i))
		require.NoError(t, err)
	}

	purged, err := store.Events.AdvanceRoot(ctx, newest.ID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)

	var zones, devices, interfaces int64
	db := store.DB()
	require.NoError(t, db.Model(&model.Zone{}).Count(&zones).Error)
	require.NoError(t, db.Model(&model.Device{}).Count(&devices).Error)
	require.NoError(t, db.Model(&model.L1Interface{}).Count(&interfaces).Error)
	assert.Zero(t, zones)
	assert.Zero(t, devices)
	assert.Zero(t, interfaces)
}

func TestGetOrCreateZone(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a, err := store.Zones.GetOrCreateZone(ctx, model.BootstrapEventID, "campus")
	require.NoError(t, err)
	b, err := store.Zones.GetOrCreateZone(ctx, model.BootstrapEventID, "campus")
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)
}

func TestExistsDevice(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	zone, err := store.Zones.GetOrCreateZone(ctx, model.BootstrapEventID, "campus")
	require.NoError(t, err)

	found, err := store.Devices.ExistsDevice(ctx, zone.ID, "sw1")
	require.NoError(t, err)
	assert.False(t, found)

	_, err = store.Devices.CreateDevice(ctx, &model.Device{IdxZone: zone.ID, Hostname: "sw1", Enabled: 1})
	require.NoError(t, err)

	found, err = store.Devices.ExistsDevice(ctx, zone.ID, "sw1")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestBulkInsert_IgnoresDuplicates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	zone, err := store.Zones.GetOrCreateZone(ctx, model.BootstrapEventID, "default")
	require.NoError(t, err)

	rows := func() []*model.Mac {
		return []*model.Mac{
			{IdxZone: zone.ID, IdxOui: model.UnknownOuiID, Mac: "001122334455", Enabled: 1},
			{IdxZone: zone.ID, IdxOui: model.UnknownOuiID, Mac: "001122334466", Enabled: 1},
		}
	}
	require.NoError(t, store.Macs.BulkCreateMacs(ctx, rows()))
	require.NoError(t, store.Macs.BulkCreateMacs(ctx, rows()))

	macs, err := store.Macs.ListMacs(ctx, zone.ID, []string{"001122334455", "001122334466", "ffffffffffff"})
	require.NoError(t, err)
	assert.Len(t, macs, 2)
}

func TestUpdateRow_WritesZeroValues(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	zone, err := store.Zones.GetOrCreateZone(ctx, model.BootstrapEventID, "default")
	require.NoError(t, err)
	device, err := store.Devices.CreateDevice(ctx, &model.Device{IdxZone: zone.ID, Hostname: "sw1", Enabled: 1})
	require.NoError(t, err)
	require.NoError(t, store.L1Interfaces.BulkCreateL1Interfaces(ctx, []*model.L1Interface{
		{IdxDevice: device.ID, IfIndex: 3, TsIdle: 1700000000, Trunk: 1, Enabled: 1},
	}))

	row, err := store.L1Interfaces.GetL1Interface(ctx, device.ID, 3)
	require.NoError(t, err)
	row.TsIdle = 0
	row.Trunk = 0
	require.NoError(t, store.L1Interfaces.UpdateL1Interface(ctx, row))

	row, err = store.L1Interfaces.GetL1Interface(ctx, device.ID, 3)
	require.NoError(t, err)
	assert.Zero(t, row.TsIdle)
	assert.Zero(t, row.Trunk)
}

func TestResolveOuis(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Ouis.UpsertOuis(ctx, []*model.Oui{
		{Oui: "00000c", Organization: "Cisco", Enabled: 1},
	}))
	require.NoError(t, store.Ouis.UpsertOuis(ctx, []*model.Oui{
		{Oui: "00000c", Organization: "Cisco Systems, Inc", Enabled: 1},
	}))

	ids, err := store.Ouis.ResolveOuis(ctx, []string{"00000c", "abcdef"})
	require.NoError(t, err)
	assert.Equal(t, model.UnknownOuiID, ids["abcdef"])
	assert.NotEqual(t, model.UnknownOuiID, ids["00000c"])

	oui, err := store.Ouis.GetOui(ctx, "00000c")
	require.NoError(t, err)
	assert.Equal(t, "Cisco Systems, Inc", oui.Organization)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{name: "nil", err: nil, want: ErrorTypeUnknown},
		{name: "mysql_duplicate", err: &mysql.MySQLError{Number: 1062}, want: ErrorTypeDuplicate},
		{name: "mysql_deadlock", err: fmt.Errorf("wrap: %w", &mysql.MySQLError{Number: 1213}), want: ErrorTypeTransient},
		{name: "mysql_fk", err: &mysql.MySQLError{Number: 1452}, want: ErrorTypePersistent},
		{name: "gorm_duplicate", err: gorm.ErrDuplicatedKey, want: ErrorTypeDuplicate},
		{name: "sqlite_unique", err: errors.New("constraint failed: UNIQUE constraint failed: mac.mac, mac.idx_zone (2067)"), want: ErrorTypeDuplicate},
		{name: "sqlite_busy", err: errors.New("database is locked (5) (SQLITE_BUSY)"), want: ErrorTypeTransient},
		{name: "root_conflict", err: fmt.Errorf("advance: %w", ErrRootConflict), want: ErrorTypeTransient},
		{name: "other", err: errors.New("boom"), want: ErrorTypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
	assert.True(t, IsDuplicate(&mysql.MySQLError{Number: 1062}))
	assert.True(t, IsTransient(&mysql.MySQLError{Number: 2006}))
	assert.True(t, IsPersistent(&mysql.MySQLError{Number: 1146}))
}
