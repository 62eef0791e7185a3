package database

import (
	"path/filepath"
	"strconv"
	"testing"

	"switchmap/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnection_SQLite(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "db", "switchmap.db"), LogLevel: "silent"},
	}
	db, err := NewConnection(cfg)
	require.NoError(t, err)

	var fk int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)
}

func TestNewConnection_UnknownDriver(t *testing.T) {
	_, err := NewConnection(&config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)

	_, err = NewConnection(nil)
	assert.Error(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	dsn := sqliteDSN(&config.SQLiteConfig{Path: "a.db"})
	assert.Equal(t, "a.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dsn)

	dsn = sqliteDSN(&config.SQLiteConfig{Path: "file:a.db?cache=shared", BusyTimeout: 100})
	assert.Equal(t, "file:a.db?cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(100)", dsn)
}

func TestNewRedisConnection(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	cfg := &config.RedisConfig{Host: mr.Host(), Port: port}
	client, err := NewRedisConnection(cfg)
	require.NoError(t, err)
	defer client.Close()
}

