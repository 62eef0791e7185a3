package ingest

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirWatcher_DebouncedTrigger(t *testing.T) {
	dir := t.TempDir()
	var triggered int32
	w, err := NewDirWatcher(dir, 100*time.Millisecond, func() { atomic.AddInt32(&triggered, 1) })
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	for n := 0; n < 3; n++ {
		name := filepath.Join(dir, "device-0"+string(rune('1'+n))+".yaml")
		require.NoError(t, os.WriteFile(name, []byte("misc: {}\n"), 0644))
	}

	require.Eventually(t, func() bool { return atomic.LoadInt32(&triggered) >= 1 }, 3*time.Second, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&triggered))
}

func TestDirWatcher_IgnoresOtherFiles(t *testing.T) {
	assert.True(t, isSnapshotFile("/tmp/a.YAML"))
	assert.False(t, isSnapshotFile("/tmp/SKIP"))
	assert.False(t, isSnapshotFile("/tmp/a.yaml.tmp"))

	_, err := NewDirWatcher(t.TempDir(), 0, nil)
	assert.Error(t, err)
}
