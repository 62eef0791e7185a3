package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"switchmap/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger_InvalidFormat(t *testing.T) {
	_, err := InitLogger(&config.LogConfig{Level: "info", Format: "xml", Output: "stdout"})
	assert.Error(t, err)

	_, err = InitLogger(nil)
	assert.Error(t, err)
}

func TestLogError_CarriesCode(t *testing.T) {
	lm, err := InitLogger(&config.LogConfig{Level: "debug", Format: "json", Output: "stdout"})
	require.NoError(t, err)
	defer func() { LoggerInstance = nil }()

	var buf bytes.Buffer
	lm.GetLogger().SetOutput(&buf)

	LogError(errors.New("insert failed"), 1053, "repo.mac", "bulk_insert", map[string]interface{}{"zone": 7})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, float64(1053), line["code"])
	assert.Equal(t, "insert failed", line["error"])
	assert.Equal(t, "bulk_insert", line["operation"])
	assert.Equal(t, float64(7), line["zone"])
	assert.Equal(t, "error", line["type"])
}

func TestLogIngestStage_Levels(t *testing.T) {
	lm, err := InitLogger(&config.LogConfig{Level: "info", Format: "json", Output: "stdout"})
	require.NoError(t, err)
	defer func() { LoggerInstance = nil }()

	var buf bytes.Buffer
	lm.GetLogger().SetOutput(&buf)

	// skipped 为 debug 级别，info 级别下不输出
	LogIngestStage("vlan", 1201, "skipped", nil)
	assert.Equal(t, 0, buf.Len())

	LogIngestStage("vlan", 1202, "completed", map[string]interface{}{"rows": 3})
	assert.Contains(t, buf.String(), `"result":"completed"`)
}

func TestHelpers_NoopWithoutLogger(t *testing.T) {
	LoggerInstance = nil
	assert.NotPanics(t, func() {
		LogError(errors.New("x"), 1, "", "", nil)
		LogInfo("x", 1, "", "", nil)
		LogDebug("x", 1, "", "", nil)
		LogWarn("x", 1, "", "", nil)
		LogIngestStage("device", 1, "completed", nil)
		LogSystemEvent("ingest", "start", "x", logrus.InfoLevel, nil)
		Infof("x %d", 1)
	})
}

func TestFileHook_WritesTypedFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.LogConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: filepath.Join(dir, "switchmap.log"),
		MaxSize:  1,
	}
	_, err := InitLogger(cfg)
	require.NoError(t, err)
	defer func() { LoggerInstance = nil }()

	LogInfo("device reconciled", 1001, "reconcile.device", "device", nil)
	LogError(errors.New("boom"), 1002, "reconcile.device", "device", nil)
	LogSystemEvent("daemon", "start", "started", logrus.InfoLevel, nil)

	for _, name := range []string{"ingest.log", "error.log", "system.log"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.NotEmpty(t, data, name)
	}
}
