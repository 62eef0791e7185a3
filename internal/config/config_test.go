package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const testConfigContent = `
app:
  name: "switchmap-test"
  environment: "test"

database:
  driver: "sqlite"
  sqlite:
    path: "data/test.db"
    log_level: "silent"

log:
  level: "info"
  format: "json"
  output: "stdout"

ingest:
  directory: "/tmp/switchmap/cache"
  agent_subprocesses: 3
  multiprocessing: true
  purge: true

dns:
  enabled: false

lock:
  backend: "memory"
`

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

// TestLoadConfig 测试配置加载功能
func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yaml", testConfigContent)

	config, err := LoadConfig(tempDir, "development")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.App.Name != "switchmap-test" {
		t.Errorf("Expected app name 'switchmap-test', got '%s'", config.App.Name)
	}
	if config.Database.Driver != "sqlite" {
		t.Errorf("Expected driver sqlite, got %s", config.Database.Driver)
	}
	if config.Ingest.AgentSubprocesses != 3 {
		t.Errorf("Expected 3 agent subprocesses, got %d", config.Ingest.AgentSubprocesses)
	}
	if !config.Ingest.Purge {
		t.Error("Expected purge to be enabled")
	}
	if GlobalConfig != config {
		t.Error("Expected GlobalConfig to be set")
	}
}

// TestLoadConfigDefaults 测试缺省值填充
func TestLoadConfigDefaults(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yaml", testConfigContent)

	config, err := LoadConfig(tempDir, "")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Ingest.SkipFile != "SKIP" {
		t.Errorf("Expected default skip file SKIP, got %s", config.Ingest.SkipFile)
	}
	if config.Ingest.DefaultZone != "default" {
		t.Errorf("Expected default zone 'default', got %s", config.Ingest.DefaultZone)
	}
	if config.Ingest.BatchSize != 100 {
		t.Errorf("Expected batch size 100, got %d", config.Ingest.BatchSize)
	}
	if config.Lock.TTL != 30*time.Second {
		t.Errorf("Expected lock ttl 30s, got %v", config.Lock.TTL)
	}
	if config.DNS.Timeout != 2*time.Second {
		t.Errorf("Expected dns timeout 2s, got %v", config.DNS.Timeout)
	}
}

// TestLoadConfigEnvironmentFile 测试按环境选择配置文件
func TestLoadConfigEnvironmentFile(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yaml", testConfigContent)
	writeConfig(t, tempDir, "config.test.yaml", strings.Replace(testConfigContent, "switchmap-test", "switchmap-unit", 1))

	config, err := LoadConfig(tempDir, "test")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.App.Name != "switchmap-unit" {
		t.Errorf("Expected config.test.yaml to be used, got app name %s", config.App.Name)
	}

	// 直接传入文件路径
	file := writeConfig(t, tempDir, "custom.yaml", testConfigContent)
	config, err = LoadConfig(file, "production")
	if err != nil {
		t.Fatalf("Failed to load config file: %v", err)
	}
	if config.App.Name != "switchmap-test" {
		t.Errorf("Expected custom.yaml to be used, got app name %s", config.App.Name)
	}
}

// TestValidateConfig 测试配置验证
func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		c := &Config{
			Database: DatabaseConfig{Driver: "sqlite", SQLite: SQLiteConfig{Path: "x.db"}},
			Log:      LogConfig{Level: "info", Format: "json", Output: "stdout"},
			Ingest:   IngestConfig{Directory: "/tmp/cache"},
			Lock:     LockConfig{Backend: "memory"},
		}
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "bad_driver", mutate: func(c *Config) { c.Database.Driver = "oracle" }, wantErr: true},
		{name: "mysql_without_host", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: true},
		{name: "sqlite_without_path", mutate: func(c *Config) { c.Database.SQLite.Path = "" }, wantErr: true},
		{name: "bad_log_level", mutate: func(c *Config) { c.Log.Level = "verbose" }, wantErr: true},
		{name: "file_output_without_path", mutate: func(c *Config) { c.Log.Output = "file" }, wantErr: true},
		{name: "missing_directory", mutate: func(c *Config) { c.Ingest.Directory = " " }, wantErr: true},
		{name: "redis_lock_without_host", mutate: func(c *Config) { c.Lock.Backend = "redis" }, wantErr: true},
		{name: "bad_lock_backend", mutate: func(c *Config) { c.Lock.Backend = "etcd" }, wantErr: true},
		{name: "server_bad_port", mutate: func(c *Config) { c.Server.Enabled = true; c.Server.Mode = "release" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := validateConfig(c)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestSkipFilePath 测试跳过标记路径
func TestSkipFilePath(t *testing.T) {
	c := IngestConfig{Directory: "/var/cache/switchmap", SkipFile: "SKIP"}
	if got := c.SkipFilePath(); got != filepath.Join("/var/cache/switchmap", "SKIP") {
		t.Errorf("unexpected skip path %s", got)
	}

	c.SkipFile = "/run/switchmap.skip"
	if got := c.SkipFilePath(); got != "/run/switchmap.skip" {
		t.Errorf("unexpected absolute skip path %s", got)
	}

	c.SkipFile = ""
	if got := c.SkipFilePath(); got != "" {
		t.Errorf("expected empty skip path, got %s", got)
	}
}

// TestConfigWatcherReload 测试配置变更后回调被触发
func TestConfigWatcherReload(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yaml", testConfigContent)

	current, err := LoadConfig(tempDir, "development")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	watcher, err := NewConfigWatcher(tempDir, "development", current)
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	watcher.debounce = 50 * time.Millisecond

	var reloaded atomic.Value
	watcher.AddCallback(func(oldConfig, newConfig *Config) error {
		reloaded.Store(newConfig.Log.Level)
		return nil
	})

	if err := watcher.Start(); err != nil {
		t.Fatalf("Failed to start watcher: %v", err)
	}
	defer watcher.Stop()

	writeConfig(t, tempDir, "config.yaml", strings.Replace(testConfigContent, `level: "info"`, `level: "debug"`, 1))

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if v, ok := reloaded.Load().(string); ok && v == "debug" {
			if watcher.Current().Log.Level != "debug" {
				t.Errorf("expected current config to be replaced")
			}
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("config reload callback was not invoked")
}
