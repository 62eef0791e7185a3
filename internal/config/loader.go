package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var (
	// GlobalConfig 全局配置实例
	GlobalConfig *Config
)

// LoadConfig 加载配置文件
// configPath: 配置文件目录或文件路径，如果为空则使用默认路径
// env: 环境标识，支持 development, test, production
func LoadConfig(configPath, env string) (*Config, error) {
	// 设置默认环境
	if env == "" {
		env = getEnvFromEnvironment()
	}

	// 创建viper实例
	v := viper.New()

	// 设置配置文件类型
	v.SetConfigType("yaml")

	// 设置配置文件路径
	if configPath == "" {
		configPath = getDefaultConfigPath()
	}

	// 根据环境选择配置文件
	configFile := getConfigFileName(configPath, env)
	v.SetConfigFile(configFile)

	// 设置环境变量前缀
	v.SetEnvPrefix("SWITCHMAP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 绑定环境变量
	bindEnvironmentVariables(v)

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	// 解析配置到结构体
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.App.Environment == "" {
		config.App.Environment = env
	}
	applyDefaults(&config)

	// 验证配置
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 设置全局配置
	GlobalConfig = &config

	return &config, nil
}

// getEnvFromEnvironment 从环境变量获取环境标识
func getEnvFromEnvironment() string {
	env := os.Getenv("SWITCHMAP_ENV")
	if env == "" {
		env = os.Getenv("GO_ENV")
	}
	if env == "" {
		env = "development" // 默认开发环境
	}
	return env
}

// getDefaultConfigPath 获取默认配置文件路径
func getDefaultConfigPath() string {
	// 尝试从环境变量获取配置路径
	if configPath := os.Getenv("SWITCHMAP_CONFIG_PATH"); configPath != "" {
		return configPath
	}

	// 使用默认路径
	return "configs"
}

// getConfigFileName 根据环境获取配置文件名
// 传入的 configPath 若本身是文件，直接使用
func getConfigFileName(configPath, env string) string {
	if info, err := os.Stat(configPath); err == nil && !info.IsDir() {
		return configPath
	}

	var configFile string

	switch env {
	case "production", "prod":
		configFile = filepath.Join(configPath, "config.prod.yaml")
	case "test", "testing":
		configFile = filepath.Join(configPath, "config.test.yaml")
	default:
		configFile = filepath.Join(configPath, "config.yaml")
	}

	// 检查文件是否存在，如果不存在则使用默认配置文件
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		defaultConfig := filepath.Join(configPath, "config.yaml")
		if _, err := os.Stat(defaultConfig); err == nil {
			return defaultConfig
		}
	}

	return configFile
}

// bindEnvironmentVariables 绑定环境变量
func bindEnvironmentVariables(v *viper.Viper) {
	// 数据库配置
	v.BindEnv("database.driver", "SWITCHMAP_DATABASE_DRIVER")
	v.BindEnv("database.mysql.host", "SWITCHMAP_MYSQL_HOST")
	v.BindEnv("database.mysql.port", "SWITCHMAP_MYSQL_PORT")
	v.BindEnv("database.mysql.username", "SWITCHMAP_MYSQL_USERNAME")
	v.BindEnv("database.mysql.password", "SWITCHMAP_MYSQL_PASSWORD")
	v.BindEnv("database.mysql.database", "SWITCHMAP_MYSQL_DATABASE")
	v.BindEnv("database.sqlite.path", "SWITCHMAP_SQLITE_PATH")

	v.BindEnv("database.redis.host", "SWITCHMAP_REDIS_HOST")
	v.BindEnv("database.redis.port", "SWITCHMAP_REDIS_PORT")
	v.BindEnv("database.redis.password", "SWITCHMAP_REDIS_PASSWORD")
	v.BindEnv("database.redis.database", "SWITCHMAP_REDIS_DATABASE")

	// 入库配置
	v.BindEnv("ingest.directory", "SWITCHMAP_INGEST_DIRECTORY")
	v.BindEnv("ingest.agent_subprocesses", "SWITCHMAP_AGENT_SUBPROCESSES")

	// 日志配置
	v.BindEnv("log.level", "SWITCHMAP_LOG_LEVEL")
	v.BindEnv("log.file_path", "SWITCHMAP_LOG_FILE_PATH")

	// 应用配置
	v.BindEnv("app.environment", "SWITCHMAP_APP_ENVIRONMENT")
	v.BindEnv("app.debug", "SWITCHMAP_APP_DEBUG")
}

// applyDefaults 填充缺省值
func applyDefaults(config *Config) {
	if config == nil {
		return
	}

	if strings.TrimSpace(config.App.Name) == "" {
		config.App.Name = "switchmap"
	}
	if config.Database.Driver == "" {
		config.Database.Driver = "mysql"
	}
	if config.Database.SQLite.BusyTimeout <= 0 {
		config.Database.SQLite.BusyTimeout = 5000
	}
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "json"
	}
	if config.Log.Output == "" {
		config.Log.Output = "stdout"
	}

	ingest := &config.Ingest
	if ingest.SkipFile == "" {
		ingest.SkipFile = "SKIP"
	}
	if ingest.AgentSubprocesses <= 0 {
		ingest.AgentSubprocesses = runtime.NumCPU()
	}
	if strings.TrimSpace(ingest.DefaultZone) == "" {
		ingest.DefaultZone = "default"
	}
	if ingest.BatchSize <= 0 {
		ingest.BatchSize = 100
	}
	if ingest.Retries < 0 {
		ingest.Retries = 0
	}
	if ingest.Schedule == "" {
		ingest.Schedule = "@every 5m"
	}
	if ingest.Debounce <= 0 {
		ingest.Debounce = 2 * time.Second
	}

	if config.DNS.Timeout <= 0 {
		config.DNS.Timeout = 2 * time.Second
	}

	if config.Lock.Backend == "" {
		config.Lock.Backend = "memory"
	}
	if config.Lock.Prefix == "" {
		config.Lock.Prefix = "switchmap:lock:"
	}
	if config.Lock.TTL <= 0 {
		config.Lock.TTL = 30 * time.Second
	}
	if config.Lock.RetryInterval <= 0 {
		config.Lock.RetryInterval = 50 * time.Millisecond
	}

	if config.Server.Mode == "" {
		config.Server.Mode = "release"
	}
}

// validateConfig 验证配置
func validateConfig(config *Config) error {
	// 验证数据库配置
	validDrivers := []string{"mysql", "sqlite"}
	if !contains(validDrivers, config.Database.Driver) {
		return fmt.Errorf("invalid database driver: %s", config.Database.Driver)
	}

	if config.Database.Driver == "mysql" {
		if config.Database.MySQL.Host == "" {
			return fmt.Errorf("mysql host is required")
		}
		if config.Database.MySQL.Database == "" {
			return fmt.Errorf("mysql database name is required")
		}
	}

	if config.Database.Driver == "sqlite" && config.Database.SQLite.Path == "" {
		return fmt.Errorf("sqlite path is required")
	}

	// 验证日志配置
	validLogLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	if !contains(validLogLevels, config.Log.Level) {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, config.Log.Format) {
		return fmt.Errorf("invalid log format: %s", config.Log.Format)
	}

	validLogOutputs := []string{"stdout", "stderr", "file"}
	if !contains(validLogOutputs, config.Log.Output) {
		return fmt.Errorf("invalid log output: %s", config.Log.Output)
	}

	// 如果日志输出到文件，验证文件路径
	if config.Log.Output == "file" && config.Log.FilePath == "" {
		return fmt.Errorf("log file path is required when output is file")
	}

	// 验证入库配置
	if strings.TrimSpace(config.Ingest.Directory) == "" {
		return fmt.Errorf("ingest.directory is required")
	}

	// 验证锁配置
	validLockBackends := []string{"memory", "redis"}
	if !contains(validLockBackends, config.Lock.Backend) {
		return fmt.Errorf("invalid lock backend: %s", config.Lock.Backend)
	}
	if config.Lock.Backend == "redis" && config.Database.Redis.Host == "" {
		return fmt.Errorf("redis host is required when lock backend is redis")
	}

	// 验证服务配置
	if config.Server.Enabled {
		if config.Server.Port <= 0 || config.Server.Port > 65535 {
			return fmt.Errorf("invalid server port: %d", config.Server.Port)
		}
		if config.Server.Mode != "debug" && config.Server.Mode != "release" && config.Server.Mode != "test" {
			return fmt.Errorf("invalid server mode: %s", config.Server.Mode)
		}
	}

	return nil
}

// contains 检查切片是否包含指定元素
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// GetConfig 获取全局配置
func GetConfig() *Config {
	return GlobalConfig
}

// MustLoadConfig 加载配置，如果失败则panic
func MustLoadConfig(configPath, env string) *Config {
	config, err := LoadConfig(configPath, env)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	return config
}

// GetEnv 获取当前环境
func GetEnv() string {
	if GlobalConfig != nil {
		return GlobalConfig.App.Environment
	}
	return getEnvFromEnvironment()
}
