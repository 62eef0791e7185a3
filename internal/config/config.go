package config

import (
	"fmt"
	"path/filepath"
	"time"
)

// Config 应用配置结构体 [这里的字段和配置文件中一级字段保持一致，否则会没有值]
type Config struct {
	App      AppConfig      `yaml:"app" mapstructure:"app"`           // 应用配置
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`     // 守护进程健康检查服务配置
	Database DatabaseConfig `yaml:"database" mapstructure:"database"` // 数据库配置
	Log      LogConfig      `yaml:"log" mapstructure:"log"`           // 日志配置
	Ingest   IngestConfig   `yaml:"ingest" mapstructure:"ingest"`     // 拓扑入库配置
	DNS      DNSConfig      `yaml:"dns" mapstructure:"dns"`           // 反向DNS配置
	Lock     LockConfig     `yaml:"lock" mapstructure:"lock"`         // 区域锁配置
}

// AppConfig 应用配置
type AppConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`               // 应用名称
	Environment string `yaml:"environment" mapstructure:"environment"` // 运行环境: development, test, production
	Debug       bool   `yaml:"debug" mapstructure:"debug"`             // 是否开启调试
}

// ServerConfig 守护进程HTTP服务配置 (仅提供 /healthz 与 /status)
type ServerConfig struct {
	Enabled      bool          `yaml:"enabled" mapstructure:"enabled"`             // 是否启用
	Host         string        `yaml:"host" mapstructure:"host"`                   // 监听地址
	Port         int           `yaml:"port" mapstructure:"port"`                   // 监听端口
	Mode         string        `yaml:"mode" mapstructure:"mode"`                   // 运行模式: debug, release, test
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`   // 读取超时时间
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"` // 写入超时时间
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string       `yaml:"driver" mapstructure:"driver"` // 数据库驱动: mysql, sqlite
	MySQL  MySQLConfig  `yaml:"mysql" mapstructure:"mysql"`   // MySQL配置
	SQLite SQLiteConfig `yaml:"sqlite" mapstructure:"sqlite"` // SQLite配置
	Redis  RedisConfig  `yaml:"redis" mapstructure:"redis"`   // Redis配置 (lock.backend=redis 时使用)
}

// MySQLConfig MySQL数据库配置
type MySQLConfig struct {
	Host            string        `yaml:"host" mapstructure:"host"`                             // 数据库主机
	Port            int           `yaml:"port" mapstructure:"port"`                             // 数据库端口
	Username        string        `yaml:"username" mapstructure:"username"`                     // 用户名
	Password        string        `yaml:"password" mapstructure:"password"`                     // 密码
	Database        string        `yaml:"database" mapstructure:"database"`                     // 数据库名
	Charset         string        `yaml:"charset" mapstructure:"charset"`                       // 字符集
	ParseTime       bool          `yaml:"parse_time" mapstructure:"parse_time"`                 // 是否解析时间
	Loc             string        `yaml:"loc" mapstructure:"loc"`                               // 时区
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`         // 最大空闲连接数
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`         // 最大打开连接数
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`   // 连接最大生存时间
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" mapstructure:"conn_max_idle_time"` // 连接最大空闲时间
	LogLevel        string        `yaml:"log_level" mapstructure:"log_level"`                   // 日志级别
}

// SQLiteConfig SQLite数据库配置 (单机部署与测试)
type SQLiteConfig struct {
	Path         string `yaml:"path" mapstructure:"path"`                     // 数据库文件路径
	BusyTimeout  int    `yaml:"busy_timeout" mapstructure:"busy_timeout"`     // busy_timeout(毫秒)
	MaxOpenConns int    `yaml:"max_open_conns" mapstructure:"max_open_conns"` // 最大打开连接数
	LogLevel     string `yaml:"log_level" mapstructure:"log_level"`           // 日志级别
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`                     // Redis主机
	Port         int           `yaml:"port" mapstructure:"port"`                     // Redis端口
	Password     string        `yaml:"password" mapstructure:"password"`             // Redis密码
	Database     int           `yaml:"database" mapstructure:"database"`             // Redis数据库索引
	PoolSize     int           `yaml:"pool_size" mapstructure:"pool_size"`           // 连接池大小
	MinIdleConns int           `yaml:"min_idle_conns" mapstructure:"min_idle_conns"` // 最小空闲连接数
	DialTimeout  time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`     // 连接超时
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`     // 读取超时
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`   // 写入超时
	PoolTimeout  time.Duration `yaml:"pool_timeout" mapstructure:"pool_timeout"`     // 连接池超时
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`     // 空闲超时
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`             // 日志级别
	Format     string `yaml:"format" mapstructure:"format"`           // 日志格式: json, text
	Output     string `yaml:"output" mapstructure:"output"`           // 输出方式: stdout, stderr, file
	FilePath   string `yaml:"file_path" mapstructure:"file_path"`     // 日志文件路径
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`       // 单个日志文件最大大小(MB)
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"` // 保留的日志文件数量
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`         // 日志文件保留天数
	Compress   bool   `yaml:"compress" mapstructure:"compress"`       // 是否压缩日志文件
	Caller     bool   `yaml:"caller" mapstructure:"caller"`           // 是否显示调用者信息
}

// IngestConfig 拓扑快照入库配置
type IngestConfig struct {
	Directory         string        `yaml:"directory" mapstructure:"directory"`                   // 轮询器写入YAML快照的暂存目录
	SkipFile          string        `yaml:"skip_file" mapstructure:"skip_file"`                   // 跳过/停止标记文件 (相对于暂存目录或绝对路径)
	AgentSubprocesses int           `yaml:"agent_subprocesses" mapstructure:"agent_subprocesses"` // 并发Worker数量
	Multiprocessing   bool          `yaml:"multiprocessing" mapstructure:"multiprocessing"`       // 是否并发处理 (false 时串行)
	Purge             bool          `yaml:"purge" mapstructure:"purge"`                           // 入库后是否清理旧事件
	DeleteFiles       bool          `yaml:"delete_files" mapstructure:"delete_files"`             // 处理成功后是否删除快照文件
	DefaultZone       string        `yaml:"default_zone" mapstructure:"default_zone"`             // 快照未声明区域时使用的区域名
	BatchSize         int           `yaml:"batch_size" mapstructure:"batch_size"`                 // 批量插入大小
	Retries           int           `yaml:"retries" mapstructure:"retries"`                       // 瞬时错误重试次数
	Schedule          string        `yaml:"schedule" mapstructure:"schedule"`                     // 守护进程调度表达式 (cron)
	Watch             bool          `yaml:"watch" mapstructure:"watch"`                           // 是否监听暂存目录新文件
	Debounce          time.Duration `yaml:"debounce" mapstructure:"debounce"`                     // 目录监听防抖时间
}

// DNSConfig 反向DNS配置
type DNSConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"` // 是否解析IP主机名
	Servers []string      `yaml:"servers" mapstructure:"servers"` // DNS服务器 (为空时读取 /etc/resolv.conf)
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"` // 单次查询超时
}

// LockConfig 区域共享表锁配置
type LockConfig struct {
	Backend       string        `yaml:"backend" mapstructure:"backend"`               // 锁实现: memory, redis
	Prefix        string        `yaml:"prefix" mapstructure:"prefix"`                 // 锁键前缀
	TTL           time.Duration `yaml:"ttl" mapstructure:"ttl"`                       // 锁过期时间
	RetryInterval time.Duration `yaml:"retry_interval" mapstructure:"retry_interval"` // 获取锁重试间隔
}

// GetAddress 获取服务器地址
func (s *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsDevelopment 判断是否为开发环境
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction 判断是否为生产环境
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// IsTest 判断是否为测试环境
func (a *AppConfig) IsTest() bool {
	return a.Environment == "test"
}

// GetMySQLDSN 获取MySQL连接字符串
func (m *MySQLConfig) GetMySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		m.Username, m.Password, m.Host, m.Port, m.Database, m.Charset, m.ParseTime, m.Loc)
}

// GetRedisAddress 获取Redis地址
func (r *RedisConfig) GetRedisAddress() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// SkipFilePath 返回跳过标记文件的完整路径
func (i *IngestConfig) SkipFilePath() string {
	if i.SkipFile == "" {
		return ""
	}
	if filepath.IsAbs(i.SkipFile) {
		return i.SkipFile
	}
	return filepath.Join(i.Directory, i.SkipFile)
}
