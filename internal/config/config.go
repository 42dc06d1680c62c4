package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/fleetcollector/fleetcollector/pkg/logger"
)

// Config 应用配置结构
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Collector CollectorConfig `mapstructure:"collector"`
	SSH       SSHConfig       `mapstructure:"ssh"`
	Report    ReportConfig    `mapstructure:"report"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig API服务配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// CollectorConfig 采集器配置
type CollectorConfig struct {
	// Concurrency 同时采集的主机数上限
	Concurrency int `mapstructure:"concurrency"`
	// Checks 各检查项开关：键为检查名，未出现的检查默认启用
	Checks map[string]bool `mapstructure:"checks"`
	// Username/Password 全局登录凭据（可用 ${ENV_VAR} 引用环境变量）
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	// HostsFile 主机清单文件路径
	HostsFile string `mapstructure:"hosts_file"`
}

// SSHConfig SSH配置
type SSHConfig struct {
	Port int `mapstructure:"port"`
	// Mode 会话模式：terminal（交互式PTY）或 exec（逐命令新建会话）
	Mode           string        `mapstructure:"mode"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	// SettleDelay 发送命令后等待设备回显的静默间隔
	SettleDelay time.Duration `mapstructure:"settle_delay"`
	// ReadTimeout 单条命令回显的总等待上限
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
}

// ReportConfig 报表配置
type ReportConfig struct {
	// OutputDir 报表输出目录
	OutputDir string `mapstructure:"output_dir"`
	// Filename CSV文件名（不含目录）；空则按日期生成
	Filename string `mapstructure:"filename"`
	// Excel 采集完成后是否生成xlsx
	Excel bool `mapstructure:"excel"`
	// Columns 列元数据覆盖：键为列名
	Columns map[string]ColumnOverride `mapstructure:"columns"`
}

// ColumnOverride 单列的宽度与表头批注覆盖
type ColumnOverride struct {
	Width   float64 `mapstructure:"width"`
	Comment string  `mapstructure:"comment"`
}

// StorageConfig 原始回显归档配置
type StorageConfig struct {
	// Enabled 是否归档每台主机的命令回显
	Enabled bool `mapstructure:"enabled"`
	// Backend 存储后端：local | minio
	Backend  string      `mapstructure:"backend"`
	LocalDir string      `mapstructure:"local_dir"`
	Minio    MinioConfig `mapstructure:"minio"`
}

// MinioConfig 对象存储配置
type MinioConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Secure    bool   `mapstructure:"secure"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	SQLite SQLiteConfig `mapstructure:"sqlite"`
}

// SQLiteConfig SQLite配置
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

var globalConfig *Config

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	viper.SetConfigType("yaml")

	setDefaults()

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("../configs")
		viper.AddConfigPath("../../configs")
	}

	// 设置环境变量前缀
	viper.SetEnvPrefix("FLEET_COLLECTOR")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// 配置文件缺失时全部走默认值与环境变量
		var nf viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &nf) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config = replaceEnvVars(config)

	globalConfig = &config
	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	// 默认并发20台主机
	viper.SetDefault("collector.concurrency", 20)
	viper.SetDefault("collector.hosts_file", "./configs/hosts.txt")

	viper.SetDefault("ssh.port", 22)
	viper.SetDefault("ssh.mode", "terminal")
	viper.SetDefault("ssh.connect_timeout", 10*time.Second)
	// 发送命令后的静默等待，网络设备回显有延迟
	viper.SetDefault("ssh.settle_delay", 500*time.Millisecond)
	viper.SetDefault("ssh.read_timeout", 30*time.Second)

	viper.SetDefault("report.output_dir", "./data/reports")
	viper.SetDefault("report.excel", true)

	viper.SetDefault("storage.enabled", false)
	viper.SetDefault("storage.backend", "local")
	viper.SetDefault("storage.local_dir", "./data/raw")

	viper.SetDefault("database.sqlite.path", "./data/fleetcollector.db")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
	viper.SetDefault("log.output", "console")
	viper.SetDefault("log.file_path", "./logs/collector.log")
	viper.SetDefault("log.max_size", 100)
	viper.SetDefault("log.max_backups", 5)
	viper.SetDefault("log.max_age", 30)
}

// Get 获取全局配置
func Get() *Config {
	return globalConfig
}

// Watch 监听配置文件变化，目前只热加载日志级别
func Watch() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		level := viper.GetString("log.level")
		logger.SetLevel(level)
		logger.Infof("config reloaded from %s, log level now %s", e.Name, level)
	})
	viper.WatchConfig()
}

// replaceEnvVars 替换凭据中的 ${ENV_VAR} 引用
func replaceEnvVars(config Config) Config {
	config.Collector.Username = expandEnv(config.Collector.Username)
	config.Collector.Password = expandEnv(config.Collector.Password)
	config.Storage.Minio.AccessKey = expandEnv(config.Storage.Minio.AccessKey)
	config.Storage.Minio.SecretKey = expandEnv(config.Storage.Minio.SecretKey)
	return config
}

func expandEnv(v string) string {
	if strings.HasPrefix(v, "${") && strings.HasSuffix(v, "}") {
		envVar := strings.TrimSuffix(strings.TrimPrefix(v, "${"), "}")
		if value := os.Getenv(envVar); value != "" {
			return value
		}
	}
	return v
}

// CheckEnabled 判断某检查项是否启用，未在配置中出现时取检查项自身的默认值
func (c *CollectorConfig) CheckEnabled(name string, def bool) bool {
	if c.Checks == nil {
		return def
	}
	enabled, ok := c.Checks[name]
	if !ok {
		return def
	}
	return enabled
}

// GetServerAddr 获取服务器地址
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
