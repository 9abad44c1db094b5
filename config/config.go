package config

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// 环境变量前缀，覆盖配置文件中的同名项
const envPrefix = "COLUMN_FORM_"

// DatabaseConfig 表示数据库连接配置
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Charset  string `yaml:"charset"`
}

// Addr 返回 host:port
func (c DatabaseConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// CacheConfig 表示列元数据缓存配置，RedisAddr 为空时不启用
type CacheConfig struct {
	RedisAddr  string `yaml:"redis_addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// Enabled 是否配置了缓存
func (c CacheConfig) Enabled() bool {
	return c.RedisAddr != ""
}

// LoggingConfig 表示日志配置
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Config 表示完整的应用配置
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoadConfig 从 YAML 文件加载配置，再用 .env 和环境变量覆盖
func LoadConfig(filePath string, envFile string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{
		Logging: LoggingConfig{
			Level: "INFO",
			File:  "column-form.log",
		},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if envFile != "" {
		// .env 不存在时仅依赖已有的环境变量
		_ = godotenv.Load(envFile)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv 使用 COLUMN_FORM_* 环境变量覆盖配置
func (c *Config) ApplyEnv() error {
	overrideString(&c.Database.Host, "DB_HOST")
	overrideString(&c.Database.Username, "DB_USER")
	overrideString(&c.Database.Password, "DB_PASSWORD")
	overrideString(&c.Database.Database, "DB_NAME")
	overrideString(&c.Database.Charset, "DB_CHARSET")
	overrideString(&c.Cache.RedisAddr, "REDIS_ADDR")
	overrideString(&c.Cache.Password, "REDIS_PASSWORD")
	overrideString(&c.Logging.Level, "LOG_LEVEL")
	overrideString(&c.Logging.File, "LOG_FILE")

	if err := overrideInt(&c.Database.Port, "DB_PORT"); err != nil {
		return err
	}
	if err := overrideInt(&c.Cache.DB, "REDIS_DB"); err != nil {
		return err
	}
	return overrideInt(&c.Cache.TTLSeconds, "CACHE_TTL_SECONDS")
}

func overrideString(dst *string, key string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
		*dst = v
	}
}

func overrideInt(dst *int, key string) error {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", envPrefix, key, err)
	}
	*dst = n
	return nil
}

// Validate 验证配置的合法性，并填充默认值
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database config is incomplete")
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.Charset == "" {
		c.Database.Charset = "utf8mb4"
	}
	if c.Cache.Enabled() && c.Cache.TTLSeconds <= 0 {
		c.Cache.TTLSeconds = 60
	}
	return nil
}
