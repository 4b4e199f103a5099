package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Tracing   TracingConfig `mapstructure:"tracing"`
	Redis     RedisConfig
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	LostArk   LostArkConfig   `mapstructure:"lostark"`
	Log       LogConfig       `mapstructure:"log"`

	// 命令行参数设置的运行时标志
	MigrateOnly bool `mapstructure:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Driver    string
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
	// Driver 为 "sqlite" 时使用的数据库文件
	Path string
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// LedgerConfig 每周重置时间和金币副本组上限
type LedgerConfig struct {
	Timezone       string `mapstructure:"timezone"`
	ResetWeekday   int    `mapstructure:"reset_weekday"`
	ResetHour      int    `mapstructure:"reset_hour"`
	GoldGroupCap   int    `mapstructure:"gold_group_cap"`
	RetentionWeeks int    `mapstructure:"retention_weeks"`
}

type LostArkConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout_seconds"`
}

type LogConfig struct {
	Path string `mapstructure:"path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("database.path", "raid_checker.db")
	v.SetDefault("jwt.expire_hours", 72)
	v.SetDefault("rate_limit.max_requests", 6000)
	v.SetDefault("rate_limit.window_minutes", 1)
	v.SetDefault("ledger.timezone", "Asia/Seoul")
	v.SetDefault("ledger.reset_weekday", int(time.Wednesday))
	v.SetDefault("ledger.reset_hour", 6)
	v.SetDefault("ledger.gold_group_cap", 3)
	v.SetDefault("ledger.retention_weeks", 4)
	v.SetDefault("lostark.base_url", "https://developer-lostark.game.onstove.com")
	v.SetDefault("lostark.timeout_seconds", 10)
	v.SetDefault("log.path", "logs/app.log")
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("RAID_CHECKER")
	v.AutomaticEnv()
	setDefaults(v)

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.mode", "SERVER_MODE")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	// Lost Ark open API
	v.BindEnv("lostark.base_url", "LOSTARK_BASE_URL")
	v.BindEnv("lostark.api_key", "LOSTARK_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour
	cfg.LostArk.Timeout = cfg.LostArk.Timeout * time.Second

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.Database.Driver == "sqlite" {
		if dir := filepath.Dir(cfg.Database.Path); dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				os.MkdirAll(dir, 0755)
			}
		}
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	// 生产环境校验 JWT Secret 强度
	if c.Server.Mode == "release" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(c.JWT.Secret))
	}

	if _, err := time.LoadLocation(c.Ledger.Timezone); err != nil {
		return fmt.Errorf("invalid ledger timezone %q: %w", c.Ledger.Timezone, err)
	}
	if c.Ledger.ResetWeekday < 0 || c.Ledger.ResetWeekday > 6 {
		return fmt.Errorf("ledger reset_weekday must be 0-6, got %d", c.Ledger.ResetWeekday)
	}
	if c.Ledger.ResetHour < 0 || c.Ledger.ResetHour > 23 {
		return fmt.Errorf("ledger reset_hour must be 0-23, got %d", c.Ledger.ResetHour)
	}
	if c.Ledger.GoldGroupCap < 1 {
		return fmt.Errorf("ledger gold_group_cap must be positive, got %d", c.Ledger.GoldGroupCap)
	}

	switch c.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	return nil
}
