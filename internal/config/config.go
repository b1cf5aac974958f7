package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"tinylink/pkg/logging"
)

// EnvPrefix prefixes environment overrides, e.g. TINYLINK_DB_DSN.
const EnvPrefix = "TINYLINK"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	DB        DBConfig        `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       logging.Options `mapstructure:"log"`
	I18n      I18nConfig      `mapstructure:"i18n"`
	Stats     StatsConfig     `mapstructure:"stats"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	Mode            string        `mapstructure:"mode"` // debug, release, test
	CorsOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DBConfig struct {
	Driver       string `mapstructure:"driver"` // mysql, postgres, sqlite
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// RedisConfig is optional; an empty Addr disables daily click counters.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type I18nConfig struct {
	DefaultLang string `mapstructure:"default_lang"`
}

type StatsConfig struct {
	FlushCron     string `mapstructure:"flush_cron"`
	RetentionDays int    `mapstructure:"retention_days"`
}

type DashboardConfig struct {
	APIBaseURL string        `mapstructure:"api_base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "tinylink.db")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "logs/tinylink.log")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 7)
	v.SetDefault("log.compress", false)

	v.SetDefault("i18n.default_lang", "en")

	v.SetDefault("stats.flush_cron", "*/10 * * * *")
	v.SetDefault("stats.retention_days", 3)

	v.SetDefault("dashboard.api_base_url", "")
	v.SetDefault("dashboard.timeout", 5*time.Second)
}

// Load reads config.yaml (from path, or the working directory when path is empty),
// then applies TINYLINK_* environment overrides. A .env file is loaded first if present.
// A missing config file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the values that would otherwise fail late at startup.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr cannot be empty")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid server.mode: %s (must be one of: debug, release, test)", c.Server.Mode)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("server.shutdown_timeout must be positive")
	}

	switch c.DB.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("invalid db.driver: %s (must be one of: mysql, postgres, sqlite)", c.DB.Driver)
	}
	if c.DB.DSN == "" {
		return errors.New("db.dsn cannot be empty")
	}
	if c.DB.MaxIdleConns > c.DB.MaxOpenConns {
		return fmt.Errorf("db.max_idle_conns (%d) cannot be greater than db.max_open_conns (%d)", c.DB.MaxIdleConns, c.DB.MaxOpenConns)
	}

	if c.Stats.RetentionDays < 2 {
		return errors.New("stats.retention_days must be at least 2")
	}
	if c.Dashboard.Timeout <= 0 {
		return errors.New("dashboard.timeout must be positive")
	}
	return nil
}

// DashboardBaseURL returns the API base URL the dashboard calls, defaulting to this
// server's own listen address on loopback.
func (c *Config) DashboardBaseURL() string {
	if c.Dashboard.APIBaseURL != "" {
		return strings.TrimRight(c.Dashboard.APIBaseURL, "/")
	}
	addr := c.Server.Addr
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr
}
