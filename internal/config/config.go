package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// TermStartLayout is the date format of TERM_START.
const TermStartLayout = "2006-01-02"

type Config struct {
	Environment string         `mapstructure:"env"`
	Log         LogConfig      `mapstructure:"log"`
	Store       StoreConfig    `mapstructure:"store"`
	Database    DatabaseConfig `mapstructure:"db"`
	HTTP        HTTPConfig     `mapstructure:"http"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Conflict    ConflictConfig `mapstructure:"conflict"`
	Telegram    TelegramConfig `mapstructure:"telegram"`
	TermStart   string         `mapstructure:"term_start"`
	Timezone    string         `mapstructure:"timezone"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	// SeedFile optionally fills the memory backend's directory at startup.
	SeedFile string `mapstructure:"seed_file"`
}

type DatabaseConfig struct {
	DSN            string        `mapstructure:"dsn"`
	ConnectRetries uint64        `mapstructure:"connect_retries"`
	ConnectBackoff time.Duration `mapstructure:"connect_backoff"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RedisConfig is optional; an empty Addr disables the shared cache.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ConflictConfig struct {
	Detector  string        `mapstructure:"detector"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
	AuditCron string        `mapstructure:"audit_cron"`
}

// TelegramConfig is optional; an empty Token disables the bot.
type TelegramConfig struct {
	Token       string `mapstructure:"token"`
	AdminChatID int64  `mapstructure:"admin_chat_id"`
}

// Load reads .env, the optional config file at path and the environment.
// Environment variables win over the file, the file over defaults. Nested
// keys map to upper-case names with dots replaced by underscores, so
// "db.dsn" is DB_DSN.
func Load(path string) (*Config, error) {
	// A missing .env file is fine; the environment may already be set.
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	cfg.Conflict.Detector = strings.ToLower(strings.TrimSpace(cfg.Conflict.Detector))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("log.level", "info")

	v.SetDefault("store.backend", BackendPostgres)
	v.SetDefault("store.seed_file", "")

	v.SetDefault("db.dsn", "")
	v.SetDefault("db.connect_retries", 5)
	v.SetDefault("db.connect_backoff", "500ms")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", "10s")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("conflict.detector", "sweep")
	v.SetDefault("conflict.cache_ttl", "5m")
	v.SetDefault("conflict.audit_cron", "@every 1h")

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.admin_chat_id", 0)

	v.SetDefault("term_start", "")
	v.SetDefault("timezone", "Local")
}

// Validate checks required fields and value formats.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("DB_DSN is required but not set")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendPostgres, BackendMemory, c.Store.Backend)
	}

	switch c.Conflict.Detector {
	case "sweep", "pairwise":
	default:
		return fmt.Errorf("CONFLICT_DETECTOR must be \"sweep\" or \"pairwise\", got %q", c.Conflict.Detector)
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.TermStartDate(); err != nil {
		return err
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Location returns the time zone used for calendar exports.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// TermStartDate returns TERM_START in the configured zone, or the zero time if unset.
func (c *Config) TermStartDate() (time.Time, error) {
	if c.TermStart == "" {
		return time.Time{}, nil
	}
	loc, err := c.Location()
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation(TermStartLayout, c.TermStart, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("TERM_START must be YYYY-MM-DD: %w", err)
	}
	return t, nil
}
