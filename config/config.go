// Package config assembles runtime settings: built-in defaults, then an
// optional YAML file (CONFIG_FILE), then environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port      string `yaml:"port"`
	GinMode   string `yaml:"gin_mode"`
	WebOrigin string `yaml:"web_origin"`

	DB    DBConfig    `yaml:"database"`
	Redis RedisConfig `yaml:"redis"`
	Log   LogConfig   `yaml:"log"`
	AMQP  AMQPConfig  `yaml:"amqp"`

	ReportCacheTTL time.Duration `yaml:"report_cache_ttl"`
	IdempotencyTTL time.Duration `yaml:"idempotency_ttl"`
}

type DBConfig struct {
	Driver     string `yaml:"driver"`
	URL        string `yaml:"url"`
	Host       string `yaml:"host"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Name       string `yaml:"name"`
	Port       string `yaml:"port"`
	SQLitePath string `yaml:"sqlite_path"`
}

// DSN returns what the configured driver expects: a sqlite file path, the
// DATABASE_URL, or a keyword DSN built from the DB_* parts.
func (c DBConfig) DSN() string {
	if c.Driver == "sqlite" {
		return c.SQLitePath
	}
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.Host, c.User, c.Password, c.Name, c.Port,
	)
}

// RedisConfig with an empty Addr runs the service without redis.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AMQPConfig with an empty URL disables event publishing.
type AMQPConfig struct {
	URL   string `yaml:"url"`
	Queue string `yaml:"queue"`
}

func Defaults() Config {
	return Config{
		Port:      "3001",
		WebOrigin: "http://localhost:5173",
		DB: DBConfig{
			Driver:     "postgres",
			Port:       "5432",
			SQLitePath: "tool-ledger.db",
		},
		Log:            LogConfig{Level: "info", Format: "text"},
		AMQP:           AMQPConfig{Queue: "tool-ledger.loans"},
		ReportCacheTTL: 30 * time.Second,
		IdempotencyTTL: 10 * time.Minute,
	}
}

// LoadEnv reads .env files into the process environment. Missing files are
// fine; variables already set win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func Load() (Config, error) {
	cfg := Defaults()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	bad := applyEnv(&cfg)
	bad = append(bad, cfg.validate()...)
	if len(bad) > 0 {
		return Config{}, fmt.Errorf("invalid configuration values: %s", strings.Join(dedupe(bad), ", "))
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) []string {
	var bad []string
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	dur := func(key string, dst *time.Duration) {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			bad = append(bad, key)
			return
		}
		*dst = d
	}

	str("PORT", &cfg.Port)
	str("GIN_MODE", &cfg.GinMode)
	str("WEB_ORIGIN", &cfg.WebOrigin)

	str("DB_DRIVER", &cfg.DB.Driver)
	str("DATABASE_URL", &cfg.DB.URL)
	str("DB_HOST", &cfg.DB.Host)
	str("DB_USER", &cfg.DB.User)
	str("DB_PASSWORD", &cfg.DB.Password)
	str("DB_NAME", &cfg.DB.Name)
	str("DB_PORT", &cfg.DB.Port)
	str("SQLITE_PATH", &cfg.DB.SQLitePath)

	str("REDIS_ADDR", &cfg.Redis.Addr)
	str("REDIS_PASSWORD", &cfg.Redis.Password)
	if v := strings.TrimSpace(os.Getenv("REDIS_DB")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			bad = append(bad, "REDIS_DB")
		} else {
			cfg.Redis.DB = n
		}
	}

	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("AMQP_URL", &cfg.AMQP.URL)
	str("EVENTS_QUEUE", &cfg.AMQP.Queue)

	dur("REPORT_CACHE_TTL", &cfg.ReportCacheTTL)
	dur("IDEMPOTENCY_TTL", &cfg.IdempotencyTTL)
	return bad
}

func (c *Config) validate() []string {
	var bad []string

	c.DB.Driver = strings.ToLower(c.DB.Driver)
	switch c.DB.Driver {
	case "postgres":
		if c.DB.URL == "" && c.DB.Host == "" {
			bad = append(bad, "DATABASE_URL")
		}
	case "sqlite":
		if c.DB.SQLitePath == "" {
			bad = append(bad, "SQLITE_PATH")
		}
	default:
		bad = append(bad, "DB_DRIVER")
	}

	if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		bad = append(bad, "PORT")
	}
	if c.Redis.DB < 0 {
		bad = append(bad, "REDIS_DB")
	}

	c.Log.Level = strings.ToLower(c.Log.Level)
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		bad = append(bad, "LOG_LEVEL")
	}
	c.Log.Format = strings.ToLower(c.Log.Format)
	if c.Log.Format != "text" && c.Log.Format != "json" {
		bad = append(bad, "LOG_FORMAT")
	}

	switch c.GinMode {
	case "", "debug", "release", "test":
	default:
		bad = append(bad, "GIN_MODE")
	}
	if c.ReportCacheTTL < 0 {
		bad = append(bad, "REPORT_CACHE_TTL")
	}
	if c.IdempotencyTTL < 0 {
		bad = append(bad, "IDEMPOTENCY_TTL")
	}
	return bad
}

func dedupe(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := keys[:0]
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
