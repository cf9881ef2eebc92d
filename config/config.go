package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Console  ConsoleConfig  `yaml:"console"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port                   int     `yaml:"port"`
	RateLimitPerSec        float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst         int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds        int     `yaml:"cache_ttl_seconds"`
	ShutdownTimeoutSeconds int     `yaml:"shutdown_timeout_seconds"`

	CacheTTL        time.Duration `yaml:"-"`
	ShutdownTimeout time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // postgres | sqlite
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	AutoMigrate            bool   `yaml:"auto_migrate"`
}

// AuthConfig holds the token signing configuration.
type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret"`
	Issuer          string        `yaml:"issuer"`
	TokenTTLMinutes int           `yaml:"token_ttl_minutes"`
	TokenTTL        time.Duration `yaml:"-"`
}

// ConsoleConfig configures the terminal console and its gateway client.
type ConsoleConfig struct {
	APIURL         string `yaml:"api_url"`
	HTTPProxy      string `yaml:"http_proxy"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	DebounceMillis int    `yaml:"debounce_ms"`
	RowsPerPage    int    `yaml:"rows_per_page"`
	FlashSeconds   int    `yaml:"flash_seconds"`
	Theme          string `yaml:"theme"` // light | dark

	Timeout  time.Duration `yaml:"-"`
	Debounce time.Duration `yaml:"-"`
	Flash    time.Duration `yaml:"-"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // json | console
	File   string `yaml:"file"`   // console only; empty discards
}

// Load reads the configuration from the given path. A missing file is not an
// error: defaults and ENERGY_* environment variables are applied either way.
func Load(path string) (*Config, error) {
	// .env next to the working directory is optional
	_ = godotenv.Load()

	var cfg Config
	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				*dst = n
			}
		}
	}

	num("ENERGY_PORT", &cfg.Server.Port)
	str("ENERGY_DB_DRIVER", &cfg.Database.Driver)
	str("ENERGY_DB_DSN", &cfg.Database.DSN)
	if v, ok := os.LookupEnv("ENERGY_AUTO_MIGRATE"); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.Database.AutoMigrate = b
		}
	}
	str("ENERGY_JWT_SECRET", &cfg.Auth.JWTSecret)
	str("ENERGY_API_URL", &cfg.Console.APIURL)
	str("ENERGY_LOG_LEVEL", &cfg.Log.Level)
	str("ENERGY_LOG_FORMAT", &cfg.Log.Format)
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 60
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	if cfg.Server.ShutdownTimeoutSeconds <= 0 {
		cfg.Server.ShutdownTimeoutSeconds = 5
	}
	cfg.Server.ShutdownTimeout = time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeMinutes <= 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 30
	}

	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = "energyd"
	}
	if cfg.Auth.TokenTTLMinutes <= 0 {
		cfg.Auth.TokenTTLMinutes = 12 * 60
	}
	cfg.Auth.TokenTTL = time.Duration(cfg.Auth.TokenTTLMinutes) * time.Minute

	if cfg.Console.APIURL == "" {
		cfg.Console.APIURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	if cfg.Console.TimeoutSeconds <= 0 {
		cfg.Console.TimeoutSeconds = 30
	}
	cfg.Console.Timeout = time.Duration(cfg.Console.TimeoutSeconds) * time.Second
	if cfg.Console.DebounceMillis <= 0 {
		cfg.Console.DebounceMillis = 300
	}
	cfg.Console.Debounce = time.Duration(cfg.Console.DebounceMillis) * time.Millisecond
	if cfg.Console.RowsPerPage <= 0 {
		cfg.Console.RowsPerPage = 15
	}
	if cfg.Console.FlashSeconds <= 0 {
		cfg.Console.FlashSeconds = 3
	}
	cfg.Console.Flash = time.Duration(cfg.Console.FlashSeconds) * time.Second
	if cfg.Console.Theme != "dark" {
		cfg.Console.Theme = "light"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}
