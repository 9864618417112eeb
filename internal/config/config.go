// Package config loads runtime settings from an optional TOML file, a .env
// file and the process environment, in that order of precedence (lowest first).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/random"
)

type Config struct {
	App      AppConfig      `toml:"app"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Redis    RedisConfig    `toml:"redis"`
	Minio    MinioConfig    `toml:"minio"`
	Jobs     JobsConfig     `toml:"jobs"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

type DatabaseConfig struct {
	URL string `toml:"url"`
}

type AuthConfig struct {
	JWTSecret       string `toml:"jwt_secret"`
	TokenTTLMinutes int    `toml:"token_ttl_minutes"`
	RefreshTTLHours int    `toml:"refresh_ttl_hours"`
	JWKSURL         string `toml:"jwks_url"`
	LoginRateLimit  int    `toml:"login_rate_limit"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type MinioConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
	Bucket    string `toml:"bucket"`
}

type JobsConfig struct {
	CartTTLDays       int `toml:"cart_ttl_days"`
	LowStockThreshold int `toml:"low_stock_threshold"`
}

func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLMinutes) * time.Minute
}

func (a AuthConfig) RefreshTTL() time.Duration {
	return time.Duration(a.RefreshTTLHours) * time.Hour
}

func (j JobsConfig) CartTTL() time.Duration {
	return time.Duration(j.CartTTLDays) * 24 * time.Hour
}

func (a AppConfig) Addr() string {
	return fmt.Sprintf(":%d", a.Port)
}

func Default() *Config {
	return &Config{
		App: AppConfig{
			Env:      "development",
			Port:     8080,
			LogLevel: "info",
		},
		Auth: AuthConfig{
			TokenTTLMinutes: 30,
			RefreshTTLHours: 24 * 7,
			LoginRateLimit:  10,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Minio: MinioConfig{
			Endpoint:  "localhost:9000",
			AccessKey: "minioadmin",
			SecretKey: "minioadmin",
			Bucket:    "cityshops-images",
		},
		Jobs: JobsConfig{
			CartTTLDays:       30,
			LowStockThreshold: 5,
		},
	}
}

// Load reads .env (if present), then CONFIG_FILE (if set), then applies
// environment overrides.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Auth.JWTSecret == "" && cfg.Auth.JWKSURL == "" {
		cfg.Auth.JWTSecret = random.String(32)
		slog.Warn("JWT_SECRET not set, using a generated secret; tokens will not survive restarts")
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.App.Env = getenv("APP_ENV", c.App.Env)
	c.App.Port = atoienv("PORT", c.App.Port)
	c.App.LogLevel = getenv("LOG_LEVEL", c.App.LogLevel)

	c.Database.URL = getenv("DATABASE_URL", c.Database.URL)

	c.Auth.JWTSecret = getenv("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.TokenTTLMinutes = atoienv("JWT_TTL_MINUTES", c.Auth.TokenTTLMinutes)
	c.Auth.RefreshTTLHours = atoienv("REFRESH_TTL_HOURS", c.Auth.RefreshTTLHours)
	c.Auth.JWKSURL = getenv("JWKS_URL", c.Auth.JWKSURL)
	c.Auth.LoginRateLimit = atoienv("LOGIN_RATE_LIMIT", c.Auth.LoginRateLimit)

	c.Redis.Addr = getenv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getenv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = atoienv("REDIS_DB", c.Redis.DB)

	c.Minio.Endpoint = getenv("MINIO_ENDPOINT", c.Minio.Endpoint)
	c.Minio.AccessKey = getenv("MINIO_ACCESS_KEY", c.Minio.AccessKey)
	c.Minio.SecretKey = getenv("MINIO_SECRET_KEY", c.Minio.SecretKey)
	c.Minio.UseSSL = boolenv("MINIO_USE_SSL", c.Minio.UseSSL)
	c.Minio.Bucket = getenv("MINIO_BUCKET", c.Minio.Bucket)

	c.Jobs.CartTTLDays = atoienv("CART_TTL_DAYS", c.Jobs.CartTTLDays)
	c.Jobs.LowStockThreshold = atoienv("LOW_STOCK_THRESHOLD", c.Jobs.LowStockThreshold)
}

func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.App.Port)
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		return errors.New("JWT_TTL_MINUTES must be positive")
	}
	if c.Jobs.CartTTLDays <= 0 {
		return errors.New("CART_TTL_DAYS must be positive")
	}
	if c.Jobs.LowStockThreshold < 0 {
		return errors.New("LOW_STOCK_THRESHOLD cannot be negative")
	}
	return nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolenv(key string, def bool) bool {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
