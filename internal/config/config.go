// AngelaMos | 2026
// config.go

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	JWT       JWTConfig       `koanf:"jwt"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Log       LogConfig       `koanf:"log"`
	Otel      OtelConfig      `koanf:"otel"`
	Models    ModelsConfig    `koanf:"models"`
	Platform  PlatformConfig  `koanf:"platform"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

type JWTConfig struct {
	PrivateKeyPath    string        `koanf:"private_key_path"`
	PublicKeyPath     string        `koanf:"public_key_path"`
	AccessTokenExpire time.Duration `koanf:"access_token_expire"`
	Issuer            string        `koanf:"issuer"`
	Audience          string        `koanf:"audience"`
}

type RateLimitConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Burst    int           `koanf:"burst"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// ModelsConfig names the tables backing the default User and Workspace
// implementations.
type ModelsConfig struct {
	UserTable      string `koanf:"user_table"`
	WorkspaceTable string `koanf:"workspace_table"`
}

type PlatformConfig struct {
	APIKey           string   `koanf:"api_key"`
	SuperAdminEmails []string `koanf:"super_admin_emails"`
}

// Load builds the configuration from defaults, an optional YAML file, an
// optional .env file and finally the process environment. Later sources win.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := k.Load(env.Provider("", ".", envKeyReplacer), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":        "Steago API",
		"app.version":     "1.0.0",
		"app.environment": "development",

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",

		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",

		"redis.pool_size":      10,
		"redis.min_idle_conns": 5,

		// Tokens are long-lived: self-hosted deployments swap in their own
		// auth in front of this API.
		"jwt.access_token_expire": "87600h",
		"jwt.issuer":              "steago",
		"jwt.audience":            "steago-api",
		"jwt.private_key_path":    "keys/private.pem",
		"jwt.public_key_path":     "keys/public.pem",

		"rate_limit.enabled":  true,
		"rate_limit.requests": 100,
		"rate_limit.window":   "1m",
		"rate_limit.burst":    20,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "steago-api",

		"models.user_table":      "core_user",
		"models.workspace_table": "core_workspace",

		"platform.super_admin_emails": []string{},
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"DATABASE_URL":                      "database.url",
	"REDIS_URL":                         "redis.url",
	"ENVIRONMENT":                       "app.environment",
	"HOST":                              "server.host",
	"PORT":                              "server.port",
	"LOG_LEVEL":                         "log.level",
	"LOG_FORMAT":                        "log.format",
	"JWT_PRIVATE_KEY_PATH":              "jwt.private_key_path",
	"JWT_PUBLIC_KEY_PATH":               "jwt.public_key_path",
	"JWT_ACCESS_TOKEN_EXPIRE":           "jwt.access_token_expire",
	"JWT_ISSUER":                        "jwt.issuer",
	"JWT_AUDIENCE":                      "jwt.audience",
	"RATE_LIMIT_ENABLED":                "rate_limit.enabled",
	"RATE_LIMIT_REQUESTS":               "rate_limit.requests",
	"RATE_LIMIT_WINDOW":                 "rate_limit.window",
	"RATE_LIMIT_BURST":                  "rate_limit.burst",
	"OTEL_ENDPOINT":                     "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT":       "otel.endpoint",
	"OTEL_SERVICE_NAME":                 "otel.service_name",
	"OTEL_ENABLED":                      "otel.enabled",
	"OTEL_INSECURE":                     "otel.insecure",
	"OTEL_SAMPLE_RATE":                  "otel.sample_rate",
	"STEAGO_CORE_USER_MODEL_TABLE":      "models.user_table",
	"STEAGO_CORE_WORKSPACE_MODEL_TABLE": "models.workspace_table",
	"STEAGO_PLATFORM_API_KEY":           "platform.api_key",
}

func envKeyReplacer(s string) string {
	if mapped, ok := envKeyMap[s]; ok {
		return mapped
	}
	return ""
}

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

func validate(c *Config) error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.JWT.PrivateKeyPath == "" {
		return fmt.Errorf("JWT_PRIVATE_KEY_PATH is required")
	}

	if c.JWT.PublicKeyPath == "" {
		return fmt.Errorf("JWT_PUBLIC_KEY_PATH is required")
	}

	if c.JWT.AccessTokenExpire <= 0 {
		return fmt.Errorf("jwt.access_token_expire must be positive")
	}

	if !tableNamePattern.MatchString(c.Models.UserTable) {
		return fmt.Errorf("models.user_table %q is not a valid table name", c.Models.UserTable)
	}

	if !tableNamePattern.MatchString(c.Models.WorkspaceTable) {
		return fmt.Errorf(
			"models.workspace_table %q is not a valid table name",
			c.Models.WorkspaceTable,
		)
	}

	if c.App.Environment == "production" {
		if c.Otel.Enabled && c.Otel.Insecure {
			return fmt.Errorf("OTEL_INSECURE must be false in production")
		}
		if c.Platform.APIKey == "" {
			return fmt.Errorf("STEAGO_PLATFORM_API_KEY is required in production")
		}
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}

	for i, email := range c.Platform.SuperAdminEmails {
		c.Platform.SuperAdminEmails[i] = strings.ToLower(strings.TrimSpace(email))
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (p *PlatformConfig) IsSuperAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range p.SuperAdminEmails {
		if e == email {
			return true
		}
	}
	return false
}
