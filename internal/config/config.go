package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/random"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Login    LoginConfig    `mapstructure:"login"`
	Tenant   TenantDefaults `mapstructure:"tenant"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Env             string        `mapstructure:"env"`
	FrontendURL     string        `mapstructure:"frontend_url"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type JWTConfig struct {
	Secret    string        `mapstructure:"secret"`
	ExpiresIn time.Duration `mapstructure:"expires_in"`
}

// RedisConfig enables login throttling when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type LoginConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Window      time.Duration `mapstructure:"window"`
}

// TenantDefaults apply to tenants created through self-service registration.
type TenantDefaults struct {
	Plan        string `mapstructure:"plan"`
	MaxUsers    int    `mapstructure:"max_users"`
	MaxProjects int    `mapstructure:"max_projects"`
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// envBindings maps config keys to the environment variable names used by
// deployments and the frontend tooling.
var envBindings = map[string]string{
	"server.port":                "PORT",
	"server.env":                 "APP_ENV",
	"server.frontend_url":        "FRONTEND_URL",
	"server.shutdown_timeout":    "SHUTDOWN_TIMEOUT",
	"database.url":               "DATABASE_URL",
	"database.max_conns":         "DB_MAX_CONNS",
	"database.min_conns":         "DB_MIN_CONNS",
	"database.conn_max_lifetime": "DB_CONN_MAX_LIFETIME",
	"jwt.secret":                 "JWT_SECRET",
	"jwt.expires_in":             "JWT_EXPIRES_IN",
	"redis.addr":                 "REDIS_ADDR",
	"redis.password":             "REDIS_PASSWORD",
	"redis.db":                   "REDIS_DB",
	"log.level":                  "LOG_LEVEL",
	"login.max_attempts":         "LOGIN_MAX_ATTEMPTS",
	"login.window":               "LOGIN_WINDOW",
	"tenant.plan":                "DEFAULT_PLAN",
	"tenant.max_users":           "DEFAULT_MAX_USERS",
	"tenant.max_projects":        "DEFAULT_MAX_PROJECTS",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.frontend_url", "http://localhost:3000")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.conn_max_lifetime", "1h")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expires_in", "24h")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")

	v.SetDefault("login.max_attempts", 5)
	v.SetDefault("login.window", "15m")

	v.SetDefault("tenant.plan", "free")
	v.SetDefault("tenant.max_users", 5)
	v.SetDefault("tenant.max_projects", 3)
}

// Load reads configuration from an optional .env file and the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required settings. In development a missing JWT secret is
// replaced by a random one, which invalidates tokens on every restart.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWT.Secret == "" {
		if !c.IsDevelopment() {
			return errors.New("JWT_SECRET is required outside development")
		}
		c.JWT.Secret = random.String(32)
	}
	if c.JWT.ExpiresIn <= 0 {
		return errors.New("JWT_EXPIRES_IN must be positive")
	}
	if c.Login.MaxAttempts < 1 {
		return errors.New("LOGIN_MAX_ATTEMPTS must be at least 1")
	}
	if c.Tenant.MaxUsers < 1 || c.Tenant.MaxProjects < 1 {
		return errors.New("DEFAULT_MAX_USERS and DEFAULT_MAX_PROJECTS must be at least 1")
	}
	return nil
}
