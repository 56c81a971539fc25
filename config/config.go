package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// Application
	App AppConfig `mapstructure:"app"`

	// HTTP API
	HTTP HTTPConfig `mapstructure:"http"`

	// Sessions and credentials
	Auth AuthConfig `mapstructure:"auth"`

	// Redis-backed rate limiting
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// PostgreSQL
	Postgres PostgresConfig `mapstructure:"postgres"`

	// Redis
	Redis RedisConfig `mapstructure:"redis"`

	// NATS
	NATS NATSConfig `mapstructure:"nats"`

	// Prometheus
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

type AppConfig struct {
	Env         string `mapstructure:"env"`
	LogLevel    string `mapstructure:"log_level"`
	LogEncoding string `mapstructure:"log_encoding"`
}

// Development reports whether the app runs outside production.
func (c AppConfig) Development() bool {
	return c.Env != "production"
}

type HTTPConfig struct {
	Addr      string `mapstructure:"addr"`
	BodyLimit int    `mapstructure:"body_limit"`
}

type AuthConfig struct {
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	BcryptCost     int           `mapstructure:"bcrypt_cost"`
	ReaperInterval time.Duration `mapstructure:"reaper_interval"`
}

type RateLimitConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxRequests     int           `mapstructure:"max_requests"`
	AuthMaxRequests int           `mapstructure:"auth_max_requests"`
	Window          time.Duration `mapstructure:"window"`
}

type PostgresConfig struct {
	Host              string `mapstructure:"host"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	Database          string `mapstructure:"database"`
	Port              int    `mapstructure:"port"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"max_conns"`
	MinConns          int32  `mapstructure:"min_conns"`
	MaxConnLifetime   string `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   string `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod string `mapstructure:"health_check_period"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type NATSConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

type PrometheusConfig struct {
	Port int `mapstructure:"port"`
}

func Load() (*Config, error) {
	// Load local .env for development (ignored when missing).
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	// Search for config/config.yaml (plus root for overrides).
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Allow environment variables to override YAML entries.
	v.SetEnvPrefix("")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Preserve short env variable names.
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("config: auth.session_ttl must be positive, got %s", c.Auth.SessionTTL)
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("config: auth.bcrypt_cost must be between 4 and 31, got %d", c.Auth.BcryptCost)
	}
	if c.RateLimit.Enabled && c.RateLimit.Window <= 0 {
		return fmt.Errorf("config: rate_limit.window must be positive when rate limiting is enabled")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_encoding", "")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.body_limit", 1024*1024)

	v.SetDefault("auth.session_ttl", "720h") // 30 days
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.reaper_interval", "1h")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.max_requests", 300)
	v.SetDefault("rate_limit.auth_max_requests", 20)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("prometheus.port", 9090)
}

func bindEnvVars(v *viper.Viper) {
	// Application
	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("app.log_level", "LOG_LEVEL")
	v.BindEnv("app.log_encoding", "LOG_ENCODING")

	// HTTP
	v.BindEnv("http.addr", "HTTP_ADDR")
	v.BindEnv("http.body_limit", "HTTP_BODY_LIMIT")

	// Auth
	v.BindEnv("auth.session_ttl", "SESSION_TTL")
	v.BindEnv("auth.bcrypt_cost", "BCRYPT_COST")
	v.BindEnv("auth.reaper_interval", "SESSION_REAPER_INTERVAL")

	// Rate limiting
	v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	v.BindEnv("rate_limit.max_requests", "RATE_LIMIT_MAX_REQUESTS")
	v.BindEnv("rate_limit.auth_max_requests", "RATE_LIMIT_AUTH_MAX_REQUESTS")
	v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")

	// PostgreSQL
	v.BindEnv("postgres.host", "PG_HOST")
	v.BindEnv("postgres.user", "PG_USER")
	v.BindEnv("postgres.password", "PG_PASSWORD")
	v.BindEnv("postgres.database", "PG_DB")
	v.BindEnv("postgres.port", "PG_PORT")
	v.BindEnv("postgres.sslmode", "PG_SSLMODE")
	v.BindEnv("postgres.max_conns", "PG_MAX_CONNS")
	v.BindEnv("postgres.min_conns", "PG_MIN_CONNS")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")

	// NATS
	v.BindEnv("nats.host", "NATS_HOST")
	v.BindEnv("nats.port", "NATS_PORT")
	v.BindEnv("nats.user", "NATS_USER")
	v.BindEnv("nats.password", "NATS_PASSWORD")

	// Prometheus
	v.BindEnv("prometheus.port", "PROM_PORT")
}
