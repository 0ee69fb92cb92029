package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	Enabled      bool   `mapstructure:"enabled"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// CacheConfig holds read-through cache lifetimes in seconds.
type CacheConfig struct {
	BinGridTTL int `mapstructure:"bingrid_ttl"`
}

var defaults = map[string]any{
	"server.port":             8080,
	"server.read_timeout":     "10s",
	"server.write_timeout":    "10s",
	"log.level":               "info",
	"log.format":              "json",
	"database.host":           "localhost",
	"database.port":           5432,
	"database.user":           "seismeta",
	"database.password":       "",
	"database.dbname":         "seismeta",
	"database.sslmode":        "disable",
	"database.max_conns":      20,
	"nats.url":                "nats://localhost:4222",
	"valkey.addr":             "localhost:6379",
	"telemetry.otlp_endpoint": "tempo:4317",
	"telemetry.enabled":       true,
	"temporal.host_port":      "localhost:7233",
	"temporal.namespace":      "default",
	"temporal.task_queue":     "bingrid-refresh",
	"cache.bingrid_ttl":       600,
}

// Load reads configuration for the named service from defaults, an optional
// config.yaml and SEISMETA_ environment variables, in increasing precedence.
func Load(service string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetDefault("telemetry.service_name", service)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// SEISMETA_DATABASE_HOST -> database.host
	v.SetEnvPrefix("SEISMETA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validPort(p int) bool { return p > 0 && p <= 65535 }

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	require := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	require(validPort(c.Server.Port), "server.port must be 1-65535, got %d", c.Server.Port)
	require(c.Server.ReadTimeout > 0, "server.read_timeout must be positive")
	require(c.Server.WriteTimeout > 0, "server.write_timeout must be positive")
	require(c.Database.Host != "", "database.host is required")
	require(validPort(c.Database.Port), "database.port must be 1-65535, got %d", c.Database.Port)
	require(c.Database.User != "", "database.user is required")
	require(c.Database.DBName != "", "database.dbname is required")
	require(c.NATS.URL != "", "nats.url is required")
	require(c.Valkey.Addr != "", "valkey.addr is required")
	require(c.Temporal.TaskQueue != "", "temporal.task_queue is required")
	require(c.Cache.BinGridTTL > 0, "cache.bingrid_ttl must be positive")

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
