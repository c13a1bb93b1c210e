package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Valkey     ValkeyConfig     `mapstructure:"valkey"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Campus     CampusConfig     `mapstructure:"campus"`
	Navigation NavigationConfig `mapstructure:"navigation"`
	Temporal   TemporalConfig   `mapstructure:"temporal"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
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
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// CampusConfig selects where the campus graph is loaded from.
type CampusConfig struct {
	Source        string `mapstructure:"source"` // "postgres" or "file"
	File          string `mapstructure:"file"`
	Bidirectional bool   `mapstructure:"bidirectional"`
}

type NavigationConfig struct {
	WrongWaySamples int `mapstructure:"wrong_way_samples"`
	SessionTTL      int `mapstructure:"session_ttl"`     // seconds
	RouteCacheTTL   int `mapstructure:"route_cache_ttl"` // seconds
}

type TemporalConfig struct {
	HostPort     string `mapstructure:"host_port"`
	TaskQueue    string `mapstructure:"task_queue"`
	StepInterval int    `mapstructure:"step_interval"` // seconds
	MaxSteps     int    `mapstructure:"max_steps"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "campus")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "campusnav")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("campus.source", "postgres")
	v.SetDefault("campus.file", "")
	v.SetDefault("campus.bidirectional", true)
	v.SetDefault("navigation.wrong_way_samples", 3)
	v.SetDefault("navigation.session_ttl", 7200)
	v.SetDefault("navigation.route_cache_ttl", 600)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.task_queue", "campusnav-simulator")
	v.SetDefault("temporal.step_interval", 4)
	v.SetDefault("temporal.max_steps", 500)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: CAMPUSNAV_DATABASE_HOST → database.host
	v.SetEnvPrefix("CAMPUSNAV")
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

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	switch c.Campus.Source {
	case "postgres":
	case "file":
		if c.Campus.File == "" {
			errs = append(errs, "campus.file is required when campus.source is file")
		}
	default:
		errs = append(errs, fmt.Sprintf("campus.source must be postgres or file, got %q", c.Campus.Source))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Navigation.WrongWaySamples < 1 {
		errs = append(errs, "navigation.wrong_way_samples must be at least 1")
	}
	if c.Navigation.SessionTTL <= 0 {
		errs = append(errs, "navigation.session_ttl must be positive")
	}
	if c.Navigation.RouteCacheTTL < 0 {
		errs = append(errs, "navigation.route_cache_ttl must not be negative")
	}
	if c.Temporal.StepInterval <= 0 {
		errs = append(errs, "temporal.step_interval must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
