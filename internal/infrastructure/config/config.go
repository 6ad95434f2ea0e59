package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Store drivers
const (
	DriverMemory = "memory"
	DriverMySQL  = "mysql"
)

// OTLP export protocols
const (
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http"
)

type Config struct {
	Server ServerConfig
	OTLP   OTLPConfig
	Store  StoreConfig
	Kafka  KafkaConfig
	Log    LogConfig
}

type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            string        `envconfig:"SERVER_PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

type OTLPConfig struct {
	Enabled        bool   `envconfig:"OTEL_ENABLED" default:"true"`
	Endpoint       string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
	Protocol       string `envconfig:"OTEL_EXPORTER_OTLP_PROTOCOL" default:"grpc"`
	ServiceName    string `envconfig:"OTEL_SERVICE_NAME" default:"food-catalog-api"`
	ServiceVersion string `envconfig:"OTEL_SERVICE_VERSION" default:"1.0.0"`
	Environment    string `envconfig:"OTEL_ENVIRONMENT" default:"development"`
}

type StoreConfig struct {
	Driver         string `envconfig:"STORE_DRIVER" default:"memory"`
	DSN            string `envconfig:"MYSQL_DSN" default:"food:food@tcp(localhost:3306)/food_catalog?parseTime=true"`
	MigrateOnStart bool   `envconfig:"STORE_MIGRATE_ON_START" default:"true"`
}

type KafkaConfig struct {
	// Brokers is a comma separated list. Publishing is disabled when empty.
	Brokers []string `envconfig:"KAFKA_BROKERS"`
	Topic   string   `envconfig:"KAFKA_TOPIC" default:"fooditems.ingested"`
}

// Enabled reports whether batch events should be published
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

// SlogLevel parses Level as a slog level name
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.Level, err)
	}
	return level, nil
}

// LoadConfig loads configuration from environment variables. Variables from
// envFiles (default ".env") fill in anything not already set; missing files
// are ignored.
func LoadConfig(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := &Config{}
	sections := []struct {
		name string
		spec any
	}{
		{"server", &cfg.Server},
		{"otlp", &cfg.OTLP},
		{"store", &cfg.Store},
		{"kafka", &cfg.Kafka},
		{"log", &cfg.Log},
	}
	for _, s := range sections {
		if err := envconfig.Process("", s.spec); err != nil {
			return nil, fmt.Errorf("failed to load %s config: %w", s.name, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values envconfig cannot constrain by type
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverMySQL:
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q: must be %q or %q", c.Store.Driver, DriverMemory, DriverMySQL)
	}

	switch c.OTLP.Protocol {
	case ProtocolGRPC, ProtocolHTTP:
	default:
		return fmt.Errorf("invalid OTEL_EXPORTER_OTLP_PROTOCOL %q: must be %q or %q", c.OTLP.Protocol, ProtocolGRPC, ProtocolHTTP)
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// Addr is the listen address of the HTTP server
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}
