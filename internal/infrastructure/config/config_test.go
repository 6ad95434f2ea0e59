package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.OTLP.Enabled)
	assert.Equal(t, "localhost:4317", cfg.OTLP.Endpoint)
	assert.Equal(t, ProtocolGRPC, cfg.OTLP.Protocol)
	assert.Equal(t, "food-catalog-api", cfg.OTLP.ServiceName)
	assert.Equal(t, "development", cfg.OTLP.Environment)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Contains(t, cfg.Store.DSN, "parseTime=true")
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, "fooditems.ingested", cfg.Kafka.Topic)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("OTEL_ENABLED", "false")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "http")
	t.Setenv("STORE_DRIVER", "mysql")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.False(t, cfg.OTLP.Enabled)
	assert.Equal(t, ProtocolHTTP, cfg.OTLP.Protocol)
	assert.Equal(t, DriverMySQL, cfg.Store.Driver)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("KAFKA_TOPIC=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("KAFKA_TOPIC") })

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Kafka.Topic)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "store driver", key: "STORE_DRIVER", value: "postgres"},
		{name: "protocol", key: "OTEL_EXPORTER_OTLP_PROTOCOL", value: "thrift"},
		{name: "log level", key: "LOG_LEVEL", value: "loud"},
		{name: "boolean", key: "OTEL_ENABLED", value: "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig(missingEnvFile(t))
			assert.Error(t, err)
		})
	}
}
