package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
http:
  address: ":8081"
database:
  host: localhost
  port: 5432
  user: flights
  password: secret
  name: flights
kafka:
  brokers: ["localhost:9092"]
  booking_events_topic: booking-events
booking:
  tx_timeout_ms: 1500
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.HTTP.Address)
	assert.Equal(t, ":9090", cfg.GRPC.Address)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "host=localhost port=5432 user=flights password=secret dbname=flights sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, 1500*time.Millisecond, cfg.Booking.TxTimeout())
	assert.Equal(t, 30*time.Second, cfg.Booking.SearchCacheTTL())
	assert.Equal(t, 10*time.Minute, cfg.Worker.AuditInterval())
	assert.True(t, cfg.Kafka.Enabled())
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: memory
`)
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.Error(t, err, "brokers without a topic must be rejected")
	assert.Nil(t, cfg)

	t.Setenv("KAFKA_BROKERS", "")
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")

	_, err = LoadConfig(writeConfig(t, "http: ["))
	assert.ErrorContains(t, err, "failed to parse config")

	_, err = LoadConfig(writeConfig(t, "database:\n  driver: sqlite\n"))
	assert.ErrorContains(t, err, "unknown database driver")

	_, err = LoadConfig(writeConfig(t, "database:\n  driver: postgres\n"))
	assert.ErrorContains(t, err, "host and name are required")
}
