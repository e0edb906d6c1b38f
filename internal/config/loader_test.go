package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 30*time.Second, cfg.GeoQuery.RequestTimeout)
	assert.True(t, cfg.GeoQuery.CacheEnabled)
	assert.Equal(t, 5*time.Minute, cfg.GeoQuery.CacheTTL)
	assert.Equal(t, 2000.0, cfg.Sales.DefaultRadiusM)
	assert.Equal(t, 24, cfg.Sales.DefaultMaxAgeMonths)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  metrics_addr: ":9102"
  shutdown_timeout: 5s
geoquery:
  request_timeout: 15s
  cache_enabled: false
sales:
  default_radius_m: 1500
database:
  host: db.internal
  port: 5433
kafka:
  enabled: true
  brokers:
    - broker-1:9092
    - broker-2:9092
  topic_prefix: landgauge-prod
log:
  level: debug
  format: console
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9102", cfg.Server.MetricsAddr)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 15*time.Second, cfg.GeoQuery.RequestTimeout)
	assert.False(t, cfg.GeoQuery.CacheEnabled)
	assert.Equal(t, 1500.0, cfg.Sales.DefaultRadiusM)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "landgauge-prod", cfg.Kafka.TopicPrefix)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Unset keys keep their defaults.
	assert.Equal(t, 24, cfg.Sales.DefaultMaxAgeMonths)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LANDGAUGE_DATABASE_HOST", "env-db")
	t.Setenv("LANDGAUGE_LOG_LEVEL", "warn")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "env-db", cfg.Database.Host)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidConfigRejected(t *testing.T) {
	path := writeConfigFile(t, `
geoquery:
  request_timeout: 0s
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request_timeout")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := LoadFromEnv()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"zero radius", func(c *Config) { c.Sales.DefaultRadiusM = 0 }, "default_radius_m"},
		{"zero max age", func(c *Config) { c.Sales.DefaultMaxAgeMonths = 0 }, "default_max_age_months"},
		{"zero search limit", func(c *Config) { c.Sales.MaxSearchLimit = 0 }, "max_search_limit"},
		{"cache ttl without ttl", func(c *Config) { c.GeoQuery.CacheTTL = 0 }, "cache_ttl"},
		{"negative shutdown", func(c *Config) { c.Server.ShutdownTimeout = -time.Second }, "shutdown_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestWatchRequiresPath(t *testing.T) {
	assert.Error(t, Watch("", func(*Config) {}))
}
