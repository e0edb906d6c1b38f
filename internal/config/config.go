// Package config loads and validates the engine configuration from files and
// environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/landgauge/landgauge/internal/infrastructure/database/postgres"
	"github.com/landgauge/landgauge/internal/infrastructure/database/redis"
	"github.com/landgauge/landgauge/internal/infrastructure/messaging/kafka"
	"github.com/landgauge/landgauge/internal/infrastructure/monitoring/logging"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	GeoQuery GeoQueryConfig  `mapstructure:"geoquery"`
	Sales    SalesConfig     `mapstructure:"sales"`
	Redis    redis.Config    `mapstructure:"redis"`
	Database postgres.Config `mapstructure:"database"`
	Kafka    kafka.Config    `mapstructure:"kafka"`
	Log      logging.Config  `mapstructure:"log"`
}

// ServerConfig holds process-level settings.
type ServerConfig struct {
	// MetricsAddr is the listen address of the Prometheus endpoint; empty
	// disables it.
	MetricsAddr     string        `mapstructure:"metrics_addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// GeoQueryConfig tunes the spatial gateway.
type GeoQueryConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	CacheEnabled   bool          `mapstructure:"cache_enabled"`
}

// SalesConfig tunes the sales corpus and valuation defaults.
type SalesConfig struct {
	DefaultRadiusM      float64 `mapstructure:"default_radius_m"`
	DefaultMaxAgeMonths int     `mapstructure:"default_max_age_months"`
	MaxSearchLimit      int     `mapstructure:"max_search_limit"`
}

// Validate checks cross-field consistency.  Defaults must already be applied.
func (c *Config) Validate() error {
	if c.GeoQuery.RequestTimeout <= 0 {
		return fmt.Errorf("geoquery.request_timeout must be positive")
	}
	if c.GeoQuery.CacheEnabled && c.GeoQuery.CacheTTL <= 0 {
		return fmt.Errorf("geoquery.cache_ttl must be positive when caching is enabled")
	}
	if c.Sales.DefaultRadiusM <= 0 {
		return fmt.Errorf("sales.default_radius_m must be positive")
	}
	if c.Sales.DefaultMaxAgeMonths <= 0 {
		return fmt.Errorf("sales.default_max_age_months must be positive")
	}
	if c.Sales.MaxSearchLimit <= 0 {
		return fmt.Errorf("sales.max_search_limit must be positive")
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must not be negative")
	}
	return nil
}
