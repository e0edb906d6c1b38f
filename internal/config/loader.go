package config

import (
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/landgauge/landgauge/pkg/errors"
)

const envPrefix = "LANDGAUGE"

// Load reads configuration from the given file path, layered under
// LANDGAUGE_* environment variables.  An empty path loads defaults and
// environment only.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidParam, "read config file")
		}
	}

	return unmarshal(v)
}

// LoadFromEnv loads configuration from defaults and environment variables
// only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

// MustLoad is Load for program startup; it panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Watch reloads the config file on change and invokes onChange with each
// valid new configuration.  Invalid reloads are dropped.
func Watch(path string, onChange func(*Config)) error {
	if path == "" {
		return errors.InvalidParam("config watch requires a file path")
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrap(err, errors.CodeInvalidParam, "read config file")
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshal(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "invalid config")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.metrics_addr", "")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("geoquery.request_timeout", 30*time.Second)
	v.SetDefault("geoquery.cache_ttl", 5*time.Minute)
	v.SetDefault("geoquery.cache_enabled", true)

	v.SetDefault("sales.default_radius_m", 2000.0)
	v.SetDefault("sales.default_max_age_months", 24)
	v.SetDefault("sales.max_search_limit", 200)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "landgauge")
	v.SetDefault("database.dbname", "landgauge")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic_prefix", "landgauge")
	v.SetDefault("kafka.batch_timeout", 100*time.Millisecond)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_paths", []string{"stderr"})
}
