package kafka

import (
	"fmt"
	"time"
)

// Config carries event publishing settings.  Publishing is optional; when
// disabled the rest of the system runs without a broker.
type Config struct {
	Enabled      bool          `mapstructure:"enabled" json:"enabled"`
	Brokers      []string      `mapstructure:"brokers" json:"brokers"`
	TopicPrefix  string        `mapstructure:"topic_prefix" json:"topic_prefix"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout" json:"batch_timeout"`
}

func (c *Config) applyDefaults() {
	if len(c.Brokers) == 0 {
		c.Brokers = []string{"localhost:9092"}
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "landgauge"
	}
	if c.BatchTimeout <= 0 {
		c.BatchTimeout = 100 * time.Millisecond
	}
}

// Validate checks broker settings when publishing is enabled.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if len(c.Brokers) == 0 {
		return fmt.Errorf("kafka enabled but no brokers configured")
	}
	return nil
}
