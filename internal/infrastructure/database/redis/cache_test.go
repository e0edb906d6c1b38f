package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/landgauge/landgauge/internal/infrastructure/monitoring/logging"
)

func TestCacheKeyPrefix(t *testing.T) {
	c := NewCache(&Client{}, logging.NewNopLogger()).(*jsonCache)
	assert.Equal(t, "landgauge:geo:zoning", c.fullKey("geo:zoning"))

	custom := NewCache(&Client{}, logging.NewNopLogger(), WithPrefix("test:")).(*jsonCache)
	assert.Equal(t, "test:k", custom.fullKey("k"))
}

func TestCacheDefaults(t *testing.T) {
	c := NewCache(&Client{}, logging.NewNopLogger()).(*jsonCache)
	assert.Equal(t, 5*time.Minute, c.defaultTTL)

	custom := NewCache(&Client{}, logging.NewNopLogger(), WithDefaultTTL(time.Minute)).(*jsonCache)
	assert.Equal(t, time.Minute, custom.defaultTTL)
}

func TestJitterTTLBounds(t *testing.T) {
	c := NewCache(&Client{}, logging.NewNopLogger()).(*jsonCache)

	ttl := 10 * time.Minute
	for i := 0; i < 100; i++ {
		got := c.jitterTTL(ttl)
		assert.GreaterOrEqual(t, got, 9*time.Minute)
		assert.LessOrEqual(t, got, 11*time.Minute)
	}

	assert.Equal(t, time.Duration(0), c.jitterTTL(0))
	assert.Equal(t, time.Duration(0), c.jitterTTL(-time.Second))
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	assert.Equal(t, "localhost:6379", cfg.Addr)
	assert.Positive(t, cfg.PoolSize)
	assert.Positive(t, cfg.DialTimeout)
}
