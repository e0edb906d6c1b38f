package geoquery

import (
	"context"
	"time"

	"github.com/landgauge/landgauge/internal/infrastructure/database/redis"
	"github.com/landgauge/landgauge/internal/infrastructure/monitoring/logging"
	"github.com/landgauge/landgauge/internal/infrastructure/monitoring/prometheus"
)

// DefaultCacheTTL bounds staleness of cached layer responses.  Planning
// layers change on gazettal timescales, so minutes-level TTLs are safe.
const DefaultCacheTTL = 5 * time.Minute

// cachedService wraps a Service with a Redis read-through cache.  Upstream
// failures are never cached.
type cachedService struct {
	next    Service
	cache   redis.Cache
	logger  logging.Logger
	metrics *prometheus.Metrics
	ttl     time.Duration
}

// CacheServiceOption configures the caching decorator.
type CacheServiceOption func(*cachedService)

// WithCacheTTL overrides the cache TTL.
func WithCacheTTL(ttl time.Duration) CacheServiceOption {
	return func(c *cachedService) { c.ttl = ttl }
}

// WithCacheLogger sets the decorator logger.
func WithCacheLogger(l logging.Logger) CacheServiceOption {
	return func(c *cachedService) { c.logger = l }
}

// WithCacheMetrics attaches hit and miss counters.
func WithCacheMetrics(m *prometheus.Metrics) CacheServiceOption {
	return func(c *cachedService) { c.metrics = m }
}

// NewCachedService layers a read-through cache over a spatial query service.
func NewCachedService(next Service, cache redis.Cache, opts ...CacheServiceOption) Service {
	c := &cachedService{
		next:   next,
		cache:  cache,
		logger: logging.NewNopLogger(),
		ttl:    DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QueryPoint serves from the cache, loading through the wrapped service on a
// miss.  GetOrSet collapses concurrent misses for the same key into one
// upstream query; upstream failures are never cached.
func (c *cachedService) QueryPoint(ctx context.Context, q Query) ([]Record, error) {
	key := q.CacheKey()

	loaded := false
	var records []Record
	err := c.cache.GetOrSet(ctx, key, &records, c.ttl, func(ctx context.Context) (any, error) {
		loaded = true
		upstream, err := c.next.QueryPoint(ctx, q)
		if err != nil {
			return nil, err
		}
		return upstream, nil
	})
	if c.metrics != nil {
		if loaded {
			c.metrics.GeoCacheMisses.Inc()
		} else if err == nil {
			c.metrics.GeoCacheHits.Inc()
		}
	}
	if err != nil {
		return nil, err
	}
	if loaded {
		c.logger.Debug("spatial cache miss", logging.String("layer", q.Layer))
	}
	return records, nil
}
