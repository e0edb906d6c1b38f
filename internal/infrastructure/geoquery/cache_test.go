package geoquery

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landgauge/landgauge/internal/infrastructure/database/redis"
	"github.com/landgauge/landgauge/pkg/errors"
)

// memoryCache is an in-process stand-in for the Redis cache.
type memoryCache struct {
	values    map[string][]byte
	sets      int
	getOrSets int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}}
}

func (m *memoryCache) Get(_ context.Context, key string, dest any) error {
	data, ok := m.values[key]
	if !ok {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = data
	m.sets++
	return nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *memoryCache) GetOrSet(ctx context.Context, key string, dest any, ttl time.Duration, loader func(ctx context.Context) (any, error)) error {
	m.getOrSets++
	if err := m.Get(ctx, key, dest); err == nil {
		return nil
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	if err := m.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return m.Get(ctx, key, dest)
}

func (m *memoryCache) Ping(context.Context) error { return nil }

// countingService records upstream calls.
type countingService struct {
	calls   int
	records []Record
	err     error
}

func (s *countingService) QueryPoint(context.Context, Query) ([]Record, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func TestCachedServiceReadThrough(t *testing.T) {
	upstream := &countingService{records: []Record{{"SYM_CODE": "R2"}}}
	cache := newMemoryCache()
	service := NewCachedService(upstream, cache)

	q := Query{BaseURL: "https://example.com", Layer: "Planning/MapServer/19", Point: testPoint}

	first, err := service.QueryPoint(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, upstream.calls)

	second, err := service.QueryPoint(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, upstream.calls, "second query must be served from cache")
}

func TestCachedServiceEmptyResultIsCached(t *testing.T) {
	upstream := &countingService{records: []Record{}}
	service := NewCachedService(upstream, newMemoryCache())

	q := Query{BaseURL: "https://example.com", Layer: "Planning/MapServer/230", Point: testPoint}

	_, err := service.QueryPoint(context.Background(), q)
	require.NoError(t, err)
	_, err = service.QueryPoint(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 1, upstream.calls)
}

func TestCachedServiceUpstreamErrorNotCached(t *testing.T) {
	upstream := &countingService{err: errors.New(errors.CodeUpstreamUnavailable, "down")}
	cache := newMemoryCache()
	service := NewCachedService(upstream, cache)

	q := Query{BaseURL: "https://example.com", Layer: "Planning/MapServer/19", Point: testPoint}

	_, err := service.QueryPoint(context.Background(), q)
	require.Error(t, err)
	_, err = service.QueryPoint(context.Background(), q)
	require.Error(t, err)

	assert.Equal(t, 2, upstream.calls)
	assert.Equal(t, 0, cache.sets)
}

func TestCachedServiceLoadsThroughGetOrSet(t *testing.T) {
	upstream := &countingService{records: []Record{{"SYM_CODE": "R2"}}}
	cache := newMemoryCache()
	service := NewCachedService(upstream, cache)

	q := Query{BaseURL: "https://example.com", Layer: "Planning/MapServer/19", Point: testPoint}

	_, err := service.QueryPoint(context.Background(), q)
	require.NoError(t, err)
	_, err = service.QueryPoint(context.Background(), q)
	require.NoError(t, err)

	// Every lookup goes through the collapsing read-through path.
	assert.Equal(t, 2, cache.getOrSets)
	assert.Equal(t, 1, upstream.calls)
}

func TestCachedServiceDistinctQueriesDistinctKeys(t *testing.T) {
	upstream := &countingService{records: []Record{{"zone": "R2"}}}
	service := NewCachedService(upstream, newMemoryCache())

	q1 := Query{BaseURL: "https://example.com", Layer: "Planning/MapServer/19", Point: testPoint}
	q2 := q1
	q2.Layer = "Planning/MapServer/14"

	_, err := service.QueryPoint(context.Background(), q1)
	require.NoError(t, err)
	_, err = service.QueryPoint(context.Background(), q2)
	require.NoError(t, err)
	assert.Equal(t, 2, upstream.calls)
}
