package valuation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landgauge/landgauge/internal/domain/sales"
	"github.com/landgauge/landgauge/internal/infrastructure/messaging/kafka"
	"github.com/landgauge/landgauge/internal/infrastructure/monitoring/logging"
	"github.com/landgauge/landgauge/internal/testutil"
	"github.com/landgauge/landgauge/pkg/errors"
	"github.com/landgauge/landgauge/pkg/types/geo"
)

var testNow = testutil.FixtureNow

type fakeProvider struct {
	sales      []sales.PropertySale
	err        error
	lastSearch *sales.SearchQuery
	lastLimit  int
}

func (p *fakeProvider) Search(_ context.Context, q *sales.SearchQuery) ([]sales.PropertySale, int, error) {
	if p.err != nil {
		return nil, 0, p.err
	}
	p.lastSearch = q

	matches := p.matches(q)
	total := len(matches)
	if q.Offset >= len(matches) {
		return []sales.PropertySale{}, total, nil
	}
	matches = matches[q.Offset:]
	if len(matches) > q.Limit {
		matches = matches[:q.Limit]
	}
	return matches, total, nil
}

func (p *fakeProvider) All(_ context.Context, q *sales.SearchQuery, limit int) ([]sales.PropertySale, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.lastSearch = q
	p.lastLimit = limit

	matches := p.matches(q)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (p *fakeProvider) matches(q *sales.SearchQuery) []sales.PropertySale {
	out := []sales.PropertySale{}
	for i := range p.sales {
		if q.Matches(&p.sales[i]) {
			out = append(out, p.sales[i])
		}
	}
	return out
}

func fixtureSales() []sales.PropertySale {
	return testutil.SydneyHouseSales()
}

func testService(p SalesProvider, opts ...Option) *Service {
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return NewService(p, logging.NewNopLogger(), opts...)
}

func TestSearchReturnsPageWithStatistics(t *testing.T) {
	provider := &fakeProvider{sales: fixtureSales()}
	svc := testService(provider)

	result, err := svc.Search(context.Background(), &sales.SearchQuery{Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, 4, result.Total)
	assert.Len(t, result.Sales, 2)
	require.NotNil(t, result.Stats)
	assert.Equal(t, 4, result.Stats.TotalSales)
	require.NotNil(t, result.Stats.MedianPrice)
	assert.Equal(t, 825000.0, *result.Stats.MedianPrice)
}

func TestSearchInvalidQuery(t *testing.T) {
	svc := testService(&fakeProvider{})

	_, err := svc.Search(context.Background(), &sales.SearchQuery{Offset: -1})
	assert.True(t, errors.IsInvalidParam(err))
}

func TestSearchProviderError(t *testing.T) {
	svc := testService(&fakeProvider{err: fmt.Errorf("database down")})

	_, err := svc.Search(context.Background(), &sales.SearchQuery{})
	assert.Error(t, err)
}

func TestStatisticsOnly(t *testing.T) {
	provider := &fakeProvider{sales: fixtureSales()}
	svc := testService(provider)

	stats, err := svc.Statistics(context.Background(), &sales.SearchQuery{})
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalSales)
	assert.Equal(t, map[sales.PropertyType]int{sales.TypeHouse: 4}, stats.ByPropertyType)
}

func TestComparablesValuation(t *testing.T) {
	provider := &fakeProvider{sales: fixtureSales()}
	svc := testService(provider)

	area := 600.0
	result, err := svc.Comparables(context.Background(), sales.ComparableQuery{
		Point:        geo.Coordinates{Lat: -33.87, Lon: 151.21},
		PropertyType: sales.TypeHouse,
		LandAreaSqm:  &area,
		Limit:        3,
	})
	require.NoError(t, err)

	assert.Len(t, result.Comparables, 3)
	require.NotNil(t, result.Valuation.Mid)
	assert.Positive(t, *result.Valuation.Mid)
	require.NotNil(t, result.Valuation.Low)
	require.NotNil(t, result.Valuation.High)
	assert.Less(t, *result.Valuation.Low, *result.Valuation.Mid)
	assert.Greater(t, *result.Valuation.High, *result.Valuation.Mid)
	require.NotNil(t, result.Valuation.Confidence)
	assert.InDelta(t, 0.24, *result.Valuation.Confidence, 1e-9)
	require.NotNil(t, result.MarketStats)
	assert.Equal(t, 4, result.MarketStats.TotalSales)

	// Candidate pull is age-bounded and capped.
	require.NotNil(t, provider.lastSearch.SoldAfter)
	assert.Equal(t, testNow.AddDate(0, 0, -sales.DefaultMaxAgeMonths*daysPerMonth), *provider.lastSearch.SoldAfter)
	assert.Equal(t, candidateLimit, provider.lastLimit)
	assert.Equal(t, []sales.PropertyType{sales.TypeHouse}, provider.lastSearch.PropertyType)
}

func TestComparablesNoCandidates(t *testing.T) {
	provider := &fakeProvider{}
	svc := testService(provider)

	result, err := svc.Comparables(context.Background(), sales.ComparableQuery{
		Point: geo.Coordinates{Lat: -33.87, Lon: 151.21},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Comparables)
	assert.Nil(t, result.Valuation.Mid)
}

func TestComparablesProviderError(t *testing.T) {
	svc := testService(&fakeProvider{err: fmt.Errorf("database down")})

	_, err := svc.Comparables(context.Background(), sales.ComparableQuery{
		Point: geo.Coordinates{Lat: -33.87, Lon: 151.21},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeCorpusUnavailable))
}

func TestComparablesInvalidCenter(t *testing.T) {
	svc := testService(&fakeProvider{})

	_, err := svc.Comparables(context.Background(), sales.ComparableQuery{
		Point: geo.Coordinates{Lat: 123, Lon: 0},
	})
	assert.True(t, errors.IsInvalidParam(err))
}

func TestConfiguredQueryDefaults(t *testing.T) {
	provider := &fakeProvider{sales: fixtureSales()}
	svc := testService(provider, WithQueryDefaults(QueryDefaults{
		RadiusM:      500,
		MaxAgeMonths: 6,
		MaxLimit:     3,
	}))

	// Search pages are capped at the configured maximum.
	result, err := svc.Search(context.Background(), &sales.SearchQuery{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Total)
	assert.Len(t, result.Sales, 3)

	// Comparable pulls use the configured radius and age window when the
	// query leaves them unset.
	_, err = svc.Comparables(context.Background(), sales.ComparableQuery{
		Point: geo.Coordinates{Lat: -33.87, Lon: 151.21},
	})
	require.NoError(t, err)
	assert.Equal(t, 500.0, provider.lastSearch.RadiusM)
	require.NotNil(t, provider.lastSearch.SoldAfter)
	assert.Equal(t, testNow.AddDate(0, 0, -6*daysPerMonth), *provider.lastSearch.SoldAfter)
}

type capturingPublisher struct {
	topics []string
	events []any
}

func (p *capturingPublisher) Publish(_ context.Context, topic, _ string, event any) error {
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

func TestComparablesPublishesValuationEvent(t *testing.T) {
	provider := &fakeProvider{sales: fixtureSales()}
	publisher := &capturingPublisher{}
	svc := testService(provider, WithPublisher(publisher))

	_, err := svc.Comparables(context.Background(), sales.ComparableQuery{
		Point: geo.Coordinates{Lat: -33.87, Lon: 151.21},
	})
	require.NoError(t, err)

	require.Len(t, publisher.topics, 1)
	assert.Equal(t, kafka.TopicValuationProduced, publisher.topics[0])
	evt, ok := publisher.events[0].(kafka.ValuationProducedEvent)
	require.True(t, ok)
	assert.Equal(t, 4, evt.ComparableCount)
	assert.Positive(t, evt.EstimateMid)
}

func TestComparablesNoEventWithoutEstimate(t *testing.T) {
	publisher := &capturingPublisher{}
	svc := testService(&fakeProvider{}, WithPublisher(publisher))

	_, err := svc.Comparables(context.Background(), sales.ComparableQuery{
		Point: geo.Coordinates{Lat: -33.87, Lon: 151.21},
	})
	require.NoError(t, err)
	assert.Empty(t, publisher.topics)
}
