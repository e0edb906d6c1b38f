// Package valuation orchestrates sales corpus searches, market statistics,
// and comparable sales valuation.
package valuation

import (
	"context"
	"time"

	"github.com/landgauge/landgauge/internal/domain/sales"
	"github.com/landgauge/landgauge/internal/infrastructure/messaging/kafka"
	"github.com/landgauge/landgauge/internal/infrastructure/monitoring/logging"
	"github.com/landgauge/landgauge/internal/infrastructure/monitoring/prometheus"
	"github.com/landgauge/landgauge/pkg/errors"
	"github.com/landgauge/landgauge/pkg/types/common"
)

// candidateLimit bounds the corpus pull that feeds comparable ranking.
const candidateLimit = 100

// daysPerMonth approximates a month when converting the maximum comparable
// age to a cutoff date.
const daysPerMonth = 30

// SalesProvider is the corpus access contract.  The postgres store satisfies
// it; tests use in-memory fakes.
type SalesProvider interface {
	Search(ctx context.Context, q *sales.SearchQuery) ([]sales.PropertySale, int, error)
	All(ctx context.Context, q *sales.SearchQuery, limit int) ([]sales.PropertySale, error)
}

// QueryDefaults carries the configured search bounds applied before a query
// is normalized.  Zero fields leave the domain defaults in force.
type QueryDefaults struct {
	RadiusM      float64
	MaxAgeMonths int
	MaxLimit     int
}

// Service answers sales queries.
type Service struct {
	provider    SalesProvider
	comparables *sales.ComparableEngine
	statistics  *sales.StatisticsEngine
	publisher   kafka.Publisher
	metrics     *prometheus.Metrics
	logger      logging.Logger
	defaults    QueryDefaults
	now         func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithPublisher emits an event after each valuation.
func WithPublisher(p kafka.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithMetrics records search and valuation counters.
func WithMetrics(m *prometheus.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithQueryDefaults applies configured search bounds.
func WithQueryDefaults(d QueryDefaults) Option {
	return func(s *Service) { s.defaults = d }
}

// WithClock overrides the wall clock across the service and both engines.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
		s.comparables = sales.NewComparableEngine(
			sales.WithComparableLogger(s.logger), sales.WithComparableClock(now))
		s.statistics = sales.NewStatisticsEngine(
			sales.WithStatisticsLogger(s.logger), sales.WithStatisticsClock(now))
	}
}

// NewService wires the sales pipeline.
func NewService(provider SalesProvider, log logging.Logger, opts ...Option) *Service {
	s := &Service{
		provider:    provider,
		comparables: sales.NewComparableEngine(sales.WithComparableLogger(log)),
		statistics:  sales.NewStatisticsEngine(sales.WithStatisticsLogger(log)),
		publisher:   kafka.NopPublisher{},
		logger:      log,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search runs a filtered corpus search and returns the page with market
// statistics computed over the full match set.
func (s *Service) Search(ctx context.Context, q *sales.SearchQuery) (*sales.SearchResult, error) {
	if s.defaults.MaxLimit > 0 && q.Limit > s.defaults.MaxLimit {
		q.Limit = s.defaults.MaxLimit
	}
	if err := q.Normalize(); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.SalesSearches.Inc()
	}

	page, total, err := s.provider.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	// Statistics cover every match, not just the returned page.
	all := page
	if total > len(page) {
		all, err = s.provider.All(ctx, q, total)
		if err != nil {
			return nil, err
		}
	}
	stats := s.statistics.Summarize(all)

	s.logger.Debug("sales search served",
		logging.Int("total", total),
		logging.Int("page_size", len(page)))

	return &sales.SearchResult{
		Total: total,
		Sales: page,
		Stats: stats,
	}, nil
}

// Statistics summarizes the market for an area without returning individual
// sales.
func (s *Service) Statistics(ctx context.Context, q *sales.SearchQuery) (*sales.SalesStatistics, error) {
	if err := q.Normalize(); err != nil {
		return nil, err
	}

	all, err := s.provider.All(ctx, q, 0)
	if err != nil {
		return nil, err
	}
	return s.statistics.Summarize(all), nil
}

// Comparables finds, scores, and ranks comparable sales around a target
// property, then derives a valuation estimate from them.
func (s *Service) Comparables(ctx context.Context, q sales.ComparableQuery) (*sales.ComparableResult, error) {
	if q.RadiusM <= 0 && s.defaults.RadiusM > 0 {
		q.RadiusM = s.defaults.RadiusM
	}
	if q.MaxAgeMonths <= 0 && s.defaults.MaxAgeMonths > 0 {
		q.MaxAgeMonths = s.defaults.MaxAgeMonths
	}
	if err := q.Normalize(); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ComparableQueries.Inc()
	}

	cutoff := s.now().AddDate(0, 0, -q.MaxAgeMonths*daysPerMonth)
	search := &sales.SearchQuery{
		Center:    &q.Point,
		RadiusM:   q.RadiusM,
		SoldAfter: &cutoff,
		SortBy:    sales.SortByContractDate,
		SortDesc:  true,
	}
	if q.PropertyType != "" {
		search.PropertyType = []sales.PropertyType{q.PropertyType}
	}

	candidates, err := s.provider.All(ctx, search, candidateLimit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeCorpusUnavailable, "load comparable candidates")
	}

	comparables := s.comparables.Rank(q, candidates)
	valuation := s.comparables.Value(comparables)
	stats := s.statistics.Summarize(candidates)

	s.observeValuation(valuation)
	s.publishValuation(ctx, q, comparables, valuation)

	return &sales.ComparableResult{
		Target:      q.Point,
		Comparables: comparables,
		Valuation:   valuation,
		MarketStats: stats,
	}, nil
}

func (s *Service) observeValuation(v sales.Valuation) {
	if s.metrics == nil {
		return
	}
	result := "estimated"
	if v.Mid == nil {
		result = "insufficient_data"
	}
	s.metrics.ValuationsTotal.WithLabelValues(result).Inc()
}

func (s *Service) publishValuation(ctx context.Context, q sales.ComparableQuery, comparables []sales.ComparableSale, v sales.Valuation) {
	if v.Mid == nil {
		return
	}
	confidence := 0.0
	if v.Confidence != nil {
		confidence = *v.Confidence
	}

	id := common.GenerateID("val")
	event := kafka.ValuationProducedEvent{
		RequestID:       id,
		Point:           q.Point,
		ComparableCount: len(comparables),
		EstimateMid:     *v.Mid,
		Confidence:      confidence,
		CompletedAt:     s.now(),
	}
	if err := s.publisher.Publish(ctx, kafka.TopicValuationProduced, id, event); err != nil {
		s.logger.Warn("valuation event not published", logging.Err(err))
	}
}
