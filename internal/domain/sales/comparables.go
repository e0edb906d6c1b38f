package sales

import (
	"math"
	"sort"
	"time"

	"github.com/landgauge/landgauge/internal/infrastructure/monitoring/logging"
	"github.com/landgauge/landgauge/pkg/types/geo"
)

// ─────────────────────────────────────────────────────────────────────────────
// Comparable sales engine
// ─────────────────────────────────────────────────────────────────────────────

// Scoring parameters.  AnnualGrowthRate feeds the time adjustment that
// normalizes older sale prices to present value.
const (
	AnnualGrowthRate     = 0.05
	typeMismatchFactor   = 0.7
	recentSaleDays       = 90
	staleSaleDays        = 365
	recencyBonus         = 1.1
	stalenessPenalty     = 0.9
	confidencePeak       = 10
	maxConfidence        = 0.8
	valuationBandPercent = 0.1
)

// ComparableEngine scores sales against a valuation target and derives an
// estimated value band.  The clock is injected so results are reproducible.
type ComparableEngine struct {
	logger logging.Logger
	now    func() time.Time
}

// ComparableOption configures a ComparableEngine.
type ComparableOption func(*ComparableEngine)

// WithComparableLogger sets the engine logger.
func WithComparableLogger(l logging.Logger) ComparableOption {
	return func(e *ComparableEngine) { e.logger = l }
}

// WithComparableClock sets the time source used for recency scoring and time
// adjustment.
func WithComparableClock(now func() time.Time) ComparableOption {
	return func(e *ComparableEngine) { e.now = now }
}

// NewComparableEngine creates a comparable sales engine.
func NewComparableEngine(opts ...ComparableOption) *ComparableEngine {
	e := &ComparableEngine{
		logger: logging.NewNopLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Similarity scores a sale against the target in [0, 1].  The score starts at
// 1.0 and decays multiplicatively for a property type mismatch, land area
// difference, distance from the target, and sale staleness; a sale inside 90
// days earns a recency bonus before the final clamp.
func (e *ComparableEngine) Similarity(q ComparableQuery, sale *PropertySale) float64 {
	score := 1.0

	if q.PropertyType != "" && sale.PropertyType != q.PropertyType {
		score *= typeMismatchFactor
	}

	if q.LandAreaSqm != nil && *q.LandAreaSqm > 0 && sale.LandAreaSqm != nil {
		sizeRatio := math.Abs(*q.LandAreaSqm-*sale.LandAreaSqm) / *q.LandAreaSqm
		score *= math.Max(0.5, 1-sizeRatio)
	}

	if sale.Point.Lat != 0 || sale.Point.Lon != 0 {
		distance := geo.HaversineDistance(q.Point, sale.Point)
		score *= math.Max(0.5, 1-(distance/q.RadiusM)*0.5)
	}

	daysAgo := e.daysSince(sale.ContractDate)
	if daysAgo < recentSaleDays {
		score *= recencyBonus
	} else if daysAgo > staleSaleDays {
		score *= stalenessPenalty
	}

	return math.Min(1.0, math.Max(0.0, score))
}

// TimeAdjustedPrice projects a past sale price to present value assuming
// linear annual growth.
func (e *ComparableEngine) TimeAdjustedPrice(sale *PropertySale) int64 {
	days := e.daysSince(sale.ContractDate)
	factor := 1 + (float64(days)/365)*AnnualGrowthRate
	return int64(float64(sale.SalePrice) * factor)
}

// Rank scores every candidate, orders them by descending similarity, and
// truncates to the query limit.  Candidates are expected to be pre-filtered
// by radius and age.
func (e *ComparableEngine) Rank(q ComparableQuery, candidates []PropertySale) []ComparableSale {
	comparables := make([]ComparableSale, 0, len(candidates))
	for i := range candidates {
		sale := &candidates[i]
		comparables = append(comparables, ComparableSale{
			PropertySale:      *sale,
			SimilarityScore:   e.Similarity(q, sale),
			DistanceM:         geo.HaversineDistance(q.Point, sale.Point),
			DaysSinceSale:     e.daysSince(sale.ContractDate),
			TimeAdjustedPrice: e.TimeAdjustedPrice(sale),
		})
	}

	sort.SliceStable(comparables, func(i, j int) bool {
		return comparables[i].SimilarityScore > comparables[j].SimilarityScore
	})
	if len(comparables) > q.Limit {
		comparables = comparables[:q.Limit]
	}

	e.logger.Debug("ranked comparables",
		logging.Int("candidates", len(candidates)),
		logging.Int("selected", len(comparables)))

	return comparables
}

// Value derives the estimated value band from ranked comparables.  The mid
// estimate is the median time-adjusted price; low and high sit 10% either
// side; confidence scales with the comparable count and caps at 0.8.
func (e *ComparableEngine) Value(comparables []ComparableSale) Valuation {
	if len(comparables) == 0 {
		return Valuation{}
	}

	prices := make([]float64, 0, len(comparables))
	for _, c := range comparables {
		if c.TimeAdjustedPrice > 0 {
			prices = append(prices, float64(c.TimeAdjustedPrice))
		}
	}
	if len(prices) == 0 {
		return Valuation{}
	}

	mid := int64(Median(prices))
	low := int64(float64(mid) * (1 - valuationBandPercent))
	high := int64(float64(mid) * (1 + valuationBandPercent))
	confidence := math.Min(float64(len(comparables))/confidencePeak, 1.0) * maxConfidence

	return Valuation{
		Low:        &low,
		Mid:        &mid,
		High:       &high,
		Confidence: &confidence,
	}
}

func (e *ComparableEngine) daysSince(t time.Time) int {
	return int(e.now().Sub(t).Hours() / 24)
}

// Median returns the middle value of vs, averaging the two central values for
// even-length input.  The input slice is not modified.
func Median(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vs...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Mean returns the arithmetic mean of vs, or 0 for empty input.
func Mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}
