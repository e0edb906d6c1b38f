package sales

import (
	"time"

	"github.com/landgauge/landgauge/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Market statistics engine
// ─────────────────────────────────────────────────────────────────────────────

// StatisticsEngine summarizes sale sets into market statistics.  The clock is
// injected so recency windows and monthly buckets are reproducible.
type StatisticsEngine struct {
	logger logging.Logger
	now    func() time.Time
}

// StatisticsOption configures a StatisticsEngine.
type StatisticsOption func(*StatisticsEngine)

// WithStatisticsLogger sets the engine logger.
func WithStatisticsLogger(l logging.Logger) StatisticsOption {
	return func(e *StatisticsEngine) { e.logger = l }
}

// WithStatisticsClock sets the time source.
func WithStatisticsClock(now func() time.Time) StatisticsOption {
	return func(e *StatisticsEngine) { e.now = now }
}

// NewStatisticsEngine creates a market statistics engine.
func NewStatisticsEngine(opts ...StatisticsOption) *StatisticsEngine {
	e := &StatisticsEngine{
		logger: logging.NewNopLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Summarize computes the full statistics for a set of sales.  An empty set
// yields zero counts with every optional aggregate unset.
func (e *StatisticsEngine) Summarize(sales []PropertySale) *SalesStatistics {
	stats := &SalesStatistics{
		ByPropertyType: map[PropertyType]int{},
		MonthlyVolumes: []MonthlyVolume{},
	}
	if len(sales) == 0 {
		return stats
	}

	now := e.now()
	yearAgo := now.AddDate(0, 0, -365)
	threeMonthsAgo := now.AddDate(0, 0, -90)

	prices := make([]float64, 0, len(sales))
	pricesPerSqm := make([]float64, 0, len(sales))
	olderPrices := []float64{}
	minPrice, maxPrice := sales[0].SalePrice, sales[0].SalePrice

	for i := range sales {
		s := &sales[i]
		prices = append(prices, float64(s.SalePrice))
		if s.PricePerSqm != nil {
			pricesPerSqm = append(pricesPerSqm, *s.PricePerSqm)
		}
		if s.SalePrice < minPrice {
			minPrice = s.SalePrice
		}
		if s.SalePrice > maxPrice {
			maxPrice = s.SalePrice
		}
		if !s.ContractDate.Before(yearAgo) {
			stats.SalesLast12Months++
		} else {
			olderPrices = append(olderPrices, float64(s.SalePrice))
		}
		if !s.ContractDate.Before(threeMonthsAgo) {
			stats.SalesLast3Months++
		}
		stats.ByPropertyType[s.PropertyType]++
	}

	stats.TotalSales = len(sales)
	stats.MinPrice = &minPrice
	stats.MaxPrice = &maxPrice

	medianPrice := Median(prices)
	averagePrice := Mean(prices)
	stats.MedianPrice = &medianPrice
	stats.AveragePrice = &averagePrice

	if len(pricesPerSqm) > 0 {
		medianPPS := Median(pricesPerSqm)
		averagePPS := Mean(pricesPerSqm)
		stats.MedianPricePerSqm = &medianPPS
		stats.AveragePricePerSqm = &averagePPS
	}

	if len(olderPrices) > 0 {
		oldMedian := Median(olderPrices)
		stats.MedianPrice12MonthsAgo = &oldMedian
		if oldMedian != 0 {
			// Current term is the all-sales median, not a recent-window median.
			change := roundTo1dp((medianPrice - oldMedian) / oldMedian * 100)
			stats.PriceChangePercent = &change
		}
	}

	stats.MonthlyVolumes = e.monthlyVolumes(sales, now)

	e.logger.Debug("summarized sales",
		logging.Int("total", stats.TotalSales),
		logging.Int("last_12_months", stats.SalesLast12Months))

	return stats
}

// monthlyVolumes buckets sales into the twelve calendar months ending at the
// current month, ordered oldest first.
func (e *StatisticsEngine) monthlyVolumes(sales []PropertySale, now time.Time) []MonthlyVolume {
	counts := make(map[string]int, len(sales))
	for i := range sales {
		counts[sales[i].ContractDate.Format("2006-01")]++
	}

	volumes := make([]MonthlyVolume, 0, 12)
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := 11; i >= 0; i-- {
		month := current.AddDate(0, -i, 0)
		key := month.Format("2006-01")
		volumes = append(volumes, MonthlyVolume{Month: key, Count: counts[key]})
	}
	return volumes
}

func roundTo1dp(v float64) float64 {
	if v < 0 {
		return float64(int64(v*10-0.5)) / 10
	}
	return float64(int64(v*10+0.5)) / 10
}
