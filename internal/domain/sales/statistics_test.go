package sales

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statsEngine() *StatisticsEngine {
	return NewStatisticsEngine(WithStatisticsClock(fixedClock))
}

func TestSummarizeEmpty(t *testing.T) {
	stats := statsEngine().Summarize(nil)

	assert.Equal(t, 0, stats.TotalSales)
	assert.Equal(t, 0, stats.SalesLast12Months)
	assert.Nil(t, stats.MedianPrice)
	assert.Nil(t, stats.MinPrice)
	assert.Nil(t, stats.PriceChangePercent)
	assert.Empty(t, stats.MonthlyVolumes)
	assert.Empty(t, stats.ByPropertyType)
}

func TestSummarize(t *testing.T) {
	sales := []PropertySale{
		saleAt("a", 800000, 450, TypeHouse, testNow.AddDate(0, 0, -30)),
		saleAt("b", 1200000, 300, TypeUnit, testNow.AddDate(0, 0, -100)),
		saleAt("c", 1000000, 600, TypeHouse, testNow.AddDate(0, 0, -200)),
		saleAt("d", 600000, 900, TypeLand, testNow.AddDate(0, 0, -400)),
		saleAt("e", 700000, 500, TypeHouse, testNow.AddDate(0, 0, -500)),
	}
	sales[0].PricePerSqm = fptr(1777.78)
	sales[1].PricePerSqm = fptr(4000.0)

	stats := statsEngine().Summarize(sales)

	assert.Equal(t, 5, stats.TotalSales)
	assert.Equal(t, 3, stats.SalesLast12Months)
	assert.Equal(t, 1, stats.SalesLast3Months)

	require.NotNil(t, stats.MedianPrice)
	assert.InDelta(t, 800000, *stats.MedianPrice, 0.001)
	require.NotNil(t, stats.AveragePrice)
	assert.InDelta(t, 860000, *stats.AveragePrice, 0.001)
	require.NotNil(t, stats.MinPrice)
	assert.Equal(t, int64(600000), *stats.MinPrice)
	require.NotNil(t, stats.MaxPrice)
	assert.Equal(t, int64(1200000), *stats.MaxPrice)

	// Older sales d and e have median 650000; change vs 800000 is +23.1%.
	require.NotNil(t, stats.MedianPrice12MonthsAgo)
	assert.InDelta(t, 650000, *stats.MedianPrice12MonthsAgo, 0.001)
	require.NotNil(t, stats.PriceChangePercent)
	assert.InDelta(t, 23.1, *stats.PriceChangePercent, 0.001)

	require.NotNil(t, stats.MedianPricePerSqm)
	assert.InDelta(t, 2888.89, *stats.MedianPricePerSqm, 0.001)

	assert.Equal(t, map[PropertyType]int{TypeHouse: 3, TypeUnit: 1, TypeLand: 1}, stats.ByPropertyType)
}

func TestMonthlyVolumes(t *testing.T) {
	sales := []PropertySale{
		saleAt("a", 800000, 450, TypeHouse, time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC)),
		saleAt("b", 800000, 450, TypeHouse, time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)),
		saleAt("c", 800000, 450, TypeHouse, time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)),
		// Outside the 12-month window, never bucketed.
		saleAt("d", 800000, 450, TypeHouse, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)),
	}

	stats := statsEngine().Summarize(sales)

	require.Len(t, stats.MonthlyVolumes, 12)
	assert.Equal(t, "2025-10", stats.MonthlyVolumes[0].Month)
	assert.Equal(t, "2026-09", stats.MonthlyVolumes[11].Month)

	byMonth := map[string]int{}
	for _, v := range stats.MonthlyVolumes {
		byMonth[v.Month] = v.Count
	}
	assert.Equal(t, 2, byMonth["2026-08"])
	assert.Equal(t, 1, byMonth["2025-10"])
	assert.Equal(t, 0, byMonth["2026-09"])
	assert.Equal(t, 0, byMonth["2026-01"])
}

func TestRoundTo1dp(t *testing.T) {
	assert.Equal(t, 23.1, roundTo1dp(23.0769))
	assert.Equal(t, -4.2, roundTo1dp(-4.1666))
	assert.Equal(t, 0.0, roundTo1dp(0))
}
