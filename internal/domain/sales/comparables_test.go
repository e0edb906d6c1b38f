package sales

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landgauge/landgauge/pkg/types/geo"
)

var testNow = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func testEngine() *ComparableEngine {
	return NewComparableEngine(WithComparableClock(fixedClock))
}

func targetQuery() ComparableQuery {
	return ComparableQuery{
		Point:        geo.Coordinates{Lat: -33.87, Lon: 151.21},
		PropertyType: TypeHouse,
		LandAreaSqm:  fptr(600),
		RadiusM:      2000,
		MaxAgeMonths: 24,
		Limit:        10,
	}
}

func TestSimilarity(t *testing.T) {
	engine := testEngine()
	q := targetQuery()

	t.Run("identical recent sale clamps to one", func(t *testing.T) {
		sale := saleAt("s", 900000, 600, TypeHouse, testNow.AddDate(0, 0, -30))
		sale.Point = q.Point
		// Perfect match with recency bonus still caps at 1.0.
		assert.Equal(t, 1.0, engine.Similarity(q, &sale))
	})

	t.Run("type mismatch applies factor", func(t *testing.T) {
		matched := saleAt("a", 900000, 600, TypeHouse, testNow.AddDate(0, -6, 0))
		mismatched := saleAt("b", 900000, 600, TypeUnit, testNow.AddDate(0, -6, 0))
		matched.Point, mismatched.Point = q.Point, q.Point

		assert.InDelta(t, 0.7, engine.Similarity(q, &mismatched)/engine.Similarity(q, &matched), 0.0001)
	})

	t.Run("area difference floors at half", func(t *testing.T) {
		sale := saleAt("s", 900000, 6000, TypeHouse, testNow.AddDate(0, -6, 0))
		sale.Point = q.Point
		assert.InDelta(t, 0.5, engine.Similarity(q, &sale), 0.0001)
	})

	t.Run("distance decay", func(t *testing.T) {
		near := saleAt("n", 900000, 600, TypeHouse, testNow.AddDate(0, -6, 0))
		near.Point = q.Point
		far := near
		// Roughly 1.1km north.
		far.Point = geo.Coordinates{Lat: q.Point.Lat + 0.01, Lon: q.Point.Lon}

		nearScore := engine.Similarity(q, &near)
		farScore := engine.Similarity(q, &far)
		assert.Less(t, farScore, nearScore)
		assert.GreaterOrEqual(t, farScore, 0.5*nearScore)
	})

	t.Run("stale sale penalized", func(t *testing.T) {
		fresh := saleAt("f", 900000, 600, TypeHouse, testNow.AddDate(0, -6, 0))
		stale := saleAt("s", 900000, 600, TypeHouse, testNow.AddDate(-2, 0, 0))
		fresh.Point, stale.Point = q.Point, q.Point

		assert.InDelta(t, 0.9, engine.Similarity(q, &stale)/engine.Similarity(q, &fresh), 0.0001)
	})

	t.Run("score always within unit interval", func(t *testing.T) {
		areas := []float64{10, 100, 600, 3000, 50000}
		ages := []int{-10, -100, -400, -900}
		types := []PropertyType{TypeHouse, TypeUnit, TypeLand}
		for _, area := range areas {
			for _, age := range ages {
				for _, pt := range types {
					sale := saleAt("s", 900000, area, pt, testNow.AddDate(0, 0, age))
					sale.Point = geo.Coordinates{Lat: q.Point.Lat + 0.02, Lon: q.Point.Lon - 0.01}
					score := engine.Similarity(q, &sale)
					assert.GreaterOrEqual(t, score, 0.0)
					assert.LessOrEqual(t, score, 1.0)
				}
			}
		}
	})
}

func TestTimeAdjustedPrice(t *testing.T) {
	engine := testEngine()

	t.Run("one year old grows five percent", func(t *testing.T) {
		sale := saleAt("s", 1000000, 600, TypeHouse, testNow.AddDate(0, 0, -365))
		assert.Equal(t, int64(1050000), engine.TimeAdjustedPrice(&sale))
	})

	t.Run("same day unchanged", func(t *testing.T) {
		sale := saleAt("s", 1000000, 600, TypeHouse, testNow)
		assert.Equal(t, int64(1000000), engine.TimeAdjustedPrice(&sale))
	})
}

func TestRank(t *testing.T) {
	engine := testEngine()
	q := targetQuery()

	near := saleAt("near", 900000, 600, TypeHouse, testNow.AddDate(0, -2, 0))
	near.Point = q.Point
	far := saleAt("far", 850000, 580, TypeHouse, testNow.AddDate(0, -2, 0))
	far.Point = geo.Coordinates{Lat: q.Point.Lat + 0.015, Lon: q.Point.Lon}
	mismatch := saleAt("unit", 700000, 600, TypeUnit, testNow.AddDate(0, -2, 0))
	mismatch.Point = q.Point

	ranked := engine.Rank(q, []PropertySale{mismatch, far, near})

	require.Len(t, ranked, 3)
	assert.Equal(t, "near", ranked[0].ID)
	for i := 1; i < len(ranked); i++ {
		assert.LessOrEqual(t, ranked[i].SimilarityScore, ranked[i-1].SimilarityScore)
	}
	assert.Equal(t, 0.0, ranked[0].DistanceM)
	assert.Greater(t, ranked[1].DistanceM+ranked[2].DistanceM, 0.0)

	t.Run("limit truncates", func(t *testing.T) {
		small := q
		small.Limit = 1
		ranked := engine.Rank(small, []PropertySale{mismatch, far, near})
		require.Len(t, ranked, 1)
		assert.Equal(t, "near", ranked[0].ID)
	})

	t.Run("empty candidates", func(t *testing.T) {
		assert.Empty(t, engine.Rank(q, nil))
	})
}

func TestValue(t *testing.T) {
	engine := testEngine()

	t.Run("band around median adjusted price", func(t *testing.T) {
		comparables := []ComparableSale{
			{TimeAdjustedPrice: 900000},
			{TimeAdjustedPrice: 1000000},
			{TimeAdjustedPrice: 1100000},
		}
		v := engine.Value(comparables)

		require.NotNil(t, v.Mid)
		assert.Equal(t, int64(1000000), *v.Mid)
		assert.Equal(t, int64(900000), *v.Low)
		assert.Equal(t, int64(1100000), *v.High)
		require.NotNil(t, v.Confidence)
		assert.InDelta(t, 0.24, *v.Confidence, 0.0001)
	})

	t.Run("confidence caps at eighty percent", func(t *testing.T) {
		comparables := make([]ComparableSale, 15)
		for i := range comparables {
			comparables[i].TimeAdjustedPrice = 1000000
		}
		v := engine.Value(comparables)
		require.NotNil(t, v.Confidence)
		assert.InDelta(t, 0.8, *v.Confidence, 0.0001)
	})

	t.Run("confidence scales with count below ten", func(t *testing.T) {
		for n := 1; n <= 10; n++ {
			comparables := make([]ComparableSale, n)
			for i := range comparables {
				comparables[i].TimeAdjustedPrice = 1000000
			}
			v := engine.Value(comparables)
			require.NotNil(t, v.Confidence, fmt.Sprintf("n=%d", n))
			assert.InDelta(t, float64(n)/10*0.8, *v.Confidence, 0.0001)
		}
	})

	t.Run("no comparables yields empty valuation", func(t *testing.T) {
		v := engine.Value(nil)
		assert.Nil(t, v.Mid)
		assert.Nil(t, v.Confidence)
	})

	t.Run("zero adjusted prices yield empty valuation", func(t *testing.T) {
		v := engine.Value([]ComparableSale{{TimeAdjustedPrice: 0}})
		assert.Nil(t, v.Mid)
	})
}

func TestMedianAndMean(t *testing.T) {
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 5.0, Median([]float64{5}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 2, 3}))
	assert.Equal(t, 3.0, Median([]float64{5, 1, 3}))
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))

	// Median must not reorder its input.
	in := []float64{9, 1, 5}
	Median(in)
	assert.Equal(t, []float64{9, 1, 5}, in)
}
