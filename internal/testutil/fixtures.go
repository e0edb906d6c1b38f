package testutil

import (
	"time"

	"github.com/landgauge/landgauge/internal/domain/sales"
	"github.com/landgauge/landgauge/pkg/types/geo"
)

// FixtureNow is the reference "current time" the sales fixtures are dated
// against.  Engines under test should be given a clock pinned to it.
var FixtureNow = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

// SydneyPoint is the common fixture target, near Sydney CBD.
var SydneyPoint = geo.Coordinates{Lat: -33.87, Lon: 151.21}

// HouseSale builds a house sale fixture at SydneyPoint, dated monthsAgo
// relative to FixtureNow.
func HouseSale(id string, price int64, landAreaSqm float64, monthsAgo int) sales.PropertySale {
	return sales.PropertySale{
		ID:           id,
		Address:      id + " Fixture St, Sydney",
		Suburb:       "Sydney",
		Postcode:     "2000",
		Point:        SydneyPoint,
		PropertyType: sales.TypeHouse,
		LandAreaSqm:  &landAreaSqm,
		SalePrice:    price,
		ContractDate: FixtureNow.AddDate(0, -monthsAgo, 0),
		SaleType:     sales.SaleNormal,
		Source:       "fixture",
	}
}

// SydneyHouseSales is a small deterministic corpus: four house sales within
// the trailing year around SydneyPoint.
func SydneyHouseSales() []sales.PropertySale {
	return []sales.PropertySale{
		HouseSale("1", 800000, 600, 1),
		HouseSale("2", 850000, 600, 3),
		HouseSale("3", 780000, 600, 6),
		HouseSale("4", 900000, 600, 10),
	}
}
