// Package sales holds the property sales data model, the comparable sales
// scoring engine, and the market statistics engine.  All computation is pure;
// corpus access lives behind the application layer's provider interfaces.
package sales

import (
	"sort"
	"strings"
	"time"

	"github.com/landgauge/landgauge/pkg/errors"
	"github.com/landgauge/landgauge/pkg/types/geo"
)

// PropertyType classifies a sold property.
type PropertyType string

const (
	TypeHouse     PropertyType = "house"
	TypeUnit      PropertyType = "unit"
	TypeTownhouse PropertyType = "townhouse"
	TypeLand      PropertyType = "land"
	TypeOther     PropertyType = "other"
)

// ParsePropertyType normalizes and validates a property type string.
func ParsePropertyType(s string) (PropertyType, error) {
	pt := PropertyType(strings.ToLower(strings.TrimSpace(s)))
	switch pt {
	case TypeHouse, TypeUnit, TypeTownhouse, TypeLand, TypeOther:
		return pt, nil
	}
	return "", errors.InvalidParam("unknown property type").WithDetail(s)
}

// SaleType classifies how a sale was transacted.
type SaleType string

const (
	SaleNormal        SaleType = "normal"
	SaleAuction       SaleType = "auction"
	SalePrivateTreaty SaleType = "private_treaty"
)

// PropertySale is one recorded property transaction.
type PropertySale struct {
	ID              string          `json:"id"`
	DealingNumber   string          `json:"dealing_number,omitempty"`
	Address         string          `json:"address"`
	Suburb          string          `json:"suburb,omitempty"`
	Postcode        string          `json:"postcode,omitempty"`
	LGAName         string          `json:"lga_name,omitempty"`
	Point           geo.Coordinates `json:"point"`
	PropertyType    PropertyType    `json:"property_type"`
	LandAreaSqm     *float64        `json:"land_area_sqm,omitempty"`
	SalePrice       int64           `json:"sale_price"`
	ContractDate    time.Time       `json:"contract_date"`
	SettlementDate  *time.Time      `json:"settlement_date,omitempty"`
	SaleType        SaleType        `json:"sale_type"`
	PricePerSqm     *float64        `json:"price_per_sqm,omitempty"`
	Bedrooms        *int            `json:"bedrooms,omitempty"`
	Bathrooms       *int            `json:"bathrooms,omitempty"`
	CarSpaces       *int            `json:"car_spaces,omitempty"`
	BuildingAreaSqm *float64        `json:"building_area_sqm,omitempty"`
	Source          string          `json:"source,omitempty"`
}

// ComparableSale is a sale annotated with its similarity to a valuation
// target.
type ComparableSale struct {
	PropertySale

	SimilarityScore   float64 `json:"similarity_score"`
	DistanceM         float64 `json:"distance_m"`
	DaysSinceSale     int     `json:"days_since_sale"`
	TimeAdjustedPrice int64   `json:"time_adjusted_price"`
}

// MonthlyVolume is the sale count for one calendar month.
type MonthlyVolume struct {
	Month string `json:"month"` // YYYY-MM
	Count int    `json:"count"`
}

// SalesStatistics summarizes a set of sales.  Optional fields stay nil when
// the set is empty.
type SalesStatistics struct {
	TotalSales             int                  `json:"total_sales"`
	SalesLast12Months      int                  `json:"sales_last_12_months"`
	SalesLast3Months       int                  `json:"sales_last_3_months"`
	MedianPrice            *float64             `json:"median_price,omitempty"`
	AveragePrice           *float64             `json:"average_price,omitempty"`
	MinPrice               *int64               `json:"min_price,omitempty"`
	MaxPrice               *int64               `json:"max_price,omitempty"`
	MedianPrice12MonthsAgo *float64             `json:"median_price_12_months_ago,omitempty"`
	PriceChangePercent     *float64             `json:"price_change_percent,omitempty"`
	MedianPricePerSqm      *float64             `json:"median_price_per_sqm,omitempty"`
	AveragePricePerSqm     *float64             `json:"average_price_per_sqm,omitempty"`
	ByPropertyType         map[PropertyType]int `json:"by_property_type"`
	MonthlyVolumes         []MonthlyVolume      `json:"monthly_volumes"`
}

// SortField names a sortable sale attribute.
type SortField string

const (
	SortByContractDate SortField = "contract_date"
	SortBySalePrice    SortField = "sale_price"
	SortByLandArea     SortField = "land_area_sqm"
)

// SearchQuery filters, orders, and pages a sales search.  Zero-valued
// filters are inactive.
type SearchQuery struct {
	Center       *geo.Coordinates `json:"center,omitempty"`
	RadiusM      float64          `json:"radius_m"`
	PropertyType []PropertyType   `json:"property_type,omitempty"`
	MinPrice     *int64           `json:"min_price,omitempty"`
	MaxPrice     *int64           `json:"max_price,omitempty"`
	MinLandArea  *float64         `json:"min_land_area,omitempty"`
	MaxLandArea  *float64         `json:"max_land_area,omitempty"`
	SoldAfter    *time.Time       `json:"sold_after,omitempty"`
	SoldBefore   *time.Time       `json:"sold_before,omitempty"`
	SortBy       SortField        `json:"sort_by,omitempty"`
	SortDesc     bool             `json:"sort_desc"`
	Limit        int              `json:"limit"`
	Offset       int              `json:"offset"`
}

// DefaultSearchLimit bounds an unpaged search.
const DefaultSearchLimit = 50

// Normalize applies paging defaults and validates the query.
func (q *SearchQuery) Normalize() error {
	if q.Limit <= 0 {
		q.Limit = DefaultSearchLimit
	}
	if q.Offset < 0 {
		return errors.InvalidParam("offset must not be negative")
	}
	if q.Center != nil {
		if err := q.Center.Validate(); err != nil {
			return err
		}
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return errors.InvalidParam("min_price exceeds max_price")
	}
	return nil
}

// Matches reports whether a sale passes every active filter.  The spatial
// radius is not checked here; spatial filtering happens where coordinates are
// indexed.
func (q *SearchQuery) Matches(sale *PropertySale) bool {
	if len(q.PropertyType) > 0 {
		found := false
		for _, pt := range q.PropertyType {
			if sale.PropertyType == pt {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q.MinPrice != nil && sale.SalePrice < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && sale.SalePrice > *q.MaxPrice {
		return false
	}
	landArea := 0.0
	if sale.LandAreaSqm != nil {
		landArea = *sale.LandAreaSqm
	}
	if q.MinLandArea != nil && landArea < *q.MinLandArea {
		return false
	}
	if q.MaxLandArea != nil && landArea > *q.MaxLandArea {
		return false
	}
	if q.SoldAfter != nil && sale.ContractDate.Before(*q.SoldAfter) {
		return false
	}
	if q.SoldBefore != nil && sale.ContractDate.After(*q.SoldBefore) {
		return false
	}
	return true
}

// SortSales orders sales in place by the given field.  An unknown field
// leaves the order untouched.
func SortSales(sales []PropertySale, field SortField, desc bool) {
	var less func(a, b *PropertySale) bool
	switch field {
	case SortByContractDate:
		less = func(a, b *PropertySale) bool { return a.ContractDate.Before(b.ContractDate) }
	case SortBySalePrice:
		less = func(a, b *PropertySale) bool { return a.SalePrice < b.SalePrice }
	case SortByLandArea:
		less = func(a, b *PropertySale) bool {
			av, bv := 0.0, 0.0
			if a.LandAreaSqm != nil {
				av = *a.LandAreaSqm
			}
			if b.LandAreaSqm != nil {
				bv = *b.LandAreaSqm
			}
			return av < bv
		}
	default:
		return
	}
	sort.SliceStable(sales, func(i, j int) bool {
		if desc {
			return less(&sales[j], &sales[i])
		}
		return less(&sales[i], &sales[j])
	})
}

// Page slices sales to the query's offset and limit.
func Page(sales []PropertySale, offset, limit int) []PropertySale {
	if offset >= len(sales) {
		return []PropertySale{}
	}
	end := offset + limit
	if end > len(sales) {
		end = len(sales)
	}
	return sales[offset:end]
}

// SearchResult is a paged sales search outcome with corpus-wide statistics.
type SearchResult struct {
	Total int              `json:"total"`
	Sales []PropertySale   `json:"sales"`
	Stats *SalesStatistics `json:"stats,omitempty"`
}

// ComparableQuery describes a valuation target.
type ComparableQuery struct {
	Point        geo.Coordinates `json:"point"`
	PropertyType PropertyType    `json:"property_type,omitempty"`
	LandAreaSqm  *float64        `json:"land_area_sqm,omitempty"`
	RadiusM      float64         `json:"radius_m"`
	MaxAgeMonths int             `json:"max_age_months"`
	Limit        int             `json:"limit"`
}

// Comparable query defaults.
const (
	DefaultComparableRadiusM = 2000.0
	DefaultMaxAgeMonths      = 24
	DefaultComparableLimit   = 10
)

// Normalize applies defaults and validates the query.
func (q *ComparableQuery) Normalize() error {
	if err := q.Point.Validate(); err != nil {
		return err
	}
	if q.RadiusM <= 0 {
		q.RadiusM = DefaultComparableRadiusM
	}
	if q.MaxAgeMonths <= 0 {
		q.MaxAgeMonths = DefaultMaxAgeMonths
	}
	if q.Limit <= 0 {
		q.Limit = DefaultComparableLimit
	}
	return nil
}

// Valuation is the estimated value band derived from comparables.  All
// fields stay nil when no comparable carries an adjusted price.
type Valuation struct {
	Low        *int64   `json:"low,omitempty"`
	Mid        *int64   `json:"mid,omitempty"`
	High       *int64   `json:"high,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// ComparableResult is the full comparable sales analysis for a target.
type ComparableResult struct {
	Target      geo.Coordinates  `json:"target"`
	Comparables []ComparableSale `json:"comparables"`
	Valuation   Valuation        `json:"valuation"`
	MarketStats *SalesStatistics `json:"market_stats,omitempty"`
}
