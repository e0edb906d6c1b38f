package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/landgauge/landgauge/internal/domain/sales"
	"github.com/landgauge/landgauge/internal/infrastructure/monitoring/logging"
	"github.com/landgauge/landgauge/pkg/errors"
)

// SalesStore persists and queries the property sales corpus.
type SalesStore struct {
	db     *sql.DB
	logger logging.Logger
}

// NewSalesStore creates the store over an established connection.
func NewSalesStore(conn *Connection, log logging.Logger) *SalesStore {
	return &SalesStore{db: conn.DB(), logger: log}
}

const salesColumns = `id, dealing_number, address, suburb, postcode, lga_name,
	lat, lon, property_type, land_area_sqm, sale_price, contract_date,
	settlement_date, sale_type, price_per_sqm, bedrooms, bathrooms,
	car_spaces, building_area_sqm, source`

// Upsert writes one sale record, replacing any existing row with the same id.
func (s *SalesStore) Upsert(ctx context.Context, sale *sales.PropertySale) error {
	query := `
		INSERT INTO property_sales (` + salesColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		ON CONFLICT (id) DO UPDATE SET
			address = EXCLUDED.address,
			sale_price = EXCLUDED.sale_price,
			contract_date = EXCLUDED.contract_date,
			settlement_date = EXCLUDED.settlement_date,
			price_per_sqm = EXCLUDED.price_per_sqm,
			source = EXCLUDED.source`

	_, err := s.db.ExecContext(ctx, query,
		sale.ID, nullString(sale.DealingNumber), sale.Address,
		nullString(sale.Suburb), nullString(sale.Postcode), nullString(sale.LGAName),
		sale.Point.Lat, sale.Point.Lon, string(sale.PropertyType),
		nullFloat(sale.LandAreaSqm), sale.SalePrice, sale.ContractDate,
		nullTime(sale.SettlementDate), string(sale.SaleType),
		nullFloat(sale.PricePerSqm), nullInt(sale.Bedrooms), nullInt(sale.Bathrooms),
		nullInt(sale.CarSpaces), nullFloat(sale.BuildingAreaSqm), nullString(sale.Source))
	if err != nil {
		return errors.Wrap(err, errors.CodeSalesStoreError, "upsert sale").WithDetail(sale.ID)
	}
	return nil
}

// Search returns the page of sales matching the query and the total match
// count before pagination.
func (s *SalesStore) Search(ctx context.Context, q *sales.SearchQuery) ([]sales.PropertySale, int, error) {
	where, args := buildSalesWhere(q)

	var total int
	countSQL := "SELECT COUNT(*) FROM property_sales" + where
	if err := s.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeSalesStoreError, "count sales")
	}

	querySQL := "SELECT " + salesColumns + " FROM property_sales" + where +
		buildSalesOrder(q) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, q.Limit, q.Offset)

	rows, err := s.db.QueryContext(ctx, querySQL, args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeSalesStoreError, "query sales")
	}
	defer rows.Close()

	result := []sales.PropertySale{}
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *sale)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, errors.CodeSalesStoreError, "iterate sales")
	}

	s.logger.Debug("sales search completed",
		logging.Int("matches", total), logging.Int("returned", len(result)))
	return result, total, nil
}

// maxUnpagedRows caps unpaginated pulls feeding statistics and ranking.
const maxUnpagedRows = 10000

// All returns every sale matching the query without pagination, bounded by
// limit.  A non-positive limit means up to maxUnpagedRows.
func (s *SalesStore) All(ctx context.Context, q *sales.SearchQuery, limit int) ([]sales.PropertySale, error) {
	if limit <= 0 || limit > maxUnpagedRows {
		limit = maxUnpagedRows
	}
	unpaged := *q
	unpaged.Limit = limit
	unpaged.Offset = 0
	result, _, err := s.Search(ctx, &unpaged)
	return result, err
}

// buildSalesWhere renders the WHERE clause for a search query.  Radius
// filtering uses the haversine distance evaluated in SQL, prefiltered by a
// bounding box so the lat/lon index can participate.
func buildSalesWhere(q *sales.SearchQuery) (string, []any) {
	clauses := []string{}
	args := []any{}

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Center != nil && q.RadiusM > 0 {
		latDelta := q.RadiusM / 111000.0
		lat := arg(q.Center.Lat)
		lon := arg(q.Center.Lon)
		radius := arg(q.RadiusM)
		latDeltaP := arg(latDelta)

		clauses = append(clauses,
			fmt.Sprintf("lat BETWEEN %s - %s AND %s + %s", lat, latDeltaP, lat, latDeltaP),
			fmt.Sprintf(
				"2 * 6371000 * asin(sqrt(power(sin(radians(lat - %s) / 2), 2) + cos(radians(%s)) * cos(radians(lat)) * power(sin(radians(lon - %s) / 2), 2))) <= %s",
				lat, lat, lon, radius))
	}
	if len(q.PropertyType) > 0 {
		placeholders := make([]string, len(q.PropertyType))
		for i, pt := range q.PropertyType {
			placeholders[i] = arg(string(pt))
		}
		clauses = append(clauses, "property_type IN ("+strings.Join(placeholders, ", ")+")")
	}
	if q.MinPrice != nil {
		clauses = append(clauses, "sale_price >= "+arg(*q.MinPrice))
	}
	if q.MaxPrice != nil {
		clauses = append(clauses, "sale_price <= "+arg(*q.MaxPrice))
	}
	if q.MinLandArea != nil {
		clauses = append(clauses, "COALESCE(land_area_sqm, 0) >= "+arg(*q.MinLandArea))
	}
	if q.MaxLandArea != nil {
		clauses = append(clauses, "COALESCE(land_area_sqm, 0) <= "+arg(*q.MaxLandArea))
	}
	if q.SoldAfter != nil {
		clauses = append(clauses, "contract_date >= "+arg(*q.SoldAfter))
	}
	if q.SoldBefore != nil {
		clauses = append(clauses, "contract_date <= "+arg(*q.SoldBefore))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// buildSalesOrder renders the ORDER BY clause.  Ties break on id so pages
// are stable.
func buildSalesOrder(q *sales.SearchQuery) string {
	column := ""
	switch q.SortBy {
	case sales.SortByContractDate:
		column = "contract_date"
	case sales.SortBySalePrice:
		column = "sale_price"
	case sales.SortByLandArea:
		column = "COALESCE(land_area_sqm, 0)"
	default:
		return " ORDER BY contract_date DESC, id"
	}
	direction := "ASC"
	if q.SortDesc {
		direction = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id", column, direction)
}

func scanSale(rows *sql.Rows) (*sales.PropertySale, error) {
	var (
		sale           sales.PropertySale
		dealingNumber  sql.NullString
		suburb         sql.NullString
		postcode       sql.NullString
		lgaName        sql.NullString
		propertyType   string
		landArea       sql.NullFloat64
		settlementDate sql.NullTime
		saleType       string
		pricePerSqm    sql.NullFloat64
		bedrooms       sql.NullInt64
		bathrooms      sql.NullInt64
		carSpaces      sql.NullInt64
		buildingArea   sql.NullFloat64
		source         sql.NullString
	)

	err := rows.Scan(&sale.ID, &dealingNumber, &sale.Address, &suburb, &postcode, &lgaName,
		&sale.Point.Lat, &sale.Point.Lon, &propertyType, &landArea, &sale.SalePrice,
		&sale.ContractDate, &settlementDate, &saleType, &pricePerSqm,
		&bedrooms, &bathrooms, &carSpaces, &buildingArea, &source)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSalesStoreError, "scan sale row")
	}

	sale.DealingNumber = dealingNumber.String
	sale.Suburb = suburb.String
	sale.Postcode = postcode.String
	sale.LGAName = lgaName.String
	sale.PropertyType = sales.PropertyType(propertyType)
	sale.SaleType = sales.SaleType(saleType)
	sale.Source = source.String
	if landArea.Valid {
		sale.LandAreaSqm = &landArea.Float64
	}
	if settlementDate.Valid {
		sale.SettlementDate = &settlementDate.Time
	}
	if pricePerSqm.Valid {
		sale.PricePerSqm = &pricePerSqm.Float64
	}
	sale.Bedrooms = nullableInt(bedrooms)
	sale.Bathrooms = nullableInt(bathrooms)
	sale.CarSpaces = nullableInt(carSpaces)
	if buildingArea.Valid {
		sale.BuildingAreaSqm = &buildingArea.Float64
	}
	return &sale, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
