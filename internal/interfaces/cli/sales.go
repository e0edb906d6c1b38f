package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/landgauge/landgauge/internal/domain/sales"
	"github.com/landgauge/landgauge/pkg/errors"
	"github.com/landgauge/landgauge/pkg/types/geo"
)

func newSalesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sales",
		Short: "Query the property sales corpus",
	}
	cmd.AddCommand(
		newSalesSearchCommand(),
		newSalesStatsCommand(),
		newComparablesCommand(),
	)
	return cmd
}

type salesFilterOptions struct {
	lat         float64
	lon         float64
	radiusM     float64
	types       []string
	minPrice    int64
	maxPrice    int64
	minLandArea float64
	maxLandArea float64
	soldAfter   string
	soldBefore  string
}

func (o *salesFilterOptions) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64Var(&o.lat, "lat", 0, "search center latitude")
	f.Float64Var(&o.lon, "lon", 0, "search center longitude")
	f.Float64Var(&o.radiusM, "radius", 0, "search radius in metres")
	f.StringSliceVar(&o.types, "type", nil, "property types (house, unit, townhouse, land, other)")
	f.Int64Var(&o.minPrice, "min-price", 0, "minimum sale price")
	f.Int64Var(&o.maxPrice, "max-price", 0, "maximum sale price")
	f.Float64Var(&o.minLandArea, "min-land-area", 0, "minimum land area in square metres")
	f.Float64Var(&o.maxLandArea, "max-land-area", 0, "maximum land area in square metres")
	f.StringVar(&o.soldAfter, "sold-after", "", "earliest contract date (YYYY-MM-DD)")
	f.StringVar(&o.soldBefore, "sold-before", "", "latest contract date (YYYY-MM-DD)")
}

func (o *salesFilterOptions) query() (*sales.SearchQuery, error) {
	q := &sales.SearchQuery{RadiusM: o.radiusM}

	if o.lat != 0 || o.lon != 0 {
		q.Center = &geo.Coordinates{Lat: o.lat, Lon: o.lon}
	}
	for _, t := range o.types {
		pt, err := sales.ParsePropertyType(t)
		if err != nil {
			return nil, err
		}
		q.PropertyType = append(q.PropertyType, pt)
	}
	if o.minPrice > 0 {
		q.MinPrice = &o.minPrice
	}
	if o.maxPrice > 0 {
		q.MaxPrice = &o.maxPrice
	}
	if o.minLandArea > 0 {
		q.MinLandArea = &o.minLandArea
	}
	if o.maxLandArea > 0 {
		q.MaxLandArea = &o.maxLandArea
	}

	var err error
	if q.SoldAfter, err = parseDateFlag(o.soldAfter, "sold-after"); err != nil {
		return nil, err
	}
	if q.SoldBefore, err = parseDateFlag(o.soldBefore, "sold-before"); err != nil {
		return nil, err
	}
	return q, nil
}

func parseDateFlag(value, name string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, errors.InvalidParam("invalid date, expected YYYY-MM-DD").WithDetail(name)
	}
	return &t, nil
}

func newSalesSearchCommand() *cobra.Command {
	filters := &salesFilterOptions{}
	var (
		sortBy   string
		sortDesc bool
		limit    int
		offset   int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search sales with filters, sorting, and pagination",
		Example: `  landgauge sales search --lat -33.87 --lon 151.21 --radius 2000 --type house
  landgauge sales search --min-price 500000 --max-price 900000 --sort sale_price --desc`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := getCLIContext(cmd)
			ctx := cmd.Context()

			q, err := filters.query()
			if err != nil {
				return err
			}
			q.SortBy = sales.SortField(sortBy)
			q.SortDesc = sortDesc
			q.Limit = limit
			q.Offset = offset

			svc, cleanup, err := buildValuationService(ctx, cc)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := svc.Search(ctx, q)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}

	filters.register(cmd)
	f := cmd.Flags()
	f.StringVar(&sortBy, "sort", "", "sort field (contract_date, sale_price, land_area_sqm)")
	f.BoolVar(&sortDesc, "desc", false, "sort descending")
	f.IntVar(&limit, "limit", 0, "page size (default 50)")
	f.IntVar(&offset, "offset", 0, "page offset")
	return cmd
}

func newSalesStatsCommand() *cobra.Command {
	filters := &salesFilterOptions{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the market for an area",
		Example: `  landgauge sales stats --lat -33.87 --lon 151.21 --radius 2000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := getCLIContext(cmd)
			ctx := cmd.Context()

			q, err := filters.query()
			if err != nil {
				return err
			}

			svc, cleanup, err := buildValuationService(ctx, cc)
			if err != nil {
				return err
			}
			defer cleanup()

			stats, err := svc.Statistics(ctx, q)
			if err != nil {
				return err
			}
			return printJSON(cmd, stats)
		},
	}

	filters.register(cmd)
	return cmd
}

func newComparablesCommand() *cobra.Command {
	var (
		lat          float64
		lon          float64
		propertyType string
		landAreaSqm  float64
		radiusM      float64
		maxAgeMonths int
		limit        int
	)

	cmd := &cobra.Command{
		Use:   "comparables",
		Short: "Rank comparable sales and estimate a value band for a target",
		Example: `  landgauge sales comparables --lat -33.87 --lon 151.21 --type house --land-area 600`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := getCLIContext(cmd)
			ctx := cmd.Context()

			q := sales.ComparableQuery{
				Point:        geo.Coordinates{Lat: lat, Lon: lon},
				RadiusM:      radiusM,
				MaxAgeMonths: maxAgeMonths,
				Limit:        limit,
			}
			if propertyType != "" {
				pt, err := sales.ParsePropertyType(propertyType)
				if err != nil {
					return err
				}
				q.PropertyType = pt
			}
			if landAreaSqm > 0 {
				q.LandAreaSqm = &landAreaSqm
			}

			svc, cleanup, err := buildValuationService(ctx, cc)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := svc.Comparables(ctx, q)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&lat, "lat", 0, "target latitude")
	f.Float64Var(&lon, "lon", 0, "target longitude")
	f.StringVar(&propertyType, "type", "", "target property type")
	f.Float64Var(&landAreaSqm, "land-area", 0, "target land area in square metres")
	f.Float64Var(&radiusM, "radius", 0, "candidate radius in metres (default 2000)")
	f.IntVar(&maxAgeMonths, "max-age-months", 0, "maximum sale age in months (default 24)")
	f.IntVar(&limit, "limit", 0, "number of comparables to return (default 10)")

	cobra.CheckErr(cmd.MarkFlagRequired("lat"))
	cobra.CheckErr(cmd.MarkFlagRequired("lon"))
	return cmd
}
