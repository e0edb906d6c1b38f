// Package geoquery talks to ArcGIS REST feature services and normalizes
// their responses into attribute records.  Jurisdiction resolvers sit on top
// of this package and interpret the attributes.
package geoquery

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/landgauge/landgauge/pkg/types/geo"
)

// Record is one feature's attribute map.
type Record map[string]any

// String returns the attribute as a string, or "" when absent or null.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", s)
	}
}

// FirstString returns the first non-empty value across the given keys.
// ArcGIS layers are inconsistent about attribute casing, so callers pass
// several spellings.
func (r Record) FirstString(keys ...string) string {
	for _, key := range keys {
		if s := r.String(key); s != "" {
			return s
		}
	}
	return ""
}

// Float parses the attribute as a number, stripping unit suffixes such as
// "m", "sqm", ":1", and thousands separators.  Returns false when the
// attribute is absent or unparseable.
func (r Record) Float(key string) (float64, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	if f, ok := v.(float64); ok {
		return f, true
	}
	s := strings.TrimSpace(r.String(key))
	for _, suffix := range []string{":1", "sqm", "m"} {
		s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
	}
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// FirstFloat returns the first parseable numeric value across the given
// keys.
func (r Record) FirstFloat(keys ...string) (float64, bool) {
	for _, key := range keys {
		if f, ok := r.Float(key); ok {
			return f, true
		}
	}
	return 0, false
}

// Query identifies one point-in-polygon lookup against a feature layer.
type Query struct {
	// BaseURL is the ArcGIS services root, e.g.
	// "https://mapprod3.environment.nsw.gov.au/arcgis/rest/services".
	BaseURL string
	// Layer is the service path including the layer index, e.g.
	// "ePlanning/Planning_Portal_Principal_Planning/MapServer/19".
	Layer string
	// Point is the query location in WGS84.
	Point geo.Coordinates
	// OutFields lists the attributes to return; "*" returns everything.
	OutFields string
}

// CacheKey is stable across runs for the same logical query.
func (q Query) CacheKey() string {
	return fmt.Sprintf("geo:%s:%s:%.6f:%.6f:%s", q.BaseURL, q.Layer, q.Point.Lat, q.Point.Lon, q.OutFields)
}

// Service executes spatial queries.  Implementations must return an empty
// record slice, not an error, when the point intersects no feature.
type Service interface {
	QueryPoint(ctx context.Context, q Query) ([]Record, error)
}
