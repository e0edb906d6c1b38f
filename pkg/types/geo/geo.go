// Package geo provides the shared geographic value types and distance math
// used by the planning resolvers and the comparable-sales engine.  All
// coordinates are WGS84 decimal degrees; all distances are meters.
package geo

import (
	"fmt"
	"math"

	"github.com/landgauge/landgauge/pkg/errors"
)

// EarthRadiusM is the mean Earth radius used for great-circle distance.
const EarthRadiusM = 6371000.0

// Coordinates is an immutable WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks that the point lies within valid WGS84 bounds.  Rejections
// carry CodeCoordinateOutOfRange so callers can treat them as input errors.
func (c Coordinates) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return errors.New(errors.CodeCoordinateOutOfRange, "latitude out of range [-90, 90]").
			WithDetail(fmt.Sprintf("lat=%.6f", c.Lat))
	}
	if c.Lon < -180 || c.Lon > 180 {
		return errors.New(errors.CodeCoordinateOutOfRange, "longitude out of range [-180, 180]").
			WithDetail(fmt.Sprintf("lon=%.6f", c.Lon))
	}
	return nil
}

// BoundingBox is a WGS84 axis-aligned rectangle.
type BoundingBox struct {
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	North float64 `json:"north"`
}

// Contains reports whether the point lies within the box (inclusive).
func (b BoundingBox) Contains(c Coordinates) bool {
	return c.Lon >= b.West && c.Lon <= b.East && c.Lat >= b.South && c.Lat <= b.North
}

// HaversineDistance returns the great-circle distance in meters between two
// points on a sphere of radius EarthRadiusM.  It is symmetric and returns
// zero iff the points are identical.
func HaversineDistance(a, b Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusM * c
}
