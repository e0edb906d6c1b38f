package planning

import (
	"context"

	"github.com/landgauge/landgauge/pkg/types/geo"
)

// OverlayQuery bounds an overlay lookup.
type OverlayQuery struct {
	Point           geo.Coordinates
	HeritageRadiusM int
}

// DefaultHeritageRadiusM is used when an overlay query leaves the radius
// unset.
const DefaultHeritageRadiusM = 100

// JurisdictionResolver turns a point into normalized planning data for one
// state.  Implementations live in the infrastructure layer; resolvers must
// degrade to defaults rather than fail when an upstream layer has no data for
// the point.
type JurisdictionResolver interface {
	// State reports the jurisdiction this resolver serves.
	State() State

	// ResolveZoning returns the zoning record for a point.  A point outside
	// every mapped zoning layer yields the jurisdiction's fallback record,
	// not an error.
	ResolveZoning(ctx context.Context, point geo.Coordinates) (*ZoningInfo, error)

	// ResolveControls returns the development controls for a point in the
	// given zone, finalized against the lot area when one is known.
	ResolveControls(ctx context.Context, point geo.Coordinates, zoneCode string, lotAreaSqm *float64) (*ControlsSet, error)

	// ResolveOverlays returns every overlay affecting the query point.
	ResolveOverlays(ctx context.Context, q OverlayQuery) (*OverlaySummary, error)
}
