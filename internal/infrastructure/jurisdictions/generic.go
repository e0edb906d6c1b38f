package jurisdictions

import (
	"context"
	"fmt"

	"github.com/landgauge/landgauge/internal/domain/planning"
	"github.com/landgauge/landgauge/internal/infrastructure/monitoring/logging"
	"github.com/landgauge/landgauge/pkg/types/geo"
)

// genericResolver serves states without mapped spatial services.  It returns
// labelled defaults so an analysis still completes, with the lowered
// confidence applied by the caller.
type genericResolver struct {
	state  planning.State
	logger logging.Logger
}

// NewGenericResolver creates the fallback resolver for a state.
func NewGenericResolver(state planning.State, log logging.Logger) planning.JurisdictionResolver {
	return &genericResolver{state: state, logger: log}
}

func (r *genericResolver) State() planning.State { return r.state }

func (r *genericResolver) ResolveZoning(_ context.Context, _ geo.Coordinates) (*planning.ZoningInfo, error) {
	r.logger.Debug("serving fallback zoning", logging.String("state", string(r.state)))
	return &planning.ZoningInfo{
		ZoneCode:       "Unknown",
		ZoneName:       "Zoning data not available",
		ZoneCategory:   planning.CategorySpecialPurpose,
		Description:    "Zoning data for this state is not yet available. Please check local council planning portal.",
		PermittedUses:  []string{},
		ProhibitedUses: []string{},
		Objectives:     []string{},
		Source:         fmt.Sprintf("%s Planning Portal", r.state),
	}, nil
}

func (r *genericResolver) ResolveControls(_ context.Context, _ geo.Coordinates, zoneCode string, lotAreaSqm *float64) (*planning.ControlsSet, error) {
	controls := planning.DefaultControls(zoneCode)
	controls.Finalize(lotAreaSqm)
	return controls, nil
}

func (r *genericResolver) ResolveOverlays(_ context.Context, _ planning.OverlayQuery) (*planning.OverlaySummary, error) {
	return planning.NewOverlaySummary([]planning.HazardOverlay{}, []planning.EnvironmentalOverlay{}, []planning.HeritageItem{}), nil
}
