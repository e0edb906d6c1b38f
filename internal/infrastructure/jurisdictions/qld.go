package jurisdictions

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/landgauge/landgauge/internal/domain/planning"
	"github.com/landgauge/landgauge/internal/infrastructure/geoquery"
	"github.com/landgauge/landgauge/internal/infrastructure/monitoring/logging"
	"github.com/landgauge/landgauge/pkg/types/geo"
)

// QLD government and Brisbane City Council spatial services.
const (
	qldPlanningAPI = "https://spatial-gis.information.qld.gov.au/arcgis/rest/services"
	qldLGALayer    = "PlanningCadastre/LandParcelPropertyFramework/MapServer/20"
	qldLandUseAPI  = "PlanningCadastre/LandUse/MapServer/0"
	qldFloodLayer  = "FloodCheck/FloodStudies/MapServer/0"
	qldMSESLayer   = "Environment/MattersOfStateEnvironmentalSignificance/MapServer/0"
	qldKoalaLayer  = "Environment/KoalaPlan/MapServer/0"

	bccPlanningAPI  = "https://gisservices.brisbane.qld.gov.au/arcgis/rest/services"
	bccZoningLayer  = "OpenData/OpenData_PlanningScheme/MapServer/3"
	bccSchemeSource = "Brisbane City Council Planning Scheme"
)

// qldResolver resolves planning data from the Queensland spatial framework.
// Zoning resolution is layered: the Brisbane City Council planning scheme
// when the point falls in Brisbane, then the statewide QLUMP land use
// classification, then a labelled fallback.
type qldResolver struct {
	gateway geoquery.Service
	logger  logging.Logger
}

// NewQLDResolver creates the QLD resolver.
func NewQLDResolver(gateway geoquery.Service, log logging.Logger) planning.JurisdictionResolver {
	return &qldResolver{gateway: gateway, logger: log}
}

func (r *qldResolver) State() planning.State { return planning.StateQLD }

func (r *qldResolver) ResolveZoning(ctx context.Context, point geo.Coordinates) (*planning.ZoningInfo, error) {
	lgaName := r.lookupLGA(ctx, point)

	if strings.Contains(strings.ToUpper(lgaName), "BRISBANE") {
		if zoning := r.brisbaneZoning(ctx, point, lgaName); zoning != nil {
			return zoning, nil
		}
	}

	if zoning := r.landUseZoning(ctx, point, lgaName); zoning != nil {
		return zoning, nil
	}

	return planning.UnknownZoning(planning.StateQLD, lgaName), nil
}

func (r *qldResolver) lookupLGA(ctx context.Context, point geo.Coordinates) string {
	records, err := r.gateway.QueryPoint(ctx, geoquery.Query{
		BaseURL: qldPlanningAPI, Layer: qldLGALayer, Point: point,
		OutFields: "lga,abbrev_name,adminareaname",
	})
	if err != nil {
		r.logger.Warn("lga layer query failed", logging.Err(err))
		return ""
	}
	if len(records) == 0 {
		return ""
	}
	return records[0].FirstString("lga", "adminareaname", "abbrev_name")
}

func (r *qldResolver) brisbaneZoning(ctx context.Context, point geo.Coordinates, lgaName string) *planning.ZoningInfo {
	records, err := r.gateway.QueryPoint(ctx, geoquery.Query{
		BaseURL: bccPlanningAPI, Layer: bccZoningLayer, Point: point, OutFields: "*",
	})
	if err != nil {
		r.logger.Warn("brisbane zoning query failed", logging.Err(err))
		return nil
	}
	if len(records) == 0 {
		return nil
	}

	attrs := records[0]
	zoneCode := attrs.FirstString("ZONE_CODE", "Zone_Code")
	if zoneCode == "" {
		zoneCode = "Unknown"
	}
	zoneName := attrs.FirstString("ZONE_NAME", "Zone_Name")
	if zoneName == "" {
		zoneName = "Unknown"
	}
	if lgaName == "" {
		lgaName = "Brisbane City Council"
	}

	return &planning.ZoningInfo{
		ZoneCode:       zoneCode,
		ZoneName:       zoneName,
		ZoneCategory:   planning.ClassifyZone(zoneCode),
		PermittedUses:  planning.PermittedUses(planning.StateQLD, zoneCode),
		ProhibitedUses: []string{},
		Objectives:     planning.ZoneObjectives(planning.StateQLD, zoneCode),
		LGAName:        lgaName,
		Source:         bccSchemeSource,
	}
}

func (r *qldResolver) landUseZoning(ctx context.Context, point geo.Coordinates, lgaName string) *planning.ZoningInfo {
	records, err := r.gateway.QueryPoint(ctx, geoquery.Query{
		BaseURL: qldPlanningAPI, Layer: qldLandUseAPI, Point: point,
		OutFields: "primary_,secondary,tertiary,qlump_code",
	})
	if err != nil {
		r.logger.Warn("land use layer query failed", logging.Err(err))
		return nil
	}
	if len(records) == 0 {
		return nil
	}

	primary := records[0].FirstString("primary_", "PRIMARY_")
	if primary == "" {
		primary = "Unknown"
	}
	zoneCode := planning.LandUseToZone(primary)

	return &planning.ZoningInfo{
		ZoneCode:       zoneCode,
		ZoneName:       fmt.Sprintf("%s (Land Use Classification)", primary),
		ZoneCategory:   planning.ClassifyZone(zoneCode),
		Description:    "Zoning based on Queensland Land Use Mapping Program. Check local council planning scheme for specific zoning.",
		PermittedUses:  planning.PermittedUses(planning.StateQLD, zoneCode),
		ProhibitedUses: []string{},
		Objectives:     []string{},
		LGAName:        lgaName,
		Source:         "QLUMP Land Use Classification",
	}
}

// ResolveControls serves zone defaults; QLD planning scheme codes are not
// mapped as statewide numeric layers the way NSW's are.
func (r *qldResolver) ResolveControls(_ context.Context, _ geo.Coordinates, zoneCode string, lotAreaSqm *float64) (*planning.ControlsSet, error) {
	controls := planning.DefaultControls(zoneCode)
	controls.Finalize(lotAreaSqm)
	return controls, nil
}

func (r *qldResolver) ResolveOverlays(ctx context.Context, q planning.OverlayQuery) (*planning.OverlaySummary, error) {
	var flood, mses, koala *planning.HazardOverlay

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { flood = r.floodOverlay(gctx, q.Point); return nil })
	g.Go(func() error { mses = r.msesOverlay(gctx, q.Point); return nil })
	g.Go(func() error { koala = r.koalaOverlay(gctx, q.Point); return nil })
	_ = g.Wait()

	hazards := []planning.HazardOverlay{}
	for _, h := range []*planning.HazardOverlay{flood, mses, koala} {
		if h != nil {
			hazards = append(hazards, *h)
		}
	}

	return planning.NewOverlaySummary(hazards, []planning.EnvironmentalOverlay{}, []planning.HeritageItem{}), nil
}

func (r *qldResolver) floodOverlay(ctx context.Context, point geo.Coordinates) *planning.HazardOverlay {
	records, err := r.gateway.QueryPoint(ctx, geoquery.Query{
		BaseURL: qldPlanningAPI, Layer: qldFloodLayer, Point: point, OutFields: "*",
	})
	if err != nil {
		r.logger.Warn("flood layer query failed", logging.Err(err))
		return nil
	}
	if len(records) == 0 {
		return nil
	}

	return &planning.HazardOverlay{
		HazardType:  planning.HazardFlood,
		Category:    records[0].FirstString("Study_Name", "STUDY_NAME"),
		Level:       planning.HazardMedium,
		Name:        "Flood Study Area",
		Description: "Property is within a mapped flood study area",
		PlanningImplications: []string{
			"May be subject to flood overlay codes in local planning scheme",
			"Minimum floor level requirements may apply",
			"Flood impact assessment may be required for development",
		},
		RequiredAssessments: []string{"Flood Impact Assessment"},
		Source:              "QLD FloodCheck",
	}
}

func (r *qldResolver) msesOverlay(ctx context.Context, point geo.Coordinates) *planning.HazardOverlay {
	records, err := r.gateway.QueryPoint(ctx, geoquery.Query{
		BaseURL: qldPlanningAPI, Layer: qldMSESLayer, Point: point, OutFields: "*",
	})
	if err != nil {
		r.logger.Warn("mses layer query failed", logging.Err(err))
		return nil
	}
	if len(records) == 0 {
		return nil
	}

	return &planning.HazardOverlay{
		HazardType:  planning.HazardContamination,
		Level:       planning.HazardMedium,
		Name:        "Matter of State Environmental Significance",
		Description: "Property contains or is near a Matter of State Environmental Significance",
		PlanningImplications: []string{
			"State code assessment may be required",
			"Environmental assessment likely required",
			"Vegetation clearing restrictions may apply",
		},
		RequiredAssessments: []string{"Environmental Assessment"},
		Source:              "QLD MSES",
	}
}

func (r *qldResolver) koalaOverlay(ctx context.Context, point geo.Coordinates) *planning.HazardOverlay {
	records, err := r.gateway.QueryPoint(ctx, geoquery.Query{
		BaseURL: qldPlanningAPI, Layer: qldKoalaLayer, Point: point, OutFields: "*",
	})
	if err != nil {
		r.logger.Warn("koala layer query failed", logging.Err(err))
		return nil
	}
	if len(records) == 0 {
		return nil
	}

	return &planning.HazardOverlay{
		HazardType:  planning.HazardContamination,
		Level:       planning.HazardMedium,
		Name:        "Koala Habitat Area",
		Description: "Property is within a mapped koala habitat area",
		PlanningImplications: []string{
			"Koala habitat assessment required",
			"Development may require koala-sensitive design",
			"Vegetation clearing restrictions apply",
		},
		RequiredAssessments: []string{"Koala Habitat Assessment"},
		Source:              "QLD Koala Plan",
	}
}
