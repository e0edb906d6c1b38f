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

// NSW ePlanning spatial services.
const (
	nswPlanningAPI   = "https://mapprod3.environment.nsw.gov.au/arcgis/rest/services"
	nswZoningLayer   = "ePlanning/Planning_Portal_Principal_Planning/MapServer/19"
	nswHeightLayer   = "ePlanning/Planning_Portal_Principal_Planning/MapServer/14"
	nswFSRLayer      = "ePlanning/Planning_Portal_Principal_Planning/MapServer/11"
	nswLotSizeLayer  = "ePlanning/Planning_Portal_Principal_Planning/MapServer/22"
	nswHeritageLayer = "ePlanning/Planning_Portal_Principal_Planning/MapServer/16"
	nswFloodLayer    = "ePlanning/Planning_Portal_Hazard/MapServer/230"
	nswBushfireLayer = "ePlanning/Planning_Portal_Hazard/MapServer/229"
)

// nswResolver resolves planning data from the NSW ePlanning Spatial Viewer.
type nswResolver struct {
	gateway geoquery.Service
	logger  logging.Logger
}

// NewNSWResolver creates the NSW resolver.
func NewNSWResolver(gateway geoquery.Service, log logging.Logger) planning.JurisdictionResolver {
	return &nswResolver{gateway: gateway, logger: log}
}

func (r *nswResolver) State() planning.State { return planning.StateNSW }

func (r *nswResolver) ResolveZoning(ctx context.Context, point geo.Coordinates) (*planning.ZoningInfo, error) {
	records, err := r.gateway.QueryPoint(ctx, geoquery.Query{
		BaseURL:   nswPlanningAPI,
		Layer:     nswZoningLayer,
		Point:     point,
		OutFields: "SYM_CODE,LAY_CLASS,LGA_NAME,EPI_NAME,PURPOSE",
	})
	if err != nil {
		// Transport failure degrades to the no-data record, same as a miss.
		r.logger.Warn("zoning layer query failed", logging.Err(err))
		return planning.UnknownZoning(planning.StateNSW, ""), nil
	}
	if len(records) == 0 {
		return planning.UnknownZoning(planning.StateNSW, ""), nil
	}

	attrs := records[0]
	zoneCode := attrs.String("SYM_CODE")
	if zoneCode == "" {
		zoneCode = "Unknown"
	}

	epiName := attrs.String("EPI_NAME")
	if epiName == "" {
		epiName = "LEP"
	}

	return &planning.ZoningInfo{
		ZoneCode:       zoneCode,
		ZoneName:       attrs.FirstString("LAY_CLASS"),
		ZoneCategory:   planning.ClassifyZone(zoneCode),
		Description:    attrs.String("PURPOSE"),
		PermittedUses:  planning.PermittedUses(planning.StateNSW, zoneCode),
		ProhibitedUses: []string{},
		Objectives:     planning.ZoneObjectives(planning.StateNSW, zoneCode),
		LGAName:        attrs.String("LGA_NAME"),
		Source:         fmt.Sprintf("NSW ePlanning - %s", epiName),
	}, nil
}

// ResolveControls queries the height, FSR, and lot size layers concurrently,
// then fills gaps from the zone defaults.  A failed layer degrades to its
// default rather than failing the whole set.
func (r *nswResolver) ResolveControls(ctx context.Context, point geo.Coordinates, zoneCode string, lotAreaSqm *float64) (*planning.ControlsSet, error) {
	controls := &planning.ControlsSet{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		records, err := r.gateway.QueryPoint(gctx, geoquery.Query{
			BaseURL: nswPlanningAPI, Layer: nswHeightLayer, Point: point,
			OutFields: "MAX_B_H,MAX_B_H_M,UNITS",
		})
		if err != nil {
			r.logger.Warn("height layer query failed", logging.Err(err))
			return nil
		}
		if len(records) == 0 {
			return nil
		}
		if height, ok := records[0].FirstFloat("MAX_B_H_M", "MAX_B_H"); ok {
			controls.HeightLimit = &planning.DevelopmentControl{
				ControlType: planning.ControlHeight,
				Name:        "Maximum Building Height",
				MaxValue:    planning.Float(height),
				Unit:        "m",
			}
		}
		return nil
	})

	g.Go(func() error {
		records, err := r.gateway.QueryPoint(gctx, geoquery.Query{
			BaseURL: nswPlanningAPI, Layer: nswFSRLayer, Point: point,
			OutFields: "FSR,LAY_CLASS,LGA_NAME",
		})
		if err != nil {
			r.logger.Warn("fsr layer query failed", logging.Err(err))
			return nil
		}
		if len(records) == 0 {
			return nil
		}
		if fsr, ok := records[0].Float("FSR"); ok {
			controls.FSR = &planning.DevelopmentControl{
				ControlType: planning.ControlFSR,
				Name:        "Floor Space Ratio",
				MaxValue:    planning.Float(fsr),
				Unit:        "ratio",
			}
		}
		return nil
	})

	g.Go(func() error {
		records, err := r.gateway.QueryPoint(gctx, geoquery.Query{
			BaseURL: nswPlanningAPI, Layer: nswLotSizeLayer, Point: point,
			OutFields: "LOT_SIZE,LAY_CLASS,LGA_NAME",
		})
		if err != nil {
			r.logger.Warn("lot size layer query failed", logging.Err(err))
			return nil
		}
		if len(records) == 0 {
			return nil
		}
		if lotSize, ok := records[0].Float("LOT_SIZE"); ok {
			controls.LotSize = &planning.DevelopmentControl{
				ControlType: planning.ControlLotSize,
				Name:        "Minimum Lot Size",
				MinValue:    planning.Float(lotSize),
				Unit:        "sqm",
			}
		}
		return nil
	})

	// Layer goroutines swallow their own errors.
	_ = g.Wait()

	defaults := planning.DefaultControls(zoneCode)
	if controls.HeightLimit == nil {
		controls.HeightLimit = defaults.HeightLimit
	}
	if controls.FSR == nil {
		controls.FSR = defaults.FSR
	}
	controls.Setbacks = planning.DefaultSetbacks(zoneCode)
	controls.Finalize(lotAreaSqm)

	return controls, nil
}

func (r *nswResolver) ResolveOverlays(ctx context.Context, q planning.OverlayQuery) (*planning.OverlaySummary, error) {
	var (
		hazards  []planning.HazardOverlay
		heritage []planning.HeritageItem
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		flood := r.floodOverlay(gctx, q.Point)
		bushfire := r.bushfireOverlay(gctx, q.Point)
		if flood != nil {
			hazards = append(hazards, *flood)
		}
		if bushfire != nil {
			hazards = append(hazards, *bushfire)
		}
		return nil
	})

	g.Go(func() error {
		heritage = r.heritageItems(gctx, q.Point)
		return nil
	})

	_ = g.Wait()

	return planning.NewOverlaySummary(hazards, []planning.EnvironmentalOverlay{}, heritage), nil
}

func (r *nswResolver) floodOverlay(ctx context.Context, point geo.Coordinates) *planning.HazardOverlay {
	records, err := r.gateway.QueryPoint(ctx, geoquery.Query{
		BaseURL: nswPlanningAPI, Layer: nswFloodLayer, Point: point, OutFields: "LAY_CLASS",
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
		Category:    records[0].String("LAY_CLASS"),
		Level:       planning.HazardMedium,
		Name:        "Flood Planning Area",
		Description: "Property is within a flood planning area",
		PlanningImplications: []string{
			"Development consent required for most development",
			"Floor levels may need to be above flood planning level",
			"May require flood impact assessment",
		},
		RequiredAssessments: []string{"Flood Impact Assessment"},
		Source:              "NSW ePlanning",
	}
}

func (r *nswResolver) bushfireOverlay(ctx context.Context, point geo.Coordinates) *planning.HazardOverlay {
	records, err := r.gateway.QueryPoint(ctx, geoquery.Query{
		BaseURL: nswPlanningAPI, Layer: nswBushfireLayer, Point: point, OutFields: "Category",
	})
	if err != nil {
		r.logger.Warn("bushfire layer query failed", logging.Err(err))
		return nil
	}
	if len(records) == 0 {
		return nil
	}

	category := records[0].String("Category")
	level := planning.HazardMedium
	switch {
	case strings.Contains(category, "Flame"):
		level = planning.HazardExtreme
	case strings.Contains(category, "1"):
		level = planning.HazardHigh
	}

	return &planning.HazardOverlay{
		HazardType:  planning.HazardBushfire,
		Category:    category,
		Level:       level,
		Name:        "Bush Fire Prone Land",
		Description: fmt.Sprintf("Property is in a %s bushfire zone", category),
		PlanningImplications: []string{
			"Must comply with Planning for Bush Fire Protection",
			"BAL (Bushfire Attack Level) assessment required",
			"May require Asset Protection Zone",
		},
		RequiredAssessments: []string{
			"Bushfire Attack Level (BAL) Assessment",
			"Bushfire Emergency Management and Evacuation Plan",
		},
		Source: "NSW RFS",
	}
}

func (r *nswResolver) heritageItems(ctx context.Context, point geo.Coordinates) []planning.HeritageItem {
	records, err := r.gateway.QueryPoint(ctx, geoquery.Query{
		BaseURL: nswPlanningAPI, Layer: nswHeritageLayer, Point: point,
		OutFields: "H_NAME,H_ID,SIG,LAY_CLASS,LGA_NAME",
	})
	if err != nil {
		r.logger.Warn("heritage layer query failed", logging.Err(err))
		return nil
	}

	items := make([]planning.HeritageItem, 0, len(records))
	for _, attrs := range records {
		heritageType := planning.HeritageState
		if strings.Contains(strings.ToLower(attrs.String("LAY_CLASS")), "local") {
			heritageType = planning.HeritageLocal
		}

		name := attrs.String("H_NAME")
		if name == "" {
			name = "Heritage Item"
		}

		items = append(items, planning.HeritageItem{
			HeritageType:  heritageType,
			ListingName:   name,
			ListingNumber: attrs.String("H_ID"),
			Significance:  attrs.String("SIG"),
			PlanningImplications: []string{
				"Development consent required for most works",
				"Heritage impact statement may be required",
				"Conservation management plan may be needed",
			},
			Source: "NSW ePlanning Heritage",
		})
	}
	return items
}
