package planning

import (
	"math"
	"sort"
	"strings"

	"github.com/landgauge/landgauge/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Development potential engine
// ─────────────────────────────────────────────────────────────────────────────

// Scenario name and pathway constants.
const (
	ScenarioSingleDwelling = "Single Dwelling House"
	ScenarioDualOccupancy  = "Dual Occupancy"
	ScenarioTownhouse      = "Townhouse Development"
	ScenarioFlatBuilding   = "Residential Flat Building"
	ScenarioCommercial     = "Commercial Development"
	ScenarioMixedUse       = "Mixed Use Development"

	PathwayComplying = "complying"
	PathwayDA        = "DA"
)

// Subdivision minimum lot size fallbacks in square metres.
const (
	minLotDefault     = 450.0
	minLotRural       = 4000.0
	minLotMediumRes   = 300.0
	minLotHighRes     = 200.0
	dwellingGFASqm    = 80.0
	townhouseLotShare = 200.0
	maxTownhouseUnits = 8
)

// PotentialEngine derives development potential from zoning, controls, and
// overlays.  Stateless and safe for concurrent use.
type PotentialEngine struct {
	logger logging.Logger
}

// PotentialOption configures a PotentialEngine.
type PotentialOption func(*PotentialEngine)

// WithPotentialLogger sets the engine logger.
func WithPotentialLogger(l logging.Logger) PotentialOption {
	return func(e *PotentialEngine) { e.logger = l }
}

// NewPotentialEngine creates a development potential engine.
func NewPotentialEngine(opts ...PotentialOption) *PotentialEngine {
	e := &PotentialEngine{logger: logging.NewNopLogger()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute produces the full development potential for a property.  All inputs
// are read-only; a nil lot area disables the envelope area, subdivision, and
// scenario calculations that depend on it.
func (e *PotentialEngine) Compute(zoning ZoningInfo, controls ControlsSet, overlays OverlaySummary, lotAreaSqm *float64) DevelopmentPotential {
	envelope := e.buildingEnvelope(controls, lotAreaSqm)
	subdivision := e.subdivisionPotential(zoning, controls, lotAreaSqm)
	scenarios := e.developmentScenarios(zoning, envelope, lotAreaSqm)

	recommended := ""
	for _, s := range scenarios {
		if s.FeasibilityRating == FeasibilityHigh {
			recommended = s.ScenarioName
			break
		}
	}

	e.logger.Debug("computed development potential",
		logging.String("zone_code", zoning.ZoneCode),
		logging.Int("scenarios", len(scenarios)),
		logging.Bool("can_subdivide", subdivision.CanSubdivide))

	return DevelopmentPotential{
		BuildingEnvelope:    envelope,
		Subdivision:         subdivision,
		Scenarios:           scenarios,
		RecommendedScenario: recommended,
		KeyOpportunities:    e.opportunities(zoning, controls, scenarios),
		KeyConstraints:      e.constraints(overlays),
	}
}

// EmptyPotential returns a well-formed potential with no scenarios, used when
// scenario generation is disabled for a request.
func EmptyPotential() DevelopmentPotential {
	return DevelopmentPotential{
		BuildingEnvelope: BuildingEnvelope{},
		Subdivision: SubdivisionPotential{
			LotConfigurations: []LotConfiguration{},
			Constraints:       []string{},
			RequiredApprovals: []string{},
		},
		Scenarios:        []DevelopmentScenario{},
		KeyOpportunities: []string{},
		KeyConstraints:   []string{},
	}
}

func (e *PotentialEngine) buildingEnvelope(controls ControlsSet, lotAreaSqm *float64) BuildingEnvelope {
	envelope := BuildingEnvelope{}

	if controls.HeightLimit != nil && controls.HeightLimit.MaxValue != nil {
		envelope.MaxHeightM = controls.HeightLimit.MaxValue
		envelope.MaxStoreys = IntPtr(int(*envelope.MaxHeightM / MetersPerStorey))
	}
	if controls.FSR != nil && controls.FSR.MaxValue != nil && lotAreaSqm != nil {
		envelope.MaxGFASqm = Float(*lotAreaSqm * *controls.FSR.MaxValue)
	}
	if controls.SiteCoverage != nil {
		envelope.MaxSiteCoveragePercent = controls.SiteCoverage.MaxValue
	}
	for _, sb := range controls.Setbacks {
		switch sb.ControlType {
		case ControlSetbackFront:
			envelope.SetbackFrontM = sb.MinValue
		case ControlSetbackSide:
			envelope.SetbackSideM = sb.MinValue
		case ControlSetbackRear:
			envelope.SetbackRearM = sb.MinValue
		}
	}

	// Buildable area assumes a rectangular lot with a 1:30 width seed.
	if lotAreaSqm != nil && envelope.SetbackFrontM != nil && envelope.SetbackRearM != nil {
		width := math.Sqrt(*lotAreaSqm/30) * 2
		depth := 30.0
		if width > 0 {
			depth = *lotAreaSqm / width
		}

		side := 0.9
		if envelope.SetbackSideM != nil {
			side = *envelope.SetbackSideM
		}
		buildableWidth := width - 2*side
		buildableDepth := depth - *envelope.SetbackFrontM - *envelope.SetbackRearM

		if buildableWidth > 0 && buildableDepth > 0 {
			envelope.BuildableAreaSqm = Float(buildableWidth * buildableDepth)
		}
	}

	return envelope
}

func (e *PotentialEngine) subdivisionPotential(zoning ZoningInfo, controls ControlsSet, lotAreaSqm *float64) SubdivisionPotential {
	result := SubdivisionPotential{
		LotConfigurations: []LotConfiguration{},
		Constraints:       []string{},
		RequiredApprovals: []string{},
	}
	if lotAreaSqm == nil || *lotAreaSqm <= 0 {
		return result
	}

	minLot := minLotDefault
	switch {
	case controls.LotSize != nil && controls.LotSize.MinValue != nil:
		minLot = *controls.LotSize.MinValue
	case zoning.ZoneCategory == CategoryRural:
		minLot = minLotRural
	case zoning.ZoneCategory == CategoryResidential:
		switch {
		case zoneCodeContains(zoning.ZoneCode, "R2", "LDR"):
			minLot = minLotDefault
		case zoneCodeContains(zoning.ZoneCode, "R3", "LMR"):
			minLot = minLotMediumRes
		case zoneCodeContains(zoning.ZoneCode, "R4", "MDR"):
			minLot = minLotHighRes
		}
	}
	result.MinLotSize = Float(minLot)

	lots := int(*lotAreaSqm / minLot)
	if lots < 2 {
		return result
	}

	result.CanSubdivide = true
	result.PotentialLots = lots
	result.LotConfigurations = append(result.LotConfigurations,
		LotConfiguration{Lots: 2, AvgSizeSqm: *lotAreaSqm / 2})
	if lots >= 3 {
		result.LotConfigurations = append(result.LotConfigurations,
			LotConfiguration{Lots: 3, AvgSizeSqm: *lotAreaSqm / 3})
	}
	result.RequiredApprovals = []string{"Development Application for Subdivision"}
	return result
}

func (e *PotentialEngine) developmentScenarios(zoning ZoningInfo, envelope BuildingEnvelope, lotAreaSqm *float64) []DevelopmentScenario {
	scenarios := []DevelopmentScenario{}
	if lotAreaSqm == nil || *lotAreaSqm <= 0 {
		return scenarios
	}
	area := *lotAreaSqm

	gfaOr := func(fallback float64) float64 {
		if envelope.MaxGFASqm != nil {
			return *envelope.MaxGFASqm
		}
		return fallback
	}

	switch zoning.ZoneCategory {
	case CategoryResidential:
		scenarios = append(scenarios, DevelopmentScenario{
			ScenarioName:       ScenarioSingleDwelling,
			ScenarioType:       "residential",
			EstimatedDwellings: IntPtr(1),
			EstimatedGFA:       Float(math.Min(300, gfaOr(300))),
			FeasibilityRating:  FeasibilityHigh,
			KeyRequirements: []string{
				"Complies with building codes",
				"Private certifier or council approval",
			},
			KeyConstraints:           []string{},
			EstimatedApprovalPathway: PathwayComplying,
		})

		if area >= 600 {
			rating := FeasibilityMedium
			if area >= 800 {
				rating = FeasibilityHigh
			}
			scenarios = append(scenarios, DevelopmentScenario{
				ScenarioName:       ScenarioDualOccupancy,
				ScenarioType:       "residential",
				EstimatedDwellings: IntPtr(2),
				EstimatedGFA:       Float(math.Min(400, gfaOr(400))),
				FeasibilityRating:  rating,
				KeyRequirements: []string{
					"Development Application",
					"Minimum lot size requirements",
					"Private open space for each dwelling",
				},
				KeyConstraints:           []string{},
				EstimatedApprovalPathway: PathwayDA,
			})
		}

		if zoneCodeContains(zoning.ZoneCode, "R3", "LMR", "MDR") && area >= 1000 {
			units := int(area / townhouseLotShare)
			if units > maxTownhouseUnits {
				units = maxTownhouseUnits
			}
			scenarios = append(scenarios, DevelopmentScenario{
				ScenarioName:       ScenarioTownhouse,
				ScenarioType:       "residential",
				EstimatedDwellings: IntPtr(units),
				EstimatedGFA:       envelope.MaxGFASqm,
				FeasibilityRating:  FeasibilityMedium,
				KeyRequirements: []string{
					"Development Application",
					"Urban design assessment",
					"Traffic and parking study",
				},
				KeyConstraints:           []string{},
				EstimatedApprovalPathway: PathwayDA,
			})
		}

		if zoneCodeContains(zoning.ZoneCode, "R4", "HDR") &&
			envelope.MaxStoreys != nil && *envelope.MaxStoreys >= 4 {
			units := int(gfaOr(0) / dwellingGFASqm)
			scenarios = append(scenarios, DevelopmentScenario{
				ScenarioName:       ScenarioFlatBuilding,
				ScenarioType:       "residential",
				EstimatedDwellings: IntPtr(units),
				EstimatedGFA:       envelope.MaxGFASqm,
				FeasibilityRating:  FeasibilityMedium,
				KeyRequirements: []string{
					"Development Application",
					"Design excellence panel review",
					"Traffic impact assessment",
					"BASIX certification",
				},
				KeyConstraints:           []string{},
				EstimatedApprovalPathway: PathwayDA,
			})
		}

	case CategoryCommercial:
		scenarios = append(scenarios, DevelopmentScenario{
			ScenarioName:      ScenarioCommercial,
			ScenarioType:      "commercial",
			EstimatedGFA:      envelope.MaxGFASqm,
			FeasibilityRating: FeasibilityMedium,
			KeyRequirements: []string{
				"Development Application",
				"Traffic and parking assessment",
			},
			KeyConstraints:           []string{},
			EstimatedApprovalPathway: PathwayDA,
		})

	case CategoryMixedUse:
		scenarios = append(scenarios, DevelopmentScenario{
			ScenarioName:       ScenarioMixedUse,
			ScenarioType:       "mixed",
			EstimatedDwellings: IntPtr(int(gfaOr(0) * 0.7 / dwellingGFASqm)),
			EstimatedGFA:       envelope.MaxGFASqm,
			FeasibilityRating:  FeasibilityMedium,
			KeyRequirements: []string{
				"Development Application",
				"Design excellence requirements",
				"Active street frontage",
			},
			KeyConstraints:           []string{},
			EstimatedApprovalPathway: PathwayDA,
		})
	}

	return scenarios
}

func (e *PotentialEngine) opportunities(zoning ZoningInfo, controls ControlsSet, scenarios []DevelopmentScenario) []string {
	opportunities := []string{}

	multi := false
	for _, s := range scenarios {
		if s.EstimatedDwellings != nil && *s.EstimatedDwellings > 1 {
			multi = true
			break
		}
	}
	if multi {
		opportunities = append(opportunities, "Multi-dwelling development potential")
	}
	if controls.FSR != nil && controls.FSR.MaxValue != nil && *controls.FSR.MaxValue >= 1.5 {
		opportunities = append(opportunities, "High FSR allows for significant development")
	}
	if controls.HeightLimit != nil && controls.HeightLimit.MaxValue != nil && *controls.HeightLimit.MaxValue >= 12 {
		opportunities = append(opportunities, "Height controls allow multi-storey development")
	}
	if permittedUsesMention(zoning.PermittedUses, "dual") {
		opportunities = append(opportunities, "Dual occupancy is permitted")
	}

	return opportunities
}

func (e *PotentialEngine) constraints(overlays OverlaySummary) []string {
	constraints := []string{}
	if overlays.HasCriticalHazards {
		constraints = append(constraints, "Critical hazard overlays may limit development")
	}
	if overlays.HasHeritageConstraints {
		constraints = append(constraints, "Heritage constraints may require additional approvals")
	}
	for _, hazard := range overlays.Hazards {
		switch hazard.HazardType {
		case HazardFlood:
			constraints = append(constraints, "Flood planning controls apply")
		case HazardBushfire:
			constraints = append(constraints, "Bushfire protection requirements apply")
		}
	}
	return constraints
}

func zoneCodeContains(zoneCode string, fragments ...string) bool {
	upper := strings.ToUpper(zoneCode)
	for _, f := range fragments {
		if strings.Contains(upper, f) {
			return true
		}
	}
	return false
}

func permittedUsesMention(uses []string, keyword string) bool {
	for _, u := range uses {
		if strings.Contains(strings.ToLower(u), keyword) {
			return true
		}
	}
	return false
}

// SortScenariosByFeasibility orders scenarios high to low, preserving the
// generation order within a rating band.
func SortScenariosByFeasibility(scenarios []DevelopmentScenario) {
	rank := map[FeasibilityRating]int{FeasibilityHigh: 0, FeasibilityMedium: 1, FeasibilityLow: 2}
	sort.SliceStable(scenarios, func(i, j int) bool {
		return rank[scenarios[i].FeasibilityRating] < rank[scenarios[j].FeasibilityRating]
	})
}
