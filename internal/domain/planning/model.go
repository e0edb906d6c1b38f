// Package planning holds the normalized planning data model shared by every
// jurisdiction, the zone classifier, the static control tables, and the
// development potential engine.  Everything in this package is pure: no I/O,
// no clocks, no shared mutable state.
package planning

import (
	"fmt"
	"strings"
	"time"

	"github.com/landgauge/landgauge/pkg/errors"
	"github.com/landgauge/landgauge/pkg/types/geo"
)

// State identifies an Australian state or territory jurisdiction.
type State string

const (
	StateNSW State = "NSW"
	StateQLD State = "QLD"
	StateVIC State = "VIC"
	StateSA  State = "SA"
	StateWA  State = "WA"
	StateTAS State = "TAS"
	StateNT  State = "NT"
	StateACT State = "ACT"
)

// AllStates returns the canonical list of supported jurisdictions.
func AllStates() []State {
	return []State{StateNSW, StateQLD, StateVIC, StateSA, StateWA, StateTAS, StateNT, StateACT}
}

// ParseState normalizes and validates a jurisdiction code.
func ParseState(s string) (State, error) {
	st := State(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllStates() {
		if st == known {
			return st, nil
		}
	}
	return "", errors.New(errors.CodeJurisdictionUnsupported, "unknown jurisdiction").WithDetail(s)
}

// ZoneCategory is the normalized land-use category a zone code maps to.
type ZoneCategory string

const (
	CategoryResidential    ZoneCategory = "residential"
	CategoryCommercial     ZoneCategory = "commercial"
	CategoryIndustrial     ZoneCategory = "industrial"
	CategoryRural          ZoneCategory = "rural"
	CategoryEnvironmental  ZoneCategory = "environmental"
	CategoryRecreation     ZoneCategory = "recreation"
	CategorySpecialPurpose ZoneCategory = "special_purpose"
	CategoryMixedUse       ZoneCategory = "mixed_use"
	CategoryInfrastructure ZoneCategory = "infrastructure"
	CategoryWaterway       ZoneCategory = "waterway"
)

// HazardType classifies a hazard overlay.
type HazardType string

const (
	HazardFlood          HazardType = "flood"
	HazardBushfire       HazardType = "bushfire"
	HazardCoastalErosion HazardType = "coastal_erosion"
	HazardLandslide      HazardType = "landslide"
	HazardStormTide      HazardType = "storm_tide"
	HazardAcidSulfate    HazardType = "acid_sulfate"
	HazardMineSubsidence HazardType = "mine_subsidence"
	HazardContamination  HazardType = "contamination"
)

// HazardLevel is the severity of a hazard overlay.
type HazardLevel string

const (
	HazardLow     HazardLevel = "low"
	HazardMedium  HazardLevel = "medium"
	HazardHigh    HazardLevel = "high"
	HazardExtreme HazardLevel = "extreme"
)

// HeritageType classifies the listing authority of a heritage item.
type HeritageType string

const (
	HeritageState      HeritageType = "state"
	HeritageLocal      HeritageType = "local"
	HeritageNational   HeritageType = "national"
	HeritageAboriginal HeritageType = "aboriginal"
	HeritageWorld      HeritageType = "world"
)

// ControlType identifies a development control dimension.
type ControlType string

const (
	ControlHeight       ControlType = "height"
	ControlFSR          ControlType = "fsr"
	ControlLotSize      ControlType = "lot_size"
	ControlSetbackFront ControlType = "setback_front"
	ControlSetbackSide  ControlType = "setback_side"
	ControlSetbackRear  ControlType = "setback_rear"
	ControlSiteCoverage ControlType = "site_coverage"
	ControlLandscaping  ControlType = "landscaping"
	ControlCarParking   ControlType = "car_parking"
)

// FeasibilityRating grades a development scenario.
type FeasibilityRating string

const (
	FeasibilityLow    FeasibilityRating = "low"
	FeasibilityMedium FeasibilityRating = "medium"
	FeasibilityHigh   FeasibilityRating = "high"
)

// PropertyLocation describes the subject property of an analysis.
type PropertyLocation struct {
	Address    string          `json:"address"`
	Point      geo.Coordinates `json:"point"`
	State      State           `json:"state"`
	LGAName    string          `json:"lga_name,omitempty"`
	LotPlan    string          `json:"lot_plan,omitempty"`
	LotAreaSqm *float64        `json:"lot_area_sqm,omitempty"`
}

// ZoningInfo is the normalized zoning record for a point.  Created per query;
// never persisted by this engine.
type ZoningInfo struct {
	ZoneCode       string       `json:"zone_code"`
	ZoneName       string       `json:"zone_name"`
	ZoneCategory   ZoneCategory `json:"zone_category"`
	Description    string       `json:"description,omitempty"`
	PermittedUses  []string     `json:"permitted_uses"`
	ProhibitedUses []string     `json:"prohibited_uses"`
	Objectives     []string     `json:"objectives"`
	LGAName        string       `json:"lga_name,omitempty"`
	Source         string       `json:"source,omitempty"`
}

// UnknownZoning is the no-data zoning record.  Resolvers return it when no
// mapped layer covers the point, and the analysis pipeline substitutes it
// when a zoning layer cannot be reached, so an analysis always completes.
func UnknownZoning(state State, lgaName string) *ZoningInfo {
	council := lgaName
	if council == "" {
		council = "local council"
	}
	return &ZoningInfo{
		ZoneCode:       "Unknown",
		ZoneName:       "Zoning data not available",
		ZoneCategory:   CategorySpecialPurpose,
		Description:    fmt.Sprintf("Please check %s planning scheme for zoning information.", council),
		PermittedUses:  []string{},
		ProhibitedUses: []string{},
		Objectives:     []string{},
		LGAName:        lgaName,
		Source:         fmt.Sprintf("%s Planning Framework", state),
	}
}

// DevelopmentControl is a single numeric planning control.  A control is
// "present" only when at least one of MinValue/MaxValue is set.
type DevelopmentControl struct {
	ControlType ControlType `json:"control_type"`
	Name        string      `json:"name"`
	MinValue    *float64    `json:"min_value,omitempty"`
	MaxValue    *float64    `json:"max_value,omitempty"`
	Unit        string      `json:"unit"`
	Conditions  string      `json:"conditions,omitempty"`
	Notes       string      `json:"notes,omitempty"`
}

// ControlsSet is the complete set of development controls resolved for a
// property, plus quantities derived from them.
type ControlsSet struct {
	HeightLimit  *DevelopmentControl  `json:"height_limit,omitempty"`
	FSR          *DevelopmentControl  `json:"fsr,omitempty"`
	LotSize      *DevelopmentControl  `json:"lot_size,omitempty"`
	Setbacks     []DevelopmentControl `json:"setbacks"`
	SiteCoverage *DevelopmentControl  `json:"site_coverage,omitempty"`
	Landscaping  *DevelopmentControl  `json:"landscaping,omitempty"`
	CarParking   *DevelopmentControl  `json:"car_parking,omitempty"`

	// Derived.  EstimatedGFA is set only when both FSR and a positive lot
	// area are known; EstimatedStoreys = floor(height / MetersPerStorey).
	EstimatedGFA       *float64 `json:"estimated_gfa,omitempty"`
	EstimatedStoreys   *int     `json:"estimated_storeys,omitempty"`
	EstimatedDwellings *int     `json:"estimated_dwellings,omitempty"`
}

// MetersPerStorey is the assumed floor-to-floor height used when deriving a
// storey count from a height limit.
const MetersPerStorey = 3.2

// Finalize computes the derived quantities of the set.  Safe to call on a
// partially-populated set; derived fields stay nil when their inputs are
// missing.
func (c *ControlsSet) Finalize(lotAreaSqm *float64) {
	if c.FSR != nil && c.FSR.MaxValue != nil && lotAreaSqm != nil && *lotAreaSqm > 0 {
		gfa := *lotAreaSqm * *c.FSR.MaxValue
		c.EstimatedGFA = &gfa
	}
	if c.HeightLimit != nil && c.HeightLimit.MaxValue != nil {
		storeys := int(*c.HeightLimit.MaxValue / MetersPerStorey)
		c.EstimatedStoreys = &storeys
	}
}

// HazardOverlay is a hazard constraint affecting a point.
type HazardOverlay struct {
	HazardType           HazardType  `json:"hazard_type"`
	Category             string      `json:"category,omitempty"`
	Level                HazardLevel `json:"level,omitempty"`
	Name                 string      `json:"name,omitempty"`
	Description          string      `json:"description,omitempty"`
	PlanningImplications []string    `json:"planning_implications"`
	RequiredAssessments  []string    `json:"required_assessments"`
	Source               string      `json:"source,omitempty"`
}

// EnvironmentalOverlay is an environmental constraint affecting a point.
type EnvironmentalOverlay struct {
	OverlayType          string   `json:"overlay_type"`
	Category             string   `json:"category,omitempty"`
	Name                 string   `json:"name,omitempty"`
	Description          string   `json:"description,omitempty"`
	PlanningImplications []string `json:"planning_implications"`
	RequiredAssessments  []string `json:"required_assessments"`
	Source               string   `json:"source,omitempty"`
}

// HeritageItem is a heritage listing near or affecting a point.
type HeritageItem struct {
	HeritageType         HeritageType `json:"heritage_type"`
	ListingName          string       `json:"listing_name"`
	ListingNumber        string       `json:"listing_number,omitempty"`
	Significance         string       `json:"significance,omitempty"`
	Description          string       `json:"description,omitempty"`
	DistanceM            *float64     `json:"distance_m,omitempty"`
	PlanningImplications []string     `json:"planning_implications"`
	Source               string       `json:"source,omitempty"`
}

// OverlaySummary aggregates every overlay affecting a point.
type OverlaySummary struct {
	Hazards                []HazardOverlay        `json:"hazards"`
	Environmental          []EnvironmentalOverlay `json:"environmental"`
	Heritage               []HeritageItem         `json:"heritage"`
	TotalOverlays          int                    `json:"total_overlays"`
	HasCriticalHazards     bool                   `json:"has_critical_hazards"`
	HasHeritageConstraints bool                   `json:"has_heritage_constraints"`
}

// NewOverlaySummary derives the aggregate flags from the overlay lists.
func NewOverlaySummary(hazards []HazardOverlay, environmental []EnvironmentalOverlay, heritage []HeritageItem) *OverlaySummary {
	critical := false
	for _, h := range hazards {
		if h.Level == HazardHigh || h.Level == HazardExtreme {
			critical = true
			break
		}
	}
	return &OverlaySummary{
		Hazards:                hazards,
		Environmental:          environmental,
		Heritage:               heritage,
		TotalOverlays:          len(hazards) + len(environmental) + len(heritage),
		HasCriticalHazards:     critical,
		HasHeritageConstraints: len(heritage) > 0,
	}
}

// BuildingEnvelope is the derived buildable geometry for a property.
// BuildableAreaSqm is an order-of-magnitude estimate from an assumed
// rectangular lot shape, not a survey-grade computation.
type BuildingEnvelope struct {
	MaxHeightM             *float64 `json:"max_height_m,omitempty"`
	MaxStoreys             *int     `json:"max_storeys,omitempty"`
	MaxGFASqm              *float64 `json:"max_gfa_sqm,omitempty"`
	MaxSiteCoveragePercent *float64 `json:"max_site_coverage_percent,omitempty"`
	SetbackFrontM          *float64 `json:"setback_front_m,omitempty"`
	SetbackSideM           *float64 `json:"setback_side_m,omitempty"`
	SetbackRearM           *float64 `json:"setback_rear_m,omitempty"`
	BuildableAreaSqm       *float64 `json:"buildable_area_sqm,omitempty"`
}

// LotConfiguration describes one possible subdivision layout.
type LotConfiguration struct {
	Lots       int     `json:"lots"`
	AvgSizeSqm float64 `json:"avg_size_sqm"`
}

// SubdivisionPotential is the subdivision analysis for a property.
// CanSubdivide holds iff PotentialLots >= 2.
type SubdivisionPotential struct {
	CanSubdivide      bool               `json:"can_subdivide"`
	MinLotSize        *float64           `json:"min_lot_size,omitempty"`
	PotentialLots     int                `json:"potential_lots"`
	LotConfigurations []LotConfiguration `json:"lot_configurations"`
	Constraints       []string           `json:"constraints"`
	RequiredApprovals []string           `json:"required_approvals"`
}

// DevelopmentScenario is one candidate development outcome for a property.
type DevelopmentScenario struct {
	ScenarioName             string            `json:"scenario_name"`
	ScenarioType             string            `json:"scenario_type"`
	EstimatedDwellings       *int              `json:"estimated_dwellings,omitempty"`
	EstimatedGFA             *float64          `json:"estimated_gfa,omitempty"`
	FeasibilityRating        FeasibilityRating `json:"feasibility_rating"`
	KeyRequirements          []string          `json:"key_requirements"`
	KeyConstraints           []string          `json:"key_constraints"`
	EstimatedApprovalPathway string            `json:"estimated_approval_pathway"`
}

// DevelopmentPotential is the complete development analysis for a property.
type DevelopmentPotential struct {
	CurrentUse          string                `json:"current_use,omitempty"`
	BuildingEnvelope    BuildingEnvelope      `json:"building_envelope"`
	Subdivision         SubdivisionPotential  `json:"subdivision"`
	Scenarios           []DevelopmentScenario `json:"scenarios"`
	RecommendedScenario string                `json:"recommended_scenario,omitempty"`
	KeyOpportunities    []string              `json:"key_opportunities"`
	KeyConstraints      []string              `json:"key_constraints"`
}

// PropertyAnalysis is the complete analysis result for a point.  Constructed
// fresh per request and immutable once returned; never cached by this engine.
type PropertyAnalysis struct {
	Location             PropertyLocation     `json:"location"`
	Zoning               ZoningInfo           `json:"zoning"`
	DevelopmentControls  ControlsSet          `json:"development_controls"`
	Overlays             OverlaySummary       `json:"overlays"`
	DevelopmentPotential DevelopmentPotential `json:"development_potential"`

	AnalysisDate    time.Time `json:"analysis_date"`
	DataSources     []string  `json:"data_sources"`
	ConfidenceScore float64   `json:"confidence_score"`
	Limitations     []string  `json:"limitations"`
}

// BriefAnalysis is the condensed analysis for quick lookups.
type BriefAnalysis struct {
	Location     geo.Coordinates `json:"location"`
	ZoneCode     string          `json:"zone_code"`
	ZoneName     string          `json:"zone_name"`
	ZoneCategory ZoneCategory    `json:"zone_category"`
	HazardCount  int             `json:"hazard_count"`
	HasHeritage  bool            `json:"has_heritage"`
	MaxHeightM   *float64        `json:"max_height_m,omitempty"`
	MaxFSR       *float64        `json:"max_fsr,omitempty"`
}

// Float returns a pointer to v.  Convenience for optional numeric fields.
func Float(v float64) *float64 { return &v }

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }
