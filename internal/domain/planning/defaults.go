package planning

// Jurisdiction-independent fallback controls, used when no mapped planning
// layer yields a value for the property.  Values reflect common Australian
// planning scheme baselines and are always flagged via the control Notes.

const defaultControlNote = "Default value - check local planning controls"

var defaultHeightsByCategory = map[ZoneCategory]float64{
	CategoryResidential: 9.0,
	CategoryCommercial:  15.0,
	CategoryIndustrial:  15.0,
	CategoryMixedUse:    24.0,
	CategoryRural:       9.0,
}

var defaultFSRByCategory = map[ZoneCategory]float64{
	CategoryResidential: 0.5,
	CategoryCommercial:  1.5,
	CategoryIndustrial:  1.0,
	CategoryMixedUse:    2.0,
	CategoryRural:       0.3,
}

// DefaultControls builds a fallback control set for a zone code.  Categories
// without a tabled default (recreation, waterway, and friends) produce a set
// with no height or FSR control.
func DefaultControls(zoneCode string) *ControlsSet {
	category := ClassifyZone(zoneCode)
	controls := &ControlsSet{}

	if h, ok := defaultHeightsByCategory[category]; ok {
		controls.HeightLimit = &DevelopmentControl{
			ControlType: ControlHeight,
			Name:        "Maximum Building Height (Default)",
			MaxValue:    Float(h),
			Unit:        "m",
			Notes:       defaultControlNote,
		}
	}
	if f, ok := defaultFSRByCategory[category]; ok {
		controls.FSR = &DevelopmentControl{
			ControlType: ControlFSR,
			Name:        "Floor Space Ratio (Default)",
			MaxValue:    Float(f),
			Unit:        "ratio",
			Notes:       defaultControlNote,
		}
	}
	controls.Setbacks = DefaultSetbacks(zoneCode)
	return controls
}

// DefaultSetbacks returns the fallback setback controls for a zone code.
// Only residential and commercial categories carry defaults.
func DefaultSetbacks(zoneCode string) []DevelopmentControl {
	switch ClassifyZone(zoneCode) {
	case CategoryResidential:
		return []DevelopmentControl{
			{ControlType: ControlSetbackFront, Name: "Front Setback", MinValue: Float(6.0), Unit: "m"},
			{ControlType: ControlSetbackSide, Name: "Side Setback", MinValue: Float(0.9), Unit: "m"},
			{ControlType: ControlSetbackRear, Name: "Rear Setback", MinValue: Float(6.0), Unit: "m"},
		}
	case CategoryCommercial:
		return []DevelopmentControl{
			{ControlType: ControlSetbackFront, Name: "Front Setback", MinValue: Float(0.0), Unit: "m"},
		}
	}
	return []DevelopmentControl{}
}
