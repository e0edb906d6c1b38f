package planning

import "strings"

// zoneCategoryMap maps base zone codes to normalized categories.  Covers the
// NSW standard instrument zones and the QLD planning scheme zone
// abbreviations; anything unlisted classifies as special_purpose.
var zoneCategoryMap = map[string]ZoneCategory{
	// NSW standard instrument.
	"R1":  CategoryResidential,
	"R2":  CategoryResidential,
	"R3":  CategoryResidential,
	"R4":  CategoryResidential,
	"R5":  CategoryRural,
	"B1":  CategoryCommercial,
	"B2":  CategoryCommercial,
	"B3":  CategoryCommercial,
	"B4":  CategoryMixedUse,
	"B5":  CategoryCommercial,
	"B6":  CategoryCommercial,
	"B7":  CategoryCommercial,
	"IN1": CategoryIndustrial,
	"IN2": CategoryIndustrial,
	"IN3": CategoryIndustrial,
	"IN4": CategoryIndustrial,
	"SP1": CategorySpecialPurpose,
	"SP2": CategoryInfrastructure,
	"SP3": CategorySpecialPurpose,
	"SP5": CategoryCommercial, // Metropolitan Centre
	"MU1": CategoryMixedUse,
	"RE1": CategoryRecreation,
	"RE2": CategoryRecreation,
	"E1":  CategoryEnvironmental,
	"E2":  CategoryEnvironmental,
	"E3":  CategoryEnvironmental,
	"E4":  CategoryEnvironmental,
	"RU1": CategoryRural,
	"RU2": CategoryRural,
	"RU3": CategoryRural,
	"RU4": CategoryRural,
	"RU5": CategoryRural,
	"RU6": CategoryRural,
	"W1":  CategoryWaterway,
	"W2":  CategoryWaterway,
	"W3":  CategoryWaterway,
	// QLD planning scheme abbreviations.
	"LDR": CategoryResidential,
	"LMR": CategoryResidential,
	"MDR": CategoryResidential,
	"HDR": CategoryResidential,
	"CR":  CategoryResidential,
	"NC":  CategoryCommercial,
	"DC":  CategoryCommercial,
	"MC":  CategoryCommercial,
	"PC":  CategoryCommercial,
	"LI":  CategoryIndustrial,
	"MI":  CategoryIndustrial,
	"HI":  CategoryIndustrial,
	"SR":  CategoryRural,
	"RR":  CategoryRural,
	"RL":  CategoryRural,
	"OS":  CategoryRecreation,
	"SP":  CategorySpecialPurpose,
	"CF":  CategorySpecialPurpose,
	"EC":  CategoryEnvironmental,
	"EM":  CategoryEnvironmental,
}

// ClassifyZone maps a raw zone code to its normalized category.  Suffixed
// codes like "R2(a)" classify by their base code; unknown codes fall back to
// special_purpose.
func ClassifyZone(zoneCode string) ZoneCategory {
	base := strings.ToUpper(strings.TrimSpace(strings.SplitN(zoneCode, "(", 2)[0]))
	if cat, ok := zoneCategoryMap[base]; ok {
		return cat
	}
	return CategorySpecialPurpose
}

// LandUseToZone approximates a zone code from a QLUMP land use description.
// Checks run in a fixed order so descriptions matching several keywords
// resolve deterministically.
func LandUseToZone(landUse string) string {
	lu := strings.ToLower(landUse)
	switch {
	case strings.Contains(lu, "residential") || strings.Contains(lu, "urban"):
		return "LMR"
	case strings.Contains(lu, "commercial") || strings.Contains(lu, "services"):
		return "NC"
	case strings.Contains(lu, "industrial") || strings.Contains(lu, "manufacturing"):
		return "LI"
	case strings.Contains(lu, "rural") || strings.Contains(lu, "agricultural") || strings.Contains(lu, "grazing"):
		return "RR"
	case strings.Contains(lu, "conservation") || strings.Contains(lu, "nature"):
		return "EC"
	case strings.Contains(lu, "water"):
		return "OS"
	default:
		return "SP"
	}
}

var nswPermittedUses = map[string][]string{
	"R1":  {"Dwelling houses", "Boarding houses", "Child care centres"},
	"R2":  {"Dwelling houses", "Dual occupancies", "Group homes"},
	"R3":  {"Attached dwellings", "Boarding houses", "Multi dwelling housing"},
	"R4":  {"Residential flat buildings", "Shop top housing", "Hostels"},
	"B1":  {"Commercial premises", "Child care centres", "Medical centres"},
	"B2":  {"Commercial premises", "Retail premises", "Tourist facilities"},
	"B4":  {"Shop top housing", "Commercial premises", "Residential flat buildings"},
	"IN1": {"General industries", "Warehouses", "Freight transport facilities"},
	"IN2": {"Light industries", "Warehouses", "Hardware and building supplies"},
}

var nswZoneObjectives = map[string][]string{
	"R2": {
		"To provide for the housing needs of the community within a low density residential environment",
		"To enable other land uses that provide facilities or services to meet the day to day needs of residents",
	},
	"R3": {
		"To provide for the housing needs of the community within a medium density residential environment",
		"To provide a variety of housing types within a medium density residential environment",
	},
}

var qldPermittedUses = map[string][]string{
	"LDR": {"Dwelling house", "Home-based business", "Community residence"},
	"LMR": {"Dwelling house", "Dual occupancy", "Multiple dwelling", "Rooming accommodation"},
	"MDR": {"Multiple dwelling", "Short-term accommodation", "Residential care facility"},
	"HDR": {"Multiple dwelling", "Hotel", "Short-term accommodation"},
	"NC":  {"Shop", "Office", "Food and drink outlet", "Health care service"},
	"DC":  {"Shop", "Office", "Indoor sport and recreation", "Hotel"},
	"LI":  {"Low impact industry", "Warehouse", "Service industry"},
	"MI":  {"Medium impact industry", "Warehouse", "Research and technology"},
	"OS":  {"Park", "Sport and recreation"},
}

var qldZoneObjectives = map[string][]string{
	"LDR": {
		"Provide for dwelling houses and community uses",
		"Maintain the low density residential character",
		"Ensure development is compatible with surrounding uses",
	},
	"LMR": {
		"Provide for a range of dwelling types",
		"Support increased housing choice and affordability",
		"Ensure development contributes positively to streetscape",
	},
}

// unknownUsesFallback is returned when no curated use list exists for a zone.
var unknownUsesFallback = []string{"Contact council for permitted uses"}

// PermittedUses returns the curated permitted use list for a zone code in the
// given jurisdiction.
func PermittedUses(state State, zoneCode string) []string {
	code := strings.ToUpper(zoneCode)
	var uses map[string][]string
	switch state {
	case StateNSW:
		uses = nswPermittedUses
	case StateQLD:
		uses = qldPermittedUses
	default:
		return nil
	}
	if v, ok := uses[code]; ok {
		return append([]string(nil), v...)
	}
	return append([]string(nil), unknownUsesFallback...)
}

// ZoneObjectives returns the curated objectives for a zone code in the given
// jurisdiction.  Zones without curated objectives return an empty slice.
func ZoneObjectives(state State, zoneCode string) []string {
	code := strings.ToUpper(zoneCode)
	var objectives map[string][]string
	switch state {
	case StateNSW:
		objectives = nswZoneObjectives
	case StateQLD:
		objectives = qldZoneObjectives
	default:
		return []string{}
	}
	if v, ok := objectives[code]; ok {
		return append([]string(nil), v...)
	}
	return []string{}
}
