package constants

import (
	"strings"
)

// Standard is a category key of the building standards table.
type Standard string

const (
	ClearHeight        Standard = "clear_height"
	FloorArea          Standard = "floor_area"
	DaylightOpenings   Standard = "daylight_openings"
	Ventilation        Standard = "ventilation"
	Walls              Standard = "walls"
	AccessEgress       Standard = "access_egress"
	Stairways          Standard = "stairways"
	HeightRequirements Standard = "height_requirements"
	FireSafety         Standard = "fire_safety"
	Windows            Standard = "windows"
	Structural         Standard = "structural"
	Accessibility      Standard = "accessibility"
	Electrical         Standard = "electrical"
	Plumbing           Standard = "plumbing"
	EnergyEfficiency   Standard = "energy_efficiency"
	OtherStandard      Standard = "other"
)

var allStandards = []Standard{
	ClearHeight,
	FloorArea,
	DaylightOpenings,
	Ventilation,
	Walls,
	AccessEgress,
	Stairways,
	HeightRequirements,
	FireSafety,
	Windows,
	Structural,
	Accessibility,
	Electrical,
	Plumbing,
	EnergyEfficiency,
}

func StandardsAsStringSlice() []string {
	result := make([]string, len(allStandards))
	for i, s := range allStandards {
		result[i] = string(s)
	}
	return result
}

// CanonicalizeStandard maps a free-form label (as written by a model, e.g.
// "Clear Height" or "Fire Safety - Exits") to a standards table key.
func CanonicalizeStandard(input string) (Standard, bool) {
	if strings.TrimSpace(input) == "" {
		return OtherStandard, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.NewReplacer("-", " ", "/", " ", "&", " ").Replace(normalized)
	normalized = strings.Join(strings.Fields(normalized), "_")

	for _, s := range allStandards {
		if normalized == string(s) || strings.HasPrefix(normalized, string(s)+"_") {
			return s, true
		}
	}

	synonyms := map[string]Standard{
		"ceiling_height":  ClearHeight,
		"room_height":     ClearHeight,
		"headroom":        Stairways,
		"room_area":       FloorArea,
		"area":            FloorArea,
		"daylight":        DaylightOpenings,
		"natural_light":   DaylightOpenings,
		"egress":          AccessEgress,
		"exits":           AccessEgress,
		"means_of_escape": AccessEgress,
		"stairs":          Stairways,
		"storeys":         HeightRequirements,
		"building_height": HeightRequirements,
		"fire":            FireSafety,
		"fire_resistance": FireSafety,
		"insulation":      EnergyEfficiency,
		"energy":          EnergyEfficiency,
		"drainage":        Plumbing,
		"lighting":        Electrical,
	}
	for key, s := range synonyms {
		if normalized == key || strings.HasPrefix(normalized, key+"_") {
			return s, true
		}
	}

	return OtherStandard, false
}
