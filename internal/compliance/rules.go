// Package compliance evaluates extracted document text against the building
// standards table and shapes the stored compliance result.
package compliance

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/permit-compliance/constants"
	"github.com/joseph-ayodele/permit-compliance/internal/measure"
	"github.com/joseph-ayodele/permit-compliance/internal/standards"
)

// Values at or below these are taken to be page numbers, scales and similar
// noise rather than room measurements.
const (
	heightNoiseFloor = 0.5
	areaNoiseFloor   = 1.0
)

var (
	ventilationKeywords = []string{"ventilation", "opening"}
	fireSafetyKeywords  = []string{"fire", "non-combustible", "fire-resistant"}
)

// CheckRules runs the deterministic checks in fixed order: heights, areas,
// storeys, then keyword presence. It never fails; empty text yields only the
// two keyword findings.
func CheckRules(text string, tbl standards.Table) []Issue {
	var heights, areas []float64
	var storeys []int
	for _, m := range measure.Extract(text) {
		switch m.Kind {
		case measure.KindHeight:
			heights = append(heights, m.Value)
		case measure.KindArea:
			areas = append(areas, m.Value)
		case measure.KindStoreyCount:
			storeys = append(storeys, int(m.Value))
		}
	}

	var issues []Issue
	issues = append(issues, checkHeights(heights, tbl.ClearHeight)...)
	issues = append(issues, checkAreas(areas, tbl.FloorArea)...)
	issues = append(issues, checkStoreys(storeys, tbl.HeightRequirements)...)
	issues = append(issues, checkKeywords(strings.ToLower(text))...)
	return issues
}

// CheckRuleStrings is CheckRules rendered for display.
func CheckRuleStrings(text string, tbl standards.Table) []string {
	return Strings(CheckRules(text, tbl))
}

func checkHeights(heights []float64, ch standards.ClearHeight) []Issue {
	var out []Issue
	for _, h := range heights {
		if h <= heightNoiseFloor {
			continue
		}
		switch {
		case !standards.ValidateMinimum(h, ch.NonHabitableRooms):
			out = append(out, Issue{
				Source:    SourceRule,
				Kind:      KindHeightBelowNonHabitable,
				Measured:  ptr(h),
				Threshold: ptr(ch.NonHabitableRooms),
				Standard:  constants.ClearHeight,
				Message: fmt.Sprintf("Found room height of %sm, which is below minimum non-habitable room height of %sm",
					fmtNum(h), fmtNum(ch.NonHabitableRooms)),
			})
		case !standards.ValidateMinimum(h, ch.HabitableRooms):
			out = append(out, Issue{
				Source:    SourceRule,
				Kind:      KindHeightBelowHabitable,
				Measured:  ptr(h),
				Threshold: ptr(ch.HabitableRooms),
				Standard:  constants.ClearHeight,
				Message: fmt.Sprintf("Found room height of %sm, which may be acceptable for non-habitable rooms but is below minimum habitable room height of %sm",
					fmtNum(h), fmtNum(ch.HabitableRooms)),
			})
		}
	}
	return out
}

func checkAreas(areas []float64, fa standards.FloorArea) []Issue {
	var out []Issue
	for _, a := range areas {
		if a <= areaNoiseFloor || standards.ValidateMinimum(a, fa.HabitableRoomsMin) {
			continue
		}
		out = append(out, Issue{
			Source:    SourceRule,
			Kind:      KindAreaBelowHabitable,
			Measured:  ptr(a),
			Threshold: ptr(fa.HabitableRoomsMin),
			Standard:  constants.FloorArea,
			Message: fmt.Sprintf("Found room area of %s sq m, which is below minimum habitable room area of %s sq m",
				fmtNum(a), fmtNum(fa.HabitableRoomsMin)),
		})
	}
	return out
}

func checkStoreys(counts []int, hr standards.HeightRequirements) []Issue {
	var out []Issue
	for _, s := range counts {
		n := float64(s)
		switch {
		case !standards.ValidateMaximum(n, float64(hr.MaxResidentialStoreys)):
			out = append(out, Issue{
				Source:    SourceRule,
				Kind:      KindExceedsResidential,
				Measured:  ptr(n),
				Threshold: ptr(float64(hr.MaxResidentialStoreys)),
				Standard:  constants.HeightRequirements,
				Message: fmt.Sprintf("Found %d storeys, which exceeds maximum residential building height of %d storeys",
					s, hr.MaxResidentialStoreys),
			})
		case !standards.ValidateMaximum(n, float64(hr.MaxDwellingStoreys)):
			out = append(out, Issue{
				Source:    SourceRule,
				Kind:      KindExceedsDwelling,
				Measured:  ptr(n),
				Threshold: ptr(float64(hr.MaxDwellingStoreys)),
				Standard:  constants.HeightRequirements,
				Message: fmt.Sprintf("Found %d storeys, which exceeds maximum dwelling house height of %d storeys. This requires Grade B construction.",
					s, hr.MaxDwellingStoreys),
			})
		}
	}
	return out
}

func checkKeywords(lower string) []Issue {
	var out []Issue
	if !containsAny(lower, ventilationKeywords) {
		out = append(out, Issue{
			Source:   SourceRule,
			Kind:     KindMissingVentilation,
			Standard: constants.Ventilation,
			Message:  "No clear mention of ventilation requirements in the document",
		})
	}
	if !containsAny(lower, fireSafetyKeywords) {
		out = append(out, Issue{
			Source:   SourceRule,
			Kind:     KindMissingFireSafety,
			Standard: constants.FireSafety,
			Message:  "No clear mention of fire safety requirements in the document",
		})
	}
	return out
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
