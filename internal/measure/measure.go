// Package measure mines unit-bearing numbers out of free text extracted from
// architectural documents. All functions are pure and keep matches in the
// order they appear, duplicates included.
package measure

import (
	"regexp"
	"strconv"
	"strings"
)

type Kind string

const (
	KindHeight      Kind = "height"
	KindArea        Kind = "area"
	KindStoreyCount Kind = "storeyCount"
)

// Measurement is one normalized value found in text: meters for heights,
// square meters for areas, whole storeys for storey counts.
type Measurement struct {
	Kind  Kind    `json:"kind"`
	Value float64 `json:"value"`
}

var (
	// Longest unit spellings first so "2500mm" is one millimeter match. British
	// and American spellings are both accepted.
	// Units must end at a word boundary, which keeps "m2" out of dimensions.
	dimensionRe = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(millimetres|millimetre|millimeters|millimeter|mm|metres|metre|meters|meter|m)\b`)
	areaRe      = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:sq\.?\s*m|square\s+meters?|m2|m²)`)
	floorRe     = regexp.MustCompile(`(\d+)[\s-]stor(?:eys|ey|ies|y)`)
)

// ExtractDimensions returns every length mention converted to meters.
func ExtractDimensions(text string) []float64 {
	matches := dimensionRe.FindAllStringSubmatch(text, -1)
	out := make([]float64, 0, len(matches))
	for _, m := range matches {
		v, ok := parseNumber(m[1])
		if !ok {
			continue
		}
		if strings.HasPrefix(m[2], "mm") || strings.HasPrefix(m[2], "millimet") {
			v /= 1000
		}
		out = append(out, v)
	}
	return out
}

// ExtractAreas returns every square-meter mention.
func ExtractAreas(text string) []float64 {
	matches := areaRe.FindAllStringSubmatch(text, -1)
	out := make([]float64, 0, len(matches))
	for _, m := range matches {
		if v, ok := parseNumber(m[1]); ok {
			out = append(out, v)
		}
	}
	return out
}

// ExtractFloorCount returns every "<n>-storey" style mention.
func ExtractFloorCount(text string) []int {
	matches := floorRe.FindAllStringSubmatch(text, -1)
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		if n, err := strconv.Atoi(m[1]); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// Extract runs all extractors and tags each value with its kind: heights
// first, then areas, then storey counts.
func Extract(text string) []Measurement {
	var out []Measurement
	for _, v := range ExtractDimensions(text) {
		out = append(out, Measurement{Kind: KindHeight, Value: v})
	}
	for _, v := range ExtractAreas(text) {
		out = append(out, Measurement{Kind: KindArea, Value: v})
	}
	for _, n := range ExtractFloorCount(text) {
		out = append(out, Measurement{Kind: KindStoreyCount, Value: float64(n)})
	}
	return out
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
