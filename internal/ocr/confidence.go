package ocr

import (
	"regexp"
	"strings"
)

var (
	reUnit    = regexp.MustCompile(`\d\s*(mm|m|m2|m²|sq\.?\s*m)\b`)
	reStorey  = regexp.MustCompile(`\d[\s-]stor(eys|ey|ies|y)`)
	rePlanKey = regexp.MustCompile(`\b(floor plan|elevation|section|ventilation|fire|bedroom|kitchen|storey|ceiling)\b`)
)

// heuristicConfidence scores how much the text looks like a building plan.
func heuristicConfidence(txt string) float32 {
	if strings.TrimSpace(txt) == "" {
		return 0
	}
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if reUnit.MatchString(txtL) {
		score += 0.25
	}
	if reStorey.MatchString(txtL) {
		score += 0.15
	}
	if rePlanKey.MatchString(txtL) {
		score += 0.2
	}
	if len(txt) > 120 {
		score += 0.1
	} // enough content
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// blendConfidence weights an engine-reported score above the heuristic.
func blendConfidence(engine, heur float32) float32 {
	var conf float32
	if engine > 0 {
		conf = 0.7*engine + 0.3*heur
	} else {
		conf = heur
	}
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}
