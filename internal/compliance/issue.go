package compliance

import (
	"strconv"

	"github.com/joseph-ayodele/permit-compliance/constants"
)

// Source says which pass produced an issue.
type Source string

const (
	SourceRule   Source = "rule"
	SourceAI     Source = "ai"
	SourceNotice Source = "notice"
)

// IssueKind classifies rule findings. AI findings use KindAIFinding.
type IssueKind string

const (
	KindHeightBelowNonHabitable IssueKind = "height_below_non_habitable"
	KindHeightBelowHabitable    IssueKind = "height_below_habitable"
	KindAreaBelowHabitable      IssueKind = "area_below_habitable"
	KindExceedsResidential      IssueKind = "storeys_exceed_residential"
	KindExceedsDwelling         IssueKind = "storeys_exceed_dwelling"
	KindMissingVentilation      IssueKind = "missing_ventilation_mention"
	KindMissingFireSafety       IssueKind = "missing_fire_safety_mention"
	KindAIFinding               IssueKind = "ai_finding"
	KindAIUnavailable           IssueKind = "ai_unavailable"
)

// Issue is one compliance finding. Measured and Threshold are nil for
// findings that are not about a number.
type Issue struct {
	Source    Source             `json:"source"`
	Kind      IssueKind          `json:"kind"`
	Measured  *float64           `json:"measured,omitempty"`
	Threshold *float64           `json:"threshold,omitempty"`
	Standard  constants.Standard `json:"standard,omitempty"`
	Message   string             `json:"message"`
}

// String renders the issue the way it is shown to users.
func (i Issue) String() string {
	return i.Message
}

// Strings renders issues in order.
func Strings(issues []Issue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.String())
	}
	return out
}

func fmtNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func ptr(v float64) *float64 {
	return &v
}
