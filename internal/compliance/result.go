package compliance

import (
	"time"
)

// PreviewLimit is the number of characters of extracted text kept on a result.
const PreviewLimit = 500

// Result is what a compliance check stores on a document and returns to
// callers. Compliant is true exactly when Issues is empty. Details carries
// the same issues in the same order with their source and standard; results
// stored before it existed have none.
type Result struct {
	Compliant     bool      `json:"compliant"`
	Issues        []string  `json:"issues"`
	Details       []Issue   `json:"details,omitempty"`
	TextExtracted string    `json:"textExtracted"`
	CheckedAt     time.Time `json:"checkedAt"`
}

// NewResult merges rule findings and AI findings, rule findings first.
func NewResult(text string, rule, ai []Issue, checkedAt time.Time) (Result, []Issue) {
	merged := make([]Issue, 0, len(rule)+len(ai))
	merged = append(merged, rule...)
	merged = append(merged, ai...)

	return Result{
		Compliant:     len(merged) == 0,
		Issues:        Strings(merged),
		Details:       merged,
		TextExtracted: Preview(text),
		CheckedAt:     checkedAt.UTC(),
	}, merged
}

// Preview returns the first PreviewLimit characters of text followed by
// "..." when text is longer, otherwise text unchanged.
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= PreviewLimit {
		return text
	}
	return string(runes[:PreviewLimit]) + "..."
}

// IssueDetails returns Details when it matches Issues, otherwise nil.
func (r Result) IssueDetails() []Issue {
	if len(r.Details) != len(r.Issues) {
		return nil
	}
	for i := range r.Details {
		if r.Details[i].Message != r.Issues[i] {
			return nil
		}
	}
	return r.Details
}

// Equivalent compares two results ignoring when they were produced.
func (r Result) Equivalent(other Result) bool {
	if r.Compliant != other.Compliant || r.TextExtracted != other.TextExtracted {
		return false
	}
	if len(r.Issues) != len(other.Issues) {
		return false
	}
	for i := range r.Issues {
		if r.Issues[i] != other.Issues[i] {
			return false
		}
	}
	return true
}
