package llm

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/permit-compliance/constants"
	"github.com/joseph-ayodele/permit-compliance/internal/compliance"
)

var (
	reIssueLine = regexp.MustCompile(`^\d+\.\s*\[.+\]:`)
	reLabel     = regexp.MustCompile(`^\d+\.\s*\[([^\]]+)\]:`)
)

// ParseIssueLines keeps only lines shaped "N. [Standard]: description",
// trimmed. Everything else in the response is commentary.
func ParseIssueLines(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if reIssueLine.MatchString(line) {
			out = append(out, strings.TrimSpace(line))
		}
	}
	return out
}

// ToIssues tags parsed lines as AI findings and resolves their labels to
// standards categories. The message stays exactly as the model wrote it.
func ToIssues(lines []string) []compliance.Issue {
	out := make([]compliance.Issue, 0, len(lines))
	for _, line := range lines {
		std := constants.OtherStandard
		if m := reLabel.FindStringSubmatch(line); m != nil {
			std, _ = constants.CanonicalizeStandard(m[1])
		}
		out = append(out, compliance.Issue{
			Source:   compliance.SourceAI,
			Kind:     compliance.KindAIFinding,
			Standard: std,
			Message:  line,
		})
	}
	return out
}
