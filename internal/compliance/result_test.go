package compliance

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreview(t *testing.T) {
	short := strings.Repeat("a", PreviewLimit)
	assert.Equal(t, short, Preview(short))

	long := strings.Repeat("b", PreviewLimit+1)
	assert.Equal(t, strings.Repeat("b", PreviewLimit)+"...", Preview(long))

	multibyte := strings.Repeat("²", PreviewLimit+10)
	assert.Equal(t, strings.Repeat("²", PreviewLimit)+"...", Preview(multibyte))

	assert.Equal(t, "", Preview(""))
}

func TestNewResult_RuleFirstAndCompliance(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rule := []Issue{{Source: SourceRule, Message: "r1"}}
	ai := []Issue{{Source: SourceAI, Message: "1. [Stairways]: too narrow"}}

	res, merged := NewResult("text", rule, ai, now)

	assert.False(t, res.Compliant)
	assert.Equal(t, []string{"r1", "1. [Stairways]: too narrow"}, res.Issues)
	assert.Len(t, merged, 2)
	assert.Equal(t, merged, res.Details)
	assert.Equal(t, "text", res.TextExtracted)
	assert.Equal(t, now, res.CheckedAt)
}

func TestResult_IssueDetails(t *testing.T) {
	res, _ := NewResult("text", []Issue{{Source: SourceRule, Message: "r1"}}, nil, time.Now())
	require.Len(t, res.IssueDetails(), 1)
	assert.Equal(t, SourceRule, res.IssueDetails()[0].Source)

	legacy := Result{Issues: []string{"r1"}}
	assert.Nil(t, legacy.IssueDetails())

	drifted := Result{Issues: []string{"r1"}, Details: []Issue{{Message: "other"}}}
	assert.Nil(t, drifted.IssueDetails())

	b, err := json.Marshal(legacy)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "details")
}

func TestNewResult_EmptyIsCompliant(t *testing.T) {
	res, _ := NewResult("fine", nil, nil, time.Now())

	assert.True(t, res.Compliant)
	assert.NotNil(t, res.Issues)
	assert.Empty(t, res.Issues)
}

func TestResult_EquivalentIgnoresTime(t *testing.T) {
	a, _ := NewResult("x", []Issue{{Message: "m"}}, nil, time.Now())
	b, _ := NewResult("x", []Issue{{Message: "m"}}, nil, time.Now().Add(time.Hour))
	c, _ := NewResult("x", []Issue{{Message: "n"}}, nil, time.Now())

	assert.True(t, a.Equivalent(b))
	assert.False(t, a.Equivalent(c))
}
