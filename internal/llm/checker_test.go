package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/permit-compliance/constants"
	"github.com/joseph-ayodele/permit-compliance/internal/common"
	"github.com/joseph-ayodele/permit-compliance/internal/compliance"
	"github.com/joseph-ayodele/permit-compliance/internal/standards"
)

type stubReviewer struct {
	mu    sync.Mutex
	lines []string
	err   error
	delay time.Duration
	reqs  []ReviewRequest
}

func (s *stubReviewer) Name() string { return "stub" }

func (s *stubReviewer) Review(ctx context.Context, req ReviewRequest) ([]string, error) {
	s.mu.Lock()
	s.reqs = append(s.reqs, req)
	s.mu.Unlock()
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.lines, s.err
}

func TestChecker_Success(t *testing.T) {
	rv := &stubReviewer{lines: []string{"1. [Clear Height]: 2.2m is low"}}
	c := NewChecker(rv, standards.Default(), nil)

	out := c.Check(context.Background(), strings.Repeat("x", 4000))

	require.NoError(t, out.Err)
	require.Len(t, out.Issues, 1)
	assert.Equal(t, compliance.SourceAI, out.Issues[0].Source)
	assert.Equal(t, constants.ClearHeight, out.Issues[0].Standard)
	assert.Equal(t, "1. [Clear Height]: 2.2m is low", out.Issues[0].Message)
	assert.Equal(t, out.Issues, out.Findings())

	require.Len(t, rv.reqs, 1)
	req := rv.reqs[0]
	assert.Equal(t, float32(DefaultTemperature), req.Temperature)
	assert.Equal(t, DefaultMaxTokens, req.MaxTokens)
	assert.Contains(t, req.SystemPrompt, `"clear_height"`)
	assert.Contains(t, req.SystemPrompt, "N. [Standard]: description")
	assert.Equal(t, "DOCUMENT EXCERPT:\n"+strings.Repeat("x", MaxExcerptRunes), req.UserPrompt)
}

func TestChecker_ProviderFailureCollapsesToNotice(t *testing.T) {
	c := NewChecker(&stubReviewer{err: errors.New("503")}, standards.Default(), nil)

	out := c.Check(context.Background(), "plan")

	require.Error(t, out.Err)
	assert.True(t, errors.Is(out.Err, common.ErrAIService))
	assert.Empty(t, out.Issues)
	findings := out.Findings()
	require.Len(t, findings, 1)
	assert.Equal(t, FallbackNotice, findings[0].Message)
	assert.Equal(t, compliance.SourceNotice, findings[0].Source)
}

func TestChecker_TimeoutIsAFailure(t *testing.T) {
	c := NewChecker(&stubReviewer{delay: time.Second}, standards.Default(), nil, WithTimeout(20*time.Millisecond))

	out := c.Check(context.Background(), "plan")

	require.Error(t, out.Err)
	assert.True(t, errors.Is(out.Err, context.DeadlineExceeded))
	assert.Equal(t, FallbackNotice, out.Findings()[0].Message)
}

func TestChecker_Disabled(t *testing.T) {
	c := NewChecker(nil, standards.Default(), nil)

	assert.False(t, c.Enabled())
	out := c.Check(context.Background(), "plan")
	assert.ErrorIs(t, out.Err, ErrDisabled)
	assert.Equal(t, FallbackNotice, out.Findings()[0].Message)
}

func TestParseIssueLines(t *testing.T) {
	content := "Summary first\n1. [Ventilation]: none\r\n  2. [x]: indented\n3.[Walls]: thin\n4. Walls: no brackets\n10. [Fire Safety - Exits]: one exit only  "

	assert.Equal(t, []string{
		"1. [Ventilation]: none",
		"3.[Walls]: thin",
		"10. [Fire Safety - Exits]: one exit only",
	}, ParseIssueLines(content))
	assert.Empty(t, ParseIssueLines(""))
}

func TestToIssues_CanonicalizesLabels(t *testing.T) {
	issues := ToIssues([]string{
		"1. [Fire Safety - Exits]: one exit only",
		"2. [Ceiling Height]: low",
		"3. [Landscaping]: no trees",
	})

	require.Len(t, issues, 3)
	assert.Equal(t, constants.FireSafety, issues[0].Standard)
	assert.Equal(t, constants.ClearHeight, issues[1].Standard)
	assert.Equal(t, constants.OtherStandard, issues[2].Standard)
}

func TestBuildUserPrompt_CountsRunes(t *testing.T) {
	text := strings.Repeat("²", MaxExcerptRunes+5)
	assert.Equal(t, "DOCUMENT EXCERPT:\n"+strings.Repeat("²", MaxExcerptRunes), BuildUserPrompt(text))
	assert.Equal(t, "DOCUMENT EXCERPT:\nshort", BuildUserPrompt("short"))
}
