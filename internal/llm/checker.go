package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/permit-compliance/internal/common"
	"github.com/joseph-ayodele/permit-compliance/internal/compliance"
	"github.com/joseph-ayodele/permit-compliance/internal/standards"
)

// ErrDisabled is the outcome error when no provider is configured.
var ErrDisabled = errors.New("ai checker disabled")

// Outcome is the result of one AI pass. Exactly one of Issues and Err is
// meaningful: when Err is set the pass failed and Issues is empty.
type Outcome struct {
	Issues []compliance.Issue
	Err    error
}

// Findings collapses a failed outcome to the single fallback notice.
func (o Outcome) Findings() []compliance.Issue {
	if o.Err != nil {
		return []compliance.Issue{{
			Source:  compliance.SourceNotice,
			Kind:    compliance.KindAIUnavailable,
			Message: FallbackNotice,
		}}
	}
	return o.Issues
}

// Checker wraps a Reviewer with the prompt, one attempt and a timeout.
type Checker struct {
	reviewer    Reviewer
	table       standards.Table
	timeout     time.Duration
	temperature float32
	maxTokens   int
	logger      *slog.Logger
}

type CheckerOption func(*Checker)

func WithTimeout(d time.Duration) CheckerOption {
	return func(c *Checker) { c.timeout = d }
}

func WithTemperature(t float32) CheckerOption {
	return func(c *Checker) { c.temperature = t }
}

func WithMaxTokens(n int) CheckerOption {
	return func(c *Checker) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// NewChecker builds a checker. A nil reviewer gives a disabled checker whose
// every outcome is ErrDisabled.
func NewChecker(reviewer Reviewer, table standards.Table, logger *slog.Logger, opts ...CheckerOption) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Checker{
		reviewer:    reviewer,
		table:       table,
		timeout:     30 * time.Second,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether a provider is configured.
func (c *Checker) Enabled() bool {
	return c.reviewer != nil
}

// Check runs one review. Provider errors and timeouts are returned in the
// Outcome, never as a panic or a separate error.
func (c *Checker) Check(ctx context.Context, text string) Outcome {
	if c.reviewer == nil {
		return Outcome{Err: ErrDisabled}
	}
	rid := uuid.New().String()
	start := time.Now()

	cctx, cancel := common.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Info("llm.review.start",
		"req_id", rid,
		"provider", c.reviewer.Name(),
		"text_len", len(text),
		"timeout_ms", c.timeout.Milliseconds(),
	)
	lines, err := c.reviewer.Review(cctx, ReviewRequest{
		SystemPrompt: BuildSystemPrompt(c.table.JSON()),
		UserPrompt:   BuildUserPrompt(text),
		Temperature:  c.temperature,
		MaxTokens:    c.maxTokens,
	})
	if err != nil {
		c.logger.Error("llm.review.failed",
			"req_id", rid,
			"provider", c.reviewer.Name(),
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return Outcome{Err: common.AIServiceError("ai review failed", err)}
	}

	issues := ToIssues(lines)
	c.logger.Info("llm.review.ok",
		"req_id", rid,
		"provider", c.reviewer.Name(),
		"issues", len(issues),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Outcome{Issues: issues}
}
