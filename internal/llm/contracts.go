// Package llm runs the open-ended compliance pass: the extracted text and the
// standards table go to a language model, numbered findings come back.
package llm

import (
	"context"
)

// Reviewer asks a language model for compliance findings. Implementations
// return the raw issue lines already filtered by ParseIssueLines.
type Reviewer interface {
	Name() string
	Review(ctx context.Context, req ReviewRequest) ([]string, error)
}

// ReviewRequest is one completion request.
type ReviewRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	MaxTokens    int
}

// Defaults for a review request.
const (
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 800
	// MaxExcerptRunes is how much of the extracted text is sent.
	MaxExcerptRunes = 3500
)

// FallbackNotice replaces AI findings when the provider could not be used.
const FallbackNotice = "AI compliance checker unavailable, rule-based results only"
