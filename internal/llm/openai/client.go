package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/joseph-ayodele/permit-compliance/internal/llm"
)

func (c *Client) Name() string { return "openai" }

// Review implements llm.Reviewer with a single chat completion.
func (c *Client) Review(ctx context.Context, req llm.ReviewRequest) ([]string, error) {
	start := time.Now()
	c.logger.Debug("llm.openai.request",
		"model", c.cfg.Model,
		"temp", req.Temperature,
		"max_tokens", req.MaxTokens,
		"prompt_len", len(req.UserPrompt),
	)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in openai response")
	}

	content := resp.Choices[0].Message.Content
	c.logger.Debug("llm.openai.response",
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return llm.ParseIssueLines(content), nil
}
