// Package anthropic reviews documents with Claude models through the
// Messages API.
package anthropic

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/joseph-ayodele/permit-compliance/internal/llm"
)

const defaultModel = "claude-3-5-haiku-latest"

type Config struct {
	APIKey  string // if empty, falls back to env ANTHROPIC_API_KEY
	BaseURL string
	Model   string
}

type Client struct {
	cfg    Config
	api    *anthropic.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	var opts []anthropic.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")))
	}
	return &Client{
		cfg:    cfg,
		api:    anthropic.NewClient(cfg.APIKey, opts...),
		logger: logger,
	}
}

func (c *Client) Name() string { return "anthropic" }

// Review implements llm.Reviewer with a single Messages call.
func (c *Client) Review(ctx context.Context, req llm.ReviewRequest) ([]string, error) {
	start := time.Now()
	temp := req.Temperature
	prompt := req.UserPrompt

	resp, err := c.api.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.cfg.Model),
		System:      req.SystemPrompt,
		MaxTokens:   req.MaxTokens,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}

	content := textFromResponse(resp)
	c.logger.Debug("llm.anthropic.response",
		"model", c.cfg.Model,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return llm.ParseIssueLines(content), nil
}

func textFromResponse(resp anthropic.MessagesResponse) string {
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(*block.Text)
		}
	}
	return b.String()
}
