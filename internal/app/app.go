// Package app builds the shared components used by permitd and permitctl.
package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/joseph-ayodele/permit-compliance/internal/common"
	"github.com/joseph-ayodele/permit-compliance/internal/extract"
	"github.com/joseph-ayodele/permit-compliance/internal/llm"
	"github.com/joseph-ayodele/permit-compliance/internal/llm/anthropic"
	"github.com/joseph-ayodele/permit-compliance/internal/llm/openai"
	"github.com/joseph-ayodele/permit-compliance/internal/ocr"
	"github.com/joseph-ayodele/permit-compliance/internal/pipeline"
	"github.com/joseph-ayodele/permit-compliance/internal/standards"
)

// NewLogger returns a JSON logger for services and a text logger otherwise.
func NewLogger(w io.Writer, level slog.Level, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewExtractor builds the OCR-backed text extractor.
func NewExtractor(cfg common.OCRConfig, logger *slog.Logger) (extract.TextExtractor, error) {
	ex, err := ocr.NewExtractor(ocr.Config{
		Engine:        cfg.Engine,
		TesseractLang: cfg.Language,
		Tesseract:     cfg.Tesseract,
		Pdftoppm:      cfg.Pdftoppm,
		HeicConverter: cfg.HeicConverter,
		TessdataDir:   cfg.TessdataDir,
		ScannedPDFOCR: cfg.ScannedPDFOCR,
		MaxPages:      cfg.MaxPages,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("ocr extractor: %w", err)
	}
	return extract.NewOCRAdapter(ex, logger), nil
}

// NewReviewer returns the configured provider client, or nil when AI review
// is turned off or no key is set.
func NewReviewer(cfg common.AIConfig, logger *slog.Logger) llm.Reviewer {
	if cfg.APIKey == "" {
		return nil
	}
	switch cfg.Provider {
	case "openai":
		return openai.NewClient(openai.Config{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Model: cfg.Model}, logger)
	case "anthropic":
		return anthropic.NewClient(anthropic.Config{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Model: cfg.Model}, logger)
	default:
		return nil
	}
}

// NewAIChecker returns nil when no reviewer is available so the compliance
// stage records the AI-unavailable notice without calling out.
func NewAIChecker(cfg common.AIConfig, table standards.Table, logger *slog.Logger) pipeline.AIChecker {
	reviewer := NewReviewer(cfg, logger)
	if reviewer == nil {
		logger.Info("ai.review.disabled", "provider", cfg.Provider)
		return nil
	}
	return llm.NewChecker(reviewer, table, logger,
		llm.WithTimeout(cfg.Timeout),
		llm.WithTemperature(cfg.Temperature),
		llm.WithMaxTokens(cfg.MaxTokens),
	)
}
