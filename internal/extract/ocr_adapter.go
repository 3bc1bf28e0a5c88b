package extract

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/permit-compliance/internal/ocr"
)

type OCRAdapter struct {
	extractor *ocr.Extractor
	logger    *slog.Logger
}

func NewOCRAdapter(e *ocr.Extractor, l *slog.Logger) *OCRAdapter {
	if l == nil {
		l = slog.Default()
	}
	return &OCRAdapter{
		extractor: e,
		logger:    l,
	}
}

func (a *OCRAdapter) Extract(ctx context.Context, data []byte, mediaType string) (TextExtractionResult, error) {
	r, err := a.extractor.Extract(ctx, data, mediaType)
	if err != nil {
		return TextExtractionResult{}, err
	}
	a.logger.Debug("extract.ok",
		"media_type", mediaType,
		"method", r.Method,
		"pages", r.Pages,
		"chars", len(r.Text),
		"confidence", r.Confidence,
		"warnings", len(r.Warnings),
	)
	return TextExtractionResult{
		Text:       r.Text,
		Pages:      r.Pages,
		SourceType: r.SourceType,
		Method:     r.Method,
		Language:   r.Language,
		Duration:   r.Duration,
		Warnings:   r.Warnings,
		Confidence: r.Confidence,
	}, nil
}
