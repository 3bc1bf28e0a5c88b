// Package extract is the boundary between document bytes and the text the
// compliance pipeline works on.
package extract

import (
	"context"
	"time"
)

// TextExtractor turns a document buffer with its declared media type into
// text. Unsupported media types return an empty result, not an error.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, mediaType string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // "PDF" | "IMAGE" | ""
	Method     string // "pdf-text" | "pdf-ocr" | "image-ocr" | "none"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

// TextExtractorFunc adapts a function to TextExtractor.
type TextExtractorFunc func(ctx context.Context, data []byte, mediaType string) (TextExtractionResult, error)

func (f TextExtractorFunc) Extract(ctx context.Context, data []byte, mediaType string) (TextExtractionResult, error) {
	return f(ctx, data, mediaType)
}
