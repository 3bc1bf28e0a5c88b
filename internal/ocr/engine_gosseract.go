//go:build cgo && ocr

package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// gosseractEngine runs tesseract in-process through libtesseract.
type gosseractEngine struct {
	tessdata string
}

func newGosseractEngine(tessdata string) (Engine, error) {
	return &gosseractEngine{tessdata: tessdata}, nil
}

func (g *gosseractEngine) Name() string { return EngineGosseract }

func (g *gosseractEngine) Open(_ context.Context, lang string) (Session, error) {
	client := gosseract.NewClient()
	if g.tessdata != "" {
		client.TessdataPrefix = g.tessdata
	}
	if err := client.SetLanguage(lang); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set language: %w", err)
	}
	return &gosseractSession{client: client}, nil
}

type gosseractSession struct {
	client *gosseract.Client
}

func (s *gosseractSession) Recognize(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.client.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := s.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return text, nil
}

func (s *gosseractSession) Close() error {
	return s.client.Close()
}
