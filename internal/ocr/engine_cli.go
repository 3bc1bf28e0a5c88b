package ocr

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// cliEngine shells out to the tesseract binary once per image.
type cliEngine struct {
	runner   Runner
	bin      string
	tessdata string
	psm      int
}

func (c *cliEngine) Name() string { return EngineCLI }

func (c *cliEngine) Open(_ context.Context, lang string) (Session, error) {
	if c.bin == "" {
		return nil, errors.New("tesseract binary not configured")
	}
	return &cliSession{engine: c, lang: lang}, nil
}

type cliSession struct {
	engine *cliEngine
	lang   string

	mu     sync.Mutex
	closed bool
}

func (s *cliSession) Recognize(ctx context.Context, imagePath string) (string, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return "", errors.New("session closed")
	}

	// tesseract <file> stdout -l <lang>
	args := []string{imagePath, "stdout", "-l", s.lang}
	if s.engine.psm > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", s.engine.psm))
	}
	if s.engine.tessdata != "" {
		args = append(args, "--tessdata-dir", s.engine.tessdata)
	}
	out, errb, err := s.engine.runner.Run(ctx, s.engine.bin, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return reBoxNoise.ReplaceAllString(string(out), ""), nil
}

func (s *cliSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
