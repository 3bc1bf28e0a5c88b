package ocr

import (
	"context"
	"errors"
	"fmt"
)

const (
	EngineCLI       = "cli"
	EngineGosseract = "gosseract"
)

// ErrEngineUnavailable is returned when the requested engine is not compiled in.
var ErrEngineUnavailable = errors.New("ocr engine unavailable")

// Engine hands out recognition sessions. Sessions are not shared between
// extractions; each Open pays the engine start-up cost.
type Engine interface {
	Name() string
	Open(ctx context.Context, lang string) (Session, error)
}

// Session recognizes images until closed. Close must be called on every path.
type Session interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
	Close() error
}

func NewEngine(cfg Config, r Runner) (Engine, error) {
	switch cfg.Engine {
	case EngineCLI, "":
		return &cliEngine{runner: r, bin: cfg.Tesseract, tessdata: cfg.TessdataDir, psm: cfg.PSM}, nil
	case EngineGosseract:
		return newGosseractEngine(cfg.TessdataDir)
	default:
		return nil, fmt.Errorf("unknown ocr engine %q", cfg.Engine)
	}
}

// withSession opens a session, runs fn and always closes the session.
func withSession(ctx context.Context, en Engine, lang string, fn func(Session) error) (err error) {
	s, err := en.Open(ctx, lang)
	if err != nil {
		return fmt.Errorf("open %s session: %w", en.Name(), err)
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s session: %w", en.Name(), cerr)
		}
	}()
	return fn(s)
}
