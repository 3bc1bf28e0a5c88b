// Package ocr turns uploaded document bytes into plain text. PDFs are read
// from their text layer, falling back to rasterize-and-OCR for scanned plans;
// images go through an OCR engine session.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/permit-compliance/constants"
	"github.com/joseph-ayodele/permit-compliance/internal/common"
)

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Engine        string // "cli" | "gosseract"; default "cli"
	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit

	TessdataDir   string
	HeicConverter string // "heif-convert" | "magick" | "sips"
	ScannedPDFOCR bool

	PSM int // e.g., 6 is good for uniform block of text
}

type ExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // constants.PDF | constants.IMAGE | ""
	Method     string // constants.MethodPDFText | MethodPDFOCR | MethodImageOCR | MethodNone
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

type Extractor struct {
	cfg    Config
	runner Runner
	engine Engine
	logger *slog.Logger
}

type Option func(*Extractor)

// WithRunner replaces the process runner used for external tools.
func WithRunner(r Runner) Option {
	return func(e *Extractor) { e.runner = r }
}

// WithEngine replaces the OCR engine chosen from Config.Engine.
func WithEngine(en Engine) Option {
	return func(e *Extractor) { e.engine = en }
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) (*Extractor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.Engine == "" {
		cfg.Engine = EngineCLI
	}
	e := &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	if e.engine == nil {
		en, err := NewEngine(cfg, e.runner)
		if err != nil {
			return nil, err
		}
		e.engine = en
	}
	return e, nil
}

// Extract picks a strategy from the declared media type. Unsupported media
// types yield an empty result and no error. Failures wrap common.ErrExtraction.
func (e *Extractor) Extract(ctx context.Context, data []byte, mediaType string) (ExtractionResult, error) {
	start := time.Now()
	mt := constants.NormalizeMediaType(mediaType)
	e.logger.Debug("ocr.extract.start", "media_type", mt, "bytes", len(data), "engine", e.engine.Name())

	var (
		res ExtractionResult
		err error
	)
	switch constants.MapMediaTypeToFormat(mt) {
	case constants.PDF:
		res, err = e.extractPDF(ctx, data)
	case constants.IMAGE:
		res, err = e.extractImage(ctx, data, mt)
	default:
		e.logger.Debug("ocr.extract.skipped", "media_type", mt)
		return ExtractionResult{Method: constants.MethodNone, Duration: time.Since(start)}, nil
	}
	res.Duration = time.Since(start)
	if err != nil {
		e.logger.Warn("ocr.extract.failed", "media_type", mt, "method", res.Method, "error", err)
		return res, common.ExtractionError(fmt.Sprintf("could not extract text from %s", mt), err)
	}

	res.Text = Sanitize(Normalize(res.Text))
	res.Confidence = blendConfidence(res.Confidence, heuristicConfidence(res.Text))
	e.logger.Info("ocr.extract.ok",
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"confidence", res.Confidence,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// workDir creates a private temp directory for intermediate files.
func (e *Extractor) workDir(prefix string) (string, func(), error) {
	dir, err := os.MkdirTemp("", prefix)
	if err != nil {
		return "", nil, err
	}
	return dir, func() {
		if err := os.RemoveAll(dir); err != nil {
			e.logger.Warn("ocr.workdir.cleanup_failed", "dir", dir, "error", err)
		}
	}, nil
}

func writeInput(dir, name string, data []byte) (string, error) {
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o600); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return p, nil
}
