package ocr

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// pdfToOCR renders pages with pdftoppm and recognizes each one inside a
// single engine session.
func (e *Extractor) pdfToOCR(ctx context.Context, data []byte) (text string, pages int, warnings []string, err error) {
	dir, cleanup, err := e.workDir("permit-pp-*")
	if err != nil {
		return "", 0, nil, err
	}
	defer cleanup()

	in, err := writeInput(dir, "input.pdf", data)
	if err != nil {
		return "", 0, nil, err
	}

	prefix := filepath.Join(dir, "page")
	args := []string{"-r", fmt.Sprintf("%d", e.cfg.DPI), "-png"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", fmt.Sprintf("%d", e.cfg.MaxPages))
	}
	args = append(args, in, prefix)
	// pdftoppm -r 300 -png [-l N] <in.pdf> <tmp/page>
	if _, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, args...); err != nil {
		return "", 0, []string{string(errb)}, fmt.Errorf("pdftoppm: %w", err)
	}

	// collect generated pngs (page-1.png, page-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", 0, []string{"pdftoppm produced no images"}, fmt.Errorf("no pages rendered")
	}

	var b strings.Builder
	err = withSession(ctx, e.engine, e.cfg.TesseractLang, func(s Session) error {
		for _, img := range matches {
			txt, rerr := s.Recognize(ctx, img)
			if rerr != nil {
				warnings = append(warnings, rerr.Error())
				continue
			}
			if b.Len() > 0 {
				b.WriteString("\n\f\n") // keep a clear page break marker
			}
			b.WriteString(txt)
		}
		return nil
	})
	if err != nil {
		return "", 0, warnings, err
	}
	return b.String(), len(matches), warnings, nil
}
