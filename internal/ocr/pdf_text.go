package ocr

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/joseph-ayodele/permit-compliance/constants"
)

func (e *Extractor) extractPDF(ctx context.Context, data []byte) (ExtractionResult, error) {
	res := ExtractionResult{SourceType: constants.PDF, Method: constants.MethodPDFText}

	pages, err := pdfPageCount(data)
	if err != nil {
		return res, fmt.Errorf("invalid pdf: %w", err)
	}
	res.Pages = pages

	text, err := pdfPlainText(data)
	if err != nil {
		return res, fmt.Errorf("read pdf text: %w", err)
	}
	if strings.TrimSpace(text) != "" || !e.cfg.ScannedPDFOCR {
		res.Text = text
		return res, nil
	}

	e.logger.Info("ocr.pdf.no_text_layer", "pages", pages, "engine", e.engine.Name())
	ocrText, n, warns, err := e.pdfToOCR(ctx, data)
	res.Method = constants.MethodPDFOCR
	res.Language = e.cfg.TesseractLang
	res.Warnings = append(res.Warnings, warns...)
	if err != nil {
		return res, err
	}
	res.Text = ocrText
	res.Pages = n
	return res, nil
}

// pdfPageCount opens the document with relaxed validation; structurally
// broken files fail here before any text extraction.
func pdfPageCount(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("read pdf context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("page count: %w", err)
	}
	return ctx.PageCount, nil
}

// pdfPlainText concatenates the text layer of every page. The pdf reader
// panics on some malformed content streams, so panics become errors.
func pdfPlainText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}
