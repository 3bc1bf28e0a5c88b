//go:build !cgo || !ocr

package ocr

import "fmt"

func newGosseractEngine(string) (Engine, error) {
	return nil, fmt.Errorf("%w: built without cgo/ocr tags, use OCR_ENGINE=cli", ErrEngineUnavailable)
}
