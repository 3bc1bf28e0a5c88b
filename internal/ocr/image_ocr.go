package ocr

import (
	"context"

	"github.com/joseph-ayodele/permit-compliance/constants"
)

func (e *Extractor) extractImage(ctx context.Context, data []byte, mediaType string) (ExtractionResult, error) {
	res := ExtractionResult{
		SourceType: constants.IMAGE,
		Method:     constants.MethodImageOCR,
		Language:   e.cfg.TesseractLang,
		Pages:      1,
	}

	dir, cleanup, err := e.workDir("permit-img-*")
	if err != nil {
		return res, err
	}
	defer cleanup()

	path, err := writeInput(dir, "input"+extForMediaType(mediaType), data)
	if err != nil {
		return res, err
	}
	if constants.IsHEICMediaType(mediaType) {
		out, warns, err := convertHEICtoPNG(ctx, e.runner, e.cfg.HeicConverter, path, dir)
		res.Warnings = append(res.Warnings, warns...)
		if err != nil {
			e.logger.Error("ocr.heic.convert_failed", "converter", e.cfg.HeicConverter, "error", err)
			return res, err
		}
		path = out
	}

	err = withSession(ctx, e.engine, e.cfg.TesseractLang, func(s Session) error {
		txt, rerr := s.Recognize(ctx, path)
		if rerr != nil {
			return rerr
		}
		res.Text = txt
		return nil
	})
	return res, err
}

func extForMediaType(mt string) string {
	switch mt {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/tiff":
		return ".tif"
	case "image/heic":
		return ".heic"
	case "image/heif":
		return ".heif"
	default:
		return ".img"
	}
}
