package pipeline

import (
	"context"
	"crypto/sha256"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/permit-compliance/constants"
	"github.com/joseph-ayodele/permit-compliance/internal/common"
	"github.com/joseph-ayodele/permit-compliance/internal/entity"
	"github.com/joseph-ayodele/permit-compliance/internal/extract"
	"github.com/joseph-ayodele/permit-compliance/internal/observability"
	"github.com/joseph-ayodele/permit-compliance/internal/repository"
)

// Upload is one incoming document.
type Upload struct {
	UserID        string
	ApplicationID *string
	CategoryID    *string
	FileName      string
	MediaType     string
	Data          []byte
}

// UploadStage validates an upload, extracts its text and stores it.
type UploadStage struct {
	Docs      repository.DocumentRepository
	Extractor extract.TextExtractor
	Metrics   *observability.Metrics
	Logger    *slog.Logger
}

func NewUploadStage(docs repository.DocumentRepository, tx extract.TextExtractor, metrics *observability.Metrics, logger *slog.Logger) *UploadStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadStage{Docs: docs, Extractor: tx, Metrics: metrics, Logger: logger}
}

// Run stores the upload and returns the document. When the caller already
// uploaded identical bytes for the same application the existing document is
// returned with
// duplicate=true and nothing is written. Extraction failures never abort the
// upload: the document is stored with empty text.
func (s *UploadStage) Run(ctx context.Context, in Upload) (doc *entity.Document, duplicate bool, err error) {
	mediaType, err := validateUpload(&in)
	if err != nil {
		return nil, false, err
	}

	sum := sha256.Sum256(in.Data)
	hash := sum[:]
	existing, err := s.Docs.GetByUploadKey(ctx, in.UserID, in.ApplicationID, hash)
	switch {
	case err == nil:
		s.Logger.Info("upload.duplicate", "user_id", in.UserID, "document_id", existing.ID, "file_name", in.FileName)
		return existing, true, nil
	case !errors.Is(err, common.ErrNotFound):
		return nil, false, common.WrapError(err, "dedup lookup")
	}

	res := s.extract(ctx, in, mediaType)

	doc, err = s.Docs.Create(ctx, &entity.Document{
		UserID:           in.UserID,
		ApplicationID:    in.ApplicationID,
		CategoryID:       in.CategoryID,
		FileName:         in.FileName,
		FileType:         mediaType,
		FileSize:         int64(len(in.Data)),
		ContentHash:      hash,
		FileData:         in.Data,
		ExtractedText:    res.Text,
		ExtractionMethod: res.Method,
		OCRConfidence:    res.Confidence,
		Status:           constants.DocumentStatusPending,
	})
	if err != nil {
		return nil, false, common.PersistenceError("store document", err)
	}
	s.Logger.Info("upload.ok",
		"user_id", in.UserID,
		"document_id", doc.ID,
		"file_name", doc.FileName,
		"bytes", doc.FileSize,
		"method", doc.ExtractionMethod,
		"text_len", len(doc.ExtractedText),
	)
	return doc, false, nil
}

func (s *UploadStage) extract(ctx context.Context, in Upload, mediaType string) extract.TextExtractionResult {
	if s.Extractor == nil {
		return extract.TextExtractionResult{Method: constants.MethodNone}
	}
	start := time.Now()
	res, err := s.Extractor.Extract(ctx, in.Data, mediaType)
	if err != nil {
		s.Metrics.RecordExtraction(constants.MapMediaTypeToFormat(mediaType), false, time.Since(start))
		s.Logger.Error("extract.failed",
			"user_id", in.UserID,
			"file_name", in.FileName,
			"media_type", mediaType,
			"error", err,
		)
		return extract.TextExtractionResult{Method: constants.MethodNone}
	}
	if res.Method == "" {
		res.Method = constants.MethodNone
	}
	s.Metrics.RecordExtraction(res.Method, true, time.Since(start))
	s.Logger.Info("extract.ok",
		"file_name", in.FileName,
		"method", res.Method,
		"pages", res.Pages,
		"confidence", res.Confidence,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res
}

// validateUpload checks the required fields and resolves the media type,
// falling back to the file extension when none was declared.
func validateUpload(in *Upload) (string, error) {
	if name := strings.TrimSpace(in.FileName); name != "" {
		in.FileName = filepath.Base(name)
	}
	v := common.NewValidator().
		Field("userId", in.UserID, common.Required).
		Field("fileName", in.FileName, common.Required).
		Field("file", int64(len(in.Data)), common.MaxBytes(constants.MaxUploadBytes))
	if err := common.ValidateAndReturnError(v); err != nil {
		return "", err
	}

	ext := constants.NormalizeExt(filepath.Ext(in.FileName))
	mediaType := constants.NormalizeMediaType(in.MediaType)
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = constants.MediaTypeFromExt(ext)
	}
	if constants.MapMediaTypeToFormat(mediaType) == "" {
		return "", common.InvalidArgumentErrorf("unsupported file type %q", in.FileName)
	}
	return mediaType, nil
}
