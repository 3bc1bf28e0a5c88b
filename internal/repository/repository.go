// Package repository persists documents, their blobs and compliance results,
// and the review thread attached to each document.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/permit-compliance/constants"
	"github.com/joseph-ayodele/permit-compliance/internal/compliance"
	"github.com/joseph-ayodele/permit-compliance/internal/entity"
)

// DocumentRepository stores documents. Lookups of unknown ids return an
// error wrapping common.ErrNotFound.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) (*entity.Document, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	// GetByUploadKey finds the document a user already uploaded with the same
	// bytes for the same application. A nil applicationID matches documents
	// stored without one.
	GetByUploadKey(ctx context.Context, userID string, applicationID *string, hash []byte) (*entity.Document, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Document, error)
	GetFile(ctx context.Context, id uuid.UUID) (*entity.DocumentFile, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status constants.DocumentStatus, rejectionReason *string) error
	// UpdateComplianceResult overwrites the stored result; last write wins.
	UpdateComplianceResult(ctx context.Context, id uuid.UUID, result compliance.Result) error
}

type ReviewRepository interface {
	Add(ctx context.Context, review *entity.DocumentReview) (*entity.DocumentReview, error)
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*entity.DocumentReview, error)
}

// rowScanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const documentColumns = `id, user_id, application_id, category_id, file_name, file_type, file_size,
	content_hash, extracted_text, extraction_method, ocr_confidence, status, rejection_reason,
	compliance_result, created_at, updated_at`

const reviewColumns = `id, document_id, reviewer_id, reviewer_name, comments, status, created_at`

func scanDocument(row rowScanner) (*entity.Document, error) {
	var (
		d                entity.Document
		status           string
		result           []byte
		created, updated any
	)
	if err := row.Scan(
		&d.ID, &d.UserID, &d.ApplicationID, &d.CategoryID, &d.FileName, &d.FileType, &d.FileSize,
		&d.ContentHash, &d.ExtractedText, &d.ExtractionMethod, &d.OCRConfidence, &status, &d.RejectionReason,
		&result, &created, &updated,
	); err != nil {
		return nil, err
	}
	var err error
	if d.CreatedAt, err = asTime(created); err != nil {
		return nil, err
	}
	if d.UpdatedAt, err = asTime(updated); err != nil {
		return nil, err
	}
	d.Status = constants.DocumentStatus(status)
	if len(result) > 0 {
		var r compliance.Result
		if err := json.Unmarshal(result, &r); err != nil {
			return nil, fmt.Errorf("decode compliance result: %w", err)
		}
		d.ComplianceResult = &r
	}
	return &d, nil
}

func scanReview(row rowScanner) (*entity.DocumentReview, error) {
	var (
		r       entity.DocumentReview
		status  string
		created any
	)
	if err := row.Scan(&r.ID, &r.DocumentID, &r.ReviewerID, &r.ReviewerName, &r.Comments, &status, &created); err != nil {
		return nil, err
	}
	var err error
	if r.CreatedAt, err = asTime(created); err != nil {
		return nil, err
	}
	r.Status = constants.DocumentStatus(status)
	return &r, nil
}

// prepareDocument fills defaults for a new row.
func prepareDocument(doc *entity.Document, now time.Time) *entity.Document {
	d := *doc
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Status == "" {
		d.Status = constants.DocumentStatusPending
	}
	if d.ExtractionMethod == "" {
		d.ExtractionMethod = constants.MethodNone
	}
	if d.FileSize == 0 {
		d.FileSize = int64(len(d.FileData))
	}
	d.CreatedAt = now.UTC()
	d.UpdatedAt = d.CreatedAt
	return &d
}

func prepareReview(rv *entity.DocumentReview, now time.Time) *entity.DocumentReview {
	r := *rv
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.CreatedAt = now.UTC()
	return &r
}

func encodeResult(result compliance.Result) ([]byte, error) {
	if result.Issues == nil {
		result.Issues = []string{}
	}
	b, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode compliance result: %w", err)
	}
	return b, nil
}

// sqlite hands timestamps back as text unless the driver recognizes the
// column type; postgres always returns time.Time.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func asTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return parseTime(t)
	case []byte:
		return parseTime(string(t))
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type %T", v)
	}
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
