package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/permit-compliance/constants"
	"github.com/joseph-ayodele/permit-compliance/internal/common"
	"github.com/joseph-ayodele/permit-compliance/internal/compliance"
	"github.com/joseph-ayodele/permit-compliance/internal/entity"
)

type pgDocumentRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
	now    func() time.Time
}

func NewPgDocumentRepository(pool *pgxpool.Pool, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &pgDocumentRepository{pool: pool, logger: logger, now: time.Now}
}

func (r *pgDocumentRepository) Create(ctx context.Context, doc *entity.Document) (*entity.Document, error) {
	d := prepareDocument(doc, r.now())
	_, err := r.pool.Exec(ctx, `
		INSERT INTO documents (id, user_id, application_id, category_id, file_name, file_type, file_size,
			content_hash, file_data, extracted_text, extraction_method, ocr_confidence, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		d.ID, d.UserID, d.ApplicationID, d.CategoryID, d.FileName, d.FileType, d.FileSize,
		d.ContentHash, d.FileData, d.ExtractedText, d.ExtractionMethod, d.OCRConfidence, string(d.Status), d.CreatedAt, d.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to create document", "user_id", d.UserID, "file_name", d.FileName, "error", err)
		return nil, err
	}
	return d, nil
}

func (r *pgDocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	d, err := scanDocument(r.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NotFoundError("document not found")
	}
	if err != nil {
		r.logger.Error("failed to get document", "document_id", id, "error", err)
		return nil, err
	}
	return d, nil
}

func (r *pgDocumentRepository) GetByUploadKey(ctx context.Context, userID string, applicationID *string, hash []byte) (*entity.Document, error) {
	d, err := scanDocument(r.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents
		 WHERE user_id = $1 AND COALESCE(application_id, '') = COALESCE($2, '') AND content_hash = $3`,
		userID, applicationID, hash))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NotFoundError("document not found")
	}
	if err != nil {
		r.logger.Error("failed to get document by hash", "user_id", userID, "error", err)
		return nil, err
	}
	return d, nil
}

func (r *pgDocumentRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Document, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		r.logger.Error("failed to list documents", "user_id", userID, "error", err)
		return nil, err
	}
	defer rows.Close()

	out := make([]*entity.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *pgDocumentRepository) GetFile(ctx context.Context, id uuid.UUID) (*entity.DocumentFile, error) {
	var f entity.DocumentFile
	err := r.pool.QueryRow(ctx,
		`SELECT file_name, file_type, file_size, file_data FROM documents WHERE id = $1`, id).
		Scan(&f.FileName, &f.FileType, &f.FileSize, &f.Data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NotFoundError("document not found")
	}
	if err != nil {
		r.logger.Error("failed to get document file", "document_id", id, "error", err)
		return nil, err
	}
	return &f, nil
}

func (r *pgDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("failed to delete document", "document_id", id, "error", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundError("document not found")
	}
	return nil
}

func (r *pgDocumentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status constants.DocumentStatus, rejectionReason *string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE documents SET status = $2, rejection_reason = $3, updated_at = $4 WHERE id = $1`,
		id, string(status), rejectionReason, r.now().UTC())
	if err != nil {
		r.logger.Error("failed to update document status", "document_id", id, "status", status, "error", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundError("document not found")
	}
	return nil
}

func (r *pgDocumentRepository) UpdateComplianceResult(ctx context.Context, id uuid.UUID, result compliance.Result) error {
	b, err := encodeResult(result)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE documents SET compliance_result = $2, updated_at = $3 WHERE id = $1`,
		id, b, r.now().UTC())
	if err != nil {
		r.logger.Error("failed to update compliance result", "document_id", id, "error", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundError("document not found")
	}
	return nil
}
