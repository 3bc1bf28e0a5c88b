package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/permit-compliance/constants"
	"github.com/joseph-ayodele/permit-compliance/internal/common"
	"github.com/joseph-ayodele/permit-compliance/internal/compliance"
	"github.com/joseph-ayodele/permit-compliance/internal/entity"
)

//go:embed sqlite_schema.sql
var sqliteSchema string

// SQLiteStore is a single-file document store for local runs and tests.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
// ":memory:" gives a private in-process database.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	if path == ":memory:" {
		dsn = "file::memory:?_pragma=foreign_keys(1)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == ":memory:" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	logger.Info("sqlite store ready", "path", path)
	return &SQLiteStore{db: db, path: path, logger: logger, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks the database handle.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Documents() DocumentRepository {
	return &sqliteDocuments{s}
}

func (s *SQLiteStore) Reviews() ReviewRepository {
	return &sqliteReviews{s}
}

type sqliteDocuments struct{ s *SQLiteStore }

func (r *sqliteDocuments) Create(ctx context.Context, doc *entity.Document) (*entity.Document, error) {
	d := prepareDocument(doc, r.s.now())
	_, err := r.s.db.ExecContext(ctx, `
		INSERT INTO documents (id, user_id, application_id, category_id, file_name, file_type, file_size,
			content_hash, file_data, extracted_text, extraction_method, ocr_confidence, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID.String(), d.UserID, d.ApplicationID, d.CategoryID, d.FileName, d.FileType, d.FileSize,
		d.ContentHash, d.FileData, d.ExtractedText, d.ExtractionMethod, float64(d.OCRConfidence), string(d.Status), d.CreatedAt, d.UpdatedAt)
	if err != nil {
		r.s.logger.Error("failed to create document", "user_id", d.UserID, "file_name", d.FileName, "error", err)
		return nil, err
	}
	return d, nil
}

func (r *sqliteDocuments) GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	d, err := scanDocument(r.s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundError("document not found")
	}
	if err != nil {
		r.s.logger.Error("failed to get document", "document_id", id, "error", err)
		return nil, err
	}
	return d, nil
}

func (r *sqliteDocuments) GetByUploadKey(ctx context.Context, userID string, applicationID *string, hash []byte) (*entity.Document, error) {
	d, err := scanDocument(r.s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents
		 WHERE user_id = ? AND COALESCE(application_id, '') = COALESCE(?, '') AND content_hash = ?`,
		userID, applicationID, hash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundError("document not found")
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *sqliteDocuments) ListByUser(ctx context.Context, userID string) ([]*entity.Document, error) {
	rows, err := r.s.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		r.s.logger.Error("failed to list documents", "user_id", userID, "error", err)
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

func (r *sqliteDocuments) GetFile(ctx context.Context, id uuid.UUID) (*entity.DocumentFile, error) {
	var f entity.DocumentFile
	err := r.s.db.QueryRowContext(ctx,
		`SELECT file_name, file_type, file_size, file_data FROM documents WHERE id = ?`, id.String()).
		Scan(&f.FileName, &f.FileType, &f.FileSize, &f.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundError("document not found")
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *sqliteDocuments) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id.String())
	if err != nil {
		r.s.logger.Error("failed to delete document", "document_id", id, "error", err)
		return err
	}
	return requireAffected(res)
}

func (r *sqliteDocuments) UpdateStatus(ctx context.Context, id uuid.UUID, status constants.DocumentStatus, rejectionReason *string) error {
	res, err := r.s.db.ExecContext(ctx,
		`UPDATE documents SET status = ?, rejection_reason = ?, updated_at = ? WHERE id = ?`,
		string(status), rejectionReason, r.s.now().UTC(), id.String())
	if err != nil {
		r.s.logger.Error("failed to update document status", "document_id", id, "error", err)
		return err
	}
	return requireAffected(res)
}

func (r *sqliteDocuments) UpdateComplianceResult(ctx context.Context, id uuid.UUID, result compliance.Result) error {
	b, err := encodeResult(result)
	if err != nil {
		return err
	}
	res, err := r.s.db.ExecContext(ctx,
		`UPDATE documents SET compliance_result = ?, updated_at = ? WHERE id = ?`,
		string(b), r.s.now().UTC(), id.String())
	if err != nil {
		r.s.logger.Error("failed to update compliance result", "document_id", id, "error", err)
		return err
	}
	return requireAffected(res)
}

type sqliteReviews struct{ s *SQLiteStore }

func (r *sqliteReviews) Add(ctx context.Context, review *entity.DocumentReview) (*entity.DocumentReview, error) {
	rv := prepareReview(review, r.s.now())
	_, err := r.s.db.ExecContext(ctx, `
		INSERT INTO document_reviews (id, document_id, reviewer_id, reviewer_name, comments, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rv.ID.String(), rv.DocumentID.String(), rv.ReviewerID, rv.ReviewerName, rv.Comments, string(rv.Status), rv.CreatedAt)
	if err != nil {
		r.s.logger.Error("failed to add review", "document_id", rv.DocumentID, "error", err)
		return nil, err
	}
	return rv, nil
}

func (r *sqliteReviews) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*entity.DocumentReview, error) {
	rows, err := r.s.db.QueryContext(ctx,
		`SELECT `+reviewColumns+` FROM document_reviews WHERE document_id = ? ORDER BY created_at DESC`, documentID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*entity.DocumentReview, 0)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.NotFoundError("document not found")
	}
	return nil
}
