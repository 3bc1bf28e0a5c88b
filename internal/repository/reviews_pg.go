package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/permit-compliance/internal/entity"
)

type pgReviewRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPgReviewRepository(pool *pgxpool.Pool, logger *slog.Logger) ReviewRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &pgReviewRepository{pool: pool, logger: logger}
}

func (r *pgReviewRepository) Add(ctx context.Context, review *entity.DocumentReview) (*entity.DocumentReview, error) {
	rv := prepareReview(review, time.Now())
	_, err := r.pool.Exec(ctx, `
		INSERT INTO document_reviews (id, document_id, reviewer_id, reviewer_name, comments, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rv.ID, rv.DocumentID, rv.ReviewerID, rv.ReviewerName, rv.Comments, string(rv.Status), rv.CreatedAt)
	if err != nil {
		r.logger.Error("failed to add review", "document_id", rv.DocumentID, "reviewer_id", rv.ReviewerID, "error", err)
		return nil, err
	}
	return rv, nil
}

func (r *pgReviewRepository) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*entity.DocumentReview, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+reviewColumns+` FROM document_reviews WHERE document_id = $1 ORDER BY created_at DESC`, documentID)
	if err != nil {
		r.logger.Error("failed to list reviews", "document_id", documentID, "error", err)
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
