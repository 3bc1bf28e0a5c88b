// Package document holds the document use cases behind the HTTP API:
// upload, ownership checks, compliance, reviews and status changes.
package document

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/permit-compliance/constants"
	"github.com/joseph-ayodele/permit-compliance/internal/async"
	"github.com/joseph-ayodele/permit-compliance/internal/common"
	"github.com/joseph-ayodele/permit-compliance/internal/compliance"
	"github.com/joseph-ayodele/permit-compliance/internal/entity"
	"github.com/joseph-ayodele/permit-compliance/internal/pipeline"
	"github.com/joseph-ayodele/permit-compliance/internal/repository"
)

// Service handles document business logic. The caller is read from the
// context (common.UserIDFromContext, common.RolesFromContext).
type Service struct {
	docs    repository.DocumentRepository
	reviews repository.ReviewRepository
	upload  *pipeline.UploadStage
	checker async.Checker
	queue   async.Queue
	logger  *slog.Logger
}

type Option func(*Service)

// WithAutoCheck queues a compliance check for every new upload.
func WithAutoCheck(q async.Queue) Option {
	return func(s *Service) { s.queue = q }
}

func NewService(
	docs repository.DocumentRepository,
	reviews repository.ReviewRepository,
	upload *pipeline.UploadStage,
	checker async.Checker,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{docs: docs, reviews: reviews, upload: upload, checker: checker, logger: logger}
	for _, o := range opts {
		o(s)
	}
	return s
}

// UploadRequest is a document upload from the caller in ctx.
type UploadRequest struct {
	FileName      string
	MediaType     string
	Data          []byte
	ApplicationID string
	CategoryID    string
}

// Upload stores a new document for the caller. Re-uploading identical bytes
// returns the existing document.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*entity.Document, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	doc, duplicate, err := s.upload.Run(ctx, pipeline.Upload{
		UserID:        userID,
		ApplicationID: optional(req.ApplicationID),
		CategoryID:    optional(req.CategoryID),
		FileName:      req.FileName,
		MediaType:     req.MediaType,
		Data:          req.Data,
	})
	if err != nil {
		return nil, err
	}
	if !duplicate && s.queue != nil && doc.HasText() {
		job := async.Job{DocumentID: doc.ID, RequestID: common.RequestIDFromContext(ctx)}
		if err := s.queue.Enqueue(ctx, job); err != nil {
			// the document is stored; the caller can still check on demand
			s.logger.Warn("document.autocheck.enqueue_failed", "document_id", doc.ID, "error", err)
		}
	}
	return doc, nil
}

// List returns the caller's documents, newest first.
func (s *Service) List(ctx context.Context) ([]*entity.Document, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := s.docs.ListByUser(ctx, userID)
	if err != nil {
		return nil, common.InternalErrorf("list documents: %v", err)
	}
	return docs, nil
}

// Get returns a document owned by the caller.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	return s.loadOwned(ctx, id, false)
}

// Download returns the stored blob of a document owned by the caller.
func (s *Service) Download(ctx context.Context, id uuid.UUID) (*entity.DocumentFile, error) {
	if _, err := s.loadOwned(ctx, id, false); err != nil {
		return nil, err
	}
	f, err := s.docs.GetFile(ctx, id)
	if err != nil {
		return nil, passNotFound(err, "load file")
	}
	return f, nil
}

// Delete removes a document owned by the caller together with its reviews.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.loadOwned(ctx, id, false); err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, id); err != nil {
		return passNotFound(err, "delete document")
	}
	s.logger.Info("document.deleted", "document_id", id, "user_id", common.UserIDFromContext(ctx))
	return nil
}

// CheckCompliance runs the compliance check on a document owned by the caller
// and returns the stored result.
func (s *Service) CheckCompliance(ctx context.Context, id uuid.UUID) (compliance.Result, error) {
	if _, err := s.loadOwned(ctx, id, false); err != nil {
		return compliance.Result{}, err
	}
	return s.checker.Run(ctx, id)
}

// LatestCompliance returns the stored result, running a check first when the
// document was never checked.
func (s *Service) LatestCompliance(ctx context.Context, id uuid.UUID) (*entity.Document, compliance.Result, error) {
	doc, err := s.loadOwned(ctx, id, false)
	if err != nil {
		return nil, compliance.Result{}, err
	}
	if doc.ComplianceResult != nil {
		return doc, *doc.ComplianceResult, nil
	}
	res, err := s.checker.Run(ctx, id)
	if err != nil {
		return nil, compliance.Result{}, err
	}
	return doc, res, nil
}

// ReviewRequest is a reviewer's verdict.
type ReviewRequest struct {
	ReviewerName string
	Comments     string
	Status       string
}

// AddReview records a review by someone other than the owner. Any status
// except needs_revision also becomes the document's status.
func (s *Service) AddReview(ctx context.Context, id uuid.UUID, req ReviewRequest) (*entity.DocumentReview, error) {
	reviewerID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	v := common.NewValidator().
		Field("status", req.Status, common.Required, common.OneOf(statusStrings()...)).
		Field("comments", req.Comments, common.MaxLength(4000))
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	status, _ := constants.ParseDocumentStatus(req.Status)

	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, passNotFound(err, "load document")
	}
	if doc.UserID == reviewerID {
		return nil, common.InvalidArgumentError("you cannot review your own document")
	}

	review, err := s.reviews.Add(ctx, &entity.DocumentReview{
		DocumentID:   id,
		ReviewerID:   reviewerID,
		ReviewerName: optional(req.ReviewerName),
		Comments:     strings.TrimSpace(req.Comments),
		Status:       status,
	})
	if err != nil {
		return nil, common.InternalErrorf("add review: %v", err)
	}

	if status != constants.DocumentStatusNeedsRevision {
		var reason *string
		if status == constants.DocumentStatusRejected {
			reason = optional(req.Comments)
		}
		if err := s.docs.UpdateStatus(ctx, id, status, reason); err != nil {
			return nil, passNotFound(err, "update status")
		}
	}
	s.logger.Info("document.reviewed", "document_id", id, "reviewer_id", reviewerID, "status", status)
	return review, nil
}

// ListReviews returns the review thread for the owner or an admin.
func (s *Service) ListReviews(ctx context.Context, id uuid.UUID) ([]*entity.DocumentReview, error) {
	if _, err := s.loadOwned(ctx, id, true); err != nil {
		return nil, err
	}
	list, err := s.reviews.ListByDocument(ctx, id)
	if err != nil {
		return nil, common.InternalErrorf("list reviews: %v", err)
	}
	return list, nil
}

// StatusRequest changes a document's status.
type StatusRequest struct {
	Status          string
	RejectionReason string
}

// UpdateStatus sets the status for the owner or an admin.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req StatusRequest) (*entity.Document, error) {
	v := common.NewValidator().
		Field("status", req.Status, common.Required, common.OneOf(statusStrings()...)).
		Field("rejectionReason", req.RejectionReason, common.MaxLength(2000))
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	status, _ := constants.ParseDocumentStatus(req.Status)

	if _, err := s.loadOwned(ctx, id, true); err != nil {
		return nil, err
	}
	var reason *string
	if status == constants.DocumentStatusRejected {
		reason = optional(req.RejectionReason)
	}
	if err := s.docs.UpdateStatus(ctx, id, status, reason); err != nil {
		return nil, passNotFound(err, "update status")
	}
	s.logger.Info("document.status.updated", "document_id", id, "status", status)

	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, passNotFound(err, "reload document")
	}
	return doc, nil
}

// loadOwned fetches a document and checks the caller owns it, or is an
// admin when allowAdmin is set.
func (s *Service) loadOwned(ctx context.Context, id uuid.UUID, allowAdmin bool) (*entity.Document, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, passNotFound(err, "load document")
	}
	if doc.UserID == userID {
		return doc, nil
	}
	if allowAdmin && common.HasRole(ctx, constants.RoleAdmin) {
		return doc, nil
	}
	s.logger.Warn("document.access.denied", "document_id", id, "user_id", userID)
	return nil, common.ForbiddenError("not authorized to access this document")
}

func callerID(ctx context.Context) (string, error) {
	id := common.UserIDFromContext(ctx)
	if id == "" {
		return "", common.UnauthorizedError("no authenticated user")
	}
	return id, nil
}

// passNotFound keeps not-found errors as they are and hides anything else
// behind an internal error.
func passNotFound(err error, op string) error {
	if errors.Is(err, common.ErrNotFound) {
		return err
	}
	return common.InternalErrorf("%s: %v", op, err)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func statusStrings() []string {
	return []string{
		string(constants.DocumentStatusPending),
		string(constants.DocumentStatusApproved),
		string(constants.DocumentStatusRejected),
		string(constants.DocumentStatusNeedsRevision),
	}
}
