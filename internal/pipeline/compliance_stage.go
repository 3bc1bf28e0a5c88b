// Package pipeline runs the document flows: upload with text extraction, and
// the compliance check that merges rule findings with the AI pass.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/permit-compliance/internal/common"
	"github.com/joseph-ayodele/permit-compliance/internal/compliance"
	"github.com/joseph-ayodele/permit-compliance/internal/llm"
	"github.com/joseph-ayodele/permit-compliance/internal/observability"
	"github.com/joseph-ayodele/permit-compliance/internal/repository"
	"github.com/joseph-ayodele/permit-compliance/internal/standards"
)

// AIChecker is the open-ended review pass. *llm.Checker implements it.
type AIChecker interface {
	Check(ctx context.Context, text string) llm.Outcome
}

// ComplianceStage loads a document, evaluates its extracted text and
// persists the result.
type ComplianceStage struct {
	Docs    repository.DocumentRepository
	Table   standards.Table
	AI      AIChecker
	// SkipAI runs the rule checker alone. No AI call is made and no fallback
	// notice is added.
	SkipAI  bool
	Metrics *observability.Metrics
	Logger  *slog.Logger
	now     func() time.Time
}

func NewComplianceStage(docs repository.DocumentRepository, table standards.Table, ai AIChecker, metrics *observability.Metrics, logger *slog.Logger) *ComplianceStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ComplianceStage{Docs: docs, Table: table, AI: ai, Metrics: metrics, Logger: logger, now: time.Now}
}

// Run checks the stored document with the given id. Unknown ids fail with
// common.ErrNotFound and documents without text with common.ErrPrecondition;
// neither calls the AI checker. A failed save wraps common.ErrPersistence.
func (s *ComplianceStage) Run(ctx context.Context, documentID uuid.UUID) (compliance.Result, error) {
	start := time.Now()

	doc, err := s.Docs.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.Metrics.RecordCheck("not_found", 0, time.Since(start))
			return compliance.Result{}, err
		}
		s.Metrics.RecordCheck("error", 0, time.Since(start))
		return compliance.Result{}, common.WrapError(err, "load document")
	}
	if !doc.HasText() {
		s.Logger.Warn("compliance.check.no_text", "document_id", documentID, "method", doc.ExtractionMethod)
		s.Metrics.RecordCheck("no_text", 0, time.Since(start))
		return compliance.Result{}, common.PreconditionError("text not available")
	}

	result, merged := s.Evaluate(ctx, doc.ExtractedText)

	if err := s.Docs.UpdateComplianceResult(ctx, documentID, result); err != nil {
		s.Logger.Error("compliance.persist.failed", "document_id", documentID, "error", err)
		s.Metrics.RecordCheck("error", len(merged), time.Since(start))
		if errors.Is(err, common.ErrNotFound) {
			// deleted while we were checking
			return compliance.Result{}, err
		}
		return compliance.Result{}, common.PersistenceError("save compliance result", err)
	}

	outcome := "non_compliant"
	if result.Compliant {
		outcome = "compliant"
	}
	s.Metrics.RecordCheck(outcome, len(merged), time.Since(start))
	s.Logger.Info("compliance.check.ok",
		"document_id", documentID,
		"compliant", result.Compliant,
		"issues", len(result.Issues),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// Evaluate runs the rule checker and the AI checker concurrently on text and
// merges their findings, rule findings first. It never fails: an AI failure
// becomes the fallback notice.
func (s *ComplianceStage) Evaluate(ctx context.Context, text string) (compliance.Result, []compliance.Issue) {
	if s.SkipAI {
		return compliance.NewResult(text, compliance.CheckRules(text, s.Table), nil, s.now())
	}

	var (
		ruleIssues []compliance.Issue
		aiOutcome  llm.Outcome
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ruleIssues = compliance.CheckRules(text, s.Table)
		return nil
	})
	g.Go(func() error {
		aiOutcome = s.checkAI(gctx, text)
		return nil
	})
	_ = g.Wait()

	if aiOutcome.Err != nil {
		s.Metrics.RecordAIFallback()
		s.Logger.Warn("compliance.ai.fallback", "error", aiOutcome.Err)
	}
	return compliance.NewResult(text, ruleIssues, aiOutcome.Findings(), s.now())
}

func (s *ComplianceStage) checkAI(ctx context.Context, text string) (out llm.Outcome) {
	if s.AI == nil {
		return llm.Outcome{Err: llm.ErrDisabled}
	}
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("compliance.ai.panic", "panic", r)
			out = llm.Outcome{Err: common.InternalErrorf("ai checker panicked: %v", r)}
		}
	}()
	return s.AI.Check(ctx, text)
}
