package pipeline

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/permit-compliance/constants"
	"github.com/joseph-ayodele/permit-compliance/internal/common"
	"github.com/joseph-ayodele/permit-compliance/internal/compliance"
	"github.com/joseph-ayodele/permit-compliance/internal/entity"
	"github.com/joseph-ayodele/permit-compliance/internal/extract"
	"github.com/joseph-ayodele/permit-compliance/internal/llm"
)

type memDocs struct {
	mu        sync.Mutex
	docs      map[uuid.UUID]*entity.Document
	updateErr error
	updates   int
}

func newMemDocs() *memDocs {
	return &memDocs{docs: map[uuid.UUID]*entity.Document{}}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (m *memDocs) put(d *entity.Document) *entity.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	m.docs[d.ID] = d
	return d
}

func (m *memDocs) Create(_ context.Context, d *entity.Document) (*entity.Document, error) {
	cp := *d
	cp.CreatedAt = time.Now().UTC()
	return m.put(&cp), nil
}

func (m *memDocs) GetByID(_ context.Context, id uuid.UUID) (*entity.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, common.NotFoundError("document not found")
	}
	cp := *d
	return &cp, nil
}

func (m *memDocs) GetByUploadKey(_ context.Context, userID string, applicationID *string, hash []byte) (*entity.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.docs {
		if d.UserID == userID && deref(d.ApplicationID) == deref(applicationID) && bytes.Equal(d.ContentHash, hash) {
			cp := *d
			return &cp, nil
		}
	}
	return nil, common.NotFoundError("document not found")
}

func (m *memDocs) ListByUser(_ context.Context, userID string) ([]*entity.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.Document, 0)
	for _, d := range m.docs {
		if d.UserID == userID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memDocs) GetFile(_ context.Context, id uuid.UUID) (*entity.DocumentFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, common.NotFoundError("document not found")
	}
	return &entity.DocumentFile{FileName: d.FileName, FileType: d.FileType, FileSize: d.FileSize, Data: d.FileData}, nil
}

func (m *memDocs) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return common.NotFoundError("document not found")
	}
	delete(m.docs, id)
	return nil
}

func (m *memDocs) UpdateStatus(_ context.Context, id uuid.UUID, status constants.DocumentStatus, reason *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return common.NotFoundError("document not found")
	}
	d.Status = status
	d.RejectionReason = reason
	return nil
}

func (m *memDocs) UpdateComplianceResult(_ context.Context, id uuid.UUID, r compliance.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	if m.updateErr != nil {
		return m.updateErr
	}
	d, ok := m.docs[id]
	if !ok {
		return common.NotFoundError("document not found")
	}
	d.ComplianceResult = &r
	return nil
}

type fakeAI struct {
	calls   atomic.Int32
	outcome llm.Outcome
	delay   time.Duration
}

func (f *fakeAI) Check(ctx context.Context, _ string) llm.Outcome {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return llm.Outcome{Err: common.AIServiceError("ai review failed", ctx.Err())}
		}
	}
	return f.outcome
}

func aiIssue(msg string) compliance.Issue {
	return compliance.Issue{Source: compliance.SourceAI, Kind: compliance.KindAIFinding, Message: msg}
}

var errBoom = errors.New("boom")

func extractorReturning(text, method string, err error) extract.TextExtractor {
	return extract.TextExtractorFunc(func(context.Context, []byte, string) (extract.TextExtractionResult, error) {
		if err != nil {
			return extract.TextExtractionResult{}, err
		}
		return extract.TextExtractionResult{Text: text, Method: method, Confidence: 0.8}, nil
	})
}
