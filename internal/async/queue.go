// Package async runs compliance checks in the background after upload.
package async

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/permit-compliance/internal/compliance"
)

// ErrQueueClosed is returned by Enqueue after Shutdown started.
var ErrQueueClosed = errors.New("check queue is shutting down")

// Job asks for one document to be (re)checked.
type Job struct {
	DocumentID  uuid.UUID
	SubmittedAt time.Time
	RequestID   string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// Checker is the work a queue worker performs. *pipeline.ComplianceStage
// implements it.
type Checker interface {
	Run(ctx context.Context, documentID uuid.UUID) (compliance.Result, error)
}
