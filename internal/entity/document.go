package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/permit-compliance/constants"
	"github.com/joseph-ayodele/permit-compliance/internal/compliance"
)

// Document is an uploaded construction-plan file with its extracted text and
// the latest compliance result. FileData is only populated by calls that
// need the blob.
type Document struct {
	ID               uuid.UUID                `json:"id"`
	UserID           string                   `json:"userId"`
	ApplicationID    *string                  `json:"applicationId,omitempty"`
	CategoryID       *string                  `json:"categoryId,omitempty"`
	FileName         string                   `json:"fileName"`
	FileType         string                   `json:"fileType"`
	FileSize         int64                    `json:"fileSize"`
	ContentHash      []byte                   `json:"-"`
	FileData         []byte                   `json:"-"`
	ExtractedText    string                   `json:"extractedText,omitempty"`
	ExtractionMethod string                   `json:"extractionMethod"`
	OCRConfidence    float32                  `json:"ocrConfidence"`
	Status           constants.DocumentStatus `json:"status"`
	RejectionReason  *string                  `json:"rejectionReason,omitempty"`
	ComplianceResult *compliance.Result       `json:"complianceResult,omitempty"`
	CreatedAt        time.Time                `json:"createdAt"`
	UpdatedAt        time.Time                `json:"updatedAt"`
}

// HasText reports whether the document can be compliance-checked.
func (d *Document) HasText() bool {
	return d != nil && d.ExtractedText != ""
}

// DocumentFile is the stored blob with the headers needed to serve it.
type DocumentFile struct {
	FileName string
	FileType string
	FileSize int64
	Data     []byte
}
