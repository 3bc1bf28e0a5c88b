package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/permit-compliance/constants"
)

// DocumentReview is one reviewer's verdict on a document.
type DocumentReview struct {
	ID           uuid.UUID                `json:"id"`
	DocumentID   uuid.UUID                `json:"documentId"`
	ReviewerID   string                   `json:"reviewerId"`
	ReviewerName *string                  `json:"reviewerName,omitempty"`
	Comments     string                   `json:"comments"`
	Status       constants.DocumentStatus `json:"status"`
	CreatedAt    time.Time                `json:"createdAt"`
}
