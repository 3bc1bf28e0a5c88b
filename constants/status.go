package constants

// DocumentStatus is the review status stored on a document row.
type DocumentStatus string

// Stable values (store these exact strings in DB).
const (
	DocumentStatusPending       DocumentStatus = "pending"
	DocumentStatusApproved      DocumentStatus = "approved"
	DocumentStatusRejected      DocumentStatus = "rejected"
	DocumentStatusNeedsRevision DocumentStatus = "needs_revision"
)

var allDocumentStatuses = []DocumentStatus{
	DocumentStatusPending,
	DocumentStatusApproved,
	DocumentStatusRejected,
	DocumentStatusNeedsRevision,
}

// ParseDocumentStatus validates a status coming from a request body.
func ParseDocumentStatus(s string) (DocumentStatus, bool) {
	for _, st := range allDocumentStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Extraction methods recorded on documents.
const (
	MethodPDFText  = "pdf-text"
	MethodPDFOCR   = "pdf-ocr"
	MethodImageOCR = "image-ocr"
	MethodNone     = "none"
)

// RoleAdmin may update and review any document.
const RoleAdmin = "admin"
