// Package ingest uploads plan documents from the local filesystem, either a
// directory at a time or by watching directories for new files.
package ingest

import (
	"context"

	"github.com/joseph-ayodele/permit-compliance/internal/entity"
	"github.com/joseph-ayodele/permit-compliance/internal/pipeline"
)

// Result is the per-file ingest outcome.
type Result struct {
	SourcePath   string
	DocumentID   string
	Deduplicated bool
	HashHex      string
	MediaType    string
	TextLen      int
	Err          string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Uploader stores one document. *pipeline.UploadStage implements it.
type Uploader interface {
	Run(ctx context.Context, in pipeline.Upload) (*entity.Document, bool, error)
}
