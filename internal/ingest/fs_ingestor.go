package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/permit-compliance/constants"
	"github.com/joseph-ayodele/permit-compliance/internal/common"
	"github.com/joseph-ayodele/permit-compliance/internal/pipeline"
)

// FSIngestor reads from the local filesystem.
type FSIngestor struct {
	uploader Uploader
	logger   *slog.Logger
}

func NewFSIngestor(u Uploader, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{uploader: u, logger: logger}
}

// IngestPath uploads a single file for userID.
func (i *FSIngestor) IngestPath(ctx context.Context, userID, path string) (Result, error) {
	out := Result{SourcePath: path}

	abs, err := filepath.Abs(path)
	if err != nil {
		return out, fmt.Errorf("abs path: %w", err)
	}
	out.SourcePath = abs

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !AllowedExt(ext) {
		return out, common.InvalidArgumentErrorf("unsupported or missing extension: %q", ext)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return out, fmt.Errorf("stat: %w", err)
	}
	if info.Size() > constants.MaxUploadBytes {
		return out, common.InvalidArgumentErrorf("file is larger than %d bytes", constants.MaxUploadBytes)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return out, fmt.Errorf("read: %w", err)
	}
	sum := sha256.Sum256(data)
	out.HashHex = hex.EncodeToString(sum[:])
	out.MediaType = constants.MediaTypeFromExt(ext)

	doc, dedup, err := i.uploader.Run(ctx, pipeline.Upload{
		UserID:    userID,
		FileName:  filepath.Base(abs),
		MediaType: out.MediaType,
		Data:      data,
	})
	if err != nil {
		return out, err
	}
	out.DocumentID = doc.ID.String()
	out.Deduplicated = dedup
	out.TextLen = len(doc.ExtractedText)

	i.logger.Info("ingest.file.ok",
		"path", abs,
		"document_id", out.DocumentID,
		"dedup", dedup,
		"text_len", out.TextLen,
	)
	return out, nil
}

// IngestDirectory walks root, skips hidden entries if requested and uploads
// every supported file. A failing file is recorded and the walk continues.
func (i *FSIngestor) IngestDirectory(ctx context.Context, userID, root string, skipHidden bool) ([]Result, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var results []Result
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, Result{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !Candidate(path) {
			return nil
		}
		stats.Matched++

		r, err := i.IngestPath(ctx, userID, path)
		if err != nil {
			i.logger.Warn("ingest.file.failed", "path", path, "error", err)
			r.Err = err.Error()
			results = append(results, r)
			stats.Failed++
			return nil
		}

		results = append(results, r)
		stats.Succeeded++
		if r.Deduplicated {
			stats.Deduplicated++
		}
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}

	i.logger.Info("ingest.dir.ok",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed,
	)
	return results, stats, nil
}
