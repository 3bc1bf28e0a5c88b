package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/permit-compliance/constants"
	"github.com/joseph-ayodele/permit-compliance/internal/extract"
	"github.com/joseph-ayodele/permit-compliance/internal/pipeline"
	"github.com/joseph-ayodele/permit-compliance/internal/repository"
)

func newIngestor(t *testing.T) (*FSIngestor, *repository.SQLiteStore) {
	t.Helper()
	store, err := repository.OpenSQLite(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tx := extract.TextExtractorFunc(func(_ context.Context, data []byte, _ string) (extract.TextExtractionResult, error) {
		return extract.TextExtractionResult{Text: string(data), Method: constants.MethodPDFText}, nil
	})
	return NewFSIngestor(pipeline.NewUploadStage(store.Documents(), tx, nil, nil), nil), store
}

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestIngestDirectory(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "ground.pdf"), "ground floor 2.4m")
	write(t, filepath.Join(root, "sub", "first.PDF"), "first floor 2.4m")
	write(t, filepath.Join(root, "sub", "copy.pdf"), "ground floor 2.4m")
	write(t, filepath.Join(root, "notes.txt"), "ignored")
	write(t, filepath.Join(root, ".hidden", "secret.pdf"), "skipped")

	ing, store := newIngestor(t)
	results, stats, err := ing.IngestDirectory(context.Background(), "u1", root, true)
	require.NoError(t, err)

	assert.EqualValues(t, 3, stats.Matched)
	assert.EqualValues(t, 3, stats.Succeeded)
	assert.EqualValues(t, 1, stats.Deduplicated)
	assert.EqualValues(t, 0, stats.Failed)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Len(t, r.HashHex, 64)
		assert.Equal(t, constants.MediaTypePDF, r.MediaType)
	}

	docs, err := store.Documents().ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestIngestPath_RejectsUnsupported(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "plan.docx")
	write(t, p, "x")

	ing, _ := newIngestor(t)
	_, err := ing.IngestPath(context.Background(), "u1", p)
	assert.Error(t, err)
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden("/a/.git"))
	assert.False(t, IsHidden("/a/plans"))
	assert.False(t, IsHidden("."))
}

func TestCandidate(t *testing.T) {
	assert.True(t, Candidate("/plans/Floor.PDF"))
	assert.True(t, Candidate("site.heic"))
	assert.False(t, Candidate("/plans/~$Floor.pdf"))
	assert.False(t, Candidate("/plans/.#Floor.pdf"))
	assert.False(t, Candidate("/plans/floor.pdf.crdownload"))
	assert.False(t, Candidate("/plans/notes.txt"))
}

func TestWatcher_InitialScanAndNewFiles(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "existing.pdf"), "a")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true}, nil)
	require.NoError(t, err)

	select {
	case p := <-events:
		assert.Equal(t, filepath.Join(root, "existing.pdf"), p)
	case <-time.After(2 * time.Second):
		t.Fatal("no initial scan event")
	}

	write(t, filepath.Join(root, "new.png"), "b")
	select {
	case p := <-events:
		assert.Equal(t, filepath.Join(root, "new.png"), p)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for new file")
	}

	cancel()
	for range events {
	}
}
