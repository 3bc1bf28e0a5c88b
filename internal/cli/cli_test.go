package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/permit-compliance/constants"
	"github.com/joseph-ayodele/permit-compliance/internal/compliance"
	"github.com/joseph-ayodele/permit-compliance/internal/extract"
	"github.com/joseph-ayodele/permit-compliance/internal/llm"
)

// execute runs the root command with fresh flag values and a fake extractor
// that returns the file bytes as text.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("AI_PROVIDER", "none")
	t.Setenv("AI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	extractJSON = false
	checkNoAI, checkJSON, checkXLSX, checkStandards = false, false, "", ""
	standardsFile = ""
	ingestWatch, ingestCheck, ingestIncludeHidden = false, false, false
	ingestDebounce = 500 * time.Millisecond
	dbHealthUser, dbTimeout = "", 2*time.Second

	orig := newTextExtractor
	newTextExtractor = func() (extract.TextExtractor, error) {
		return extract.TextExtractorFunc(func(_ context.Context, data []byte, _ string) (extract.TextExtractionResult, error) {
			return extract.TextExtractionResult{Text: string(data), Method: constants.MethodPDFText, Pages: 1}, nil
		}), nil
	}
	t.Cleanup(func() { newTextExtractor = orig })

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestVersionCmd(t *testing.T) {
	orig := Version
	Version = "1.2.3"
	defer func() { Version = orig }()

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "permitctl version 1.2.3")
}

func TestExtractCmd(t *testing.T) {
	p := writeFile(t, t.TempDir(), "plan.pdf", "Ground floor plan")

	out, err := execute(t, "extract", p)
	require.NoError(t, err)
	assert.Contains(t, out, "# plan.pdf (application/pdf, method=pdf-text, pages=1)")
	assert.Contains(t, out, "Ground floor plan")

	out, err = execute(t, "extract", "--json", p)
	require.NoError(t, err)
	var sum extractSummary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	assert.Equal(t, "Ground floor plan", sum.Text)
	assert.Equal(t, constants.MediaTypePDF, sum.MediaType)
}

func TestExtractCmd_RejectsUnsupportedType(t *testing.T) {
	p := writeFile(t, t.TempDir(), "notes.docx", "x")
	_, err := execute(t, "extract", p)
	assert.Error(t, err)
}

func TestCheckCmd_ReportsIssuesAndWritesXLSX(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "plan.pdf", "Bedroom height 2.2m")
	xlsx := filepath.Join(dir, "report.xlsx")

	out, err := execute(t, "check", "--no-ai", "--xlsx", xlsx, p)
	require.NoError(t, err)
	assert.Contains(t, out, "plan.pdf: 3 issue(s)")
	assert.Contains(t, out, "1. Found room height of 2.2m")
	assert.NotContains(t, out, llm.FallbackNotice)

	f, err := excelize.OpenFile(xlsx)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Issues")
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestCheckCmd_UnconfiguredAIAddsNotice(t *testing.T) {
	p := writeFile(t, t.TempDir(), "plan.pdf", "Bedroom height 2.2m")

	out, err := execute(t, "check", p)
	require.NoError(t, err)
	assert.Contains(t, out, "plan.pdf: 4 issue(s)")
	assert.Contains(t, out, llm.FallbackNotice)
}

func TestCheckCmd_JSON(t *testing.T) {
	p := writeFile(t, t.TempDir(), "plan.pdf", "Room 2.0m, 5-storey block")

	out, err := execute(t, "check", "--json", p)
	require.NoError(t, err)
	var res compliance.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Compliant)
	assert.NotEmpty(t, res.Issues)
}

func TestCheckCmd_EmptyTextIsPrecondition(t *testing.T) {
	p := writeFile(t, t.TempDir(), "scan.pdf", "")
	_, err := execute(t, "check", p)
	assert.Error(t, err)
}

func TestStandardsCmd(t *testing.T) {
	out, err := execute(t, "standards")
	require.NoError(t, err)
	var generic map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &generic))
	assert.NotEmpty(t, generic)

	bad := writeFile(t, t.TempDir(), "bad.yaml", "clearHeight: nope\n")
	_, err = execute(t, "standards", "--file", bad)
	assert.Error(t, err)
}

func TestIngestAndDBHealth(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "permits.db"))

	plans := filepath.Join(dir, "plans")
	writeFile(t, plans, "a.pdf", "Bedroom height 2.2m")
	writeFile(t, plans, "b.png", "Living room clear height 2.7m")
	writeFile(t, plans, "sub/a-copy.pdf", "Bedroom height 2.2m")
	writeFile(t, plans, ".hidden/c.pdf", "ignored")
	writeFile(t, plans, "readme.txt", "ignored")

	out, err := execute(t, "ingest", "--check", "alice", plans)
	require.NoError(t, err)
	assert.Contains(t, out, "matched=3 stored=3 duplicates=1 failed=0")

	out, err = execute(t, "dbhealth", "--user", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "DB health: OK (sqlite)")
	assert.Contains(t, out, "documents for alice: 2")
}
