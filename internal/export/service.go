// Package export renders compliance results as XLSX workbooks.
package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/permit-compliance/constants"
	"github.com/joseph-ayodele/permit-compliance/internal/compliance"
	"github.com/joseph-ayodele/permit-compliance/internal/entity"
	"github.com/joseph-ayodele/permit-compliance/internal/llm"
)

const (
	SummarySheet = "Summary"
	IssuesSheet  = "Issues"
)

// Service produces XLSX bytes for compliance reports.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ComplianceReportXLSX returns a workbook with a summary sheet and one row
// per issue on the issues sheet. doc may be nil for ad-hoc checks.
func (s *Service) ComplianceReportXLSX(doc *entity.Document, res compliance.Result) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// the default sheet becomes the summary
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(IssuesSheet); err != nil {
		return nil, err
	}

	summary := [][]any{
		{"Document", docField(doc, func(d *entity.Document) string { return d.ID.String() })},
		{"File", docField(doc, func(d *entity.Document) string { return d.FileName })},
		{"Status", docField(doc, func(d *entity.Document) string { return string(d.Status) })},
		{"Checked At", formatTime(res.CheckedAt)},
		{"Compliant", yesNo(res.Compliant)},
		{"Issues", len(res.Issues)},
		{"Text Preview", res.TextExtracted},
	}
	for i, row := range summary {
		if err := f.SetSheetRow(SummarySheet, cell(1, i+1), &row); err != nil {
			return nil, err
		}
	}
	_ = f.SetColWidth(SummarySheet, "A", "A", 16)
	_ = f.SetColWidth(SummarySheet, "B", "B", 80)

	headers := []any{"#", "Source", "Standard", "Issue"}
	if err := f.SetSheetRow(IssuesSheet, "A1", &headers); err != nil {
		return nil, err
	}
	for i, issue := range reportIssues(res) {
		row := []any{i + 1, string(issue.Source), string(issue.Standard), issue.Message}
		if err := f.SetSheetRow(IssuesSheet, cell(1, i+2), &row); err != nil {
			return nil, err
		}
	}
	_ = f.SetColWidth(IssuesSheet, "A", "A", 5)
	_ = f.SetColWidth(IssuesSheet, "B", "B", 10)
	_ = f.SetColWidth(IssuesSheet, "C", "C", 22)
	_ = f.SetColWidth(IssuesSheet, "D", "D", 100)

	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(IssuesSheet, "A1", "D1", style)
		_ = f.SetCellStyle(SummarySheet, "A1", cell(1, len(summary)), style)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"document_id", docField(doc, func(d *entity.Document) string { return d.ID.String() }),
		"rows", len(res.Issues),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// reportIssues prefers the structured issues on res and falls back to
// Classify for results that only carry strings.
func reportIssues(res compliance.Result) []compliance.Issue {
	if details := res.IssueDetails(); details != nil {
		return details
	}
	out := make([]compliance.Issue, 0, len(res.Issues))
	for _, msg := range res.Issues {
		source, standard := Classify(msg)
		out = append(out, compliance.Issue{Source: source, Standard: standard, Message: msg})
	}
	return out
}

// Classify guesses where an issue string came from and which standards
// category it concerns. Only used for results stored without details.
func Classify(msg string) (compliance.Source, constants.Standard) {
	if msg == llm.FallbackNotice {
		return compliance.SourceNotice, ""
	}
	if lines := llm.ParseIssueLines(msg); len(lines) == 1 {
		return compliance.SourceAI, llm.ToIssues(lines)[0].Standard
	}
	switch {
	case strings.Contains(msg, "room height"):
		return compliance.SourceRule, constants.ClearHeight
	case strings.Contains(msg, "room area"):
		return compliance.SourceRule, constants.FloorArea
	case strings.Contains(msg, "storeys"):
		return compliance.SourceRule, constants.HeightRequirements
	case strings.Contains(msg, "ventilation"):
		return compliance.SourceRule, constants.Ventilation
	case strings.Contains(msg, "fire safety"):
		return compliance.SourceRule, constants.FireSafety
	}
	return compliance.SourceRule, constants.OtherStandard
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func docField(doc *entity.Document, get func(*entity.Document) string) string {
	if doc == nil {
		return ""
	}
	return get(doc)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
