package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/permit-compliance/constants"
	"github.com/joseph-ayodele/permit-compliance/internal/app"
	"github.com/joseph-ayodele/permit-compliance/internal/common"
	"github.com/joseph-ayodele/permit-compliance/internal/entity"
	"github.com/joseph-ayodele/permit-compliance/internal/export"
	"github.com/joseph-ayodele/permit-compliance/internal/pipeline"
	"github.com/joseph-ayodele/permit-compliance/internal/standards"
)

var (
	checkNoAI      bool
	checkJSON      bool
	checkXLSX      string
	checkStandards string
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Check a plan document against the building standards",
	Long: `Extracts text from the file and runs the rule checker and, when an
AI provider is configured, the AI review. Nothing is stored.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkNoAI, "no-ai", false, "skip the AI review")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print the result as JSON")
	checkCmd.Flags().StringVar(&checkXLSX, "xlsx", "", "also write the report to this XLSX file")
	checkCmd.Flags().StringVar(&checkStandards, "standards", "", "YAML standards table to use instead of the built-in one")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	table, err := loadTable(checkStandards)
	if err != nil {
		return err
	}
	sum, err := extractFile(cmd, args[0])
	if err != nil {
		return err
	}
	if sum.Text == "" {
		return common.PreconditionError("text not available")
	}

	var ai pipeline.AIChecker
	if !checkNoAI {
		ai = app.NewAIChecker(cfg.AI, table, logger)
	}
	stage := pipeline.NewComplianceStage(nil, table, ai, nil, logger)
	stage.SkipAI = checkNoAI
	res, _ := stage.Evaluate(cmd.Context(), sum.Text)

	if checkXLSX != "" {
		doc := &entity.Document{
			ID:               uuid.New(),
			FileName:         sum.File,
			FileType:         sum.MediaType,
			ExtractedText:    sum.Text,
			ExtractionMethod: sum.Method,
			Status:           constants.DocumentStatusPending,
			CreatedAt:        time.Now().UTC(),
		}
		data, err := export.NewService(logger).ComplianceReportXLSX(doc, res)
		if err != nil {
			return err
		}
		if err := os.WriteFile(checkXLSX, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", checkXLSX, err)
		}
		logger.Info("check.report.written", "path", checkXLSX, "bytes", len(data))
	}

	if checkJSON {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}
	if res.Compliant {
		cmd.Printf("%s: compliant\n", sum.File)
		return nil
	}
	cmd.Printf("%s: %d issue(s)\n", sum.File, len(res.Issues))
	for i, issue := range res.Issues {
		cmd.Printf("  %d. %s\n", i+1, issue)
	}
	return nil
}

func loadTable(path string) (standards.Table, error) {
	if path == "" {
		return standards.Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return standards.Table{}, fmt.Errorf("read %s: %w", path, err)
	}
	return standards.Parse(data)
}
