package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/permit-compliance/constants"
	"github.com/joseph-ayodele/permit-compliance/internal/app"
	"github.com/joseph-ayodele/permit-compliance/internal/common"
	"github.com/joseph-ayodele/permit-compliance/internal/extract"
)

var extractJSON bool

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract text from a plan document",
	Long: `Extracts text from a PDF or image the same way an upload does:
the PDF text layer first, OCR for scanned pages and images.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "print the extraction summary as JSON")
	rootCmd.AddCommand(extractCmd)
}

// newTextExtractor is swapped in tests to avoid external OCR tools.
var newTextExtractor = func() (extract.TextExtractor, error) {
	return app.NewExtractor(cfg.OCR, logger)
}

type extractSummary struct {
	File       string   `json:"file"`
	MediaType  string   `json:"mediaType"`
	Method     string   `json:"method"`
	Pages      int      `json:"pages"`
	Confidence float32  `json:"confidence"`
	DurationMS int64    `json:"durationMs"`
	Warnings   []string `json:"warnings,omitempty"`
	Text       string   `json:"text"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	sum, err := extractFile(cmd, args[0])
	if err != nil {
		return err
	}
	if extractJSON {
		data, err := json.MarshalIndent(sum, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}
	cmd.Printf("# %s (%s, method=%s, pages=%d)\n", sum.File, sum.MediaType, sum.Method, sum.Pages)
	cmd.Println(sum.Text)
	return nil
}

func extractFile(cmd *cobra.Command, path string) (extractSummary, error) {
	data, mediaType, err := readDocument(path)
	if err != nil {
		return extractSummary{}, err
	}
	tx, err := newTextExtractor()
	if err != nil {
		return extractSummary{}, err
	}
	start := time.Now()
	res, err := tx.Extract(cmd.Context(), data, mediaType)
	if err != nil {
		return extractSummary{}, fmt.Errorf("extract %s: %w", path, err)
	}
	return extractSummary{
		File:       filepath.Base(path),
		MediaType:  mediaType,
		Method:     res.Method,
		Pages:      res.Pages,
		Confidence: res.Confidence,
		DurationMS: time.Since(start).Milliseconds(),
		Warnings:   res.Warnings,
		Text:       res.Text,
	}, nil
}

func readDocument(path string) ([]byte, string, error) {
	mediaType := constants.MediaTypeFromExt(filepath.Ext(path))
	if constants.MapMediaTypeToFormat(mediaType) == "" {
		return nil, "", common.InvalidArgumentErrorf("unsupported file type %q", filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	return data, mediaType, nil
}
