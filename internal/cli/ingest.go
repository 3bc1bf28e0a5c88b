package cli

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/permit-compliance/internal/app"
	"github.com/joseph-ayodele/permit-compliance/internal/async"
	"github.com/joseph-ayodele/permit-compliance/internal/entity"
	"github.com/joseph-ayodele/permit-compliance/internal/ingest"
	"github.com/joseph-ayodele/permit-compliance/internal/pipeline"
	"github.com/joseph-ayodele/permit-compliance/internal/server"
	"github.com/joseph-ayodele/permit-compliance/internal/standards"
)

var (
	ingestWatch         bool
	ingestCheck         bool
	ingestIncludeHidden bool
	ingestDebounce      time.Duration
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <user-id> <dir>",
	Short: "Upload every plan document under a directory",
	Long: `Walks dir and stores each PDF or image for user-id in the configured
database. Files already stored for the user are reported as duplicates.

With --watch the command keeps running and uploads files as they appear.
With --check each new document with text is compliance-checked right away.`,
	Args: cobra.ExactArgs(2),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep watching dir for new files")
	ingestCmd.Flags().BoolVar(&ingestCheck, "check", false, "run a compliance check on each new document")
	ingestCmd.Flags().BoolVar(&ingestIncludeHidden, "include-hidden", false, "descend into hidden files and directories")
	ingestCmd.Flags().DurationVar(&ingestDebounce, "debounce", 500*time.Millisecond, "quiet period before a changed file is ingested")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	userID, root := args[0], args[1]
	ctx := cmd.Context()

	if err := cfg.Database.Validate(); err != nil {
		return err
	}
	store, err := server.ConnectStore(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	tx, err := newTextExtractor()
	if err != nil {
		return err
	}
	var uploader ingest.Uploader = pipeline.NewUploadStage(store.Documents(), tx, nil, logger)
	if ingestCheck {
		table := standards.Default()
		stage := pipeline.NewComplianceStage(store.Documents(), table, app.NewAIChecker(cfg.AI, table, logger), nil, logger)
		uploader = &checkingUploader{next: uploader, checker: stage, logger: logger}
	}
	ingestor := ingest.NewFSIngestor(uploader, logger)

	if ingestWatch {
		cmd.Printf("watching %s for %s (ctrl-c to stop)\n", root, userID)
		err := ingestor.Watch(ctx, userID, ingest.WatchConfig{
			Roots:       []string{root},
			InitialScan: true,
			SkipHidden:  !ingestIncludeHidden,
			Debounce:    ingestDebounce,
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	results, stats, err := ingestor.IngestDirectory(ctx, userID, root, !ingestIncludeHidden)
	if err != nil {
		return err
	}
	for _, r := range results {
		switch {
		case r.Err != "":
			cmd.Printf("FAIL  %s: %s\n", r.SourcePath, r.Err)
		case r.Deduplicated:
			cmd.Printf("DUP   %s (%s)\n", r.SourcePath, r.DocumentID)
		default:
			cmd.Printf("OK    %s (%s, %d chars)\n", r.SourcePath, r.DocumentID, r.TextLen)
		}
	}
	cmd.Printf("scanned=%d matched=%d stored=%d duplicates=%d failed=%d\n",
		stats.Scanned, stats.Matched, stats.Succeeded, stats.Deduplicated, stats.Failed)
	return nil
}

// checkingUploader runs a compliance check after each new upload that has
// text. Check failures are logged and never fail the upload.
type checkingUploader struct {
	next    ingest.Uploader
	checker async.Checker
	logger  *slog.Logger
}

func (u *checkingUploader) Run(ctx context.Context, in pipeline.Upload) (*entity.Document, bool, error) {
	doc, dup, err := u.next.Run(ctx, in)
	if err != nil || dup || !doc.HasText() {
		return doc, dup, err
	}
	res, cerr := u.checker.Run(ctx, doc.ID)
	if cerr != nil {
		u.logger.Warn("ingest.check.failed", "document_id", doc.ID, "error", cerr)
		return doc, dup, nil
	}
	u.logger.Info("ingest.check.ok", "document_id", doc.ID, "compliant", res.Compliant, "issues", len(res.Issues))
	return doc, dup, nil
}
