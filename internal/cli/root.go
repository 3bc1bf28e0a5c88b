// Package cli provides the Cobra commands for permitctl.
package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/permit-compliance/internal/app"
	"github.com/joseph-ayodele/permit-compliance/internal/common"
)

var (
	// Version is set via ldflags during build.
	Version = "dev"

	logLevel string
	jsonLogs bool

	cfg    *common.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "permitctl",
	Short: "Check construction plans against building standards",
	Long: `permitctl runs the permit document pipeline from the command line.

It extracts text from PDFs and scans, checks it against the building
standards table, and can ingest whole directories into the document store.

Configuration comes from the same environment variables (and .env file)
as permitd.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg = common.LoadConfig()
		level := cfg.LogLevel
		if logLevel != "" {
			if err := level.UnmarshalText([]byte(logLevel)); err != nil {
				return common.InvalidArgumentErrorf("invalid --log-level %q", logLevel)
			}
		}
		logger = app.NewLogger(cmd.ErrOrStderr(), level, jsonLogs)
		slog.SetDefault(logger)
		return nil
	},
}

// Execute runs the CLI until ctx is cancelled.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level: debug, info, warn, error (default from LOG_LEVEL)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false,
		"write logs as JSON")
}
