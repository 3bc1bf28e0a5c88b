package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/permit-compliance/internal/server"
)

var dbTimeout time.Duration

var dbHealthCmd = &cobra.Command{
	Use:   "dbhealth",
	Short: "Connect to the configured database and ping it",
	Long: `Opens the database named by DB_DRIVER, applies pending migrations,
pings it and reports how many documents the store holds for --user.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Database.Validate(); err != nil {
			return err
		}
		store, err := server.ConnectStore(cmd.Context(), cfg.Database, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := server.PingDB(cmd.Context(), store, logger, dbTimeout); err != nil {
			cmd.Printf("DB health: FAIL (%v)\n", err)
			return err
		}
		cmd.Printf("DB health: OK (%s)\n", cfg.Database.Driver)
		if dbHealthUser != "" {
			docs, err := store.Documents().ListByUser(cmd.Context(), dbHealthUser)
			if err != nil {
				return err
			}
			cmd.Printf("documents for %s: %d\n", dbHealthUser, len(docs))
		}
		return nil
	},
}

var dbHealthUser string

func init() {
	dbHealthCmd.Flags().DurationVar(&dbTimeout, "timeout", 2*time.Second, "ping timeout")
	dbHealthCmd.Flags().StringVar(&dbHealthUser, "user", "", "also count documents owned by this user id")
	rootCmd.AddCommand(dbHealthCmd)
}
