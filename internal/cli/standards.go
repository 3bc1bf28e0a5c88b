package cli

import (
	"github.com/spf13/cobra"
)

var standardsFile string

var standardsCmd = &cobra.Command{
	Use:   "standards",
	Short: "Print the building standards table as JSON",
	Long: `Prints the standards table the checkers use. With --file the YAML
document is validated against the schema first and printed on success.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		table, err := loadTable(standardsFile)
		if err != nil {
			return err
		}
		cmd.Println(table.JSON())
		return nil
	},
}

func init() {
	standardsCmd.Flags().StringVarP(&standardsFile, "file", "f", "", "YAML standards table to validate and print")
	rootCmd.AddCommand(standardsCmd)
}
