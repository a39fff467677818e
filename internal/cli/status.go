package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report the current or most recent indexing run's progress",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	_, app, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	return json.NewEncoder(os.Stdout).Encode(app.Indexing.Status())
}
