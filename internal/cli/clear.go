package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear [collection]",
	Short: "Drop every stored chunk, vector, and keyword entry for a collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	collection := args[0]

	_, app, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Indexing.ClearCollection(ctx, collection); err != nil {
		return fmt.Errorf("clear: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "cleared %q\n", collection)
	return nil
}
