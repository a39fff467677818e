package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var indexCollection string

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a directory into a collection",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().StringVar(&indexCollection, "collection", "default", "collection to store chunks under")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	path := "."
	if len(args) == 1 {
		path = args[0]
	}

	_, app, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.Indexing.IndexCodebase(ctx, path, indexCollection)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}

	return json.NewEncoder(os.Stdout).Encode(result)
}
