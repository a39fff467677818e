package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	searchCollection string
	searchLimit      int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search an indexed collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&searchCollection, "collection", "default", "collection to search")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 15, "maximum number of results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	query := args[0]

	_, app, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	results, err := app.Search.Query(ctx, searchCollection, query, searchLimit)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	return json.NewEncoder(os.Stdout).Encode(results)
}
