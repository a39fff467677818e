// Package cli is the cobra command surface (§6's "any CLI collaborator"):
// serve, index, search, status, and clear, each loading configuration,
// bootstrapping the provider registry, and driving one operation on the
// resulting app, the same layering the teacher's internal/cli uses
// (root.go wires persistent flags + viper, each subcommand file owns one
// cobra.Command).
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codelens-dev/codelens/internal/config"
	"github.com/codelens-dev/codelens/internal/registry"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "codelens",
	Short: "codelens indexes and semantically searches a codebase",
	Long: `codelens ingests a source tree, chunks it with language-aware
parsing, embeds the chunks, and stores them for semantic search,
exposed both as an MCP tool surface and as this CLI.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory containing .codelens/config.yml")
}

// Execute runs the root command and returns its error rather than calling
// os.Exit itself, so main can map the failure to the right exit code
// (1 for startup/configuration failures, 2 for operational ones).
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// StartupError marks a failure that happened before a command's core
// operation ran — config loading, validation, or provider bootstrap.
// main uses this to distinguish exit code 1 from exit code 2.
type StartupError struct {
	Err error
}

func (e *StartupError) Error() string { return e.Err.Error() }
func (e *StartupError) Unwrap() error { return e.Err }

func startupErrorf(format string, args ...any) error {
	return &StartupError{Err: fmt.Errorf(format, args...)}
}

// bootstrap loads config from configDir and wires a registry.App from it,
// wrapping every failure as a StartupError.
func bootstrap(ctx context.Context) (*config.Config, *registry.App, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, nil, startupErrorf("load configuration: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, startupErrorf("invalid configuration: %w", err)
	}

	app, err := registry.Bootstrap(ctx, registry.FromConfig(cfg))
	if err != nil {
		return nil, nil, startupErrorf("bootstrap: %w", err)
	}
	return cfg, app, nil
}
