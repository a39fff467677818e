// Command codelens is the CLI and MCP server entry point: serve, index,
// search, status, and clear, each bootstrapped from the three-layer
// config. Exit codes follow spec.md §6: 0 success, 1 startup/configuration
// failure, 2 operational failure after startup.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/codelens-dev/codelens/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := cli.Execute(ctx)
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, err)

	var startupErr *cli.StartupError
	if errors.As(err, &startupErr) {
		os.Exit(1)
	}
	os.Exit(2)
}
