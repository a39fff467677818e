package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/codelens-dev/codelens/internal/mcpserver"
	"github.com/codelens-dev/codelens/internal/registry"
)

var adminAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP tool server on stdio",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&adminAddr, "admin-addr", "", "serve GET /healthz on this address (default: config's server.admin_addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, app, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	// Start blocks until Stop is called, so it runs in its own goroutine;
	// daemonErrCh carries its return value back for the caller to log.
	daemonErrCh := make(chan error, 1)
	go func() { daemonErrCh <- app.Daemon.Start(ctx) }()
	defer func() {
		app.Daemon.Stop()
		if err := <-daemonErrCh; err != nil {
			log.Printf("daemon: %v", err)
		}
	}()

	addr := adminAddr
	if addr == "" {
		addr = cfg.Server.AdminAddr
	}
	if addr != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", healthzHandler(app))
		srv := &http.Server{Addr: addr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("admin server: %v", err)
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	mcpSrv := mcpserver.New(app.Indexing, app.Search)
	if err := mcpSrv.Serve(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

type healthzResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// healthzHandler reports the service manager's health snapshot, the
// minimal liveness hook spec.md's administrative surface calls for.
func healthzHandler(app *registry.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results := app.Services.HealthCheckAll(r.Context())

		resp := healthzResponse{Status: "ok", Services: map[string]string{}}
		for _, res := range results {
			if res.Err != nil {
				resp.Status = "degraded"
				resp.Services[res.Name] = res.Err.Error()
			} else {
				resp.Services[res.Name] = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if resp.Status != "ok" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
