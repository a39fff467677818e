// Package mcpserver is the JSON-RPC/MCP tool surface: it exposes the
// indexing and search services as mark3labs/mcp-go tools over stdio, the
// same shape as the teacher's internal/mcp server but wired to a single
// indexing.Service/search.Service pair instead of a coordinator of
// per-backend searchers.
package mcpserver

import (
	"context"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/server"

	"github.com/codelens-dev/codelens/internal/indexing"
	"github.com/codelens-dev/codelens/internal/search"
)

// Server wraps an mcp-go server pre-loaded with the four codelens tools.
type Server struct {
	mcp *server.MCPServer
}

// New builds a Server exposing index_codebase, search_code,
// get_indexing_status, and clear_index against the given services.
func New(indexingSvc *indexing.Service, searchSvc *search.Service) *Server {
	mcpServer := server.NewMCPServer(
		"codelens-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	AddIndexCodebaseTool(mcpServer, indexingSvc)
	AddSearchCodeTool(mcpServer, searchSvc)
	AddGetIndexingStatusTool(mcpServer, indexingSvc)
	AddClearIndexTool(mcpServer, indexingSvc)

	return &Server{mcp: mcpServer}
}

// Serve runs the MCP server on stdio until ctx is cancelled or the
// transport returns.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("mcpserver: starting on stdio")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("mcp server error: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
