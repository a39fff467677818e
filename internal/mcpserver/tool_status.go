package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/codelens-dev/codelens/internal/indexing"
)

// IndexingStatusResponse mirrors indexing.Status for JSON transport.
type IndexingStatusResponse struct {
	IsIndexing     bool    `json:"is_indexing"`
	Progress       float64 `json:"progress"`
	CurrentFile    string  `json:"current_file"`
	TotalFiles     int     `json:"total_files"`
	ProcessedFiles int     `json:"processed_files"`
}

// AddGetIndexingStatusTool registers get_indexing_status with an MCP server.
func AddGetIndexingStatusTool(s *server.MCPServer, svc *indexing.Service) {
	tool := mcp.NewTool(
		"get_indexing_status",
		mcp.WithDescription("Report the current or most recent index_codebase run's progress."),
		mcp.WithString("collection",
			mcp.Description("Present for API symmetry with the other tools; status is process-wide, not per-collection")),
	)

	s.AddTool(tool, createGetIndexingStatusHandler(svc))
}

func createGetIndexingStatusHandler(svc *indexing.Service) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		status := svc.Status()

		response := IndexingStatusResponse{
			IsIndexing:     status.IsIndexing,
			Progress:       status.Progress,
			CurrentFile:    status.CurrentFile,
			TotalFiles:     status.TotalFiles,
			ProcessedFiles: status.ProcessedFiles,
		}

		jsonData, err := json.Marshal(response)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}

		return mcp.NewToolResultText(string(jsonData)), nil
	}
}
