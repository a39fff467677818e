package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/codelens-dev/codelens/internal/indexing"
)

// IndexCodebaseResult mirrors spec's IndexingResult shape.
type IndexCodebaseResult struct {
	FilesProcessed int      `json:"files_processed"`
	ChunksCreated  int      `json:"chunks_created"`
	FilesSkipped   int      `json:"files_skipped"`
	Errors         []string `json:"errors"`
}

// AddIndexCodebaseTool registers index_codebase with an MCP server.
func AddIndexCodebaseTool(s *server.MCPServer, svc *indexing.Service) {
	tool := mcp.NewTool(
		"index_codebase",
		mcp.WithDescription("Walk a directory tree, chunk changed files, embed and store the chunks under a collection."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Root directory to index")),
		mcp.WithString("collection",
			mcp.Description("Collection name to store chunks under (default: \"default\")")),
	)

	s.AddTool(tool, createIndexCodebaseHandler(svc))
}

func createIndexCodebaseHandler(svc *indexing.Service) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		path, ok := argsMap["path"].(string)
		if !ok || path == "" {
			return mcp.NewToolResultError("path parameter is required"), nil
		}

		collection := "default"
		if c, ok := argsMap["collection"].(string); ok && c != "" {
			collection = c
		}

		result, err := svc.IndexCodebase(ctx, path, collection)
		if err != nil {
			return nil, fmt.Errorf("index_codebase failed: %w", err)
		}

		response := IndexCodebaseResult{
			FilesProcessed: result.FilesProcessed,
			ChunksCreated:  result.ChunksCreated,
			FilesSkipped:   result.FilesSkipped,
			Errors:         result.Errors,
		}

		jsonData, err := json.Marshal(response)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}

		return mcp.NewToolResultText(string(jsonData)), nil
	}
}
