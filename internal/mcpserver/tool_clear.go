package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/codelens-dev/codelens/internal/indexing"
)

// ClearIndexResponse acknowledges a successful clear_index call.
type ClearIndexResponse struct {
	Collection string `json:"collection"`
	Cleared    bool   `json:"cleared"`
}

// AddClearIndexTool registers clear_index with an MCP server.
func AddClearIndexTool(s *server.MCPServer, svc *indexing.Service) {
	tool := mcp.NewTool(
		"clear_index",
		mcp.WithDescription("Drop every stored chunk, vector, and keyword entry for a collection."),
		mcp.WithString("collection",
			mcp.Required(),
			mcp.Description("Collection to clear")),
	)

	s.AddTool(tool, createClearIndexHandler(svc))
}

func createClearIndexHandler(svc *indexing.Service) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		collection, ok := argsMap["collection"].(string)
		if !ok || collection == "" {
			return mcp.NewToolResultError("collection parameter is required"), nil
		}

		if err := svc.ClearCollection(ctx, collection); err != nil {
			return nil, fmt.Errorf("clear_index failed: %w", err)
		}

		jsonData, err := json.Marshal(ClearIndexResponse{Collection: collection, Cleared: true})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}

		return mcp.NewToolResultText(string(jsonData)), nil
	}
}
