package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/codelens-dev/codelens/internal/search"
)

// DefaultSearchLimit mirrors the teacher tool's default result count when
// the caller omits limit.
const DefaultSearchLimit = 15

// SearchCodeResponse wraps search hits with a total count, matching the
// teacher's CortexSearchResponse envelope shape.
type SearchCodeResponse struct {
	Results []search.Result `json:"results"`
	Total   int             `json:"total"`
}

// AddSearchCodeTool registers search_code with an MCP server.
func AddSearchCodeTool(s *server.MCPServer, svc *search.Service) {
	tool := mcp.NewTool(
		"search_code",
		mcp.WithDescription("Semantic search over an indexed collection's chunks, blended with keyword hits when a keyword index is available."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language or keyword search query")),
		mcp.WithString("collection",
			mcp.Description("Collection to search (default: \"default\")")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (default: 15)")),
	)

	s.AddTool(tool, createSearchCodeHandler(svc))
}

func createSearchCodeHandler(svc *search.Service) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		query, ok := argsMap["query"].(string)
		if !ok || query == "" {
			return mcp.NewToolResultError("query parameter is required"), nil
		}

		collection := "default"
		if c, ok := argsMap["collection"].(string); ok && c != "" {
			collection = c
		}

		limit := DefaultSearchLimit
		if l, ok := argsMap["limit"].(float64); ok && l > 0 {
			limit = int(l)
		}

		results, err := svc.Query(ctx, collection, query, limit)
		if err != nil {
			return nil, fmt.Errorf("search_code failed: %w", err)
		}

		response := SearchCodeResponse{Results: results, Total: len(results)}

		jsonData, err := json.Marshal(response)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}

		return mcp.NewToolResultText(string(jsonData)), nil
	}
}
