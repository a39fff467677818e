package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClearIndexHandler_MissingCollection(t *testing.T) {
	handler := createClearIndexHandler(newTestIndexingService(t))

	request := mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: map[string]interface{}{}}}
	result, err := handler(context.Background(), request)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}

func TestClearIndexHandler_ClearsPreviouslyIndexedCollection(t *testing.T) {
	svc := newTestIndexingService(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\nfunc main() {}\n"), 0o644))
	_, err := svc.IndexCodebase(context.Background(), root, "c1")
	require.NoError(t, err)

	handler := createClearIndexHandler(svc)
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: map[string]interface{}{"collection": "c1"}},
	}

	result, err := handler(context.Background(), request)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)

	textContent, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)

	var response ClearIndexResponse
	require.NoError(t, json.Unmarshal([]byte(textContent.Text), &response))
	assert.True(t, response.Cleared)
	assert.Equal(t, "c1", response.Collection)
}
