package mcp_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/votary/canvass/internal/contract"
	mcp_internal "github.com/votary/canvass/internal/mcp"
	"github.com/votary/canvass/internal/tallystore"
	"github.com/votary/canvass/schema"
)

func testConfig(t *testing.T) *contract.Config {
	t.Helper()
	data, err := os.ReadFile("../../core/testdata/election.json")
	require.NoError(t, err)
	ed, err := schema.ParseElection(data)
	require.NoError(t, err)
	return &contract.Config{Election: ed, StoreBackend: schema.NoneBackend}
}

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	cfg := testConfig(t)
	store := &tallystore.MockTallyStore{}
	s := mcp_internal.NewMCPServer(cfg, store)

	t.Run("tabulate_cvrs missing cvr_path", func(t *testing.T) {
		res := callTool(t, s, "tabulate_cvrs", map[string]any{})
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, resultText(t, res), "cvr_path is required")
	})

	t.Run("query_tally missing cvr_path", func(t *testing.T) {
		res := callTool(t, s, "query_tally", map[string]any{"precinct": "precinct-1"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "cvr_path is required")
	})

	t.Run("query_tally invalid voting method", func(t *testing.T) {
		res := callTool(t, s, "query_tally", map[string]any{
			"cvr_path":      "cvrs.txt",
			"voting_method": "provisional",
		})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "invalid voting method")
	})

	t.Run("tabulate_cvrs unreadable file", func(t *testing.T) {
		res := callTool(t, s, "tabulate_cvrs", map[string]any{"cvr_path": "/nonexistent/cvrs.txt"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "tabulation failed")
	})
}

func TestMCPServerHandlers_Tabulate(t *testing.T) {
	cfg := testConfig(t)

	path := filepath.Join(t.TempDir(), "cvrs.txt")
	line := `{"_ballotId":"b-1","_ballotStyleId":"1","_precinctId":"precinct-1","_scannerId":"scanner-1","_batchId":"batch-1","_testBallot":false,"president":["alice"]}`
	require.NoError(t, os.WriteFile(path, []byte(line+"\n"), 0o644))

	store, err := tallystore.NewTallyStore(schema.NoneBackend, "")
	require.NoError(t, err)

	s := mcp_internal.NewMCPServer(cfg, store)

	res := callTool(t, s, "tabulate_cvrs", map[string]any{"cvr_path": path})
	assert.False(t, res.IsError)
	text := resultText(t, res)
	assert.Contains(t, text, `"ballotsCounted": 1`)
	assert.Contains(t, text, `"invalidLines": 0`)

	res = callTool(t, s, "query_tally", map[string]any{
		"cvr_path": path,
		"precinct": "precinct-1",
	})
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), `"numberOfBallotsCounted": 1`)
}

func TestMCPServerHandlers_ExternalTallyStatus(t *testing.T) {
	cfg := testConfig(t)
	store := &tallystore.MockTallyStore{}
	store.On("GetExternalTallies").Return("", false, nil)

	s := mcp_internal.NewMCPServer(cfg, store)

	res := callTool(t, s, "external_tally_status", map[string]any{})
	assert.False(t, res.IsError)
	assert.Equal(t, "[]", resultText(t, res))

	store.AssertExpectations(t)
}
