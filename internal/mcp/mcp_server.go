// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/votary/canvass/internal/contract"
)

// NewMCPServer initializes and configures the Canvass MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, store contract.TallyStore) *server.MCPServer {
	s := server.NewMCPServer(
		"Canvass Tabulation Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		store:   store,
	}

	// --- 1. Tool: tabulate_cvrs ---
	s.AddTool(mcp.NewTool("tabulate_cvrs",
		mcp.WithDescription("Tabulate cast vote record files against the configured election definition."),
		mcp.WithString("cvr_path", mcp.Description("Path to a newline-delimited CVR JSON file."), mcp.Required()),
		mcp.WithBoolean("include_test_ballots", mcp.Description("Include ballots flagged as test ballots. Defaults to false.")),
	), h.handleTabulateCVRs)

	// --- 2. Tool: query_tally ---
	s.AddTool(mcp.NewTool("query_tally",
		mcp.WithDescription("Tabulate CVR files and resolve a filtered tally for one ballot partition."),
		mcp.WithString("cvr_path", mcp.Description("Path to a newline-delimited CVR JSON file."), mcp.Required()),
		mcp.WithString("precinct", mcp.Description("Restrict the tally to one precinct id.")),
		mcp.WithString("scanner", mcp.Description("Restrict the tally to one scanner id.")),
		mcp.WithString("batch", mcp.Description("Restrict the tally to one batch id.")),
		mcp.WithString("party", mcp.Description("Restrict the tally to one party id.")),
		mcp.WithString("voting_method", mcp.Description("Restrict the tally to one voting method."), mcp.Enum("standard", "absentee", "unknown")),
	), h.handleQueryTally)

	// --- 3. Tool: external_tally_status ---
	s.AddTool(mcp.NewTool("external_tally_status",
		mcp.WithDescription("Summarize the external tallies held in the tally store."),
	), h.handleExternalTallyStatus)

	return s
}

// StartMCPServer starts the Canvass MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, store contract.TallyStore) error {
	s := NewMCPServer(baseCfg, store)
	return server.ServeStdio(s)
}
