package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/votary/canvass/core/run"
	"github.com/votary/canvass/internal/contract"
	"github.com/votary/canvass/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	store   contract.TallyStore
}

func (h *toolHandler) handleTabulateCVRs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cvrPath := request.GetString("cvr_path", "")
	if cvrPath == "" {
		return mcp.NewToolResultError("cvr_path is required"), nil
	}
	cfg.CVRPaths = []string{cvrPath}
	cfg.IncludeTestBallots = request.GetBool("include_test_ballots", false)

	full, invalid, err := run.GetTabulationResults(cfg, h.store)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("tabulation failed: %v", err)), nil
	}

	type tabulationSummary struct {
		BallotsCounted int           `json:"ballotsCounted"`
		InvalidLines   int           `json:"invalidLines"`
		OverallTally   *schema.Tally `json:"overallTally"`
	}
	jsonData, _ := json.MarshalIndent(tabulationSummary{
		BallotsCounted: full.OverallTally.NumberOfBallotsCounted,
		InvalidLines:   len(invalid),
		OverallTally:   full.OverallTally,
	}, "", "  ")

	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleQueryTally(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cvrPath := request.GetString("cvr_path", "")
	if cvrPath == "" {
		return mcp.NewToolResultError("cvr_path is required"), nil
	}
	cfg.CVRPaths = []string{cvrPath}
	cfg.PrecinctID = request.GetString("precinct", "")
	cfg.ScannerID = request.GetString("scanner", "")
	cfg.BatchID = request.GetString("batch", "")
	cfg.PartyID = request.GetString("party", "")
	if m := request.GetString("voting_method", ""); m != "" {
		method := schema.VotingMethod(m)
		if _, ok := schema.ValidVotingMethods[method]; !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid voting method: %q", m)), nil
		}
		cfg.VotingMethod = method
	}

	full, _, err := run.GetTabulationResults(cfg, h.store)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("tabulation failed: %v", err)), nil
	}

	tally := run.GetFilteredTally(full, cfg)
	jsonData, _ := json.MarshalIndent(tally, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleExternalTallyStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tallies, err := run.LoadExternalTallies(h.store)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load external tallies: %v", err)), nil
	}

	type sourceSummary struct {
		Source          schema.ExternalTallySource `json:"source"`
		InputSourceName string                     `json:"inputSourceName"`
		VotingMethod    schema.VotingMethod        `json:"votingMethod"`
		BallotsCounted  int                        `json:"ballotsCounted"`
	}
	summaries := make([]sourceSummary, len(tallies))
	for i, tally := range tallies {
		summaries[i] = sourceSummary{
			Source:          tally.Source,
			InputSourceName: tally.InputSourceName,
			VotingMethod:    tally.VotingMethod,
			BallotsCounted:  tally.OverallTally.NumberOfBallotsCounted,
		}
	}

	jsonData, _ := json.MarshalIndent(summaries, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
