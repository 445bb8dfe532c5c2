package cmd

import (
	"github.com/spf13/cobra"

	"github.com/votary/canvass/internal/mcp"
	"github.com/votary/canvass/internal/tallystore"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Canvass MCP server",
	Long:  `Launch an MCP server that allows AI agents to tabulate and query election results via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Keep stdout clean for the protocol; setup warnings go to stderr.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, tallystore.Store())
	},
}
