package cmd

import (
	"github.com/huangsam/prefscore/internal/catalog"
	"github.com/huangsam/prefscore/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the prefscore MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents rate, rank and explain
products of the configured catalog via standard tools.

Logs are written to stderr so stdout stays reserved for the protocol.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		var cat *catalog.Catalog
		if cfg.CatalogPath != "" {
			var err error
			if cat, err = catalog.Load(cfg.CatalogPath); err != nil {
				return err
			}
		}
		return mcp.StartMCPServer(rootCtx, cfg, cat, storeManager)
	},
}
