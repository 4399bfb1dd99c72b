package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reqlens/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so an analysis agent can search
the knowledge base and resolve context windows.

By default the server speaks JSON-RPC over stdio. Use --port to serve
streamable HTTP on /mcp instead, for example to test with MCP
Inspector. GET /healthz answers "ok" while the server runs.

Examples:
  # Stdio mode (default)
  reqlens mcp serve

  # HTTP mode
  reqlens mcp serve --port 8080

Agent configuration:
  {
    "mcpServers": {
      "reqlens": {
        "command": "/path/to/reqlens",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	server, err := mcp.NewServer(&mcp.Ports{
		KnowledgeBase: knowledgeBase,
		Resolver:      resolver,
	})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		cmd.PrintErrf("MCP server listening on http://localhost%s/mcp\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
