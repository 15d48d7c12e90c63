package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mikeyobrien/forge-search/internal/adapters/driven/storage/vault"
	"github.com/mikeyobrien/forge-search/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

While the server runs, the vault is watched for changes and the index
is updated incrementally. Disable with --no-watch.

Examples:
  # Stdio mode (default, for Claude Desktop)
  forge-search mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  forge-search mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "forge-search": {
        "command": "/path/to/forge-search",
        "args": ["mcp", "serve", "--vault", "/path/to/vault"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Bool("no-watch", false, "do not watch the vault for changes")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	noWatch, err := cmd.Flags().GetBool("no-watch")
	if err != nil {
		return fmt.Errorf("getting no-watch flag: %w", err)
	}

	ports := &mcp.Ports{
		Search:    searchService,
		Documents: documentStore,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if !noWatch && vaultStore != nil {
		go watchVault(cmd, vaultStore)
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}

// watchVault runs the incremental index watcher until the command's
// context ends. Watcher failures are reported but do not stop serving.
func watchVault(cmd *cobra.Command, store *vault.Store) {
	watcher := vault.NewWatcher(store, searchService)
	if err := watcher.Run(cmd.Context()); err != nil && cmd.Context().Err() == nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "vault watcher stopped: %v\n", err)
	}
}
