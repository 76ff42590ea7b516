package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/grasp/internal/adapters/driving/mcp"
)

var mcpAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp [FILE]",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants. A FILE
argument loads that document before serving.

Use --http to start an HTTP server instead, which also serves Prometheus
metrics on /metrics.

Examples:
  # Stdio mode (default)
  grasp mcp

  # HTTP mode with a preloaded document
  grasp mcp report.pdf --http :8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "grasp": {
        "command": "/path/to/grasp",
        "args": ["mcp"]
      }
    }
  }`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpAddr, "http", "", "HTTP listen address, e.g. :8080 (empty = use stdio)")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	rt, err := startRuntime(cmd, RuntimeOptions{})
	if err != nil {
		return err
	}
	defer rt.Close() //nolint:errcheck

	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		if _, err := rt.Session.Load(cmd.Context(), filepath.Base(args[0]), data); err != nil {
			return err
		}
	}

	watchPrompts(cmd.Context(), rt)

	server, err := mcp.NewServer(&mcp.Ports{
		Session: rt.Session,
		Metrics: rt.Metrics,
	})
	if err != nil {
		return err
	}

	if mcpAddr != "" {
		cmd.PrintErrf("MCP server listening on http://%s\n", mcpAddr)
		return server.RunHTTP(cmd.Context(), mcpAddr)
	}

	return server.Run(cmd.Context())
}
