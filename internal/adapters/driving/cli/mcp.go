package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/notion-nlp/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var (
	mcpPort int
	mcpHost string
)

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so assistants can read synced
pages, page trees and tags, and analyse text.

By default the server speaks JSON-RPC over stdio. Use --port to serve the
streamable HTTP transport on /mcp instead, with a liveness probe on /health.

Examples:
  # Stdio mode
  notion-nlp mcp serve

  # HTTP mode on localhost
  notion-nlp mcp serve --port 8080

  # HTTP mode on all interfaces
  notion-nlp mcp serve --port 8080 --host 0.0.0.0

Client configuration:
  {
    "mcpServers": {
      "notion-nlp": {
        "command": "/path/to/notion-nlp",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "127.0.0.1", "HTTP bind address")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if mcpPort < 0 || mcpPort > 65535 {
		return fmt.Errorf("invalid port %d", mcpPort)
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Document: documentService,
		Source:   sourceService,
		Analysis: analysisService,
	})
	if err != nil {
		return err
	}

	if mcpPort == 0 {
		return server.Run(cmd.Context())
	}

	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	cmd.Printf("MCP server listening on http://%s/mcp\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
