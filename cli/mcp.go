// ABOUTME: MCP server subcommand
// ABOUTME: Serves the CRM tools, resources and prompts over stdio
package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/leadsheet/crm"
	"github.com/harperreed/leadsheet/handlers"
)

// MCPCommand starts the MCP server on stdio
func MCPCommand(ctx context.Context, svc *crm.Service, logger *log.Logger, version string) error {
	logger.Info("Starting CRM MCP server", "version", version)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "leadsheet",
		Version: version,
	}, nil)
	handlers.New(svc, logger).Register(server)

	return server.Run(ctx, &mcp.StdioTransport{})
}
