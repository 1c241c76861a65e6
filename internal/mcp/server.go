package mcp

import (
	"context"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverName = "executive-intake"

// NewServer builds an MCP server exposing the intake tools.
func NewServer(intake Intake, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil)
	RegisterTools(server, intake)
	return server
}

// RunStdio serves tools over stdin/stdout until the client disconnects or ctx ends.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
