package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server and registers all recluse analysis tools.
type Server struct {
	server *mcp.Server
}

// NewServer creates a new MCP server with all recluse tools registered.
func NewServer(version string) *Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "recluse",
			Version: version,
		},
		nil,
	)

	s := &Server{server: server}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// registerTools adds all recluse analyzer tools to the server.
func (s *Server) registerTools() {
	// Full symbol-usage report
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_usage",
		Description: describeUsage(),
	}, handleAnalyzeUsage)

	// Visibility narrowing candidates
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_narrowing_candidates",
		Description: describeCandidates(),
	}, handleFindCandidates)

	// Dead element detection
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_dead_code",
		Description: describeDeadCode(),
	}, handleFindDeadCode)
}
