// Package mcp exposes every flow, and the vehicle registry lookup, as Model
// Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/kiranshivaraju/rescueassist/internal/schema"
	"github.com/kiranshivaraju/rescueassist/internal/vehicles"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// FlowRunner runs a flow by name from raw JSON input.
type FlowRunner interface {
	Registry() *schema.Registry
	Run(ctx context.Context, name string, raw json.RawMessage) (any, error)
}

type Server struct {
	mcpServer *server.MCPServer
	flows     FlowRunner
}

func NewServer(flows FlowRunner, version string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"RescueAssist",
			version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		flows: flows,
	}

	s.registerTools()
	return s
}

func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Handler serves the streamable HTTP transport.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcpServer)
}

func (s *Server) registerTools() {
	for _, spec := range s.flows.Registry().List() {
		s.mcpServer.AddTool(
			mcp.NewToolWithRawSchema(spec.Name, spec.Description, spec.InputSchema),
			s.flowHandler(spec.Name),
		)
	}

	lookup := vehicles.Tool()
	s.mcpServer.AddTool(
		mcp.NewToolWithRawSchema(lookup.Name, lookup.Description, lookup.InputSchema),
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			out, err := lookup.Handler(ctx, arguments(request))
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText(string(out)), nil
		},
	)
}

func (s *Server) flowHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := s.flows.Run(ctx, name, arguments(request))
		if err != nil {
			slog.Warn("mcp flow call failed", "flow", name, "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}

		b, err := json.Marshal(out)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(string(b)), nil
	}
}

// arguments returns the call arguments as JSON. Missing arguments read as {}.
func arguments(request mcp.CallToolRequest) json.RawMessage {
	if request.Params.Arguments == nil {
		return json.RawMessage(`{}`)
	}
	b, err := json.Marshal(request.Params.Arguments)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return b
}
