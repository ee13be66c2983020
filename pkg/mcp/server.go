package mcp

import (
	"sync/atomic"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/twconfig/pkg/config"
	"github.com/gnana997/twconfig/pkg/mcplog"
)

const serverVersion = "0.1.0-dev"

// Server implements the MCP server for twconfig, exposing the loaded
// document's themes, colors, fonts and plugins to agents.
type Server struct {
	mcpServer *server.MCPServer
	state     atomic.Pointer[state]
	logger    *mcplog.Logger // nil disables call logging
}

// state is swapped as a unit so a tool call never sees a document paired
// with the palette of another reload.
type state struct {
	doc  *config.Document
	opts config.ValidateOptions
}

// NewServer creates a server answering from doc. opts supplies the palette
// and plugin registry used for resolution and validation.
func NewServer(doc *config.Document, opts config.ValidateOptions, logger *mcplog.Logger) *Server {
	s := &Server{logger: logger}
	s.state.Store(&state{doc: doc, opts: opts.WithDefaults()})

	serverOpts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if logger != nil {
		serverOpts = append(serverOpts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}

	s.mcpServer = server.NewMCPServer("twconfig", serverVersion, serverOpts...)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: listThemesTool(), Handler: s.handleListThemes},
		server.ServerTool{Tool: getThemeTool(), Handler: s.handleGetTheme},
		server.ServerTool{Tool: resolveColorTool(), Handler: s.handleResolveColor},
		server.ServerTool{Tool: getFontStackTool(), Handler: s.handleGetFontStack},
		server.ServerTool{Tool: listPluginsTool(), Handler: s.handleListPlugins},
		server.ServerTool{Tool: getConfigSummaryTool(), Handler: s.handleGetConfigSummary},
		server.ServerTool{Tool: validateConfigTool(), Handler: s.handleValidateConfig},
	)

	return s
}

// SetDocument swaps the document answered from, keeping the current options.
func (s *Server) SetDocument(doc *config.Document) {
	s.state.Store(&state{doc: doc, opts: s.current().opts})
}

// Reload swaps the document together with the options it was validated
// against, e.g. after the custom palette changed.
func (s *Server) Reload(doc *config.Document, opts config.ValidateOptions) {
	s.state.Store(&state{doc: doc, opts: opts.WithDefaults()})
}

// Document returns the current document.
func (s *Server) Document() *config.Document {
	return s.current().doc
}

func (s *Server) current() *state {
	return s.state.Load()
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
