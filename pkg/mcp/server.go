// Package mcp exposes component files to MCP clients: listing the registry,
// reading a file as a component tree, writing a tree back, resolving the
// imports a tree needs and checking a tree against the registry.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/uisync/pkg/mcplog"
	"github.com/gnana997/uisync/pkg/model"
	"github.com/gnana997/uisync/pkg/syncer"
	"github.com/gnana997/uisync/pkg/validator"
	"github.com/gnana997/uisync/pkg/workspace"
)

const serverVersion = "0.1.0-dev"

// Registry is the component registry the tools answer from. The indexer and
// a loaded catalog both satisfy it.
type Registry interface {
	model.Registry
	Entries() []model.RegistryEntry
}

// Server implements the MCP server for uisync.
type Server struct {
	mcpServer *server.MCPServer
	registry  Registry
	syncer    *syncer.Syncer
	store     *workspace.Store
	validator *validator.Validator
	callLog   *mcplog.Logger // nil disables the call log
}

// NewServer creates a server. store performs the writes of update_file;
// callLog may be nil.
func NewServer(registry Registry, sy *syncer.Syncer, store *workspace.Store, callLog *mcplog.Logger) *Server {
	s := &Server{registry: registry, syncer: sy, store: store, callLog: callLog}
	s.validator = validator.New(registry, nil)

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if callLog != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}
	s.mcpServer = server.NewMCPServer("uisync", serverVersion, opts...)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: listComponentsTool(), Handler: s.handleListComponents},
		server.ServerTool{Tool: parseFileTool(), Handler: s.handleParseFile},
		server.ServerTool{Tool: updateFileTool(), Handler: s.handleUpdateFile},
		server.ServerTool{Tool: resolveImportsTool(), Handler: s.handleResolveImports},
		server.ServerTool{Tool: validateTreeTool(), Handler: s.handleValidateTree},
	)

	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
