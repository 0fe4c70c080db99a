// Package mcp provides an MCP (Model Context Protocol) server for the engram memory layer.
package mcp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/parchmentlabs/engram/pkg/memory"
	"github.com/parchmentlabs/engram/pkg/utils"
)

type Config struct {
	// Manager is the memory layer the tools read from
	Manager *memory.Manager

	// Noop for empty MCP server
	Noop bool

	// Logger is the configured slog logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the memory tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	// Create the MCP server
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "engram",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if c.Noop {
		// return the empty MCP server with no tools configured
		// if the noop flag is set (i.e., MCP capabilities are disabled)
		s.mcpServer = mcpServer
		return s, nil
	}

	if c.Manager == nil {
		return nil, errors.New("memory manager is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	// Add tools
	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        memoryContextToolName,
		Description: memoryContextDescription,
	}, s.handleMemoryContext)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        memoryListToolName,
		Description: memoryListDescription,
	}, s.handleMemoryList)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        memoryCitationToolName,
		Description: memoryCitationDescription,
	}, s.handleMemoryCitation)

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server, or nil for a
// noop server.
func (s *Server) Handler() http.Handler {
	if s.handler == nil {
		return nil
	}
	return s.handler
}
