package api

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/parchmentlabs/engram/pkg/memory"
)

// Server is the API server for managing and querying learned memory.
type Server struct {
	config  Config
	manager *memory.Manager
	logger  *slog.Logger
	app     *fiber.App
}

// NewServer creates a new API server.
// The manager is injected to allow sharing with other components
// (e.g., the MCP server and the CLI when run in-process).
func NewServer(config Config, manager *memory.Manager, mcpHandler http.Handler, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:  config,
		manager: manager,
		logger:  logger,
		app:     app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/documents", s.handleLearn)
	app.Get("/documents", s.handleList)
	app.Get("/documents/:id", s.handleGetDocument)
	app.Delete("/documents/:id", s.handleForget)
	app.Get("/documents/:id/stats", s.handleStats)
	app.Get("/documents/:id/citation", s.handleCitation)
	app.Get("/context", s.handleContext)

	if config.Broker != nil {
		app.Get("/events", adaptor.HTTPHandlerFunc(s.handleEvents))
	}

	if mcpHandler != nil {
		app.All("/mcp", adaptor.HTTPHandler(mcpHandler))
	}

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
