package api

import (
	"errors"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/parchmentlabs/engram/pkg/memory"
	"github.com/parchmentlabs/engram/pkg/memory/worker"
)

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// LearnRequest asks the server to ingest the document at a local path.
type LearnRequest struct {
	Path string `json:"path"`
}

// LearnResponse reports the id assigned to a learned document.
type LearnResponse struct {
	ID string `json:"id"`
}

// ContextResponse carries the synthesized memory-context block.
type ContextResponse struct {
	Context string `json:"context"`
}

// CitationResponse carries the text window surrounding a matched quote.
type CitationResponse struct {
	Citation string `json:"citation"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleLearn ingests a document from a path on the server's filesystem.
// With ?async=true and a configured pool the request returns 202 as soon
// as the job is queued; the document event stream signals completion.
func (s *Server) handleLearn(c *fiber.Ctx) error {
	var req LearnRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if req.Path == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "path is required"})
	}

	if c.QueryBool("async") {
		if s.config.Pool == nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "async ingest is not enabled"})
		}
		if !s.config.Pool.Enqueue(worker.Job{Path: req.Path}) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "ingest queue is full"})
		}
		return c.Status(fiber.StatusAccepted).JSON(LearnResponse{
			ID: memory.DeriveID(filepath.Base(req.Path)),
		})
	}

	id, err := s.manager.Learn(c.Context(), req.Path)
	if err != nil {
		s.logger.Warn("learn failed", "path", req.Path, "error", err)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(LearnResponse{ID: id})
}

// handleList returns listings for every learned document.
func (s *Server) handleList(c *fiber.Ctx) error {
	listings := s.manager.List()

	return c.JSON(map[string]any{
		"count":     len(listings),
		"documents": listings,
	})
}

// handleGetDocument returns the full record for one document.
func (s *Server) handleGetDocument(c *fiber.Ctx) error {
	record, err := s.manager.Get(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "document not found"})
	}

	return c.JSON(record)
}

// handleForget removes a document's record.
func (s *Server) handleForget(c *fiber.Ctx) error {
	if err := s.manager.Forget(c.Context(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "document not found"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// handleStats returns compression statistics for one document.
func (s *Server) handleStats(c *fiber.Ctx) error {
	stats, err := s.manager.Stats(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "document not found"})
	}

	return c.JSON(stats)
}

// handleCitation searches a document's retained text for an exact quote.
func (s *Server) handleCitation(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "q parameter required"})
	}

	citation, err := s.manager.Cite(c.Params("id"), query)
	if err != nil {
		if errors.Is(err, memory.ErrNoCitation) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "no citation found"})
		}
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "document not found"})
	}

	return c.JSON(CitationResponse{Citation: citation})
}

// handleContext returns the synthesized memory-context block.
func (s *Server) handleContext(c *fiber.Ctx) error {
	return c.JSON(ContextResponse{Context: s.manager.Context()})
}
