package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/parchmentlabs/engram/pkg/memory"
)

var (
	memoryContextToolName    = "memory_context"
	memoryContextDescription = "Retrieve the synthesized knowledge block built from every learned document. Use this to ground answers in persistent knowledge the user has taught the assistant."

	memoryListToolName    = "memory_list"
	memoryListDescription = "List the documents currently held in memory, with their ids, summaries, and concept and fact counts."

	memoryCitationToolName    = "memory_citation"
	memoryCitationDescription = "Look up an exact quote inside a learned document's retained text. Given a document id and a query string, returns the surrounding text window so claims can be cited back to their source."
)

// MemoryContextInput represents the input arguments for the MCP memory_context tool.
type MemoryContextInput struct{}

// MemoryContextOutput represents the structured output of a context request.
type MemoryContextOutput struct {
	Context string `json:"context"`
}

// handleMemoryContext returns the learned-knowledge block via MCP.
func (s *Server) handleMemoryContext(_ context.Context, _ *mcp.CallToolRequest, _ MemoryContextInput) (*mcp.CallToolResult, MemoryContextOutput, error) {
	output := MemoryContextOutput{Context: s.config.Manager.Context()}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: output.Context},
		},
	}, output, nil
}

// MemoryListInput represents the input arguments for the MCP memory_list tool.
type MemoryListInput struct{}

// MemoryListOutput represents the structured output of a list request.
type MemoryListOutput struct {
	Documents []memory.Listing `json:"documents"`
}

// handleMemoryList lists the learned documents via MCP.
func (s *Server) handleMemoryList(_ context.Context, _ *mcp.CallToolRequest, _ MemoryListInput) (*mcp.CallToolResult, MemoryListOutput, error) {
	listings := s.config.Manager.List()
	if listings == nil {
		listings = []memory.Listing{}
	}

	output := MemoryListOutput{Documents: listings}

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to serialize results: %v", err)},
			},
		}, MemoryListOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}

// MemoryCitationInput represents the input arguments for the MCP memory_citation tool.
type MemoryCitationInput struct {
	ID    string `json:"id" jsonschema:"the id of the learned document to search"`
	Query string `json:"query" jsonschema:"the exact quote to locate in the document's retained text"`
}

// MemoryCitationOutput represents the structured output of a citation lookup.
type MemoryCitationOutput struct {
	Citation string `json:"citation"`
}

// handleMemoryCitation locates an exact quote in a document via MCP.
func (s *Server) handleMemoryCitation(_ context.Context, _ *mcp.CallToolRequest, input MemoryCitationInput) (*mcp.CallToolResult, MemoryCitationOutput, error) {
	if input.ID == "" {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: "id is required"},
			},
		}, MemoryCitationOutput{}, nil
	}
	if input.Query == "" {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: "query is required"},
			},
		}, MemoryCitationOutput{}, nil
	}

	citation, err := s.config.Manager.Cite(input.ID, input.Query)
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Citation lookup failed: %v", err)},
			},
		}, MemoryCitationOutput{}, nil
	}

	output := MemoryCitationOutput{Citation: citation}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: citation},
		},
	}, output, nil
}
