// Package api provides the HTTP API server for managing and querying learned memory.
package api

import (
	"github.com/parchmentlabs/engram/pkg/memory/worker"
	"github.com/parchmentlabs/engram/pkg/sse"
)

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8085")
	ListenAddr string

	// Broker carries document lifecycle events to SSE clients. Nil
	// disables the /events endpoint.
	Broker *sse.Broker

	// Pool accepts asynchronous ingest jobs. Nil disables async learn
	// requests.
	Pool *worker.Pool
}
