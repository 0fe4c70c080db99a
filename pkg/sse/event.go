// Package sse provides a minimal, purpose-built SSE (Server-Sent Events)
// broker for broadcasting document lifecycle events to connected clients.
//
// This package intentionally does NOT provide SSE client or parsing
// capabilities.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import "strings"

// Event represents a single SSE event, delimited by a blank line in the
// wire format.
type Event struct {
	// Type is the SSE event type written as the "event:" field.
	// An empty string means the default "message" type per the SSE spec.
	Type string

	// Data is the event payload. Multi-line payloads are written as
	// multiple "data:" lines (per the SSE spec, clients rejoin them with
	// a single newline).
	Data string

	// ID is the event ID written as the "id:" field, if present.
	ID string
}

// Encode renders the event in SSE wire format, terminated by the blank
// line that delimits events.
func (e Event) Encode() []byte {
	var sb strings.Builder

	if e.Type != "" {
		sb.WriteString("event: ")
		sb.WriteString(e.Type)
		sb.WriteString("\n")
	}

	if e.ID != "" {
		sb.WriteString("id: ")
		sb.WriteString(e.ID)
		sb.WriteString("\n")
	}

	for _, line := range strings.Split(e.Data, "\n") {
		sb.WriteString("data: ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")

	return []byte(sb.String())
}
