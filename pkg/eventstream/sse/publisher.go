// Package sse publishes document events to connected SSE clients.
package sse

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/parchmentlabs/engram/pkg/eventstream"
	"github.com/parchmentlabs/engram/pkg/sse"
)

// Publisher broadcasts document events through an SSE broker. The broker
// is shared with the API server, which streams it to subscribed clients.
type Publisher struct {
	broker *sse.Broker
}

// NewPublisher creates a publisher over the given broker.
func NewPublisher(broker *sse.Broker) *Publisher {
	return &Publisher{broker: broker}
}

// PublishDocument encodes the event as JSON and broadcasts it.
func (p *Publisher) PublishDocument(_ context.Context, event *eventstream.DocumentEvent) error {
	if event == nil {
		return eventstream.ErrNilDocumentEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding document event: %w", err)
	}

	p.broker.Publish(sse.Event{
		Type: event.EventType,
		ID:   event.EventID,
		Data: string(payload),
	})

	return nil
}

// Close shuts down the underlying broker.
func (p *Publisher) Close() error {
	return p.broker.Close()
}

var _ eventstream.Publisher = (*Publisher)(nil)
