package sse

import (
	"context"
	"sync"
)

// subscriberBuffer is how many encoded events a slow subscriber can lag
// behind before new events are dropped for it.
const subscriberBuffer = 16

// Broker fans encoded SSE events out to every subscribed client.
//
// Publishing never blocks: subscribers that cannot keep up have events
// dropped rather than stalling the publisher.
type Broker struct {
	mu          sync.Mutex
	subscribers map[chan []byte]struct{}
	closed      bool
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[chan []byte]struct{}),
	}
}

// Subscribe registers a new client and returns the channel its encoded
// events arrive on. The subscription is removed and the channel closed
// when ctx is cancelled or the broker closes.
func (b *Broker) Subscribe(ctx context.Context) <-chan []byte {
	ch := make(chan []byte, subscriberBuffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch
	}
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.unsubscribe(ch)
	}()

	return ch
}

// Publish broadcasts the event to every subscriber.
func (b *Broker) Publish(event Event) {
	encoded := event.Encode()

	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subscribers {
		select {
		case ch <- encoded:
		default:
			// Subscriber is not keeping up; drop the event for it.
		}
	}
}

// Close shuts the broker down and closes every subscriber channel.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, ch)
	}

	return nil
}

func (b *Broker) unsubscribe(ch chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscribers[ch]; ok {
		delete(b.subscribers, ch)
		close(ch)
	}
}
