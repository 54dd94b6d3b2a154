package event

import (
	"sync"

	"cryptofolio/internal/domain"
)

// Topic enumerates the bus channels. Free-form string keys are deliberately
// not accepted.
type Topic string

const (
	// TopicPrice carries normalized PriceRecord updates from the stream.
	TopicPrice Topic = "price"
)

// Handler receives one published record. Handlers run synchronously on the
// publisher's goroutine.
type Handler func(rec domain.PriceRecord)

// Bus is a topic-keyed subscriber registry. Each topic holds a de-duplicated
// set of named handles: subscribing the same name twice is a no-op, as is
// unsubscribing a name that was never registered.
type Bus struct {
	mu     sync.Mutex
	topics map[Topic]map[string]Handler
}

func NewBus() *Bus {
	return &Bus{topics: make(map[Topic]map[string]Handler)}
}

// Subscribe registers h under the given handle name. An already-registered
// name keeps its original handler.
func (b *Bus) Subscribe(topic Topic, name string, h Handler) {
	if h == nil || name == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.topics[topic]
	if subs == nil {
		subs = make(map[string]Handler)
		b.topics[topic] = subs
	}
	if _, exists := subs[name]; exists {
		return
	}
	subs[name] = h
}

// Unsubscribe removes the named handle if present.
func (b *Bus) Unsubscribe(topic Topic, name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.topics[topic], name)
}

// Publish delivers rec to every subscriber of the topic, synchronously.
func (b *Bus) Publish(topic Topic, rec domain.PriceRecord) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.topics[topic]))
	for _, h := range b.topics[topic] {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(rec)
	}
}
