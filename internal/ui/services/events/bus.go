package events

import (
	"fmt"
	"sync"
)

// Bus is a synchronous event bus for UI services. Handlers run on the
// publishing goroutine, in subscription order, so listeners observe
// state transitions in the order the engine performs them.
type Bus struct {
	mu        sync.RWMutex
	listeners map[string][]func(interface{})
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		listeners: make(map[string][]func(interface{})),
	}
}

// Subscribe registers a listener for an event type. The type name is
// the one reported by TypeOf, e.g. "selection.SelectionChangedEvent".
func (b *Bus) Subscribe(eventType string, handler func(interface{})) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.listeners[eventType] = append(b.listeners[eventType], handler)
}

// Publish sends an event to all listeners
func (b *Bus) Publish(event interface{}) {
	b.mu.RLock()
	handlers := append([]func(interface{}){}, b.listeners[TypeOf(event)]...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}

// TypeOf returns the key events of this value are published under
func TypeOf(event interface{}) string {
	return fmt.Sprintf("%T", event)
}
