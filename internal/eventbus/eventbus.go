package eventbus

import (
	"runtime/debug"
	"sync"

	"cmdpal/internal/domain"
	"cmdpal/internal/logging"
)

// Re-export domain types for convenience
type DomainEvent = domain.DomainEvent
type EventType = domain.EventType

// Event type constants
const (
	EventCommandChosen = domain.EventCommandChosen
	EventValueChanged  = domain.EventValueChanged
	EventError         = domain.EventError
	EventConfigLoaded  = domain.EventConfigLoaded
	EventConfigSaved   = domain.EventConfigSaved
	EventPaletteReady  = domain.EventPaletteReady
)

// Re-export domain event types
type CommandChosenEvent = domain.CommandChosenEvent
type ValueChangedEvent = domain.ValueChangedEvent
type ErrorEvent = domain.ErrorEvent
type ConfigLoadedEvent = domain.ConfigLoadedEvent
type ConfigSavedEvent = domain.ConfigSavedEvent
type PaletteReadyEvent = domain.PaletteReadyEvent

// EventHandler is a function that handles domain events
type EventHandler func(DomainEvent)

// EventBus is the interface for the event bus
type EventBus interface {
	Publish(event DomainEvent)
	Subscribe(eventType EventType, handler EventHandler) func()
	Close()
}

type subscription struct {
	id      uint64
	handler EventHandler
}

// bus is the concrete implementation of EventBus
type bus struct {
	mu        sync.RWMutex
	handlers  map[EventType][]subscription
	nextID    uint64
	eventChan chan DomainEvent
	wg        sync.WaitGroup
	quit      chan struct{}
	closeOnce sync.Once
}

// New creates a new event bus
func New() EventBus {
	b := &bus{
		handlers:  make(map[EventType][]subscription),
		eventChan: make(chan DomainEvent, 256),
		quit:      make(chan struct{}),
	}

	b.wg.Add(1)
	go b.dispatch()

	return b
}

// Publish publishes an event to all subscribers
func (b *bus) Publish(event DomainEvent) {
	if event.Type() != EventValueChanged {
		logging.Debug("eventbus: publishing", "event", event.Type())
	}

	select {
	case b.eventChan <- event:
	default:
		logging.Warn("eventbus: channel full, dropping event", "event", event.Type())
	}
}

// Subscribe subscribes to events of a specific type.
// Returns an unsubscribe function.
func (b *bus) Subscribe(eventType EventType, handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.handlers[eventType]
		for i, s := range subs {
			if s.id == id {
				b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Close stops the dispatcher and waits for it to exit. Queued events are dropped.
func (b *bus) Close() {
	b.closeOnce.Do(func() {
		close(b.quit)
		b.wg.Wait()
	})
}

// dispatch handles event distribution to subscribers
func (b *bus) dispatch() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.eventChan:
			b.mu.RLock()
			subs := make([]subscription, len(b.handlers[event.Type()]))
			copy(subs, b.handlers[event.Type()])
			b.mu.RUnlock()

			// Handlers run in order on the dispatcher goroutine so that
			// subscribers see events in publish order.
			for _, s := range subs {
				b.call(s.handler, event)
			}

		case <-b.quit:
			for {
				select {
				case <-b.eventChan:
				default:
					return
				}
			}
		}
	}
}

func (b *bus) call(h EventHandler, event DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("eventbus: handler panic", "event", event.Type(), "panic", r, "stack", string(debug.Stack()))
		}
	}()
	h(event)
}
