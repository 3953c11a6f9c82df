package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventCommandChosen EventType = "CommandChosen"
	EventValueChanged  EventType = "ValueChanged"
	EventError         EventType = "Error"
	EventConfigLoaded  EventType = "ConfigLoaded"
	EventConfigSaved   EventType = "ConfigSaved"
	EventPaletteReady  EventType = "PaletteReady"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// CommandChosenEvent is emitted when the user confirms an item
type CommandChosenEvent struct {
	ItemID string
	Value  string
}

func (e CommandChosenEvent) Type() EventType { return EventCommandChosen }

// ValueChangedEvent is emitted when the selected item changes
type ValueChangedEvent struct {
	Old string
	New string
}

func (e ValueChangedEvent) Type() EventType { return EventValueChanged }

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ConfigLoadedEvent is emitted when a palette definition is loaded
type ConfigLoadedEvent struct {
	Path   string
	Items  int
	Groups int
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when a palette definition is written
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }

// PaletteReadyEvent is emitted once every configured entry is registered
type PaletteReadyEvent struct {
	Items int
}

func (e PaletteReadyEvent) Type() EventType { return EventPaletteReady }
