package navigation

// Key is a symbolic key; the binding layer maps terminal input onto it
type Key string

const (
	KeyNone    Key = ""
	KeyNext    Key = "next"
	KeyPrev    Key = "prev"
	KeyHome    Key = "home"
	KeyEnd     Key = "end"
	KeyConfirm Key = "confirm"
	KeyRune    Key = "rune"
)

// Event is a key press as seen by the palette
type Event struct {
	Key       Key
	Rune      rune // set for KeyRune

	Group     bool // group modifier: jump by group
	End       bool // end modifier: jump to first/last
	Ctrl      bool
	Composing bool // an IME composition is in progress
}

// Result tells the caller what happened to an event
type Result struct {
	// Handled means the input's default behavior must be suppressed.
	Handled bool
	// Confirm means the selected item should be activated.
	Confirm bool
}

// Mover is the selection surface the dispatcher drives
type Mover interface {
	SelectByOffset(direction int)
	SelectByGroupOffset(direction int)
	SelectByIndex(i int)
	SelectLast()
}

// KeyDispatchedEvent is published for every event that moved or confirmed
type KeyDispatchedEvent struct {
	Event Event
}
