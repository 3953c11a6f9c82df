package ui

// flushMsg asks the update loop to run the engine's queued work
type flushMsg struct{}

// ChosenMsg reports the item the user confirmed
type ChosenMsg struct {
	ID     string
	Output string
}
