package sorting

// View is the part of the rendered tree reflow reads and rearranges
type View interface {
	ValidItems() []string
	Groups() []string
	MoveToEnd(id string)
}

// ReflowedEvent is published after every reflow pass
type ReflowedEvent struct {
	Items  []string // ranked item order that was applied
	Groups []string // ranked group order that was applied
}
