package selection

// State holds selection state
type State struct {
	Selected string // "" when nothing is selected
	Loop     bool
}

// View is the part of the rendered tree navigation reads
type View interface {
	ValidItems() []string
	Groups() []string
	GroupOf(itemID string) string
	GroupValidItems(groupID string) []string
}

// Options tunes an explicit selection
type Options struct {
	// SkipScroll is set for pointer-driven selection; the pointer is
	// already over the item so it must not be scrolled.
	SkipScroll bool
}

// SelectionChangedEvent is published whenever the selected item changes
type SelectionChangedEvent struct {
	Old        string
	New        string
	SkipScroll bool
}

type SelectionClearedEvent struct{}
