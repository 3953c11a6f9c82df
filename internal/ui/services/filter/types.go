package filter

// FilterRecomputedEvent is published after every recompute
type FilterRecomputedEvent struct {
	Query   string
	Active  bool
	Count   int
	Visible int // visible groups
}
