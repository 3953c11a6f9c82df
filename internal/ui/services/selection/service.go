package selection

import (
	"slices"

	"cmdpal/internal/logging"
	"cmdpal/internal/ui/services/events"
)

// Service tracks the single selected item and moves it through the
// rendered order
type Service struct {
	state *State
	bus   events.EventBus
	view  View
}

// NewService creates a new selection service
func NewService(bus events.EventBus, view View) *Service {
	if bus == nil {
		bus = &events.NullBus{}
	}
	return &Service{
		state: &State{},
		bus:   bus,
		view:  view,
	}
}

// SetLoop sets the wraparound policy
func (s *Service) SetLoop(loop bool) {
	s.state.Loop = loop
}

// Selected returns the selected id, "" if none
func (s *Service) Selected() string {
	return s.state.Selected
}

// SetSelected selects id explicitly. Reports whether the selection changed.
func (s *Service) SetSelected(id string, opts Options) bool {
	if id == s.state.Selected {
		return false
	}
	old := s.state.Selected
	s.state.Selected = id

	if id == "" {
		s.bus.Publish(SelectionClearedEvent{})
	}
	logging.Debug("selection: changed", "from", old, "to", id)
	s.bus.Publish(SelectionChangedEvent{Old: old, New: id, SkipScroll: opts.SkipScroll})
	return true
}

// Clear drops the selection
func (s *Service) Clear() {
	s.SetSelected("", Options{})
}

// SelectFirst selects the first valid item, or nothing if there is none
func (s *Service) SelectFirst() {
	items := s.view.ValidItems()
	if len(items) == 0 {
		s.Clear()
		return
	}
	s.SetSelected(items[0], Options{})
}

// SelectLast selects the last valid item
func (s *Service) SelectLast() {
	items := s.view.ValidItems()
	s.SelectByIndex(len(items) - 1)
}

// SelectByIndex selects the i-th valid item; out of range is a no-op
func (s *Service) SelectByIndex(i int) {
	items := s.view.ValidItems()
	if i < 0 || i >= len(items) {
		return
	}
	s.SetSelected(items[i], Options{})
}

// SelectByOffset moves the selection by one valid item in direction.
// With nothing selected, +1 lands on the first item. Past either end it
// wraps when looping and stays put otherwise.
func (s *Service) SelectByOffset(direction int) {
	items := s.view.ValidItems()
	if len(items) == 0 {
		return
	}
	index := slices.Index(items, s.state.Selected)
	target := index + direction

	if s.state.Loop {
		switch {
		case target < 0:
			target = len(items) - 1
		case target >= len(items):
			target = 0
		}
	}
	if target < 0 || target >= len(items) {
		return
	}
	s.SetSelected(items[target], Options{})
}

// SelectByGroupOffset jumps to the first valid item of the nearest
// sibling group in direction that has one. Falls back to SelectByOffset
// when the selection is ungrouped or no such group exists.
func (s *Service) SelectByGroupOffset(direction int) {
	current := s.view.GroupOf(s.state.Selected)
	if current == "" {
		s.SelectByOffset(direction)
		return
	}

	groups := s.view.Groups()
	for i := slices.Index(groups, current) + direction; i >= 0 && i < len(groups); i += direction {
		if items := s.view.GroupValidItems(groups[i]); len(items) > 0 {
			s.SetSelected(items[0], Options{})
			return
		}
	}
	s.SelectByOffset(direction)
}

// IsValid reports whether id is currently a valid item
func (s *Service) IsValid(id string) bool {
	return id != "" && slices.Index(s.view.ValidItems(), id) >= 0
}
