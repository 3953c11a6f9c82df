package navigation

import (
	"cmdpal/internal/ui/services/events"
)

// Service maps key events onto selection moves
type Service struct {
	bus   events.EventBus
	mover Mover
	vim   bool
}

// NewService creates a new navigation service
func NewService(bus events.EventBus, mover Mover) *Service {
	if bus == nil {
		bus = &events.NullBus{}
	}
	return &Service{bus: bus, mover: mover}
}

// SetVimBindings enables ctrl+n/j and ctrl+p/k as next and previous
func (s *Service) SetVimBindings(on bool) {
	s.vim = on
}

// Dispatch handles one key event
func (s *Service) Dispatch(ev Event) Result {
	ev = s.translate(ev)

	var res Result
	switch ev.Key {
	case KeyNext:
		s.step(ev, +1)
		res.Handled = true
	case KeyPrev:
		s.step(ev, -1)
		res.Handled = true
	case KeyHome:
		s.mover.SelectByIndex(0)
		res.Handled = true
	case KeyEnd:
		s.mover.SelectLast()
		res.Handled = true
	case KeyConfirm:
		if ev.Composing {
			return res
		}
		res.Handled = true
		res.Confirm = true
	default:
		return res
	}

	s.bus.Publish(KeyDispatchedEvent{Event: ev})
	return res
}

func (s *Service) step(ev Event, direction int) {
	switch {
	case ev.End && direction > 0:
		s.mover.SelectLast()
	case ev.End:
		s.mover.SelectByIndex(0)
	case ev.Group:
		s.mover.SelectByGroupOffset(direction)
	default:
		s.mover.SelectByOffset(direction)
	}
}

// translate applies the vim bindings
func (s *Service) translate(ev Event) Event {
	if !s.vim || !ev.Ctrl || ev.Key != KeyRune {
		return ev
	}
	switch ev.Rune {
	case 'n', 'j':
		ev.Key = KeyNext
	case 'p', 'k':
		ev.Key = KeyPrev
	}
	return ev
}
