package scheduler

import (
	"sort"
)

// Scheduler queues side effects to run at the next flush. Work is keyed
// by phase: scheduling a phase that is already pending replaces its
// callback. A flush runs the callbacks pending when it starts in
// ascending phase order; callbacks scheduled while flushing wait for the
// following flush.
//
// Scheduler is not safe for concurrent use; the palette runs on a single
// goroutine.
type Scheduler struct {
	pending      map[int]func()
	requestFlush func()
	flushing     bool
}

// New creates a scheduler. requestFlush, if set, is called whenever the
// queue goes from empty to non-empty so the host can arrange a flush.
func New(requestFlush func()) *Scheduler {
	return &Scheduler{
		pending:      make(map[int]func()),
		requestFlush: requestFlush,
	}
}

// Schedule queues fn for the next flush under phase
func (s *Scheduler) Schedule(phase int, fn func()) {
	wasEmpty := len(s.pending) == 0
	s.pending[phase] = fn
	if wasEmpty && s.requestFlush != nil {
		s.requestFlush()
	}
}

// Pending reports whether any work is queued
func (s *Scheduler) Pending() bool {
	return len(s.pending) > 0
}

// Phases returns the queued phases in the order they will run
func (s *Scheduler) Phases() []int {
	phases := make([]int, 0, len(s.pending))
	for p := range s.pending {
		phases = append(phases, p)
	}
	sort.Ints(phases)
	return phases
}

// Flush runs the work queued before this call
func (s *Scheduler) Flush() {
	if s.flushing || len(s.pending) == 0 {
		return
	}
	batch := s.pending
	phases := s.Phases()
	s.pending = make(map[int]func())

	s.flushing = true
	defer func() { s.flushing = false }()
	for _, p := range phases {
		batch[p]()
	}
}

// Settle flushes until nothing is pending or max rounds have run. It
// returns the number of flushes performed.
func (s *Scheduler) Settle(max int) int {
	n := 0
	for n < max && s.Pending() {
		s.Flush()
		n++
	}
	return n
}
