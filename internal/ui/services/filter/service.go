package filter

import (
	"cmdpal/internal/domain"
	"cmdpal/internal/logging"
	"cmdpal/internal/registry"
	"cmdpal/internal/ui/services/events"
	"cmdpal/internal/ui/services/scoring"
)

// Service computes which items and groups the current query lets through
type Service struct {
	scorer *scoring.Adapter
	bus    events.EventBus
}

// NewService creates a filter service ranking with scorer
func NewService(bus events.EventBus, scorer *scoring.Adapter) *Service {
	if bus == nil {
		bus = &events.NullBus{}
	}
	if scorer == nil {
		scorer = scoring.NewAdapter(nil)
	}
	return &Service{scorer: scorer, bus: bus}
}

// Recompute builds a fresh filter state. An empty query or a disabled
// filter yields browse mode: everything visible, count = total, and no
// scoring at all.
func (s *Service) Recompute(reg registry.Reader, query string, shouldFilter bool) domain.FilterState {
	fs := domain.NewFilterState()

	if query == "" || !shouldFilter {
		fs.Count = reg.Len()
		s.publish(query, fs)
		return fs
	}

	fs.Active = true
	for _, id := range reg.ItemIDs() {
		item, ok := reg.Item(id)
		if !ok {
			continue
		}
		fs.Ranks[id] = s.scorer.Rank(item.Value, query, item.Keywords)
	}
	derive(&fs, reg)

	logging.Debug("filter: recomputed", "query", query, "count", fs.Count, "groups", len(fs.VisibleGroups))
	s.publish(query, fs)
	return fs
}

// Rescore updates the rank of a single item after its value changed.
// Ranks of items that are no longer registered are dropped. Browse-mode
// states are returned untouched.
func (s *Service) Rescore(prev domain.FilterState, reg registry.Reader, query, id string) domain.FilterState {
	if !prev.Active {
		return prev
	}
	item, ok := reg.Item(id)
	if !ok {
		return prev
	}

	fs := domain.NewFilterState()
	fs.Active = true
	for _, itemID := range reg.ItemIDs() {
		if r, ok := prev.Ranks[itemID]; ok {
			fs.Ranks[itemID] = r
		}
	}
	fs.Ranks[id] = s.scorer.Rank(item.Value, query, item.Keywords)
	derive(&fs, reg)

	s.publish(query, fs)
	return fs
}

// derive fills Count and VisibleGroups from Ranks
func derive(fs *domain.FilterState, reg registry.Reader) {
	fs.Count = 0
	for _, r := range fs.Ranks {
		if r > 0 {
			fs.Count++
		}
	}
	for groupID, members := range reg.Membership() {
		for _, id := range members {
			if fs.Ranks[id] > 0 {
				fs.VisibleGroups[groupID] = struct{}{}
				break
			}
		}
	}
}

func (s *Service) publish(query string, fs domain.FilterState) {
	s.bus.Publish(FilterRecomputedEvent{
		Query:   query,
		Active:  fs.Active,
		Count:   fs.Count,
		Visible: len(fs.VisibleGroups),
	})
}
