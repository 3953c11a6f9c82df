package sorting

import (
	"sort"

	"cmdpal/internal/domain"
	"cmdpal/internal/logging"
	"cmdpal/internal/ui/services/events"
)

// Service rearranges the rendered palette into rank order
type Service struct {
	bus events.EventBus
}

// NewService creates a new sorting service
func NewService(bus events.EventBus) *Service {
	if bus == nil {
		bus = &events.NullBus{}
	}
	return &Service{bus: bus}
}

// Reflow reorders the rendered items of each container by rank, then the
// groups by their best member. Each element is moved to the end of its
// current parent in sorted order, so the rendered tree ends up in that
// order no matter where elements started. Ties keep their current
// relative order. Nothing moves while the filter is inactive.
func (s *Service) Reflow(view View, fs domain.FilterState, membership map[string][]string) {
	if !fs.Active {
		return
	}

	items := view.ValidItems()
	sort.SliceStable(items, func(i, j int) bool {
		return fs.Rank(items[i]) > fs.Rank(items[j])
	})
	for _, id := range items {
		view.MoveToEnd(id)
	}

	var groups []string
	best := make(map[string]float64)
	for _, g := range view.Groups() {
		if !fs.GroupVisible(g) {
			continue
		}
		max := 0.0
		for _, id := range membership[g] {
			if r := fs.Rank(id); r > max {
				max = r
			}
		}
		best[g] = max
		groups = append(groups, g)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return best[groups[i]] > best[groups[j]]
	})
	for _, g := range groups {
		view.MoveToEnd(g)
	}

	logging.Debug("sorting: reflowed", "items", len(items), "groups", len(groups))
	s.bus.Publish(ReflowedEvent{Items: items, Groups: groups})
}
