package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Item represents a selectable palette entry
type Item struct {
	ID           string
	Value        string
	Keywords     []string
	GroupID      string // group it belongs to ("" if ungrouped)
	Disabled     bool
	ForceVisible bool // rendered regardless of the active filter
}

// Group represents a labelled section of the palette
type Group struct {
	ID            string
	Heading       string
	ExplicitValue string
	ForceVisible  bool
}

// EffectiveValue returns the value the group exposes to the host: the
// explicit value, else the normalized heading, else the normalized text
// content of the rendered group.
func (g Group) EffectiveValue(text string) string {
	if g.ExplicitValue != "" {
		return g.ExplicitValue
	}
	if h := Normalize(g.Heading); h != "" {
		return h
	}
	return Normalize(text)
}

// FilterState is the result of the most recent filter computation.
// When Active is false the palette is in browse mode: every item and
// group is visible and Ranks is empty.
type FilterState struct {
	Active        bool
	Ranks         map[string]float64
	VisibleGroups map[string]struct{}
	Count         int
}

// NewFilterState returns an empty browse-mode filter state
func NewFilterState() FilterState {
	return FilterState{
		Ranks:         make(map[string]float64),
		VisibleGroups: make(map[string]struct{}),
	}
}

// Rank returns the rank recorded for an item, 0 if none
func (f FilterState) Rank(id string) float64 {
	return f.Ranks[id]
}

// ItemVisible reports whether the filter lets the item through
func (f FilterState) ItemVisible(id string) bool {
	if !f.Active {
		return true
	}
	return f.Ranks[id] > 0
}

// GroupVisible reports whether the filter lets the group through
func (f FilterState) GroupVisible(id string) bool {
	if !f.Active {
		return true
	}
	_, ok := f.VisibleGroups[id]
	return ok
}

// Clone deep-copies the maps so a snapshot cannot be mutated by later recomputes
func (f FilterState) Clone() FilterState {
	out := FilterState{
		Active:        f.Active,
		Count:         f.Count,
		Ranks:         make(map[string]float64, len(f.Ranks)),
		VisibleGroups: make(map[string]struct{}, len(f.VisibleGroups)),
	}
	for k, v := range f.Ranks {
		out.Ranks[k] = v
	}
	for k := range f.VisibleGroups {
		out.VisibleGroups[k] = struct{}{}
	}
	return out
}

// State is the snapshot published to subscribers after each mutation batch
type State struct {
	Search   string
	Selected string // "" when nothing is selected
	Filtered FilterState
}

// Clone returns an independent copy of the snapshot
func (s State) Clone() State {
	return State{
		Search:   s.Search,
		Selected: s.Selected,
		Filtered: s.Filtered.Clone(),
	}
}

// ScoreFunc ranks a candidate against a query. Zero means no match.
type ScoreFunc func(candidate, query string, keywords []string) float64

// RootConfig holds the per-palette behavior switches
type RootConfig struct {
	Label                   string
	ShouldFilter            bool
	Loop                    bool
	VimBindings             bool
	DisablePointerSelection bool
	Score                   ScoreFunc
}

// DefaultRootConfig returns the configuration a palette starts with
func DefaultRootConfig() RootConfig {
	return RootConfig{
		ShouldFilter: true,
		VimBindings:  true,
	}
}

// Normalize trims surrounding whitespace and lower-cases the string.
// A Caser holds state, so each call gets its own.
func Normalize(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}
