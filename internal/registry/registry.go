package registry

import (
	"slices"
	"sync"

	"cmdpal/internal/domain"
)

// Reader is the read side of the registry used by the filter and ordering engines
type Reader interface {
	ItemIDs() []string
	GroupIDs() []string
	Item(id string) (domain.Item, bool)
	Group(id string) (domain.Group, bool)
	Members(groupID string) []string
	Membership() map[string][]string
	Len() int
}

// Registry tracks every item and group currently mounted in a palette
type Registry interface {
	Reader
	RegisterItem(id, groupID string) func()
	RegisterGroup(id string) func()
	SetValue(id, value string, keywords []string) bool
	SetItemFlags(id string, disabled, forceVisible bool) bool
	SetGroup(id, heading, value string, forceVisible bool)
}

// Memory is an in-memory Registry. Items and groups keep registration order.
type Memory struct {
	mu      sync.RWMutex
	items   map[string]*domain.Item
	order   []string
	groups  map[string]*domain.Group
	gorder  []string
	members map[string][]string
}

// NewMemory creates an empty registry
func NewMemory() *Memory {
	return &Memory{
		items:   make(map[string]*domain.Item),
		groups:  make(map[string]*domain.Group),
		members: make(map[string][]string),
	}
}

// RegisterItem adds an item, optionally as a member of groupID, and
// returns its disposer. Registering an id twice replaces the earlier
// entry; the caller is expected to keep ids unique.
func (m *Memory) RegisterItem(id, groupID string) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.items[id]; ok {
		m.removeMember(old.GroupID, id)
	} else {
		m.order = append(m.order, id)
	}
	m.items[id] = &domain.Item{ID: id, GroupID: groupID}
	if groupID != "" {
		m.members[groupID] = append(m.members[groupID], id)
	}

	var once sync.Once
	return func() {
		once.Do(func() { m.removeItem(id) })
	}
}

func (m *Memory) removeItem(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return
	}
	m.removeMember(item.GroupID, id)
	delete(m.items, id)
	m.order = without(m.order, id)
}

// removeMember must be called with the lock held
func (m *Memory) removeMember(groupID, id string) {
	if groupID == "" {
		return
	}
	if ids, ok := m.members[groupID]; ok {
		m.members[groupID] = without(ids, id)
	}
}

// RegisterGroup ensures a group and its membership entry exist. A newly
// created group picks up every registered item that names it. The
// disposer removes the group and its membership entry only; member items
// stay registered.
func (m *Memory) RegisterGroup(id string) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.groups[id]; !ok {
		m.groups[id] = &domain.Group{ID: id}
		m.gorder = append(m.gorder, id)

		var ids []string
		for _, itemID := range m.order {
			if m.items[itemID].GroupID == id {
				ids = append(ids, itemID)
			}
		}
		m.members[id] = ids
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.groups, id)
			delete(m.members, id)
			m.gorder = without(m.gorder, id)
		})
	}
}

// SetValue stores the value and keywords of an item. It reports false
// and changes nothing when both are unchanged or the item is unknown.
func (m *Memory) SetValue(id, value string, keywords []string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return false
	}
	if item.Value == value && slices.Equal(item.Keywords, keywords) {
		return false
	}
	item.Value = value
	item.Keywords = append([]string(nil), keywords...)
	return true
}

// SetItemFlags updates the disabled and force-visible flags of an item
func (m *Memory) SetItemFlags(id string, disabled, forceVisible bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok || (item.Disabled == disabled && item.ForceVisible == forceVisible) {
		return false
	}
	item.Disabled = disabled
	item.ForceVisible = forceVisible
	return true
}

// SetGroup updates the descriptive fields of a registered group
func (m *Memory) SetGroup(id, heading, value string, forceVisible bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if g, ok := m.groups[id]; ok {
		g.Heading = heading
		g.ExplicitValue = value
		g.ForceVisible = forceVisible
	}
}

// Item returns a copy of the item
func (m *Memory) Item(id string) (domain.Item, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[id]
	if !ok {
		return domain.Item{}, false
	}
	out := *item
	out.Keywords = append([]string(nil), item.Keywords...)
	return out, true
}

// Group returns a copy of the group
func (m *Memory) Group(id string) (domain.Group, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.groups[id]
	if !ok {
		return domain.Group{}, false
	}
	return *g, true
}

// ItemIDs returns item ids in registration order
func (m *Memory) ItemIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.order...)
}

// GroupIDs returns group ids in registration order
func (m *Memory) GroupIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.gorder...)
}

// Members returns the item ids of a group
func (m *Memory) Members(groupID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.members[groupID]...)
}

// Membership returns a copy of the whole group -> items map
func (m *Memory) Membership() map[string][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string][]string, len(m.members))
	for g, ids := range m.members {
		out[g] = append([]string(nil), ids...)
	}
	return out
}

// Len returns the number of registered items
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

func without(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
