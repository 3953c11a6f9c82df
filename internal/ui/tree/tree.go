// Package tree holds the rendered palette: an ordered node tree that the
// renderer draws from and that ordering and navigation read back. It is
// the only source of display order; reflow mutates it in place.
package tree

import (
	"sync"
)

// Kind identifies what a node renders
type Kind int

const (
	KindList Kind = iota
	KindGroup
	KindGroupItems
	KindItem
)

// Node is a rendered element
type Node struct {
	ID       string
	Kind     Kind
	Text     string // display text; for groups, the heading
	Hidden   bool
	Disabled bool
	Selected bool

	group    string // group an item belongs to, mounted or not
	parent   *Node
	children []*Node
	onClick  func()
	onHover  func()
}

// snapshot copies the exported fields
func (n *Node) snapshot() Node {
	return Node{ID: n.ID, Kind: n.Kind, Text: n.Text, Hidden: n.Hidden, Disabled: n.Disabled, Selected: n.Selected}
}

// Tree is the ordered view of a mounted palette. Unknown ids are ignored
// by every mutating method since mount order is not guaranteed.
type Tree struct {
	mu     sync.RWMutex
	root   *Node
	nodes  map[string]*Node
	scroll string
}

// New creates a tree with an empty list container
func New() *Tree {
	root := &Node{Kind: KindList}
	return &Tree{
		root:  root,
		nodes: make(map[string]*Node),
	}
}

func itemsKey(groupID string) string { return groupID + "\x00items" }

// MountGroup appends a group and its items container to the list
func (t *Tree) MountGroup(id, heading string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.nodes[id]; ok {
		return
	}
	g := &Node{ID: id, Kind: KindGroup, Text: heading}
	items := &Node{ID: itemsKey(id), Kind: KindGroupItems}
	appendChild(g, items)
	appendChild(t.root, g)
	t.nodes[id] = g
	t.nodes[items.ID] = items

	// items mounted ahead of their group move in, keeping display order
	var waiting []*Node
	walk(t.root, 0, func(n *Node, _ int) {
		if n.Kind == KindItem && n.group == id && n.parent != items {
			waiting = append(waiting, n)
		}
	})
	for _, n := range waiting {
		detach(n)
		appendChild(items, n)
	}
}

// MountItem appends an item to its group's items container, or to the
// list when it is ungrouped. An item whose group is not mounted yet
// waits in the list and moves into the group once MountGroup runs.
func (t *Tree) MountItem(id, groupID, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.nodes[id]; ok {
		return
	}
	parent := t.root
	if groupID != "" {
		if c, ok := t.nodes[itemsKey(groupID)]; ok {
			parent = c
		}
	}
	n := &Node{ID: id, Kind: KindItem, Text: text, group: groupID}
	appendChild(parent, n)
	t.nodes[id] = n
}

// Unmount removes a node and everything below it. Items of an unmounted
// group stay mounted: they return to the list until the group comes back.
func (t *Tree) Unmount(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[id]
	if !ok {
		return
	}
	if n.Kind == KindGroup {
		var members []*Node
		walk(n, 0, func(c *Node, _ int) {
			if c.Kind == KindItem {
				members = append(members, c)
			}
		})
		for _, c := range members {
			detach(c)
			appendChild(t.root, c)
		}
	}
	detach(n)
	t.forget(n)
}

func (t *Tree) forget(n *Node) {
	delete(t.nodes, n.ID)
	for _, c := range n.children {
		t.forget(c)
	}
}

// Lookup returns a copy of the node's fields
func (t *Tree) Lookup(id string) (Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n, ok := t.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.snapshot(), true
}

// SetText updates the display text
func (t *Tree) SetText(id, text string) {
	t.update(id, func(n *Node) { n.Text = text })
}

// SetHidden toggles the hidden attribute
func (t *Tree) SetHidden(id string, hidden bool) {
	t.update(id, func(n *Node) { n.Hidden = hidden })
}

// SetDisabled toggles the disabled attribute
func (t *Tree) SetDisabled(id string, disabled bool) {
	t.update(id, func(n *Node) { n.Disabled = disabled })
}

// MarkSelected flags id as the selected item and clears every other item
func (t *Tree) MarkSelected(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, n := range t.nodes {
		if n.Kind == KindItem {
			n.Selected = n.ID == id
		}
	}
}

// OnClick installs the handler Click invokes
func (t *Tree) OnClick(id string, fn func()) {
	t.update(id, func(n *Node) { n.onClick = fn })
}

// OnHover installs the handler Hover invokes
func (t *Tree) OnHover(id string, fn func()) {
	t.update(id, func(n *Node) { n.onHover = fn })
}

// Click invokes the node's click handler. Reports false if there is none.
func (t *Tree) Click(id string) bool {
	return t.fire(id, func(n *Node) func() { return n.onClick })
}

// Hover invokes the node's pointer-move handler
func (t *Tree) Hover(id string) bool {
	return t.fire(id, func(n *Node) func() { return n.onHover })
}

func (t *Tree) fire(id string, pick func(*Node) func()) bool {
	t.mu.RLock()
	n, ok := t.nodes[id]
	var fn func()
	if ok {
		fn = pick(n)
	}
	t.mu.RUnlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

func (t *Tree) update(id string, fn func(*Node)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n, ok := t.nodes[id]; ok {
		fn(n)
	}
}

// MoveToEnd makes the node the last child of its current parent
func (t *Tree) MoveToEnd(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[id]
	if !ok || n.parent == nil {
		return
	}
	parent := n.parent
	detach(n)
	appendChild(parent, n)
}

// ValidItems returns selectable item ids in display order: items that
// are not disabled and have no hidden node on their path to the list.
func (t *Tree) ValidItems() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return validUnder(t.root, nil)
}

// GroupValidItems returns the valid items of a single group
func (t *Tree) GroupValidItems(groupID string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	g, ok := t.nodes[groupID]
	if !ok || g.Kind != KindGroup || g.Hidden {
		return nil
	}
	return validUnder(g, nil)
}

func validUnder(n *Node, out []string) []string {
	for _, c := range n.children {
		if c.Hidden {
			continue
		}
		if c.Kind == KindItem {
			if !c.Disabled {
				out = append(out, c.ID)
			}
			continue
		}
		out = validUnder(c, out)
	}
	return out
}

// Items returns every mounted item id in display order, hidden or not
func (t *Tree) Items() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []string
	walk(t.root, 0, func(n *Node, _ int) {
		if n.Kind == KindItem {
			out = append(out, n.ID)
		}
	})
	return out
}

// Groups returns every mounted group id in display order
func (t *Tree) Groups() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []string
	walk(t.root, 0, func(n *Node, _ int) {
		if n.Kind == KindGroup {
			out = append(out, n.ID)
		}
	})
	return out
}

// GroupOf returns the group an item is rendered in, "" if none
func (t *Tree) GroupOf(itemID string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n, ok := t.nodes[itemID]
	if !ok {
		return ""
	}
	for p := n.parent; p != nil; p = p.parent {
		if p.Kind == KindGroup {
			return p.ID
		}
	}
	return ""
}

type visit struct {
	node  Node
	depth int
}

// Walk visits every node below the list in display order. Group items
// containers are not reported; their children appear one level below
// the group. Hidden is reported as effective visibility.
func (t *Tree) Walk(fn func(n Node, depth int)) {
	t.mu.RLock()
	var visited []visit
	walk(t.root, 0, func(n *Node, depth int) {
		if n.Kind == KindGroupItems {
			return
		}
		s := n.snapshot()
		s.Hidden = n.Hidden || hiddenAncestor(n)
		visited = append(visited, visit{node: s, depth: depth})
	})
	t.mu.RUnlock()

	// fn may call back into the tree
	for _, v := range visited {
		fn(v.node, v.depth)
	}
}

func hiddenAncestor(n *Node) bool {
	for p := n.parent; p != nil; p = p.parent {
		if p.Hidden {
			return true
		}
	}
	return false
}

func walk(n *Node, depth int, fn func(*Node, int)) {
	for _, c := range n.children {
		fn(c, depth)
		next := depth
		if c.Kind == KindGroup {
			next++
		}
		walk(c, next, fn)
	}
}

// ScrollIntoView records the node the renderer should bring on screen
func (t *Tree) ScrollIntoView(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.nodes[id]; ok {
		t.scroll = id
	}
}

// ScrollTarget returns the node most recently scrolled into view
func (t *Tree) ScrollTarget() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.scroll
}

func appendChild(parent, n *Node) {
	n.parent = parent
	parent.children = append(parent.children, n)
}

func detach(n *Node) {
	p := n.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}
