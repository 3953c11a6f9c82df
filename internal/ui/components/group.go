package components

import (
	"strings"

	"cmdpal/internal/domain"
)

// GroupOptions describe a group when it is mounted
type GroupOptions struct {
	ID           string // generated when empty
	Heading      string
	Value        string // overrides the heading as the group's value
	ForceVisible bool
}

// Group is a labelled section of the list. It must be created before the
// items that belong to it.
type Group struct {
	ID        string
	HeadingID string

	root    *Root
	opts    GroupOptions
	dispose func()
}

// NewGroup registers and mounts a group
func NewGroup(root *Root, opts GroupOptions) *Group {
	if opts.ID == "" {
		opts.ID = newID()
	}
	g := &Group{
		ID:        opts.ID,
		HeadingID: opts.ID + "-heading",
		root:      root,
		opts:      opts,
	}
	g.dispose = root.engine.RegisterGroup(g.ID)
	g.sync()
	return g
}

func (g *Group) sync() {
	g.root.engine.SetGroup(g.ID, g.opts.Heading, g.opts.Value, g.opts.ForceVisible)
}

// SetHeading changes the heading text
func (g *Group) SetHeading(heading string) {
	g.opts.Heading = heading
	g.sync()
}

// SetForceVisible toggles rendering regardless of the filter
func (g *Group) SetForceVisible(on bool) {
	g.opts.ForceVisible = on
	g.sync()
}

// Close unmounts the group. Its items stay mounted, ungrouped, until
// their owners close them.
func (g *Group) Close() {
	if g.dispose != nil {
		g.dispose()
		g.dispose = nil
	}
}

// ShouldRender reports whether the group is shown under the current filter
func (g *Group) ShouldRender() bool {
	return g.root.engine.ShouldRenderGroup(g.ID)
}

// Value is the explicit value, else the heading, else the group's text
func (g *Group) Value() string {
	grp, ok := g.root.engine.Registry().Group(g.ID)
	if !ok {
		return ""
	}
	return grp.EffectiveValue(g.textContent())
}

func (g *Group) textContent() string {
	view := g.root.engine.View()
	var parts []string
	for _, id := range g.root.engine.Registry().Members(g.ID) {
		if n, ok := view.Lookup(id); ok && n.Text != "" {
			parts = append(parts, n.Text)
		}
	}
	return strings.Join(parts, " ")
}

// Attrs returns the group wrapper attributes
func (g *Group) Attrs() Attrs {
	a := Attrs{
		"id":              g.ID,
		"role":            "presentation",
		"data-value":      g.Value(),
		"data-cmdk-group": "",
	}
	if !g.ShouldRender() {
		a["hidden"] = "true"
	}
	return a
}

// HeadingAttrs returns the heading attributes
func (g *Group) HeadingAttrs() Attrs {
	return Attrs{
		"id":                      g.HeadingID,
		"aria-hidden":             "true",
		"data-cmdk-group-heading": "",
	}
}

// ItemsAttrs labels the items container with the heading when there is one
func (g *Group) ItemsAttrs() Attrs {
	a := Attrs{
		"role":                  "group",
		"data-cmdk-group-items": "",
	}
	if domain.Normalize(g.opts.Heading) != "" {
		a["aria-labelledby"] = g.HeadingID
	}
	return a
}
