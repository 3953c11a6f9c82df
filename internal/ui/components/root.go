// Package components binds palette parts to the engine: each component
// registers itself, mounts its tree node and exposes the attributes the
// renderer and assistive tooling read.
package components

import (
	"strconv"

	"github.com/google/uuid"

	"cmdpal/internal/ui/command"
	"cmdpal/internal/ui/services/navigation"
)

// Attrs are the attributes a component exposes on its element
type Attrs map[string]string

func newID() string {
	return "cmdpal-" + uuid.NewString()
}

func boolAttr(b bool) string {
	return strconv.FormatBool(b)
}

// Root is the palette container. It owns the ids the other parts refer to.
type Root struct {
	ID string

	engine *command.Engine
	label  *Label
	list   *List
	input  *Input
}

// NewRoot creates the container for engine. An empty id is generated.
func NewRoot(engine *command.Engine, id string) *Root {
	if id == "" {
		id = newID()
	}
	r := &Root{ID: id, engine: engine}
	r.label = &Label{ID: id + "-label", root: r}
	r.list = &List{ID: id + "-list", root: r}
	r.input = &Input{ID: id + "-input", root: r}
	return r
}

// Engine returns the engine the palette is bound to
func (r *Root) Engine() *command.Engine { return r.engine }

// Label returns the palette's label
func (r *Root) Label() *Label { return r.label }

// List returns the listbox holding items and groups
func (r *Root) List() *List { return r.list }

// Input returns the search input
func (r *Root) Input() *Input { return r.input }

// HandleKey forwards a key press to the engine. It reports whether the
// input's own handling of the key must be suppressed.
func (r *Root) HandleKey(ev navigation.Event) bool {
	return r.engine.HandleKey(ev)
}

// Attrs returns the application container attributes
func (r *Root) Attrs() Attrs {
	return Attrs{
		"id":             r.ID,
		"role":           "application",
		"data-cmdk-root": "",
	}
}

// Label names the palette for the input
type Label struct {
	ID   string
	root *Root
}

// Text is the configured label
func (l *Label) Text() string {
	return l.root.engine.Config().Label
}

// Attrs ties the label to the input
func (l *Label) Attrs() Attrs {
	return Attrs{
		"id":              l.ID,
		"for":             l.root.input.ID,
		"data-cmdk-label": "",
	}
}

// List is the listbox element items and groups are rendered into
type List struct {
	ID   string
	root *Root
}

// Attrs returns the listbox attributes
func (l *List) Attrs() Attrs {
	return Attrs{
		"id":             l.ID,
		"role":           "listbox",
		"aria-label":     "Suggestions",
		"data-cmdk-list": "",
	}
}

// Input is the search box
type Input struct {
	ID   string
	root *Root
}

// SetValue is called on every edit of the input's text
func (i *Input) SetValue(text string) {
	i.root.engine.SetSearch(text)
}

// Value returns the current query
func (i *Input) Value() string {
	return i.root.engine.Search()
}

// Attrs returns the combobox attributes, including the active descendant
func (i *Input) Attrs() Attrs {
	a := Attrs{
		"id":                i.ID,
		"role":              "combobox",
		"aria-autocomplete": "list",
		"aria-expanded":     "true",
		"aria-controls":     i.root.list.ID,
		"aria-labelledby":   i.root.label.ID,
		"autocomplete":      "off",
		"spellcheck":        "false",
		"data-cmdk-input":   "",
	}
	if sel := i.root.engine.Selected(); sel != "" {
		a["aria-activedescendant"] = sel
	}
	return a
}

// Empty is shown when nothing matches the query
type Empty struct {
	root *Root
}

// NewEmpty creates the empty-state element
func NewEmpty(root *Root) *Empty {
	return &Empty{root: root}
}

// ShouldRender reports whether no item is counted as visible
func (e *Empty) ShouldRender() bool {
	return e.root.engine.State().Filtered.Count == 0
}

// Attrs returns the empty-state attributes
func (e *Empty) Attrs() Attrs {
	return Attrs{"role": "presentation", "data-cmdk-empty": ""}
}

// Separator divides parts of the list
type Separator struct {
	AlwaysRender bool
	root         *Root
}

// NewSeparator creates a separator. Unless alwaysRender is set it is
// only rendered while the query is empty.
func NewSeparator(root *Root, alwaysRender bool) *Separator {
	return &Separator{AlwaysRender: alwaysRender, root: root}
}

// ShouldRender reports whether the separator is shown
func (s *Separator) ShouldRender() bool {
	return s.AlwaysRender || s.root.engine.Search() == ""
}

// Attrs returns the separator attributes
func (s *Separator) Attrs() Attrs {
	return Attrs{"role": "separator", "data-cmdk-separator": ""}
}

// Loading reports progress while items are still arriving
type Loading struct {
	Progress int // 0..100
	Label    string
}

// Attrs returns the progressbar attributes
func (l *Loading) Attrs() Attrs {
	label := l.Label
	if label == "" {
		label = "Loading..."
	}
	return Attrs{
		"role":              "progressbar",
		"aria-valuenow":     strconv.Itoa(l.Progress),
		"aria-valuemin":     "0",
		"aria-valuemax":     "100",
		"aria-label":        label,
		"data-cmdk-loading": "",
	}
}
