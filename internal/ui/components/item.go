package components

import (
	"slices"

	"cmdpal/internal/domain"
	"cmdpal/internal/ui/services/selection"
)

// ItemOptions describe an item when it is mounted
type ItemOptions struct {
	ID           string // generated when empty
	GroupID      string
	Text         string
	Value        string // defaults to the normalized text
	Keywords     []string
	Disabled     bool
	ForceVisible bool
	OnSelect     func(value string)
}

// Item is a selectable entry
type Item struct {
	ID string

	root    *Root
	opts    ItemOptions
	dispose func()
}

// NewItem registers and mounts an item
func NewItem(root *Root, opts ItemOptions) *Item {
	if opts.ID == "" {
		opts.ID = newID()
	}
	it := &Item{ID: opts.ID, root: root, opts: opts}

	e := root.engine
	it.dispose = e.RegisterItem(it.ID, opts.GroupID)
	e.View().SetText(it.ID, opts.Text)
	e.View().OnClick(it.ID, it.Select)
	e.View().OnHover(it.ID, it.Hover)
	e.SetValue(it.ID, it.Value(), opts.Keywords)
	if opts.Disabled || opts.ForceVisible {
		e.SetItemFlags(it.ID, opts.Disabled, opts.ForceVisible)
	}
	return it
}

// Value is the string the item is matched by
func (it *Item) Value() string {
	if it.opts.Value != "" {
		return it.opts.Value
	}
	return domain.Normalize(it.opts.Text)
}

// Text is the displayed text
func (it *Item) Text() string { return it.opts.Text }

// SetText changes the displayed text, and the value when none was given
func (it *Item) SetText(text string) {
	it.opts.Text = text
	it.root.engine.View().SetText(it.ID, text)
	it.root.engine.SetValue(it.ID, it.Value(), it.opts.Keywords)
}

// SetValue changes the value and keywords the item is matched by
func (it *Item) SetValue(value string, keywords []string) {
	it.opts.Value = value
	it.opts.Keywords = slices.Clone(keywords)
	it.root.engine.SetValue(it.ID, it.Value(), it.opts.Keywords)
}

// SetDisabled toggles whether the item can be selected
func (it *Item) SetDisabled(disabled bool) {
	it.opts.Disabled = disabled
	it.root.engine.SetItemFlags(it.ID, disabled, it.opts.ForceVisible)
}

// Select is the click handler: selects the item and reports it chosen
func (it *Item) Select() {
	if it.opts.Disabled {
		return
	}
	it.root.engine.SetSelected(it.ID, selection.Options{SkipScroll: true})
	if it.opts.OnSelect != nil {
		it.opts.OnSelect(it.Value())
	}
}

// Hover is the pointer-move handler
func (it *Item) Hover() {
	if it.opts.Disabled || it.root.engine.Config().DisablePointerSelection {
		return
	}
	it.root.engine.SetSelected(it.ID, selection.Options{SkipScroll: true})
}

// Close unmounts the item
func (it *Item) Close() {
	if it.dispose != nil {
		it.dispose()
		it.dispose = nil
	}
}

// Selected reports whether the item holds the selection
func (it *Item) Selected() bool {
	return it.root.engine.Selected() == it.ID
}

// ShouldRender reports whether the item is shown under the current filter
func (it *Item) ShouldRender() bool {
	return it.root.engine.ShouldRenderItem(it.ID)
}

// Attrs returns the option attributes
func (it *Item) Attrs() Attrs {
	a := Attrs{
		"id":             it.ID,
		"role":           "option",
		"aria-selected":  boolAttr(it.Selected()),
		"aria-disabled":  boolAttr(it.opts.Disabled),
		"data-selected":  boolAttr(it.Selected()),
		"data-disabled":  boolAttr(it.opts.Disabled),
		"data-value":     it.Value(),
		"data-cmdk-item": "",
	}
	if !it.ShouldRender() {
		a["hidden"] = "true"
	}
	return a
}
