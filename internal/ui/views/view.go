package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width         int
	Height        int
	Label         string
	Input         string // the rendered text input
	ShowSeparator bool
	Rows          []Row
	Query         string
	ScrollTarget  string
	Offset        int
	Count         int
	Total         int
	Empty         bool
	Loading       string // non-empty while entries are still being mounted
	Help          string
}

// Layout reports where the list landed on screen so pointer events can
// be mapped back to rows
type Layout struct {
	ListTop int      // screen line of the first drawn row
	Visible []string // ids of the drawn rows, top to bottom
	Offset  int      // index of the first drawn row
}

// RowAt returns the id drawn on screen line y, "" if none
func (l Layout) RowAt(y int) string {
	i := y - l.ListTop
	if i < 0 || i >= len(l.Visible) {
		return ""
	}
	return l.Visible[i]
}

// Renderer handles all view rendering
type Renderer struct {
	styles *Styles
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	return &Renderer{styles: NewStyles()}
}

// chrome is the number of lines around the list: padding, title, input,
// separator, the footer and its spacing
const chrome = 8

// Render produces the complete view
func (r *Renderer) Render(state ViewState) (string, Layout) {
	var lines []string

	title := r.styles.Title.Render(state.Label)
	if state.Loading != "" {
		title += "  " + r.styles.Loading.Render(state.Loading)
	} else if state.Total > 0 {
		title += "  " + r.styles.Count.Render(fmt.Sprintf("%d/%d", state.Count, state.Total))
	}
	lines = append(lines, title)
	lines = append(lines, r.styles.Prompt.Render("> ")+state.Input)

	width := state.Width - 4
	if width < 10 {
		width = 10
	}
	if state.ShowSeparator {
		lines = append(lines, r.styles.Separator.Render(strings.Repeat("─", width)))
	} else {
		lines = append(lines, "")
	}

	// force-visible rows can still follow the empty notice
	if state.Empty && state.Loading == "" {
		lines = append(lines, r.styles.Empty.Render("No results found."))
	}

	layout := Layout{ListTop: len(lines) + 1} // +1 for the top padding

	listHeight := state.Height - chrome
	if listHeight < 3 {
		listHeight = 3
	}

	offset := Window(state.Rows, state.ScrollTarget, state.Offset, listHeight)
	layout.Offset = offset
	end := offset + listHeight
	if end > len(state.Rows) {
		end = len(state.Rows)
	}
	if offset > 0 {
		lines = append(lines, r.styles.Scroll.Render("↑ (more above)"))
		layout.ListTop++
	}
	for _, row := range state.Rows[offset:end] {
		lines = append(lines, r.renderRow(row, state.Query, width))
		layout.Visible = append(layout.Visible, row.ID)
	}
	if end < len(state.Rows) {
		lines = append(lines, r.styles.Scroll.Render("↓ (more below)"))
	}

	if state.Help != "" {
		lines = append(lines, "", r.styles.Help.Render(state.Help))
	}

	return r.styles.Main.Render(strings.Join(lines, "\n")), layout
}

func (r *Renderer) renderRow(row Row, query string, width int) string {
	indent := strings.Repeat("  ", row.Depth)
	if row.Heading {
		return indent + r.styles.Heading.Render(row.Text)
	}

	base := r.styles.Item
	switch {
	case row.Disabled:
		base = r.styles.Disabled
	case row.Selected:
		base = r.styles.Selected
	}

	marker := "  "
	if row.Selected {
		marker = "▸ "
	}
	text := row.Text
	if query != "" && !row.Disabled {
		text = highlightMatch(text, query, r.styles.Highlight.Inherit(base), base)
	} else {
		text = base.Render(text)
	}

	line := indent + marker + text
	if row.Selected {
		if pad := width - lipgloss.Width(line); pad > 0 {
			line += base.Render(strings.Repeat(" ", pad))
		}
	}
	return line
}
