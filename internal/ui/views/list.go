package views

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"cmdpal/internal/ui/services/scoring"
	"cmdpal/internal/ui/tree"
)

// Row is one visible line of the list
type Row struct {
	ID       string
	Heading  bool
	Text     string
	Depth    int
	Selected bool
	Disabled bool
}

// Rows flattens the visible part of the tree in display order. Groups
// without a heading contribute no line of their own.
func Rows(t *tree.Tree) []Row {
	var rows []Row
	t.Walk(func(n tree.Node, depth int) {
		if n.Hidden {
			return
		}
		switch n.Kind {
		case tree.KindGroup:
			if strings.TrimSpace(n.Text) == "" {
				return
			}
			rows = append(rows, Row{ID: n.ID, Heading: true, Text: n.Text, Depth: depth})
		case tree.KindItem:
			rows = append(rows, Row{
				ID:       n.ID,
				Text:     n.Text,
				Depth:    depth,
				Selected: n.Selected,
				Disabled: n.Disabled,
			})
		}
	})
	return rows
}

// Window returns the first row to draw so that target stays on screen,
// moving offset as little as possible
func Window(rows []Row, target string, offset, height int) int {
	if height <= 0 {
		return 0
	}
	for i, r := range rows {
		if r.ID != target {
			continue
		}
		if i < offset {
			offset = i
		} else if i >= offset+height {
			offset = i - height + 1
		}
		break
	}

	maxOffset := len(rows) - height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset > maxOffset {
		offset = maxOffset
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// highlightMatch renders the characters of text the query matched with
// highlightStyle and the rest with normalStyle
func highlightMatch(text, query string, highlightStyle, normalStyle lipgloss.Style) string {
	positions := scoring.Positions(text, query)
	if len(positions) == 0 {
		return normalStyle.Render(text)
	}
	matched := make(map[int]bool, len(positions))
	for _, p := range positions {
		matched[p] = true
	}

	var out strings.Builder
	var run strings.Builder
	runMatched := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if runMatched {
			out.WriteString(highlightStyle.Render(run.String()))
		} else {
			out.WriteString(normalStyle.Render(run.String()))
		}
		run.Reset()
	}

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if matched[i] != runMatched {
			flush()
			runMatched = matched[i]
		}
		run.WriteRune(r)
		i += size
	}
	flush()
	return out.String()
}
