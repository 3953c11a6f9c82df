package views

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title     lipgloss.Style
	Count     lipgloss.Style
	Prompt    lipgloss.Style
	Separator lipgloss.Style
	Heading   lipgloss.Style
	Item      lipgloss.Style
	Selected  lipgloss.Style
	Disabled  lipgloss.Style
	Highlight lipgloss.Style
	Empty     lipgloss.Style
	Loading   lipgloss.Style
	Scroll    lipgloss.Style
	Help      lipgloss.Style
	Main      lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Count:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Prompt:    lipgloss.NewStyle().Foreground(lipgloss.Color("99")),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		Heading: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")),
		Item:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Selected:  lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")),
		Disabled:  lipgloss.NewStyle().Faint(true),
		Highlight: lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		Empty:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Loading:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		Scroll:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Help:      lipgloss.NewStyle().Faint(true),
		Main:      lipgloss.NewStyle().Padding(1, 2),
	}
}
