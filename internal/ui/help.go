package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"
	"github.com/noborus/ov/oviewer"

	"cmdpal/internal/ui/input"
	"cmdpal/internal/ui/services/scoring"
)

// helpPagerMsg contains the result of a help pager command
type helpPagerMsg struct {
	err error
}

// HelpRenderer handles help content rendering
type HelpRenderer struct {
	keys input.KeyMap
}

// NewHelpRenderer creates a new help renderer
func NewHelpRenderer(keys input.KeyMap) *HelpRenderer {
	return &HelpRenderer{keys: keys}
}

// RenderHelpContentPlain generates help content with colors for the pager
func (r *HelpRenderer) RenderHelpContentPlain(title string) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220"))

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	var help strings.Builder
	line := func(b key.Binding) {
		h := b.Help()
		help.WriteString("  " + keyStyle.Width(12).Render(h.Key) + " " + descStyle.Render(h.Desc) + "\n")
	}

	help.WriteString(titleStyle.Render(title + " Help"))
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Navigation"))
	help.WriteString("\n")
	line(r.keys.Next)
	line(r.keys.Prev)
	line(r.keys.Vim)
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Groups"))
	help.WriteString("\n")
	line(r.keys.NextGroup)
	line(r.keys.PrevGroup)
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Jump"))
	help.WriteString("\n")
	line(r.keys.Home)
	line(r.keys.End)
	line(r.keys.First)
	line(r.keys.Last)
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Search"))
	help.WriteString("\n")
	help.WriteString(descStyle.Render("  Type to filter. Matches are ranked best first; groups follow their best match."))
	help.WriteString("\n")
	filterStyle := lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241"))
	help.WriteString(filterStyle.Render("  Scorers: " + strings.Join(scoring.Names(), ", ")))
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Other"))
	help.WriteString("\n")
	line(r.keys.Confirm)
	line(r.keys.Help)
	line(r.keys.Quit)

	return help.String()
}

// HelpOps handles help operations
type HelpOps struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
}

// NewHelpOps creates a new help operations instance
func NewHelpOps(program *tea.Program) *HelpOps {
	return &HelpOps{
		program: program,
	}
}

// ShowHelpInPager shows help content using ov pager
func (h *HelpOps) ShowHelpInPager(helpContent string) error {
	if h.program == nil {
		return errors.New("program not set")
	}

	// Release terminal control to run ov
	if err := h.program.ReleaseTerminal(); err != nil {
		return errors.Wrap(err, "failed to release terminal")
	}

	defer func() {
		// give ov time to exit before taking the terminal back
		time.Sleep(100 * time.Millisecond)
		_ = h.program.RestoreTerminal()
	}()

	return ShowInPager(helpContent)
}

// ShowInPager pages content with ov on the current terminal
func ShowInPager(content string) error {
	root, err := oviewer.NewRoot(strings.NewReader(content))
	if err != nil {
		return errors.Wrap(err, "failed to start pager")
	}

	// Configure ov to not write on exit (to avoid messing with our screen)
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	configureVimKeyBindings(&config)
	root.SetConfig(config)

	return root.Run()
}

// configureVimKeyBindings adds j/k/g/G navigation to the pager defaults
func configureVimKeyBindings(config *oviewer.Config) {
	if config.Keybind == nil {
		config.Keybind = make(map[string][]string)
	}
	config.Keybind["down"] = []string{"Enter", "Down", "ctrl+N", "j"}
	config.Keybind["up"] = []string{"Up", "ctrl+P", "k"}
	config.Keybind["top"] = []string{"Home", "g"}
	config.Keybind["bottom"] = []string{"End", "G"}
	config.Keybind["exit"] = []string{"Escape", "q", "?"}
}

func (m *Model) showHelp() tea.Cmd {
	content := NewHelpRenderer(m.keys).RenderHelpContentPlain(m.label())
	ops := NewHelpOps(m.program)
	return func() tea.Msg {
		return helpPagerMsg{err: ops.ShowHelpInPager(content)}
	}
}
