// Package input maps terminal key presses onto palette navigation events
package input

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"cmdpal/internal/ui/services/navigation"
)

// KeyMap holds the palette's key bindings
type KeyMap struct {
	Next      key.Binding
	Prev      key.Binding
	NextGroup key.Binding
	PrevGroup key.Binding
	Last      key.Binding
	First     key.Binding
	Home      key.Binding
	End       key.Binding
	Confirm   key.Binding
	Vim       key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the standard bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "previous"),
		),
		NextGroup: key.NewBinding(
			key.WithKeys("alt+down"),
			key.WithHelp("alt+↓", "next group"),
		),
		PrevGroup: key.NewBinding(
			key.WithKeys("alt+up"),
			key.WithHelp("alt+↑", "previous group"),
		),
		Last: key.NewBinding(
			key.WithKeys("ctrl+down", "shift+down"),
			key.WithHelp("ctrl+↓", "last item"),
		),
		First: key.NewBinding(
			key.WithKeys("ctrl+up", "shift+up"),
			key.WithHelp("ctrl+↑", "first item"),
		),
		Home: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("home", "first item"),
		),
		End: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("end", "last item"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "run"),
		),
		Vim: key.NewBinding(
			key.WithKeys("ctrl+n", "ctrl+j", "ctrl+p", "ctrl+k"),
			key.WithHelp("ctrl+n/p", "next/previous"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Confirm, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Vim},
		{k.NextGroup, k.PrevGroup},
		{k.Home, k.End, k.First, k.Last},
		{k.Confirm, k.Help, k.Quit},
	}
}

// Translate maps a key press onto a navigation event. Keys the palette
// does not bind yield KeyNone and belong to the text input.
func (k KeyMap) Translate(msg tea.KeyMsg) navigation.Event {
	switch {
	case key.Matches(msg, k.NextGroup):
		return navigation.Event{Key: navigation.KeyNext, Group: true}
	case key.Matches(msg, k.PrevGroup):
		return navigation.Event{Key: navigation.KeyPrev, Group: true}
	case key.Matches(msg, k.Last):
		return navigation.Event{Key: navigation.KeyNext, End: true}
	case key.Matches(msg, k.First):
		return navigation.Event{Key: navigation.KeyPrev, End: true}
	case key.Matches(msg, k.Next):
		return navigation.Event{Key: navigation.KeyNext}
	case key.Matches(msg, k.Prev):
		return navigation.Event{Key: navigation.KeyPrev}
	case key.Matches(msg, k.Home):
		return navigation.Event{Key: navigation.KeyHome}
	case key.Matches(msg, k.End):
		return navigation.Event{Key: navigation.KeyEnd}
	case key.Matches(msg, k.Confirm):
		return navigation.Event{Key: navigation.KeyConfirm}
	case key.Matches(msg, k.Vim):
		// "ctrl+n" -> 'n'; the navigation service decides whether it binds
		s := msg.String()
		return navigation.Event{Key: navigation.KeyRune, Rune: rune(s[len(s)-1]), Ctrl: true}
	}
	return navigation.Event{Key: navigation.KeyNone}
}
