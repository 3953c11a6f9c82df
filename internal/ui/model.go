package ui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"cmdpal/internal/config"
	"cmdpal/internal/eventbus"
	"cmdpal/internal/logging"
	"cmdpal/internal/ui/command"
	"cmdpal/internal/ui/components"
	"cmdpal/internal/ui/input"
	"cmdpal/internal/ui/services/navigation"
	"cmdpal/internal/ui/views"
)

// Model is the Bubble Tea host of one palette
type Model struct {
	bus    eventbus.EventBus
	config *config.Config

	engine  *command.Engine
	root    *components.Root
	empty   *components.Empty
	sep     *components.Separator
	loading *components.Loading
	items   map[string]config.ItemConfig // by item id

	width     int
	height    int
	textInput textinput.Model
	keys      input.KeyMap
	help      help.Model
	renderer  *views.Renderer
	layout    views.Layout
	offset    int

	flushQueued  bool
	ready        bool
	lastSelected string
	chosen       *ChosenMsg
	quitting     bool

	// Program reference for terminal management
	program *tea.Program
}

// NewModel creates a palette from cfg and mounts its groups and items
func NewModel(bus eventbus.EventBus, cfg *config.Config) (*Model, error) {
	rc, err := cfg.Palette.RootConfig()
	if err != nil {
		return nil, err
	}

	m := &Model{
		bus:      bus,
		config:   cfg,
		items:    make(map[string]config.ItemConfig, len(cfg.Items)),
		keys:     input.DefaultKeyMap(),
		help:     help.New(),
		renderer: views.NewRenderer(),
		loading:  &components.Loading{},
	}
	m.engine = command.New(rc,
		command.WithFlushRequester(func() { m.flushQueued = true }),
		command.WithValueChange(m.onValueChange),
	)
	m.root = components.NewRoot(m.engine, "")
	m.empty = components.NewEmpty(m.root)
	m.sep = components.NewSeparator(m.root, false)

	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = cfg.Palette.Placeholder
	ti.Focus()
	m.textInput = ti

	m.mount()
	return m, nil
}

func (m *Model) mount() {
	for _, g := range m.config.Groups {
		components.NewGroup(m.root, components.GroupOptions{
			ID:           g.ID,
			Heading:      g.Heading,
			Value:        g.Value,
			ForceVisible: g.ForceVisible,
		})
	}
	for _, ic := range m.config.Items {
		ic := ic
		var it *components.Item
		it = components.NewItem(m.root, components.ItemOptions{
			ID:           ic.ID,
			GroupID:      ic.Group,
			Text:         ic.Text,
			Value:        ic.Value,
			Keywords:     ic.Keywords,
			Disabled:     ic.Disabled,
			ForceVisible: ic.ForceVisible,
			OnSelect:     func(string) { m.choose(it.ID, ic) },
		})
		m.items[it.ID] = ic
	}
	logging.Debug("ui: palette mounted", "items", len(m.config.Items), "groups", len(m.config.Groups))
}

// SetProgram hands the model its program so the help pager can take over the terminal
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
}

// Engine returns the palette engine
func (m *Model) Engine() *command.Engine {
	return m.engine
}

// Chosen returns the item the user confirmed, if any
func (m *Model) Chosen() (ChosenMsg, bool) {
	if m.chosen == nil {
		return ChosenMsg{}, false
	}
	return *m.chosen, true
}

func (m *Model) label() string {
	if m.config.Palette.Label != "" {
		return m.config.Palette.Label
	}
	return "cmdpal"
}

func (m *Model) choose(id string, ic config.ItemConfig) {
	m.chosen = &ChosenMsg{ID: id, Output: ic.Output()}
	m.quitting = true
	logging.Info("ui: command chosen", "id", id, "output", m.chosen.Output)
	if m.bus != nil {
		m.bus.Publish(eventbus.CommandChosenEvent{ItemID: id, Value: m.chosen.Output})
	}
}

func (m *Model) onValueChange(id string) {
	if m.bus != nil {
		m.bus.Publish(eventbus.ValueChangedEvent{Old: m.lastSelected, New: id})
	}
	m.lastSelected = id
}

// flushCmd turns a pending flush request into a message for the update loop
func (m *Model) flushCmd() tea.Cmd {
	if !m.flushQueued {
		return nil
	}
	m.flushQueued = false
	return func() tea.Msg { return flushMsg{} }
}

// Init starts the cursor blink and the first flush
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.flushCmd())
}

// Update handles all incoming messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case flushMsg:
		m.engine.Flush()
		if !m.ready && !m.engine.Pending() {
			m.ready = true
			m.loading.Progress = 100
			if m.bus != nil {
				m.bus.Publish(eventbus.PaletteReadyEvent{Items: m.engine.Registry().Len()})
			}
		}

	case helpPagerMsg:
		if msg.err != nil {
			logging.Error("ui: help pager failed", "error", msg.err)
		}

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))

	default:
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	if m.quitting {
		return m, tea.Quit
	}
	cmds = append(cmds, m.flushCmd())
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return nil
	}
	// "?" is only a key binding while there is nothing typed
	if key.Matches(msg, m.keys.Help) && m.textInput.Value() == "" {
		return m.showHelp()
	}

	if ev := m.keys.Translate(msg); ev.Key != navigation.KeyNone {
		if m.root.HandleKey(ev) {
			return nil
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	if v := m.textInput.Value(); v != m.root.Input().Value() {
		m.root.Input().SetValue(v)
	}
	return cmd
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	switch msg.Button {
	case tea.MouseButtonWheelDown:
		m.root.HandleKey(navigation.Event{Key: navigation.KeyNext})
		return
	case tea.MouseButtonWheelUp:
		m.root.HandleKey(navigation.Event{Key: navigation.KeyPrev})
		return
	}

	id := m.layout.RowAt(msg.Y)
	if id == "" {
		return
	}
	switch {
	case msg.Action == tea.MouseActionMotion:
		m.engine.View().Hover(id)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.engine.View().Click(id)
	}
}

// View renders the palette
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.engine.State()
	loading := ""
	if !m.ready {
		loading = m.loading.Attrs()["aria-label"]
	}

	out, layout := m.renderer.Render(views.ViewState{
		Width:         m.width,
		Height:        m.height,
		Label:         m.label(),
		Input:         m.textInput.View(),
		ShowSeparator: m.sep.ShouldRender(),
		Rows:          views.Rows(m.engine.View()),
		Query:         st.Search,
		ScrollTarget:  m.engine.View().ScrollTarget(),
		Offset:        m.offset,
		Count:         st.Filtered.Count,
		Total:         m.engine.Registry().Len(),
		Empty:         m.empty.ShouldRender(),
		Loading:       loading,
		Help:          m.help.View(m.keys),
	})
	m.layout = layout
	m.offset = layout.Offset
	return out
}
