package command

import (
	"sync"

	"cmdpal/internal/domain"
	"cmdpal/internal/logging"
	"cmdpal/internal/registry"
	"cmdpal/internal/ui/services/events"
	"cmdpal/internal/ui/services/filter"
	"cmdpal/internal/ui/services/navigation"
	"cmdpal/internal/ui/services/scheduler"
	"cmdpal/internal/ui/services/scoring"
	"cmdpal/internal/ui/services/selection"
	"cmdpal/internal/ui/services/sorting"
	"cmdpal/internal/ui/tree"
)

// Phases of the flush queue. Lower phases run first within a flush.
const (
	phaseSearch   = 1 // reflow and reselect after a query change
	phaseValue    = 2 // rescore items whose value changed
	phaseRegister = 3 // recompute after items or groups came or went
	phaseRemove   = 4 // recompute and heal the selection after removals
	phaseScroll   = 5 // bring the selection on screen
	phaseReflow   = 7 // reorder and restore the selection once the tree reflects the filter
)

const settleRounds = 16

// Engine owns the state of one palette: its registry, filter results,
// rendered tree and selection. Every method must be called from the same
// goroutine.
type Engine struct {
	cfg domain.RootConfig

	reg       *registry.Memory
	view      *tree.Tree
	bus       *events.Bus
	sched     *scheduler.Scheduler
	filter    *filter.Service
	sorting   *sorting.Service
	selection *selection.Service
	nav       *navigation.Service

	search   string
	filtered domain.FilterState

	dirtyValues map[string]struct{}
	removed     map[string]struct{}

	// mounts counts registrations per id so a stale disposer can tell
	// the id was registered again after it
	mounts map[string]uint64

	subsMu  sync.Mutex
	subs    []subscriber
	nextSub int

	onValueChange func(string)
	requestFlush  func()
}

type subscriber struct {
	id int
	fn func(domain.State)
}

// Option configures an Engine
type Option func(*Engine)

// WithFlushRequester is called whenever work is queued on an idle engine
func WithFlushRequester(fn func()) Option {
	return func(e *Engine) { e.requestFlush = fn }
}

// WithValueChange is called with the newly selected id after every selection change
func WithValueChange(fn func(string)) Option {
	return func(e *Engine) { e.onValueChange = fn }
}

// New creates an engine for a palette configured by cfg
func New(cfg domain.RootConfig, opts ...Option) *Engine {
	e := &Engine{
		cfg:         cfg,
		reg:         registry.NewMemory(),
		view:        tree.New(),
		bus:         events.NewBus(),
		filtered:    domain.NewFilterState(),
		dirtyValues: make(map[string]struct{}),
		removed:     make(map[string]struct{}),
		mounts:      make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.sched = scheduler.New(func() {
		if e.requestFlush != nil {
			e.requestFlush()
		}
	})
	e.filter = filter.NewService(e.bus, scoring.NewAdapter(cfg.Score))
	e.sorting = sorting.NewService(e.bus)
	e.selection = selection.NewService(e.bus, e.view)
	e.selection.SetLoop(cfg.Loop)
	e.nav = navigation.NewService(e.bus, e.selection)
	e.nav.SetVimBindings(cfg.VimBindings)

	e.subscribeToEvents()
	return e
}

func (e *Engine) subscribeToEvents() {
	e.bus.Subscribe(events.TypeOf(selection.SelectionChangedEvent{}), func(ev interface{}) {
		changed := ev.(selection.SelectionChangedEvent)
		if !changed.SkipScroll {
			e.sched.Schedule(phaseScroll, e.scrollSelectedIntoView)
		}
		if e.onValueChange != nil {
			e.onValueChange(changed.New)
		}
	})
}

// Config returns the palette configuration
func (e *Engine) Config() domain.RootConfig {
	return e.cfg
}

// Configure changes the palette configuration and refilters
func (e *Engine) Configure(fn func(*domain.RootConfig)) {
	fn(&e.cfg)
	e.selection.SetLoop(e.cfg.Loop)
	e.nav.SetVimBindings(e.cfg.VimBindings)
	e.filter = filter.NewService(e.bus, scoring.NewAdapter(e.cfg.Score))
	e.sched.Schedule(phaseRegister, e.afterRegister)
}

// View returns the rendered tree the components mount into
func (e *Engine) View() *tree.Tree {
	return e.view
}

// Registry returns the read side of the registry
func (e *Engine) Registry() registry.Reader {
	return e.reg
}

// Bus returns the bus the engine's services publish on
func (e *Engine) Bus() events.EventBus {
	return e.bus
}

// Search returns the current query
func (e *Engine) Search() string {
	return e.search
}

// Selected returns the selected id, "" if none
func (e *Engine) Selected() string {
	return e.selection.Selected()
}

// State returns a snapshot of the current state
func (e *Engine) State() domain.State {
	return domain.State{
		Search:   e.search,
		Selected: e.selection.Selected(),
		Filtered: e.filtered.Clone(),
	}
}

// Subscribe registers fn to receive every published snapshot
func (e *Engine) Subscribe(fn func(domain.State)) func() {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()

	id := e.nextSub
	e.nextSub++
	e.subs = append(e.subs, subscriber{id: id, fn: fn})
	return func() {
		e.subsMu.Lock()
		defer e.subsMu.Unlock()
		for i, s := range e.subs {
			if s.id == id {
				e.subs = append(e.subs[:i:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

// SetSearch changes the query. Filtering is applied immediately; the
// reflow and the reset to the best match happen at the next flush, once
// the tree shows the new filter.
func (e *Engine) SetSearch(query string) {
	if query == e.search {
		return
	}
	e.search = query
	e.filtered = e.filter.Recompute(e.reg, query, e.cfg.ShouldFilter)
	e.emit()

	e.sched.Schedule(phaseSearch, func() {
		e.reflow()
		e.selection.SelectFirst()
		e.emit()
	})
}

// RegisterItem adds an item, mounts it in the tree and returns its
// disposer. The group need not be registered yet; the item moves into it
// when it is. The disposer runs once, and not at all once the id has been
// registered again.
func (e *Engine) RegisterItem(id, groupID string) func() {
	delete(e.removed, id)
	e.mounts[id]++
	mount := e.mounts[id]
	dispose := e.reg.RegisterItem(id, groupID)
	e.view.MountItem(id, groupID, "")
	e.sched.Schedule(phaseRegister, e.afterRegister)

	var once sync.Once
	return func() {
		once.Do(func() {
			if e.mounts[id] != mount {
				return
			}
			dispose()
			e.view.Unmount(id)
			delete(e.filtered.Ranks, id)
			delete(e.dirtyValues, id)
			e.removed[id] = struct{}{}
			e.sched.Schedule(phaseRemove, e.afterRemove)
		})
	}
}

// RegisterGroup adds a group, mounts it in the tree and returns its
// disposer. Member items already mounted move into the group. Disposing a
// group unmounts only the group node; its items stay registered and
// render ungrouped until their own disposers run.
func (e *Engine) RegisterGroup(id string) func() {
	dispose := e.reg.RegisterGroup(id)
	e.view.MountGroup(id, "")
	e.sched.Schedule(phaseRegister, e.afterRegister)

	var once sync.Once
	return func() {
		once.Do(func() {
			dispose()
			e.view.Unmount(id)
			e.sched.Schedule(phaseRemove, e.afterRemove)
		})
	}
}

// SetValue updates the value and keywords an item is matched by
func (e *Engine) SetValue(id, value string, keywords []string) {
	if !e.reg.SetValue(id, value, keywords) {
		return
	}
	e.dirtyValues[id] = struct{}{}
	e.sched.Schedule(phaseValue, e.afterValueChange)
}

// SetItemFlags updates whether an item is disabled or always shown
func (e *Engine) SetItemFlags(id string, disabled, forceVisible bool) {
	if e.reg.SetItemFlags(id, disabled, forceVisible) {
		e.sched.Schedule(phaseRegister, e.afterRegister)
	}
}

// SetGroup updates a group's heading, explicit value and force-visible flag
func (e *Engine) SetGroup(id, heading, value string, forceVisible bool) {
	e.reg.SetGroup(id, heading, value, forceVisible)
	e.view.SetText(id, heading)
	e.sched.Schedule(phaseRegister, e.afterRegister)
}

// SetSelected selects id explicitly
func (e *Engine) SetSelected(id string, opts selection.Options) {
	if e.selection.SetSelected(id, opts) {
		e.emit()
	}
}

// HandleKey applies a key event. It reports whether the input's default
// handling must be suppressed.
func (e *Engine) HandleKey(ev navigation.Event) bool {
	before := e.selection.Selected()
	res := e.nav.Dispatch(ev)
	if res.Confirm {
		e.Confirm()
	}
	if e.selection.Selected() != before {
		e.emit()
	}
	return res.Handled
}

// Confirm activates the selected item
func (e *Engine) Confirm() {
	if id := e.selection.Selected(); id != "" {
		e.view.Click(id)
	}
}

// Flush runs the work queued since the previous flush
func (e *Engine) Flush() {
	e.sched.Flush()
}

// Settle flushes until no work remains
func (e *Engine) Settle() {
	e.sched.Settle(settleRounds)
}

// Pending reports whether a flush has work to do
func (e *Engine) Pending() bool {
	return e.sched.Pending()
}

func (e *Engine) afterRegister() {
	e.filtered = e.filter.Recompute(e.reg, e.search, e.cfg.ShouldFilter)
	e.emit()
	e.sched.Schedule(phaseReflow, e.reflowAndRestore)
}

func (e *Engine) afterValueChange() {
	for id := range e.dirtyValues {
		e.filtered = e.filter.Rescore(e.filtered, e.reg, e.search, id)
	}
	e.dirtyValues = make(map[string]struct{})
	e.emit()
	e.sched.Schedule(phaseReflow, e.reflowAndRestore)
}

func (e *Engine) afterRemove() {
	e.filtered = e.filter.Recompute(e.reg, e.search, e.cfg.ShouldFilter)
	selected := e.selection.Selected()
	if _, gone := e.removed[selected]; gone || (selected != "" && !e.selection.IsValid(selected)) {
		e.selection.SelectFirst()
	}
	e.removed = make(map[string]struct{})
	e.emit()
	e.sched.Schedule(phaseReflow, e.reflowAndRestore)
}

func (e *Engine) reflowAndRestore() {
	e.reflow()
	if !e.selection.IsValid(e.selection.Selected()) {
		e.selection.SelectFirst()
	}
	e.emit()
}

func (e *Engine) reflow() {
	e.sorting.Reflow(e.view, e.filtered, e.reg.Membership())
}

func (e *Engine) scrollSelectedIntoView() {
	id := e.selection.Selected()
	if id == "" {
		return
	}
	// the first item of a group scrolls its heading into view too
	if g := e.view.GroupOf(id); g != "" {
		if items := e.view.GroupValidItems(g); len(items) > 0 && items[0] == id {
			e.view.ScrollIntoView(g)
			return
		}
	}
	e.view.ScrollIntoView(id)
}

// ShouldRenderItem reports whether an item is shown under the current filter
func (e *Engine) ShouldRenderItem(id string) bool {
	item, ok := e.reg.Item(id)
	if !ok {
		return false
	}
	if item.ForceVisible || !e.filtered.Active {
		return true
	}
	if g, ok := e.reg.Group(item.GroupID); ok && g.ForceVisible {
		return true
	}
	return e.filtered.Rank(id) > 0
}

// ShouldRenderGroup reports whether a group is shown under the current filter
func (e *Engine) ShouldRenderGroup(id string) bool {
	g, ok := e.reg.Group(id)
	if !ok {
		return false
	}
	return g.ForceVisible || e.filtered.GroupVisible(id)
}

// emit commits visibility and selection to the tree and publishes a snapshot
func (e *Engine) emit() {
	for _, id := range e.reg.ItemIDs() {
		item, _ := e.reg.Item(id)
		e.view.SetHidden(id, !e.ShouldRenderItem(id))
		e.view.SetDisabled(id, item.Disabled)
	}
	for _, id := range e.reg.GroupIDs() {
		e.view.SetHidden(id, !e.ShouldRenderGroup(id))
	}
	e.view.MarkSelected(e.selection.Selected())

	state := e.State()
	logging.Debug("engine: emit", "search", state.Search, "selected", state.Selected, "count", state.Filtered.Count)

	e.subsMu.Lock()
	subs := append([]subscriber(nil), e.subs...)
	e.subsMu.Unlock()

	for _, s := range subs {
		s.fn(state.Clone())
	}
}
