package command

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmdpal/internal/domain"
	"cmdpal/internal/ui/services/events"
	"cmdpal/internal/ui/services/filter"
	"cmdpal/internal/ui/services/navigation"
	"cmdpal/internal/ui/services/selection"
)

// substring ranks earlier hits higher; exact and easy to reason about
func substring(value, query string, _ []string) float64 {
	i := strings.Index(value, strings.ToLower(query))
	if i < 0 {
		return 0
	}
	return 1 / float64(1+i)
}

func newEngine(t *testing.T, mutate func(*domain.RootConfig), opts ...Option) *Engine {
	t.Helper()
	cfg := domain.DefaultRootConfig()
	cfg.Score = substring
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg, opts...)
}

type entry struct {
	id, group, value string
}

func register(e *Engine, entries ...entry) map[string]func() {
	disposers := make(map[string]func())
	for _, en := range entries {
		disposers[en.id] = e.RegisterItem(en.id, en.group)
		e.SetValue(en.id, en.value, nil)
	}
	return disposers
}

func fruits(t *testing.T, e *Engine) map[string]func() {
	t.Helper()
	e.RegisterGroup("G")
	e.RegisterGroup("H")
	d := register(e,
		entry{"apple", "G", "Apple"},
		entry{"banana", "G", "Banana"},
		entry{"cherry", "H", "Cherry"},
		entry{"date", "", "Date"},
	)
	e.Settle()
	return d
}

func TestFilterCorrectnessAndCount(t *testing.T) {
	e := newEngine(t, nil)
	fruits(t, e)

	for _, q := range []string{"an", "e", "zz", "A"} {
		e.SetSearch(q)
		e.Settle()
		st := e.State()

		visible := 0
		for _, id := range e.Registry().ItemIDs() {
			item, _ := e.Registry().Item(id)
			want := substring(strings.ToLower(item.Value), q, nil) > 0
			assert.Equal(t, want, st.Filtered.ItemVisible(id), "query %q item %s", q, id)
			if want {
				visible++
			}
		}
		assert.Equal(t, visible, st.Filtered.Count, "query %q", q)
	}

	e.SetSearch("")
	e.Settle()
	assert.Equal(t, 4, e.State().Filtered.Count, "browse mode counts everything")
}

func TestCountWithFilteringDisabled(t *testing.T) {
	e := newEngine(t, func(c *domain.RootConfig) { c.ShouldFilter = false })
	fruits(t, e)

	e.SetSearch("zz")
	e.Settle()
	assert.Equal(t, 4, e.State().Filtered.Count)
	assert.Len(t, e.View().ValidItems(), 4)
}

func TestGroupVisibility(t *testing.T) {
	e := newEngine(t, nil)
	fruits(t, e)

	e.SetSearch("ban")
	e.Settle()

	st := e.State()
	assert.True(t, st.Filtered.GroupVisible("G"), "G has banana")
	assert.False(t, st.Filtered.GroupVisible("H"))
	assert.True(t, e.ShouldRenderGroup("G"))
	assert.False(t, e.ShouldRenderGroup("H"))

	node, ok := e.View().Lookup("H")
	require.True(t, ok)
	assert.True(t, node.Hidden, "visibility is committed to the tree")
}

func TestSelectionInvariantUnderRandomOperations(t *testing.T) {
	e := newEngine(t, nil)
	rng := rand.New(rand.NewSource(42))
	words := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta"}
	groups := []string{"", "G", "H"}
	queries := []string{"", "a", "et", "zz", "ta", "e"}
	live := map[string]func(){}
	liveGroups := map[string]func(){}

	for step := 0; step < 2000; step++ {
		switch rng.Intn(7) {
		case 0, 1:
			w := words[rng.Intn(len(words))]
			if _, ok := live[w]; !ok {
				live[w] = e.RegisterItem(w, groups[rng.Intn(len(groups))])
				e.SetValue(w, w, nil)
			}
		case 2:
			for id, dispose := range live {
				dispose()
				delete(live, id)
				break
			}
		case 3:
			e.SetSearch(queries[rng.Intn(len(queries))])
		case 4:
			g := groups[1+rng.Intn(len(groups)-1)]
			if dispose, ok := liveGroups[g]; ok {
				dispose()
				delete(liveGroups, g)
			} else {
				liveGroups[g] = e.RegisterGroup(g)
			}
		case 5:
			w := words[rng.Intn(len(words))]
			e.SetItemFlags(w, rng.Intn(3) == 0, rng.Intn(4) == 0)
		case 6:
			e.HandleKey(navigation.Event{Key: navigation.KeyNext, Group: rng.Intn(2) == 0})
		}
		e.Settle()

		valid := e.View().ValidItems()
		selected := e.State().Selected
		if len(valid) == 0 {
			assert.Empty(t, selected, "step %d", step)
		} else {
			assert.Contains(t, valid, selected, "step %d", step)
		}

		// the tree always agrees with the registry about where items render
		for _, id := range e.Registry().ItemIDs() {
			item, _ := e.Registry().Item(id)
			_, mounted := e.View().Lookup(id)
			require.True(t, mounted, "step %d item %s", step, id)
			want := ""
			if _, ok := e.Registry().Group(item.GroupID); ok {
				want = item.GroupID
			}
			require.Equal(t, want, e.View().GroupOf(id), "step %d item %s", step, id)
		}
	}
}

func TestItemsRegisteredBeforeTheirGroup(t *testing.T) {
	e := newEngine(t, nil)
	register(e, entry{"a", "G", "apple"}, entry{"b", "H", "apricot"}, entry{"c", "", "cherry"})
	e.RegisterGroup("G")
	e.RegisterGroup("H")
	e.Settle()

	assert.Equal(t, "G", e.View().GroupOf("a"))
	assert.Equal(t, "H", e.View().GroupOf("b"))

	e.SetSearch("ap")
	e.Settle()

	st := e.State()
	assert.Equal(t, 2, st.Filtered.Count)
	assert.True(t, st.Filtered.GroupVisible("G"))
	assert.Equal(t, []string{"a"}, e.View().GroupValidItems("G"))
	assert.Equal(t, []string{"b"}, e.View().GroupValidItems("H"))
	require.Equal(t, "a", e.Selected())

	e.HandleKey(navigation.Event{Key: navigation.KeyNext, Group: true})
	assert.Equal(t, "b", e.Selected(), "group jump lands on the next group's first item")
	e.HandleKey(navigation.Event{Key: navigation.KeyPrev, Group: true})
	assert.Equal(t, "a", e.Selected())
}

func TestDisposedGroupReleasesItems(t *testing.T) {
	e := newEngine(t, nil)
	fruits(t, e)
	disposeH := e.RegisterGroup("H") // already registered; returns a second disposer
	disposeH()
	e.Settle()

	assert.Equal(t, "", e.View().GroupOf("cherry"))
	assert.Contains(t, e.View().ValidItems(), "cherry")
	assert.Equal(t, 4, e.State().Filtered.Count)

	e.RegisterGroup("H")
	e.Settle()
	assert.Equal(t, "H", e.View().GroupOf("cherry"))
	assert.Equal(t, []string{"cherry"}, e.Registry().Members("H"))

	e.SetSearch("cher")
	e.Settle()
	assert.True(t, e.State().Filtered.GroupVisible("H"))
}

func TestStaleItemDisposerIsIgnored(t *testing.T) {
	e := newEngine(t, nil)
	d := register(e, entry{"a", "", "apple"})
	e.Settle()

	d["a"]()
	e.Settle()
	register(e, entry{"a", "", "apple"})
	e.Settle()

	d["a"]() // already used, and "a" has been registered again since
	e.Settle()

	_, inRegistry := e.Registry().Item("a")
	_, inTree := e.View().Lookup("a")
	assert.True(t, inRegistry)
	assert.True(t, inTree)
	assert.Equal(t, 1, e.State().Filtered.Count)
	assert.Equal(t, "a", e.Selected())
}

func TestLoopThroughKeys(t *testing.T) {
	for _, loop := range []bool{true, false} {
		e := newEngine(t, func(c *domain.RootConfig) { c.Loop = loop })
		register(e, entry{"A", "", "a"}, entry{"B", "", "b"}, entry{"C", "", "c"})
		e.Settle()
		require.Equal(t, "A", e.Selected())

		assert.True(t, e.HandleKey(navigation.Event{Key: navigation.KeyPrev}), "boundary keys are still intercepted")
		if loop {
			assert.Equal(t, "C", e.Selected())
			e.HandleKey(navigation.Event{Key: navigation.KeyNext})
			assert.Equal(t, "A", e.Selected())
		} else {
			assert.Equal(t, "A", e.Selected())
		}
	}
}

func TestSearchResetsSelectionToBestMatch(t *testing.T) {
	ranks := map[string]float64{"a": 1, "b": 9}
	e := newEngine(t, func(c *domain.RootConfig) {
		c.Score = func(value, query string, _ []string) float64 { return ranks[value] }
	})
	register(e, entry{"A", "", "a"}, entry{"B", "", "b"})
	e.Settle()

	e.SetSearch("x")
	e.Settle()
	assert.Equal(t, []string{"B", "A"}, e.View().Items())
	assert.Equal(t, "B", e.Selected())

	e.SetSelected("A", selection.Options{})
	e.SetSearch("")
	e.SetSearch("x")
	e.Settle()
	assert.Equal(t, "B", e.Selected(), "new query selects the top result")
}

func TestUnregisterReselects(t *testing.T) {
	e := newEngine(t, nil)
	d := register(e, entry{"A", "", "a"}, entry{"B", "", "b"})
	e.Settle()
	require.Equal(t, "A", e.Selected())

	d["A"]()
	e.Settle()
	assert.Equal(t, "B", e.Selected())
	_, ok := e.State().Filtered.Ranks["A"]
	assert.False(t, ok)

	d["B"]()
	e.Settle()
	assert.Equal(t, "", e.Selected())
}

func TestUnregisterOtherItemKeepsSelection(t *testing.T) {
	e := newEngine(t, nil)
	d := register(e, entry{"A", "", "a"}, entry{"B", "", "b"}, entry{"C", "", "c"})
	e.Settle()
	e.SetSelected("B", selection.Options{})

	d["C"]()
	e.Settle()
	assert.Equal(t, "B", e.Selected())
}

func TestReflowKeepsTiesInOrder(t *testing.T) {
	e := newEngine(t, func(c *domain.RootConfig) {
		c.Score = func(value, query string, _ []string) float64 {
			if value == "best" {
				return 0.9
			}
			return 0.5
		}
	})
	register(e,
		entry{"p", "", "p"},
		entry{"q", "", "q"},
		entry{"best", "", "best"},
		entry{"r", "", "r"},
	)
	e.Settle()

	e.SetSearch("any")
	e.Settle()
	assert.Equal(t, []string{"best", "p", "q", "r"}, e.View().Items())
}

func TestReflowWaitsForFlush(t *testing.T) {
	ranks := map[string]float64{"a": 0.1, "b": 0.9}
	e := newEngine(t, func(c *domain.RootConfig) {
		c.Score = func(value, query string, _ []string) float64 { return ranks[value] }
	})
	register(e, entry{"A", "", "a"}, entry{"B", "", "b"})
	e.Settle()

	e.SetSearch("q")
	assert.Equal(t, []string{"A", "B"}, e.View().Items(), "tree is not reordered before the flush")
	assert.True(t, e.Pending())

	e.Flush()
	assert.Equal(t, []string{"B", "A"}, e.View().Items())
}

func TestRegistrationsAreBatched(t *testing.T) {
	e := newEngine(t, nil)
	recomputes := 0
	e.Bus().Subscribe(events.TypeOf(filter.FilterRecomputedEvent{}), func(interface{}) { recomputes++ })

	register(e, entry{"a", "", "a"}, entry{"b", "", "b"}, entry{"c", "", "c"})
	e.Flush()

	assert.Equal(t, 1, recomputes)
}

func TestValueChangeRescores(t *testing.T) {
	e := newEngine(t, nil)
	register(e, entry{"a", "", "apple"}, entry{"b", "", "berry"})
	e.Settle()
	e.SetSearch("ber")
	e.Settle()
	require.Equal(t, 1, e.State().Filtered.Count)

	e.SetValue("a", "blueberry", nil)
	e.Settle()
	assert.Equal(t, 2, e.State().Filtered.Count)
	assert.True(t, e.State().Filtered.ItemVisible("a"))
}

func TestDisabledItemsAreSkipped(t *testing.T) {
	e := newEngine(t, nil)
	register(e, entry{"A", "", "a"}, entry{"B", "", "b"}, entry{"C", "", "c"})
	e.SetItemFlags("B", true, false)
	e.Settle()

	e.HandleKey(navigation.Event{Key: navigation.KeyNext})
	assert.Equal(t, "C", e.Selected())

	e.SetItemFlags("C", true, false)
	e.Settle()
	assert.Equal(t, "A", e.Selected(), "disabling the selection heals it")
}

func TestForceVisibleBypassesFilter(t *testing.T) {
	e := newEngine(t, nil)
	register(e, entry{"A", "", "apple"}, entry{"help", "", "help"})
	e.SetItemFlags("help", false, true)
	e.Settle()

	e.SetSearch("app")
	e.Settle()

	assert.True(t, e.ShouldRenderItem("help"))
	assert.Equal(t, 1, e.State().Filtered.Count, "forced items are shown but not counted")
	assert.ElementsMatch(t, []string{"A", "help"}, e.View().ValidItems())
}

func TestConfirmClicksSelected(t *testing.T) {
	e := newEngine(t, nil)
	register(e, entry{"A", "", "a"}, entry{"B", "", "b"})
	e.Settle()

	var clicked []string
	e.View().OnClick("A", func() { clicked = append(clicked, "A") })
	e.View().OnClick("B", func() { clicked = append(clicked, "B") })

	assert.False(t, e.HandleKey(navigation.Event{Key: navigation.KeyConfirm, Composing: true}))
	assert.Empty(t, clicked)

	assert.True(t, e.HandleKey(navigation.Event{Key: navigation.KeyConfirm}))
	assert.Equal(t, []string{"A"}, clicked)
}

func TestGroupNavigationAndScroll(t *testing.T) {
	e := newEngine(t, nil)
	fruits(t, e)
	require.Equal(t, "apple", e.Selected())

	e.HandleKey(navigation.Event{Key: navigation.KeyNext, Group: true})
	assert.Equal(t, "cherry", e.Selected())
	e.Settle()
	assert.Equal(t, "H", e.View().ScrollTarget(), "first item of a group scrolls its heading")

	e.HandleKey(navigation.Event{Key: navigation.KeyNext, End: true})
	e.Settle()
	assert.Equal(t, "date", e.Selected())
	assert.Equal(t, "date", e.View().ScrollTarget())

	e.HandleKey(navigation.Event{Key: navigation.KeyHome})
	assert.Equal(t, "apple", e.Selected())
}

func TestPointerSelectionDoesNotScroll(t *testing.T) {
	e := newEngine(t, nil)
	register(e, entry{"A", "", "a"}, entry{"B", "", "b"})
	e.Settle()
	e.View().ScrollIntoView("A")

	e.SetSelected("B", selection.Options{SkipScroll: true})
	e.Settle()
	assert.Equal(t, "A", e.View().ScrollTarget())
}

func TestSubscribersAndValueChange(t *testing.T) {
	var values []string
	e := newEngine(t, nil, WithValueChange(func(v string) { values = append(values, v) }))

	var states []domain.State
	unsub := e.Subscribe(func(s domain.State) { states = append(states, s) })

	register(e, entry{"A", "", "a"}, entry{"B", "", "b"})
	e.Settle()
	e.HandleKey(navigation.Event{Key: navigation.KeyNext})

	assert.Equal(t, []string{"A", "B"}, values)
	require.NotEmpty(t, states)
	assert.Equal(t, "B", states[len(states)-1].Selected)

	unsub()
	n := len(states)
	e.HandleKey(navigation.Event{Key: navigation.KeyPrev})
	assert.Len(t, states, n)
}

func TestFlushRequester(t *testing.T) {
	requests := 0
	e := newEngine(t, nil, WithFlushRequester(func() { requests++ }))

	register(e, entry{"A", "", "a"}, entry{"B", "", "b"})
	assert.Equal(t, 1, requests, "one request per idle-to-busy transition")
}

func TestVimBindingsFollowConfig(t *testing.T) {
	e := newEngine(t, nil)
	register(e, entry{"A", "", "a"}, entry{"B", "", "b"})
	e.Settle()

	assert.True(t, e.HandleKey(navigation.Event{Key: navigation.KeyRune, Rune: 'j', Ctrl: true}))
	assert.Equal(t, "B", e.Selected())

	e.Configure(func(c *domain.RootConfig) { c.VimBindings = false })
	e.Settle()
	assert.False(t, e.HandleKey(navigation.Event{Key: navigation.KeyRune, Rune: 'k', Ctrl: true}))
	assert.Equal(t, "B", e.Selected())
}
