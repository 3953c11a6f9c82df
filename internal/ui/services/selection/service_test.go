package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmdpal/internal/ui/services/events"
	"cmdpal/internal/ui/tree"
)

func flat(ids ...string) *tree.Tree {
	tr := tree.New()
	for _, id := range ids {
		tr.MountItem(id, "", id)
	}
	return tr
}

func TestSelectFirstAndLast(t *testing.T) {
	tr := flat("A", "B", "C")
	s := NewService(nil, tr)

	s.SelectFirst()
	assert.Equal(t, "A", s.Selected())
	s.SelectLast()
	assert.Equal(t, "C", s.Selected())

	empty := NewService(nil, tree.New())
	empty.SetSelected("ghost", Options{})
	empty.SelectFirst()
	assert.Equal(t, "", empty.Selected(), "no valid items clears the selection")
}

func TestSelectByIndexOutOfRange(t *testing.T) {
	s := NewService(nil, flat("A", "B"))
	s.SelectByIndex(1)
	s.SelectByIndex(5)
	s.SelectByIndex(-1)
	assert.Equal(t, "B", s.Selected())
}

func TestLoopSemantics(t *testing.T) {
	tests := []struct {
		name      string
		loop      bool
		start     string
		direction int
		want      string
	}{
		{"loop back from first", true, "A", -1, "C"},
		{"loop forward from last", true, "C", +1, "A"},
		{"no loop at first", false, "A", -1, "A"},
		{"no loop at last", false, "C", +1, "C"},
		{"plain next", false, "A", +1, "B"},
		{"nothing selected goes to first", false, "", +1, "A"},
		{"nothing selected backwards without loop", false, "", -1, ""},
		{"nothing selected backwards with loop", true, "", -1, "C"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewService(nil, flat("A", "B", "C"))
			s.SetLoop(tc.loop)
			s.SetSelected(tc.start, Options{})

			s.SelectByOffset(tc.direction)
			assert.Equal(t, tc.want, s.Selected())
		})
	}
}

func grouped() *tree.Tree {
	tr := tree.New()
	tr.MountItem("solo", "", "solo")
	for _, g := range []struct {
		id    string
		items []string
	}{
		{"g1", []string{"a1", "a2"}},
		{"g2", []string{"b1"}},
		{"g3", []string{"c1", "c2"}},
	} {
		tr.MountGroup(g.id, g.id)
		for _, id := range g.items {
			tr.MountItem(id, g.id, id)
		}
	}
	return tr
}

func TestSelectByGroupOffset(t *testing.T) {
	tr := grouped()
	s := NewService(nil, tr)

	s.SetSelected("a2", Options{})
	s.SelectByGroupOffset(+1)
	assert.Equal(t, "b1", s.Selected())

	// g2 has nothing valid: skip straight to g3
	s.SetSelected("a1", Options{})
	tr.SetDisabled("b1", true)
	s.SelectByGroupOffset(+1)
	assert.Equal(t, "c1", s.Selected())

	s.SelectByGroupOffset(-1)
	assert.Equal(t, "a1", s.Selected(), "first valid item of the previous group")
}

func TestSelectByGroupOffsetFallsBack(t *testing.T) {
	tr := grouped()
	s := NewService(nil, tr)

	s.SetSelected("solo", Options{})
	s.SelectByGroupOffset(+1)
	assert.Equal(t, "a1", s.Selected(), "ungrouped selection moves by one item")

	s.SetSelected("c1", Options{})
	s.SelectByGroupOffset(+1)
	assert.Equal(t, "c2", s.Selected(), "no later group moves by one item")
}

func TestSetSelectedPublishesOnChangeOnly(t *testing.T) {
	rec := events.NewRecorder()
	s := NewService(rec, flat("A", "B"))

	assert.True(t, s.SetSelected("A", Options{SkipScroll: true}))
	assert.False(t, s.SetSelected("A", Options{}))

	require.Len(t, rec.Events, 1)
	ev := rec.Events[0].(SelectionChangedEvent)
	assert.Equal(t, "", ev.Old)
	assert.Equal(t, "A", ev.New)
	assert.True(t, ev.SkipScroll)

	s.Clear()
	assert.IsType(t, SelectionClearedEvent{}, rec.Events[1])
}

func TestIsValid(t *testing.T) {
	tr := flat("A", "B")
	s := NewService(nil, tr)
	tr.SetHidden("B", true)

	assert.True(t, s.IsValid("A"))
	assert.False(t, s.IsValid("B"))
	assert.False(t, s.IsValid(""))
}
