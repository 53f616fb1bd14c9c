package terminal

import (
	"context"
	"testing"
	"time"

	"nodegrid/core/collection"
	"nodegrid/core/index"
	"nodegrid/core/node"
	"nodegrid/feature/memsource"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyMsg(k string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func newModel(t *testing.T, src *memsource.Source, opts ...collection.Option) (Model, *collection.View) {
	t.Helper()
	cfg := collection.DefaultConfig()
	cfg.AsyncDataFetching = false
	cfg.EstimatedItemExtent = 1

	surface := NewSurface()
	view, err := collection.New(context.Background(), src, surface, cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = view.Close()
		surface.Close()
	})

	m := New(context.Background(), view, surface)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 10 + chrome})
	return next.(Model), view
}

func applyMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelRendersVisibleRows(t *testing.T) {
	m, view := newModel(t, memsource.Generate(1, 50, 40))
	require.NoError(t, view.Flush(context.Background()))

	out := m.View()
	assert.Contains(t, out, "Section 0, row 0")
	assert.Contains(t, out, "Section 0, row 9")
	assert.NotContains(t, out, "Section 0, row 10")
	assert.Contains(t, out, "1 sections · 50 items")
}

func TestModelScrolls(t *testing.T) {
	m, view := newModel(t, memsource.Generate(1, 50, 40))

	m = applyMsg(t, m, keyMsg("j"))
	assert.InDelta(t, 1, m.Offset(), 0.001)
	assert.NotContains(t, m.View(), "Section 0, row 0")
	assert.Contains(t, m.View(), "Section 0, row 10")

	m = applyMsg(t, m, keyMsg("k"))
	m = applyMsg(t, m, keyMsg("k"))
	assert.InDelta(t, 0, m.Offset(), 0.001)

	m = applyMsg(t, m, keyMsg("f"))
	assert.InDelta(t, 10, m.Offset(), 0.001)
	vp, _ := view.Viewport()
	assert.InDelta(t, 10, vp.Offset, 0.001)
	assert.True(t, view.WorkingRange().Contains(index.New(0, 35)))

	m = applyMsg(t, m, keyMsg("G"))
	assert.InDelta(t, 40, m.Offset(), 0.001)
	m = applyMsg(t, m, keyMsg("g"))
	assert.InDelta(t, 0, m.Offset(), 0.001)
}

func TestModelQuit(t *testing.T) {
	m, _ := newModel(t, memsource.Generate(1, 5, 40))
	_, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModelCountsSurfaceEvents(t *testing.T) {
	m, _ := newModel(t, memsource.Generate(1, 5, 40))

	m = applyMsg(t, m, EventsMsg{ReloadMsg{}, BatchMsg{}, RefreshMsg{}, RefreshMsg{}})
	assert.Equal(t, Stats{Reloads: 1, Batches: 1, Refreshes: 2}, m.Stats())
}

func TestFeederAppendsSections(t *testing.T) {
	src := memsource.Generate(1, 20, 40)
	feeder := NewFeeder(src, 20, 3, nil)
	m, view := newModel(t, src, collection.WithDelegate(feeder))
	feeder.Attach(context.Background(), view)

	for range 4 {
		m = applyMsg(t, m, keyMsg("G"))
		require.NoError(t, view.Flush(context.Background()))
		feeder.Wait()
		require.NoError(t, view.Flush(context.Background()))
	}

	assert.Equal(t, index.Shape{20, 20, 20}, view.Shape())
	assert.False(t, feeder.ShouldBatchFetch())
	began, completed, ok := view.BatchContext().Stats()
	assert.Equal(t, 2, began)
	assert.Equal(t, 2, completed)
	assert.True(t, ok)
	assert.Contains(t, m.View(), "3 sections")
}

func TestSurfaceListen(t *testing.T) {
	s := NewSurface()
	s.ReloadData(index.Shape{2})
	s.RefreshItem(index.New(0, 1), nil, node.Size{Width: 40, Height: 1})

	msg := s.Listen()()
	events, ok := msg.(EventsMsg)
	require.True(t, ok)
	require.Len(t, events, 2)
	assert.Equal(t, ReloadMsg{Shape: index.Shape{2}}, events[0])

	got := make(chan tea.Msg, 1)
	go func() { got <- s.Listen()() }()
	s.Close()
	select {
	case msg := <-got:
		assert.Nil(t, msg)
	case <-time.After(time.Second):
		t.Fatal("Listen did not return after Close")
	}
}
