package terminal

import (
	"context"
	"fmt"
	"math"
	"strings"

	"nodegrid/core/collection"
	"nodegrid/core/node"
	"nodegrid/core/rangectl"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// chrome is the number of lines around the item area: title, status and help.
const chrome = 3

// Stats counts the surface calls the model has seen.
type Stats struct {
	Reloads   int
	Batches   int
	Refreshes int
}

// Model is the bubbletea model showing one view.
type Model struct {
	ctx     context.Context
	view    *collection.View
	surface *Surface
	keys    KeyMap
	help    help.Model
	styles  Styles

	width  int
	height int
	offset float64
	stats  Stats
}

// New creates a model for view. surface must be the surface view was created with.
func New(ctx context.Context, view *collection.View, surface *Surface) Model {
	return Model{
		ctx:     ctx,
		view:    view,
		surface: surface,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		styles:  DefaultStyles(),
	}
}

// Offset returns the scroll offset, in lines.
func (m Model) Offset() float64 {
	return m.offset
}

// Stats returns the surface call counts.
func (m Model) Stats() Stats {
	return m.stats
}

func (m Model) Init() tea.Cmd {
	return m.surface.Listen()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.offset = m.clamp(m.offset)
		m.view.SetViewport(m.ctx, rangectl.Viewport{Offset: m.offset, Extent: m.extent()})
		return m, nil

	case EventsMsg:
		for _, ev := range msg {
			switch ev.(type) {
			case ReloadMsg:
				m.stats.Reloads++
			case BatchMsg:
				m.stats.Batches++
			case RefreshMsg:
				m.stats.Refreshes++
			}
		}
		if off := m.clamp(m.offset); off != m.offset {
			m = m.scrollTo(off)
		}
		return m, m.surface.Listen()

	case tea.KeyMsg:
		page := m.extent()
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Down):
			m = m.scrollTo(m.offset + 1)
		case key.Matches(msg, m.keys.Up):
			m = m.scrollTo(m.offset - 1)
		case key.Matches(msg, m.keys.PageDown):
			m = m.scrollTo(m.offset + page)
		case key.Matches(msg, m.keys.PageUp):
			m = m.scrollTo(m.offset - page)
		case key.Matches(msg, m.keys.Top):
			m = m.scrollTo(0)
		case key.Matches(msg, m.keys.Bottom):
			m = m.scrollTo(math.Inf(1))
		}
	}
	return m, nil
}

func (m Model) View() string {
	extent := int(m.extent())
	rows := make([]string, extent)
	for i := range rows {
		rows[i] = m.styles.Placeholder.Render("·")
	}
	for _, v := range m.view.VisibleNodes() {
		span, ok := m.view.FrameOf(v.Index)
		if !ok {
			continue
		}
		top := int(span.Start - m.offset)
		for i, line := range strings.Split(content(v.Node), "\n") {
			if row := top + i; row >= 0 && row < extent {
				rows[row] = m.styles.Row.Render(line)
			}
		}
	}

	shape := m.view.Shape()
	title := m.styles.Title.Render(fmt.Sprintf("nodegrid · %d sections · %d items", shape.Sections(), shape.Total()))

	_, dir := m.view.Viewport()
	status := m.styles.Status.Render(fmt.Sprintf("%.0f/%.0f %s · working range %d",
		m.offset, m.view.ContentExtent(), dir, m.view.WorkingRange().Len()))
	if m.view.BatchContext().IsFetching() {
		status += " " + m.styles.Fetching.Render("fetching…")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		strings.Join(rows, "\n"),
		status,
		m.help.View(m.keys),
	)
}

func (m Model) extent() float64 {
	return float64(max(m.height-chrome, 0))
}

func (m Model) clamp(offset float64) float64 {
	limit := math.Max(m.view.ContentExtent()-m.extent(), 0)
	return math.Min(math.Max(offset, 0), limit)
}

func (m Model) scrollTo(offset float64) Model {
	m.offset = m.clamp(offset)
	m.view.ScrollTo(m.ctx, m.offset)
	return m
}

func content(n node.Node) string {
	switch v := n.(type) {
	case *node.Text:
		if r := v.Rendered(); r != "" {
			return r
		}
		return v.Body
	case interface{ Body() []byte }:
		return string(v.Body())
	}
	return ""
}
