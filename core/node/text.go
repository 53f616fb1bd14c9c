package node

import (
	"context"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Text is a node whose content is a block of text wrapped to a fixed width.
// Its size is the rendered cell extent of the wrapped text.
type Text struct {
	ID    string
	Body  string
	Width int

	mu       sync.RWMutex
	rendered string
}

// NewText creates a text node wrapped at width cells. A width <= 0 disables wrapping.
func NewText(id, body string, width int) *Text {
	return &Text{ID: id, Body: body, Width: width}
}

// Measure renders the wrapped body and caches it until Purge.
func (t *Text) Measure(ctx context.Context) (Size, error) {
	if err := ctx.Err(); err != nil {
		return Size{}, err
	}
	out := t.render()

	t.mu.Lock()
	t.rendered = out
	t.mu.Unlock()

	return Size{
		Width:  float64(lipgloss.Width(out)),
		Height: float64(lipgloss.Height(out)),
	}, nil
}

// Load re-renders the body if it was purged.
func (t *Text) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.rendered == "" {
		t.rendered = t.render()
	}
	return nil
}

// Purge drops the rendered text.
func (t *Text) Purge() {
	t.mu.Lock()
	t.rendered = ""
	t.mu.Unlock()
}

// Rendered returns the cached rendering, or "" when not loaded.
func (t *Text) Rendered() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rendered
}

func (t *Text) render() string {
	style := lipgloss.NewStyle()
	if t.Width > 0 {
		style = style.Width(t.Width)
	}
	return style.Render(t.Body)
}
