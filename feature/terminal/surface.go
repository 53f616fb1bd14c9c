package terminal

import (
	"sync"

	"nodegrid/core/collection"
	"nodegrid/core/index"
	"nodegrid/core/node"
	"nodegrid/core/update"

	tea "github.com/charmbracelet/bubbletea"
)

// ReloadMsg reports that the view reloaded everything.
type ReloadMsg struct {
	Shape index.Shape
}

// BatchMsg reports an applied structural batch.
type BatchMsg struct {
	Batch *update.Batch
}

// RefreshMsg reports a node that became ready while visible.
type RefreshMsg struct {
	Index index.Index
	Node  node.Node
	Size  node.Size
}

// EventsMsg carries every surface call received since the last delivery, in order.
type EventsMsg []tea.Msg

// Surface queues the view's surface calls for the program. Calls never block
// the view.
type Surface struct {
	mu      sync.Mutex
	pending []tea.Msg
	notify  chan struct{}
	done    chan struct{}
	once    sync.Once
}

var _ collection.Surface = (*Surface)(nil)

// NewSurface creates an empty surface.
func NewSurface() *Surface {
	return &Surface{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

func (s *Surface) ReloadData(shape index.Shape) {
	s.push(ReloadMsg{Shape: shape.Clone()})
}

func (s *Surface) ApplyBatch(b *update.Batch) {
	s.push(BatchMsg{Batch: b})
}

func (s *Surface) RefreshItem(idx index.Index, n node.Node, size node.Size) {
	s.push(RefreshMsg{Index: idx, Node: n, Size: size})
}

// Listen returns a command that waits for the next surface calls. It yields nil
// once the surface is closed and drained.
func (s *Surface) Listen() tea.Cmd {
	return func() tea.Msg {
		for {
			if events := s.take(); len(events) > 0 {
				return events
			}
			select {
			case <-s.notify:
			case <-s.done:
				if events := s.take(); len(events) > 0 {
					return events
				}
				return nil
			}
		}
	}
}

// Close wakes any pending Listen.
func (s *Surface) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *Surface) push(msg tea.Msg) {
	s.mu.Lock()
	s.pending = append(s.pending, msg)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Surface) take() EventsMsg {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return nil
	}
	out := EventsMsg(s.pending)
	s.pending = nil
	return out
}
