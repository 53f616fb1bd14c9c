package nodestore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"nodegrid/core/index"
	"nodegrid/core/node"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

var (
	// ErrSlotBusy is returned by Begin when the slot is already pending or ready.
	ErrSlotBusy = errors.New("nodestore: slot already pending or ready")
	// ErrStale is returned when an operation addresses a generation that a remap
	// or reset has already replaced.
	ErrStale = errors.New("nodestore: stale generation")
)

// Mapping translates indices of the current generation into the next one.
type Mapping interface {
	// NewShape is the section/item layout after the mapping is applied.
	NewShape() index.Shape
	// Target returns where the slot at old moves to; false if it is dropped.
	Target(old index.Index) (index.Index, bool)
}

// Options configures a Store.
type Options struct {
	// RetainEvicted caps how many evicted nodes stay loaded. Beyond the cap the
	// least recently evicted node is purged. Zero purges on eviction.
	RetainEvicted int
	Logger        *zap.Logger
}

type fetch struct {
	idx    index.Index
	cancel context.CancelFunc
}

// Store is the node slot table.
type Store struct {
	mu       sync.Mutex
	snap     atomic.Pointer[Snapshot]
	tokens   map[string]*fetch
	retained *lru.Cache[string, struct{}]
	// retainCap mirrors the cache size so eviction order stays under our control.
	retainCap int
	logger    *zap.Logger
}

// New creates a store with every slot of shape Empty.
func New(shape index.Shape, opts Options) (*Store, error) {
	s := &Store{
		tokens: make(map[string]*fetch),
		logger: opts.Logger,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if opts.RetainEvicted > 0 {
		cache, err := lru.New[string, struct{}](opts.RetainEvicted)
		if err != nil {
			return nil, fmt.Errorf("failed to create retention cache: %w", err)
		}
		s.retained = cache
		s.retainCap = opts.RetainEvicted
	}
	s.snap.Store(newSnapshot(shape, 0, 0))
	return s, nil
}

// Snapshot returns the current immutable view. It never blocks.
func (s *Store) Snapshot() *Snapshot {
	return s.snap.Load()
}

// Get returns the slot at idx from the current snapshot.
func (s *Store) Get(idx index.Index) (Slot, error) {
	return s.Snapshot().Get(idx)
}

// Shape returns the current section/item counts.
func (s *Store) Shape() index.Shape {
	return s.Snapshot().Shape()
}

// SizeOf returns the measured size at idx, if known. It satisfies layout.Source.
func (s *Store) SizeOf(idx index.Index) (node.Size, bool) {
	return s.Snapshot().SizeOf(idx)
}

// Generation returns the current index-space generation.
func (s *Store) Generation() uint64 {
	return s.Snapshot().Generation()
}

// Locate returns the current index of the slot owned by token.
func (s *Store) Locate(token string) (index.Index, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.tokens[token]
	if !ok {
		return index.Index{}, false
	}
	return f.idx, true
}

// Set stores a measured node at idx and marks it Ready. Any pending fetch for the
// slot is cancelled.
func (s *Store) Set(idx index.Index, n node.Node, size node.Size) error {
	if n == nil {
		return fmt.Errorf("set %s: nil node", idx)
	}
	var cancel context.CancelFunc

	s.mu.Lock()
	next := s.Snapshot().clone()
	if !next.shape.Contains(idx) {
		s.mu.Unlock()
		return index.ItemOutOfRange("set", idx, next.shape.Items(idx.Section))
	}
	items := next.touch(idx.Section)
	old := items[idx.Item]
	if old.Token != "" {
		cancel = s.forget(old.Token)
	}
	token := uuid.NewString()
	s.tokens[token] = &fetch{idx: idx}
	items[idx.Item] = Slot{State: Ready, Token: token, Node: n, Size: size, Measured: true}
	s.snap.Store(next)
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return nil
}

// Begin marks idx Pending under a new fetch token. cancel is invoked if the slot is
// evicted, dropped or reset before Complete. The returned slot is the previous
// state; an Evicted slot carries its node and size.
func (s *Store) Begin(idx index.Index, cancel context.CancelFunc) (string, Slot, error) {
	return s.begin(nil, idx, cancel)
}

// BeginIn is Begin for an index of generation gen. It fails with ErrStale once
// the store has moved past gen.
func (s *Store) BeginIn(gen uint64, idx index.Index, cancel context.CancelFunc) (string, Slot, error) {
	return s.begin(&gen, idx, cancel)
}

func (s *Store) begin(gen *uint64, idx index.Index, cancel context.CancelFunc) (string, Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.Snapshot().clone()
	if gen != nil && *gen != next.gen {
		return "", Slot{}, fmt.Errorf("begin %s: %w", idx, ErrStale)
	}
	if !next.shape.Contains(idx) {
		return "", Slot{}, index.ItemOutOfRange("begin", idx, next.shape.Items(idx.Section))
	}
	prev := next.sections[idx.Section][idx.Item]
	if prev.State == Pending || prev.State == Ready {
		return "", prev, fmt.Errorf("begin %s (%s): %w", idx, prev.State, ErrSlotBusy)
	}

	if prev.Token != "" {
		s.forget(prev.Token)
	}
	token := uuid.NewString()
	s.tokens[token] = &fetch{idx: idx, cancel: cancel}

	items := next.touch(idx.Section)
	items[idx.Item] = Slot{
		State:    Pending,
		Token:    token,
		Node:     prev.Node,
		Size:     prev.Size,
		Measured: prev.Measured,
	}
	s.snap.Store(next)
	return token, prev, nil
}

// Complete finishes the fetch owned by token. It returns the slot's current index,
// or false when the fetch was cancelled or its slot no longer exists.
func (s *Store) Complete(token string, n node.Node, size node.Size) (index.Index, bool) {
	if n == nil {
		return index.Index{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.tokens[token]
	if !ok {
		return index.Index{}, false
	}
	next := s.Snapshot().clone()
	slot := next.sections[f.idx.Section][f.idx.Item]
	if slot.State != Pending || slot.Token != token {
		return index.Index{}, false
	}
	f.cancel = nil

	items := next.touch(f.idx.Section)
	items[f.idx.Item] = Slot{State: Ready, Token: token, Node: n, Size: size, Measured: true}
	s.snap.Store(next)
	return f.idx, true
}

// Fail records a failed fetch. The slot stays Pending and is not retried; it is
// released by a later eviction, remap or reset.
func (s *Store) Fail(token string) (index.Index, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.tokens[token]
	if !ok {
		return index.Index{}, false
	}
	f.cancel = nil
	return f.idx, true
}

// Abandon gives up a pending fetch without recording a failure, so a later preload
// may start it again. The slot returns to Evicted if it still has a size or a
// retained node, otherwise to Empty.
func (s *Store) Abandon(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.tokens[token]
	if !ok {
		return false
	}
	next := s.Snapshot().clone()
	slot := next.sections[f.idx.Section][f.idx.Item]
	if slot.State != Pending || slot.Token != token {
		return false
	}
	f.cancel = nil
	if slot.Measured || slot.Node != nil {
		slot.State = Evicted
	} else {
		delete(s.tokens, token)
		slot = Slot{}
	}
	items := next.touch(f.idx.Section)
	items[f.idx.Item] = slot
	s.snap.Store(next)
	return true
}

// Evict releases idx. A pending fetch is cancelled. A Ready node keeps its place
// in the slot, with its size, until a remap or reset replaces the generation; it
// stays loaded within the retention budget and is purged beyond it.
func (s *Store) Evict(idx index.Index) error {
	return s.evict(nil, idx)
}

// EvictIn is Evict for an index of generation gen. It fails with ErrStale once the
// store has moved past gen.
func (s *Store) EvictIn(gen uint64, idx index.Index) error {
	return s.evict(&gen, idx)
}

func (s *Store) evict(gen *uint64, idx index.Index) error {
	var (
		cancel  context.CancelFunc
		purge   []node.Node
		evicted bool
		loaded  bool
	)

	s.mu.Lock()
	next := s.Snapshot().clone()
	if gen != nil && *gen != next.gen {
		s.mu.Unlock()
		return fmt.Errorf("evict %s: %w", idx, ErrStale)
	}
	if !next.shape.Contains(idx) {
		s.mu.Unlock()
		return index.ItemOutOfRange("evict", idx, next.shape.Items(idx.Section))
	}
	slot := next.sections[idx.Section][idx.Item]
	switch slot.State {
	case Pending:
		if f, ok := s.tokens[slot.Token]; ok {
			cancel = f.cancel
			f.cancel = nil
		}
		evicted = true
	case Ready:
		evicted, loaded = true, true
	}
	if evicted {
		slot.State = Evicted
		items := next.touch(idx.Section)
		items[idx.Item] = slot
		if loaded {
			if dropped, ok := s.retain(slot.Token); ok {
				if n := s.unloaded(next, dropped); n != nil {
					purge = append(purge, n)
				}
			}
		}
		s.snap.Store(next)
	}
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	purgeAll(purge)
	return nil
}

// Remap moves every slot to its new index and drops the slots the mapping removes.
// It returns the number of dropped slots that were not Empty.
func (s *Store) Remap(m Mapping) int {
	var (
		cancels []context.CancelFunc
		purge   []node.Node
		dropped int
	)

	s.mu.Lock()
	cur := s.Snapshot()
	next := newSnapshot(m.NewShape(), cur.version+1, cur.gen+1)
	cur.Each(func(old index.Index, slot Slot) bool {
		if slot.State == Empty {
			return true
		}
		target, ok := m.Target(old)
		if !ok || !next.shape.Contains(target) {
			dropped++
			if slot.Token != "" {
				if cancel := s.forget(slot.Token); cancel != nil {
					cancels = append(cancels, cancel)
				}
			}
			if slot.Node != nil {
				purge = append(purge, slot.Node)
			}
			return true
		}
		next.sections[target.Section][target.Item] = slot
		if f, ok := s.tokens[slot.Token]; ok {
			f.idx = target
		}
		return true
	})
	s.snap.Store(next)
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	purgeAll(purge)
	if dropped > 0 {
		s.logger.Debug("Dropped slots during remap", zap.Int("count", dropped))
	}
	return dropped
}

// Reset discards every slot and starts over with shape, all Empty.
func (s *Store) Reset(shape index.Shape) {
	var (
		cancels []context.CancelFunc
		purge   []node.Node
	)

	s.mu.Lock()
	cur := s.Snapshot()
	for _, f := range s.tokens {
		if f.cancel != nil {
			cancels = append(cancels, f.cancel)
		}
	}
	cur.Each(func(_ index.Index, slot Slot) bool {
		if slot.Node != nil {
			purge = append(purge, slot.Node)
		}
		return true
	})
	s.tokens = make(map[string]*fetch)
	if s.retained != nil {
		s.retained.Purge()
	}
	s.snap.Store(newSnapshot(shape, cur.version+1, cur.gen+1))
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	purgeAll(purge)
}

// forget unregisters token and returns its pending cancel func. Caller holds mu.
func (s *Store) forget(token string) context.CancelFunc {
	f, ok := s.tokens[token]
	if !ok {
		return nil
	}
	delete(s.tokens, token)
	if s.retained != nil {
		s.retained.Remove(token)
	}
	return f.cancel
}

// retain records token as holding a loaded evicted node. It returns the token
// pushed out of the budget, if any. Caller holds mu.
func (s *Store) retain(token string) (string, bool) {
	if s.retained == nil {
		return token, true
	}
	if s.retained.Contains(token) {
		s.retained.Add(token, struct{}{})
		return "", false
	}
	var (
		dropped string
		ok      bool
	)
	if s.retained.Len() >= s.retainCap {
		dropped, _, ok = s.retained.RemoveOldest()
	}
	s.retained.Add(token, struct{}{})
	return dropped, ok
}

// unloaded returns the node of the evicted slot owned by token in next, to be
// purged. The slot keeps the reference. Caller holds mu.
func (s *Store) unloaded(next *Snapshot, token string) node.Node {
	f, ok := s.tokens[token]
	if !ok {
		return nil
	}
	slot := next.sections[f.idx.Section][f.idx.Item]
	if slot.State != Evicted || slot.Token != token {
		return nil
	}
	return slot.Node
}

func purgeAll(nodes []node.Node) {
	for _, n := range nodes {
		if p, ok := n.(node.Purger); ok {
			p.Purge()
		}
	}
}
