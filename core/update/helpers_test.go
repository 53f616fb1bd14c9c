package update

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"nodegrid/core/datasource"
	"nodegrid/core/index"
	"nodegrid/core/node"
	"nodegrid/core/nodestore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type labelNode struct {
	label string
}

func (n labelNode) Measure(context.Context) (node.Size, error) {
	return node.Size{Height: 1}, nil
}

// refSource is both the data source under test and the ground-truth list model.
// Items that existed at the start carry a label; items created since carry "".
type refSource struct {
	mu       sync.Mutex
	sections [][]string
}

func newRefSource(shape ...int) *refSource {
	r := &refSource{sections: make([][]string, len(shape))}
	for s, n := range shape {
		r.sections[s] = make([]string, n)
		for i := range r.sections[s] {
			r.sections[s][i] = fmt.Sprintf("s%di%d", s, i)
		}
	}
	return r
}

func (r *refSource) NumberOfSections() int         { return len(r.sections) }
func (r *refSource) NumberOfItems(section int) int { return len(r.sections[section]) }
func (r *refSource) LockDataSource()               { r.mu.Lock() }
func (r *refSource) UnlockDataSource()             { r.mu.Unlock() }

func (r *refSource) NodeForItem(idx index.Index) node.Node {
	return labelNode{label: r.sections[idx.Section][idx.Item]}
}

func (r *refSource) shape() index.Shape {
	out := make(index.Shape, len(r.sections))
	for s := range r.sections {
		out[s] = len(r.sections[s])
	}
	return out
}

// mutate runs fn while readers are locked out.
func (r *refSource) mutate(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn()
}

// apply performs cmd on the list model with sequential semantics. Fresh sections
// get n new items.
func (r *refSource) apply(cmd Command, n int) {
	freshItems := func() []string { return make([]string, n) }
	switch cmd.Kind {
	case InsertSections:
		for _, s := range cmd.Sections.Ascending() {
			r.sections = append(r.sections, nil)
			copy(r.sections[s+1:], r.sections[s:])
			r.sections[s] = freshItems()
		}
	case DeleteSections:
		for _, s := range cmd.Sections.Descending() {
			r.sections = append(r.sections[:s], r.sections[s+1:]...)
		}
	case ReloadSections:
		for _, s := range cmd.Sections.Ascending() {
			r.sections[s] = freshItems()
		}
	case MoveSection:
		moved := r.sections[cmd.From.Section]
		r.sections = append(r.sections[:cmd.From.Section], r.sections[cmd.From.Section+1:]...)
		r.sections = append(r.sections, nil)
		copy(r.sections[cmd.To.Section+1:], r.sections[cmd.To.Section:])
		r.sections[cmd.To.Section] = moved
	case InsertItems:
		items := append([]index.Index(nil), cmd.Items...)
		index.Sort(items)
		for _, idx := range items {
			r.insertItem(idx, "")
		}
	case DeleteItems:
		items := append([]index.Index(nil), cmd.Items...)
		index.SortDescending(items)
		for _, idx := range items {
			r.removeItem(idx)
		}
	case ReloadItems:
		for _, idx := range cmd.Items {
			r.sections[idx.Section][idx.Item] = ""
		}
	case MoveItem:
		label := r.removeItem(cmd.From)
		r.insertItem(cmd.To, label)
	}
}

func (r *refSource) insertItem(idx index.Index, label string) {
	items := append(r.sections[idx.Section], "")
	copy(items[idx.Item+1:], items[idx.Item:])
	items[idx.Item] = label
	r.sections[idx.Section] = items
}

func (r *refSource) removeItem(idx index.Index) string {
	items := r.sections[idx.Section]
	label := items[idx.Item]
	r.sections[idx.Section] = append(items[:idx.Item], items[idx.Item+1:]...)
	return label
}

// randomCommand returns a command valid against the model's current state.
func (r *refSource) randomCommand(rng *rand.Rand) Command {
	nonEmpty := func() (int, bool) {
		var candidates []int
		for s, items := range r.sections {
			if len(items) > 0 {
				candidates = append(candidates, s)
			}
		}
		if len(candidates) == 0 {
			return 0, false
		}
		return candidates[rng.Intn(len(candidates))], true
	}
	distinct := func(limit, k int) []int {
		if k > limit {
			k = limit
		}
		return rng.Perm(limit)[:k]
	}

	for {
		sections := len(r.sections)
		switch rng.Intn(8) {
		case 0:
			k := 1 + rng.Intn(2)
			return NewInsertSections(index.Sections(distinct(sections+k, k)...))
		case 1:
			if sections > 1 {
				return NewDeleteSections(index.Sections(distinct(sections, 1+rng.Intn(2))...))
			}
		case 2:
			if sections > 0 {
				return NewReloadSections(index.Sections(rng.Intn(sections)))
			}
		case 3:
			if sections > 1 {
				return NewMoveSection(rng.Intn(sections), rng.Intn(sections))
			}
		case 4:
			if sections > 0 {
				s := rng.Intn(sections)
				k := 1 + rng.Intn(2)
				var items []index.Index
				for _, i := range distinct(len(r.sections[s])+k, k) {
					items = append(items, index.New(s, i))
				}
				return NewInsertItems(items...)
			}
		case 5:
			if s, ok := nonEmpty(); ok {
				var items []index.Index
				for _, i := range distinct(len(r.sections[s]), 1+rng.Intn(2)) {
					items = append(items, index.New(s, i))
				}
				return NewDeleteItems(items...)
			}
		case 6:
			if s, ok := nonEmpty(); ok {
				return NewReloadItems(index.New(s, rng.Intn(len(r.sections[s]))))
			}
		case 7:
			if s, ok := nonEmpty(); ok {
				from := index.New(s, rng.Intn(len(r.sections[s])))
				to := rng.Intn(sections)
				limit := len(r.sections[to])
				if to == s {
					limit--
				}
				return NewMoveItem(from, index.New(to, rng.Intn(limit+1)))
			}
		}
	}
}

// loadedStore returns a store with every item of src Ready.
func loadedStore(t *testing.T, src *refSource) *nodestore.Store {
	store, err := nodestore.New(src.shape(), nodestore.Options{})
	require.NoError(t, err)
	for s, items := range src.sections {
		for i, label := range items {
			require.NoError(t, store.Set(index.New(s, i), labelNode{label: label}, node.Size{Height: 1}))
		}
	}
	return store
}

func newProxy(src *refSource) *datasource.Proxy {
	return datasource.NewProxy(datasource.NewRef[datasource.DataSource](src), nil)
}

// assertMatchesModel checks that the store has the model's shape and that every
// Ready slot holds the node the model has at that index. With exact set, every
// labelled model item must also be Ready.
func assertMatchesModel(t *testing.T, store *nodestore.Store, src *refSource, exact bool) {
	t.Helper()
	src.mu.Lock()
	defer src.mu.Unlock()

	require.Equal(t, src.shape(), store.Shape())
	store.Snapshot().Each(func(idx index.Index, slot nodestore.Slot) bool {
		label := src.sections[idx.Section][idx.Item]
		if slot.State == nodestore.Ready {
			assert.Equal(t, label, slot.Node.(labelNode).label, "slot %s", idx)
		} else if exact {
			assert.Empty(t, label, "slot %s should hold %q", idx, label)
		}
		return true
	})
}

// recorder is a Listener that keeps every batch.
type recorder struct {
	mu      sync.Mutex
	applied []*Batch
	settled []*Batch
}

func (r *recorder) Applied(_ context.Context, b *Batch) {
	r.mu.Lock()
	r.applied = append(r.applied, b)
	r.mu.Unlock()
}

func (r *recorder) Settled(_ context.Context, b *Batch) {
	r.mu.Lock()
	r.settled = append(r.settled, b)
	r.mu.Unlock()
}

func (r *recorder) commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, b := range r.applied {
		for _, c := range b.Commands {
			out = append(out, c.String())
		}
	}
	return out
}

func sortedKeys(m map[index.Index]index.Index) []index.Index {
	out := make([]index.Index, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Less(out[b]) })
	return out
}
