// Package update serializes structural changes and applies them to the node store.
//
// Callers change their data source first and then describe the change with a
// Command (insert, delete, reload or move, at section or item granularity).
// Commands from any goroutine are queued in FIFO order and validated against the
// projected shape, which is the store's shape with every queued command applied.
// A command that addresses an index outside that shape is rejected with an
// index.OutOfRangeError and never reaches the queue.
//
// The Coordinator drains the queue in batches. For each batch it takes the data
// source lock, reads the current shape, simulates the queued commands on a model
// of the previous shape and compares the two. Agreement yields a Mapping from old
// to new indices that is applied to the store and handed to the Listener while the
// lock is still held. Disagreement is an InconsistentDataSourceError and halts the
// coordinator.
//
// Simulation rules, per queued entry:
//
//   - deletes and reloads address indices before the entry, inserts address
//     indices after it, and a move is a delete at its source plus an insert at
//     its destination;
//   - a single command is an entry of its own, so queued commands compose
//     sequentially;
//   - Group bundles several commands into one entry, which applies the rules
//     across the whole group (all deletes by pre-group index, all inserts by
//     post-group index);
//   - sections inserted or reloaded within a batch have no known item layout;
//     their item counts are read from the data source and item commands that
//     target them are absorbed.
//
// ReloadAll supersedes every queued command: the store is reset to the data
// source's current shape.
//
// A drain reads the data source while holding its lock, so a change made to the
// data source but not yet enqueued would be seen early. Callers that mutate from
// several goroutines should change the data source and Submit the command inside
// the data source's own critical section, then call Drain:
//
//	src.mu.Lock()
//	src.items = append(src.items, item)
//	err := coord.Submit(update.NewInsertItems(index.New(0, len(src.items)-1)))
//	src.mu.Unlock()
//	if err == nil {
//		err = coord.Drain(ctx)
//	}
package update
