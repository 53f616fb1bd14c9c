// Package nodestore holds the authoritative mapping from (section, item) to node slots.
//
// # Slots
//
// Every index has exactly one Slot in one of four states:
//   - Empty: nothing requested yet.
//   - Pending: a materialization task identified by a fetch token is in flight.
//   - Ready: the node is measured and may be displayed.
//   - Evicted: the index left the working range. The node and its measured size stay
//     in the slot until the generation ends, so the data source is asked for an index
//     at most once per generation. Only a bounded number of evicted nodes stay loaded;
//     the rest are purged.
//
// A generation ends with Remap or Reset. Writes tagged with a generation (BeginIn,
// EvictIn) fail with ErrStale once it has ended.
//
// # Concurrency
//
// Reads go through an immutable Snapshot that is swapped atomically, so readers never
// block and never see a half-applied remap. Writes are serialized by an internal mutex.
// Completions are matched by token rather than index, so a task that finishes after
// its index moved lands on the right slot, and one whose slot was dropped is discarded.
package nodestore
