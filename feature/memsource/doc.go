// Package memsource is an in-memory data source of text items.
//
// Content lives in sections of Items guarded by the source's own mutex, which is
// also what LockDataSource takes. Mutate edits the content and reports each edit
// to a collection.Committer inside the same critical section, so a concurrent
// drain never sees an edit without its command:
//
//	err := src.Mutate(ctx, view, func(e *memsource.Editor) error {
//	    return e.InsertItem(index.New(0, 0), memsource.Item{ID: "a", Body: "hello"})
//	})
package memsource
