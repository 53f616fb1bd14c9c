// Package collection is the host-facing API of nodegrid.
//
// A View connects a data source, an optional delegate and a host surface. It owns
// one node store, one update coordinator, one working-range controller and one
// batch-fetch context, and wires them as follows:
//
//   - structural mutations (InsertSections, DeleteItems, PerformBatchUpdates, ...)
//     go to the coordinator, which remaps the store under the data source lock and
//     posts the batch to the surface;
//   - SetViewport recomputes the working range, which preloads nodes ahead of the
//     viewport and evicts the ones left behind, reports display changes to the
//     delegate and checks the batch-fetch threshold;
//   - NodeForItem, CalculatedSize and VisibleNodes read the store without locking.
//
// Every call into the surface and the delegate runs on a single apply goroutine,
// in the order the originating changes happened.
//
// Usage:
//
//	view, err := collection.New(ctx, source, surface, collection.DefaultConfig(),
//		collection.WithDelegate(delegate), collection.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	defer view.Close()
//
//	view.SetViewport(ctx, rangectl.Viewport{Offset: 0, Extent: 600})
//	err = view.InsertItems(ctx, index.New(0, 0))
package collection
