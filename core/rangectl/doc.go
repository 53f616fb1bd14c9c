// Package rangectl decides which items should be materialized ahead of display.
//
// The working range is the geometric window around the viewport extended by a
// number of screenfuls in each direction (see Tuning). Each call to
// Controller.Update recomputes it from scratch, diffs it against the previous
// range and hands the difference to an Executor: newly covered indices are
// preloaded, indices that fell out are evicted. Calling Update again with the same
// inputs produces an empty Delta.
//
// Materializer is the production Executor. It fetches nodes from the data source
// under the proxy lock, measures them outside the lock and publishes them to the
// node store. Tasks run on their own goroutines with bounded parallelism, or
// inline when data fetching is synchronous.
package rangectl
