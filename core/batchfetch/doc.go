// Package batchfetch implements the infinite-scroll trigger.
//
// A Context is Idle until the viewport comes within LeadingScreens screenfuls of
// the end of the content while scrolling forward. It then moves to Fetching and
// calls the delegate's BeginBatchFetching exactly once. The delegate appends its
// data, enqueues the matching structural updates and calls Complete. Until then
// every further trigger is ignored; a delegate that never completes leaves the
// context Fetching for good.
package batchfetch
