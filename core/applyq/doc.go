// Package applyq runs surface calls one at a time, in the order they were posted.
//
// The host surface is only ever touched from the queue's goroutine, so surface
// implementations need no locking of their own. Post never blocks, which lets
// the update pipeline post while it holds the data source lock. Sync is a
// barrier for tests and shutdown.
package applyq
