// Package gridapi exposes a collection view over HTTP.
//
// # Routes
//
//   - POST /grid/commands: apply edits to the data source and the view
//   - POST /grid/viewport: move or resize the viewport
//   - GET  /grid/visible: the ready nodes inside the viewport
//   - GET  /grid/nodes/:section/:item: one slot, with its content when ready
//   - POST /grid/batch/complete: finish the outstanding batch fetch
//   - GET  /grid/state: shape, viewport, working range and batch fetch state
//
// Edits need a data source that can be edited in place (memsource, filesource).
// Without one the commands route answers 501.
//
// Delegate is the view delegate the served view runs with. It never fetches by
// itself: a batch fetch stays outstanding until a client appends content through
// /grid/commands and completes it.
package gridapi
