// Package datasource wraps the external data source behind a scoped lock protocol.
//
// Every read of section counts, item counts or nodes goes through a Handle obtained
// from Proxy.Acquire. Acquiring calls the collaborator's LockDataSource hook and
// releasing calls UnlockDataSource, so the application can hold off its own
// mutations while nodegrid reads a consistent shape.
//
// # Reentrancy
//
// The handle is recorded in the context returned by Acquire. Acquiring again with
// that context (the same logical operation) fails with a *ReentrantLockError instead
// of deadlocking. This is a programming error and is never retried.
//
// # Non-owning References
//
// Collaborators are held through Ref, which never extends their lifetime. Once a
// Ref is detached (or the collaborator reports it is no longer alive) every call
// routed through it is skipped.
//
// # Usage
//
//	proxy := datasource.NewProxy(datasource.NewRef[datasource.DataSource](src), logger)
//	err := proxy.Do(ctx, func(ctx context.Context, h *datasource.Handle) error {
//	    shape, err := h.Shape()
//	    ...
//	})
package datasource
