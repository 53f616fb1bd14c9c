// Package loader registers and loads the features mounted on the HTTP control
// surface.
//
// # Feature Interface
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// # Manager
//
// Register adds features in order; LoadAll loads the enabled ones and stops at
// the first failure. Features that also implement Closer are closed in reverse
// load order by CloseAll on shutdown.
package loader
