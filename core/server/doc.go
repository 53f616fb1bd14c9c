// Package server holds the HTTP control surface configuration.
//
// The serve command builds a Fiber app from Config and mounts the grid API on it.
// Config carries the port, the optional API key enforced by core/middleware/auth,
// the request read timeout and the viewport extent the served view starts with.
package server
