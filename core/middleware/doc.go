// Package middleware groups the Fiber middleware of the HTTP control surface.
//
// # Components
//
//   - auth: API key validation for the grid routes.
//   - rayid: a request id (ray id) per request, stored for logger.WithRayID and
//     echoed in the X-Ray-ID response header.
//
// rayid must be registered first so every later log line can be correlated.
package middleware
