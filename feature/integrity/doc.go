// Package integrity checks that a served view agrees with its data source and
// its backing stores.
//
// # Checks Provided
//
//   - Shape: the view's section/item counts match the data source once every
//     queued command has been applied.
//   - Slots: every ready slot holds a measured node and lies inside the working
//     range; pending and evicted slots are counted.
//   - Storage: the object bucket exists and lists under the prefix (object source).
//   - Schema: the section and item tables carry the columns the sql source reads.
//
// Storage and Schema are skipped when the service has no client or database.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/shape : Runs the shape check.
//   - GET /integrity/slots : Runs the slot check.
//   - GET /integrity/storage : Runs the storage check.
//   - GET /integrity/schema : Runs the schema check.
package integrity
