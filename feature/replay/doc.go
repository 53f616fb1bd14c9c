// Package replay runs a YAML script of edits against an in-memory data source
// and a headless view, and reports what every step did to the view: the
// commands it carried, the resulting shape and how indices moved.
//
// A script looks like:
//
//	sections: 2
//	items: 5
//	steps:
//	  - edits:
//	      - op: insertItems
//	        items: [{section: 0, item: 0}]
//	        bodies: [hello]
//	  - edits:
//	      - op: deleteSections
//	        sections: [1]
//
// Each step is one mutation of the data source and lands in the view as one
// batch.
package replay
