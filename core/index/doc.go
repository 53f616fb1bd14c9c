// Package index defines the two-level (section, item) index space shared by every
// nodegrid component.
//
// # Ordering
//
// Indices are ordered lexicographically: first by section, then by item. Sort and
// SortDescending order slices of indices in place, which is how batched deletes
// (descending) and inserts (ascending) are sequenced by the update coordinator.
//
// # Section Sets
//
// SectionSet is an ordered set of non-negative section numbers backed by a roaring
// bitmap. It is the argument type of every section-level mutation.
//
//	set := index.Sections(2, 3)
//	for _, s := range set.Ascending() {
//	    fmt.Println(s)
//	}
package index
