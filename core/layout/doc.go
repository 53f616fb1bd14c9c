// Package layout maps the two-level index space onto scroll-axis positions.
//
// The view never renders anything itself; it only needs to know where each item
// starts and ends along the scroll axis to translate a viewport into an index
// interval. Linear stacks items one after another, using the measured size when
// the node store has one and a fixed estimate otherwise, so unmeasured content
// still occupies a predictable extent.
//
// Frames is an immutable snapshot of those positions:
//
//	frames := layout.NewLinear(store, 44).Frames()
//	visible := frames.Range(vp.Offset, vp.Offset+vp.Extent)
package layout
