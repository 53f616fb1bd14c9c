package checks

import (
	"nodegrid/core/index"
)

// ShapeReport compares the view's shape with the data source's.
type ShapeReport struct {
	Report
	View   index.Shape `json:"view"`
	Source index.Shape `json:"source"`
	// Sections lists the sections whose item counts differ.
	Sections []int `json:"sections,omitempty"`
}

// CheckShape compares view against source.
func CheckShape(view, source index.Shape) ShapeReport {
	r := ShapeReport{Report: Report{Status: StatusOK}, View: view, Source: source}
	n := max(len(view), len(source))
	for s := 0; s < n; s++ {
		if s >= len(view) || s >= len(source) || view.Items(s) != source.Items(s) {
			r.Sections = append(r.Sections, s)
		}
	}
	if len(r.Sections) > 0 {
		r.Status = StatusMismatch
	}
	return r
}
