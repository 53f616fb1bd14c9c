package checks

import (
	"fmt"

	"nodegrid/core/index"
	"nodegrid/core/nodestore"
)

// SlotReader reads the slot state of a view.
type SlotReader interface {
	Shape() index.Shape
	Slot(idx index.Index) (nodestore.Slot, error)
}

// SlotReport counts slots per state and lists the ones breaking the rules.
type SlotReport struct {
	Report
	Counts map[string]int `json:"counts"`
	// Unavailable lists ready slots without a measured node.
	Unavailable []index.Index `json:"unavailable,omitempty"`
	// Stray lists ready slots outside the working range.
	Stray []index.Index `json:"stray,omitempty"`
}

// CheckSlots walks every slot of r. inRange reports working range membership.
func CheckSlots(r SlotReader, inRange func(index.Index) bool) (SlotReport, error) {
	rep := SlotReport{Report: Report{Status: StatusOK}, Counts: make(map[string]int)}
	shape := r.Shape()
	for s, n := range shape {
		for i := 0; i < n; i++ {
			idx := index.New(s, i)
			slot, err := r.Slot(idx)
			if err != nil {
				return rep, fmt.Errorf("read slot %s: %w", idx, err)
			}
			rep.Counts[slot.State.String()]++
			if slot.State != nodestore.Ready {
				continue
			}
			if !slot.Available() {
				rep.Unavailable = append(rep.Unavailable, idx)
			}
			if !inRange(idx) {
				rep.Stray = append(rep.Stray, idx)
			}
		}
	}
	switch {
	case len(rep.Unavailable) > 0:
		rep.Status = StatusMismatch
	case len(rep.Stray) > 0:
		rep.Status = StatusWarning
	}
	return rep, nil
}
