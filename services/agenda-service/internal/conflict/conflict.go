// Package conflict decides whether a candidate appointment may occupy a
// resource. It is the only place the concurrency cap lives; the lane layout
// engine renders against the same constant so the two can never drift apart.
package conflict

import (
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/model"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/timeutil"
)

// MaxConcurrent caps how many items may occupy one resource key at the same
// time. The second occupant requires an explicit fit-in (capacity 2) on the
// candidate; a third is never allowed.
const MaxConcurrent = 2

// Item is the value view of anything occupying agenda time: appointments and
// blocks alike. Blocks always carry capacity 1.
type Item struct {
	ID       string
	Resource model.ResourceKey
	StartMin int
	EndMin   int
	Capacity int
}

// Decision is returned as data, never as an error, so callers can surface
// Reason inline next to the slot being edited.
type Decision struct {
	OK     bool
	Reason string
}

const (
	ReasonLimitReached = "fit-in limit reached (max 2 concurrent bookings per professional/room)"
	ReasonSlotTaken    = "slot occupied; enable fit-in to allow two concurrent appointments"
)

// CanPlace reports whether candidate may be booked given the existing items
// on the same date. excludeID skips one existing item, used when editing an
// appointment in place.
//
// Only the candidate's capacity authorizes doubling up: a fit-in is an
// explicit opt-in by the booking being made, and the first occupant's own
// capacity is deliberately not consulted.
func CanPlace(existing []Item, candidate Item, excludeID string) Decision {
	capacity := model.NormalizeSlotCapacity(candidate.Capacity)

	occupied := 0
	for _, it := range existing {
		if excludeID != "" && it.ID == excludeID {
			continue
		}
		if it.Resource != candidate.Resource {
			continue
		}
		if !timeutil.Overlaps(it.StartMin, it.EndMin, candidate.StartMin, candidate.EndMin) {
			continue
		}
		occupied++
	}

	if occupied >= MaxConcurrent {
		return Decision{OK: false, Reason: ReasonLimitReached}
	}
	if occupied == 1 && capacity < 2 {
		return Decision{OK: false, Reason: ReasonSlotTaken}
	}
	return Decision{OK: true}
}

// AppointmentItem adapts an appointment for conflict checks.
func AppointmentItem(a model.Appointment) Item {
	return Item{
		ID:       a.ID,
		Resource: a.Resource(),
		StartMin: a.StartMin,
		EndMin:   a.EndMin,
		Capacity: model.NormalizeSlotCapacity(a.SlotCapacity),
	}
}

// BlockItem adapts a block; blocks never opt into fit-in.
func BlockItem(b model.Block) Item {
	return Item{
		ID:       b.ID,
		Resource: b.Resource(),
		StartMin: b.StartMin,
		EndMin:   b.EndMin,
		Capacity: 1,
	}
}
