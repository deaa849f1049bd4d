// Package schedule derives the effective working window for a professional
// from the weekly hour configuration. The resolver is pure and total: it
// never fails, it falls back to caller-supplied defaults whenever the
// configuration is missing or does not resolve to a positive range.
package schedule

import (
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/model"
	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/timeutil"
)

// Fallback is the window used when no usable configuration exists.
type Fallback struct {
	Start       string // HH:MM
	End         string // HH:MM
	SlotMinutes int
}

// DefaultFallback guards against callers passing a malformed fallback; the
// resolver must always hand back a usable window.
var DefaultFallback = Fallback{Start: "08:00", End: "18:00", SlotMinutes: 30}

// Window is the resolved agenda grid for one professional.
//
// HasConfig and Valid are independent on purpose: a clinic can have active
// entries that resolve to an empty range, and the UI shows a different
// warning for "invalid configuration" than for "no configuration".
type Window struct {
	StartMin    int
	EndMin      int
	SlotMinutes int
	HasConfig   bool
	Valid       bool
}

func (w Window) Start() string { return timeutil.FormatMinutes(w.StartMin) }
func (w Window) End() string   { return timeutil.FormatMinutes(w.EndMin) }

// Contains reports whether [startMin, endMin) fits inside the window.
func (w Window) Contains(startMin, endMin int) bool {
	return startMin >= w.StartMin && endMin <= w.EndMin
}

// Resolve computes the single global window spanning all active entries.
//
// Every active entry contributes candidate start boundaries {Start,
// BreakStart} and end boundaries {End, BreakEnd}; malformed values are
// dropped. The window is [min(starts), max(ends)], the widest span, not a
// per-weekday range. The agenda grid renders one column layout for the whole
// week, so break fields widen the window rather than splitting it; that
// matches how the hours screen has always behaved and callers depend on it.
func Resolve(entries []model.WorkHourEntry, fb Fallback) Window {
	w := Window{}

	startMin, endMin := -1, -1
	for _, e := range entries {
		if !e.Active {
			continue
		}
		w.HasConfig = true
		for _, s := range []string{e.Start, e.BreakStart} {
			if min, ok := timeutil.ParseHHMM(s); ok {
				if startMin < 0 || min < startMin {
					startMin = min
				}
			}
		}
		for _, s := range []string{e.End, e.BreakEnd} {
			if min, ok := timeutil.ParseHHMM(s); ok {
				if min > endMin {
					endMin = min
				}
			}
		}
		if w.SlotMinutes == 0 && e.SlotMinutes > 0 {
			w.SlotMinutes = e.SlotMinutes
		}
	}

	w.Valid = startMin >= 0 && endMin > startMin
	if !w.Valid {
		startMin, endMin = fallbackWindow(fb)
	}
	w.StartMin = startMin
	w.EndMin = endMin

	if w.SlotMinutes == 0 {
		w.SlotMinutes = fb.SlotMinutes
	}
	if w.SlotMinutes <= 0 {
		w.SlotMinutes = DefaultFallback.SlotMinutes
	}
	return w
}

func fallbackWindow(fb Fallback) (int, int) {
	start, okStart := timeutil.ParseHHMM(fb.Start)
	end, okEnd := timeutil.ParseHHMM(fb.End)
	if !okStart || !okEnd || end <= start {
		start, _ = timeutil.ParseHHMM(DefaultFallback.Start)
		end, _ = timeutil.ParseHHMM(DefaultFallback.End)
	}
	return start, end
}
