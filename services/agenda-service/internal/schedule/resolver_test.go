package schedule

import (
	"testing"

	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/model"
)

var fb = Fallback{Start: "09:00", End: "17:00", SlotMinutes: 20}

func TestResolveNoConfigFallsBack(t *testing.T) {
	w := Resolve(nil, fb)
	if w.HasConfig {
		t.Fatalf("expected HasConfig=false")
	}
	if w.Valid {
		t.Fatalf("expected Valid=false with no config")
	}
	if w.Start() != "09:00" || w.End() != "17:00" || w.SlotMinutes != 20 {
		t.Fatalf("expected exact fallback window, got %s-%s slot=%d", w.Start(), w.End(), w.SlotMinutes)
	}
}

func TestResolveInvalidRangeKeepsHasConfig(t *testing.T) {
	entries := []model.WorkHourEntry{
		{Weekday: 1, Active: true, Start: "12:00", End: "08:00"},
	}
	w := Resolve(entries, fb)
	if !w.HasConfig {
		t.Fatalf("expected HasConfig=true: active entries exist")
	}
	if w.Valid {
		t.Fatalf("expected Valid=false: end does not exceed start")
	}
	if w.Start() != "09:00" || w.End() != "17:00" {
		t.Fatalf("expected fallback window, got %s-%s", w.Start(), w.End())
	}
}

func TestResolveWidestSpanIncludesBreakFields(t *testing.T) {
	entries := []model.WorkHourEntry{
		{Weekday: 1, Active: true, Start: "08:00", End: "12:00", BreakStart: "13:00", BreakEnd: "18:00"},
	}
	w := Resolve(entries, fb)
	if !w.HasConfig || !w.Valid {
		t.Fatalf("expected usable config, got %+v", w)
	}
	// Break boundaries widen the window: the grid renders one global span.
	if w.Start() != "08:00" || w.End() != "18:00" {
		t.Fatalf("expected 08:00-18:00, got %s-%s", w.Start(), w.End())
	}
}

func TestResolveSpansAcrossEntries(t *testing.T) {
	entries := []model.WorkHourEntry{
		{Weekday: 1, Active: true, Start: "10:00", End: "14:00"},
		{Weekday: 3, Active: true, Start: "07:30", End: "12:00", SlotMinutes: 15},
		{Weekday: 5, Active: false, Start: "06:00", End: "23:00", SlotMinutes: 45},
	}
	w := Resolve(entries, fb)
	if w.Start() != "07:30" || w.End() != "14:00" {
		t.Fatalf("expected widest span 07:30-14:00 over active entries, got %s-%s", w.Start(), w.End())
	}
	if w.SlotMinutes != 15 {
		t.Fatalf("expected slot from first entry specifying one, got %d", w.SlotMinutes)
	}
}

func TestResolveIgnoresMalformedTimes(t *testing.T) {
	entries := []model.WorkHourEntry{
		{Weekday: 2, Active: true, Start: "garbage", End: "16:00", BreakStart: "xx", BreakEnd: ""},
		{Weekday: 4, Active: true, Start: "08:15", End: "25:99"},
	}
	w := Resolve(entries, fb)
	if !w.Valid {
		t.Fatalf("expected valid window from the parsable boundaries")
	}
	if w.Start() != "08:15" || w.End() != "16:00" {
		t.Fatalf("expected 08:15-16:00, got %s-%s", w.Start(), w.End())
	}
}

func TestResolveAllMalformedFallsBack(t *testing.T) {
	entries := []model.WorkHourEntry{
		{Weekday: 2, Active: true, Start: "nope", End: "also nope"},
	}
	w := Resolve(entries, fb)
	if !w.HasConfig || w.Valid {
		t.Fatalf("expected HasConfig=true Valid=false, got %+v", w)
	}
	if w.Start() != "09:00" || w.End() != "17:00" {
		t.Fatalf("expected fallback window, got %s-%s", w.Start(), w.End())
	}
}

func TestResolveGuardsMalformedFallback(t *testing.T) {
	w := Resolve(nil, Fallback{Start: "bad", End: "worse"})
	if w.EndMin <= w.StartMin {
		t.Fatalf("resolver must always return a usable window, got %+v", w)
	}
	if w.SlotMinutes <= 0 {
		t.Fatalf("slot minutes must be positive, got %d", w.SlotMinutes)
	}
}
