package conflict

import (
	"testing"

	"github.com/paaulosilvaassis/loveodonto-sub003/services/agenda-service/internal/model"
)

func item(id, prof, room string, startMin, endMin, capacity int) Item {
	return Item{
		ID:       id,
		Resource: model.NewResourceKey(prof, room),
		StartMin: startMin,
		EndMin:   endMin,
		Capacity: capacity,
	}
}

func TestCanPlaceEmptyAgenda(t *testing.T) {
	d := CanPlace(nil, item("b", "p1", "r1", 600, 660, 1), "")
	if !d.OK {
		t.Fatalf("expected ok on empty agenda, got %q", d.Reason)
	}
}

func TestCanPlaceOccupiedSlotNeedsFitIn(t *testing.T) {
	existing := []Item{item("a", "p1", "r1", 600, 660, 1)}

	// 10:30-11:30 over an occupied 10:00-11:00, normal capacity: rejected.
	d := CanPlace(existing, item("b", "p1", "r1", 630, 690, 1), "")
	if d.OK {
		t.Fatalf("expected rejection for capacity-1 candidate")
	}
	if d.Reason != ReasonSlotTaken {
		t.Fatalf("unexpected reason %q", d.Reason)
	}

	// Same candidate with fit-in enabled: accepted.
	d = CanPlace(existing, item("b", "p1", "r1", 630, 690, 2), "")
	if !d.OK {
		t.Fatalf("expected fit-in candidate to be accepted, got %q", d.Reason)
	}
}

func TestCanPlaceNeverAdmitsThirdOccupant(t *testing.T) {
	existing := []Item{
		item("a", "p1", "r1", 600, 660, 1),
		item("b", "p1", "r1", 600, 660, 2),
	}
	d := CanPlace(existing, item("c", "p1", "r1", 600, 660, 2), "")
	if d.OK {
		t.Fatalf("expected rejection of third occupant regardless of capacity")
	}
	if d.Reason != ReasonLimitReached {
		t.Fatalf("reason must mention the limit of 2, got %q", d.Reason)
	}
}

func TestCanPlaceDisjointResources(t *testing.T) {
	existing := []Item{
		item("a", "p1", "r1", 600, 660, 1),
		item("b", "p2", "r1", 600, 660, 1),
		item("c", "p1", "r2", 600, 660, 1),
	}
	// Same professional, different room: different resource key.
	d := CanPlace(existing, item("d", "p1", "r3", 600, 660, 1), "")
	if !d.OK {
		t.Fatalf("disjoint resource keys must never conflict, got %q", d.Reason)
	}
	// No room at all maps to its own key.
	d = CanPlace(existing, item("e", "p3", "", 600, 660, 1), "")
	if !d.OK {
		t.Fatalf("expected ok for unrelated professional, got %q", d.Reason)
	}
}

func TestCanPlaceTouchingBoundaries(t *testing.T) {
	existing := []Item{item("a", "p1", "r1", 600, 660, 1)}
	d := CanPlace(existing, item("b", "p1", "r1", 660, 720, 1), "")
	if !d.OK {
		t.Fatalf("back-to-back appointments must not conflict, got %q", d.Reason)
	}
}

func TestCanPlaceExcludeIDForEdits(t *testing.T) {
	existing := []Item{item("a", "p1", "r1", 600, 660, 1)}
	// Editing "a" in place: its own row must not count against it.
	d := CanPlace(existing, item("a", "p1", "r1", 615, 675, 1), "a")
	if !d.OK {
		t.Fatalf("edit-in-place must exclude the item itself, got %q", d.Reason)
	}
}

func TestCanPlaceAsymmetricFitIn(t *testing.T) {
	// The existing occupant opted into fit-in, the candidate did not.
	// Only the candidate's capacity authorizes doubling up.
	existing := []Item{item("a", "p1", "r1", 600, 660, 2)}
	d := CanPlace(existing, item("b", "p1", "r1", 600, 660, 1), "")
	if d.OK {
		t.Fatalf("candidate without fit-in must be rejected even if occupant has capacity 2")
	}
}

func TestCanPlaceNormalizesCapacity(t *testing.T) {
	existing := []Item{item("a", "p1", "r1", 600, 660, 1)}
	// Garbage capacities normalize to 1, never to fit-in.
	for _, capacity := range []int{0, -1, 3, 99} {
		d := CanPlace(existing, item("b", "p1", "r1", 600, 660, capacity), "")
		if d.OK {
			t.Fatalf("capacity %d must normalize to 1 and be rejected", capacity)
		}
	}
}

func TestBlockParticipatesAsCapacityOne(t *testing.T) {
	b := model.Block{ID: "blk", Date: "2026-02-02", StartMin: 600, EndMin: 660, ProfessionalID: "p1", RoomID: "r1"}
	existing := []Item{BlockItem(b)}
	d := CanPlace(existing, item("b", "p1", "r1", 630, 690, 1), "")
	if d.OK {
		t.Fatalf("block must occupy the slot like a capacity-1 appointment")
	}
}
