package model

import "time"

// Status is the closed set of appointment statuses. Legacy string values coming
// from older records are normalized by journey.StageFromStatus, never here.
type Status string

const (
	StatusScheduled            Status = "scheduled"
	StatusConfirmed            Status = "confirmed"
	StatusAwaitingConfirmation Status = "awaiting-confirmation"
	StatusLate                 Status = "late"
	StatusCheckedIn            Status = "checked-in"
	StatusInConsultingRoom     Status = "in-consulting-room"
	StatusFinished             Status = "finished"
	StatusCanceled             Status = "canceled"
	StatusNoShow               Status = "no-show"
)

// Appointment is a booked agenda slot. Times are minutes since midnight on
// Date (half-open interval [StartMin, EndMin)). PatientID may be empty for
// CRM leads booked before registration.
type Appointment struct {
	ID             string
	Date           string // YYYY-MM-DD
	StartMin       int
	EndMin         int
	ProfessionalID string
	RoomID         string
	PatientID      string
	Status         Status
	SlotCapacity   int

	CheckedInAt  *time.Time
	CalledAt     *time.Time
	StartedAt    *time.Time
	FinishedAt   *time.Time
	CanceledAt   *time.Time
	CancelReason string
	CanceledBy   string

	CreatedAt time.Time
}

// Block is a resource reservation with no patient (maintenance, lunch cover,
// equipment downtime). It occupies its resource like a capacity-1 appointment.
type Block struct {
	ID             string
	Date           string
	StartMin       int
	EndMin         int
	ProfessionalID string
	RoomID         string
	Reason         string
	CreatedAt      time.Time
}

// NormalizeSlotCapacity clamps any stored capacity to the supported set {1, 2}.
// Parsing is permissive: anything that is not exactly 2 means a normal slot.
func NormalizeSlotCapacity(v int) int {
	if v == 2 {
		return 2
	}
	return 1
}

// ResourceKey scopes conflict and capacity checks to one (professional, room)
// pair. An appointment without a room still occupies the professional.
type ResourceKey struct {
	ProfessionalID string
	RoomID         string
}

const noRoom = "no-room"

func NewResourceKey(professionalID, roomID string) ResourceKey {
	if roomID == "" {
		roomID = noRoom
	}
	return ResourceKey{ProfessionalID: professionalID, RoomID: roomID}
}

func (k ResourceKey) String() string {
	return k.ProfessionalID + "|" + k.RoomID
}

func (a Appointment) Resource() ResourceKey {
	return NewResourceKey(a.ProfessionalID, a.RoomID)
}

func (b Block) Resource() ResourceKey {
	return NewResourceKey(b.ProfessionalID, b.RoomID)
}
