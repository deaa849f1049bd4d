package model

// WorkHourEntry is one configured working range for a professional on one
// weekday. Times are raw "HH:MM" strings as entered in the admin console;
// malformed values are tolerated and filtered by the schedule resolver.
// More than one entry may exist per weekday (should not, but does in legacy
// data) and the resolver must cope.
type WorkHourEntry struct {
	ProfessionalID string
	Weekday        int // 0=Sunday .. 6=Saturday
	Active         bool
	Start          string
	End            string
	BreakStart     string
	BreakEnd       string
	SlotMinutes    int // 0 means unspecified
}
