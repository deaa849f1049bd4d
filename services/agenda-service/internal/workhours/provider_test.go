package workhours

import "testing"

func TestParseUpdateEvent(t *testing.T) {
	payload := []byte(`{
		"professional_id": "prof-1",
		"weekday": 2,
		"active": true,
		"start": "08:00",
		"end": "18:00",
		"break_start": "12:00",
		"break_end": "13:00",
		"slot_minutes": 30
	}`)

	evt, err := ParseUpdateEvent(payload)
	if err != nil {
		t.Fatalf("ParseUpdateEvent: %v", err)
	}
	if evt.ProfessionalID != "prof-1" || evt.Weekday != 2 || !evt.Active {
		t.Fatalf("unexpected event: %+v", evt)
	}

	entry := evt.Entry()
	if entry.Start != "08:00" || entry.BreakEnd != "13:00" || entry.SlotMinutes != 30 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestParseUpdateEventKeepsMalformedTimes(t *testing.T) {
	evt, err := ParseUpdateEvent([]byte(`{"professional_id":"p","weekday":0,"start":"25:99"}`))
	if err != nil {
		t.Fatalf("ParseUpdateEvent: %v", err)
	}
	if evt.Start != "25:99" {
		t.Fatalf("expected raw time preserved, got %q", evt.Start)
	}
}

func TestParseUpdateEventRejectsBadIdentity(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"not json", `{`},
		{"missing professional", `{"weekday":1}`},
		{"blank professional", `{"professional_id":"  ","weekday":1}`},
		{"weekday too low", `{"professional_id":"p","weekday":-1}`},
		{"weekday too high", `{"professional_id":"p","weekday":7}`},
	}
	for _, tc := range cases {
		if _, err := ParseUpdateEvent([]byte(tc.payload)); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}
