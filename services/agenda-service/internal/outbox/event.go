package outbox

// Event is the domain event envelope written to the outbox table.
// The Kafka topic name equals EventType (event per topic).
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// Topics emitted by agenda-service.
const (
	EventAppointmentBooked      = "agenda.appointment.booked.v1"
	EventAppointmentRescheduled = "agenda.appointment.rescheduled.v1"
	EventAppointmentCanceled    = "agenda.appointment.canceled.v1"
	EventJourneyUpdated         = "agenda.journey.updated.v1"
)
