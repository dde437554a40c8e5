package events

import "time"

// Event defines the contract for events published outside the process
type Event interface {
	// EventType returns the event code, used as the subject suffix
	EventType() string

	// Payload returns the data associated with the event
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// BaseEvent is a plain Event implementation
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
