package model

import "time"

// EventKind classifies an audit trail entry.
type EventKind string

const (
	EventCreated    EventKind = "CREATED"
	EventTransition EventKind = "TRANSITION"
	EventCancel     EventKind = "CANCEL"
	EventOverride   EventKind = "OVERRIDE"
)

// BookingEvent is one row of a booking's audit trail (booking_events).
// FromStatus is nil for the creation entry.
type BookingEvent struct {
	ID         uint64    `json:"id"`
	BookingID  string    `json:"bookingId"`
	Kind       EventKind `json:"kind"`
	FromStatus *Status   `json:"fromStatus,omitempty"`
	ToStatus   Status    `json:"toStatus"`
	ActorID    string    `json:"actorId"`
	ActorRole  Role      `json:"actorRole"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
