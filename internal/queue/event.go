// Package queue defines message payloads exchanged over the message broker
// and the broker client used to deliver them.
package queue

// Event types published on the booking events queue.
const (
	TypeBookingCreated       = "booking.created"
	TypeBookingStatusChanged = "booking.status_changed"
	TypeBookingCancelled     = "booking.cancelled"
)

// BookingEvent is published after a booking is created or changes status.
// It carries enough for the notification dispatcher to address the user
// and the professional without querying the booking store.
type BookingEvent struct {
	Type       string `json:"type"`
	BookingID  string `json:"booking_id"`
	UserID     string `json:"user_id"`
	VendorID   string `json:"vendor_id,omitempty"`
	ServiceID  string `json:"service_id"`
	Date       string `json:"date"`
	TimeSlot   string `json:"time_slot"`
	Status     string `json:"status"`
	ActorID    string `json:"actor_id"`
	ActorRole  string `json:"actor_role"`
	Reason     string `json:"reason,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
