package model

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a booking.  The same values are stored
// in the bookings.status column and returned by the API; display casing is
// left to clients.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Statuses lists every valid status in lifecycle order.
var Statuses = []Status{StatusPending, StatusAccepted, StatusActive, StatusCompleted, StatusCancelled}

// ParseStatus normalizes raw input (trimmed, upper-cased) and reports
// whether it names a known status.
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	for _, known := range Statuses {
		if s == known {
			return s, true
		}
	}
	return "", false
}

// Terminal reports whether no further transition may leave s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// TimeSlot is one of the fixed day-part intervals a professional can be
// booked for.
type TimeSlot string

// TimeSlots is the slot enumeration shared with clients, in day order.
var TimeSlots = []TimeSlot{"09:00 AM", "11:00 AM", "01:00 PM", "03:00 PM", "05:00 PM", "07:00 PM"}

// ParseTimeSlot reports whether raw is exactly one of TimeSlots.
func ParseTimeSlot(raw string) (TimeSlot, bool) {
	for _, ts := range TimeSlots {
		if string(ts) == raw {
			return ts, true
		}
	}
	return "", false
}

// StartOn returns the wall-clock start of the slot on the given date
// (YYYY-MM-DD) in loc.
func (t TimeSlot) StartOn(date string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" 03:04 PM", date+" "+string(t), loc)
}

// DateLayout is the wire and storage format of booking dates.
const DateLayout = "2006-01-02"

// Booking is a customer's request for a professional on a date and slot.
// Bookings are never deleted; cancellation is a terminal status.
// VendorID is nil while unassigned and, together with Date and TimeSlot,
// forms the reservation key.  Price is an opaque, already-computed amount.
type Booking struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	VendorID        *string   `json:"vendorId"`
	ServiceID       string    `json:"serviceId"`
	ServiceName     string    `json:"serviceName"`
	Date            string    `json:"date"`
	TimeSlot        TimeSlot  `json:"timeSlot"`
	LocationType    string    `json:"locationType"`
	LocationAddress string    `json:"locationAddress"`
	Instructions    string    `json:"instructions"`
	Price           float64   `json:"price"`
	PaymentMode     string    `json:"paymentMode"`
	AttachmentURL   *string   `json:"attachmentUrl,omitempty"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// AssignedTo reports whether the booking is assigned to vendorID.
func (b Booking) AssignedTo(vendorID string) bool {
	return b.VendorID != nil && *b.VendorID == vendorID
}
