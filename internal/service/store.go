package service

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/pro-booking/internal/model"
	"github.com/iliyamo/pro-booking/internal/queue"
	"github.com/iliyamo/pro-booking/internal/repository"
)

// Store is the persistence contract the booking core needs.
// *repository.BookingRepo implements it.
type Store interface {
	FindActiveBySlot(ctx context.Context, vendorID, date string, slot model.TimeSlot) (string, bool, error)
	ReservedSlots(ctx context.Context, vendorID, date string) ([]model.TimeSlot, error)
	Create(ctx context.Context, b model.Booking, ev model.BookingEvent) error
	GetByID(ctx context.Context, id string) (model.Booking, error)
	UpdateStatus(ctx context.Context, id string, from, to model.Status, ev model.BookingEvent) (model.Booking, error)
	ListByUser(ctx context.Context, userID string, f repository.ListFilter) ([]model.Booking, error)
	ListByVendor(ctx context.Context, vendorID string, f repository.ListFilter) ([]model.Booking, error)
	ListEvents(ctx context.Context, bookingID string) ([]model.BookingEvent, error)
}

var _ Store = (*repository.BookingRepo)(nil)

// Notifier delivers booking events to the notification dispatcher.
type Notifier interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

const (
	notifyTimeout = 5 * time.Second
	tracerName    = "github.com/iliyamo/pro-booking/internal/service"
)

// dispatch publishes ev without blocking the request.  Failures are logged
// and otherwise ignored.
func dispatch(n Notifier, ev queue.BookingEvent) {
	if n == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := n.Publish(ctx, ev); err != nil {
			log.Printf("notify: %s booking_id=%s failed: %v", ev.Type, ev.BookingID, err)
		}
	}()
}

func eventFor(typ string, b model.Booking, actor model.Actor, reason string, at time.Time) queue.BookingEvent {
	ev := queue.BookingEvent{
		Type:       typ,
		BookingID:  b.ID,
		UserID:     b.UserID,
		ServiceID:  b.ServiceID,
		Date:       b.Date,
		TimeSlot:   string(b.TimeSlot),
		Status:     string(b.Status),
		ActorID:    actor.ID,
		ActorRole:  string(actor.Role),
		Reason:     reason,
		OccurredAt: at.UTC().Format(time.RFC3339),
	}
	if b.VendorID != nil {
		ev.VendorID = *b.VendorID
	}
	return ev
}
