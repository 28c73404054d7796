package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/iliyamo/pro-booking/internal/model"
	"github.com/iliyamo/pro-booking/internal/queue"
)

// Draft is a booking request as submitted by a user.
type Draft struct {
	ServiceID       string
	ServiceName     string
	Date            string
	TimeSlot        string
	LocationType    string
	LocationAddress string
	Instructions    string
	Price           float64
	PaymentMode     string
	AttachmentURL   string
	VendorID        string
}

// ReservationGuard creates bookings while keeping at most one live booking
// per (vendor, date, slot).  It does no locking: a cheap pre-check filters
// the common conflict and the store's unique constraint settles races.
type ReservationGuard struct {
	store    Store
	notifier Notifier
	now      func() time.Time
	newID    func() string
}

func NewReservationGuard(store Store, notifier Notifier) *ReservationGuard {
	return &ReservationGuard{store: store, notifier: notifier, now: time.Now, newID: uuid.NewString}
}

// Reserve validates the draft and creates a PENDING booking for the user.
// When the draft names a professional whose slot is already held, it
// returns ErrSlotTaken whether the pre-check or the insert caught it.
// Drafts without a professional are created unassigned and never conflict.
func (g *ReservationGuard) Reserve(ctx context.Context, user model.Actor, d Draft) (model.Booking, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "ReservationGuard.Reserve")
	defer span.End()

	b, err := g.build(user, d)
	if err != nil {
		return model.Booking{}, err
	}
	span.SetAttributes(
		attribute.String("booking.id", b.ID),
		attribute.String("booking.date", b.Date),
		attribute.String("booking.time_slot", string(b.TimeSlot)),
	)

	if b.VendorID != nil {
		_, taken, err := g.store.FindActiveBySlot(ctx, *b.VendorID, b.Date, b.TimeSlot)
		if err != nil {
			return model.Booking{}, storeErr(err)
		}
		if taken {
			span.AddEvent("slot taken at pre-check")
			return model.Booking{}, ErrSlotTaken
		}
	}

	ev := model.BookingEvent{
		BookingID: b.ID,
		Kind:      model.EventCreated,
		ToStatus:  b.Status,
		ActorID:   user.ID,
		ActorRole: user.Role,
		CreatedAt: b.CreatedAt,
	}
	if err := g.store.Create(ctx, b, ev); err != nil {
		span.RecordError(err)
		return model.Booking{}, storeErr(err)
	}
	dispatch(g.notifier, eventFor(queue.TypeBookingCreated, b, user, "", b.CreatedAt))
	return b, nil
}

func (g *ReservationGuard) build(user model.Actor, d Draft) (model.Booking, error) {
	if user.ID == "" {
		return model.Booking{}, forbidden("authenticated user required")
	}
	d.ServiceID = strings.TrimSpace(d.ServiceID)
	d.ServiceName = strings.TrimSpace(d.ServiceName)
	d.Date = strings.TrimSpace(d.Date)
	d.LocationAddress = strings.TrimSpace(d.LocationAddress)
	d.PaymentMode = strings.TrimSpace(d.PaymentMode)
	d.VendorID = strings.TrimSpace(d.VendorID)
	d.AttachmentURL = strings.TrimSpace(d.AttachmentURL)

	switch {
	case d.ServiceID == "" || d.ServiceName == "":
		return model.Booking{}, validationf("serviceId and serviceName are required")
	case d.LocationAddress == "":
		return model.Booking{}, validationf("location.address is required")
	case d.PaymentMode == "":
		return model.Booking{}, validationf("paymentMode is required")
	case d.Price < 0:
		return model.Booking{}, validationf("price must not be negative")
	}
	d.LocationType = strings.TrimSpace(d.LocationType)
	d.Instructions = strings.TrimSpace(d.Instructions)
	for _, f := range []struct {
		name, v string
		max     int
	}{
		{"userId", user.ID, maxIDLen},
		{"vendorId", d.VendorID, maxIDLen},
		{"serviceId", d.ServiceID, maxIDLen},
		{"serviceName", d.ServiceName, maxServiceNameLen},
		{"location.type", d.LocationType, maxLocationTypeLen},
		{"location.address", d.LocationAddress, maxAddressLen},
		{"paymentMode", d.PaymentMode, maxPaymentModeLen},
		{"attachmentUrl", d.AttachmentURL, maxAttachmentLen},
		{"instructions", d.Instructions, maxInstructionsLen},
	} {
		if err := checkLen(f.name, f.v, f.max); err != nil {
			return model.Booking{}, err
		}
	}
	if _, err := time.Parse(model.DateLayout, d.Date); err != nil {
		return model.Booking{}, validationf("date must be formatted YYYY-MM-DD")
	}
	slot, ok := model.ParseTimeSlot(d.TimeSlot)
	if !ok {
		return model.Booking{}, validationf("timeSlot must be one of %v", model.TimeSlots)
	}

	now := g.now().UTC()
	b := model.Booking{
		ID:              g.newID(),
		UserID:          user.ID,
		ServiceID:       d.ServiceID,
		ServiceName:     d.ServiceName,
		Date:            d.Date,
		TimeSlot:        slot,
		LocationType:    d.LocationType,
		LocationAddress: d.LocationAddress,
		Instructions:    d.Instructions,
		Price:           d.Price,
		PaymentMode:     d.PaymentMode,
		Status:          model.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if d.VendorID != "" {
		v := d.VendorID
		b.VendorID = &v
	}
	if d.AttachmentURL != "" {
		u, err := url.Parse(d.AttachmentURL)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return model.Booking{}, validationf("attachmentUrl must be an absolute URL")
		}
		a := d.AttachmentURL
		b.AttachmentURL = &a
	}
	return b, nil
}
