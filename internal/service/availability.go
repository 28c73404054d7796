package service

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/pro-booking/internal/model"
)

// Availability answers which slots a professional already has on a date.
// The answer is advisory (it drives slot graying in clients) and may be
// stale against concurrent writers; ReservationGuard is the authority.
type Availability struct {
	store Store
}

func NewAvailability(store Store) *Availability { return &Availability{store: store} }

// ReservedSlots returns the slots held by non-cancelled bookings for
// (vendorID, date).  Both arguments are required and date must be
// YYYY-MM-DD; invalid input is rejected before the store is touched.
func (a *Availability) ReservedSlots(ctx context.Context, vendorID, date string) ([]model.TimeSlot, error) {
	vendorID = strings.TrimSpace(vendorID)
	date = strings.TrimSpace(date)
	if vendorID == "" || date == "" {
		return nil, validationf("vendorId and date are required")
	}
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return nil, validationf("date must be formatted YYYY-MM-DD")
	}
	slots, err := a.store.ReservedSlots(ctx, vendorID, date)
	if err != nil {
		return nil, storeErr(err)
	}
	return slots, nil
}
