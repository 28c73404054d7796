package service

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/pro-booking/internal/model"
	"github.com/iliyamo/pro-booking/internal/queue"
	"github.com/iliyamo/pro-booking/internal/repository"
)

type fakeStore struct {
	findActiveFn   func(ctx context.Context, vendorID, date string, slot model.TimeSlot) (string, bool, error)
	reservedFn     func(ctx context.Context, vendorID, date string) ([]model.TimeSlot, error)
	createFn       func(ctx context.Context, b model.Booking, ev model.BookingEvent) error
	getFn          func(ctx context.Context, id string) (model.Booking, error)
	updateStatusFn func(ctx context.Context, id string, from, to model.Status, ev model.BookingEvent) (model.Booking, error)
	listUserFn     func(ctx context.Context, userID string, f repository.ListFilter) ([]model.Booking, error)
	listVendorFn   func(ctx context.Context, vendorID string, f repository.ListFilter) ([]model.Booking, error)
	eventsFn       func(ctx context.Context, bookingID string) ([]model.BookingEvent, error)
}

func (f fakeStore) FindActiveBySlot(ctx context.Context, vendorID, date string, slot model.TimeSlot) (string, bool, error) {
	if f.findActiveFn == nil {
		return "", false, nil
	}
	return f.findActiveFn(ctx, vendorID, date, slot)
}

func (f fakeStore) ReservedSlots(ctx context.Context, vendorID, date string) ([]model.TimeSlot, error) {
	if f.reservedFn == nil {
		return []model.TimeSlot{}, nil
	}
	return f.reservedFn(ctx, vendorID, date)
}

func (f fakeStore) Create(ctx context.Context, b model.Booking, ev model.BookingEvent) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, b, ev)
}

func (f fakeStore) GetByID(ctx context.Context, id string) (model.Booking, error) {
	if f.getFn == nil {
		return model.Booking{}, repository.ErrNotFound
	}
	return f.getFn(ctx, id)
}

func (f fakeStore) UpdateStatus(ctx context.Context, id string, from, to model.Status, ev model.BookingEvent) (model.Booking, error) {
	if f.updateStatusFn == nil {
		return model.Booking{}, repository.ErrNotFound
	}
	return f.updateStatusFn(ctx, id, from, to, ev)
}

func (f fakeStore) ListByUser(ctx context.Context, userID string, lf repository.ListFilter) ([]model.Booking, error) {
	if f.listUserFn == nil {
		return []model.Booking{}, nil
	}
	return f.listUserFn(ctx, userID, lf)
}

func (f fakeStore) ListByVendor(ctx context.Context, vendorID string, lf repository.ListFilter) ([]model.Booking, error) {
	if f.listVendorFn == nil {
		return []model.Booking{}, nil
	}
	return f.listVendorFn(ctx, vendorID, lf)
}

func (f fakeStore) ListEvents(ctx context.Context, bookingID string) ([]model.BookingEvent, error) {
	if f.eventsFn == nil {
		return []model.BookingEvent{}, nil
	}
	return f.eventsFn(ctx, bookingID)
}

// recordingNotifier collects published events.  Publishing happens on a
// goroutine, so tests read through wait.
type recordingNotifier struct {
	mu     sync.Mutex
	events []queue.BookingEvent
	ch     chan struct{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{ch: make(chan struct{}, 16)}
}

func (n *recordingNotifier) Publish(_ context.Context, ev queue.BookingEvent) error {
	n.mu.Lock()
	n.events = append(n.events, ev)
	n.mu.Unlock()
	n.ch <- struct{}{}
	return nil
}

// wait blocks until one more event arrives or a second passes.
func (n *recordingNotifier) wait() (queue.BookingEvent, bool) {
	select {
	case <-n.ch:
	case <-time.After(time.Second):
		return queue.BookingEvent{}, false
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.events[len(n.events)-1], true
}

var (
	alice  = model.Actor{ID: "user-alice", Role: model.RoleUser}
	bob    = model.Actor{ID: "user-bob", Role: model.RoleUser}
	vendor = model.Actor{ID: "vendor-1", Role: model.RoleVendor}
	other  = model.Actor{ID: "vendor-2", Role: model.RoleVendor}
	admin  = model.Actor{ID: "admin-1", Role: model.RoleAdmin}
)

func booking(status model.Status) model.Booking {
	v := vendor.ID
	return model.Booking{
		ID:       "bk-1",
		UserID:   alice.ID,
		VendorID: &v,
		Date:     "2025-06-01",
		TimeSlot: "09:00 AM",
		Status:   status,
	}
}

// statefulStore is a fakeStore over a single booking whose status moves
// with successful updates.
func statefulStore(b model.Booking) (*fakeStore, *[]model.BookingEvent) {
	var (
		mu     sync.Mutex
		events []model.BookingEvent
	)
	s := &fakeStore{
		getFn: func(_ context.Context, id string) (model.Booking, error) {
			mu.Lock()
			defer mu.Unlock()
			if id != b.ID {
				return model.Booking{}, repository.ErrNotFound
			}
			return b, nil
		},
		updateStatusFn: func(_ context.Context, id string, from, to model.Status, ev model.BookingEvent) (model.Booking, error) {
			mu.Lock()
			defer mu.Unlock()
			if id != b.ID {
				return model.Booking{}, repository.ErrNotFound
			}
			if b.Status != from {
				return model.Booking{}, repository.ErrStatusChanged
			}
			b.Status = to
			events = append(events, ev)
			return b, nil
		},
	}
	return s, &events
}
