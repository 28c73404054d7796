package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/iliyamo/pro-booking/internal/model"
	"github.com/iliyamo/pro-booking/internal/queue"
	"github.com/iliyamo/pro-booking/internal/repository"
)

type edge struct {
	from, to model.Status
}

// transitions lists every allowed status change and the roles that may
// request it.  Anything absent is an invalid transition.
var transitions = map[edge][]model.Role{
	{model.StatusPending, model.StatusAccepted}:   {model.RoleVendor},
	{model.StatusPending, model.StatusCancelled}:  {model.RoleUser, model.RoleAdmin},
	{model.StatusAccepted, model.StatusActive}:    {model.RoleVendor},
	{model.StatusAccepted, model.StatusCancelled}: {model.RoleUser, model.RoleVendor, model.RoleAdmin},
	{model.StatusActive, model.StatusCompleted}:   {model.RoleVendor},
	{model.StatusActive, model.StatusCancelled}:   {model.RoleUser, model.RoleVendor, model.RoleAdmin},
}

// ValidTransition reports whether from -> to is an edge of the lifecycle.
func ValidTransition(from, to model.Status) bool {
	_, ok := transitions[edge{from, to}]
	return ok
}

// AllowedRole reports whether role may request from -> to.
func AllowedRole(from, to model.Status, role model.Role) bool {
	for _, r := range transitions[edge{from, to}] {
		if r == role {
			return true
		}
	}
	return false
}

// Lifecycle applies status changes to existing bookings.  Each change is a
// compare-and-set on the booking row plus one audit entry, so concurrent
// requests on the same booking cannot both succeed.
type Lifecycle struct {
	store         Store
	notifier      Notifier
	now           func() time.Time
	allowOverride bool
}

func NewLifecycle(store Store, notifier Notifier, allowOverride bool) *Lifecycle {
	return &Lifecycle{store: store, notifier: notifier, now: time.Now, allowOverride: allowOverride}
}

// Advance moves a booking assigned to the calling professional to status
// to, recording the optional reason in the audit trail.  Bookings that do
// not exist or are not assigned to the professional are both reported as
// not found.  Cancellation requests are handed to cancel so they are
// audited the same way.
func (l *Lifecycle) Advance(ctx context.Context, vendor model.Actor, id string, to model.Status, reason string) (model.Booking, error) {
	if vendor.Role != model.RoleVendor {
		return model.Booking{}, forbidden("only the assigned professional may update booking status")
	}
	reason, err := checkReason(reason)
	if err != nil {
		return model.Booking{}, err
	}
	b, err := l.store.GetByID(ctx, id)
	if err != nil {
		return model.Booking{}, storeErr(err)
	}
	if !b.AssignedTo(vendor.ID) {
		return model.Booking{}, errNotFound
	}
	if to == model.StatusCancelled {
		return l.cancel(ctx, b, vendor, reason)
	}
	if !ValidTransition(b.Status, to) {
		return model.Booking{}, invalidState(b.Status, to)
	}
	if !AllowedRole(b.Status, to, vendor.Role) {
		return model.Booking{}, forbidden("this status change is not permitted for professionals")
	}
	return l.apply(ctx, b, vendor, to, model.EventTransition, reason, queue.TypeBookingStatusChanged)
}

// Override sets a booking's status regardless of the transition graph.  It
// exists to repair stuck bookings, requires a reason, is audited as an
// OVERRIDE and is always logged.  Reviving a cancelled booking whose slot
// has since been taken fails with ErrSlotTaken.
func (l *Lifecycle) Override(ctx context.Context, admin model.Actor, id string, to model.Status, reason string) (model.Booking, error) {
	if !l.allowOverride {
		return model.Booking{}, &Error{Kind: KindAuthorization, Code: CodeOverrideBlocked, Message: "administrative status override is disabled"}
	}
	if admin.Role != model.RoleAdmin {
		return model.Booking{}, forbidden("administrator role required")
	}
	reason, err := checkReason(reason)
	if err != nil {
		return model.Booking{}, err
	}
	if reason == "" {
		return model.Booking{}, validationf("reason is required for an administrative override")
	}
	b, err := l.store.GetByID(ctx, id)
	if err != nil {
		return model.Booking{}, storeErr(err)
	}
	if b.Status == to {
		return model.Booking{}, invalidState(b.Status, to)
	}
	log.Printf("admin-override: booking_id=%s from=%s to=%s admin_id=%s graph_edge=%t reason=%q",
		b.ID, b.Status, to, admin.ID, ValidTransition(b.Status, to), reason)
	typ := queue.TypeBookingStatusChanged
	if to == model.StatusCancelled {
		typ = queue.TypeBookingCancelled
	}
	return l.apply(ctx, b, admin, to, model.EventOverride, reason, typ)
}

// apply performs the compare-and-set write for b.Status -> to.
func (l *Lifecycle) apply(ctx context.Context, b model.Booking, actor model.Actor, to model.Status, kind model.EventKind, reason, eventType string) (model.Booking, error) {
	from := b.Status
	at := l.now().UTC()
	ev := model.BookingEvent{
		BookingID:  b.ID,
		Kind:       kind,
		FromStatus: &from,
		ToStatus:   to,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Reason:     reason,
		CreatedAt:  at,
	}
	updated, err := l.store.UpdateStatus(ctx, b.ID, from, to, ev)
	if err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			// Lost a race; report against the status that won.
			if cur, gerr := l.store.GetByID(ctx, b.ID); gerr == nil {
				from = cur.Status
			}
			return model.Booking{}, invalidState(from, to)
		}
		return model.Booking{}, storeErr(err)
	}
	dispatch(l.notifier, eventFor(eventType, updated, actor, reason, at))
	return updated, nil
}
