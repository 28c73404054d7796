package service

import (
	"context"
	"strings"

	"github.com/iliyamo/pro-booking/internal/model"
	"github.com/iliyamo/pro-booking/internal/queue"
)

// Cancel moves a booking to CANCELLED on behalf of its owner, its assigned
// professional or an administrator, and records reason in the audit trail.
// Once cancelled, the booking no longer holds its (vendor, date, slot) and
// the slot can be reserved again immediately.  Cancelling a booking that is
// already terminal is an invalid state error and writes nothing.
func (l *Lifecycle) Cancel(ctx context.Context, actor model.Actor, id, reason string) (model.Booking, error) {
	reason, err := checkReason(reason)
	if err != nil {
		return model.Booking{}, err
	}
	b, err := l.store.GetByID(ctx, id)
	if err != nil {
		return model.Booking{}, storeErr(err)
	}
	switch actor.Role {
	case model.RoleAdmin:
	case model.RoleUser:
		if b.UserID != actor.ID {
			return model.Booking{}, forbidden("you can only cancel your own bookings")
		}
	case model.RoleVendor:
		if !b.AssignedTo(actor.ID) {
			return model.Booking{}, forbidden("you can only cancel bookings assigned to you")
		}
	default:
		return model.Booking{}, forbidden("unknown role")
	}
	return l.cancel(ctx, b, actor, reason)
}

// cancel checks the edge and role for b.Status -> CANCELLED and writes it.
// Ownership has already been verified by the caller.
func (l *Lifecycle) cancel(ctx context.Context, b model.Booking, actor model.Actor, reason string) (model.Booking, error) {
	if b.Status.Terminal() || !ValidTransition(b.Status, model.StatusCancelled) {
		return model.Booking{}, invalidState(b.Status, model.StatusCancelled)
	}
	if !AllowedRole(b.Status, model.StatusCancelled, actor.Role) {
		return model.Booking{}, forbidden("this booking cannot be cancelled by " + strings.ToLower(string(actor.Role)) + " at status " + string(b.Status))
	}
	return l.apply(ctx, b, actor, model.StatusCancelled, model.EventCancel, reason, queue.TypeBookingCancelled)
}
