package service

import (
	"context"

	"github.com/iliyamo/pro-booking/internal/model"
	"github.com/iliyamo/pro-booking/internal/repository"
)

// Query serves read-only booking views scoped to the caller.
type Query struct {
	store Store
}

func NewQuery(store Store) *Query { return &Query{store: store} }

// visible reports whether actor may see b.
func visible(b model.Booking, actor model.Actor) bool {
	switch actor.Role {
	case model.RoleAdmin:
		return true
	case model.RoleUser:
		return b.UserID == actor.ID
	case model.RoleVendor:
		return b.AssignedTo(actor.ID)
	}
	return false
}

// Get returns a booking the actor may see.  Bookings owned by someone
// else are reported as not found.
func (q *Query) Get(ctx context.Context, actor model.Actor, id string) (model.Booking, error) {
	b, err := q.store.GetByID(ctx, id)
	if err != nil {
		return model.Booking{}, storeErr(err)
	}
	if !visible(b, actor) {
		return model.Booking{}, errNotFound
	}
	return b, nil
}

// History returns the audit trail of a booking the actor may see.
func (q *Query) History(ctx context.Context, actor model.Actor, id string) ([]model.BookingEvent, error) {
	if _, err := q.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	events, err := q.store.ListEvents(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return events, nil
}

// ListMine returns bookings requested by the user, or assigned to the
// professional, depending on the actor's role.
func (q *Query) ListMine(ctx context.Context, actor model.Actor, f repository.ListFilter) ([]model.Booking, error) {
	var (
		out []model.Booking
		err error
	)
	switch actor.Role {
	case model.RoleUser:
		out, err = q.store.ListByUser(ctx, actor.ID, f)
	case model.RoleVendor:
		out, err = q.store.ListByVendor(ctx, actor.ID, f)
	default:
		return nil, forbidden("listing requires a user or professional role")
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}
