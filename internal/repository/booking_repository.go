package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/pro-booking/internal/model"
)

// BookingRepo persists bookings and their audit trail.  Every mutating
// method is a single transaction against the database and nothing else.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, user_id, vendor_id, service_id, service_name, booking_date, time_slot,
	location_type, location_address, instructions, price, payment_mode, attachment_url,
	status, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(s rowScanner) (model.Booking, error) {
	var (
		b          model.Booking
		vendorID   sql.NullString
		attachment sql.NullString
	)
	err := s.Scan(
		&b.ID, &b.UserID, &vendorID, &b.ServiceID, &b.ServiceName, &b.Date, &b.TimeSlot,
		&b.LocationType, &b.LocationAddress, &b.Instructions, &b.Price, &b.PaymentMode, &attachment,
		&b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return model.Booking{}, err
	}
	if vendorID.Valid {
		v := vendorID.String
		b.VendorID = &v
	}
	if attachment.Valid {
		a := attachment.String
		b.AttachmentURL = &a
	}
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, nil
}

func nullable(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// FindActiveBySlot returns the id of a non-cancelled booking holding the
// reservation key, if any.  The answer may be stale by the time the caller
// acts on it; Create is what enforces uniqueness.
func (r *BookingRepo) FindActiveBySlot(ctx context.Context, vendorID, date string, slot model.TimeSlot) (string, bool, error) {
	const q = `SELECT id FROM bookings
	           WHERE vendor_id = ? AND booking_date = ? AND time_slot = ? AND status <> 'CANCELLED'
	           LIMIT 1`
	var id string
	err := r.db.QueryRowContext(ctx, q, vendorID, date, string(slot)).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, classify(err)
	}
	return id, true, nil
}

// ReservedSlots returns the distinct slots held by non-cancelled bookings
// for a vendor on a date, in day order.
func (r *BookingRepo) ReservedSlots(ctx context.Context, vendorID, date string) ([]model.TimeSlot, error) {
	const q = `SELECT DISTINCT time_slot FROM bookings
	           WHERE vendor_id = ? AND booking_date = ? AND status <> 'CANCELLED'`
	rows, err := r.db.QueryContext(ctx, q, vendorID, date)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	taken := make(map[model.TimeSlot]bool)
	for rows.Next() {
		var ts model.TimeSlot
		if err := rows.Scan(&ts); err != nil {
			return nil, classify(err)
		}
		taken[ts] = true
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	out := make([]model.TimeSlot, 0, len(taken))
	for _, ts := range model.TimeSlots {
		if taken[ts] {
			out = append(out, ts)
		}
	}
	return out, nil
}

// Create inserts the booking and its creation audit entry.  Timestamps are
// taken from b.CreatedAt.  A live booking already holding the reservation
// key makes the insert fail with ErrSlotTaken.
func (r *BookingRepo) Create(ctx context.Context, b model.Booking, ev model.BookingEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const ins = `INSERT INTO bookings (id, user_id, vendor_id, service_id, service_name, booking_date, time_slot,
	                 location_type, location_address, instructions, price, payment_mode, attachment_url,
	                 status, created_at, updated_at)
	             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, ins,
		b.ID, b.UserID, nullable(b.VendorID), b.ServiceID, b.ServiceName, b.Date, string(b.TimeSlot),
		b.LocationType, b.LocationAddress, b.Instructions, b.Price, b.PaymentMode, nullable(b.AttachmentURL),
		string(b.Status), b.CreatedAt.UTC(), b.UpdatedAt.UTC(),
	)
	if err != nil {
		return classify(err)
	}
	if err := insertEvent(ctx, tx, ev); err != nil {
		return classify(err)
	}
	if err := tx.Commit(); err != nil {
		return classify(err)
	}
	committed = true
	return nil
}

// GetByID loads a single booking.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (model.Booking, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if err != nil {
		return model.Booking{}, classify(err)
	}
	return b, nil
}

// UpdateStatus moves a booking from one status to another only if it is
// still in from, and appends ev to the audit trail in the same
// transaction.  It returns ErrStatusChanged when another writer got there
// first and ErrSlotTaken when reviving a cancelled booking collides with a
// live one.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id string, from, to model.Status, ev model.BookingEvent) (model.Booking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Booking{}, classify(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const upd = `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, upd, string(to), ev.CreatedAt.UTC(), id, string(from))
	if err != nil {
		return model.Booking{}, classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Booking{}, classify(err)
	}
	if n == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE id = ?`, id).Scan(&exists)
		if err != nil {
			return model.Booking{}, classify(err)
		}
		return model.Booking{}, ErrStatusChanged
	}
	if err := insertEvent(ctx, tx, ev); err != nil {
		return model.Booking{}, classify(err)
	}
	b, err := scanBooking(tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if err != nil {
		return model.Booking{}, classify(err)
	}
	if err := tx.Commit(); err != nil {
		return model.Booking{}, classify(err)
	}
	committed = true
	return b, nil
}

// ListFilter narrows ListByUser and ListByVendor.  Zero values mean no
// filter; Limit defaults to 20 and is capped at 100.
type ListFilter struct {
	Status model.Status
	Date   string
	Limit  int
	Offset int
}

func (f ListFilter) window() (int, int) {
	limit, offset := f.Limit, f.Offset
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ListByUser returns the user's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string, f ListFilter) ([]model.Booking, error) {
	return r.list(ctx, "user_id = ?", userID, f)
}

// ListByVendor returns bookings assigned to the vendor, newest first.
func (r *BookingRepo) ListByVendor(ctx context.Context, vendorID string, f ListFilter) ([]model.Booking, error) {
	return r.list(ctx, "vendor_id = ?", vendorID, f)
}

func (r *BookingRepo) list(ctx context.Context, owner string, ownerID string, f ListFilter) ([]model.Booking, error) {
	where := []string{owner}
	args := []any{ownerID}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.Date != "" {
		where = append(where, "booking_date = ?")
		args = append(args, f.Date)
	}
	limit, offset := f.window()
	args = append(args, limit, offset)
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, classify(err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// ListEvents returns the audit trail of a booking in write order.
func (r *BookingRepo) ListEvents(ctx context.Context, bookingID string) ([]model.BookingEvent, error) {
	const q = `SELECT id, booking_id, kind, from_status, to_status, actor_id, actor_role, reason, created_at
	           FROM booking_events WHERE booking_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	out := []model.BookingEvent{}
	for rows.Next() {
		var (
			ev   model.BookingEvent
			from sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.BookingID, &ev.Kind, &from, &ev.ToStatus,
			&ev.ActorID, &ev.ActorRole, &ev.Reason, &ev.CreatedAt); err != nil {
			return nil, classify(err)
		}
		if from.Valid {
			s := model.Status(from.String)
			ev.FromStatus = &s
		}
		ev.CreatedAt = ev.CreatedAt.UTC()
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func insertEvent(ctx context.Context, tx *sql.Tx, ev model.BookingEvent) error {
	const q = `INSERT INTO booking_events (booking_id, kind, from_status, to_status, actor_id, actor_role, reason, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	var from any
	if ev.FromStatus != nil {
		from = string(*ev.FromStatus)
	}
	createdAt := ev.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := tx.ExecContext(ctx, q, ev.BookingID, string(ev.Kind), from, string(ev.ToStatus),
		ev.ActorID, string(ev.ActorRole), ev.Reason, createdAt.UTC())
	return err
}
