// Package repository is the storage adapter for bookings.  It is the only
// layer that sees driver errors: every failure leaving this package is one
// of the sentinels below (possibly wrapped), so callers branch with
// errors.Is and never on MySQL or SQLite error numbers.
package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"

	"github.com/iliyamo/pro-booking/internal/database"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrSlotTaken is returned when an insert or status write would leave two
// non-cancelled bookings on the same (vendor, date, slot).
var ErrSlotTaken = errors.New("slot taken")

// ErrStatusChanged is returned by compare-and-set status writes when the
// row no longer has the expected status.
var ErrStatusChanged = errors.New("status changed concurrently")

// ErrUnavailable wraps connectivity and timeout failures.  Writes are
// single transactions, so the whole operation is safe to retry.
var ErrUnavailable = errors.New("store unavailable")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// classify maps a raw database/sql error onto the package sentinels.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case isSlotViolation(err):
		return ErrSlotTaken
	case isTransient(err):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

func isSlotViolation(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDuplicateEntry && strings.Contains(me.Message, database.ActiveSlotIndex)
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrConstraint && se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

func isTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}
