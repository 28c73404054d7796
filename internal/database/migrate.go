package database

import (
	"context"
	"database/sql"
	"fmt"
)

// ActiveSlotIndex names the unique index that allows at most one
// non-cancelled booking per (vendor_id, booking_date, time_slot).
const ActiveSlotIndex = "ux_bookings_active_slot"

// MySQL has no partial indexes.  The stored generated column is NULL for
// cancelled rows and for unassigned bookings, and NULLs never collide in a
// unique key, so only live assigned bookings take part in the constraint.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS bookings (
		id               CHAR(36)      NOT NULL,
		user_id          VARCHAR(64)   NOT NULL,
		vendor_id        VARCHAR(64)   NULL,
		service_id       VARCHAR(64)   NOT NULL,
		service_name     VARCHAR(255)  NOT NULL,
		booking_date     CHAR(10)      NOT NULL,
		time_slot        VARCHAR(16)   NOT NULL,
		location_type    VARCHAR(32)   NOT NULL,
		location_address VARCHAR(512)  NOT NULL,
		instructions     TEXT          NOT NULL,
		price            DECIMAL(12,2) NOT NULL,
		payment_mode     VARCHAR(32)   NOT NULL,
		attachment_url   VARCHAR(1024) NULL,
		status           ENUM('PENDING','ACCEPTED','ACTIVE','COMPLETED','CANCELLED') NOT NULL DEFAULT 'PENDING',
		active_vendor_id VARCHAR(64) GENERATED ALWAYS AS (IF(status <> 'CANCELLED', vendor_id, NULL)) STORED,
		created_at       DATETIME(6)   NOT NULL,
		updated_at       DATETIME(6)   NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY ` + ActiveSlotIndex + ` (active_vendor_id, booking_date, time_slot),
		KEY ix_bookings_user (user_id, created_at),
		KEY ix_bookings_vendor_date (vendor_id, booking_date)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS booking_events (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		booking_id  CHAR(36)     NOT NULL,
		kind        VARCHAR(16)  NOT NULL,
		from_status VARCHAR(16)  NULL,
		to_status   VARCHAR(16)  NOT NULL,
		actor_id    VARCHAR(64)  NOT NULL,
		actor_role  VARCHAR(16)  NOT NULL,
		reason      VARCHAR(1024) NOT NULL DEFAULT '',
		created_at  DATETIME(6)  NOT NULL,
		PRIMARY KEY (id),
		KEY ix_booking_events_booking (booking_id, id),
		CONSTRAINT fk_booking_events_booking FOREIGN KEY (booking_id) REFERENCES bookings (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS vendors (
		id           VARCHAR(64)  NOT NULL,
		display_name VARCHAR(255) NOT NULL,
		phone        VARCHAR(32)  NOT NULL DEFAULT '',
		PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{
	`PRAGMA foreign_keys = ON`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id               TEXT     NOT NULL PRIMARY KEY,
		user_id          TEXT     NOT NULL,
		vendor_id        TEXT     NULL,
		service_id       TEXT     NOT NULL,
		service_name     TEXT     NOT NULL,
		booking_date     TEXT     NOT NULL,
		time_slot        TEXT     NOT NULL,
		location_type    TEXT     NOT NULL,
		location_address TEXT     NOT NULL,
		instructions     TEXT     NOT NULL DEFAULT '',
		price            REAL     NOT NULL,
		payment_mode     TEXT     NOT NULL,
		attachment_url   TEXT     NULL,
		status           TEXT     NOT NULL DEFAULT 'PENDING'
			CHECK (status IN ('PENDING','ACCEPTED','ACTIVE','COMPLETED','CANCELLED')),
		created_at       DATETIME NOT NULL,
		updated_at       DATETIME NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + ActiveSlotIndex + `
		ON bookings (vendor_id, booking_date, time_slot)
		WHERE status <> 'CANCELLED' AND vendor_id IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS ix_bookings_user ON bookings (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS booking_events (
		id          INTEGER  PRIMARY KEY AUTOINCREMENT,
		booking_id  TEXT     NOT NULL REFERENCES bookings (id),
		kind        TEXT     NOT NULL,
		from_status TEXT     NULL,
		to_status   TEXT     NOT NULL,
		actor_id    TEXT     NOT NULL,
		actor_role  TEXT     NOT NULL,
		reason      TEXT     NOT NULL DEFAULT '',
		created_at  DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ix_booking_events_booking ON booking_events (booking_id, id)`,
	`CREATE TABLE IF NOT EXISTS vendors (
		id           TEXT NOT NULL PRIMARY KEY,
		display_name TEXT NOT NULL,
		phone        TEXT NOT NULL DEFAULT ''
	)`,
}

// Migrate creates the tables used by the booking core if they are missing.
// Statements are idempotent and run one at a time; the MySQL driver does
// not accept multi-statement strings without extra DSN flags.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	var stmts []string
	switch driver {
	case "mysql":
		stmts = mysqlSchema
	case "sqlite3":
		stmts = sqliteSchema
	default:
		return fmt.Errorf("unsupported driver %q", driver)
	}
	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
