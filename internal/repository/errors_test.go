package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/pro-booking/internal/database"
)

func TestClassify(t *testing.T) {
	slotDup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'v-1-2025-06-01-09:00 AM' for key 'bookings." + database.ActiveSlotIndex + "'"}
	pkDup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'b-1' for key 'bookings.PRIMARY'"}

	assert.Nil(t, classify(nil))
	assert.ErrorIs(t, classify(sql.ErrNoRows), ErrNotFound)
	assert.ErrorIs(t, classify(slotDup), ErrSlotTaken)
	assert.ErrorIs(t, classify(fmt.Errorf("insert: %w", slotDup)), ErrSlotTaken)
	assert.NotErrorIs(t, classify(pkDup), ErrSlotTaken)
	assert.ErrorIs(t, classify(driver.ErrBadConn), ErrUnavailable)
	assert.ErrorIs(t, classify(context.DeadlineExceeded), ErrUnavailable)
	assert.ErrorIs(t, classify(mysql.ErrInvalidConn), ErrUnavailable)

	other := errors.New("syntax error")
	assert.Equal(t, other, classify(other))
}
