package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/pro-booking/internal/model"
	"github.com/iliyamo/pro-booking/internal/repository"
)

// Kind is the coarse class of a domain failure.  Handlers map kinds to
// HTTP statuses; callers that need finer detail branch on Code.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuthorization
	KindInvalidState
	KindNotFound
	KindTransient
)

// Stable error codes returned to API callers.
const (
	CodeValidation      = "VALIDATION_FAILED"
	CodeInvalidStatus   = "INVALID_STATUS"
	CodeSlotTaken       = "VENDOR_SLOT_TAKEN"
	CodeForbidden       = "FORBIDDEN"
	CodeInvalidState    = "INVALID_STATE_TRANSITION"
	CodeNotFound        = "BOOKING_NOT_FOUND"
	CodeUnavailable     = "STORE_UNAVAILABLE"
	CodeOverrideBlocked = "OVERRIDE_DISABLED"
	CodeInternal        = "INTERNAL"
)

// Error is a domain failure with a stable code.  Err, when set, is the
// underlying cause and is never shown to API callers.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err, or KindInternal for non-domain errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

func validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ErrSlotTaken is the single conflict error for a reservation key that is
// already held, whichever phase detected it.
var ErrSlotTaken = &Error{
	Kind:    KindConflict,
	Code:    CodeSlotTaken,
	Message: "this professional is already booked for the selected date and time slot; please choose another slot or professional",
}

var errNotFound = &Error{Kind: KindNotFound, Code: CodeNotFound, Message: "booking not found"}

func forbidden(msg string) *Error {
	return &Error{Kind: KindAuthorization, Code: CodeForbidden, Message: msg}
}

func invalidState(from, to model.Status) *Error {
	return &Error{
		Kind:    KindInvalidState,
		Code:    CodeInvalidState,
		Message: fmt.Sprintf("cannot change booking status from %s to %s", from, to),
	}
}

func unavailable(err error) *Error {
	return &Error{Kind: KindTransient, Code: CodeUnavailable, Message: "booking store temporarily unavailable, please retry", Err: err}
}

// storeErr maps storage sentinels onto domain errors.  Anything else is
// returned unchanged and surfaces as an internal error.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return errNotFound
	case errors.Is(err, repository.ErrSlotTaken):
		return ErrSlotTaken
	case errors.Is(err, repository.ErrUnavailable):
		return unavailable(err)
	}
	return err
}
