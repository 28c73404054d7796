package service

import (
	"strings"
	"unicode/utf8"
)

// Column widths of the MySQL schema, in characters.  Input longer than
// these is rejected before any store access so the database never
// truncates or refuses a write.
const (
	maxIDLen           = 64 // user_id, vendor_id, service_id
	maxServiceNameLen  = 255
	maxLocationTypeLen = 32
	maxAddressLen      = 512
	maxPaymentModeLen  = 32
	maxAttachmentLen   = 1024
	maxInstructionsLen = 2000 // TEXT; bounded to keep rows small

	// maxReasonLen bounds free-text cancellation and override reasons.
	maxReasonLen = 500
)

// checkLen returns a ValidationError when v is longer than max characters.
func checkLen(field, v string, max int) error {
	if utf8.RuneCountInString(v) > max {
		return validationf("%s must be at most %d characters", field, max)
	}
	return nil
}

// checkReason trims and bounds a free-text reason.
func checkReason(reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	return reason, checkLen("reason", reason, maxReasonLen)
}
