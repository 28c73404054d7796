package middleware

// identity.go holds the context keys JWTAuth writes and the claim parsing
// shared by the auth and rate limit middleware.

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by JWTAuth.  Values are always strings.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// subject returns the actor id carried by the token.  Identity providers
// differ on whether "sub" is a string or a number; "user_id" is accepted as
// a fallback.
func subject(cl jwt.MapClaims) string {
	for _, key := range []string{"sub", "user_id"} {
		switch v := cl[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
