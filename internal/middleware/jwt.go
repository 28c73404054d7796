package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5" // JWT library for parsing and validating tokens
	"github.com/labstack/echo/v4"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// issued by the identity provider and injects the token's subject and role
// claims into the request context.  Handlers read them via
// c.Get(ContextUserID) and c.Get(ContextRole).
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"errorCode": "UNAUTHENTICATED", "error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Only HMAC-signed tokens are accepted; expiry is validated by
			// the parser when the exp claim is present.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"errorCode": "UNAUTHENTICATED", "error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"errorCode": "UNAUTHENTICATED", "error": "invalid claims"})
			}
			sub := subject(claims)
			if sub == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"errorCode": "UNAUTHENTICATED", "error": "token has no subject"})
			}
			role, _ := claims["role"].(string)

			c.Set(ContextUserID, sub)
			c.Set(ContextRole, strings.ToUpper(role))
			return next(c)
		}
	}
}
