package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pro-booking/internal/handler"
	"github.com/iliyamo/pro-booking/internal/middleware"
)

// RegisterAdmin registers operator endpoints under /admin.  All routes
// require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.BookingHandler, jwtSecret string) {
	g := e.Group(
		"/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	g.PUT("/bookings/:id/status", h.OverrideStatus)
}
