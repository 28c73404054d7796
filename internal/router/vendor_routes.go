package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pro-booking/internal/handler"
	"github.com/iliyamo/pro-booking/internal/middleware"
)

// RegisterVendor registers professional-scoped endpoints under /vendor.
// All routes require a valid JWT and the VENDOR role.
func RegisterVendor(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/vendor",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("VENDOR"),
	)
	g.GET("/bookings", h.ListVendorBookings)
	if limit != nil {
		g.PUT("/bookings/:id/status", h.UpdateStatus, limit)
	} else {
		g.PUT("/bookings/:id/status", h.UpdateStatus)
	}
}
