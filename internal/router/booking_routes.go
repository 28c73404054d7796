package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pro-booking/internal/handler"
	"github.com/iliyamo/pro-booking/internal/middleware"
)

// RegisterBookings registers the customer-facing booking endpoints.  Every
// route requires a valid JWT.  limit, when non-nil, guards the write
// endpoints.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/bookings", middleware.JWTAuth(jwtSecret))
	writes := []echo.MiddlewareFunc{}
	if limit != nil {
		writes = append(writes, limit)
	}

	// Static paths are matched before /:id, so vendor-availability never
	// reaches GetBooking.
	g.GET("/vendor-availability", h.VendorAvailability)

	g.POST("", h.CreateBooking, append(writes, middleware.RequireRole("USER"))...)
	g.GET("", h.ListBookings, middleware.RequireRole("USER", "VENDOR"))
	g.GET("/:id", h.GetBooking)
	g.GET("/:id/history", h.BookingHistory)
	g.POST("/:id/cancel", h.CancelBooking, append(writes, middleware.RequireRole("USER", "VENDOR", "ADMIN"))...)
}
