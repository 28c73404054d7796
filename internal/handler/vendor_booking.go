package handler

// Professional-facing endpoints: a professional advances the bookings
// assigned to them through ACCEPTED, ACTIVE and COMPLETED.

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pro-booking/internal/model"
	"github.com/iliyamo/pro-booking/internal/service"
)

type statusReq struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// UpdateStatus handles PUT /vendor/bookings/:id/status.  It returns the
// updated booking, 400 for an unknown status or a disallowed transition,
// and 404 when the booking does not exist or is not assigned to the caller.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return unauthorized(c)
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(service.CodeValidation, "invalid request body"))
	}
	to, ok := model.ParseStatus(req.Status)
	if !ok {
		return c.JSON(http.StatusBadRequest, errorBody(service.CodeInvalidStatus, "status must be one of ACCEPTED, ACTIVE, COMPLETED, CANCELLED"))
	}
	b, err := h.Lifecycle.Advance(c.Request().Context(), actor, c.Param("id"), to, req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// ListVendorBookings handles GET /vendor/bookings with optional status,
// date, limit and offset filters.
func (h *BookingHandler) ListVendorBookings(c echo.Context) error {
	return h.ListBookings(c)
}
