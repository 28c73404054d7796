package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pro-booking/internal/model"
	"github.com/iliyamo/pro-booking/internal/service"
)

// OverrideStatus handles PUT /admin/bookings/:id/status.  It forces a
// status outside the normal transition graph to repair stuck bookings.
// A reason is mandatory and every call is logged and audited.
func (h *BookingHandler) OverrideStatus(c echo.Context) error {
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
		return c.JSON(http.StatusBadRequest, errorBody(service.CodeInvalidStatus, "unknown status"))
	}
	b, err := h.Lifecycle.Override(c.Request().Context(), actor, c.Param("id"), to, req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}
