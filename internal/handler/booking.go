package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pro-booking/internal/model"
	"github.com/iliyamo/pro-booking/internal/service"
)

// VendorDirectory looks up professional profiles for response enrichment.
type VendorDirectory interface {
	GetVendor(ctx context.Context, id string) (model.Vendor, error)
}

// BookingHandler serves the customer-facing booking endpoints.  All
// methods assume JWT authentication and role checks already ran in
// middleware.
type BookingHandler struct {
	Guard        *service.ReservationGuard
	Availability *service.Availability
	Lifecycle    *service.Lifecycle
	Query        *service.Query
	Vendors      VendorDirectory // optional
	Location     *time.Location  // zone of slot start times
}

// NewBookingHandler panics if a required dependency is nil.
func NewBookingHandler(g *service.ReservationGuard, a *service.Availability, l *service.Lifecycle, q *service.Query, vendors VendorDirectory, loc *time.Location) *BookingHandler {
	if g == nil || a == nil || l == nil || q == nil {
		panic("nil service passed to NewBookingHandler")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &BookingHandler{Guard: g, Availability: a, Lifecycle: l, Query: q, Vendors: vendors, Location: loc}
}

type locationReq struct {
	Type    string `json:"type"`
	Address string `json:"address"`
}

type createBookingReq struct {
	ServiceID     string      `json:"serviceId"`
	ServiceName   string      `json:"serviceName"`
	Date          string      `json:"date"`
	TimeSlot      string      `json:"timeSlot"`
	Location      locationReq `json:"location"`
	Instructions  string      `json:"instructions"`
	Price         *float64    `json:"price"`
	PaymentMode   string      `json:"paymentMode"`
	AttachmentURL string      `json:"attachmentUrl"`
	VendorID      *string     `json:"vendorId"`
}

type createBookingResp struct {
	BookingID        string        `json:"bookingId"`
	Status           model.Status  `json:"status"`
	Professional     *model.Vendor `json:"professional,omitempty"`
	EstimatedArrival string        `json:"estimatedArrival"`
	Booking          model.Booking `json:"booking"`
}

// CreateBooking handles POST /bookings.  It returns 201 with the new
// booking, or 409 VENDOR_SLOT_TAKEN when the chosen professional already
// holds the date and slot.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return unauthorized(c)
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(service.CodeValidation, "invalid request body"))
	}
	if req.Price == nil {
		return c.JSON(http.StatusBadRequest, errorBody(service.CodeValidation, "price is required"))
	}
	draft := service.Draft{
		ServiceID:       req.ServiceID,
		ServiceName:     req.ServiceName,
		Date:            req.Date,
		TimeSlot:        req.TimeSlot,
		LocationType:    req.Location.Type,
		LocationAddress: req.Location.Address,
		Instructions:    req.Instructions,
		Price:           *req.Price,
		PaymentMode:     req.PaymentMode,
		AttachmentURL:   req.AttachmentURL,
	}
	if req.VendorID != nil {
		draft.VendorID = *req.VendorID
	}

	ctx := c.Request().Context()
	b, err := h.Guard.Reserve(ctx, actor, draft)
	if err != nil {
		return writeError(c, err)
	}

	resp := createBookingResp{BookingID: b.ID, Status: b.Status, Booking: b}
	if start, err := b.TimeSlot.StartOn(b.Date, h.Location); err == nil {
		resp.EstimatedArrival = start.Format(time.RFC3339)
	}
	if b.VendorID != nil && h.Vendors != nil {
		if v, err := h.Vendors.GetVendor(ctx, *b.VendorID); err == nil {
			resp.Professional = &v
		} else {
			log.Printf("handler: vendor lookup vendor_id=%s failed: %v", *b.VendorID, err)
		}
	}
	return c.JSON(http.StatusCreated, resp)
}

// VendorAvailability handles GET /bookings/vendor-availability.  The
// result reflects committed bookings at read time and is advisory.
func (h *BookingHandler) VendorAvailability(c echo.Context) error {
	vendorID := c.QueryParam("vendorId")
	date := c.QueryParam("date")
	booked, err := h.Availability.ReservedSlots(c.Request().Context(), vendorID, date)
	if err != nil {
		return writeError(c, err)
	}
	if booked == nil {
		booked = []model.TimeSlot{}
	}
	taken := make(map[model.TimeSlot]bool, len(booked))
	for _, s := range booked {
		taken[s] = true
	}
	free := make([]model.TimeSlot, 0, len(model.TimeSlots))
	for _, s := range model.TimeSlots {
		if !taken[s] {
			free = append(free, s)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"vendorId":       strings.TrimSpace(vendorID),
		"date":           strings.TrimSpace(date),
		"bookedSlots":    booked,
		"availableSlots": free,
	})
}

// CancelBooking handles POST /bookings/:id/cancel.  Owners, assigned
// professionals and administrators may cancel; the optional reason is
// kept in the booking's history.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return unauthorized(c)
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(service.CodeValidation, "invalid request body"))
	}
	b, err := h.Lifecycle.Cancel(c.Request().Context(), actor, c.Param("id"), body.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "booking cancelled",
		"booking": b,
	})
}

// ListBookings handles GET /bookings and returns the caller's bookings.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return unauthorized(c)
	}
	f, err := listFilter(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody(service.CodeValidation, err.Error()))
	}
	items, err := h.Query.ListMine(c.Request().Context(), actor, f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// GetBooking handles GET /bookings/:id.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return unauthorized(c)
	}
	b, err := h.Query.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": b})
}

// BookingHistory handles GET /bookings/:id/history.
func (h *BookingHandler) BookingHistory(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return unauthorized(c)
	}
	events, err := h.Query.History(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": events})
}
