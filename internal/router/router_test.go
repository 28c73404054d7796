package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/pro-booking/internal/config"
	"github.com/iliyamo/pro-booking/internal/database"
	"github.com/iliyamo/pro-booking/internal/handler"
	"github.com/iliyamo/pro-booking/internal/model"
	"github.com/iliyamo/pro-booking/internal/repository"
	"github.com/iliyamo/pro-booking/internal/service"
	"github.com/iliyamo/pro-booking/internal/utils"
)

const secret = "router-test-secret"

type app struct {
	t       *testing.T
	e       *echo.Echo
	vendors *repository.VendorRepo
}

func newApp(t *testing.T, allowOverride bool) *app {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(config.Config{
		DBDriver: "sqlite3",
		DBDSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db, "sqlite3"))

	bookings := repository.NewBookingRepo(db)
	vendors := repository.NewVendorRepo(db)
	h := handler.NewBookingHandler(
		service.NewReservationGuard(bookings, nil),
		service.NewAvailability(bookings),
		service.NewLifecycle(bookings, nil, allowOverride),
		service.NewQuery(bookings),
		vendors,
		time.UTC,
	)
	e := echo.New()
	RegisterRoutes(e, db)
	RegisterBookings(e, h, secret, nil)
	RegisterVendor(e, h, secret, nil)
	RegisterAdmin(e, h, secret)
	return &app{t: t, e: e, vendors: vendors}
}

func token(t *testing.T, sub string, role model.Role) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, sub, string(role), time.Hour)
	require.NoError(t, err)
	return tok.Token
}

// do sends a JSON request as the given actor and decodes the response
// body into a map.
func (a *app) do(method, path, tok string, body any) (int, map[string]any) {
	a.t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if tok != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func bookingBody(vendorID any, slot string) map[string]any {
	body := map[string]any{
		"serviceId":   "svc-plumbing",
		"serviceName": "Plumbing",
		"date":        "2025-06-01",
		"timeSlot":    slot,
		"location":    map[string]any{"type": "home", "address": "12 Market St"},
		"price":       499,
		"paymentMode": "cash",
	}
	if vendorID != nil {
		body["vendorId"] = vendorID
	}
	return body
}

func TestConcurrentReserveOneWins(t *testing.T) {
	a := newApp(t, false)

	const n = 2
	codes := make([]int, n)
	bodies := make([]map[string]any, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i], bodies[i] = a.do(http.MethodPost, "/bookings", token(t, fmt.Sprintf("user-%d", i), model.RoleUser), bookingBody("V1", "09:00 AM"))
		}(i)
	}
	wg.Wait()

	created, conflicts := 0, 0
	for i, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
			assert.Equal(t, "PENDING", bodies[i]["status"])
			assert.NotEmpty(t, bodies[i]["bookingId"])
		case http.StatusConflict:
			conflicts++
			assert.Equal(t, "VENDOR_SLOT_TAKEN", bodies[i]["errorCode"])
			assert.NotEmpty(t, bodies[i]["error"])
		default:
			t.Fatalf("unexpected status %d: %v", code, bodies[i])
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, conflicts)

	code, avail := a.do(http.MethodGet, "/bookings/vendor-availability?vendorId=V1&date=2025-06-01", token(t, "user-9", model.RoleUser), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "V1", avail["vendorId"])
	assert.Equal(t, "2025-06-01", avail["date"])
	assert.Equal(t, []any{"09:00 AM"}, avail["bookedSlots"])
	assert.Len(t, avail["availableSlots"], len(model.TimeSlots)-1)
}

func TestReserveWithoutVendor(t *testing.T) {
	a := newApp(t, false)
	tok := token(t, "user-1", model.RoleUser)

	for i := 0; i < 2; i++ {
		code, body := a.do(http.MethodPost, "/bookings", tok, bookingBody(nil, "09:00 AM"))
		require.Equal(t, http.StatusCreated, code, body)
		assert.Nil(t, body["professional"])

		b := body["booking"].(map[string]any)
		assert.Nil(t, b["vendorId"])
	}
}

func TestReserveResponseShape(t *testing.T) {
	a := newApp(t, false)
	require.NoError(t, a.vendors.Upsert(context.Background(), model.Vendor{ID: "V1", Name: "Ravi", Phone: "+910000"}))

	code, body := a.do(http.MethodPost, "/bookings", token(t, "user-1", model.RoleUser), bookingBody("V1", "01:00 PM"))
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "2025-06-01T13:00:00Z", body["estimatedArrival"])
	assert.Equal(t, map[string]any{"id": "V1", "name": "Ravi", "phone": "+910000"}, body["professional"])
}

func TestReserveValidationAndRoles(t *testing.T) {
	a := newApp(t, false)

	body := bookingBody("V1", "10:00 AM")
	code, resp := a.do(http.MethodPost, "/bookings", token(t, "user-1", model.RoleUser), body)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_FAILED", resp["errorCode"])

	body = bookingBody("V1", "09:00 AM")
	delete(body, "price")
	code, _ = a.do(http.MethodPost, "/bookings", token(t, "user-1", model.RoleUser), body)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = a.do(http.MethodPost, "/bookings", token(t, "V1", model.RoleVendor), bookingBody("V1", "09:00 AM"))
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = a.do(http.MethodPost, "/bookings", "", bookingBody("V1", "09:00 AM"))
	assert.Equal(t, http.StatusUnauthorized, code)

	code, resp = a.do(http.MethodGet, "/bookings/vendor-availability?vendorId=V1", token(t, "user-1", model.RoleUser), nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_FAILED", resp["errorCode"])
}

func TestOverlongFieldsAreValidationErrors(t *testing.T) {
	a := newApp(t, true)
	user := token(t, "user-1", model.RoleUser)

	body := bookingBody(strings.Repeat("v", 300), "09:00 AM")
	code, resp := a.do(http.MethodPost, "/bookings", user, body)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_FAILED", resp["errorCode"])

	body = bookingBody("V1", "09:00 AM")
	body["location"] = map[string]any{"type": "home", "address": strings.Repeat("a", 10000)}
	code, resp = a.do(http.MethodPost, "/bookings", user, body)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_FAILED", resp["errorCode"])

	code, resp = a.do(http.MethodPost, "/bookings", user, bookingBody("V1", "09:00 AM"))
	require.Equal(t, http.StatusCreated, code)
	id := resp["bookingId"].(string)

	code, resp = a.do(http.MethodPut, "/admin/bookings/"+id+"/status", token(t, "admin-1", model.RoleAdmin),
		map[string]string{"status": "COMPLETED", "reason": strings.Repeat("r", 5000)})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_FAILED", resp["errorCode"])

	code, resp = a.do(http.MethodPost, "/bookings/"+id+"/cancel", user, map[string]string{"reason": strings.Repeat("r", 5000)})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_FAILED", resp["errorCode"])
}

func TestVendorCancelKeepsReason(t *testing.T) {
	a := newApp(t, false)
	user := token(t, "user-1", model.RoleUser)
	v1 := token(t, "V1", model.RoleVendor)

	code, body := a.do(http.MethodPost, "/bookings", user, bookingBody("V1", "11:00 AM"))
	require.Equal(t, http.StatusCreated, code)
	id := body["bookingId"].(string)
	path := "/vendor/bookings/" + id + "/status"

	code, _ = a.do(http.MethodPut, path, v1, map[string]string{"status": "ACCEPTED"})
	require.Equal(t, http.StatusOK, code)
	code, body = a.do(http.MethodPut, path, v1, map[string]string{"status": "CANCELLED", "reason": "sick"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "CANCELLED", body["status"])

	code, body = a.do(http.MethodGet, "/bookings/"+id+"/history", user, nil)
	require.Equal(t, http.StatusOK, code)
	items := body["items"].([]any)
	require.Len(t, items, 3)
	last := items[2].(map[string]any)
	assert.Equal(t, "CANCEL", last["kind"])
	assert.Equal(t, "sick", last["reason"])
}

func TestLifecycleThroughVendorEndpoint(t *testing.T) {
	a := newApp(t, false)
	user := token(t, "user-1", model.RoleUser)
	v1 := token(t, "V1", model.RoleVendor)

	code, body := a.do(http.MethodPost, "/bookings", user, bookingBody("V1", "09:00 AM"))
	require.Equal(t, http.StatusCreated, code)
	id := body["bookingId"].(string)
	path := "/vendor/bookings/" + id + "/status"

	for _, s := range []string{"ACCEPTED", "ACTIVE", "COMPLETED"} {
		code, body = a.do(http.MethodPut, path, v1, map[string]string{"status": s})
		require.Equal(t, http.StatusOK, code, body)
		assert.Equal(t, s, body["status"])
	}

	code, body = a.do(http.MethodPut, path, v1, map[string]string{"status": "ACTIVE"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_STATE_TRANSITION", body["errorCode"])

	code, body = a.do(http.MethodPut, path, v1, map[string]string{"status": "Upcoming"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_STATUS", body["errorCode"])

	code, _ = a.do(http.MethodPut, path, token(t, "V2", model.RoleVendor), map[string]string{"status": "ACTIVE"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = a.do(http.MethodPut, "/vendor/bookings/missing/status", v1, map[string]string{"status": "ACCEPTED"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = a.do(http.MethodPut, path, user, map[string]string{"status": "ACCEPTED"})
	assert.Equal(t, http.StatusForbidden, code)

	code, body = a.do(http.MethodGet, "/bookings/"+id+"/history", user, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["items"], 4)

	code, body = a.do(http.MethodGet, "/vendor/bookings?status=COMPLETED", v1, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])
}

func TestCancelFreesSlotForNewBooking(t *testing.T) {
	a := newApp(t, false)
	owner := token(t, "user-1", model.RoleUser)

	code, body := a.do(http.MethodPost, "/bookings", owner, bookingBody("V1", "09:00 AM"))
	require.Equal(t, http.StatusCreated, code)
	id := body["bookingId"].(string)

	code, body = a.do(http.MethodPost, "/bookings/"+id+"/cancel", token(t, "user-2", model.RoleUser), map[string]string{"reason": "not mine"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", body["errorCode"])

	code, _ = a.do(http.MethodPost, "/bookings/missing/cancel", owner, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = a.do(http.MethodPost, "/bookings/"+id+"/cancel", owner, map[string]string{"reason": "plans changed"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "CANCELLED", body["booking"].(map[string]any)["status"])

	// A second cancel is rejected and writes nothing.
	code, body = a.do(http.MethodPost, "/bookings/"+id+"/cancel", owner, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_STATE_TRANSITION", body["errorCode"])

	code, body = a.do(http.MethodPost, "/bookings", token(t, "user-3", model.RoleUser), bookingBody("V1", "09:00 AM"))
	require.Equal(t, http.StatusCreated, code, body)

	code, body = a.do(http.MethodGet, "/bookings/"+id+"/history", owner, nil)
	require.Equal(t, http.StatusOK, code)
	items := body["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "plans changed", items[1].(map[string]any)["reason"])
}

func TestAdminOverride(t *testing.T) {
	a := newApp(t, true)
	user := token(t, "user-1", model.RoleUser)
	adminTok := token(t, "admin-1", model.RoleAdmin)

	code, body := a.do(http.MethodPost, "/bookings", user, bookingBody("V1", "03:00 PM"))
	require.Equal(t, http.StatusCreated, code)
	id := body["bookingId"].(string)
	path := "/admin/bookings/" + id + "/status"

	code, body = a.do(http.MethodPut, path, adminTok, map[string]string{"status": "COMPLETED"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_FAILED", body["errorCode"])

	code, body = a.do(http.MethodPut, path, adminTok, map[string]string{"status": "COMPLETED", "reason": "service done offline"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "COMPLETED", body["status"])

	code, _ = a.do(http.MethodPut, path, user, map[string]string{"status": "PENDING", "reason": "x"})
	assert.Equal(t, http.StatusForbidden, code)

	code, body = a.do(http.MethodGet, "/bookings/"+id, adminTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "COMPLETED", body["item"].(map[string]any)["status"])
}

func TestAdminOverrideDisabled(t *testing.T) {
	a := newApp(t, false)
	code, body := a.do(http.MethodPost, "/bookings", token(t, "user-1", model.RoleUser), bookingBody("V1", "05:00 PM"))
	require.Equal(t, http.StatusCreated, code)

	code, body = a.do(http.MethodPut, "/admin/bookings/"+body["bookingId"].(string)+"/status",
		token(t, "admin-1", model.RoleAdmin), map[string]string{"status": "ACTIVE", "reason": "x"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "OVERRIDE_DISABLED", body["errorCode"])
}

func TestListAndGetAreScoped(t *testing.T) {
	a := newApp(t, false)
	alice := token(t, "alice", model.RoleUser)

	code, body := a.do(http.MethodPost, "/bookings", alice, bookingBody("V1", "07:00 PM"))
	require.Equal(t, http.StatusCreated, code)
	id := body["bookingId"].(string)

	code, body = a.do(http.MethodGet, "/bookings", alice, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])

	code, body = a.do(http.MethodGet, "/bookings", token(t, "bob", model.RoleUser), nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["count"])
	assert.Equal(t, []any{}, body["items"])

	code, _ = a.do(http.MethodGet, "/bookings/"+id, token(t, "bob", model.RoleUser), nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = a.do(http.MethodGet, "/bookings?limit=0", alice, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHealthz(t *testing.T) {
	a := newApp(t, false)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
