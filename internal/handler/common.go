package handler // handler defines http handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pro-booking/internal/middleware"
	"github.com/iliyamo/pro-booking/internal/model"
	"github.com/iliyamo/pro-booking/internal/repository"
	"github.com/iliyamo/pro-booking/internal/service"
)

// errorBody is the JSON shape of every error response.
func errorBody(code, msg string) echo.Map {
	return echo.Map{"errorCode": code, "error": msg}
}

// getActor reads the identity JWTAuth stored in the context.
func getActor(c echo.Context) (model.Actor, error) {
	id, _ := c.Get(middleware.ContextUserID).(string)
	role, _ := c.Get(middleware.ContextRole).(string)
	if id == "" || role == "" {
		return model.Actor{}, errors.New("no authenticated actor in context")
	}
	return model.Actor{ID: id, Role: model.Role(role)}, nil
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorBody("UNAUTHENTICATED", "unauthorized"))
}

// writeError maps a domain error to its HTTP status and body.  Transient
// and unexpected errors are logged here and answered without detail.
func writeError(c echo.Context, err error) error {
	var de *service.Error
	if !errors.As(err, &de) {
		log.Printf("handler: %s %s internal error: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusInternalServerError, errorBody(service.CodeInternal, "internal error"))
	}
	status := http.StatusInternalServerError
	switch de.Kind {
	case service.KindValidation, service.KindInvalidState:
		status = http.StatusBadRequest
	case service.KindConflict:
		status = http.StatusConflict
	case service.KindAuthorization:
		status = http.StatusForbidden
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindTransient:
		log.Printf("handler: %s %s store unavailable: %v", c.Request().Method, c.Path(), de.Err)
		c.Response().Header().Set("Retry-After", "1")
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, errorBody(de.Code, de.Message))
}

// listFilter reads limit, offset, status and date query parameters.
func listFilter(c echo.Context) (repository.ListFilter, error) {
	var f repository.ListFilter
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return f, errors.New("limit must be a positive integer")
		}
		f.Limit = n
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, errors.New("offset must be a non-negative integer")
		}
		f.Offset = n
	}
	if v := c.QueryParam("status"); v != "" {
		s, ok := model.ParseStatus(v)
		if !ok {
			return f, errors.New("unknown status")
		}
		f.Status = s
	}
	f.Date = c.QueryParam("date")
	return f, nil
}
