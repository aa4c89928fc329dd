package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-reservation/internal/apperr"
	"github.com/iliyamo/theatre-reservation/internal/logger"
)

// errorResp is the body of every non-2xx response produced by handlers.
type errorResp struct {
	Error  string        `json:"error"`
	Fields apperr.Fields `json:"fields,omitempty"`
}

// respondError renders err with the status of its apperr category.
// Anything outside the taxonomy is logged and answered with 500.
func respondError(c echo.Context, err error) error {
	var verr *apperr.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, errorResp{Error: "invalid input", Fields: verr.Fields})
	case errors.Is(err, apperr.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, errorResp{Error: err.Error()})
	case errors.Is(err, apperr.ErrForbidden):
		return c.JSON(http.StatusForbidden, errorResp{Error: err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResp{Error: "not found"})
	}
	logger.WithContext(c.Request().Context()).Error("request failed",
		"method", c.Request().Method, "route", c.Path(), "error", err)
	return c.JSON(http.StatusInternalServerError, errorResp{Error: "internal server error"})
}

// invalidBody answers a request whose body could not be decoded.
func invalidBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, errorResp{Error: "invalid request body"})
}

// pathID parses the :id path parameter.  A non-numeric id cannot match any
// row, so it is reported as not found.
func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.ErrNotFound
	}
	return id, nil
}
