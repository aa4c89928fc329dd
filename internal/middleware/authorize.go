package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-reservation/internal/apperr"
	"github.com/iliyamo/theatre-reservation/internal/policy"
)

// Authorize gates a route group on the access policy for res.  The action
// is derived from the HTTP method, so one group can carry both the read and
// the write routes of a resource.
func Authorize(res policy.Resource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := policy.Authorize(IdentityFrom(c), res, policy.ActionFor(c.Request().Method))
			switch {
			case err == nil:
				return next(c)
			case errors.Is(err, apperr.ErrUnauthorized):
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
			default:
				return c.JSON(http.StatusForbidden, echo.Map{"error": apperr.ErrForbidden.Error()})
			}
		}
	}
}
