package middleware

// identity.go holds the helpers shared across middleware files for storing
// and reading the authenticated caller on the Echo context.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-reservation/internal/policy"
)

// identityKey is the Echo context key JWTAuth stores the caller under.
const identityKey = "identity"

// SetIdentity stores id on the context.
func SetIdentity(c echo.Context, id policy.Identity) {
	c.Set(identityKey, &id)
}

// IdentityFrom returns the authenticated caller, or nil for anonymous
// requests.
func IdentityFrom(c echo.Context) *policy.Identity {
	id, _ := c.Get(identityKey).(*policy.Identity)
	return id
}

// userID returns the caller id as a string for keys and logs.  It returns
// "guest" when no user is authenticated.
func userID(c echo.Context) string {
	if id := IdentityFrom(c); id != nil && id.UserID != 0 {
		return strconv.FormatUint(id.UserID, 10)
	}
	return "guest"
}

// subjectID converts a decoded "sub" claim into a user id.  JSON numbers
// decode as float64; string subjects are accepted as well.
func subjectID(v interface{}) (uint64, bool) {
	switch t := v.(type) {
	case float64:
		if t <= 0 || t != float64(uint64(t)) {
			return 0, false
		}
		return uint64(t), true
	case string:
		n, err := strconv.ParseUint(t, 10, 64)
		return n, err == nil && n > 0
	case uint64:
		return t, t > 0
	case int64:
		return uint64(t), t > 0
	case int:
		return uint64(t), t > 0
	}
	return 0, false
}
