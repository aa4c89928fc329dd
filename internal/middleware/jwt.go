package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-reservation/internal/apperr"
	"github.com/iliyamo/theatre-reservation/internal/logger"
	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/policy"
)

// errInvalidToken covers every way a bearer token can fail to verify.
var errInvalidToken = errors.New("invalid token")

// ParseAccessToken verifies an HS256 access token signed with secret and
// returns the caller it names.  Only HS256 is accepted and the expiry
// claim is mandatory.  Any role other than ADMIN is treated as USER.
func ParseAccessToken(secret, raw string) (policy.Identity, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return policy.Identity{}, errInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return policy.Identity{}, errInvalidToken
	}
	uid, ok := subjectID(claims["sub"])
	if !ok {
		return policy.Identity{}, errInvalidToken
	}
	role, _ := claims["role"].(string)
	if role != model.RoleAdmin {
		role = model.RoleUser
	}
	return policy.Identity{UserID: uid, Role: role}, nil
}

// BearerToken returns the token of an "Authorization: Bearer" header.
func BearerToken(c echo.Context) (string, bool) {
	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return raw, raw != ""
}

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// stores the caller's policy.Identity on the context.  The provided secret
// must match the one used when issuing tokens.  Requests without a valid
// token are answered with 401 before any handler or policy check runs.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := BearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": apperr.ErrUnauthorized.Error()})
			}
			id, err := ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
			}

			SetIdentity(c, id)
			req := c.Request()
			c.SetRequest(req.WithContext(logger.ContextWithUserID(req.Context(), id.UserID)))
			return next(c)
		}
	}
}
