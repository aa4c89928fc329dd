package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theatre-reservation/internal/config"
	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/policy"
	"github.com/iliyamo/theatre-reservation/internal/utils"
)

const secret = "test-secret"

func newProtected(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	g := e.Group("/plays", JWTAuth(secret), Authorize(policy.Plays))
	handler := func(c echo.Context) error {
		id := IdentityFrom(c)
		require.NotNil(t, id)
		return c.JSON(http.StatusOK, echo.Map{"user": id.UserID, "role": id.Role})
	}
	g.GET("", handler)
	g.POST("", handler)
	return e
}

func do(e *echo.Echo, method, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/plays", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func token(t *testing.T, userID uint64, role string) string {
	t.Helper()
	at, err := utils.NewAccessToken(secret, userID, role, 5)
	require.NoError(t, err)
	return at.Token
}

func TestJWTAuthAndAuthorize(t *testing.T) {
	e := newProtected(t)

	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, "garbage").Code)

	userTok := token(t, 3, model.RoleUser)
	rec := do(e, http.MethodGet, userTok)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":3,"role":"USER"}`, rec.Body.String())
	assert.Equal(t, http.StatusForbidden, do(e, http.MethodPost, userTok).Code)

	adminTok := token(t, 1, model.RoleAdmin)
	assert.Equal(t, http.StatusOK, do(e, http.MethodPost, adminTok).Code)
}

func TestJWTAuthRejectsForeignSignatures(t *testing.T) {
	e := newProtected(t)

	other, err := utils.NewAccessToken("another-secret", 1, model.RoleAdmin, 5)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, other.Token).Code)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": 1, "role": model.RoleAdmin, "exp": time.Now().Add(-time.Minute).Unix(),
	})
	signed, err := expired.SignedString([]byte(secret))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, signed).Code)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": 1, "role": model.RoleAdmin})
	signed, err = noExp.SignedString([]byte(secret))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodGet, signed).Code)
}

func TestSubjectID(t *testing.T) {
	tests := []struct {
		in   interface{}
		want uint64
		ok   bool
	}{
		{float64(7), 7, true},
		{"12", 12, true},
		{float64(1.5), 0, false},
		{float64(0), 0, false},
		{"abc", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := subjectID(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`[1,2]`))
	require.NoError(t, err)

	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, `[1,2]`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
}

func TestCacheWithoutRedisPassesThrough(t *testing.T) {
	rc := NewResponseCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil)
	e := echo.New()
	calls := 0
	e.GET("/genres", func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "ok")
	}, rc.Read("genres"), rc.Invalidate("genres"))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/genres", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-Cache"))
	}
	assert.Equal(t, 2, calls)
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/reservations", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/reservations")

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user_route"}
	assert.Equal(t, "rl:user:guest:route:POST /reservations", buildRateKey(cfg, c))

	SetIdentity(c, policy.Identity{UserID: 9, Role: model.RoleUser})
	assert.Equal(t, "rl:user:9:route:POST /reservations", buildRateKey(cfg, c))

	cfg.KeyStrategy = "ip"
	assert.Equal(t, "rl:ip:10.0.0.1", buildRateKey(cfg, c))
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 0, retryAfterSeconds(-5))
	assert.Equal(t, 1, retryAfterSeconds(1))
	assert.Equal(t, 2, retryAfterSeconds(1500))
}
