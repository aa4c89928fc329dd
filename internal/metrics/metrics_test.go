package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingCounters(t *testing.T) {
	m := New()
	m.ReservationCreated(3)
	m.ReservationCreated(1)
	m.SeatConflict()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reservations))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.tickets))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.conflicts))
}

func TestMiddlewareLabelsByRoute(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/v1/theatre/plays/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/theatre/plays/"+id, nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/v1/theatre/plays/:id", "204"))
	assert.Equal(t, 2.0, got)
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ReservationCreated(1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "theatre_reservations_created_total 1"))
}
