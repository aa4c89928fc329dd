package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theatre-reservation/internal/apperr"
	"github.com/iliyamo/theatre-reservation/internal/model"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		query string
		want  model.Page
		ok    bool
	}{
		{"", model.Page{Number: 1, Size: DefaultPageSize}, true},
		{"page=3", model.Page{Number: 3, Size: DefaultPageSize}, true},
		{"page_size=10", model.Page{Number: 1, Size: 10}, true},
		{"page_size=1000", model.Page{Number: 1, Size: MaxPageSize}, true},
		{"page_size=abc", model.Page{Number: 1, Size: DefaultPageSize}, true},
		{"page_size=0", model.Page{Number: 1, Size: DefaultPageSize}, true},
		{"page=0", model.Page{}, false},
		{"page=x", model.Page{}, false},
	}
	for _, tt := range tests {
		q, err := url.ParseQuery(tt.query)
		require.NoError(t, err)
		got, ok := parsePage(q)
		assert.Equal(t, tt.ok, ok, tt.query)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.query)
		}
	}
}

func TestLastPage(t *testing.T) {
	assert.Equal(t, 1, lastPage(0, 2))
	assert.Equal(t, 1, lastPage(2, 2))
	assert.Equal(t, 2, lastPage(3, 2))
	assert.Equal(t, 34, lastPage(100, 3))
}

func TestPageURL(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "http://example.com/v1/theatre/reservations?page=2&page_size=5", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	assert.Equal(t, "http://example.com/v1/theatre/reservations?page=3&page_size=5", pageURL(c, 3))
	assert.Equal(t, "http://example.com/v1/theatre/reservations?page_size=5", pageURL(c, 1))
}

func TestParseShowTime(t *testing.T) {
	want := time.Date(2024, 5, 1, 19, 30, 0, 0, time.UTC)
	for _, raw := range []string{
		"2024-05-01T19:30:00Z",
		"2024-05-01T21:30:00+02:00",
		"2024-05-01T19:30:00",
		"2024-05-01T19:30",
		"2024-05-01 19:30",
	} {
		got, ok := parseShowTime(raw)
		require.True(t, ok, raw)
		assert.True(t, want.Equal(got), raw)
		assert.Equal(t, time.UTC, got.Location(), raw)
	}
	_, ok := parseShowTime("01/05/2024")
	assert.False(t, ok)
}

func TestRespondErrorStatuses(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{apperr.ErrUnauthorized, http.StatusUnauthorized},
		{apperr.ErrForbidden, http.StatusForbidden},
		{apperr.ErrNotFound, http.StatusNotFound},
		{apperr.Invalid(apperr.ErrOutOfRangeSeat, "row", "bad row"), http.StatusBadRequest},
		{errors.New("db down"), http.StatusInternalServerError},
	}
	e := echo.New()
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		require.NoError(t, respondError(c, tt.err))
		assert.Equal(t, tt.status, rec.Code, tt.err.Error())
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, respondError(c, apperr.Invalid(apperr.ErrOutOfRangeSeat, "row", "bad row")))
	assert.JSONEq(t, `{"error":"invalid input","fields":{"row":["bad row"]}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, respondError(c, errors.New("secret driver detail")))
	assert.NotContains(t, rec.Body.String(), "secret driver detail")
}

func TestPlayResponseShapes(t *testing.T) {
	p := model.Play{
		ID:     1,
		Title:  "Hamlet",
		Genres: []model.Genre{{ID: 2, Name: "Drama"}},
		Actors: []model.Actor{{ID: 3, FirstName: "Ada", LastName: "Lovelace"}},
	}
	assert.Equal(t, []string{"Drama"}, toPlayList(p).Genres)
	assert.Equal(t, []string{"Ada Lovelace"}, toPlayList(p).Actors)
	assert.Equal(t, "Ada Lovelace", toPlayDetail(p).Actors[0].FullName)
	assert.Equal(t, []uint64{2}, toPlayWrite(p).Genres)
	assert.Equal(t, []uint64{3}, toPlayWrite(p).Actors)

	empty := toPlayList(model.Play{ID: 9})
	assert.NotNil(t, empty.Genres)
	assert.NotNil(t, empty.Actors)
}
