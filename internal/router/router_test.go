package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theatre-reservation/internal/config"
	"github.com/iliyamo/theatre-reservation/internal/metrics"
	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/repository/memory"
	"github.com/iliyamo/theatre-reservation/internal/service"
	"github.com/iliyamo/theatre-reservation/internal/utils"
)

const testSecret = "router-test-secret"

type app struct {
	t     *testing.T
	e     *echo.Echo
	admin string
	user  string
	other string
}

func newApp(t *testing.T) *app {
	t.Helper()
	db := memory.New()
	cfg := config.Config{
		JWTSecret:      testSecret,
		AccessTTLMin:   15,
		RefreshTTLDays: 1,
		BcryptCost:     4,
	}
	m := metrics.New()
	e := New(Deps{
		Cfg:      cfg,
		Catalog:  service.NewCatalogService(db.Genres(), db.Actors(), db.Halls(), db.Plays()),
		Schedule: service.NewScheduleService(db.Performances(), db.Plays(), db.Halls()),
		Booking:  service.NewBookingService(db.Reservations(), service.WithObserver(m)),
		Users:    db.Users(),
		Tokens:   db.Tokens(),
		Metrics:  m,
	})
	return &app{
		t:     t,
		e:     e,
		admin: bearer(t, 1, model.RoleAdmin),
		user:  bearer(t, 2, model.RoleUser),
		other: bearer(t, 3, model.RoleUser),
	}
}

func bearer(t *testing.T, id uint64, role string) string {
	t.Helper()
	at, err := utils.NewAccessToken(testSecret, id, role, 15)
	require.NoError(t, err)
	return at.Token
}

func (a *app) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type idResp struct {
	ID uint64 `json:"id"`
}

// seed creates a 3x4 hall, a play and one performance as admin and
// returns the performance id.
func (a *app) seed() uint64 {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/v1/theatre/theatre_hall", a.admin, map[string]any{"name": "Main", "rows": 3, "seats_in_row": 4})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	hall := decode[idResp](a.t, rec)

	rec = a.do(http.MethodPost, "/v1/theatre/plays", a.admin, map[string]any{"title": "Hamlet", "description": "Danish prince"})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	play := decode[idResp](a.t, rec)

	rec = a.do(http.MethodPost, "/v1/theatre/performance", a.admin, map[string]any{
		"show_time": "2024-05-01T19:00:00Z", "play": play.ID, "theatre_hall": hall.ID,
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[idResp](a.t, rec).ID
}

func TestAccessPolicy(t *testing.T) {
	a := newApp(t)

	for _, path := range []string{"/v1/theatre/genres", "/v1/theatre/actors", "/v1/theatre/theatre_hall", "/v1/theatre/plays", "/v1/theatre/performance", "/v1/theatre/reservations"} {
		assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, path, "", nil).Code, path)
		assert.Equal(t, http.StatusOK, a.do(http.MethodGet, path, a.user, nil).Code, path)
	}

	body := map[string]any{"title": "Macbeth"}
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/v1/theatre/plays", a.user, body).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/v1/theatre/genres", a.user, map[string]any{"name": "Drama"}).Code)
	assert.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/v1/theatre/plays", a.admin, body).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/v1/theatre/genres/", a.user, nil).Code)
}

func TestCreatePlayLinksGenresAndActors(t *testing.T) {
	a := newApp(t)
	rec := a.do(http.MethodPost, "/v1/theatre/genres", a.admin, map[string]any{"name": "Drama"})
	require.Equal(t, http.StatusCreated, rec.Code)
	genre := decode[idResp](t, rec)
	rec = a.do(http.MethodPost, "/v1/theatre/actors", a.admin, map[string]any{"first_name": "Ada", "last_name": "Stone"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":1,"first_name":"Ada","last_name":"Stone","full_name":"Ada Stone"}`, rec.Body.String())
	actor := decode[idResp](t, rec)

	rec = a.do(http.MethodPost, "/v1/theatre/plays", a.admin, map[string]any{
		"title": "Hamlet", "genres": []uint64{genre.ID}, "actors": []uint64{actor.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"id":1,"title":"Hamlet","description":"","genres":[1],"actors":[1]}`, rec.Body.String())

	rec = a.do(http.MethodGet, "/v1/theatre/plays", a.user, nil)
	assert.JSONEq(t, `[{"id":1,"title":"Hamlet","description":"","genres":["Drama"],"actors":["Ada Stone"]}]`, rec.Body.String())

	rec = a.do(http.MethodGet, "/v1/theatre/plays/1", a.user, nil)
	assert.JSONEq(t, `{"id":1,"title":"Hamlet","description":"","genres":[{"id":1,"name":"Drama"}],
		"actors":[{"id":1,"first_name":"Ada","last_name":"Stone","full_name":"Ada Stone"}]}`, rec.Body.String())

	rec = a.do(http.MethodPost, "/v1/theatre/plays", a.admin, map[string]any{"title": "Ghost", "genres": []uint64{99}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `Invalid pk \"99\" - object does not exist.`)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/v1/theatre/plays/42", a.user, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/v1/theatre/plays/abc", a.user, nil).Code)
}

func TestPlayFilters(t *testing.T) {
	a := newApp(t)
	for _, title := range []string{"Movie", "Movie2", "Movie22"} {
		require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/v1/theatre/plays", a.admin, map[string]any{"title": title}).Code)
	}

	rec := a.do(http.MethodGet, "/v1/theatre/plays?title=2", a.user, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var titles []string
	for _, p := range decode[[]struct {
		Title string `json:"title"`
	}](t, rec) {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"Movie2", "Movie22"}, titles)

	rec = a.do(http.MethodGet, "/v1/theatre/plays?genres=1,x", a.user, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"genres"`)

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/v1/theatre/performance?date=yesterday", a.user, nil).Code)
}

func TestBookingFlow(t *testing.T) {
	a := newApp(t)
	perf := a.seed()
	ticket := func(row, seat int) map[string]any {
		return map[string]any{"row": row, "seat": seat, "performance": perf}
	}

	rec := a.do(http.MethodPost, "/v1/theatre/reservations", a.user, map[string]any{"tickets": []any{ticket(1, 1), ticket(1, 2)}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[struct {
		ID      uint64 `json:"id"`
		Tickets []struct {
			Row         int    `json:"row"`
			Seat        int    `json:"seat"`
			Performance uint64 `json:"performance"`
		} `json:"tickets"`
	}](t, rec)
	require.Len(t, created.Tickets, 2)
	assert.Equal(t, perf, created.Tickets[0].Performance)

	rec = a.do(http.MethodGet, fmt.Sprintf("/v1/theatre/performance/%d", perf), a.user, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[struct {
		TicketsAvailable int `json:"tickets_available"`
		TakenPlaces      []struct {
			Row  int `json:"row"`
			Seat int `json:"seat"`
		} `json:"taken_places"`
	}](t, rec)
	assert.Equal(t, 10, detail.TicketsAvailable)
	assert.Len(t, detail.TakenPlaces, 2)

	rec = a.do(http.MethodPost, "/v1/theatre/reservations", a.other, map[string]any{"tickets": []any{ticket(2, 1), ticket(4, 1)}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid input","fields":{"tickets":[{},
		{"row":["row number must be in available range: (1, rows): (1, 3), got 4"]}]}}`, rec.Body.String())

	rec = a.do(http.MethodPost, "/v1/theatre/reservations", a.other, map[string]any{"tickets": []any{ticket(1, 2)}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid input","fields":{"tickets":[
		{"non_field_errors":["The fields performance, row, seat must make a unique set."]}]}}`, rec.Body.String())

	rec = a.do(http.MethodGet, "/v1/theatre/performance", a.user, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]struct {
		TicketsAvailable    int `json:"tickets_available"`
		TheatreHallCapacity int `json:"theatre_hall_capacity"`
	}](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, 12, list[0].TheatreHallCapacity)
	assert.Equal(t, 10, list[0].TicketsAvailable)
}

func TestReservationListIsScopedAndPaginated(t *testing.T) {
	a := newApp(t)
	perf := a.seed()
	for seat := 1; seat <= 3; seat++ {
		rec := a.do(http.MethodPost, "/v1/theatre/reservations", a.user, map[string]any{
			"tickets": []any{map[string]any{"row": 1, "seat": seat, "performance": perf}},
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	rec := a.do(http.MethodPost, "/v1/theatre/reservations", a.admin, map[string]any{
		"tickets": []any{map[string]any{"row": 2, "seat": 1, "performance": perf}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	type page struct {
		Count    int     `json:"count"`
		Next     *string `json:"next"`
		Previous *string `json:"previous"`
		Results  []struct {
			ID      uint64 `json:"id"`
			Tickets []struct {
				Seat        int `json:"seat"`
				Performance struct {
					ID        uint64 `json:"id"`
					PlayTitle string `json:"play_title"`
				} `json:"performance"`
			} `json:"tickets"`
		} `json:"results"`
	}

	rec = a.do(http.MethodGet, "/v1/theatre/reservations", a.user, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	first := decode[page](t, rec)
	assert.Equal(t, 3, first.Count)
	require.Len(t, first.Results, 2)
	require.NotNil(t, first.Next)
	assert.Contains(t, *first.Next, "page=2")
	assert.Nil(t, first.Previous)
	assert.Equal(t, 3, first.Results[0].Tickets[0].Seat)
	assert.Equal(t, "Hamlet", first.Results[0].Tickets[0].Performance.PlayTitle)

	rec = a.do(http.MethodGet, "/v1/theatre/reservations?page=2", a.user, nil)
	second := decode[page](t, rec)
	require.Len(t, second.Results, 1)
	assert.Nil(t, second.Next)
	require.NotNil(t, second.Previous)

	rec = a.do(http.MethodGet, "/v1/theatre/reservations?page_size=100", a.user, nil)
	assert.Len(t, decode[page](t, rec).Results, 3)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/v1/theatre/reservations?page=9", a.user, nil).Code)

	rec = a.do(http.MethodGet, "/v1/theatre/reservations", a.admin, nil)
	admin := decode[page](t, rec)
	assert.Equal(t, 1, admin.Count)

	rec = a.do(http.MethodGet, "/v1/theatre/reservations", a.other, nil)
	assert.Equal(t, 0, decode[page](t, rec).Count)
}

func TestPerformanceLifecycle(t *testing.T) {
	a := newApp(t)
	perf := a.seed()
	path := fmt.Sprintf("/v1/theatre/performance/%d", perf)

	rec := a.do(http.MethodPut, path, a.admin, map[string]any{"show_time": "2024-06-01T20:00", "play": 1, "theatre_hall": 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"id":1,"show_time":"2024-06-01T20:00:00Z","play":1,"theatre_hall":1}`, rec.Body.String())

	rec = a.do(http.MethodPost, "/v1/theatre/performance", a.admin, map[string]any{"show_time": "soon", "play": 1, "theatre_hall": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "show_time")

	rec = a.do(http.MethodPost, "/v1/theatre/performance", a.admin, map[string]any{"show_time": "2024-06-01T20:00:00Z", "play": 7, "theatre_hall": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"play"`)

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodDelete, path, a.user, nil).Code)
	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, path, a.admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, path, a.user, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, path, a.admin, nil).Code)
}

func TestAuthFlow(t *testing.T) {
	a := newApp(t)
	creds := map[string]any{"email": "Reader@Example.com", "password": "pa55word", "role": "ADMIN"}

	rec := a.do(http.MethodPost, "/v1/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	type authResp struct {
		User struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
		Access  struct{ Token string } `json:"access"`
		Refresh struct{ Token string } `json:"refresh"`
	}
	reg := decode[authResp](t, rec)
	assert.Equal(t, "reader@example.com", reg.User.Email)
	assert.Equal(t, model.RoleUser, reg.User.Role)

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/v1/auth/register", "", creds).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/v1/auth/register", "", map[string]any{"email": ""}).Code)

	rec = a.do(http.MethodPost, "/v1/auth/login", "", map[string]any{"email": "reader@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = a.do(http.MethodPost, "/v1/auth/login", "", map[string]any{"email": "reader@example.com", "password": "pa55word"})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[authResp](t, rec)

	rec = a.do(http.MethodGet, "/v1/me", login.Access.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "reader@example.com")
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/v1/theatre/plays", login.Access.Token, nil).Code)

	rec = a.do(http.MethodPost, "/v1/auth/refresh", "", map[string]any{"refresh_token": login.Refresh.Token})
	require.Equal(t, http.StatusOK, rec.Code)
	refreshed := decode[authResp](t, rec)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/v1/auth/refresh", "", map[string]any{"refresh_token": login.Refresh.Token}).Code)

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodPost, "/v1/auth/logout", refreshed.Access.Token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/v1/auth/refresh", "", map[string]any{"refresh_token": refreshed.Refresh.Token}).Code)
}

func TestOperationalEndpoints(t *testing.T) {
	a := newApp(t)
	perf := a.seed()
	rec := a.do(http.MethodPost, "/v1/theatre/reservations", a.user, map[string]any{
		"tickets": []any{map[string]any{"row": 1, "seat": 1, "performance": perf}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/readyz", "", nil).Code)

	rec = a.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "theatre_reservations_created_total 1")
	assert.Contains(t, rec.Body.String(), "theatre_http_requests_total")
}
