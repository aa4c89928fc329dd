package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-reservation/internal/middleware"
	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/service"
)

// Reservation list pagination.
const (
	DefaultPageSize = 2
	MaxPageSize     = 100
)

// ReservationHandler books seats and lists the caller's reservations.
type ReservationHandler struct {
	Booking *service.BookingService
}

func NewReservationHandler(s *service.BookingService) *ReservationHandler {
	return &ReservationHandler{Booking: s}
}

type ticketReq struct {
	Row         int    `json:"row"`
	Seat        int    `json:"seat"`
	Performance uint64 `json:"performance"`
}

type reservationReq struct {
	Tickets []ticketReq `json:"tickets"`
}

// callerID returns the authenticated user id, or 0.
func callerID(c echo.Context) uint64 {
	if id := middleware.IdentityFrom(c); id != nil {
		return id.UserID
	}
	return 0
}

// Create handles POST /reservations.  Either every ticket is booked or the
// response lists the problem with each offending ticket and nothing is
// stored.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req reservationReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	reqs := make([]model.TicketRequest, 0, len(req.Tickets))
	for _, t := range req.Tickets {
		reqs = append(reqs, model.TicketRequest{PerformanceID: t.Performance, Row: t.Row, Seat: t.Seat})
	}
	res, err := h.Booking.CreateReservation(c.Request().Context(), callerID(c), reqs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toReservation(res))
}

// List handles GET /reservations?page=&page_size=.  Only the caller's own
// reservations are returned, newest first.
func (h *ReservationHandler) List(c echo.Context) error {
	page, ok := parsePage(c.QueryParams())
	if !ok {
		return c.JSON(http.StatusNotFound, errorResp{Error: "invalid page"})
	}
	items, total, err := h.Booking.ListReservations(c.Request().Context(), callerID(c), page)
	if err != nil {
		return respondError(c, err)
	}
	last := lastPage(total, page.Size)
	if page.Number > last {
		return c.JSON(http.StatusNotFound, errorResp{Error: "invalid page"})
	}

	results := make([]reservationListResp, 0, len(items))
	for _, r := range items {
		results = append(results, toReservationList(r))
	}
	out := pageResp{Count: total, Results: results}
	if page.Number < last {
		next := pageURL(c, page.Number+1)
		out.Next = &next
	}
	if page.Number > 1 {
		prev := pageURL(c, page.Number-1)
		out.Previous = &prev
	}
	return c.JSON(http.StatusOK, out)
}

// parsePage reads page and page_size.  A malformed page number is
// rejected; a malformed page size falls back to the default and large
// sizes are capped.
func parsePage(q url.Values) (model.Page, bool) {
	page := model.Page{Number: 1, Size: DefaultPageSize}
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return page, false
		}
		page.Number = n
	}
	if raw := q.Get("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page.Size = min(n, MaxPageSize)
		}
	}
	return page, true
}

// lastPage is the number of the final page; an empty list still has one.
func lastPage(total, size int) int {
	if total <= 0 || size <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// pageURL rebuilds the request URL pointing at page n.  Page 1 drops the
// parameter altogether.
func pageURL(c echo.Context, n int) string {
	req := c.Request()
	u := url.URL{Scheme: c.Scheme(), Host: req.Host, Path: req.URL.Path}
	q := req.URL.Query()
	if n <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(n))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
