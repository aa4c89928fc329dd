package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-reservation/internal/apperr"
	"github.com/iliyamo/theatre-reservation/internal/filter"
	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/service"
)

// showTimeLayouts are tried in order.  Values without a zone are UTC.
var showTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

const msgShowTimeFormat = "Datetime has wrong format. Use one of these formats instead: YYYY-MM-DDThh:mm[:ss[.uuuuuu]][+HH:MM|-HH:MM|Z]."

// PerformanceHandler serves the performance schedule.
type PerformanceHandler struct {
	Schedule *service.ScheduleService
}

func NewPerformanceHandler(s *service.ScheduleService) *PerformanceHandler {
	return &PerformanceHandler{Schedule: s}
}

type performanceReq struct {
	ShowTime    string `json:"show_time"`
	Play        uint64 `json:"play"`
	TheatreHall uint64 `json:"theatre_hall"`
}

// input converts the request.  A blank show_time is left zero for the
// service to report as required.
func (r performanceReq) input() (model.PerformanceInput, error) {
	in := model.PerformanceInput{PlayID: r.Play, TheatreHallID: r.TheatreHall}
	raw := strings.TrimSpace(r.ShowTime)
	if raw == "" {
		return in, nil
	}
	t, ok := parseShowTime(raw)
	if !ok {
		return in, apperr.Invalid(apperr.ErrInvalidField, "show_time", msgShowTimeFormat)
	}
	in.ShowTime = t
	return in, nil
}

func parseShowTime(raw string) (time.Time, bool) {
	for _, layout := range showTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// List handles GET /performance?date=&play=.
func (h *PerformanceHandler) List(c echo.Context) error {
	f, err := filter.ParsePerformanceFilter(c.QueryParams())
	if err != nil {
		return respondError(c, err)
	}
	views, err := h.Schedule.ListPerformances(c.Request().Context(), f)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]performanceListResp, 0, len(views))
	for _, v := range views {
		out = append(out, toPerformanceList(v))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /performance/:id, including the seats already taken.
func (h *PerformanceHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	v, err := h.Schedule.GetPerformance(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toPerformanceDetail(v))
}

// Create handles POST /performance.
func (h *PerformanceHandler) Create(c echo.Context) error {
	var req performanceReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	in, err := req.input()
	if err != nil {
		return respondError(c, err)
	}
	p, err := h.Schedule.CreatePerformance(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toPerformanceWrite(p))
}

// Update handles PUT /performance/:id.
func (h *PerformanceHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req performanceReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	in, err := req.input()
	if err != nil {
		return respondError(c, err)
	}
	p, err := h.Schedule.UpdatePerformance(c.Request().Context(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toPerformanceWrite(p))
}

// Delete handles DELETE /performance/:id.  Its tickets go with it.
func (h *PerformanceHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Schedule.DeletePerformance(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
