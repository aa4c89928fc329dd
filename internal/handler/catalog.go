package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/theatre-reservation/internal/filter"
	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/service"
)

// CatalogHandler serves genres, actors, theatre halls and plays.
type CatalogHandler struct {
	Catalog *service.CatalogService
}

func NewCatalogHandler(s *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{Catalog: s}
}

type genreReq struct {
	Name string `json:"name"`
}

type actorReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type hallReq struct {
	Name       string `json:"name"`
	Rows       int    `json:"rows"`
	SeatsInRow int    `json:"seats_in_row"`
}

type playReq struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Genres      []uint64 `json:"genres"`
	Actors      []uint64 `json:"actors"`
}

func (r playReq) input() model.PlayInput {
	return model.PlayInput{Title: r.Title, Description: r.Description, GenreIDs: r.Genres, ActorIDs: r.Actors}
}

// ListGenres handles GET /genres.
func (h *CatalogHandler) ListGenres(c echo.Context) error {
	genres, err := h.Catalog.ListGenres(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]genreResp, 0, len(genres))
	for _, g := range genres {
		out = append(out, toGenre(g))
	}
	return c.JSON(http.StatusOK, out)
}

// CreateGenre handles POST /genres.
func (h *CatalogHandler) CreateGenre(c echo.Context) error {
	var req genreReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	g, err := h.Catalog.CreateGenre(c.Request().Context(), req.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toGenre(g))
}

// ListActors handles GET /actors.
func (h *CatalogHandler) ListActors(c echo.Context) error {
	actors, err := h.Catalog.ListActors(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]actorResp, 0, len(actors))
	for _, a := range actors {
		out = append(out, toActor(a))
	}
	return c.JSON(http.StatusOK, out)
}

// CreateActor handles POST /actors.
func (h *CatalogHandler) CreateActor(c echo.Context) error {
	var req actorReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	a, err := h.Catalog.CreateActor(c.Request().Context(), req.FirstName, req.LastName)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toActor(a))
}

// ListHalls handles GET /theatre_hall.
func (h *CatalogHandler) ListHalls(c echo.Context) error {
	halls, err := h.Catalog.ListHalls(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]hallResp, 0, len(halls))
	for _, hall := range halls {
		out = append(out, toHall(hall))
	}
	return c.JSON(http.StatusOK, out)
}

// CreateHall handles POST /theatre_hall.
func (h *CatalogHandler) CreateHall(c echo.Context) error {
	var req hallReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	hall, err := h.Catalog.CreateHall(c.Request().Context(), req.Name, req.Rows, req.SeatsInRow)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toHall(hall))
}

// ListPlays handles GET /plays?title=&genres=&actors=.
func (h *CatalogHandler) ListPlays(c echo.Context) error {
	f, err := filter.ParsePlayFilter(c.QueryParams())
	if err != nil {
		return respondError(c, err)
	}
	plays, err := h.Catalog.ListPlays(c.Request().Context(), f)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]playListResp, 0, len(plays))
	for _, p := range plays {
		out = append(out, toPlayList(p))
	}
	return c.JSON(http.StatusOK, out)
}

// GetPlay handles GET /plays/:id.
func (h *CatalogHandler) GetPlay(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	p, err := h.Catalog.GetPlay(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toPlayDetail(p))
}

// CreatePlay handles POST /plays.
func (h *CatalogHandler) CreatePlay(c echo.Context) error {
	var req playReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	p, err := h.Catalog.CreatePlay(c.Request().Context(), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toPlayWrite(p))
}

// UpdatePlay handles PUT /plays/:id.  The genre and actor sets are
// replaced by the submitted ids.
func (h *CatalogHandler) UpdatePlay(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	var req playReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	p, err := h.Catalog.UpdatePlay(c.Request().Context(), id, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toPlayWrite(p))
}

// DeletePlay handles DELETE /plays/:id.
func (h *CatalogHandler) DeletePlay(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Catalog.DeletePlay(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
