package service

import (
	"context"

	"github.com/iliyamo/theatre-reservation/internal/apperr"
	"github.com/iliyamo/theatre-reservation/internal/filter"
	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/repository"
)

// CatalogService manages genres, actors, halls and plays.
type CatalogService struct {
	genres repository.GenreStore
	actors repository.ActorStore
	halls  repository.HallStore
	plays  repository.PlayStore
}

// NewCatalogService wires the catalog stores.
func NewCatalogService(g repository.GenreStore, a repository.ActorStore, h repository.HallStore, p repository.PlayStore) *CatalogService {
	return &CatalogService{genres: g, actors: a, halls: h, plays: p}
}

func (s *CatalogService) ListGenres(ctx context.Context) ([]model.Genre, error) {
	return s.genres.List(ctx)
}

func (s *CatalogService) CreateGenre(ctx context.Context, name string) (model.Genre, error) {
	v := &apperr.ValidationError{}
	g := model.Genre{Name: checkName(v, "name", name)}
	if err := v.Err(); err != nil {
		return model.Genre{}, err
	}
	if err := s.genres.Create(ctx, &g); err != nil {
		return model.Genre{}, err
	}
	return g, nil
}

func (s *CatalogService) ListActors(ctx context.Context) ([]model.Actor, error) {
	return s.actors.List(ctx)
}

func (s *CatalogService) CreateActor(ctx context.Context, firstName, lastName string) (model.Actor, error) {
	v := &apperr.ValidationError{}
	a := model.Actor{
		FirstName: checkName(v, "first_name", firstName),
		LastName:  checkName(v, "last_name", lastName),
	}
	if err := v.Err(); err != nil {
		return model.Actor{}, err
	}
	if err := s.actors.Create(ctx, &a); err != nil {
		return model.Actor{}, err
	}
	return a, nil
}

func (s *CatalogService) ListHalls(ctx context.Context) ([]model.TheatreHall, error) {
	return s.halls.List(ctx)
}

// CreateHall validates that the hall has at least one row and one seat
// per row.
func (s *CatalogService) CreateHall(ctx context.Context, name string, rows, seatsInRow int) (model.TheatreHall, error) {
	v := &apperr.ValidationError{}
	h := model.TheatreHall{Name: checkName(v, "name", name), Rows: rows, SeatsInRow: seatsInRow}
	if rows < 1 {
		v.Add(apperr.ErrInvalidField, "rows", msgMinOne)
	}
	if seatsInRow < 1 {
		v.Add(apperr.ErrInvalidField, "seats_in_row", msgMinOne)
	}
	if err := v.Err(); err != nil {
		return model.TheatreHall{}, err
	}
	if err := s.halls.Create(ctx, &h); err != nil {
		return model.TheatreHall{}, err
	}
	return h, nil
}

// ListPlays returns the plays matching f ordered by title.
func (s *CatalogService) ListPlays(ctx context.Context, f filter.PlayFilter) ([]model.Play, error) {
	return s.plays.List(ctx, f)
}

func (s *CatalogService) GetPlay(ctx context.Context, id uint64) (model.Play, error) {
	p, err := s.plays.GetByID(ctx, id)
	if err != nil {
		return model.Play{}, translate(err)
	}
	return p, nil
}

// CreatePlay stores a play linked to existing genres and actors and returns
// it as stored.
func (s *CatalogService) CreatePlay(ctx context.Context, in model.PlayInput) (model.Play, error) {
	in, err := s.validatePlay(ctx, in)
	if err != nil {
		return model.Play{}, err
	}
	id, err := s.plays.Create(ctx, in)
	if err != nil {
		return model.Play{}, err
	}
	return s.GetPlay(ctx, id)
}

// UpdatePlay replaces every writable field of the play, links included.
func (s *CatalogService) UpdatePlay(ctx context.Context, id uint64, in model.PlayInput) (model.Play, error) {
	in, err := s.validatePlay(ctx, in)
	if err != nil {
		return model.Play{}, err
	}
	if err := s.plays.Update(ctx, id, in); err != nil {
		return model.Play{}, translate(err)
	}
	return s.GetPlay(ctx, id)
}

// DeletePlay removes the play with its performances and their tickets.
func (s *CatalogService) DeletePlay(ctx context.Context, id uint64) error {
	return translate(s.plays.Delete(ctx, id))
}

func (s *CatalogService) validatePlay(ctx context.Context, in model.PlayInput) (model.PlayInput, error) {
	v := &apperr.ValidationError{}
	in.Title = checkName(v, "title", in.Title)
	in.GenreIDs = uniqueIDs(in.GenreIDs)
	in.ActorIDs = uniqueIDs(in.ActorIDs)

	genres, err := s.genres.GetByIDs(ctx, in.GenreIDs)
	if err != nil {
		return in, err
	}
	found := make(map[uint64]bool, len(genres))
	for _, g := range genres {
		found[g.ID] = true
	}
	for _, id := range in.GenreIDs {
		if !found[id] {
			v.Add(apperr.ErrInvalidReference, "genres", msgInvalidPK(id))
		}
	}

	actors, err := s.actors.GetByIDs(ctx, in.ActorIDs)
	if err != nil {
		return in, err
	}
	found = make(map[uint64]bool, len(actors))
	for _, a := range actors {
		found[a.ID] = true
	}
	for _, id := range in.ActorIDs {
		if !found[id] {
			v.Add(apperr.ErrInvalidReference, "actors", msgInvalidPK(id))
		}
	}
	return in, v.Err()
}

// uniqueIDs drops repeated ids, keeping first occurrences in order.
func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]bool, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
