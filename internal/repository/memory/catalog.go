package memory

import (
	"context"
	"sort"

	"github.com/iliyamo/theatre-reservation/internal/filter"
	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/repository"
)

// Genres implements repository.GenreStore.
type Genres struct{ db *DB }

func (s *Genres) List(_ context.Context) ([]model.Genre, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make([]model.Genre, 0, len(s.db.genres))
	for _, g := range s.db.genres {
		out = append(out, g)
	}
	sortGenres(out)
	return out, nil
}

func (s *Genres) GetByIDs(_ context.Context, ids []uint64) ([]model.Genre, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []model.Genre
	for _, id := range dedupe(ids) {
		if g, ok := s.db.genres[id]; ok {
			out = append(out, g)
		}
	}
	sortGenres(out)
	return out, nil
}

func (s *Genres) Create(_ context.Context, g *model.Genre) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	g.ID = s.db.id("genres")
	s.db.genres[g.ID] = *g
	return nil
}

// Actors implements repository.ActorStore.
type Actors struct{ db *DB }

func (s *Actors) List(_ context.Context) ([]model.Actor, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make([]model.Actor, 0, len(s.db.actors))
	for _, a := range s.db.actors {
		out = append(out, a)
	}
	sortActors(out)
	return out, nil
}

func (s *Actors) GetByIDs(_ context.Context, ids []uint64) ([]model.Actor, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []model.Actor
	for _, id := range dedupe(ids) {
		if a, ok := s.db.actors[id]; ok {
			out = append(out, a)
		}
	}
	sortActors(out)
	return out, nil
}

func (s *Actors) Create(_ context.Context, a *model.Actor) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	a.ID = s.db.id("actors")
	s.db.actors[a.ID] = *a
	return nil
}

// Halls implements repository.HallStore.
type Halls struct{ db *DB }

func (s *Halls) List(_ context.Context) ([]model.TheatreHall, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make([]model.TheatreHall, 0, len(s.db.halls))
	for _, h := range s.db.halls {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Halls) GetByID(_ context.Context, id uint64) (model.TheatreHall, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	h, ok := s.db.halls[id]
	if !ok {
		return model.TheatreHall{}, repository.ErrNotFound
	}
	return h, nil
}

func (s *Halls) Create(_ context.Context, h *model.TheatreHall) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	h.ID = s.db.id("theatre_halls")
	s.db.halls[h.ID] = *h
	return nil
}

// Plays implements repository.PlayStore.
type Plays struct{ db *DB }

func (s *Plays) List(_ context.Context, f filter.PlayFilter) ([]model.Play, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []model.Play{}
	for _, rec := range s.db.plays {
		if p := s.db.play(rec); f.Match(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return lessFold(out[i].Title, out[j].Title)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Plays) GetByID(_ context.Context, id uint64) (model.Play, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	rec, ok := s.db.plays[id]
	if !ok {
		return model.Play{}, repository.ErrNotFound
	}
	return s.db.play(rec), nil
}

func (s *Plays) Create(_ context.Context, in model.PlayInput) (uint64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	id := s.db.id("plays")
	s.db.plays[id] = playRecord{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		GenreIDs:    dedupe(in.GenreIDs),
		ActorIDs:    dedupe(in.ActorIDs),
	}
	return id, nil
}

func (s *Plays) Update(_ context.Context, id uint64, in model.PlayInput) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.plays[id]; !ok {
		return repository.ErrNotFound
	}
	s.db.plays[id] = playRecord{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		GenreIDs:    dedupe(in.GenreIDs),
		ActorIDs:    dedupe(in.ActorIDs),
	}
	return nil
}

// Delete removes the play and cascades to its performances and tickets.
func (s *Plays) Delete(_ context.Context, id uint64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.plays[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.db.plays, id)
	for pid, p := range s.db.performances {
		if p.PlayID == id {
			s.db.deletePerformance(pid)
		}
	}
	return nil
}

// Performances implements repository.PerformanceStore.
type Performances struct{ db *DB }

func (s *Performances) List(_ context.Context, f filter.PerformanceFilter) ([]model.PerformanceView, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []model.PerformanceView{}
	for _, p := range s.db.performances {
		if f.Match(p) {
			out = append(out, s.db.performanceView(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ShowTime.Equal(out[j].ShowTime) {
			return out[i].ShowTime.After(out[j].ShowTime)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Performances) GetByID(_ context.Context, id uint64) (model.PerformanceView, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p, ok := s.db.performances[id]
	if !ok {
		return model.PerformanceView{}, repository.ErrNotFound
	}
	v := s.db.performanceView(p)
	v.TakenSeats = s.db.takenSeats(id)
	return v, nil
}

// referencesExist mirrors the foreign keys of the performances table.
func (db *DB) referencesExist(in model.PerformanceInput) bool {
	_, play := db.plays[in.PlayID]
	_, hall := db.halls[in.TheatreHallID]
	return play && hall
}

func (s *Performances) Create(_ context.Context, in model.PerformanceInput) (uint64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if !s.db.referencesExist(in) {
		return 0, repository.ErrNotFound
	}
	id := s.db.id("performances")
	s.db.performances[id] = model.Performance{
		ID:            id,
		ShowTime:      in.ShowTime.UTC(),
		PlayID:        in.PlayID,
		TheatreHallID: in.TheatreHallID,
	}
	return id, nil
}

func (s *Performances) Update(_ context.Context, id uint64, in model.PerformanceInput) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.performances[id]; !ok || !s.db.referencesExist(in) {
		return repository.ErrNotFound
	}
	s.db.performances[id] = model.Performance{
		ID:            id,
		ShowTime:      in.ShowTime.UTC(),
		PlayID:        in.PlayID,
		TheatreHallID: in.TheatreHallID,
	}
	return nil
}

func (s *Performances) Delete(_ context.Context, id uint64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.performances[id]; !ok {
		return repository.ErrNotFound
	}
	s.db.deletePerformance(id)
	return nil
}

var (
	_ repository.GenreStore       = (*Genres)(nil)
	_ repository.ActorStore       = (*Actors)(nil)
	_ repository.HallStore        = (*Halls)(nil)
	_ repository.PlayStore        = (*Plays)(nil)
	_ repository.PerformanceStore = (*Performances)(nil)
)
