package service

import (
	"context"
	"errors"

	"github.com/iliyamo/theatre-reservation/internal/apperr"
	"github.com/iliyamo/theatre-reservation/internal/filter"
	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/repository"
)

// ScheduleService manages performances.
type ScheduleService struct {
	performances repository.PerformanceStore
	plays        repository.PlayStore
	halls        repository.HallStore
}

// NewScheduleService wires the scheduling stores.
func NewScheduleService(perf repository.PerformanceStore, plays repository.PlayStore, halls repository.HallStore) *ScheduleService {
	return &ScheduleService{performances: perf, plays: plays, halls: halls}
}

// ListPerformances returns the performances matching f, latest first, each
// with a freshly computed TicketsAvailable.
func (s *ScheduleService) ListPerformances(ctx context.Context, f filter.PerformanceFilter) ([]model.PerformanceView, error) {
	return s.performances.List(ctx, f)
}

// GetPerformance returns the performance with its full play, hall, taken
// seats and availability.
func (s *ScheduleService) GetPerformance(ctx context.Context, id uint64) (model.PerformanceView, error) {
	v, err := s.performances.GetByID(ctx, id)
	if err != nil {
		return model.PerformanceView{}, translate(err)
	}
	play, err := s.plays.GetByID(ctx, v.PlayID)
	if err != nil {
		return model.PerformanceView{}, translate(err)
	}
	v.Play = play
	return v, nil
}

func (s *ScheduleService) CreatePerformance(ctx context.Context, in model.PerformanceInput) (model.Performance, error) {
	if err := s.validate(ctx, in); err != nil {
		return model.Performance{}, err
	}
	id, err := s.performances.Create(ctx, in)
	if err != nil {
		return model.Performance{}, err
	}
	return model.Performance{ID: id, ShowTime: in.ShowTime.UTC(), PlayID: in.PlayID, TheatreHallID: in.TheatreHallID}, nil
}

func (s *ScheduleService) UpdatePerformance(ctx context.Context, id uint64, in model.PerformanceInput) (model.Performance, error) {
	if err := s.validate(ctx, in); err != nil {
		return model.Performance{}, err
	}
	if err := s.performances.Update(ctx, id, in); err != nil {
		return model.Performance{}, translate(err)
	}
	return model.Performance{ID: id, ShowTime: in.ShowTime.UTC(), PlayID: in.PlayID, TheatreHallID: in.TheatreHallID}, nil
}

// DeletePerformance removes the performance and its tickets.
func (s *ScheduleService) DeletePerformance(ctx context.Context, id uint64) error {
	return translate(s.performances.Delete(ctx, id))
}

func (s *ScheduleService) validate(ctx context.Context, in model.PerformanceInput) error {
	v := &apperr.ValidationError{}
	if in.ShowTime.IsZero() {
		v.Add(apperr.ErrInvalidField, "show_time", msgRequired)
	}
	if in.PlayID == 0 {
		v.Add(apperr.ErrInvalidField, "play", msgRequired)
	} else if _, err := s.plays.GetByID(ctx, in.PlayID); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		v.Add(apperr.ErrInvalidReference, "play", msgInvalidPK(in.PlayID))
	}
	if in.TheatreHallID == 0 {
		v.Add(apperr.ErrInvalidField, "theatre_hall", msgRequired)
	} else if _, err := s.halls.GetByID(ctx, in.TheatreHallID); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		v.Add(apperr.ErrInvalidReference, "theatre_hall", msgInvalidPK(in.TheatreHallID))
	}
	return v.Err()
}
