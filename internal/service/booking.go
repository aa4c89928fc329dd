package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/iliyamo/theatre-reservation/internal/apperr"
	"github.com/iliyamo/theatre-reservation/internal/logger"
	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/repository"
)

// EventPublisher announces committed reservations.
type EventPublisher interface {
	PublishReservationCreated(ctx context.Context, r model.Reservation) error
}

// BookingObserver receives booking outcomes, typically for metrics.
type BookingObserver interface {
	ReservationCreated(tickets int)
	SeatConflict()
}

// publishTimeout bounds event delivery after the response is decided.
const publishTimeout = 5 * time.Second

// BookingService creates and lists reservations.
type BookingService struct {
	store    repository.ReservationStore
	events   EventPublisher
	observer BookingObserver
	now      func() time.Time
}

// BookingOption customizes a BookingService.
type BookingOption func(*BookingService)

// WithEvents publishes a reservation.created event after every commit.
func WithEvents(p EventPublisher) BookingOption {
	return func(s *BookingService) { s.events = p }
}

// WithObserver reports booking outcomes to o.
func WithObserver(o BookingObserver) BookingOption {
	return func(s *BookingService) { s.observer = o }
}

// WithClock overrides the source of reservation timestamps.
func WithClock(now func() time.Time) BookingOption {
	return func(s *BookingService) { s.now = now }
}

// NewBookingService returns a BookingService over store.
func NewBookingService(store repository.ReservationStore, opts ...BookingOption) *BookingService {
	s := &BookingService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type seatKey struct {
	performanceID uint64
	seat          model.Seat
}

// CreateReservation books every requested seat for userID or none of them.
//
// Each ticket is checked against its hall's bounds and against seats that
// are already taken, including seats requested earlier in the same call.
// Per-ticket problems are reported together under "tickets", one entry per
// requested ticket.  The storage unique key remains the final arbiter: a
// seat taken by a concurrent booking between the check and the insert is
// reported as taken and the whole reservation is rolled back.  Nothing is
// retried.
func (s *BookingService) CreateReservation(ctx context.Context, userID uint64, reqs []model.TicketRequest) (model.Reservation, error) {
	if userID == 0 {
		return model.Reservation{}, apperr.ErrUnauthorized
	}
	if len(reqs) == 0 {
		return model.Reservation{}, apperr.Invalid(apperr.ErrInvalidField, "tickets", msgNotEmpty)
	}

	var res model.Reservation
	err := s.store.WithinTx(ctx, func(tx repository.BookingTx) error {
		views, err := s.check(ctx, tx, reqs)
		if err != nil {
			return err
		}

		res = model.Reservation{UserID: userID, CreatedAt: s.now().UTC()}
		if err := tx.InsertReservation(ctx, &res); err != nil {
			return err
		}
		res.Tickets = make([]model.Ticket, len(reqs))
		for _, i := range insertOrder(reqs) {
			r := reqs[i]
			view := views[r.PerformanceID]
			t := model.Ticket{
				PerformanceID: r.PerformanceID,
				ReservationID: res.ID,
				Row:           r.Row,
				Seat:          r.Seat,
				Performance:   &view,
			}
			if err := tx.InsertTicket(ctx, &t); err != nil {
				if errors.Is(err, repository.ErrSeatTaken) {
					v := &apperr.ValidationError{}
					v.AddItem("tickets", i, len(reqs), apperr.Invalid(apperr.ErrSeatAlreadyTaken, "non_field_errors", msgUnique))
					return v
				}
				return err
			}
			res.Tickets[i] = t
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperr.ErrSeatAlreadyTaken) && s.observer != nil {
			s.observer.SeatConflict()
		}
		return model.Reservation{}, err
	}

	if s.observer != nil {
		s.observer.ReservationCreated(len(res.Tickets))
	}
	s.publish(ctx, res)
	return res, nil
}

// check validates every request inside tx and returns the performances
// they reference.  A *apperr.ValidationError is returned when any ticket
// is invalid.
func (s *BookingService) check(ctx context.Context, tx repository.BookingTx, reqs []model.TicketRequest) (map[uint64]model.PerformanceView, error) {
	views := make(map[uint64]model.PerformanceView)
	missing := make(map[uint64]bool)
	taken := make(map[seatKey]bool)
	verr := &apperr.ValidationError{}

	for i, r := range reqs {
		item := &apperr.ValidationError{}
		view, ok := views[r.PerformanceID]
		if !ok && !missing[r.PerformanceID] {
			v, err := tx.Performance(ctx, r.PerformanceID)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				missing[r.PerformanceID] = true
			case err != nil:
				return nil, err
			default:
				seats, err := tx.TakenSeats(ctx, r.PerformanceID)
				if err != nil {
					return nil, err
				}
				for _, st := range seats {
					taken[seatKey{r.PerformanceID, st}] = true
				}
				views[r.PerformanceID] = v
				view, ok = v, true
			}
		}
		if !ok {
			item.Add(apperr.ErrInvalidReference, "performance", msgInvalidPK(r.PerformanceID))
			verr.AddItem("tickets", i, len(reqs), item)
			continue
		}

		if msg, field := rangeViolation(view.Hall, r); msg != "" {
			item.Add(apperr.ErrOutOfRangeSeat, field, msg)
			verr.AddItem("tickets", i, len(reqs), item)
			continue
		}

		key := seatKey{r.PerformanceID, model.Seat{Row: r.Row, Seat: r.Seat}}
		if taken[key] {
			item.Add(apperr.ErrSeatAlreadyTaken, "non_field_errors", msgUnique)
			verr.AddItem("tickets", i, len(reqs), item)
			continue
		}
		taken[key] = true
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	return views, nil
}

// insertOrder returns the indexes of reqs sorted by performance, row and
// seat.  Concurrent bookings then take unique-index locks in the same order
// and cannot deadlock on each other.
func insertOrder(reqs []model.TicketRequest) []int {
	order := make([]int, len(reqs))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		ra, rb := reqs[a], reqs[b]
		return cmp.Or(
			cmp.Compare(ra.PerformanceID, rb.PerformanceID),
			cmp.Compare(ra.Row, rb.Row),
			cmp.Compare(ra.Seat, rb.Seat),
		)
	})
	return order
}

// rangeViolation checks row before seat and reports the first value that
// falls outside the hall, with the valid range in the message.
func rangeViolation(h model.TheatreHall, r model.TicketRequest) (msg, field string) {
	if r.Row < 1 || r.Row > h.Rows {
		return fmt.Sprintf("row number must be in available range: (1, rows): (1, %d), got %d", h.Rows, r.Row), "row"
	}
	if r.Seat < 1 || r.Seat > h.SeatsInRow {
		return fmt.Sprintf("seat number must be in available range: (1, seats_in_row): (1, %d), got %d", h.SeatsInRow, r.Seat), "seat"
	}
	return "", ""
}

// publish sends the event in the background.  Failures are logged and
// never affect the committed reservation.
func (s *BookingService) publish(ctx context.Context, res model.Reservation) {
	if s.events == nil {
		return
	}
	log := logger.WithContext(ctx)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	go func() {
		defer cancel()
		if err := s.events.PublishReservationCreated(ctx, res); err != nil {
			log.Warn("reservation event not published", "reservation_id", res.ID, "error", err)
		}
	}()
}

// ListReservations returns one page of userID's reservations and the total
// count.  Reservations of other users are never included.
func (s *BookingService) ListReservations(ctx context.Context, userID uint64, page model.Page) ([]model.Reservation, int, error) {
	if userID == 0 {
		return nil, 0, apperr.ErrUnauthorized
	}
	return s.store.ListByUser(ctx, userID, page)
}
