package repository

import (
	"context"
	"time"

	"github.com/iliyamo/theatre-reservation/internal/filter"
	"github.com/iliyamo/theatre-reservation/internal/model"
)

// GenreStore persists genres.
type GenreStore interface {
	List(ctx context.Context) ([]model.Genre, error)
	GetByIDs(ctx context.Context, ids []uint64) ([]model.Genre, error)
	Create(ctx context.Context, g *model.Genre) error
}

// ActorStore persists actors.
type ActorStore interface {
	List(ctx context.Context) ([]model.Actor, error)
	GetByIDs(ctx context.Context, ids []uint64) ([]model.Actor, error)
	Create(ctx context.Context, a *model.Actor) error
}

// HallStore persists theatre halls.
type HallStore interface {
	List(ctx context.Context) ([]model.TheatreHall, error)
	GetByID(ctx context.Context, id uint64) (model.TheatreHall, error)
	Create(ctx context.Context, h *model.TheatreHall) error
}

// PlayStore persists plays and their genre/actor links.  Create and Update
// replace the link sets with in.GenreIDs and in.ActorIDs.  Delete cascades
// to the play's performances and their tickets.
type PlayStore interface {
	List(ctx context.Context, f filter.PlayFilter) ([]model.Play, error)
	GetByID(ctx context.Context, id uint64) (model.Play, error)
	Create(ctx context.Context, in model.PlayInput) (uint64, error)
	Update(ctx context.Context, id uint64, in model.PlayInput) error
	Delete(ctx context.Context, id uint64) error
}

// PerformanceStore persists performances.  List and GetByID compute
// TicketsAvailable from the current ticket count on every call; GetByID
// also fills TakenSeats.  Delete cascades to the performance's tickets.
type PerformanceStore interface {
	List(ctx context.Context, f filter.PerformanceFilter) ([]model.PerformanceView, error)
	GetByID(ctx context.Context, id uint64) (model.PerformanceView, error)
	Create(ctx context.Context, in model.PerformanceInput) (uint64, error)
	Update(ctx context.Context, id uint64, in model.PerformanceInput) error
	Delete(ctx context.Context, id uint64) error
}

// BookingTx is the unit of work used to create a reservation.  Nothing
// written through it is visible to others until WithinTx commits.
type BookingTx interface {
	// Performance loads the performance with its play title and hall.
	// Returns ErrNotFound for an unknown id.
	Performance(ctx context.Context, id uint64) (model.PerformanceView, error)
	// TakenSeats lists the seats already ticketed for a performance.
	TakenSeats(ctx context.Context, performanceID uint64) ([]model.Seat, error)
	// InsertReservation stores r and sets r.ID.
	InsertReservation(ctx context.Context, r *model.Reservation) error
	// InsertTicket stores t and sets t.ID.  Returns ErrSeatTaken when the
	// seat is already held by another ticket for the same performance.
	InsertTicket(ctx context.Context, t *model.Ticket) error
}

// ReservationStore persists reservations and their tickets.
type ReservationStore interface {
	// WithinTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithinTx(ctx context.Context, fn func(tx BookingTx) error) error
	// ListByUser returns one page of the user's reservations, newest
	// first, with tickets and their performance summaries, plus the total
	// number of reservations the user has.
	ListByUser(ctx context.Context, userID uint64, page model.Page) ([]model.Reservation, int, error)
}

// UserStore persists user accounts.
type UserStore interface {
	Create(ctx context.Context, email, password, role string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// TokenStore persists hashed refresh tokens.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}
