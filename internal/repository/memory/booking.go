package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/repository"
	"github.com/iliyamo/theatre-reservation/internal/utils"
)

// Reservations implements repository.ReservationStore.
type Reservations struct{ db *DB }

// WithinTx holds the database lock for the whole of fn.  Writes are staged
// and only applied when fn returns nil.
func (s *Reservations) WithinTx(ctx context.Context, fn func(tx repository.BookingTx) error) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	tx := &bookingTx{db: s.db, staged: map[seatKey]struct{}{}}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, r := range tx.reservations {
		s.db.reservations[r.ID] = r
	}
	for _, t := range tx.tickets {
		s.db.tickets[t.ID] = t
		s.db.seats[seatKey{t.PerformanceID, t.Row, t.Seat}] = t.ID
	}
	return nil
}

// ListByUser returns the user's reservations newest first.
func (s *Reservations) ListByUser(_ context.Context, userID uint64, page model.Page) ([]model.Reservation, int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var mine []model.Reservation
	for _, r := range s.db.reservations {
		if r.UserID == userID {
			mine = append(mine, r)
		}
	}
	sort.Slice(mine, func(i, j int) bool {
		if !mine[i].CreatedAt.Equal(mine[j].CreatedAt) {
			return mine[i].CreatedAt.After(mine[j].CreatedAt)
		}
		return mine[i].ID > mine[j].ID
	})
	total := len(mine)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Size
	if end > total {
		end = total
	}
	out := make([]model.Reservation, 0, end-start)
	for _, r := range mine[start:end] {
		r.Tickets = s.ticketsOf(r.ID)
		out = append(out, r)
	}
	return out, total, nil
}

func (s *Reservations) ticketsOf(reservationID uint64) []model.Ticket {
	var out []model.Ticket
	for _, t := range s.db.tickets {
		if t.ReservationID != reservationID {
			continue
		}
		if p, ok := s.db.performances[t.PerformanceID]; ok {
			v := s.db.performanceView(p)
			t.Performance = &v
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type bookingTx struct {
	db           *DB
	reservations []model.Reservation
	tickets      []model.Ticket
	staged       map[seatKey]struct{}
}

func (tx *bookingTx) Performance(_ context.Context, id uint64) (model.PerformanceView, error) {
	p, ok := tx.db.performances[id]
	if !ok {
		return model.PerformanceView{}, repository.ErrNotFound
	}
	return tx.db.performanceView(p), nil
}

func (tx *bookingTx) TakenSeats(_ context.Context, performanceID uint64) ([]model.Seat, error) {
	return tx.db.takenSeats(performanceID), nil
}

func (tx *bookingTx) InsertReservation(_ context.Context, r *model.Reservation) error {
	r.ID = tx.db.id("reservations")
	r.CreatedAt = r.CreatedAt.UTC()
	stored := *r
	stored.Tickets = nil
	tx.reservations = append(tx.reservations, stored)
	return nil
}

// InsertTicket enforces the unique seat key against committed tickets and
// tickets staged earlier in the same transaction.
func (tx *bookingTx) InsertTicket(_ context.Context, t *model.Ticket) error {
	key := seatKey{t.PerformanceID, t.Row, t.Seat}
	if _, ok := tx.db.seats[key]; ok {
		return repository.ErrSeatTaken
	}
	if _, ok := tx.staged[key]; ok {
		return repository.ErrSeatTaken
	}
	if _, ok := tx.db.performances[t.PerformanceID]; !ok {
		return repository.ErrNotFound
	}
	t.ID = tx.db.id("tickets")
	tx.staged[key] = struct{}{}
	stored := *t
	stored.Performance = nil
	tx.tickets = append(tx.tickets, stored)
	return nil
}

// Users implements repository.UserStore.
type Users struct{ db *DB }

func (s *Users) Create(_ context.Context, email, password, role string, cost int) (uint64, error) {
	email = repository.NormalizeEmail(email)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	now := s.db.now()
	id := s.db.id("users")
	s.db.users[id] = model.User{
		ID:           id,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return id, nil
}

func (s *Users) GetByEmail(_ context.Context, email string) (model.User, error) {
	email = repository.NormalizeEmail(email)
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *Users) GetByID(_ context.Context, id uint64) (model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

// Tokens implements repository.TokenStore.
type Tokens struct{ db *DB }

func (s *Tokens) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.tokens[tokenHash] = tokenRecord{UserID: userID, ExpiresAt: exp.UTC()}
	return nil
}

func (s *Tokens) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	rec, ok := s.db.tokens[tokenHash]
	if !ok || rec.Revoked || s.db.now().After(rec.ExpiresAt) {
		return 0, repository.ErrNotFound
	}
	return rec.UserID, nil
}

func (s *Tokens) RevokeByHash(_ context.Context, tokenHash string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if rec, ok := s.db.tokens[tokenHash]; ok {
		rec.Revoked = true
		s.db.tokens[tokenHash] = rec
	}
	return nil
}

func (s *Tokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for h, rec := range s.db.tokens {
		if rec.UserID == userID {
			rec.Revoked = true
			s.db.tokens[h] = rec
		}
	}
	return nil
}

var (
	_ repository.ReservationStore = (*Reservations)(nil)
	_ repository.UserStore        = (*Users)(nil)
	_ repository.TokenStore       = (*Tokens)(nil)
)
