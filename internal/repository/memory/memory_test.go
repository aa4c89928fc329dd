package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/theatre-reservation/internal/filter"
	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/repository"
)

func seedPerformance(t *testing.T, db *DB) (playID, perfID uint64) {
	t.Helper()
	ctx := context.Background()
	hall := &model.TheatreHall{Name: "Main", Rows: 2, SeatsInRow: 3}
	require.NoError(t, db.Halls().Create(ctx, hall))
	playID, err := db.Plays().Create(ctx, model.PlayInput{Title: "Hamlet"})
	require.NoError(t, err)
	perfID, err = db.Performances().Create(ctx, model.PerformanceInput{
		ShowTime:      time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC),
		PlayID:        playID,
		TheatreHallID: hall.ID,
	})
	require.NoError(t, err)
	return playID, perfID
}

func TestWithinTxCommitsOnSuccess(t *testing.T) {
	db := New()
	ctx := context.Background()
	_, perfID := seedPerformance(t, db)

	err := db.Reservations().WithinTx(ctx, func(tx repository.BookingTx) error {
		r := &model.Reservation{UserID: 1, CreatedAt: time.Now()}
		require.NoError(t, tx.InsertReservation(ctx, r))
		return tx.InsertTicket(ctx, &model.Ticket{PerformanceID: perfID, ReservationID: r.ID, Row: 1, Seat: 1})
	})
	require.NoError(t, err)

	v, err := db.Performances().GetByID(ctx, perfID)
	require.NoError(t, err)
	assert.Equal(t, 5, v.TicketsAvailable)
	assert.Equal(t, []model.Seat{{Row: 1, Seat: 1}}, v.TakenSeats)
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	db := New()
	ctx := context.Background()
	_, perfID := seedPerformance(t, db)
	boom := errors.New("boom")

	err := db.Reservations().WithinTx(ctx, func(tx repository.BookingTx) error {
		r := &model.Reservation{UserID: 1, CreatedAt: time.Now()}
		require.NoError(t, tx.InsertReservation(ctx, r))
		require.NoError(t, tx.InsertTicket(ctx, &model.Ticket{PerformanceID: perfID, ReservationID: r.ID, Row: 1, Seat: 1}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	list, total, err := db.Reservations().ListByUser(ctx, 1, model.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
	v, err := db.Performances().GetByID(ctx, perfID)
	require.NoError(t, err)
	assert.Equal(t, 6, v.TicketsAvailable)
}

func TestInsertTicketRejectsTakenSeat(t *testing.T) {
	db := New()
	ctx := context.Background()
	_, perfID := seedPerformance(t, db)

	err := db.Reservations().WithinTx(ctx, func(tx repository.BookingTx) error {
		r := &model.Reservation{UserID: 1}
		require.NoError(t, tx.InsertReservation(ctx, r))
		require.NoError(t, tx.InsertTicket(ctx, &model.Ticket{PerformanceID: perfID, ReservationID: r.ID, Row: 2, Seat: 2}))
		return tx.InsertTicket(ctx, &model.Ticket{PerformanceID: perfID, ReservationID: r.ID, Row: 2, Seat: 2})
	})
	assert.ErrorIs(t, err, repository.ErrSeatTaken)
}

func TestDeletePlayCascades(t *testing.T) {
	db := New()
	ctx := context.Background()
	playID, perfID := seedPerformance(t, db)
	require.NoError(t, db.Reservations().WithinTx(ctx, func(tx repository.BookingTx) error {
		r := &model.Reservation{UserID: 1}
		require.NoError(t, tx.InsertReservation(ctx, r))
		return tx.InsertTicket(ctx, &model.Ticket{PerformanceID: perfID, ReservationID: r.ID, Row: 1, Seat: 1})
	}))

	require.NoError(t, db.Plays().Delete(ctx, playID))

	_, err := db.Performances().GetByID(ctx, perfID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, db.tickets)
	assert.Empty(t, db.seats)
	assert.ErrorIs(t, db.Plays().Delete(ctx, playID), repository.ErrNotFound)
}

func TestPerformanceWritesRequireExistingPlayAndHall(t *testing.T) {
	db := New()
	ctx := context.Background()
	playID, perfID := seedPerformance(t, db)
	perf, err := db.Performances().GetByID(ctx, perfID)
	require.NoError(t, err)
	hallID := perf.TheatreHallID

	in := model.PerformanceInput{ShowTime: time.Date(2024, 6, 1, 19, 0, 0, 0, time.UTC), PlayID: playID, TheatreHallID: hallID + 100}
	_, err = db.Performances().Create(ctx, in)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, db.Performances().Update(ctx, perfID, in), repository.ErrNotFound)

	require.NoError(t, db.Plays().Delete(ctx, playID))
	in.TheatreHallID = hallID
	_, err = db.Performances().Create(ctx, in)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	list, err := db.Performances().List(ctx, filter.PerformanceFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPlaysListFiltersAndOrders(t *testing.T) {
	db := New()
	ctx := context.Background()
	drama := &model.Genre{Name: "Drama"}
	comedy := &model.Genre{Name: "Comedy"}
	require.NoError(t, db.Genres().Create(ctx, drama))
	require.NoError(t, db.Genres().Create(ctx, comedy))
	for _, in := range []model.PlayInput{
		{Title: "Movie22", GenreIDs: []uint64{comedy.ID}},
		{Title: "Movie", GenreIDs: []uint64{drama.ID}},
		{Title: "movie2"},
	} {
		_, err := db.Plays().Create(ctx, in)
		require.NoError(t, err)
	}

	titles := func(ps []model.Play) []string {
		var out []string
		for _, p := range ps {
			out = append(out, p.Title)
		}
		return out
	}

	all, err := db.Plays().List(ctx, filter.PlayFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Movie", "movie2", "Movie22"}, titles(all))

	byTitle, err := db.Plays().List(ctx, filter.PlayFilter{Title: "2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"movie2", "Movie22"}, titles(byTitle))

	byGenre, err := db.Plays().List(ctx, filter.PlayFilter{GenreIDs: []uint64{drama.ID, comedy.ID}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Movie", "Movie22"}, titles(byGenre))
}

func TestListByUserPaginates(t *testing.T) {
	db := New()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		created := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, db.Reservations().WithinTx(ctx, func(tx repository.BookingTx) error {
			return tx.InsertReservation(ctx, &model.Reservation{UserID: 7, CreatedAt: created})
		}))
	}
	require.NoError(t, db.Reservations().WithinTx(ctx, func(tx repository.BookingTx) error {
		return tx.InsertReservation(ctx, &model.Reservation{UserID: 8, CreatedAt: base})
	}))

	first, total, err := db.Reservations().ListByUser(ctx, 7, model.Page{Number: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, first, 2)
	assert.Equal(t, uint64(3), first[0].ID)
	assert.Equal(t, uint64(2), first[1].ID)

	second, _, err := db.Reservations().ListByUser(ctx, 7, model.Page{Number: 2, Size: 2})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, uint64(1), second[0].ID)

	beyond, _, err := db.Reservations().ListByUser(ctx, 7, model.Page{Number: 5, Size: 2})
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestUsersRejectDuplicateEmail(t *testing.T) {
	db := New()
	ctx := context.Background()
	_, err := db.Users().Create(ctx, "A@Example.com ", "secret123", model.RoleUser, 4)
	require.NoError(t, err)
	_, err = db.Users().Create(ctx, "a@example.com", "secret123", model.RoleUser, 4)
	assert.ErrorIs(t, err, repository.ErrEmailExists)

	u, err := db.Users().GetByEmail(ctx, "a@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Email)
}
