package repository

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/theatre-reservation/internal/model"
)

// ReservationRepo stores reservations and their tickets.  All timestamp
// fields are stored in UTC.
type ReservationRepo struct {
	db *sqlx.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sqlx.DB) *ReservationRepo { return &ReservationRepo{db: db} }

type reservationRow struct {
	ID        uint64    `db:"id"`
	UserID    uint64    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

// ticketRow is a ticket joined with the performance summary shown in
// reservation listings.
type ticketRow struct {
	ID             uint64    `db:"id"`
	ReservationID  uint64    `db:"reservation_id"`
	PerformanceID  uint64    `db:"performance_id"`
	Row            int       `db:"seat_row"`
	Seat           int       `db:"seat_number"`
	ShowTime       time.Time `db:"show_time"`
	PlayID         uint64    `db:"play_id"`
	PlayTitle      string    `db:"play_title"`
	HallID         uint64    `db:"theatre_hall_id"`
	HallName       string    `db:"hall_name"`
	HallRows       int       `db:"hall_rows"`
	HallSeatsInRow int       `db:"hall_seats_in_row"`
}

func (r ticketRow) model() model.Ticket {
	return model.Ticket{
		ID:            r.ID,
		PerformanceID: r.PerformanceID,
		ReservationID: r.ReservationID,
		Row:           r.Row,
		Seat:          r.Seat,
		Performance: &model.PerformanceView{
			Performance: model.Performance{
				ID:            r.PerformanceID,
				ShowTime:      r.ShowTime.UTC(),
				PlayID:        r.PlayID,
				TheatreHallID: r.HallID,
			},
			Play: model.Play{ID: r.PlayID, Title: r.PlayTitle},
			Hall: model.TheatreHall{ID: r.HallID, Name: r.HallName, Rows: r.HallRows, SeatsInRow: r.HallSeatsInRow},
		},
	}
}

// WithinTx runs fn in a transaction, committing when fn returns nil.
func (r *ReservationRepo) WithinTx(ctx context.Context, fn func(tx BookingTx) error) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(&bookingTx{tx: tx})
	})
}

// reservationPageQuery selects one page of a user's reservations.
func reservationPageQuery(userID uint64, page model.Page) *goqu.SelectDataset {
	return dialect.From("reservations").
		Select("id", "user_id", "created_at").
		Where(goqu.C("user_id").Eq(userID)).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc()).
		Limit(uint(page.Size)).
		Offset(uint(page.Offset()))
}

// ListByUser returns one page of the user's reservations together with the
// user's total reservation count.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64, page model.Page) ([]model.Reservation, int, error) {
	var total int
	cds := dialect.From("reservations").Select(goqu.COUNT("*")).Where(goqu.C("user_id").Eq(userID))
	if err := getOne(ctx, r.db, &total, cds); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []model.Reservation{}, 0, nil
	}

	var rows []reservationRow
	if err := selectAll(ctx, r.db, &rows, reservationPageQuery(userID, page)); err != nil {
		return nil, 0, err
	}
	out := make([]model.Reservation, 0, len(rows))
	index := make(map[uint64]int, len(rows))
	ids := make([]uint64, 0, len(rows))
	for i, row := range rows {
		out = append(out, model.Reservation{ID: row.ID, UserID: row.UserID, CreatedAt: row.CreatedAt.UTC()})
		index[row.ID] = i
		ids = append(ids, row.ID)
	}
	if len(ids) == 0 {
		return out, total, nil
	}

	var tickets []ticketRow
	tds := dialect.From(goqu.T("tickets").As("t")).
		Join(goqu.T("performances").As("perf"), goqu.On(goqu.I("perf.id").Eq(goqu.I("t.performance_id")))).
		Join(goqu.T("plays").As("p"), goqu.On(goqu.I("p.id").Eq(goqu.I("perf.play_id")))).
		Join(goqu.T("theatre_halls").As("h"), goqu.On(goqu.I("h.id").Eq(goqu.I("perf.theatre_hall_id")))).
		Select(
			goqu.I("t.id"), goqu.I("t.reservation_id"), goqu.I("t.performance_id"),
			goqu.I("t.seat_row"), goqu.I("t.seat_number"),
			goqu.I("perf.show_time"), goqu.I("perf.play_id"), goqu.I("perf.theatre_hall_id"),
			goqu.I("p.title").As("play_title"),
			goqu.I("h.name").As("hall_name"),
			goqu.I("h.num_rows").As("hall_rows"),
			goqu.I("h.seats_in_row").As("hall_seats_in_row"),
		).
		Where(goqu.I("t.reservation_id").In(ids)).
		Order(goqu.I("t.id").Asc())
	if err := selectAll(ctx, r.db, &tickets, tds); err != nil {
		return nil, 0, err
	}
	for _, t := range tickets {
		res := &out[index[t.ReservationID]]
		res.Tickets = append(res.Tickets, t.model())
	}
	return out, total, nil
}

// bookingTx implements BookingTx on top of a MySQL transaction.
type bookingTx struct {
	tx *sqlx.Tx
}

func (b *bookingTx) Performance(ctx context.Context, id uint64) (model.PerformanceView, error) {
	return loadPerformance(ctx, b.tx, id)
}

func (b *bookingTx) TakenSeats(ctx context.Context, performanceID uint64) ([]model.Seat, error) {
	return takenSeats(ctx, b.tx, performanceID)
}

func (b *bookingTx) InsertReservation(ctx context.Context, res *model.Reservation) error {
	id, err := insert(ctx, b.tx, dialect.Insert("reservations").Rows(goqu.Record{
		"user_id":    res.UserID,
		"created_at": res.CreatedAt.UTC(),
	}))
	if err != nil {
		return err
	}
	res.ID = id
	return nil
}

// InsertTicket relies on the uq_ticket_seat key; a concurrent booking that
// took the same seat first surfaces here as ErrSeatTaken, whether MySQL
// reports a duplicate entry or a deadlock between the two inserts.
func (b *bookingTx) InsertTicket(ctx context.Context, t *model.Ticket) error {
	id, err := insert(ctx, b.tx, dialect.Insert("tickets").Rows(goqu.Record{
		"performance_id": t.PerformanceID,
		"reservation_id": t.ReservationID,
		"seat_row":       t.Row,
		"seat_number":    t.Seat,
	}))
	if err != nil {
		if isSeatConflict(err) {
			return ErrSeatTaken
		}
		return err
	}
	t.ID = id
	return nil
}
