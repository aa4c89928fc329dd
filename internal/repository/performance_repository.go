package repository

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/theatre-reservation/internal/filter"
	"github.com/iliyamo/theatre-reservation/internal/model"
)

// performanceRow is a performance joined with its play title, its hall and
// the derived availability.
type performanceRow struct {
	ID               uint64    `db:"id"`
	ShowTime         time.Time `db:"show_time"`
	PlayID           uint64    `db:"play_id"`
	TheatreHallID    uint64    `db:"theatre_hall_id"`
	PlayTitle        string    `db:"play_title"`
	HallName         string    `db:"hall_name"`
	HallRows         int       `db:"hall_rows"`
	HallSeatsInRow   int       `db:"hall_seats_in_row"`
	TicketsAvailable int       `db:"tickets_available"`
}

func (r performanceRow) model() model.PerformanceView {
	return model.PerformanceView{
		Performance: model.Performance{
			ID:            r.ID,
			ShowTime:      r.ShowTime.UTC(),
			PlayID:        r.PlayID,
			TheatreHallID: r.TheatreHallID,
		},
		Play: model.Play{ID: r.PlayID, Title: r.PlayTitle},
		Hall: model.TheatreHall{
			ID:         r.TheatreHallID,
			Name:       r.HallName,
			Rows:       r.HallRows,
			SeatsInRow: r.HallSeatsInRow,
		},
		TicketsAvailable: r.TicketsAvailable,
	}
}

type seatRow struct {
	Row  int `db:"seat_row"`
	Seat int `db:"seat_number"`
}

// PerformanceRepo stores performances.
type PerformanceRepo struct {
	db *sqlx.DB
}

// NewPerformanceRepo constructs a PerformanceRepo with the given DB handle.
func NewPerformanceRepo(db *sqlx.DB) *PerformanceRepo { return &PerformanceRepo{db: db} }

// performanceSelect joins play and hall and derives tickets_available from
// the live ticket count.  Nothing about availability is stored.
func performanceSelect() *goqu.SelectDataset {
	return dialect.From(goqu.T("performances").As("perf")).
		Join(goqu.T("plays").As("p"), goqu.On(goqu.I("p.id").Eq(goqu.I("perf.play_id")))).
		Join(goqu.T("theatre_halls").As("h"), goqu.On(goqu.I("h.id").Eq(goqu.I("perf.theatre_hall_id")))).
		LeftJoin(goqu.T("tickets").As("t"), goqu.On(goqu.I("t.performance_id").Eq(goqu.I("perf.id")))).
		Select(
			goqu.I("perf.id").As("id"),
			goqu.I("perf.show_time").As("show_time"),
			goqu.I("perf.play_id").As("play_id"),
			goqu.I("perf.theatre_hall_id").As("theatre_hall_id"),
			goqu.I("p.title").As("play_title"),
			goqu.I("h.name").As("hall_name"),
			goqu.I("h.num_rows").As("hall_rows"),
			goqu.I("h.seats_in_row").As("hall_seats_in_row"),
			goqu.L("h.num_rows * h.seats_in_row - COUNT(t.id)").As("tickets_available"),
		).
		GroupBy(
			goqu.I("perf.id"), goqu.I("perf.show_time"), goqu.I("perf.play_id"), goqu.I("perf.theatre_hall_id"),
			goqu.I("p.title"), goqu.I("h.name"), goqu.I("h.num_rows"), goqu.I("h.seats_in_row"),
		)
}

// performanceListQuery applies the date and play filters to the listing.
func performanceListQuery(f filter.PerformanceFilter) *goqu.SelectDataset {
	ds := performanceSelect().Order(goqu.I("perf.show_time").Desc(), goqu.I("perf.id").Desc())
	if f.Date != nil {
		ds = ds.Where(goqu.Func("DATE", goqu.I("perf.show_time")).Eq(f.Date.Format(filter.DateLayout)))
	}
	if f.PlayID != nil {
		ds = ds.Where(goqu.I("perf.play_id").Eq(*f.PlayID))
	}
	return ds
}

// List returns the performances matching f, newest show time first.
func (r *PerformanceRepo) List(ctx context.Context, f filter.PerformanceFilter) ([]model.PerformanceView, error) {
	var rows []performanceRow
	if err := selectAll(ctx, r.db, &rows, performanceListQuery(f)); err != nil {
		return nil, err
	}
	out := make([]model.PerformanceView, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.model())
	}
	return out, nil
}

// GetByID returns one performance with its taken seats.
func (r *PerformanceRepo) GetByID(ctx context.Context, id uint64) (model.PerformanceView, error) {
	v, err := loadPerformance(ctx, r.db, id)
	if err != nil {
		return model.PerformanceView{}, err
	}
	v.TakenSeats, err = takenSeats(ctx, r.db, id)
	if err != nil {
		return model.PerformanceView{}, err
	}
	return v, nil
}

func loadPerformance(ctx context.Context, q sqlx.QueryerContext, id uint64) (model.PerformanceView, error) {
	var row performanceRow
	if err := getOne(ctx, q, &row, performanceSelect().Where(goqu.I("perf.id").Eq(id))); err != nil {
		return model.PerformanceView{}, err
	}
	return row.model(), nil
}

func takenSeats(ctx context.Context, q sqlx.QueryerContext, performanceID uint64) ([]model.Seat, error) {
	var rows []seatRow
	ds := dialect.From("tickets").
		Select("seat_row", "seat_number").
		Where(goqu.C("performance_id").Eq(performanceID)).
		Order(goqu.C("seat_row").Asc(), goqu.C("seat_number").Asc())
	if err := selectAll(ctx, q, &rows, ds); err != nil {
		return nil, err
	}
	out := make([]model.Seat, 0, len(rows))
	for _, s := range rows {
		out = append(out, model.Seat{Row: s.Row, Seat: s.Seat})
	}
	return out, nil
}

func performanceRecord(in model.PerformanceInput) goqu.Record {
	return goqu.Record{
		"show_time":       in.ShowTime.UTC(),
		"play_id":         in.PlayID,
		"theatre_hall_id": in.TheatreHallID,
	}
}

// Create inserts a performance and returns its id.
func (r *PerformanceRepo) Create(ctx context.Context, in model.PerformanceInput) (uint64, error) {
	id, err := insert(ctx, r.db, dialect.Insert("performances").Rows(performanceRecord(in)))
	if isMissingReference(err) {
		return 0, ErrNotFound
	}
	return id, err
}

// Update overwrites every writable field of the performance.
func (r *PerformanceRepo) Update(ctx context.Context, id uint64, in model.PerformanceInput) error {
	ok, err := exists(ctx, r.db, "performances", id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	upd := dialect.Update("performances").Set(performanceRecord(in)).Where(goqu.C("id").Eq(id)).Prepared(true)
	if _, err = exec(ctx, r.db, upd); isMissingReference(err) {
		return ErrNotFound
	}
	return err
}

// Delete removes the performance; its tickets cascade.
func (r *PerformanceRepo) Delete(ctx context.Context, id uint64) error {
	return deleteByID(ctx, r.db, "performances", id)
}
