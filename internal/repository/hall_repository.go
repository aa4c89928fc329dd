package repository // repository holds data access logic for domain entities

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/theatre-reservation/internal/model"
)

// hallRow mirrors the `theatre_halls` table.  The row count column is
// called num_rows because ROWS is reserved in MySQL 8.
type hallRow struct {
	ID         uint64 `db:"id"`
	Name       string `db:"name"`
	Rows       int    `db:"num_rows"`
	SeatsInRow int    `db:"seats_in_row"`
}

func (r hallRow) model() model.TheatreHall {
	return model.TheatreHall{ID: r.ID, Name: r.Name, Rows: r.Rows, SeatsInRow: r.SeatsInRow}
}

// HallRepo provides methods to create and retrieve halls.  It embeds a
// database handle to perform queries and commands.
type HallRepo struct {
	db *sqlx.DB // db is the underlying database connection
}

// NewHallRepo constructs a HallRepo with the given DB handle.
func NewHallRepo(db *sqlx.DB) *HallRepo {
	return &HallRepo{db: db}
}

func hallSelect() *goqu.SelectDataset {
	return dialect.From("theatre_halls").Select("id", "name", "num_rows", "seats_in_row")
}

// List returns every hall ordered by id.
func (r *HallRepo) List(ctx context.Context) ([]model.TheatreHall, error) {
	var rows []hallRow
	if err := selectAll(ctx, r.db, &rows, hallSelect().Order(goqu.C("id").Asc())); err != nil {
		return nil, err
	}
	out := make([]model.TheatreHall, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.model())
	}
	return out, nil
}

// GetByID retrieves a hall by its ID.  It returns ErrNotFound when no
// row is found.
func (r *HallRepo) GetByID(ctx context.Context, id uint64) (model.TheatreHall, error) {
	var row hallRow
	if err := getOne(ctx, r.db, &row, hallSelect().Where(goqu.C("id").Eq(id))); err != nil {
		return model.TheatreHall{}, err
	}
	return row.model(), nil
}

// Create inserts a new hall.  Rows and SeatsInRow must already be
// validated as positive; the table also carries CHECK constraints.
func (r *HallRepo) Create(ctx context.Context, h *model.TheatreHall) error {
	id, err := insert(ctx, r.db, dialect.Insert("theatre_halls").Rows(goqu.Record{
		"name":         h.Name,
		"num_rows":     h.Rows,
		"seats_in_row": h.SeatsInRow,
	}))
	if err != nil {
		return err
	}
	h.ID = id
	return nil
}
