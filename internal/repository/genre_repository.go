package repository

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/theatre-reservation/internal/model"
)

type genreRow struct {
	ID   uint64 `db:"id"`
	Name string `db:"name"`
}

func (r genreRow) model() model.Genre { return model.Genre{ID: r.ID, Name: r.Name} }

// GenreRepo stores genres in the `genres` table.
type GenreRepo struct {
	db *sqlx.DB
}

// NewGenreRepo constructs a GenreRepo with the given DB handle.
func NewGenreRepo(db *sqlx.DB) *GenreRepo { return &GenreRepo{db: db} }

func genreSelect() *goqu.SelectDataset {
	return dialect.From("genres").Select("id", "name").Order(goqu.C("name").Asc(), goqu.C("id").Asc())
}

// List returns all genres ordered by name.
func (r *GenreRepo) List(ctx context.Context) ([]model.Genre, error) {
	return r.list(ctx, genreSelect())
}

// GetByIDs returns the genres among ids that exist.  Unknown ids are
// silently skipped; callers compare lengths to detect them.
func (r *GenreRepo) GetByIDs(ctx context.Context, ids []uint64) ([]model.Genre, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, genreSelect().Where(goqu.C("id").In(ids)))
}

func (r *GenreRepo) list(ctx context.Context, ds *goqu.SelectDataset) ([]model.Genre, error) {
	var rows []genreRow
	if err := selectAll(ctx, r.db, &rows, ds); err != nil {
		return nil, err
	}
	out := make([]model.Genre, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.model())
	}
	return out, nil
}

// Create inserts g and sets its ID.
func (r *GenreRepo) Create(ctx context.Context, g *model.Genre) error {
	id, err := insert(ctx, r.db, dialect.Insert("genres").Rows(goqu.Record{"name": g.Name}))
	if err != nil {
		return err
	}
	g.ID = id
	return nil
}
