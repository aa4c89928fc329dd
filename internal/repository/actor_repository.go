package repository

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/theatre-reservation/internal/model"
)

type actorRow struct {
	ID        uint64 `db:"id"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
}

func (r actorRow) model() model.Actor {
	return model.Actor{ID: r.ID, FirstName: r.FirstName, LastName: r.LastName}
}

// ActorRepo stores actors in the `actors` table.
type ActorRepo struct {
	db *sqlx.DB
}

// NewActorRepo constructs an ActorRepo with the given DB handle.
func NewActorRepo(db *sqlx.DB) *ActorRepo { return &ActorRepo{db: db} }

func actorSelect() *goqu.SelectDataset {
	return dialect.From("actors").
		Select("id", "first_name", "last_name").
		Order(goqu.C("first_name").Asc(), goqu.C("id").Asc())
}

// List returns all actors ordered by first name.
func (r *ActorRepo) List(ctx context.Context) ([]model.Actor, error) {
	return r.list(ctx, actorSelect())
}

// GetByIDs returns the actors among ids that exist.
func (r *ActorRepo) GetByIDs(ctx context.Context, ids []uint64) ([]model.Actor, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, actorSelect().Where(goqu.C("id").In(ids)))
}

func (r *ActorRepo) list(ctx context.Context, ds *goqu.SelectDataset) ([]model.Actor, error) {
	var rows []actorRow
	if err := selectAll(ctx, r.db, &rows, ds); err != nil {
		return nil, err
	}
	out := make([]model.Actor, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.model())
	}
	return out, nil
}

// Create inserts a and sets its ID.
func (r *ActorRepo) Create(ctx context.Context, a *model.Actor) error {
	id, err := insert(ctx, r.db, dialect.Insert("actors").Rows(goqu.Record{
		"first_name": a.FirstName,
		"last_name":  a.LastName,
	}))
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}
