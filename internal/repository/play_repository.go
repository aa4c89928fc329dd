package repository

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/theatre-reservation/internal/filter"
	"github.com/iliyamo/theatre-reservation/internal/model"
)

type playRow struct {
	ID          uint64 `db:"id"`
	Title       string `db:"title"`
	Description string `db:"description"`
}

// playGenreRow is a genre joined through play_genres.
type playGenreRow struct {
	PlayID uint64 `db:"play_id"`
	genreRow
}

// playActorRow is an actor joined through play_actors.
type playActorRow struct {
	PlayID uint64 `db:"play_id"`
	actorRow
}

// PlayRepo stores plays and maintains the play_genres and play_actors
// link tables.
type PlayRepo struct {
	db *sqlx.DB
}

// NewPlayRepo constructs a PlayRepo with the given DB handle.
func NewPlayRepo(db *sqlx.DB) *PlayRepo { return &PlayRepo{db: db} }

// playListQuery builds the filtered play listing.  Genre and actor filters
// join the link tables, so DISTINCT collapses plays that match more than
// one listed id.
func playListQuery(f filter.PlayFilter) *goqu.SelectDataset {
	ds := dialect.From(goqu.T("plays").As("p")).
		Select(goqu.I("p.id"), goqu.I("p.title"), goqu.I("p.description")).
		Distinct().
		Order(goqu.I("p.title").Asc(), goqu.I("p.id").Asc())
	if f.Title != "" {
		// ILIKE renders as LIKE in the mysql dialect, which compares
		// case-insensitively under the default collation.
		ds = ds.Where(goqu.I("p.title").ILike(likePattern(f.Title)))
	}
	if len(f.GenreIDs) > 0 {
		ds = ds.Join(goqu.T("play_genres").As("pg"), goqu.On(goqu.I("pg.play_id").Eq(goqu.I("p.id")))).
			Where(goqu.I("pg.genre_id").In(f.GenreIDs))
	}
	if len(f.ActorIDs) > 0 {
		ds = ds.Join(goqu.T("play_actors").As("pa"), goqu.On(goqu.I("pa.play_id").Eq(goqu.I("p.id")))).
			Where(goqu.I("pa.actor_id").In(f.ActorIDs))
	}
	return ds
}

// List returns the plays matching f with their genres and actors attached.
func (r *PlayRepo) List(ctx context.Context, f filter.PlayFilter) ([]model.Play, error) {
	var rows []playRow
	if err := selectAll(ctx, r.db, &rows, playListQuery(f)); err != nil {
		return nil, err
	}
	plays := make([]model.Play, 0, len(rows))
	for _, row := range rows {
		plays = append(plays, model.Play{ID: row.ID, Title: row.Title, Description: row.Description})
	}
	if err := attachLinks(ctx, r.db, plays); err != nil {
		return nil, err
	}
	return plays, nil
}

// GetByID returns one play with its genres and actors.
func (r *PlayRepo) GetByID(ctx context.Context, id uint64) (model.Play, error) {
	var row playRow
	ds := dialect.From("plays").Select("id", "title", "description").Where(goqu.C("id").Eq(id))
	if err := getOne(ctx, r.db, &row, ds); err != nil {
		return model.Play{}, err
	}
	plays := []model.Play{{ID: row.ID, Title: row.Title, Description: row.Description}}
	if err := attachLinks(ctx, r.db, plays); err != nil {
		return model.Play{}, err
	}
	return plays[0], nil
}

// attachLinks fills Genres and Actors for every play in place using one
// query per link table.
func attachLinks(ctx context.Context, q sqlx.QueryerContext, plays []model.Play) error {
	if len(plays) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(plays))
	index := make(map[uint64]int, len(plays))
	for i, p := range plays {
		ids = append(ids, p.ID)
		index[p.ID] = i
	}

	var genres []playGenreRow
	gds := dialect.From(goqu.T("play_genres").As("pg")).
		Join(goqu.T("genres").As("g"), goqu.On(goqu.I("g.id").Eq(goqu.I("pg.genre_id")))).
		Select(goqu.I("pg.play_id"), goqu.I("g.id"), goqu.I("g.name")).
		Where(goqu.I("pg.play_id").In(ids)).
		Order(goqu.I("g.name").Asc(), goqu.I("g.id").Asc())
	if err := selectAll(ctx, q, &genres, gds); err != nil {
		return err
	}
	for _, g := range genres {
		p := &plays[index[g.PlayID]]
		p.Genres = append(p.Genres, g.genreRow.model())
	}

	var actors []playActorRow
	ads := dialect.From(goqu.T("play_actors").As("pa")).
		Join(goqu.T("actors").As("a"), goqu.On(goqu.I("a.id").Eq(goqu.I("pa.actor_id")))).
		Select(goqu.I("pa.play_id"), goqu.I("a.id"), goqu.I("a.first_name"), goqu.I("a.last_name")).
		Where(goqu.I("pa.play_id").In(ids)).
		Order(goqu.I("a.first_name").Asc(), goqu.I("a.id").Asc())
	if err := selectAll(ctx, q, &actors, ads); err != nil {
		return err
	}
	for _, a := range actors {
		p := &plays[index[a.PlayID]]
		p.Actors = append(p.Actors, a.actorRow.model())
	}
	return nil
}

// Create inserts the play and its links in one transaction.
func (r *PlayRepo) Create(ctx context.Context, in model.PlayInput) (uint64, error) {
	var id uint64
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var err error
		id, err = insert(ctx, tx, dialect.Insert("plays").Rows(goqu.Record{
			"title":       in.Title,
			"description": in.Description,
		}))
		if err != nil {
			return err
		}
		return replaceLinks(ctx, tx, id, in)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Update overwrites the play's fields and replaces its links.
func (r *PlayRepo) Update(ctx context.Context, id uint64, in model.PlayInput) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		ok, err := exists(ctx, tx, "plays", id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		upd := dialect.Update("plays").
			Set(goqu.Record{"title": in.Title, "description": in.Description}).
			Where(goqu.C("id").Eq(id)).
			Prepared(true)
		if _, err := exec(ctx, tx, upd); err != nil {
			return err
		}
		return replaceLinks(ctx, tx, id, in)
	})
}

// Delete removes the play; foreign keys cascade to performances and
// tickets.
func (r *PlayRepo) Delete(ctx context.Context, id uint64) error {
	return deleteByID(ctx, r.db, "plays", id)
}

func replaceLinks(ctx context.Context, tx *sqlx.Tx, playID uint64, in model.PlayInput) error {
	if err := replaceLinkTable(ctx, tx, "play_genres", "genre_id", playID, in.GenreIDs); err != nil {
		return err
	}
	return replaceLinkTable(ctx, tx, "play_actors", "actor_id", playID, in.ActorIDs)
}

func replaceLinkTable(ctx context.Context, tx *sqlx.Tx, table, column string, playID uint64, ids []uint64) error {
	del := dialect.Delete(table).Where(goqu.C("play_id").Eq(playID)).Prepared(true)
	if _, err := exec(ctx, tx, del); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uint64]struct{}, len(ids))
	rows := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		rows = append(rows, goqu.Record{"play_id": playID, column: id})
	}
	_, err := exec(ctx, tx, dialect.Insert(table).Rows(rows...).Prepared(true))
	return err
}
