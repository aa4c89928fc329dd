package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql" // registers the "mysql" dialect
	"github.com/jmoiron/sqlx"
)

// dialect renders goqu datasets as MySQL with backtick quoting.
var dialect = goqu.Dialect("mysql")

// sqlRenderer is any goqu dataset that can render itself.
type sqlRenderer interface {
	ToSQL() (string, []interface{}, error)
}

func selectAll(ctx context.Context, q sqlx.QueryerContext, dest interface{}, ds *goqu.SelectDataset) error {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	return sqlx.SelectContext(ctx, q, dest, query, args...)
}

// getOne scans a single row and maps sql.ErrNoRows to ErrNotFound.
func getOne(ctx context.Context, q sqlx.QueryerContext, dest interface{}, ds *goqu.SelectDataset) error {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	if err := sqlx.GetContext(ctx, q, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func exec(ctx context.Context, ex sqlx.ExecerContext, ds sqlRenderer) (sql.Result, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, err
	}
	return ex.ExecContext(ctx, query, args...)
}

// insert executes an INSERT and returns the generated id.
func insert(ctx context.Context, ex sqlx.ExecerContext, ds *goqu.InsertDataset) (uint64, error) {
	res, err := exec(ctx, ex, ds.Prepared(true))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// deleteByID removes one row and reports ErrNotFound when nothing matched.
func deleteByID(ctx context.Context, ex sqlx.ExecerContext, table string, id uint64) error {
	res, err := exec(ctx, ex, dialect.Delete(table).Where(goqu.C("id").Eq(id)).Prepared(true))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// exists reports whether table holds a row with the given id.  MySQL
// reports zero affected rows for updates that change nothing, so updates
// check existence explicitly.
func exists(ctx context.Context, q sqlx.QueryerContext, table string, id uint64) (bool, error) {
	var n int
	ds := dialect.From(table).Select(goqu.COUNT("*")).Where(goqu.C("id").Eq(id))
	if err := getOne(ctx, q, &n, ds); err != nil {
		return false, err
	}
	return n > 0, nil
}

// withTx runs fn inside a transaction.  The transaction is rolled back
// unless fn returns nil and the commit succeeds.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// likePattern wraps s for a substring LIKE match, escaping wildcards.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
