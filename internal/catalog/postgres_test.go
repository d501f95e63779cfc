package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		ptr, ok := d.(*string)
		if !ok {
			return errors.New("unexpected scan target")
		}
		*ptr = r.values[i].(string)
	}
	return nil
}

type fakeDB struct {
	rows    map[string]fakeRow
	lastSQL string
	execs   [][]any
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.lastSQL = sql
	row, ok := f.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return row
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not used")
}

func (f *fakeDB) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, args)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestPostgresLookup(t *testing.T) {
	db := &fakeDB{rows: map[string]fakeRow{
		"8905639296492": {values: []any{"Technosports T-Shirt", "425.00", "Breathable cotton sportswear for summer collection."}},
		"bad-price":     {values: []any{"Broken", "not-a-number", ""}},
	}}
	store := Postgres{DB: db}

	p, err := store.Lookup(context.Background(), "8905639296492")
	require.NoError(t, err)
	require.Equal(t, "Technosports T-Shirt", p.Title)
	require.Equal(t, "425.00", p.UnitPrice.StringFixed(2))
	require.Equal(t, lookupProductSQL, db.lastSQL)

	_, err = store.Lookup(context.Background(), "000000")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = store.Lookup(context.Background(), "bad-price")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestPostgresLookupWrapsDriverErrors(t *testing.T) {
	boom := errors.New("connection reset")
	db := &fakeDB{rows: map[string]fakeRow{"x": {err: boom}}}
	_, err := Postgres{DB: db}.Lookup(context.Background(), "x")
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestUpsertWritesEveryEntry(t *testing.T) {
	db := &fakeDB{}
	n, err := Upsert(context.Background(), db, DefaultEntries())
	require.NoError(t, err)
	require.Equal(t, len(DefaultEntries()), n)
	require.Equal(t, "8905639296492", db.execs[0][0])
	require.Equal(t, "425", db.execs[0][2])
}

func TestMigrateURL(t *testing.T) {
	require.Equal(t, "pgx5://u:p@db:5432/kasir", migrateURL("postgres://u:p@db:5432/kasir"))
	require.Equal(t, "pgx5://db/kasir", migrateURL("postgresql://db/kasir"))
	require.Equal(t, "pgx5://db/kasir", migrateURL("pgx5://db/kasir"))
}
