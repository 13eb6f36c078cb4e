package history

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_AddAndLatest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	latest, err := s.Latest(ctx, "Contoso.Widgets")
	require.NoError(t, err)
	assert.Nil(t, latest)

	first := &Record{Assembly: "Contoso.Widgets", Version: "1.0.0.0", InputHash: "in1", OutputHash: "out1", Types: 4}
	require.NoError(t, s.Add(ctx, first))
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second := &Record{Assembly: "Contoso.Widgets", InputHash: "in2", OutputHash: "out2", Types: 5, Warnings: 1,
		CreatedAt: first.CreatedAt.Add(time.Second)}
	require.NoError(t, s.Add(ctx, second))
	require.NoError(t, s.Add(ctx, &Record{Assembly: "Contoso.Abc", InputHash: "x", OutputHash: "y"}))

	latest, err = s.Latest(ctx, "Contoso.Widgets")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, "out2", latest.OutputHash)
	assert.Equal(t, 5, latest.Types)
	assert.Equal(t, 1, latest.Warnings)
}

func TestStore_List(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	for i, asm := range []string{"A", "B", "A", "A"} {
		require.NoError(t, s.Add(ctx, &Record{
			Assembly:   asm,
			InputHash:  "in",
			OutputHash: "out",
			Members:    i,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	all, err := s.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, 3, all[0].Members, "newest first")

	onlyA, err := s.List(ctx, "A", 2)
	require.NoError(t, err)
	require.Len(t, onlyA, 2)
	assert.Equal(t, 3, onlyA[0].Members)
	assert.Equal(t, 2, onlyA[1].Members)
	assert.True(t, onlyA[0].CreatedAt.Equal(base.Add(3*time.Minute)))
}

func TestStore_MigrateIsRepeatable(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.Migrate(context.Background()))
}

func TestStore_AddError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO emissions`).
		WithArgs("fixed", "A", "", "in", "out", 0, 0, 0, 0, sqlmock.AnyArg()).
		WillReturnError(assert.AnError)

	err = New(db, SQLite).Add(context.Background(), &Record{ID: "fixed", Assembly: "A", InputHash: "in", OutputHash: "out"})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_LatestScansRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(selectColumns + ` WHERE assembly = ?`)).
		WithArgs("A").
		WillReturnRows(sqlmock.NewRows([]string{"id", "assembly", "version", "input_hash", "output_hash", "namespaces", "types", "members", "warnings", "created_at"}).
			AddRow("id-1", "A", "2.0", "in", "out", 1, 2, 3, 0, now))

	rec, err := New(db, SQLite).Latest(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, &Record{ID: "id-1", Assembly: "A", Version: "2.0", InputHash: "in", OutputHash: "out",
		Namespaces: 1, Types: 2, Members: 3, CreatedAt: now}, rec)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_PostgresPlaceholders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE assembly = $1 ORDER BY created_at DESC, seq DESC LIMIT $2`)).
		WithArgs("A", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "assembly", "version", "input_hash", "output_hash", "namespaces", "types", "members", "warnings", "created_at"}))

	recs, err := New(db, Postgres).List(context.Background(), "A", 5)
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDialectFor(t *testing.T) {
	assert.Equal(t, Postgres, DialectFor("postgres://genapi@localhost/history"))
	assert.Equal(t, Postgres, DialectFor("postgresql://localhost/history"))
	assert.Equal(t, SQLite, DialectFor(".genapi/history.db"))
	assert.Equal(t, SQLite, DialectFor(":memory:"))
}

func TestDialect_Rebind(t *testing.T) {
	assert.Equal(t, "a = $1 AND b = $2", Postgres.rebind("a = ? AND b = ?"))
	assert.Equal(t, "a = ? AND b = ?", SQLite.rebind("a = ? AND b = ?"))
}

func TestStore_MigrateError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS emissions`).WillReturnError(assert.AnError)

	err = New(db, SQLite).Migrate(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestCompare(t *testing.T) {
	cur := &Record{OutputHash: "b"}

	assert.Equal(t, ChangeFirst, Compare(nil, cur))
	assert.Equal(t, ChangeNone, Compare(&Record{OutputHash: "b"}, cur))
	assert.Equal(t, ChangeSurface, Compare(&Record{OutputHash: "a"}, cur))

	assert.Equal(t, "first emission", ChangeFirst.String())
	assert.Equal(t, "unchanged", ChangeNone.String())
	assert.Equal(t, "changed", ChangeSurface.String())
}
