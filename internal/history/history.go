// Package history records every emission in a SQLite database so that
// surface changes between runs can be detected and listed.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"
)

// Record is one emission of one assembly
type Record struct {
	ID         string
	Assembly   string
	Version    string
	InputHash  string
	OutputHash string
	Namespaces int
	Types      int
	Members    int
	Warnings   int
	CreatedAt  time.Time
}

// Store persists records
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// Dialect is the SQL flavor of the history database
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) driver() string {
	if d == Postgres {
		return "pgx"
	}
	return "sqlite3"
}

func (d Dialect) schema() string {
	if d == Postgres {
		return postgresSchema
	}
	return sqliteSchema
}

// insertionOrder breaks ties between records created in the same instant
func (d Dialect) insertionOrder() string {
	if d == Postgres {
		return "seq"
	}
	return "rowid"
}

// rebind rewrites ? placeholders to $n for Postgres
func (d Dialect) rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DialectFor picks the dialect from a data source name. postgres:// and
// postgresql:// URLs select Postgres; anything else is a SQLite path.
func DialectFor(dsn string) Dialect {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return Postgres
	}
	return SQLite
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS emissions (
	id          TEXT PRIMARY KEY,
	assembly    TEXT NOT NULL,
	version     TEXT NOT NULL DEFAULT '',
	input_hash  TEXT NOT NULL,
	output_hash TEXT NOT NULL,
	namespaces  INTEGER NOT NULL DEFAULT 0,
	types       INTEGER NOT NULL DEFAULT 0,
	members     INTEGER NOT NULL DEFAULT 0,
	warnings    INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS emissions_assembly ON emissions (assembly, created_at);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS emissions (
	seq         BIGSERIAL,
	id          TEXT PRIMARY KEY,
	assembly    TEXT NOT NULL,
	version     TEXT NOT NULL DEFAULT '',
	input_hash  TEXT NOT NULL,
	output_hash TEXT NOT NULL,
	namespaces  INTEGER NOT NULL DEFAULT 0,
	types       INTEGER NOT NULL DEFAULT 0,
	members     INTEGER NOT NULL DEFAULT 0,
	warnings    INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS emissions_assembly ON emissions (assembly, created_at);
`

const selectColumns = `SELECT id, assembly, version, input_hash, output_hash, namespaces, types, members, warnings, created_at FROM emissions`

// Open connects to the history database named by dsn, creating the schema
// if needed. A SQLite file is created when missing.
func Open(ctx context.Context, dsn string) (*Store, error) {
	dialect := DialectFor(dsn)
	db, err := sql.Open(dialect.driver(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	s := New(db, dialect)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Migrate creates the schema when missing
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.schema()); err != nil {
		return fmt.Errorf("failed to create history schema: %w", err)
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Add stores rec, filling in ID and CreatedAt when unset
func (s *Store) Add(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, s.dialect.rebind(
		`INSERT INTO emissions (id, assembly, version, input_hash, output_hash, namespaces, types, members, warnings, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		rec.ID, rec.Assembly, rec.Version, rec.InputHash, rec.OutputHash,
		rec.Namespaces, rec.Types, rec.Members, rec.Warnings, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record emission: %w", err)
	}
	return nil
}

// Latest returns the most recent record for assembly, or nil when there is none
func (s *Store) Latest(ctx context.Context, assembly string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, s.query(` WHERE assembly = ?`, ` LIMIT 1`), assembly)

	rec, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read latest emission: %w", err)
	}
	return rec, nil
}

// List returns up to limit records, newest first. An empty assembly lists all.
func (s *Store) List(ctx context.Context, assembly string, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 20
	}

	var (
		rows *sql.Rows
		err  error
	)
	if assembly == "" {
		rows, err = s.db.QueryContext(ctx, s.query("", ` LIMIT ?`), limit)
	} else {
		rows, err = s.db.QueryContext(ctx, s.query(` WHERE assembly = ?`, ` LIMIT ?`), assembly, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list emissions: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read emission: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// query builds a newest-first select
func (s *Store) query(where, limit string) string {
	return s.dialect.rebind(selectColumns + where + ` ORDER BY created_at DESC, ` + s.dialect.insertionOrder() + ` DESC` + limit)
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.Assembly, &rec.Version, &rec.InputHash, &rec.OutputHash,
		&rec.Namespaces, &rec.Types, &rec.Members, &rec.Warnings, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Change describes how an emission relates to the previous one
type Change int

const (
	// ChangeFirst means no earlier emission of the assembly exists
	ChangeFirst Change = iota
	// ChangeNone means the emitted text is identical
	ChangeNone
	// ChangeSurface means the emitted text differs
	ChangeSurface
)

func (c Change) String() string {
	switch c {
	case ChangeNone:
		return "unchanged"
	case ChangeSurface:
		return "changed"
	default:
		return "first emission"
	}
}

// Compare classifies cur against prev, which may be nil
func Compare(prev, cur *Record) Change {
	switch {
	case prev == nil:
		return ChangeFirst
	case prev.OutputHash == cur.OutputHash:
		return ChangeNone
	default:
		return ChangeSurface
	}
}
