// Package sqlstore provides a database/sql implementation of the
// storage.Store interface. Queries are built with squirrel so the same
// code serves SQLite (mattn/go-sqlite3, "?" placeholders) and PostgreSQL
// (lib/pq, "$1" placeholders); only the DDL differs per dialect.
//
// The blank imports below register the "sqlite3" and "postgres" drivers
// with database/sql. We never call anything from them directly.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/aanand-mishra/people-api/internal/config"
	"github.com/aanand-mishra/people-api/internal/storage"
	"github.com/aanand-mishra/people-api/internal/types"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const table = "people"

// Explicitly list columns: never SELECT *. If a column is added later,
// SELECT * would break Scan's ordering.
var columns = []string{"id", "name", "age", "email", "created_at", "updated_at"}

// Dialect captures what differs between the supported databases.
type Dialect struct {
	Name        string
	Driver      string
	Placeholder sq.PlaceholderFormat
	Schema      string
}

var (
	SQLite = Dialect{
		Name:        config.BackendSQLite,
		Driver:      "sqlite3",
		Placeholder: sq.Question,
		Schema: `
		CREATE TABLE IF NOT EXISTS people (
			id         INTEGER  PRIMARY KEY AUTOINCREMENT,
			name       TEXT     NOT NULL,
			age        INTEGER  NOT NULL,
			email      TEXT     NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
	}

	Postgres = Dialect{
		Name:        config.BackendPostgres,
		Driver:      "postgres",
		Placeholder: sq.Dollar,
		Schema: `
		CREATE TABLE IF NOT EXISTS people (
			id         BIGSERIAL   PRIMARY KEY,
			name       TEXT        NOT NULL,
			age        INTEGER     NOT NULL,
			email      TEXT        NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
	}
)

// DialectFor maps a config backend name to its dialect.
func DialectFor(backend string) (Dialect, error) {
	switch backend {
	case config.BackendSQLite:
		return SQLite, nil
	case config.BackendPostgres:
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("sqlstore: unsupported backend %q", backend)
	}
}

// Store is the concrete implementation of storage.Store.
// It holds a *sql.DB which is a connection pool managed by database/sql,
// safe for concurrent use by multiple goroutines.
type Store struct {
	db      *sql.DB
	dialect Dialect
	sb      sq.StatementBuilderType
	now     func() time.Time
}

var _ storage.Store = (*Store)(nil)

// Option customises a Store.
type Option func(*Store)

// WithClock replaces the clock used for created_at / updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New wraps an already-open database. It does not touch the schema.
func New(db *sql.DB, d Dialect, opts ...Option) *Store {
	s := &Store{
		db:      db,
		dialect: d,
		sb:      sq.StatementBuilder.PlaceholderFormat(d.Placeholder),
		now: func() time.Time {
			// Postgres keeps microseconds; truncating keeps what we hand
			// out equal to what we read back on every dialect.
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open connects to the database described by cfg, creates the people table
// if it does not already exist, and returns a ready-to-use *Store.
func Open(ctx context.Context, cfg config.Storage, opts ...Option) (*Store, error) {
	d, err := DialectFor(cfg.Backend)
	if err != nil {
		return nil, err
	}

	// sql.Open does NOT open a real connection yet: it just validates
	// the driver name. The first actual connection happens on first use.
	db, err := sql.Open(d.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlstore.Open: open db: %w", err)
	}

	if d.Name == config.BackendSQLite {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
			slog.Warn("failed to set WAL mode", slog.String("error", err.Error()))
		}
	}

	s := New(db, d, opts...)
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the people table. CREATE TABLE IF NOT EXISTS is
// idempotent, so this is safe on every start-up.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.Schema); err != nil {
		return fmt.Errorf("EnsureSchema: create table: %w", err)
	}
	return nil
}

// FindAll returns all rows ordered by id.
func (s *Store) FindAll(ctx context.Context) ([]types.Person, error) {
	sqlStr, args, err := s.sb.Select(columns...).From(table).OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("FindAll: build: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("FindAll: query: %w", err)
	}
	defer rows.Close() // must close rows to free the DB connection

	// Returning [] instead of null in JSON is better API behaviour.
	people := make([]types.Person, 0)
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("FindAll: scan row: %w", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("FindAll: rows iteration: %w", err)
	}

	return people, nil
}

// FindOne fetches exactly one row matched by primary key.
func (s *Store) FindOne(ctx context.Context, id int64) (types.Person, error) {
	sqlStr, args, err := s.sb.Select(columns...).
		From(table).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return types.Person{}, fmt.Errorf("FindOne: build: %w", err)
	}

	// QueryRow never returns nil for "no match": the error surfaces only
	// when Scan is called.
	p, err := scan(s.db.QueryRowContext(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Person{}, storage.ErrNotFound
		}
		return types.Person{}, fmt.Errorf("FindOne: scan: %w", err)
	}

	return p, nil
}

// Save inserts a new row and returns it as stored.
func (s *Store) Save(ctx context.Context, in types.CreatePerson) (types.Person, error) {
	now := s.now()
	sqlStr, args, err := s.sb.Insert(table).
		Columns("name", "age", "email", "created_at", "updated_at").
		Values(in.Name, in.Age, in.Email, now, now).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return types.Person{}, fmt.Errorf("Save: build: %w", err)
	}

	var id int64
	if err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&id); err != nil {
		return types.Person{}, fmt.Errorf("Save: insert: %w", err)
	}

	// Re-read so the caller sees exactly what the database holds.
	p, err := s.FindOne(ctx, id)
	if err != nil {
		return types.Person{}, fmt.Errorf("Save: reload: %w", err)
	}
	return p, nil
}

// Update sets the supplied columns plus updated_at on one row.
func (s *Store) Update(ctx context.Context, id int64, patch types.UpdatePerson) error {
	sqlStr, args, err := s.sb.Update(table).
		SetMap(patch.Fields()).
		Set("updated_at", s.now()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("Update: build: %w", err)
	}

	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("Update: exec: %w", err)
	}
	return checkAffected("Update", res)
}

// Remove deletes the row with p's id.
func (s *Store) Remove(ctx context.Context, p types.Person) error {
	sqlStr, args, err := s.sb.Delete(table).Where(sq.Eq{"id": p.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("Remove: build: %w", err)
	}

	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("Remove: exec: %w", err)
	}
	return checkAffected("Remove", res)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

// scan reads one row in the order of columns.
func scan(row scanner) (types.Person, error) {
	var p types.Person
	err := row.Scan(&p.ID, &p.Name, &p.Age, &p.Email, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func checkAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
