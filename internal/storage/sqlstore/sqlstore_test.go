package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aanand-mishra/people-api/internal/config"
	"github.com/aanand-mishra/people-api/internal/storage"
	"github.com/aanand-mishra/people-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock returns t0, t0+1s, t0+2s, ... on successive calls.
func stepClock(t0 time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		t := t0.Add(time.Duration(n) * time.Second)
		n++
		return t
	}
}

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func openSQLite(t *testing.T) *Store {
	t.Helper()
	cfg := config.Storage{
		Backend: config.BackendSQLite,
		DSN:     filepath.Join(t.TempDir(), "people.db"),
	}
	s, err := Open(context.Background(), cfg, WithClock(stepClock(t0)))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func ptr[T any](v T) *T { return &v }

func TestSQLiteLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	all, err := s.FindAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	created, err := s.Save(ctx, types.CreatePerson{Name: "Person 1", Email: "person1@example.com", Age: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "Person 1", created.Name)
	assert.True(t, created.CreatedAt.Equal(t0))
	assert.True(t, created.UpdatedAt.Equal(t0))

	second, err := s.Save(ctx, types.CreatePerson{Name: "Person 2", Email: "person2@example.com", Age: 30})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ID)

	require.NoError(t, s.Update(ctx, created.ID, types.UpdatePerson{Name: ptr("John Smith")}))

	got, err := s.FindOne(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "John Smith", got.Name)
	assert.Equal(t, 20, got.Age)
	assert.Equal(t, "person1@example.com", got.Email)
	assert.True(t, got.CreatedAt.Equal(created.CreatedAt))
	assert.True(t, got.UpdatedAt.After(created.UpdatedAt))

	all, err = s.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, []int64{1, 2}, []int64{all[0].ID, all[1].ID})

	require.NoError(t, s.Remove(ctx, got))
	_, err = s.FindOne(ctx, got.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// ids are never reused
	third, err := s.Save(ctx, types.CreatePerson{Name: "Person 3", Email: "p3@example.com", Age: 40})
	require.NoError(t, err)
	assert.Equal(t, int64(3), third.ID)
}

func TestSQLiteMissingRows(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	_, err := s.FindOne(ctx, 42)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = s.Update(ctx, 42, types.UpdatePerson{Age: ptr(1)})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = s.Remove(ctx, types.Person{ID: 42})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSQLiteUpdateWithNoFieldsTouchesTimestamp(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	p, err := s.Save(ctx, types.CreatePerson{Name: "A", Email: "a@b.com", Age: 5})
	require.NoError(t, err)

	require.NoError(t, s.Update(ctx, p.ID, types.UpdatePerson{Name: ptr("")}))

	got, err := s.FindOne(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
	assert.True(t, got.UpdatedAt.After(p.UpdatedAt))
}

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, SQLite, WithClock(stepClock(t0))), mock
}

func TestFindOneFaultIsNotNotFound(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(`SELECT (.+) FROM people WHERE id = \?`).
		WithArgs(int64(1)).
		WillReturnError(errors.New("Database error"))

	_, err := s.FindOne(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorContains(t, err, "Database error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveReloadsRow(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(`INSERT INTO people \(name,age,email,created_at,updated_at\) VALUES \(\?,\?,\?,\?,\?\) RETURNING id`).
		WithArgs("Person 1", 20, "person1@example.com", t0, t0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(`SELECT (.+) FROM people WHERE id = \?`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(7, "Person 1", 20, "person1@example.com", t0, t0))

	p, err := s.Save(context.Background(), types.CreatePerson{Name: "Person 1", Email: "person1@example.com", Age: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOnlyWritesSuppliedColumns(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(`UPDATE people SET age = \?, name = \?, updated_at = \? WHERE id = \?`).
		WithArgs(33, "John", t0, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Update(context.Background(), 1, types.UpdatePerson{Name: ptr("John"), Age: ptr(33)})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveFault(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(`DELETE FROM people WHERE id = \?`).
		WithArgs(int64(1)).
		WillReturnError(errors.New("disk I/O error"))

	err := s.Remove(context.Background(), types.Person{ID: 1})
	assert.ErrorContains(t, err, "disk I/O error")
	assert.NotErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPlaceholders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := New(db, Postgres, WithClock(stepClock(t0)))

	mock.ExpectExec(`DELETE FROM people WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = s.Remove(context.Background(), types.Person{ID: 9})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDialectFor(t *testing.T) {
	d, err := DialectFor(config.BackendPostgres)
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Driver)

	_, err = DialectFor(config.BackendGorm)
	assert.Error(t, err)
}
