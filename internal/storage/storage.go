// Package storage defines the Store interface: a contract that any
// database backend must satisfy to hold person records.
//
// The service layer depends only on this interface, so switching between
// the SQL and GORM backends is a config change, and tests can pass a fake
// that satisfies it without a real database.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/people-api/internal/types"
)

// ErrNotFound is returned (possibly wrapped) when no row matches the
// requested id. Any other error from a Store is a fault of the store.
var ErrNotFound = errors.New("storage: person not found")

// Store is the database contract.
type Store interface {
	// FindAll returns every person ordered by id.
	// Returns an empty slice (not nil) if there are none.
	FindAll(ctx context.Context) ([]types.Person, error)

	// FindOne fetches a single person by primary key, or ErrNotFound.
	FindOne(ctx context.Context, id int64) (types.Person, error)

	// Save inserts a new person. The store assigns the id and both
	// timestamps and returns the row as stored.
	Save(ctx context.Context, p types.CreatePerson) (types.Person, error)

	// Update writes only the fields present in patch and refreshes
	// updatedAt. Returns ErrNotFound if no row has that id.
	Update(ctx context.Context, id int64, patch types.UpdatePerson) error

	// Remove deletes the given person. Returns ErrNotFound if no row has
	// its id.
	Remove(ctx context.Context, p types.Person) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	Close() error
}
