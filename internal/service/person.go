// Package service implements the person use cases on top of a
// storage.Store: identifier parsing, not-found detection, and partial
// updates. Errors returned here are always *apperror.Error values so the
// HTTP layer can map them without inspecting storage details.
package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/aanand-mishra/people-api/internal/apperror"
	"github.com/aanand-mishra/people-api/internal/storage"
	"github.com/aanand-mishra/people-api/internal/types"
	"github.com/aanand-mishra/people-api/internal/validation"
)

type PersonService struct {
	store storage.Store
}

func NewPersonService(store storage.Store) *PersonService {
	return &PersonService{store: store}
}

// ListAll returns every person in store order.
func (s *PersonService) ListAll(ctx context.Context) ([]types.Person, error) {
	people, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if people == nil {
		people = []types.Person{}
	}
	return people, nil
}

// FindByID resolves id to exactly one person.
func (s *PersonService) FindByID(ctx context.Context, id string) (types.Person, error) {
	intID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return types.Person{}, apperror.InvalidID(id, err)
	}

	p, err := s.store.FindOne(ctx, intID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return types.Person{}, apperror.PersonNotFound(id)
	case err != nil:
		return types.Person{}, apperror.Internal(err)
	}
	return p, nil
}

// Create validates in and persists it. The returned person is whatever the
// store reports, including its assigned id and timestamps.
func (s *PersonService) Create(ctx context.Context, in types.CreatePerson) (types.Person, error) {
	if err := validation.ValidateCreate(in); err != nil {
		return types.Person{}, err
	}

	p, err := s.store.Save(ctx, in)
	if err != nil {
		return types.Person{}, apperror.Internal(err)
	}
	return p, nil
}

// Update applies the fields present in patch to the person with id and
// returns the record as stored afterwards.
func (s *PersonService) Update(ctx context.Context, id string, patch types.UpdatePerson) (types.Person, error) {
	if err := validation.ValidateUpdate(patch); err != nil {
		return types.Person{}, err
	}

	p, err := s.FindByID(ctx, id)
	if err != nil {
		return types.Person{}, err
	}

	// The row can vanish between the lookup and the write; report that
	// the same way as a failed lookup.
	err = s.store.Update(ctx, p.ID, patch)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return types.Person{}, apperror.PersonNotFound(id)
	case err != nil:
		return types.Person{}, apperror.Internal(err)
	}

	return s.FindByID(ctx, id)
}

// Remove deletes the person with id. Nothing is deleted unless the lookup
// succeeds first.
func (s *PersonService) Remove(ctx context.Context, id string) error {
	p, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}

	err = s.store.Remove(ctx, p)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return apperror.PersonNotFound(id)
	case err != nil:
		return apperror.Internal(err)
	}
	return nil
}

// Ping reports store reachability for health checks.
func (s *PersonService) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return apperror.Internal(err)
	}
	return nil
}
