// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, service, storage, and validation can all import types without
// depending on each other.
package types

import "time"

// Person is a stored person record.
//
// ID, CreatedAt and UpdatedAt are owned by the store: clients never set
// them. CreatedAt is written once on insert, UpdatedAt on every update.
type Person struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreatePerson is the payload accepted when creating a person.
//
// Struct tags serve two purposes:
//
//  1. json:"..." controls how the field is decoded from the request body.
//
//  2. validate:"..." lists rules checked by the go-playground/validator
//     package. "required" means the field must be non-zero / non-empty,
//     so an age of 0 counts as missing.
type CreatePerson struct {
	Name  string `json:"name"  validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Age   int    `json:"age"   validate:"required"`
}

// UpdatePerson is a partial update. A nil pointer (or an empty string for
// Name and Email) means "leave this field alone".
type UpdatePerson struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Age   *int    `json:"age,omitempty"`
}

// Fields returns the column values supplied by the patch, keyed by column
// name. Absent and empty fields are not included.
func (u UpdatePerson) Fields() map[string]any {
	fields := make(map[string]any, 3)
	if u.Name != nil && *u.Name != "" {
		fields["name"] = *u.Name
	}
	if u.Email != nil && *u.Email != "" {
		fields["email"] = *u.Email
	}
	if u.Age != nil {
		fields["age"] = *u.Age
	}
	return fields
}
