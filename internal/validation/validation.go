// Package validation checks person payloads before they reach the store.
//
// Rules live in the validate:"..." struct tags on types.CreatePerson; this
// package turns go-playground/validator's FieldErrors into one
// human-readable message per violated field.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/aanand-mishra/people-api/internal/apperror"
	"github.com/aanand-mishra/people-api/internal/types"
	"github.com/go-playground/validator/v10"
)

// validate is safe for concurrent use and caches struct metadata, so one
// instance serves every request.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their JSON name ("email") rather than the Go
	// field name ("Email") so messages match what the client sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateCreate returns a KindValidation *apperror.Error listing one
// violation per failing field, or nil when p is acceptable.
func ValidateCreate(p types.CreatePerson) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperror.BadPayload(err)
	}

	violations := make([]apperror.FieldViolation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, apperror.FieldViolation{
			Field:   fe.Field(),
			Message: message(fe.Field(), fe.ActualTag()),
		})
	}
	return apperror.Validation(violations...)
}

// ValidateUpdate checks the fields a partial update supplies. Nothing is
// mandatory, but a supplied email must still look like an address.
func ValidateUpdate(p types.UpdatePerson) error {
	if p.Email == nil || *p.Email == "" {
		return nil
	}
	if err := validate.Var(*p.Email, "email"); err != nil {
		return apperror.Validation(apperror.FieldViolation{
			Field:   "email",
			Message: message("email", "email"),
		})
	}
	return nil
}

func message(field, tag string) string {
	switch tag {
	case "required":
		return capitalize(field) + " is required"
	case "email":
		return field + " must be an email"
	default:
		return field + " is invalid"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
