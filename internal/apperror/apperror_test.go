package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPersonNotFoundMessage(t *testing.T) {
	err := PersonNotFound("7")
	assert.Equal(t, "Person with ID '7' not found", err.Error())
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestInvalidIDKeepsCause(t *testing.T) {
	cause := errors.New("strconv.ParseInt: parsing \"abc\": invalid syntax")
	err := InvalidID("abc", cause)

	assert.Equal(t, KindInvalidArgument, KindOf(err))
	assert.Equal(t, "Person with ID 'abc' not found", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestInternalPreservesMessage(t *testing.T) {
	cause := errors.New("Database error")
	err := Internal(cause)

	assert.Equal(t, "Database error", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", PersonNotFound("1"))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestValidationJoinsFieldMessages(t *testing.T) {
	err := Validation(
		FieldViolation{Field: "name", Message: "Name is required"},
		FieldViolation{Field: "age", Message: "Age is required"},
	)

	assert.Equal(t, "Name is required, Age is required", err.Error())
	assert.Len(t, FieldsOf(err), 2)
	assert.Nil(t, FieldsOf(errors.New("x")))
}
