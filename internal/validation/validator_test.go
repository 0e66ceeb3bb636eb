package validation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/messagely/messagely/internal/apperr"
)

type sample struct {
	To   string `json:"to_username" validate:"required"`
	Body string `json:"body" validate:"required,max=5"`
}

func TestStructOK(t *testing.T) {
	require.NoError(t, Struct(sample{To: "bob", Body: "hi"}))
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	err := Struct(sample{Body: "too long"})
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
	require.Contains(t, err.Error(), "to_username is required")
	require.Contains(t, err.Error(), "body must be at most 5 characters")
}

func TestStructUnknownTagIsInvalid(t *testing.T) {
	type contact struct {
		Email string `json:"email" validate:"email"`
	}
	err := Struct(contact{Email: "nope"})
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
	require.Contains(t, err.Error(), "email is invalid")
}
