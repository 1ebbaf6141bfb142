package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name      string   `json:"name" validate:"required"`
	Email     string   `json:"email" validate:"required,email"`
	Interests []string `json:"interests" validate:"required,min=1,dive,required"`
}

func TestStructReportsFirstField(t *testing.T) {
	err := Struct(&sample{})
	require.Error(t, err)

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "name", fe.Field)
	assert.Equal(t, "name is required", fe.Error())
}

func TestStructEmailMessage(t *testing.T) {
	err := Struct(&sample{Name: "A", Email: "nope", Interests: []string{"Cloud"}})
	assert.EqualError(t, err, "email must be a valid email address")
}

func TestStructEmptyInterests(t *testing.T) {
	err := Struct(&sample{Name: "A", Email: "a@b.co", Interests: []string{}})
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "interests", fe.Field)

	err = Struct(&sample{Name: "A", Email: "a@b.co", Interests: []string{""}})
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "interests", fe.Field)
}

func TestStructValid(t *testing.T) {
	assert.NoError(t, Struct(&sample{Name: "A", Email: "a@b.co", Interests: []string{"AI"}}))
}
