package common

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator(t *testing.T) {
	v := NewValidator()
	assert.True(t, v.Valid())

	v.Check(false, "name", "must be provided")
	v.Check(false, "name", "must not be more than 50 characters long")
	v.Check(true, "email", "must be a valid email address")

	assert.False(t, v.Valid())
	assert.Equal(t, map[string]string{"name": "must be provided"}, v.Errors)

	var validationErr ValidationError
	assert.True(t, errors.As(v.ValidationError(), &validationErr))
	assert.Equal(t, "must be provided", validationErr.Errors["name"])
}

func TestValidator_CheckStringLength(t *testing.T) {
	testCases := []struct {
		input string
		min   int
		max   int
		want  bool
	}{
		{input: "", min: 1, max: 3, want: false},
		{input: "abc", min: 1, max: 3, want: true},
		{input: "abcd", min: 1, max: 3, want: false},
		{input: "日本語", min: 1, max: 3, want: true},
	}

	v := NewValidator()
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, v.CheckStringLength(tc.input, tc.min, tc.max))
		})
	}
}

func TestValidator_PermittedValue(t *testing.T) {
	v := NewValidator()
	rx := regexp.MustCompile("^[a-z]+$")

	assert.True(t, v.PermittedValue("Asia", "Africa", "Asia"))
	assert.False(t, v.PermittedValue("asia", "Africa", "Asia"))
	assert.True(t, v.Matches("abc", rx))
	assert.False(t, v.Matches("ab1", rx))
}
