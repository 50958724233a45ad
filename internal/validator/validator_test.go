package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequired(t *testing.T) {
	var req Required
	req.Field("fullNames", "Jane")
	req.Field("dateOfBirth", "  ")
	req.Field("gender", "")

	assert.Equal(t, []string{"dateOfBirth", "gender"}, req.Missing())
	assert.Equal(t, "Missing required fields: dateOfBirth, gender", req.Message())

	var none Required
	none.Field("a", "x")
	assert.Empty(t, none.Message())
}

func TestHelpers(t *testing.T) {
	assert.True(t, IsEmail("officer@example.com"))
	assert.False(t, IsEmail("officer@"))

	assert.True(t, Matches("0712345678", RgxPhoneNumber))
	assert.True(t, Matches("254712345678", RgxPhoneNumber))
	assert.False(t, Matches("12345", RgxPhoneNumber))

	assert.True(t, PermittedValue("csv", "csv", "pdf"))
	assert.False(t, PermittedValue("xls", "csv", "pdf"))

	var v Validator
	v.Check(NotBlank(""), "Email is required")
	assert.True(t, v.HasErrors())
	assert.Equal(t, []string{"Email is required"}, v.Errors)
}
