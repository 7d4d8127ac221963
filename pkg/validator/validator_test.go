package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRegister(t *testing.T) {
	errs := ValidateRegister("Ada", "ada@example.com", "Sup3rSecret")
	assert.False(t, errs.HasErrors())

	errs = ValidateRegister("", "not-an-email", "short")
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
}

func TestValidatePasswordRules(t *testing.T) {
	cases := []struct {
		password string
		valid    bool
	}{
		{"Sup3rSecret", true},
		{"short1A", false},       // too short
		{"alllowercase1", false}, // no uppercase
		{"ALLUPPERCASE1", false}, // no lowercase
		{"NoDigitsHere", false},  // no number
	}

	for _, tc := range cases {
		errs := make(ValidationErrors)
		ValidatePassword(tc.password, errs)
		assert.Equal(t, tc.valid, !errs.HasErrors(), "password %q", tc.password)
	}
}

func TestValidateNoteTitle(t *testing.T) {
	assert.False(t, ValidateNote("a reasonable title").HasErrors())
	assert.False(t, ValidateNote("").HasErrors(), "untitled notes are allowed")
	assert.True(t, ValidateNote(strings.Repeat("x", 101)).HasErrors())
}

func TestValidateLabel(t *testing.T) {
	assert.False(t, ValidateLabel("Work", "#4f46e5").HasErrors())
	assert.False(t, ValidateLabel("Work", "").HasErrors(), "color is optional")

	errs := ValidateLabel("", "not-a-color")
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "color")

	assert.True(t, ValidateLabel(strings.Repeat("x", 21), "").HasErrors())
}
