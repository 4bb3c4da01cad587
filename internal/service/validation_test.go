package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValidEmail(t *testing.T) {
	cases := map[string]bool{
		"jane@mit.edu":          true,
		" Jane@College.EDU ":    true,
		"jane@localhost":        false,
		"jane mit.edu":          false,
		"jane@mit .edu":         false,
		"":                      false,
		"@mit.edu":              false,
		"jane@student.ox.ac.uk": true,
	}
	for email, want := range cases {
		require.Equal(t, want, IsValidEmail(email), email)
	}
}

func TestStudentEmailTag(t *testing.T) {
	type payload struct {
		Email string `validate:"omitempty,student_email"`
	}
	require.NoError(t, Validator().Struct(payload{}))
	require.NoError(t, Validator().Struct(payload{Email: "jane@mit.edu"}))
	require.Error(t, Validator().Struct(payload{Email: "jane"}))
}
