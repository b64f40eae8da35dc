package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"shopadmin/internal/auth"
)

func TestCheckPasswordStrength(t *testing.T) {
	cases := []struct {
		password string
		rule     string
	}{
		{"Ab1!", "length"},
		{"abcdefg1!", "uppercase"},
		{"ABCDEFG1!", "lowercase"},
		{"Abcdefgh!", "digit"},
		{"Abcdefgh1", "special"},
		{"Abcdefgh1_", "special"},
	}
	for _, tc := range cases {
		err := auth.CheckPasswordStrength(tc.password)
		var policyErr *auth.PasswordPolicyError
		if assert.ErrorAs(t, err, &policyErr, tc.password) {
			assert.Equal(t, tc.rule, policyErr.Rule, tc.password)
		}
	}

	for _, ok := range []string{"Str0ng!Pass", "Abcdefg1?", `Quote"d1x`, "Ümlaut1{x"} {
		assert.NoError(t, auth.CheckPasswordStrength(ok), ok)
	}
}

func TestPasswordPolicyError_Messages(t *testing.T) {
	assert.Contains(t, (&auth.PasswordPolicyError{Rule: "length"}).Error(), "at least 8 characters")
	assert.Contains(t, (&auth.PasswordPolicyError{Rule: "uppercase"}).Error(), "uppercase")
	assert.Contains(t, (&auth.PasswordPolicyError{Rule: "lowercase"}).Error(), "lowercase")
	assert.Contains(t, (&auth.PasswordPolicyError{Rule: "digit"}).Error(), "numeric digit")
	assert.Contains(t, (&auth.PasswordPolicyError{Rule: "special"}).Error(), "special character")
}

func TestBcryptHasher(t *testing.T) {
	h := auth.NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("Str0ng!Pass")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ng!Pass", hash)
	assert.True(t, h.Compare(hash, "Str0ng!Pass"))
	assert.False(t, h.Compare(hash, "wrong"))

	assert.Equal(t, bcrypt.DefaultCost, auth.NewBcryptHasher(0).Cost)
}

func TestResetTokens(t *testing.T) {
	token, digest, err := auth.NewResetToken()
	require.NoError(t, err)
	assert.Len(t, token, 43)
	assert.Equal(t, digest, auth.DigestResetToken(token))

	other, _, err := auth.NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)

	assert.Equal(t, "http://localhost:8000/reset-password/u-1/tok/", auth.ResetLink("http://localhost:8000/", "u-1", "tok"))
}
