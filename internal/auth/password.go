package auth

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password the policy accepts.
const MinPasswordLength = 8

// SpecialCharacters is the set a password must draw at least one character from.
const SpecialCharacters = `!@#$%^&*(),.?":{}|<>`

// PasswordPolicyError names the single rule a password broke.
type PasswordPolicyError struct {
	Rule string
}

func (e *PasswordPolicyError) Error() string {
	switch e.Rule {
	case "length":
		return fmt.Sprintf("Password must be at least %d characters long.", MinPasswordLength)
	case "uppercase":
		return "Password must contain at least one uppercase letter."
	case "lowercase":
		return "Password must contain at least one lowercase letter."
	case "digit":
		return "Password must contain at least one numeric digit."
	default:
		return "Password must contain at least one special character."
	}
}

// CheckPasswordStrength returns the first rule password violates, checked in a fixed order.
func CheckPasswordStrength(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return &PasswordPolicyError{Rule: "length"}
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	switch {
	case !upper:
		return &PasswordPolicyError{Rule: "uppercase"}
	case !lower:
		return &PasswordPolicyError{Rule: "lowercase"}
	case !digit:
		return &PasswordPolicyError{Rule: "digit"}
	case !strings.ContainsAny(password, SpecialCharacters):
		return &PasswordPolicyError{Rule: "special"}
	}
	return nil
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// BcryptHasher implements PasswordHasher with bcrypt.
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher creates a hasher with the given cost; zero selects bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{Cost: cost}
}

// Hash returns the bcrypt hash of password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare reports whether password matches hash.
func (h *BcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
