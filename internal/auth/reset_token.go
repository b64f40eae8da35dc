package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

const resetTokenBytes = 32

// NewResetToken returns an opaque URL-safe token and the digest to persist for it.
func NewResetToken() (token, digest string, err error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	token = base64.RawURLEncoding.EncodeToString(buf)
	return token, DigestResetToken(token), nil
}

// DigestResetToken hashes a token for storage and lookup.
func DigestResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ResetLink builds the caller-facing link embedding the user id and token as path segments.
func ResetLink(base, userID, token string) string {
	return fmt.Sprintf("%s/reset-password/%s/%s/", strings.TrimRight(base, "/"), userID, token)
}
