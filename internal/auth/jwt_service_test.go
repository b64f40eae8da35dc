package auth

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_IssuePair(t *testing.T) {
	svc := NewJWTService("test_jwt_secret", 5*time.Minute, 24*time.Hour)

	pair, refreshClaims, err := svc.IssuePair("user-123", true)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)

	access, err := svc.Parse(pair.Access, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-123", access.UserID)
	assert.True(t, access.IsStaff)
	assert.Equal(t, refreshClaims.Id, access.SessionID)
	assert.NotEqual(t, refreshClaims.Id, access.Id)

	refresh, err := svc.Parse(pair.Refresh, TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, refreshClaims.Id, refresh.Id)
	assert.Empty(t, refresh.SessionID)
}

func TestJWTService_ParseRejectsWrongType(t *testing.T) {
	svc := NewJWTService("test_jwt_secret", 5*time.Minute, 24*time.Hour)
	pair, _, err := svc.IssuePair("user-123", false)
	require.NoError(t, err)

	_, err = svc.Parse(pair.Access, TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)
	_, err = svc.Parse(pair.Refresh, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestJWTService_ParseRejectsBadTokens(t *testing.T) {
	svc := NewJWTService("test_jwt_secret", 5*time.Minute, 24*time.Hour)

	_, err := svc.Parse("invalid.token.string", TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewJWTService("another_secret", 5*time.Minute, 24*time.Hour)
	pair, _, err := other.IssuePair("user-123", false)
	require.NoError(t, err)
	_, err = svc.Parse(pair.Access, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewJWTService("test_jwt_secret", 5*time.Minute, 24*time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	pair, _, err = expired.IssuePair("user-123", false)
	require.NoError(t, err)
	_, err = svc.Parse(pair.Refresh, TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "user-123", TokenType: TokenTypeAccess})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Parse(unsigned, TokenTypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
