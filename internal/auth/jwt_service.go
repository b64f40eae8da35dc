package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	// ErrInvalidToken is returned for any token that fails parsing, signature or expiry checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrWrongTokenType is returned when an access token is used as a refresh token or vice versa.
	ErrWrongTokenType = errors.New("wrong token type")
)

// Claims are the JWT claims carried by both token kinds.
type Claims struct {
	UserID    string `json:"user_id"`
	IsStaff   bool   `json:"is_staff"`
	TokenType string `json:"token_type"`
	// SessionID is the JTI of the refresh token an access token was minted from.
	SessionID string `json:"sid,omitempty"`
	jwt.StandardClaims
}

// TokenPair is what a successful login returns.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// JWTService signs and verifies HS256 tokens.
type JWTService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewJWTService creates a JWTService with the given secret and lifetimes.
func NewJWTService(secret string, accessTTL, refreshTTL time.Duration) *JWTService {
	return &JWTService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// RefreshTTL returns how long refresh tokens live.
func (s *JWTService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// IssuePair mints a refresh token and an access token bound to it.
func (s *JWTService) IssuePair(userID string, isStaff bool) (TokenPair, *Claims, error) {
	refreshClaims := s.claims(userID, isStaff, TokenTypeRefresh, s.refreshTTL)
	refresh, err := s.sign(refreshClaims)
	if err != nil {
		return TokenPair{}, nil, err
	}
	access, err := s.IssueAccess(refreshClaims)
	if err != nil {
		return TokenPair{}, nil, err
	}
	return TokenPair{Access: access, Refresh: refresh}, refreshClaims, nil
}

// IssueAccess mints an access token for the session identified by refresh.
func (s *JWTService) IssueAccess(refresh *Claims) (string, error) {
	claims := s.claims(refresh.UserID, refresh.IsStaff, TokenTypeAccess, s.accessTTL)
	claims.SessionID = refresh.Id
	return s.sign(claims)
}

// Parse verifies signature, expiry and token type.
func (s *JWTService) Parse(tokenString, wantType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Id == "" || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

func (s *JWTService) claims(userID string, isStaff bool, tokenType string, ttl time.Duration) *Claims {
	now := s.now()
	return &Claims{
		UserID:    userID,
		IsStaff:   isStaff,
		TokenType: tokenType,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Subject:   userID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}
}

func (s *JWTService) sign(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}
