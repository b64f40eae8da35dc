package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"shopadmin/internal/apperrors"
	"shopadmin/internal/auth"
	"shopadmin/internal/mailer"
	"shopadmin/internal/metrics"
	"shopadmin/internal/models"
	"shopadmin/internal/repositories"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgInvalidToken       = "Invalid or expired token"
	msgInvalidResetLink   = "Invalid or expired reset link"
)

// AuthDeps groups the collaborators of AuthService.
type AuthDeps struct {
	Users        repositories.UserRepository
	ResetTokens  repositories.ResetTokenRepository
	// Accounts makes consuming a reset token and saving the new password atomic.
	// Without it the two writes run back to back on Users and ResetTokens.
	Accounts     repositories.AccountTransactor
	Tokens       *auth.JWTService
	Revocations  auth.RevocationStore
	Hasher       auth.PasswordHasher
	Mailer       mailer.Mailer
	ResetTTL     time.Duration
	ResetURLBase string
	Metrics      *metrics.Metrics
	Log          *zap.Logger
}

// AuthService handles registration, sessions and the password reset flow.
type AuthService struct {
	users        repositories.UserRepository
	resetTokens  repositories.ResetTokenRepository
	accounts     repositories.AccountTransactor
	tokens       *auth.JWTService
	revocations  auth.RevocationStore
	hasher       auth.PasswordHasher
	mailer       mailer.Mailer
	resetTTL     time.Duration
	resetURLBase string
	metrics      *metrics.Metrics
	log          *zap.Logger
	now          func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(deps AuthDeps) *AuthService {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	accounts := deps.Accounts
	if accounts == nil {
		accounts = directAccounts{tx: repositories.AccountTx{Users: deps.Users, ResetTokens: deps.ResetTokens}}
	}
	return &AuthService{
		users:        deps.Users,
		resetTokens:  deps.ResetTokens,
		accounts:     accounts,
		tokens:       deps.Tokens,
		revocations:  deps.Revocations,
		hasher:       deps.Hasher,
		mailer:       deps.Mailer,
		resetTTL:     deps.ResetTTL,
		resetURLBase: deps.ResetURLBase,
		metrics:      deps.Metrics,
		log:          log,
		now:          time.Now,
	}
}

// directAccounts runs fn on the plain repositories, without a transaction.
type directAccounts struct {
	tx repositories.AccountTx
}

func (d directAccounts) WithinAccountTransaction(ctx context.Context, fn func(tx repositories.AccountTx) error) error {
	return fn(d.tx)
}

// NormalizeEmail trims and lower-cases an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func passwordError(field string, err error) error {
	return apperrors.ValidationFields(err.Error(), map[string]string{field: err.Error()})
}

// Register creates a non-staff user after checking the password policy and email uniqueness.
func (s *AuthService) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, apperrors.ValidationFields("Email is required", map[string]string{"email": "This field is required."})
	}
	if err := auth.CheckPasswordStrength(password); err != nil {
		return nil, passwordError("password", err)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, errEmailTaken()
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.Internal("Could not register user", err)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperrors.Internal("Could not register user", err)
	}

	user := &models.User{
		Email:    email,
		Password: hashed,
		IsStaff:  false,
		IsActive: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			// lost a race with a concurrent registration
			return nil, errEmailTaken()
		}
		return nil, apperrors.Internal("Could not register user", err)
	}

	s.log.Info("User registered", zap.String("user_id", user.ID))
	return user, nil
}

func errEmailTaken() error {
	return apperrors.ValidationFields("User with this email already exists.", map[string]string{
		"email": "user with this email already exists.",
	})
}

// Login checks credentials and issues a token pair. Every failure looks the same to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (auth.TokenPair, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return auth.TokenPair{}, apperrors.Validation("Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return auth.TokenPair{}, apperrors.Internal("Could not log in", err)
		}
		s.metrics.ObserveLogin("failure")
		return auth.TokenPair{}, apperrors.Unauthorized(msgInvalidCredentials)
	}
	if !user.IsActive || !s.hasher.Compare(user.Password, password) {
		s.metrics.ObserveLogin("failure")
		s.log.Info("Login rejected", zap.String("user_id", user.ID))
		return auth.TokenPair{}, apperrors.Unauthorized(msgInvalidCredentials)
	}

	pair, _, err := s.tokens.IssuePair(user.ID, user.IsStaff)
	if err != nil {
		return auth.TokenPair{}, apperrors.Internal("Could not log in", err)
	}

	now := s.now()
	user.LastLogin = &now
	if err := s.users.Update(ctx, user); err != nil {
		s.log.Warn("Failed to record last login", zap.String("user_id", user.ID), zap.Error(err))
	}

	s.metrics.ObserveLogin("success")
	return pair, nil
}

// Refresh mints a new access token from a live refresh token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperrors.Validation("Refresh token is required")
	}
	claims, err := s.tokens.Parse(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return "", apperrors.Unauthorized(msgInvalidToken)
	}
	revoked, err := s.revocations.IsRevoked(ctx, claims.Id)
	if err != nil {
		return "", apperrors.Internal("Could not refresh token", err)
	}
	if revoked {
		return "", apperrors.Unauthorized(msgInvalidToken)
	}

	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return "", err
	}
	// staff flag may have changed since login
	claims.IsStaff = user.IsStaff

	access, err := s.tokens.IssueAccess(claims)
	if err != nil {
		return "", apperrors.Internal("Could not refresh token", err)
	}
	return access, nil
}

// Logout revokes the caller's refresh token so its session can never mint access tokens again.
func (s *AuthService) Logout(ctx context.Context, caller *auth.Principal, refreshToken string) error {
	if refreshToken == "" {
		return apperrors.Validation("Refresh token is required")
	}
	claims, err := s.tokens.Parse(refreshToken, auth.TokenTypeRefresh)
	if err != nil || caller == nil || claims.UserID != caller.UserID {
		return apperrors.Validation(msgInvalidToken)
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.Id)
	if err != nil {
		return apperrors.Internal("Could not log out", err)
	}
	if revoked {
		return apperrors.Validation(msgInvalidToken)
	}

	if err := s.revocations.Revoke(ctx, claims.Id, claims.UserID, time.Unix(claims.ExpiresAt, 0)); err != nil {
		return apperrors.Internal("Could not log out", err)
	}
	s.log.Info("User logged out", zap.String("user_id", claims.UserID))
	return nil
}

// Authenticate validates an access token against signature, expiry, revocation and the user's current state.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*auth.Principal, error) {
	claims, err := s.tokens.Parse(accessToken, auth.TokenTypeAccess)
	if err != nil {
		return nil, apperrors.Unauthorized("Given token not valid for any token type")
	}

	for _, jti := range []string{claims.Id, claims.SessionID} {
		if jti == "" {
			continue
		}
		revoked, err := s.revocations.IsRevoked(ctx, jti)
		if err != nil {
			return nil, apperrors.Internal("Could not authenticate", err)
		}
		if revoked {
			return nil, apperrors.Unauthorized("Token is revoked")
		}
	}

	user, err := s.activeUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return &auth.Principal{
		UserID:    user.ID,
		Email:     user.Email,
		IsStaff:   user.IsStaff,
		SessionID: claims.SessionID,
	}, nil
}

func (s *AuthService) activeUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.Unauthorized("User not found")
		}
		return nil, apperrors.Internal("Could not authenticate", err)
	}
	if !user.IsActive {
		return nil, apperrors.Unauthorized("User is inactive")
	}
	return user, nil
}

// ForgotPassword emails a single-use reset link to the account owning email.
// Unknown emails fail with a validation error, which reveals whether an account exists.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return apperrors.ValidationFields("Email is required", map[string]string{"email": "This field is required."})
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.ValidationFields("No account found with this email.", map[string]string{
				"email": "No account found with this email.",
			})
		}
		return apperrors.Internal("Could not start password reset", err)
	}

	now := s.now()
	// only the newest link stays valid
	if err := s.resetTokens.InvalidateForUser(ctx, user.ID, now); err != nil {
		return apperrors.Internal("Could not start password reset", err)
	}

	token, digest, err := auth.NewResetToken()
	if err != nil {
		return apperrors.Internal("Could not start password reset", err)
	}
	record := &models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: digest,
		ExpiresAt: now.Add(s.resetTTL),
	}
	if err := s.resetTokens.Create(ctx, record); err != nil {
		return apperrors.Internal("Could not start password reset", err)
	}

	link := auth.ResetLink(s.resetURLBase, user.ID, token)
	msg := mailer.Message{
		To:      []string{user.Email},
		Subject: "Password Reset Request",
		Body:    fmt.Sprintf("Click the link to reset your password: %s", link),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return apperrors.Internal("Could not send password reset email", err)
	}

	s.metrics.ObservePasswordReset("requested")
	s.log.Info("Password reset requested", zap.String("user_id", user.ID))
	return nil
}

// ResetPassword replaces a user's password using a reset token, consuming the token.
func (s *AuthService) ResetPassword(ctx context.Context, userID, token, password, confirm string) error {
	if err := auth.CheckPasswordStrength(password); err != nil {
		return passwordError("password", err)
	}
	if password != confirm {
		return apperrors.ValidationFields("Passwords do not match.", map[string]string{
			"confirm_password": "Passwords do not match.",
		})
	}
	if userID == "" || token == "" {
		return apperrors.Validation(msgInvalidResetLink)
	}

	record, err := s.resetTokens.GetByHash(ctx, auth.DigestResetToken(token))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.metrics.ObservePasswordReset("rejected")
			return apperrors.Validation(msgInvalidResetLink)
		}
		return apperrors.Internal("Could not reset password", err)
	}
	now := s.now()
	if record.UserID != userID || record.UsedAt != nil || !now.Before(record.ExpiresAt) {
		s.metrics.ObservePasswordReset("rejected")
		return apperrors.Validation(msgInvalidResetLink)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.Validation(msgInvalidResetLink)
		}
		return apperrors.Internal("Could not reset password", err)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return apperrors.Internal("Could not reset password", err)
	}
	user.Password = hashed

	// the token stays usable unless the new password is saved
	err = s.accounts.WithinAccountTransaction(ctx, func(tx repositories.AccountTx) error {
		if err := tx.ResetTokens.MarkUsed(ctx, record.ID, now); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				// consumed concurrently
				return apperrors.Validation(msgInvalidResetLink)
			}
			return apperrors.Internal("Could not reset password", err)
		}
		if err := tx.Users.Update(ctx, user); err != nil {
			return apperrors.Internal("Could not reset password", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.ObservePasswordReset("completed")
	s.log.Info("Password reset completed", zap.String("user_id", user.ID))
	return nil
}

// EnsureSuperuser creates a staff user, or promotes an existing one and replaces its password.
// It reports whether a new user was created.
func (s *AuthService) EnsureSuperuser(ctx context.Context, email, password string) (*models.User, bool, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, false, apperrors.Validation("Email is required")
	}
	if err := auth.CheckPasswordStrength(password); err != nil {
		return nil, false, passwordError("password", err)
	}
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, false, apperrors.Internal("Could not create superuser", err)
	}

	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		user.IsStaff = true
		user.IsActive = true
		user.Password = hashed
		if err := s.users.Update(ctx, user); err != nil {
			return nil, false, apperrors.Internal("Could not update superuser", err)
		}
		return user, false, nil
	case errors.Is(err, repositories.ErrNotFound):
		user = &models.User{Email: email, Password: hashed, IsStaff: true, IsActive: true}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, false, apperrors.Internal("Could not create superuser", err)
		}
		return user, true, nil
	default:
		return nil, false, apperrors.Internal("Could not create superuser", err)
	}
}
