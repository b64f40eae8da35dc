package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"shopadmin/internal/apperrors"
	"shopadmin/internal/auth"
	"shopadmin/internal/logger"
)

const principalKey = "principal"

// Authenticator turns an access token into the caller it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*auth.Principal, error)
}

// AuthRequired is a Fiber middleware to check for a valid, unrevoked access token.
func AuthRequired(authenticator Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return apperrors.Unauthorized("Authentication credentials were not provided.")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") || parts[1] == "" {
			return apperrors.Unauthorized("Authorization header format must be 'Bearer <token>'")
		}

		principal, err := authenticator.Authenticate(c.UserContext(), parts[1])
		if err != nil {
			logger.FromCtx(c, zap.NewNop()).Debug("Access token rejected", zap.Error(err))
			return err
		}

		c.Locals(principalKey, principal)
		logger.With(c, zap.String("user_id", principal.UserID))
		return c.Next()
	}
}

// StaffRequired rejects callers without the staff flag. It must run after AuthRequired.
func StaffRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := auth.RequireStaff(PrincipalFrom(c)); err != nil {
			return err
		}
		return c.Next()
	}
}

// PrincipalFrom returns the caller stored by AuthRequired, or nil.
func PrincipalFrom(c *fiber.Ctx) *auth.Principal {
	p, _ := c.Locals(principalKey).(*auth.Principal)
	return p
}
