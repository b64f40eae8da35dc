package auth

import "shopadmin/internal/apperrors"

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID    string
	Email     string
	IsStaff   bool
	SessionID string
}

// RequireStaff is the single authorization predicate for catalog writes and bulk import.
func RequireStaff(p *Principal) error {
	if p == nil {
		return apperrors.Unauthorized("Authentication credentials were not provided.")
	}
	if !p.IsStaff {
		return apperrors.Forbidden("You do not have permission to perform this action.")
	}
	return nil
}
