package auth

import (
	"strconv"

	"sams/internal/platform/middleware"
	dErrors "sams/pkg/domain-errors"
)

// ValidatorAdapter exposes the TokenService through the middleware's
// TokenValidator interface.
type ValidatorAdapter struct {
	tokens *TokenService
}

func NewValidatorAdapter(tokens *TokenService) *ValidatorAdapter {
	return &ValidatorAdapter{tokens: tokens}
}

func (a *ValidatorAdapter) ValidateToken(tokenString string) (*middleware.Claims, error) {
	claims, err := a.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	return &middleware.Claims{
		UserID: userID,
		Role:   claims.Role,
		JTI:    claims.ID,
	}, nil
}
