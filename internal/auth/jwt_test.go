package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sams/internal/identity"
	dErrors "sams/pkg/domain-errors"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-signing-key", "sams", 15*time.Minute)

	token, err := svc.Generate(identity.Identity{SubjectID: 42, Role: identity.RoleUser})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, "sams", claims.Issuer)
	assert.NotEmpty(t, claims.ID, "token id is required for revocation")
}

func TestTokenValidateRejects(t *testing.T) {
	svc := NewTokenService("test-signing-key", "sams", 15*time.Minute)

	t.Run("garbage input", func(t *testing.T) {
		_, err := svc.Validate("not-a-jwt")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := NewTokenService("different-key", "sams", 15*time.Minute)
		token, err := other.Generate(identity.Identity{SubjectID: 1, Role: identity.RoleAdmin})
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("expired token", func(t *testing.T) {
		expired := NewTokenService("test-signing-key", "sams", -time.Minute)
		token, err := expired.Generate(identity.Identity{SubjectID: 1, Role: identity.RoleUser})
		require.NoError(t, err)

		_, err = svc.Validate(token)
		require.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.Contains(t, err.Error(), "expired")
	})
}

func TestValidatorAdapter(t *testing.T) {
	svc := NewTokenService("test-signing-key", "sams", 15*time.Minute)
	adapter := NewValidatorAdapter(svc)

	t.Run("maps claims for the middleware", func(t *testing.T) {
		token, err := svc.Generate(identity.Identity{SubjectID: 7, Role: identity.RoleAdmin})
		require.NoError(t, err)

		claims, err := adapter.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, int64(7), claims.UserID)
		assert.Equal(t, "admin", claims.Role)
		assert.NotEmpty(t, claims.JTI)
	})

	t.Run("propagates validation failures", func(t *testing.T) {
		_, err := adapter.ValidateToken("bogus")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
