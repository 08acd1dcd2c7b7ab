package handler

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sams/internal/auth"
	"sams/internal/auth/revocation"
	"sams/internal/identity"
	"sams/internal/platform/middleware"
)

// TestLogoutRevokesToken exercises the full token lifecycle: a valid token
// passes the auth middleware, logout revokes it, and the same token is then
// rejected.
func TestLogoutRevokesToken(t *testing.T) {
	tokens := auth.NewTokenService("test-signing-key", "sams", 15*time.Minute)
	revocations := revocation.NewInMemoryStore()
	logger := slog.New(slog.DiscardHandler)

	r := chi.NewRouter()
	r.Use(middleware.RequireAuth(auth.NewValidatorAdapter(tokens), revocations, logger))
	New(revocations, tokens.TTL(), logger).Register(r)
	r.Get("/proposals", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	token, err := tokens.Generate(identity.Identity{SubjectID: 42, Role: identity.RoleUser})
	require.NoError(t, err)

	do := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr
	}

	// the token works before logout
	require.Equal(t, http.StatusOK, do(http.MethodGet, "/proposals").Code)

	rr := do(http.MethodPost, "/auth/logout")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Logged out successfully")

	// and is rejected afterwards
	rr = do(http.MethodGet, "/proposals")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "revoked")
}

// TestLogoutWithoutBackend acknowledges logout when no revocation list is
// configured.
func TestLogoutWithoutBackend(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	r := chi.NewRouter()
	New(nil, 15*time.Minute, logger).Register(r)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}
