// Package handler exposes the token lifecycle endpoints. Login and
// registration live upstream; this service only revokes tokens it is
// presented with.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sams/internal/http/response"
	"sams/internal/platform/middleware"
	dErrors "sams/pkg/domain-errors"
	"sams/pkg/requestcontext"
)

// Revoker adds a token id to the revocation list.
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

type Handler struct {
	revocations Revoker
	tokenTTL    time.Duration
	logger      *slog.Logger
}

func New(revocations Revoker, tokenTTL time.Duration, logger *slog.Logger) *Handler {
	return &Handler{revocations: revocations, tokenTTL: tokenTTL, logger: logger}
}

// Register mounts the auth routes on an authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/logout", h.handleLogout)
}

// handleLogout revokes the presented token for its remaining lifetime. With
// no revocation backend configured, logout is a client-side concern and the
// endpoint simply acknowledges.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jti := middleware.JTI(ctx)
	if h.revocations != nil && jti != "" {
		if err := h.revocations.Revoke(ctx, jti, h.tokenTTL); err != nil {
			h.logger.ErrorContext(ctx, "token revocation failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
			response.Err(w, dErrors.Wrap(err, dErrors.CodeInternal, "logout failed"))
			return
		}
	}
	response.OKMessage(w, http.StatusOK, "Logged out successfully", nil)
}
