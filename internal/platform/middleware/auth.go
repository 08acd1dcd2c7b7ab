package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"sams/internal/identity"
	"sams/pkg/requestcontext"
)

// Claims is the decoded token content the middleware consumes. The core only
// needs the subject and role; token minting and verification details live in
// the auth package.
type Claims struct {
	UserID int64
	Role   string
	JTI    string
}

// TokenValidator verifies a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// RevocationChecker reports whether a token id has been revoked. A nil
// checker disables the check.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RequireAuth validates the bearer token and attaches the caller identity to
// the context. Requests without a valid, unrevoked token get 401.
func RequireAuth(validator TokenValidator, revocations RevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized: missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized: invalid token",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			if revocations != nil && claims.JTI != "" {
				revoked, err := revocations.IsRevoked(ctx, claims.JTI)
				if err != nil {
					logger.ErrorContext(ctx, "revocation check failed",
						"request_id", requestcontext.RequestID(ctx),
						"error", err,
					)
					writeJSONError(w, http.StatusInternalServerError, "authentication backend unavailable")
					return
				}
				if revoked {
					writeJSONError(w, http.StatusUnauthorized, "token has been revoked")
					return
				}
			}

			role := identity.Role(claims.Role)
			if !role.IsValid() {
				writeJSONError(w, http.StatusUnauthorized, "unknown role")
				return
			}

			ctx = requestcontext.WithIdentity(ctx, identity.Identity{
				SubjectID: claims.UserID,
				Role:      role,
			})
			ctx = context.WithValue(ctx, jtiKey{}, claims.JTI)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates administrative routes. It assumes RequireAuth already
// ran; requests without an identity get 401, non-admins 403.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			caller, ok := requestcontext.Identity(ctx)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !caller.IsAdmin() {
				logger.WarnContext(ctx, "admin route denied",
					"request_id", requestcontext.RequestID(ctx),
					"subject_id", caller.SubjectID,
				)
				writeJSONError(w, http.StatusForbidden, "requires admin privileges")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type jtiKey struct{}

// JTI returns the token id of the authenticated request; logout uses it to
// revoke the presented token.
func JTI(ctx context.Context) string {
	jti, _ := ctx.Value(jtiKey{}).(string)
	return jti
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"status":"error","message":"` + message + `"}`))
}
