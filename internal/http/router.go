// Package http assembles the route tree. Handlers stay thin; everything
// request-scoped (correlation id, identity, logging) is middleware.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	activityhandler "sams/internal/activity/handler"
	authhandler "sams/internal/auth/handler"
	"sams/internal/platform/metrics"
	"sams/internal/platform/middleware"
	proposalhandler "sams/internal/proposal/handler"
)

// Deps carries everything the router wires together.
type Deps struct {
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	Validator   middleware.TokenValidator
	Revocations middleware.RevocationChecker
	Proposals   *proposalhandler.Handler
	Activities  *activityhandler.Handler
	Auth        *authhandler.Handler
}

// NewRouter builds the full route tree.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger, deps.Metrics))

	r.Get("/health", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	// Authenticated routes.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.Validator, deps.Revocations, deps.Logger))

		deps.Proposals.Register(r)
		deps.Activities.Register(r)
		deps.Auth.Register(r)

		// Admin routes carry the role gate on top of authentication.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(deps.Logger))
			deps.Proposals.RegisterAdmin(r)
			deps.Activities.RegisterAdmin(r)
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok","message":"Student Activity Management System is running"}`))
}
