// Package handler is the thin HTTP layer over the proposal service. It
// parses requests, resolves the caller identity from the context and
// delegates; no business logic lives here.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sams/internal/http/response"
	"sams/internal/identity"
	"sams/internal/proposal/models"
	"sams/internal/proposal/service"
	dErrors "sams/pkg/domain-errors"
	"sams/pkg/requestcontext"
)

type Handler struct {
	proposals *service.Service
	logger    *slog.Logger
}

func New(proposals *service.Service, logger *slog.Logger) *Handler {
	return &Handler{proposals: proposals, logger: logger}
}

// Register mounts the proposal routes. The router passed in already carries
// the auth middleware; admin routes are mounted separately by the caller.
func (h *Handler) Register(r chi.Router) {
	r.Get("/proposals", h.handleList)
	r.Get("/proposals/number/{proposalNumber}", h.handleGetByNumber)
	r.Get("/proposals/{id}", h.handleGetByID)
	r.Post("/proposals", h.handleCreate)
	r.Put("/proposals/{id}", h.handleUpdate)
	r.Delete("/proposals/{id}", h.handleDelete)
	r.Put("/proposals/{id}/submit", h.handleSubmit)
}

// RegisterAdmin mounts the admin-only routes; the caller wraps them with the
// admin role gate.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/proposals", h.handleList)
	r.Put("/admin/proposals/{id}/review", h.handleReview)
	r.Get("/admin/proposals/stats", h.handleStats)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(r)
	if !ok {
		response.Err(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	q := r.URL.Query()
	filter := service.ListFilter{
		Status: q.Get("status"),
		Search: q.Get("search"),
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	proposals, err := h.proposals.List(r.Context(), caller, filter)
	if err != nil {
		response.Err(w, err)
		return
	}
	response.OK(w, http.StatusOK, proposals)
}

func (h *Handler) handleGetByID(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(r)
	if !ok {
		response.Err(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	id, err := pathID(r)
	if err != nil {
		response.Err(w, err)
		return
	}

	p, err := h.proposals.GetByID(r.Context(), caller, id)
	if err != nil {
		response.Err(w, err)
		return
	}
	response.OK(w, http.StatusOK, p)
}

func (h *Handler) handleGetByNumber(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(r)
	if !ok {
		response.Err(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	p, err := h.proposals.GetByNumber(r.Context(), caller, chi.URLParam(r, "proposalNumber"))
	if err != nil {
		response.Err(w, err)
		return
	}
	response.OK(w, http.StatusOK, p)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(r)
	if !ok {
		response.Err(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	var draft models.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		response.Err(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	created, err := h.proposals.Create(r.Context(), caller, draft)
	if err != nil {
		response.Err(w, err)
		return
	}
	response.OKMessage(w, http.StatusCreated, "Proposal created successfully", created)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(r)
	if !ok {
		response.Err(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	id, err := pathID(r)
	if err != nil {
		response.Err(w, err)
		return
	}

	var patch models.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.Err(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	updated, err := h.proposals.Update(r.Context(), caller, id, patch)
	if err != nil {
		response.Err(w, err)
		return
	}
	response.OKMessage(w, http.StatusOK, "Proposal updated successfully", updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(r)
	if !ok {
		response.Err(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	id, err := pathID(r)
	if err != nil {
		response.Err(w, err)
		return
	}

	if err := h.proposals.Delete(r.Context(), caller, id); err != nil {
		response.Err(w, err)
		return
	}
	response.OKMessage(w, http.StatusOK, "Proposal deleted successfully", nil)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(r)
	if !ok {
		response.Err(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	id, err := pathID(r)
	if err != nil {
		response.Err(w, err)
		return
	}

	submitted, err := h.proposals.Submit(r.Context(), caller, id)
	if err != nil {
		response.Err(w, err)
		return
	}
	response.OKMessage(w, http.StatusOK, "Proposal submitted successfully", submitted)
}

type reviewRequest struct {
	Status           string `json:"status"`
	ReviewerComments string `json:"reviewer_comments"`
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(r)
	if !ok {
		response.Err(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	id, err := pathID(r)
	if err != nil {
		response.Err(w, err)
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	reviewed, err := h.proposals.Review(r.Context(), caller, id, req.Status, req.ReviewerComments)
	if err != nil {
		response.Err(w, err)
		return
	}
	response.OKMessage(w, http.StatusOK, "Proposal reviewed successfully", reviewed)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.proposals.GetStats(r.Context())
	if err != nil {
		response.Err(w, err)
		return
	}
	response.OK(w, http.StatusOK, stats)
}

func callerIdentity(r *http.Request) (identity.Identity, bool) {
	return requestcontext.Identity(r.Context())
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid id")
	}
	return id, nil
}
