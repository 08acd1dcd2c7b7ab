// Package handler is the thin HTTP layer over the activity service.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sams/internal/activity"
	"sams/internal/http/response"
	"sams/internal/identity"
	dErrors "sams/pkg/domain-errors"
	"sams/pkg/requestcontext"
)

type Handler struct {
	activities *activity.Service
	logger     *slog.Logger
}

func New(activities *activity.Service, logger *slog.Logger) *Handler {
	return &Handler{activities: activities, logger: logger}
}

// Register mounts the activity routes on an authenticated router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/activities", h.handleList)
	r.Get("/activities/{id}", h.handleGetByID)
	r.Post("/activities", h.handleCreate)
	r.Put("/activities/{id}", h.handleUpdate)
	r.Delete("/activities/{id}", h.handleDelete)
}

// RegisterAdmin mounts the admin-only routes.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/activities", h.handleList)
	r.Put("/admin/activities/{id}/approve", h.handleApprove)
	r.Get("/admin/activities/stats", h.handleStats)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(r)
	if !ok {
		response.Err(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	q := r.URL.Query()
	filter := activity.ListFilter{
		Status: q.Get("status"),
		Search: q.Get("search"),
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	activities, err := h.activities.List(r.Context(), caller, filter)
	if err != nil {
		response.Err(w, err)
		return
	}
	response.OK(w, http.StatusOK, activities)
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

	a, err := h.activities.GetByID(r.Context(), caller, id)
	if err != nil {
		response.Err(w, err)
		return
	}
	response.OK(w, http.StatusOK, a)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(r)
	if !ok {
		response.Err(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	var draft activity.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		response.Err(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	created, err := h.activities.Create(r.Context(), caller, draft)
	if err != nil {
		response.Err(w, err)
		return
	}
	response.OKMessage(w, http.StatusCreated, "Activity created successfully", created)
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

	var patch activity.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.Err(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	updated, err := h.activities.Update(r.Context(), caller, id, patch)
	if err != nil {
		response.Err(w, err)
		return
	}
	response.OKMessage(w, http.StatusOK, "Activity updated successfully", updated)
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

	if err := h.activities.Delete(r.Context(), caller, id); err != nil {
		response.Err(w, err)
		return
	}
	response.OKMessage(w, http.StatusOK, "Activity deleted successfully", nil)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
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

	approved, err := h.activities.Approve(r.Context(), caller, id)
	if err != nil {
		response.Err(w, err)
		return
	}
	response.OKMessage(w, http.StatusOK, "Activity approved successfully", approved)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.activities.GetStats(r.Context())
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
