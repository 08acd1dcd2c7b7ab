package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sams/internal/http/response"
	"sams/internal/identity"
	"sams/internal/proposal/models"
	"sams/internal/proposal/service"
	"sams/internal/proposal/store"
	"sams/pkg/requestcontext"
	"sams/pkg/testutil"
)

var (
	admin = identity.Identity{SubjectID: 1, Role: identity.RoleAdmin}
	alice = identity.Identity{SubjectID: 10, Role: identity.RoleUser}
	bob   = identity.Identity{SubjectID: 20, Role: identity.RoleUser}
)

// newTestRouter wires the handler over an in-memory store. Auth middleware is
// not mounted; tests attach identities directly, the way the middleware would.
func newTestRouter(t *testing.T) (chi.Router, *service.Service) {
	t.Helper()

	svc, err := service.New(store.NewInMemory(), nil, nil, nil)
	require.NoError(t, err)

	h := New(svc, nil)
	r := chi.NewRouter()
	h.Register(r)
	h.RegisterAdmin(r)
	return r, svc
}

func draftBody(title string) map[string]any {
	return map[string]any{
		"title":               title,
		"background":          "background",
		"objectives":          "objectives",
		"target_audience":     "students",
		"implementation_plan": "plan",
		"expected_outcomes":   "outcomes",
	}
}

func decodeEnvelope(t *testing.T, body []byte) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

func createProposal(t *testing.T, r chi.Router, owner identity.Identity, title string, at time.Time) *models.Proposal {
	t.Helper()

	req := testutil.NewJSONRequest(t, http.MethodPost, "/proposals", draftBody(title))
	req = testutil.WithIdentity(req, owner)
	req = req.WithContext(requestcontext.WithTime(req.Context(), at))
	rr := testutil.DoRequest(r, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var env struct {
		Data models.Proposal `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return &env.Data
}

func TestCreateProposal(t *testing.T) {
	r, _ := newTestRouter(t)
	base := time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

	t.Run("201 with envelope and generated number", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/proposals", draftBody("Workshop"))
		req = testutil.WithIdentity(req, alice)
		req = req.WithContext(requestcontext.WithTime(req.Context(), base))
		rr := testutil.DoRequest(r, req)

		require.Equal(t, http.StatusCreated, rr.Code)
		env := decodeEnvelope(t, rr.Body.Bytes())
		assert.Equal(t, "success", env.Status)
		assert.Equal(t, "Proposal created successfully", env.Message)

		data := env.Data.(map[string]any)
		assert.Regexp(t, `^PROP-202603-\d{6}$`, data["proposal_number"])
		assert.Equal(t, "draft", data["status"])
		assert.Equal(t, float64(alice.SubjectID), data["user_id"])
	})

	t.Run("400 on missing required fields", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/proposals", map[string]any{"title": "only"})
		req = testutil.WithIdentity(req, alice)
		rr := testutil.DoRequest(r, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		env := decodeEnvelope(t, rr.Body.Bytes())
		assert.Equal(t, "error", env.Status)
		assert.Contains(t, env.Message, "missing required fields")
	})

	t.Run("400 on malformed body", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodPost, "/proposals")
		req = testutil.WithIdentity(req, alice)
		rr := testutil.DoRequest(r, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("401 without an identity", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/proposals", draftBody("Nobody"))
		rr := testutil.DoRequest(r, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestGetProposal(t *testing.T) {
	r, _ := newTestRouter(t)
	base := time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)
	p := createProposal(t, r, alice, "Readable", base)

	t.Run("200 for the owner", func(t *testing.T) {
		req := testutil.WithIdentity(testutil.NewRequest(t, http.MethodGet, fmt.Sprintf("/proposals/%d", p.ID)), alice)
		rr := testutil.DoRequest(r, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("200 by number", func(t *testing.T) {
		req := testutil.WithIdentity(testutil.NewRequest(t, http.MethodGet, "/proposals/number/"+p.ProposalNumber), alice)
		rr := testutil.DoRequest(r, req)
		require.Equal(t, http.StatusOK, rr.Code)
		env := decodeEnvelope(t, rr.Body.Bytes())
		data := env.Data.(map[string]any)
		assert.Equal(t, float64(p.ID), data["id"])
	})

	t.Run("403 for another user", func(t *testing.T) {
		req := testutil.WithIdentity(testutil.NewRequest(t, http.MethodGet, fmt.Sprintf("/proposals/%d", p.ID)), bob)
		rr := testutil.DoRequest(r, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("404 for a missing id", func(t *testing.T) {
		req := testutil.WithIdentity(testutil.NewRequest(t, http.MethodGet, "/proposals/99999"), alice)
		rr := testutil.DoRequest(r, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("400 for a non-numeric id", func(t *testing.T) {
		req := testutil.WithIdentity(testutil.NewRequest(t, http.MethodGet, "/proposals/abc"), alice)
		rr := testutil.DoRequest(r, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestListProposals(t *testing.T) {
	r, _ := newTestRouter(t)
	base := time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)
	createProposal(t, r, alice, "Alice One", base)
	createProposal(t, r, bob, "Bob One", base.Add(time.Second))

	listLen := func(t *testing.T, caller identity.Identity, query string) int {
		req := testutil.WithIdentity(testutil.NewRequest(t, http.MethodGet, "/proposals"+query), caller)
		rr := testutil.DoRequest(r, req)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		env := decodeEnvelope(t, rr.Body.Bytes())
		items, _ := env.Data.([]any)
		return len(items)
	}

	t.Run("user sees only own proposals", func(t *testing.T) {
		assert.Equal(t, 1, listLen(t, alice, ""))
	})

	t.Run("admin sees all", func(t *testing.T) {
		assert.Equal(t, 2, listLen(t, admin, ""))
	})

	t.Run("status filter applies", func(t *testing.T) {
		assert.Equal(t, 2, listLen(t, admin, "?status=draft"))
		assert.Equal(t, 0, listLen(t, admin, "?status=submitted"))
	})

	t.Run("invalid status is 400", func(t *testing.T) {
		req := testutil.WithIdentity(testutil.NewRequest(t, http.MethodGet, "/proposals?status=pending"), admin)
		rr := testutil.DoRequest(r, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestUpdateProposal(t *testing.T) {
	r, _ := newTestRouter(t)
	base := time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

	t.Run("200 updates a draft", func(t *testing.T) {
		p := createProposal(t, r, alice, "Before", base)
		req := testutil.NewJSONRequest(t, http.MethodPut, fmt.Sprintf("/proposals/%d", p.ID), map[string]any{"title": "After"})
		req = testutil.WithIdentity(req, alice)
		rr := testutil.DoRequest(r, req)

		require.Equal(t, http.StatusOK, rr.Code)
		env := decodeEnvelope(t, rr.Body.Bytes())
		data := env.Data.(map[string]any)
		assert.Equal(t, "After", data["title"])
	})

	t.Run("400 when the proposal is submitted", func(t *testing.T) {
		p := createProposal(t, r, alice, "Frozen", base.Add(time.Second))
		submit := testutil.WithIdentity(testutil.NewRequest(t, http.MethodPut, fmt.Sprintf("/proposals/%d/submit", p.ID)), alice)
		require.Equal(t, http.StatusOK, testutil.DoRequest(r, submit).Code)

		req := testutil.NewJSONRequest(t, http.MethodPut, fmt.Sprintf("/proposals/%d", p.ID), map[string]any{"title": "Nope"})
		req = testutil.WithIdentity(req, alice)
		rr := testutil.DoRequest(r, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		env := decodeEnvelope(t, rr.Body.Bytes())
		assert.Equal(t, "edit_not_allowed", env.Error)
	})

	t.Run("403 for a non-owner", func(t *testing.T) {
		p := createProposal(t, r, alice, "Foreign", base.Add(2*time.Second))
		req := testutil.NewJSONRequest(t, http.MethodPut, fmt.Sprintf("/proposals/%d", p.ID), map[string]any{"title": "Taken"})
		req = testutil.WithIdentity(req, bob)
		rr := testutil.DoRequest(r, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestSubmitProposal(t *testing.T) {
	r, _ := newTestRouter(t)
	base := time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)
	p := createProposal(t, r, alice, "Ready", base)

	t.Run("200 submits a draft", func(t *testing.T) {
		req := testutil.WithIdentity(testutil.NewRequest(t, http.MethodPut, fmt.Sprintf("/proposals/%d/submit", p.ID)), alice)
		rr := testutil.DoRequest(r, req)

		require.Equal(t, http.StatusOK, rr.Code)
		env := decodeEnvelope(t, rr.Body.Bytes())
		data := env.Data.(map[string]any)
		assert.Equal(t, "submitted", data["status"])
	})

	t.Run("400 on double submit", func(t *testing.T) {
		req := testutil.WithIdentity(testutil.NewRequest(t, http.MethodPut, fmt.Sprintf("/proposals/%d/submit", p.ID)), alice)
		rr := testutil.DoRequest(r, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		env := decodeEnvelope(t, rr.Body.Bytes())
		assert.Equal(t, "invalid_transition", env.Error)
		assert.Equal(t, "only draft proposals can be submitted", env.Message)
	})
}

func TestDeleteProposal(t *testing.T) {
	r, _ := newTestRouter(t)
	base := time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)
	p := createProposal(t, r, alice, "Doomed", base)

	t.Run("403 for a non-owner", func(t *testing.T) {
		req := testutil.WithIdentity(testutil.NewRequest(t, http.MethodDelete, fmt.Sprintf("/proposals/%d", p.ID)), bob)
		rr := testutil.DoRequest(r, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("200 for the owner, then 404", func(t *testing.T) {
		req := testutil.WithIdentity(testutil.NewRequest(t, http.MethodDelete, fmt.Sprintf("/proposals/%d", p.ID)), alice)
		require.Equal(t, http.StatusOK, testutil.DoRequest(r, req).Code)

		req = testutil.WithIdentity(testutil.NewRequest(t, http.MethodDelete, fmt.Sprintf("/proposals/%d", p.ID)), alice)
		assert.Equal(t, http.StatusNotFound, testutil.DoRequest(r, req).Code)
	})
}

func TestReviewProposal(t *testing.T) {
	r, _ := newTestRouter(t)
	base := time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)
	p := createProposal(t, r, alice, "Under consideration", base)

	t.Run("200 for an admin", func(t *testing.T) {
		body := map[string]any{"status": "approved", "reviewer_comments": "well scoped"}
		req := testutil.NewJSONRequest(t, http.MethodPut, fmt.Sprintf("/admin/proposals/%d/review", p.ID), body)
		req = testutil.WithIdentity(req, admin)
		req = req.WithContext(requestcontext.WithTime(req.Context(), base.Add(time.Hour)))
		rr := testutil.DoRequest(r, req)

		require.Equal(t, http.StatusOK, rr.Code)
		env := decodeEnvelope(t, rr.Body.Bytes())
		data := env.Data.(map[string]any)
		assert.Equal(t, "approved", data["status"])
		assert.Equal(t, "well scoped", data["reviewer_comments"])
		assert.Equal(t, float64(admin.SubjectID), data["reviewed_by"])
	})

	t.Run("403 for a non-admin, even the owner", func(t *testing.T) {
		body := map[string]any{"status": "approved"}
		req := testutil.NewJSONRequest(t, http.MethodPut, fmt.Sprintf("/admin/proposals/%d/review", p.ID), body)
		req = testutil.WithIdentity(req, alice)
		rr := testutil.DoRequest(r, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("400 for an outcome outside the review set", func(t *testing.T) {
		body := map[string]any{"status": "draft"}
		req := testutil.NewJSONRequest(t, http.MethodPut, fmt.Sprintf("/admin/proposals/%d/review", p.ID), body)
		req = testutil.WithIdentity(req, admin)
		rr := testutil.DoRequest(r, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestProposalStats(t *testing.T) {
	r, _ := newTestRouter(t)
	base := time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)
	createProposal(t, r, alice, "One", base)
	createProposal(t, r, bob, "Two", base.Add(time.Second))

	req := testutil.WithIdentity(testutil.NewRequest(t, http.MethodGet, "/admin/proposals/stats"), admin)
	rr := testutil.DoRequest(r, req)

	require.Equal(t, http.StatusOK, rr.Code)
	env := decodeEnvelope(t, rr.Body.Bytes())
	data := env.Data.(map[string]any)
	assert.Equal(t, float64(2), data["total"])
	assert.Equal(t, float64(2), data["draft"])
	assert.Equal(t, float64(0), data["approved"])
}
