package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gigboard/backend/internal/ledger"
	"github.com/gigboard/backend/internal/middleware"
	"github.com/gigboard/backend/internal/models"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

// --- Engine mock: records calls, returns configurable errors ---

type mockEngine struct {
	err error

	postGigID    int64
	postCalled   bool
	assignCalled bool
	assignCaller uuid.UUID
	completeUser int64
	fundAmount   int64
}

func (m *mockEngine) CreateLedger(_ context.Context, caller uuid.UUID) (*models.Ledger, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Ledger{ID: uuid.New(), Owner: caller}, nil
}

func (m *mockEngine) RegisterAccount(context.Context, uuid.UUID, string) (int64, error) {
	return 0, m.err
}

func (m *mockEngine) PostGig(_ context.Context, _ uuid.UUID, _ int64, _ string, _, _ int64) (int64, error) {
	m.postCalled = true
	return m.postGigID, m.err
}

func (m *mockEngine) ApplyForGig(context.Context, uuid.UUID, int64, int64) error {
	return m.err
}

func (m *mockEngine) AssignGig(_ context.Context, _ uuid.UUID, _, _ int64, caller uuid.UUID) error {
	m.assignCalled = true
	m.assignCaller = caller
	return m.err
}

func (m *mockEngine) CompleteGig(_ context.Context, _ uuid.UUID, _, applicantID int64, _ uuid.UUID) error {
	m.completeUser = applicantID
	return m.err
}

func (m *mockEngine) FundAccount(_ context.Context, _ uuid.UUID, _, amount int64) error {
	m.fundAmount = amount
	return m.err
}

// --- LedgerResolver mock ---

type mockResolver struct {
	ledger *models.Ledger
	err    error
}

func (m *mockResolver) Active(context.Context) (*models.Ledger, error) {
	return m.ledger, m.err
}

// --- GigReader mock ---

type mockGigReader struct {
	gigs map[int64]*models.Gig
}

func (m *mockGigReader) GetByID(_ context.Context, _ uuid.UUID, id int64) (*models.Gig, error) {
	g, ok := m.gigs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return g, nil
}

func (m *mockGigReader) List(context.Context, uuid.UUID) ([]*models.Gig, error) {
	var out []*models.Gig
	for _, g := range m.gigs {
		out = append(out, g)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newTestHandler(t *testing.T) (*Handler, *mockEngine, *mockGigReader) {
	t.Helper()
	eng := &mockEngine{}
	gigs := &mockGigReader{gigs: make(map[int64]*models.Gig)}
	h := &Handler{
		Engine:  eng,
		Ledgers: &mockResolver{ledger: &models.Ledger{ID: uuid.New(), Owner: uuid.New()}},
		Gigs:    gigs,
		Logger:  slog.Default(),
	}
	return h, eng, gigs
}

// injectPrincipal simulates what BearerAuth would do upstream.
func injectPrincipal(r *http.Request, id uuid.UUID) *http.Request {
	return r.WithContext(middleware.WithPrincipal(r.Context(), id))
}

// =====================================================================
// POST /api/v1/gigs
// =====================================================================

func TestPostGig_Valid(t *testing.T) {
	h, eng, gigs := newTestHandler(t)
	eng.postGigID = 3
	gigs.gigs[3] = &models.Gig{ID: 3, Status: models.GigStatusOpen}

	body := `{"poster_id":0,"description":"fix bug","payment":40}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/gigs", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.PostGig(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp postGigResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.GigID != 3 {
		t.Errorf("gig_id: got %d, want 3", resp.GigID)
	}
	if resp.Status != models.GigStatusOpen {
		t.Errorf("status: got %q, want open", resp.Status)
	}
	if !eng.postCalled {
		t.Error("expected Engine.PostGig to be called")
	}
}

func TestPostGig_MissingDescription(t *testing.T) {
	h, eng, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/gigs", strings.NewReader(`{"payment":40}`))
	rec := httptest.NewRecorder()

	h.PostGig(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if eng.postCalled {
		t.Error("engine must not be reached on invalid input")
	}
}

func TestPostGig_InsufficientFunds(t *testing.T) {
	h, eng, _ := newTestHandler(t)
	eng.err = fmt.Errorf("payment exceeds balance: %w", ledger.ErrUnauthorized)

	body := `{"poster_id":0,"description":"fix bug","payment":4000}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/gigs", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.PostGig(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPostGig_NoLedgerYet(t *testing.T) {
	h, _, _ := newTestHandler(t)
	h.Ledgers = &mockResolver{err: pgx.ErrNoRows}

	body := `{"poster_id":0,"description":"fix bug","payment":40}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/gigs", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.PostGig(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

// =====================================================================
// POST /api/v1/gigs/{id}/assign
// =====================================================================

func TestAssignGig_PassesCallerThrough(t *testing.T) {
	h, eng, _ := newTestHandler(t)
	principal := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/gigs/0/assign", strings.NewReader(`{"user_id":1}`))
	req = injectPrincipal(req, principal)
	rec := httptest.NewRecorder()

	h.AssignGig(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !eng.assignCalled {
		t.Fatal("expected Engine.AssignGig to be called")
	}
	if eng.assignCaller != principal {
		t.Errorf("caller: got %s, want %s", eng.assignCaller, principal)
	}
}

func TestAssignGig_NoPrincipal(t *testing.T) {
	h, eng, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/gigs/0/assign", strings.NewReader(`{"user_id":1}`))
	rec := httptest.NewRecorder()

	h.AssignGig(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}
	if eng.assignCalled {
		t.Error("engine must not be reached without a principal")
	}
}

func TestAssignGig_NonOwner(t *testing.T) {
	h, eng, _ := newTestHandler(t)
	eng.err = fmt.Errorf("caller does not own this ledger: %w", ledger.ErrUnauthorized)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/gigs/0/assign", strings.NewReader(`{"user_id":1}`))
	req = injectPrincipal(req, uuid.New())
	rec := httptest.NewRecorder()

	h.AssignGig(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
}

// =====================================================================
// POST /api/v1/gigs/{id}/complete
// =====================================================================

func TestCompleteGig_UnknownGig(t *testing.T) {
	h, eng, _ := newTestHandler(t)
	eng.err = fmt.Errorf("gig 9: %w", ledger.ErrNotFound)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/gigs/9/complete", strings.NewReader(`{"applicant_id":1}`))
	req = injectPrincipal(req, uuid.New())
	rec := httptest.NewRecorder()

	h.CompleteGig(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCompleteGig_BadGigID(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/gigs/abc/complete", strings.NewReader(`{"applicant_id":1}`))
	req = injectPrincipal(req, uuid.New())
	rec := httptest.NewRecorder()

	h.CompleteGig(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

// =====================================================================
// GET /api/v1/gigs/{id}
// =====================================================================

func TestGetGig_NotFound(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/gigs/42", nil)
	rec := httptest.NewRecorder()

	h.GetGig(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGetGig_Found(t *testing.T) {
	h, _, gigs := newTestHandler(t)
	gigs.gigs[1] = &models.Gig{ID: 1, Description: "fix bug", Payment: 40, Status: models.GigStatusOpen}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/gigs/1", nil)
	rec := httptest.NewRecorder()

	h.GetGig(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var g models.Gig
	if err := json.Unmarshal(rec.Body.Bytes(), &g); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if g.ID != 1 || g.Payment != 40 {
		t.Errorf("unexpected gig in response: %+v", g)
	}
}
