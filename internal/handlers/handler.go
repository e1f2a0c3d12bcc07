package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gigboard/backend/internal/ledger"
	"github.com/gigboard/backend/internal/models"
)

// Engine is the ledger engine contract the HTTP layer needs.
type Engine interface {
	CreateLedger(ctx context.Context, caller uuid.UUID) (*models.Ledger, error)
	RegisterAccount(ctx context.Context, ledgerID uuid.UUID, name string) (int64, error)
	PostGig(ctx context.Context, ledgerID uuid.UUID, posterID int64, description string, payment, deadline int64) (int64, error)
	ApplyForGig(ctx context.Context, ledgerID uuid.UUID, userID, gigID int64) error
	AssignGig(ctx context.Context, ledgerID uuid.UUID, gigID, userID int64, caller uuid.UUID) error
	CompleteGig(ctx context.Context, ledgerID uuid.UUID, gigID, applicantID int64, caller uuid.UUID) error
	FundAccount(ctx context.Context, ledgerID uuid.UUID, userID, amount int64) error
}

// LedgerResolver finds the deployment's active ledger instance.
type LedgerResolver interface {
	Active(ctx context.Context) (*models.Ledger, error)
}

// AccountReader serves account reads outside the engine.
type AccountReader interface {
	GetByID(ctx context.Context, ledgerID uuid.UUID, id int64) (*models.Account, error)
	List(ctx context.Context, ledgerID uuid.UUID) ([]*models.Account, error)
}

// GigReader serves gig reads outside the engine.
type GigReader interface {
	GetByID(ctx context.Context, ledgerID uuid.UUID, id int64) (*models.Gig, error)
	List(ctx context.Context, ledgerID uuid.UUID) ([]*models.Gig, error)
}

// NotificationReader lists emitted notifications.
type NotificationReader interface {
	List(ctx context.Context, ledgerID uuid.UUID) ([]*models.Notification, error)
}

// EntryReader lists audit entries per account.
type EntryReader interface {
	ListByAccount(ctx context.Context, ledgerID uuid.UUID, accountID int64) ([]*models.LedgerEntry, error)
}

// SubscriberWriter registers notification webhooks.
type SubscriberWriter interface {
	Create(ctx context.Context, s *models.Subscriber) error
}

// Handler serves the ledger API.
type Handler struct {
	Engine        Engine
	Ledgers       LedgerResolver
	Accounts      AccountReader
	Gigs          GigReader
	Notifications NotificationReader
	Entries       EntryReader
	Subscribers   SubscriberWriter
	Logger        *slog.Logger
}

// activeLedger resolves the shared ledger instance or writes a 404.
func (h *Handler) activeLedger(w http.ResponseWriter, r *http.Request) (*models.Ledger, bool) {
	led, err := h.Ledgers.Active(r.Context())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, `{"error":"no ledger exists yet"}`, http.StatusNotFound)
			return nil, false
		}
		h.Logger.Error("resolve active ledger", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return nil, false
	}
	return led, true
}

// writeEngineError maps engine errors onto HTTP statuses.
func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, ledger.ErrUnauthorized):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	default:
		h.Logger.Error("engine operation failed", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
	}
}

// extractPathID parses the integer id segment following prefix.
// Supports paths like /api/v1/gigs/{id} and /api/v1/gigs/{id}/apply.
func extractPathID(r *http.Request, prefix string) (int64, bool) {
	path := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.SplitN(path, "/", 2)
	if len(parts) == 0 || parts[0] == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
