package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/gigboard/backend/internal/models"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type stubNotifications struct {
	notification *models.Notification
}

func (s *stubNotifications) GetByID(_ context.Context, _ uuid.UUID) (*models.Notification, error) {
	return s.notification, nil
}

type stubSubscribers struct {
	subs []*models.Subscriber
}

func (s *stubSubscribers) ListActive(context.Context) ([]*models.Subscriber, error) {
	return s.subs, nil
}

func deliverJob(n *models.Notification) *river.Job[DeliverNotificationArgs] {
	return &river.Job[DeliverNotificationArgs]{Args: DeliverNotificationArgs{NotificationID: n.ID}}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestDeliverWorker_PostsToSubscribers(t *testing.T) {
	gigID := int64(0)
	n := &models.Notification{
		ID:       uuid.New(),
		LedgerID: uuid.New(),
		Kind:     models.NotifyGigPosted,
		GigID:    &gigID,
	}

	var received []models.Notification
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type: got %q", ct)
		}
		var got models.Notification
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode delivered payload: %v", err)
		}
		received = append(received, got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	w := NewDeliverWorker(
		&stubNotifications{notification: n},
		&stubSubscribers{subs: []*models.Subscriber{
			{ID: uuid.New(), WebhookURL: srv.URL, IsActive: true},
		}},
	)

	if err := w.Work(context.Background(), deliverJob(n)); err != nil {
		t.Fatalf("Work: %v", err)
	}
	if len(received) != 1 {
		t.Fatalf("deliveries: got %d, want 1", len(received))
	}
	if received[0].Kind != models.NotifyGigPosted {
		t.Errorf("kind: got %q, want gig_posted", received[0].Kind)
	}
	if received[0].GigID == nil || *received[0].GigID != gigID {
		t.Error("delivered payload should carry the gig id")
	}
}

func TestDeliverWorker_SubscriberFailureFailsJob(t *testing.T) {
	n := &models.Notification{ID: uuid.New(), LedgerID: uuid.New(), Kind: models.NotifyAccountFunded}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	w := NewDeliverWorker(
		&stubNotifications{notification: n},
		&stubSubscribers{subs: []*models.Subscriber{
			{ID: uuid.New(), WebhookURL: srv.URL, IsActive: true},
		}},
	)

	if err := w.Work(context.Background(), deliverJob(n)); err == nil {
		t.Fatal("expected error when subscriber returns 500, got nil")
	}
}

func TestDeliverWorker_NoSubscribers(t *testing.T) {
	n := &models.Notification{ID: uuid.New(), LedgerID: uuid.New(), Kind: models.NotifyGigApplied}

	w := NewDeliverWorker(&stubNotifications{notification: n}, &stubSubscribers{})

	if err := w.Work(context.Background(), deliverJob(n)); err != nil {
		t.Fatalf("Work with zero subscribers should succeed: %v", err)
	}
}
