package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/gigboard/backend/internal/models"
)

const deliverTimeout = 10 * time.Second

// DeliverNotificationArgs references a committed notification row. The job
// is enqueued in the same transaction that wrote the row, so delivery only
// ever happens for mutations that actually committed.
type DeliverNotificationArgs struct {
	NotificationID uuid.UUID `json:"notification_id"`
}

func (DeliverNotificationArgs) Kind() string { return "deliver_notification" }

// NotificationSource loads the notification to deliver.
type NotificationSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
}

// SubscriberSource lists the webhook targets.
type SubscriberSource interface {
	ListActive(ctx context.Context) ([]*models.Subscriber, error)
}

// DeliverWorker broadcasts a notification to every active subscriber
// webhook. A failed POST fails the job so River retries it; the core makes
// no delivery guarantee beyond that.
type DeliverWorker struct {
	river.WorkerDefaults[DeliverNotificationArgs]
	notifications NotificationSource
	subscribers   SubscriberSource
	httpClient    *http.Client
}

func NewDeliverWorker(notifications NotificationSource, subscribers SubscriberSource) *DeliverWorker {
	return &DeliverWorker{
		notifications: notifications,
		subscribers:   subscribers,
		httpClient:    &http.Client{Timeout: deliverTimeout},
	}
}

func (w *DeliverWorker) Work(ctx context.Context, job *river.Job[DeliverNotificationArgs]) error {
	n, err := w.notifications.GetByID(ctx, job.Args.NotificationID)
	if err != nil {
		return fmt.Errorf("load notification %s: %w", job.Args.NotificationID, err)
	}
	subs, err := w.subscribers.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list subscribers: %w", err)
	}
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}
	for _, sub := range subs {
		if err := w.post(ctx, sub.WebhookURL, body); err != nil {
			return fmt.Errorf("deliver %s to %s: %w", n.Kind, sub.WebhookURL, err)
		}
	}
	return nil
}

func (w *DeliverWorker) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("subscriber returned status %d", resp.StatusCode)
	}
	return nil
}
