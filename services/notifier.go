package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// Notification is a fire-and-forget event for the notification collaborator.
// EventID is a UUID the receiver can use as an idempotent de-duplication key
// under at-least-once delivery.
type Notification struct {
	EventID    string    `json:"event_id"`
	Action     string    `json:"action"`
	DocumentID int64     `json:"document_id"`
	TraineeID  int64     `json:"trainee_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewNotification builds a notification with a fresh de-duplication key
func NewNotification(action string, documentID, traineeID int64) Notification {
	return Notification{
		EventID:    uuid.NewString(),
		Action:     action,
		DocumentID: documentID,
		TraineeID:  traineeID,
		OccurredAt: timeNow(),
	}
}

// Notifier delivers notifications to the external collaborator. Delivery
// failure must never block or roll back the transition that produced the
// event.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// logNotifier writes notifications to the application log. It stands in for
// a real delivery channel in development and tests.
type logNotifier struct{}

// NewLogNotifier creates a log-backed notifier
func NewLogNotifier() Notifier {
	return &logNotifier{}
}

// Notify logs the notification
func (n *logNotifier) Notify(_ context.Context, note Notification) error {
	log.Printf("notify %s: document=%d trainee=%d event=%s", note.Action, note.DocumentID, note.TraineeID, note.EventID)
	return nil
}

// dispatch sends a notification without blocking the caller. Failures are
// logged and dropped; the committed transition stands either way.
func dispatch(notifier Notifier, note Notification) {
	if notifier == nil {
		return
	}
	go func() {
		if err := notifier.Notify(context.Background(), note); err != nil {
			log.Printf("failed to deliver notification %s (%s): %v", note.EventID, note.Action, err)
		}
	}()
}
