// Package notify carries fire-and-forget status notifications to external
// notifiers. Publishing never affects the outcome of the operation that
// produced the event.
package notify

import (
	"context"
	"time"

	id "credverify/pkg/domain"
)

// EventType names what happened.
type EventType string

const (
	EventStatusChanged  EventType = "status_changed"
	EventReviewEnqueued EventType = "review_enqueued"
	EventReviewResolved EventType = "review_resolved"
)

// Event is the message handed to notifiers. It carries only
// the submitter-visible overall status, never discrepancy detail.
type Event struct {
	ID             string          `json:"id"`
	Type           EventType       `json:"type"`
	SubmissionID   id.SubmissionID `json:"submission_id"`
	OverallStatus  string          `json:"overall_status,omitempty"`
	PreviousStatus string          `json:"previous_status,omitempty"`
	Tier           string          `json:"tier,omitempty"`
	// Trigger is what caused the event: "verify", "review_approved", ...
	Trigger    string    `json:"trigger,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher hands events to a transport. Implementations must not block
// the caller on delivery.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Notifier is the external collaborator that acts on an event (email,
// webhook). It is driven by the channel worker.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
