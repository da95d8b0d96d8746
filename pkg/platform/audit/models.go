package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose so stores
// can apply different retention.
type EventCategory string

const (
	// CategoryCompliance covers trust decisions: automated verdicts and
	// reviewer resolutions. These need long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers queue handling such as assignment and SLA
	// escalation.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// Subject is the submission the event is about.
	Subject string
	Action  string
	// Resource is the result or review item acted on, if any.
	Resource  string
	Decision  string
	Reason    string
	RequestID string
	// ActorID is "system" or the reviewer who performed the action.
	ActorID string
}

type AuditEvent string

const (
	EventVerificationRun AuditEvent = "verification_run"
	EventReviewEnqueued  AuditEvent = "review_enqueued"
	EventReviewAssigned  AuditEvent = "review_assigned"
	EventReviewApproved  AuditEvent = "review_approved"
	EventReviewRejected  AuditEvent = "review_rejected"
	EventReviewEscalated AuditEvent = "review_escalated"
	EventReviewRelinked  AuditEvent = "review_relinked"
	EventReviewClosed    AuditEvent = "review_closed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventVerificationRun: CategoryCompliance,
	EventReviewApproved:  CategoryCompliance,
	EventReviewRejected:  CategoryCompliance,
	EventReviewClosed:    CategoryCompliance,

	EventReviewEnqueued:  CategoryOperations,
	EventReviewAssigned:  CategoryOperations,
	EventReviewEscalated: CategoryOperations,
	EventReviewRelinked:  CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Emitter is what domain services depend on.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
