// Package service implements the manual review queue: intake from the
// orchestrator, reviewer actions, and SLA escalation.
//
// A resolution writes the linked verification result before the item,
// inside one unit of work, so a crash between the two leaves the item open
// and the credential still awaiting review rather than a closed item next
// to a stale result. The overall status is recomputed after commit.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"credverify/internal/notify"
	"credverify/internal/review/metrics"
	"credverify/internal/review/models"
	verifymodels "credverify/internal/verification/models"
	"credverify/internal/verification/policy"
	id "credverify/pkg/domain"
	"credverify/pkg/platform/audit"
	"credverify/pkg/requestcontext"
)

// Store persists review items.
type Store interface {
	Create(ctx context.Context, item *models.Item) error
	Update(ctx context.Context, item *models.Item) error
	FindByID(ctx context.Context, reviewID id.ReviewID) (*models.Item, error)
	// FindOpenByResult returns sentinel.ErrNotFound when the result has no
	// open item.
	FindOpenByResult(ctx context.Context, resultID id.ResultID) (*models.Item, error)
	// FindOpenByCredential returns sentinel.ErrNotFound when the credential
	// has no open item.
	FindOpenByCredential(ctx context.Context, submissionID id.SubmissionID, credentialRef string) (*models.Item, error)
	// ListOpen orders by SLA deadline, nearest first.
	ListOpen(ctx context.Context, filter models.ListFilter) ([]*models.Item, error)
	ListOverdue(ctx context.Context, now time.Time) ([]*models.Item, error)
}

// ResultStore is the slice of the verification result store a resolution
// needs.
type ResultStore interface {
	FindByID(ctx context.Context, resultID id.ResultID) (*verifymodels.VerificationResult, error)
	Update(ctx context.Context, result *verifymodels.VerificationResult) error
}

// UnitOfWork runs fn so that every store write inside it commits or rolls
// back together.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Recomputer refreshes the overall status of a submission.
type Recomputer interface {
	RecomputeStatus(ctx context.Context, submissionID id.SubmissionID, trigger string) (*verifymodels.OverallVerification, error)
}

// RecomputeFunc adapts a function to Recomputer. It lets the composition
// root break the construction cycle with the orchestrator.
type RecomputeFunc func(ctx context.Context, submissionID id.SubmissionID, trigger string) (*verifymodels.OverallVerification, error)

func (f RecomputeFunc) RecomputeStatus(ctx context.Context, submissionID id.SubmissionID, trigger string) (*verifymodels.OverallVerification, error) {
	return f(ctx, submissionID, trigger)
}

type EventPublisher interface {
	Publish(ctx context.Context, event notify.Event)
}

type AuditPort interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store      Store
	results    ResultStore
	uow        UnitOfWork
	recomputer Recomputer

	events  EventPublisher
	auditor AuditPort
	metrics *metrics.Metrics
	logger  *slog.Logger

	slaWindow time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) {
		s.events = p
	}
}

func WithAuditor(a AuditPort) Option {
	return func(s *Service) {
		s.auditor = a
	}
}

// WithSLAWindow sets how long after creation an item is due.
func WithSLAWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.slaWindow = d
		}
	}
}

func New(store Store, results ResultStore, uow UnitOfWork, recomputer Recomputer, opts ...Option) (*Service, error) {
	switch {
	case store == nil:
		return nil, errors.New("review store is required")
	case results == nil:
		return nil, errors.New("result store is required")
	case uow == nil:
		return nil, errors.New("unit of work is required")
	case recomputer == nil:
		return nil, errors.New("status recomputer is required")
	}
	s := &Service{
		store:      store,
		results:    results,
		uow:        uow,
		recomputer: recomputer,
		logger:     slog.New(slog.DiscardHandler),
		slaWindow:  policy.SLAWindow,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) emitAudit(ctx context.Context, action audit.AuditEvent, item *models.Item, actor, decision, reason string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Category:  action.Category(),
		Timestamp: requestcontext.Now(ctx),
		Subject:   item.SubmissionID.String(),
		Action:    string(action),
		Resource:  item.ID.String(),
		Decision:  decision,
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
		ActorID:   actor,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", string(action),
			"review_id", item.ID.String(),
			"error", err,
		)
	}
}

func (s *Service) publish(ctx context.Context, eventType notify.EventType, item *models.Item, trigger string) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, notify.Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		SubmissionID: item.SubmissionID,
		Trigger:      trigger,
		OccurredAt:   requestcontext.Now(ctx),
	})
}
