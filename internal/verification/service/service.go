// Package service implements the tiered verification orchestrator.
//
// A verify run loads the submission and a snapshot of the latest result per
// credential reference, decides from that snapshot which credentials need a
// check, fans the checks out concurrently, persists what completed, hands
// unresolved credentials to the review queue, and recomputes the overall
// status. External failures degrade single credentials to manual review;
// only storage failures reach the caller.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	"credverify/internal/verification/metrics"
	"credverify/internal/verification/models"
	"credverify/internal/verification/policy"
	"credverify/internal/verification/ports"
	id "credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/platform/sentinel"
	"credverify/pkg/requestcontext"
)

var tracer = otel.Tracer("verification")

const defaultParallelism = 8

// Service orchestrates credential verification for submissions.
type Service struct {
	submissions ports.SubmissionSource
	results     ports.ResultStore
	registry    ports.RegistryLookup
	profiles    ports.ProfileLookup
	reviews     ports.ReviewQueue

	cache   ports.StatusCache
	events  ports.EventPublisher
	auditor ports.AuditPort
	metrics *metrics.Metrics
	logger  *slog.Logger

	lookupTimeout time.Duration
	parallelism   int

	runs *submissionLocks
}

// Option configures the Service.
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

func WithStatusCache(cache ports.StatusCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

func WithEventPublisher(p ports.EventPublisher) Option {
	return func(s *Service) {
		s.events = p
	}
}

func WithAuditor(a ports.AuditPort) Option {
	return func(s *Service) {
		s.auditor = a
	}
}

// WithLookupTimeout bounds every external call, on top of the clients' own
// timeouts.
func WithLookupTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.lookupTimeout = d
		}
	}
}

// WithParallelism caps concurrent external calls per verify run.
func WithParallelism(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

func New(
	submissions ports.SubmissionSource,
	results ports.ResultStore,
	registry ports.RegistryLookup,
	profiles ports.ProfileLookup,
	reviews ports.ReviewQueue,
	opts ...Option,
) (*Service, error) {
	switch {
	case submissions == nil:
		return nil, errors.New("submission source is required")
	case results == nil:
		return nil, errors.New("result store is required")
	case registry == nil:
		return nil, errors.New("registry lookup is required")
	case profiles == nil:
		return nil, errors.New("profile lookup is required")
	case reviews == nil:
		return nil, errors.New("review queue is required")
	}
	s := &Service{
		submissions:   submissions,
		results:       results,
		registry:      registry,
		profiles:      profiles,
		reviews:       reviews,
		lookupTimeout: policy.LookupTimeout,
		parallelism:   defaultParallelism,
		runs:          newSubmissionLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// VerifyOptions controls a verify run.
type VerifyOptions struct {
	// ForceRecheck re-dispatches credentials that already have a result.
	ForceRecheck bool
	// SpecificTypes limits the run to these credential types; empty means all.
	SpecificTypes []models.CredentialType
}

func (o VerifyOptions) validate() error {
	for _, t := range o.SpecificTypes {
		if _, err := models.ParseCredentialType(string(t)); err != nil {
			return err
		}
	}
	return nil
}

func (o VerifyOptions) includes(t models.CredentialType) bool {
	if len(o.SpecificTypes) == 0 {
		return true
	}
	for _, want := range o.SpecificTypes {
		if want == t {
			return true
		}
	}
	return false
}

// loadSubmission reads and validates the applicant record.
func (s *Service) loadSubmission(ctx context.Context, submissionID id.SubmissionID) (*models.SubmittedCredentialRecord, error) {
	sub, err := s.submissions.Find(ctx, submissionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "submission not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load submission")
	}
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	return sub, nil
}

// snapshot loads the latest result per credential reference once per run.
func (s *Service) snapshot(ctx context.Context, submissionID id.SubmissionID) (map[models.CredentialRef]*models.VerificationResult, error) {
	rows, err := s.results.ListLatestBySubmission(ctx, submissionID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification results")
	}
	latest := make(map[models.CredentialRef]*models.VerificationResult, len(rows))
	for _, r := range rows {
		latest[r.CredentialRef] = r
	}
	return latest, nil
}

func (s *Service) emitAudit(ctx context.Context, action, subject, decision, reason string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, auditEvent(ctx, action, subject, decision, reason))
	if err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", action,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}
