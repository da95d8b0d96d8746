package service

import (
	"context"

	"github.com/google/uuid"

	"credverify/internal/notify"
	"credverify/internal/verification/models"
	id "credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/platform/audit"
	"credverify/pkg/requestcontext"
)

// Status returns the current overall status without any external call.
// A submission with no verification activity yields CodeNotFound.
func (s *Service) Status(ctx context.Context, submissionID id.SubmissionID) (*models.OverallVerification, error) {
	ctx, span := tracer.Start(ctx, "Verification.Service.Status")
	defer span.End()

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, submissionID)
		switch {
		case err != nil:
			s.logCacheError(ctx, "get", submissionID, err)
		case ok:
			s.metrics.IncrementCacheHit()
			return cached, nil
		default:
			s.metrics.IncrementCacheMiss()
		}
	}

	latest, err := s.snapshot(ctx, submissionID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if len(latest) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "verification not started")
	}
	sub, err := s.loadSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	overall := models.Aggregate(submissionID, sub.Credentials(), latest, lastChange(latest, requestcontext.Now(ctx)))
	s.cacheStatus(ctx, overall)
	return overall, nil
}

// RecomputeStatus re-aggregates the latest results after an out-of-band
// change such as a review resolution, and always announces the outcome.
func (s *Service) RecomputeStatus(ctx context.Context, submissionID id.SubmissionID, trigger string) (*models.OverallVerification, error) {
	ctx, span := tracer.Start(ctx, "Verification.Service.RecomputeStatus")
	defer span.End()

	sub, err := s.loadSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	latest, err := s.snapshot(ctx, submissionID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var previous models.OverallStatus
	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, submissionID); err == nil && ok {
			previous = cached.Status
		}
	}

	overall := models.Aggregate(submissionID, sub.Credentials(), latest, requestcontext.Now(ctx))
	s.settle(ctx, overall, trigger)
	s.publish(ctx, overall, previous, trigger)
	return overall, nil
}

// ListResults returns the latest result per credential, or every stored
// row newest first when history is set.
func (s *Service) ListResults(ctx context.Context, submissionID id.SubmissionID, history bool) ([]*models.VerificationResult, error) {
	if _, err := s.loadSubmission(ctx, submissionID); err != nil {
		return nil, err
	}
	var (
		rows []*models.VerificationResult
		err  error
	)
	if history {
		rows, err = s.results.ListHistory(ctx, submissionID)
	} else {
		rows, err = s.results.ListLatestBySubmission(ctx, submissionID)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list verification results")
	}
	return rows, nil
}

// settle records a freshly computed status: cache overwrite and metrics.
func (s *Service) settle(ctx context.Context, overall *models.OverallVerification, trigger string) {
	s.cacheStatus(ctx, overall)
	s.metrics.IncrementOverall(string(overall.Status), trigger)
}

func (s *Service) cacheStatus(ctx context.Context, overall *models.OverallVerification) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, overall); err != nil {
		s.logCacheError(ctx, "set", overall.SubmissionID, err)
	}
}

func (s *Service) logCacheError(ctx context.Context, op string, submissionID id.SubmissionID, err error) {
	if s.logger == nil {
		return
	}
	s.logger.WarnContext(ctx, "status cache unavailable",
		"op", op,
		"submission_id", submissionID.String(),
		"error", err,
	)
}

// publish hands a status change to the notifier. Delivery is never awaited.
func (s *Service) publish(ctx context.Context, overall *models.OverallVerification, previous models.OverallStatus, trigger string) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, notify.Event{
		ID:             uuid.NewString(),
		Type:           notify.EventStatusChanged,
		SubmissionID:   overall.SubmissionID,
		OverallStatus:  string(overall.Status),
		PreviousStatus: string(previous),
		Tier:           string(overall.Tier),
		Trigger:        trigger,
		OccurredAt:     overall.EvaluatedAt,
	})
}

func auditEvent(ctx context.Context, action, subject, decision, reason string) audit.Event {
	return audit.Event{
		Category:  audit.AuditEvent(action).Category(),
		Timestamp: requestcontext.Now(ctx),
		Subject:   subject,
		Action:    action,
		Decision:  decision,
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
		ActorID:   models.VerifiedBySystem,
	}
}
