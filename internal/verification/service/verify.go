package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"credverify/internal/verification/models"
	"credverify/internal/verification/ports"
	id "credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/platform/audit"
	"credverify/pkg/requestcontext"
)

// checkOutcome is what one credential check produced.
type checkOutcome struct {
	cred   models.Credential
	result *models.VerificationResult
	review *ports.EnqueueRequest
	// interrupted is set when the caller's context ended during the lookup;
	// such outcomes are not persisted.
	interrupted bool
}

// Verify runs the tiered pipeline for a submission and returns the
// recomputed overall status.
//
// Credentials whose latest result is verified, failed, rejected, or awaiting
// an open review are not re-dispatched unless ForceRecheck is set, which
// makes repeated calls read-only. If ctx is cancelled mid-run, completed
// checks are still persisted and a CodeTimeout error is returned.
func (s *Service) Verify(ctx context.Context, submissionID id.SubmissionID, opts VerifyOptions) (*models.OverallVerification, error) {
	ctx, span := tracer.Start(ctx, "Verification.Service.Verify")
	defer span.End()
	span.SetAttributes(
		attribute.String("submission.id", submissionID.String()),
		attribute.Bool("verify.force_recheck", opts.ForceRecheck),
	)
	start := time.Now()
	defer func() { s.metrics.ObserveVerifyLatency(time.Since(start)) }()

	if err := opts.validate(); err != nil {
		return nil, err
	}
	release, err := s.runs.acquire(ctx, submissionID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "gave up waiting for a running verification of this submission")
	}
	defer release()

	sub, err := s.loadSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	latest, err := s.snapshot(ctx, submissionID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	creds := sub.Credentials()
	now := requestcontext.Now(ctx)
	before := models.Aggregate(submissionID, creds, latest, now)

	dispatch, err := s.plan(ctx, creds, latest, opts)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("verify.dispatched", len(dispatch)))

	outcomes := s.runChecks(ctx, sub, dispatch)

	// Persist with a context that survives caller cancellation so partial
	// progress is kept.
	persistCtx := context.WithoutCancel(ctx)
	persisted := 0
	for _, out := range outcomes {
		if out.interrupted || out.result == nil {
			continue
		}
		if err := s.persist(persistCtx, latest[out.cred.Ref], out); err != nil {
			span.RecordError(err)
			return nil, err
		}
		latest[out.cred.Ref] = out.result
		persisted++
	}

	evaluatedAt := now
	if persisted == 0 {
		evaluatedAt = lastChange(latest, now)
	}
	overall := models.Aggregate(submissionID, creds, latest, evaluatedAt)
	s.settle(persistCtx, overall, "verify")
	if overall.Status != before.Status || overall.Tier != before.Tier {
		s.publish(persistCtx, overall, before.Status, "verify")
	}
	s.emitAudit(persistCtx, string(audit.EventVerificationRun), submissionID.String(), string(overall.Status),
		fmt.Sprintf("dispatched=%d persisted=%d force=%t", len(dispatch), persisted, opts.ForceRecheck))

	if s.logger != nil {
		s.logger.InfoContext(ctx, "verification run completed",
			"request_id", requestcontext.RequestID(ctx),
			"submission_id", submissionID.String(),
			"overall_status", overall.Status,
			"dispatched", len(dispatch),
			"persisted", persisted,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return overall, dErrors.Wrap(ctxErr, dErrors.CodeTimeout, "verification interrupted; completed checks were saved")
	}
	return overall, nil
}

// lastChange is when the newest latest result was written. A run that
// changed nothing reports the evaluation time of the run that did.
func lastChange(latest map[models.CredentialRef]*models.VerificationResult, fallback time.Time) time.Time {
	var at time.Time
	for _, r := range latest {
		if r.UpdatedAt.After(at) {
			at = r.UpdatedAt
		}
	}
	if at.IsZero() {
		return fallback
	}
	return at
}

// plan decides from the snapshot which credentials need a check.
func (s *Service) plan(ctx context.Context, creds []models.Credential, latest map[models.CredentialRef]*models.VerificationResult, opts VerifyOptions) ([]models.Credential, error) {
	var dispatch []models.Credential
	for _, c := range creds {
		if !opts.includes(c.Type) {
			continue
		}
		if opts.ForceRecheck {
			dispatch = append(dispatch, c)
			continue
		}
		skip, err := s.isSettled(ctx, latest[c.Ref])
		if err != nil {
			return nil, err
		}
		if skip {
			s.metrics.IncrementSkipped()
			continue
		}
		dispatch = append(dispatch, c)
	}
	return dispatch, nil
}

// isSettled reports whether an existing result makes a new check pointless.
func (s *Service) isSettled(ctx context.Context, existing *models.VerificationResult) (bool, error) {
	if existing == nil {
		return false, nil
	}
	switch existing.Status {
	case models.ResultVerified, models.ResultFailed, models.ResultRejected:
		return true, nil
	case models.ResultManualReview:
		open, err := s.reviews.HasOpenItem(ctx, existing.ID)
		if err != nil {
			return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check review queue")
		}
		return open, nil
	default:
		return false, nil
	}
}

// runChecks fans the checks out with a concurrency cap. Each check swallows
// its own failures, so one credential can never abort another.
func (s *Service) runChecks(ctx context.Context, sub *models.SubmittedCredentialRecord, dispatch []models.Credential) []checkOutcome {
	outcomes := make([]checkOutcome, len(dispatch))
	var g errgroup.Group
	g.SetLimit(s.parallelism)
	for i, cred := range dispatch {
		g.Go(func() error {
			outcomes[i] = s.check(ctx, sub, cred)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// persist saves a new result, superseding the previous one, and keeps the
// review queue consistent with it. Storage errors propagate.
func (s *Service) persist(ctx context.Context, previous *models.VerificationResult, out checkOutcome) error {
	if previous != nil {
		prevID := previous.ID
		out.result.Supersedes = &prevID
	}
	if err := s.results.Save(ctx, out.result); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save verification result")
	}
	s.metrics.IncrementResult(string(out.cred.Type), string(out.result.Status))
	if out.review != nil {
		out.review.ResultID = out.result.ID
	}

	handled := false
	if previous != nil {
		var err error
		handled, err = s.reviews.Supersede(ctx, previous.ID, out.result, out.review)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hand over review item")
		}
	}
	if !handled && out.review != nil {
		if err := s.reviews.Enqueue(ctx, *out.review); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to enqueue manual review")
		}
	}
	return nil
}
