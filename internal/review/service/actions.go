package service

import (
	"context"
	"errors"
	"strings"

	"credverify/internal/notify"
	"credverify/internal/review/models"
	id "credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/platform/audit"
	"credverify/pkg/platform/sentinel"
	"credverify/pkg/requestcontext"
)

// ListPending returns open items, nearest SLA deadline first.
func (s *Service) ListPending(ctx context.Context, filter models.ListFilter) ([]*models.Item, error) {
	items, err := s.store.ListOpen(ctx, filter.Normalize())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list review items")
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, reviewID id.ReviewID) (*models.Item, error) {
	return s.load(ctx, reviewID)
}

func (s *Service) load(ctx context.Context, reviewID id.ReviewID) (*models.Item, error) {
	item, err := s.store.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "review item not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load review item")
	}
	return item, nil
}

// Assign hands an open item to a reviewer.
func (s *Service) Assign(ctx context.Context, reviewID id.ReviewID, reviewer id.ReviewerID) (*models.Item, error) {
	var item *models.Item
	err := s.uow.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.load(ctx, reviewID)
		if err != nil {
			return err
		}
		if err := item.CanAssign(); err != nil {
			return err
		}
		item.ApplyAssignment(reviewer, requestcontext.Now(ctx))
		if err := s.store.Update(ctx, item); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to assign review item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.emitAudit(ctx, audit.EventReviewAssigned, item, reviewer.String(), string(item.Status), "")
	return item, nil
}

// Approve marks the linked result verified by the reviewer, closes the
// item, and recomputes the submission's overall status.
func (s *Service) Approve(ctx context.Context, reviewID id.ReviewID, reviewer id.ReviewerID, notes string) (*models.Item, error) {
	item, err := s.resolve(ctx, reviewID, reviewer, true, strings.TrimSpace(notes))
	if err != nil {
		return nil, err
	}
	s.afterResolution(ctx, item, audit.EventReviewApproved, reviewer, "review_approved")
	return item, nil
}

// Reject marks the linked result rejected. An empty reason is refused
// before anything is read or written.
func (s *Service) Reject(ctx context.Context, reviewID id.ReviewID, reviewer id.ReviewerID, reason string) (*models.Item, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "rejection reason is required")
	}
	item, err := s.resolve(ctx, reviewID, reviewer, false, reason)
	if err != nil {
		return nil, err
	}
	s.afterResolution(ctx, item, audit.EventReviewRejected, reviewer, "review_rejected")
	return item, nil
}

func (s *Service) resolve(ctx context.Context, reviewID id.ReviewID, reviewer id.ReviewerID, approve bool, notes string) (*models.Item, error) {
	var item *models.Item
	err := s.uow.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.load(ctx, reviewID)
		if err != nil {
			return err
		}
		if approve {
			err = item.CanResolve()
		} else {
			err = item.CanReject(notes)
		}
		if err != nil {
			return err
		}

		result, err := s.results.FindByID(ctx, item.ResultID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeInvariantViolation, "review item references a missing result")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load linked result")
		}
		if err := result.CanResolveByReview(); err != nil {
			return err
		}

		now := requestcontext.Now(ctx)
		if approve {
			result.ApplyReviewApproval(reviewer, now)
			item.ApplyApproval(reviewer.String(), notes, now)
		} else {
			result.ApplyReviewRejection(reviewer, now)
			item.ApplyRejection(reviewer.String(), notes, now)
		}
		// Result first: if the item write fails the credential stays in review.
		if err := s.results.Update(ctx, result); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update linked result")
		}
		if err := s.store.Update(ctx, item); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve review item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) afterResolution(ctx context.Context, item *models.Item, action audit.AuditEvent, reviewer id.ReviewerID, trigger string) {
	resolvedAt := requestcontext.Now(ctx)
	if item.ResolvedAt != nil {
		resolvedAt = *item.ResolvedAt
	}
	s.metrics.IncrementResolved(string(item.Status), "reviewer", resolvedAt.Sub(item.CreatedAt))
	s.emitAudit(ctx, action, item, reviewer.String(), string(item.Status), item.ResolutionNotes)

	// The resolution is committed; a failed recompute only delays the
	// aggregate until the next read or verify.
	if _, err := s.recomputer.RecomputeStatus(ctx, item.SubmissionID, trigger); err != nil {
		s.logger.ErrorContext(ctx, "failed to recompute overall status after review",
			"request_id", requestcontext.RequestID(ctx),
			"review_id", item.ID.String(),
			"submission_id", item.SubmissionID.String(),
			"error", err,
		)
	}
	s.publish(ctx, notify.EventReviewResolved, item, trigger)
	s.logger.InfoContext(ctx, "review item resolved",
		"request_id", requestcontext.RequestID(ctx),
		"review_id", item.ID.String(),
		"submission_id", item.SubmissionID.String(),
		"status", item.Status,
	)
}

// Escalate hands an open item off to a senior reviewer.
func (s *Service) Escalate(ctx context.Context, reviewID id.ReviewID, reason string) (*models.Item, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "escalation reason is required")
	}
	var item *models.Item
	err := s.uow.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.load(ctx, reviewID)
		if err != nil {
			return err
		}
		if err := item.CanEscalate(); err != nil {
			return err
		}
		item.ApplyEscalation(reason, requestcontext.Now(ctx))
		if err := s.store.Update(ctx, item); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to escalate review item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.emitAudit(ctx, audit.EventReviewEscalated, item, "admin", string(item.Status), reason)
	return item, nil
}

// SweepOverdue escalates pending items whose SLA deadline has passed and
// returns how many were escalated. One failing item does not stop the sweep.
func (s *Service) SweepOverdue(ctx context.Context) (int, error) {
	now := requestcontext.Now(ctx)
	items, err := s.store.ListOverdue(ctx, now)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list overdue review items")
	}
	escalated := 0
	var errs []error
	for _, item := range items {
		if item.Status != models.StatusPending {
			continue
		}
		item.ApplyEscalation("sla deadline passed", now)
		if err := s.store.Update(ctx, item); err != nil {
			errs = append(errs, err)
			continue
		}
		escalated++
		s.emitAudit(ctx, audit.EventReviewEscalated, item, "system:sla", string(item.Status), item.EscalationReason)
	}
	s.metrics.IncrementSLAEscalations(escalated)
	if len(errs) > 0 {
		return escalated, dErrors.Wrap(errors.Join(errs...), dErrors.CodeInternal, "failed to escalate some overdue review items")
	}
	return escalated, nil
}
