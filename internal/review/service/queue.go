package service

import (
	"context"
	"errors"
	"fmt"

	"credverify/internal/notify"
	"credverify/internal/review/models"
	verifymodels "credverify/internal/verification/models"
	"credverify/internal/verification/ports"
	id "credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/platform/audit"
	"credverify/pkg/platform/sentinel"
	"credverify/pkg/requestcontext"
)

// Enqueue creates a pending item for a result that needs a human. If the
// credential already has an open item, written by an overlapping run, that
// item is re-linked to the new result instead.
func (s *Service) Enqueue(ctx context.Context, req ports.EnqueueRequest) error {
	now := requestcontext.Now(ctx)
	item, err := models.NewItem(paramsOf(req), now, s.slaWindow)
	if err != nil {
		return err
	}
	if err := s.store.Create(ctx, item); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return s.relinkOpen(ctx, req)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create review item")
	}
	s.metrics.IncrementEnqueued(string(item.Type), string(item.Priority))
	s.emitAudit(ctx, audit.EventReviewEnqueued, item, verifymodels.VerifiedBySystem, string(item.Type), item.Reason)
	s.publish(ctx, notify.EventReviewEnqueued, item, string(item.Type))
	s.logger.InfoContext(ctx, "review item enqueued",
		"request_id", requestcontext.RequestID(ctx),
		"review_id", item.ID.String(),
		"submission_id", item.SubmissionID.String(),
		"credential_ref", item.CredentialRef,
		"review_type", item.Type,
		"priority", item.Priority,
	)
	return nil
}

func (s *Service) relinkOpen(ctx context.Context, req ports.EnqueueRequest) error {
	item, err := s.store.FindOpenByCredential(ctx, req.SubmissionID, string(req.CredentialRef))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up conflicting review item")
	}
	if item.ResultID == req.ResultID {
		return nil
	}
	if older, err := s.isOlderResult(ctx, req.ResultID, item.ResultID); err != nil {
		return err
	} else if older {
		return nil
	}
	item.ApplyRelink(paramsOf(req), requestcontext.Now(ctx))
	if err := s.store.Update(ctx, item); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to re-link review item")
	}
	s.emitAudit(ctx, audit.EventReviewRelinked, item, verifymodels.VerifiedBySystem, string(item.Type), item.Reason)
	s.logger.InfoContext(ctx, "open review item re-linked to newer result",
		"request_id", requestcontext.RequestID(ctx),
		"review_id", item.ID.String(),
		"submission_id", item.SubmissionID.String(),
		"credential_ref", item.CredentialRef,
	)
	return nil
}

// isOlderResult reports whether candidate was created before current. A run
// that finished late must not pull the item back to its stale result.
func (s *Service) isOlderResult(ctx context.Context, candidate, current id.ResultID) (bool, error) {
	next, err := s.results.FindByID(ctx, candidate)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load result for review item")
	}
	linked, err := s.results.FindByID(ctx, current)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load linked result")
	}
	return next.CreatedAt.Before(linked.CreatedAt), nil
}

// HasOpenItem reports whether a result is waiting on a reviewer.
func (s *Service) HasOpenItem(ctx context.Context, resultID id.ResultID) (bool, error) {
	_, err := s.store.FindOpenByResult(ctx, resultID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up review item")
	}
	return true, nil
}

// Supersede hands the open item of a replaced result over to its successor.
// When the successor still needs review the item is re-linked, keeping its
// SLA deadline; otherwise it is closed by the recheck with a status that
// mirrors the new verdict.
func (s *Service) Supersede(ctx context.Context, previous id.ResultID, next *verifymodels.VerificationResult, req *ports.EnqueueRequest) (bool, error) {
	item, err := s.store.FindOpenByResult(ctx, previous)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up review item")
	}
	now := requestcontext.Now(ctx)

	if req != nil {
		p := paramsOf(*req)
		p.ResultID = next.ID
		item.ApplyRelink(p, now)
		if err := s.store.Update(ctx, item); err != nil {
			return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to re-link review item")
		}
		s.emitAudit(ctx, audit.EventReviewRelinked, item, verifymodels.VerifiedBySystem, string(item.Type), item.Reason)
		return true, nil
	}

	note := fmt.Sprintf("superseded by recheck with status %s", next.Status)
	switch {
	case next.Status == verifymodels.ResultVerified:
		item.ApplyApproval(models.SystemRecheck, note, now)
	case next.Status.IsNegative():
		item.ApplyRejection(models.SystemRecheck, note, now)
	default:
		return false, dErrors.New(dErrors.CodeInvariantViolation, "an unresolved recheck must carry a review request")
	}
	if err := s.store.Update(ctx, item); err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to close review item")
	}
	s.metrics.IncrementResolved(string(item.Status), "recheck", now.Sub(item.CreatedAt))
	s.emitAudit(ctx, audit.EventReviewClosed, item, models.SystemRecheck, string(item.Status), note)
	return true, nil
}

func paramsOf(req ports.EnqueueRequest) models.NewItemParams {
	return models.NewItemParams{
		SubmissionID:  req.SubmissionID,
		ResultID:      req.ResultID,
		CredentialRef: string(req.CredentialRef),
		Type:          req.Type,
		Priority:      req.Priority,
		Reason:        req.Reason,
	}
}
