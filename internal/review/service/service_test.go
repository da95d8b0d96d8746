package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"credverify/internal/notify"
	"credverify/internal/review/models"
	reviewstore "credverify/internal/review/store"
	verifymodels "credverify/internal/verification/models"
	"credverify/internal/verification/ports"
	resultstore "credverify/internal/verification/store/result"
	id "credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/platform/audit"
	"credverify/pkg/platform/audit/publisher"
	auditmemory "credverify/pkg/platform/audit/store/memory"
	"credverify/pkg/platform/sentinel"
	"credverify/pkg/requestcontext"
)

// aggregator recomputes from the result store the way the orchestrator does.
type aggregator struct {
	results *resultstore.InMemory
	creds   map[id.SubmissionID][]verifymodels.Credential
	calls   []string
	last    *verifymodels.OverallVerification
	err     error
}

func (a *aggregator) RecomputeStatus(ctx context.Context, submissionID id.SubmissionID, trigger string) (*verifymodels.OverallVerification, error) {
	a.calls = append(a.calls, trigger)
	if a.err != nil {
		return nil, a.err
	}
	latest, err := a.results.ListLatestBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	byRef := make(map[verifymodels.CredentialRef]*verifymodels.VerificationResult, len(latest))
	for _, r := range latest {
		byRef[r.CredentialRef] = r
	}
	a.last = verifymodels.Aggregate(submissionID, a.creds[submissionID], byRef, requestcontext.Now(ctx))
	return a.last, nil
}

type ReviewServiceSuite struct {
	suite.Suite
	ctx     context.Context
	now     time.Time
	items   *reviewstore.InMemory
	results *resultstore.InMemory
	audits  *auditmemory.InMemoryStore
	events  *notify.ChannelPublisher
	recomp  *aggregator
	service *Service
}

func TestReviewServiceSuite(t *testing.T) {
	suite.Run(t, new(ReviewServiceSuite))
}

func (s *ReviewServiceSuite) SetupTest() {
	s.now = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.items = reviewstore.NewInMemory()
	s.results = resultstore.NewInMemory()
	s.audits = auditmemory.NewInMemoryStore()
	s.events = notify.NewChannelPublisher(16, nil)
	s.recomp = &aggregator{results: s.results, creds: map[id.SubmissionID][]verifymodels.Credential{}}

	svc, err := New(s.items, s.results, reviewstore.NewInMemoryUnitOfWork(), s.recomp,
		WithAuditor(publisher.NewPublisher(s.audits)),
		WithEventPublisher(s.events),
	)
	s.Require().NoError(err)
	s.service = svc
}

// =============================================================================
// Fixtures
// =============================================================================

func (s *ReviewServiceSuite) license(number string) verifymodels.Credential {
	lic := verifymodels.License{Jurisdiction: "MX", Number: number}
	return verifymodels.Credential{Type: verifymodels.CredentialLicense, Ref: lic.Ref(), License: &lic}
}

func (s *ReviewServiceSuite) saveResult(subID id.SubmissionID, cred verifymodels.Credential, status verifymodels.ResultStatus) *verifymodels.VerificationResult {
	r, err := verifymodels.NewResult(subID, cred, status, "registry:test", 0.6, nil, nil, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.results.Save(s.ctx, r))
	s.recomp.creds[subID] = append(s.recomp.creds[subID], cred)
	return r
}

func (s *ReviewServiceSuite) enqueue(r *verifymodels.VerificationResult) *models.Item {
	s.Require().NoError(s.service.Enqueue(s.ctx, ports.EnqueueRequest{
		SubmissionID:  r.SubmissionID,
		ResultID:      r.ID,
		CredentialRef: r.CredentialRef,
		Type:          models.ReviewNotFound,
		Priority:      models.PriorityHigh,
		Reason:        "license not found in registry",
	}))
	item, err := s.items.FindOpenByResult(s.ctx, r.ID)
	s.Require().NoError(err)
	return item
}

func (s *ReviewServiceSuite) drainEvents() []notify.Event {
	var out []notify.Event
	for {
		select {
		case e := <-s.events.Events():
			out = append(out, e)
		default:
			return out
		}
	}
}

func (s *ReviewServiceSuite) actions(subject id.SubmissionID) []string {
	events, err := s.audits.ListBySubject(s.ctx, subject.String())
	s.Require().NoError(err)
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Action)
	}
	return out
}

// =============================================================================
// Enqueue
// =============================================================================

func (s *ReviewServiceSuite) TestEnqueue() {
	subID := id.NewSubmissionID()
	r := s.saveResult(subID, s.license("A1"), verifymodels.ResultManualReview)

	item := s.enqueue(r)
	s.Equal(models.StatusPending, item.Status)
	s.Equal(s.now.Add(48*time.Hour), item.SLADeadline)

	open, err := s.service.HasOpenItem(s.ctx, r.ID)
	s.Require().NoError(err)
	s.True(open)

	open, err = s.service.HasOpenItem(s.ctx, id.NewResultID())
	s.Require().NoError(err)
	s.False(open)

	s.Equal([]string{string(audit.EventReviewEnqueued)}, s.actions(subID))
	events := s.drainEvents()
	s.Require().Len(events, 1)
	s.Equal(notify.EventReviewEnqueued, events[0].Type)
}

func (s *ReviewServiceSuite) TestEnqueueForOpenCredentialRelinks() {
	subID := id.NewSubmissionID()
	cred := s.license("A1")
	first := s.saveResult(subID, cred, verifymodels.ResultManualReview)
	second := s.saveResult(subID, cred, verifymodels.ResultManualReview)

	original := s.enqueue(first)
	s.Require().NoError(s.service.Enqueue(s.ctx, ports.EnqueueRequest{
		SubmissionID:  subID,
		ResultID:      second.ID,
		CredentialRef: cred.Ref,
		Type:          models.ReviewNotFound,
		Priority:      models.PriorityHigh,
		Reason:        "license not found in registry",
	}))

	open, err := s.items.ListOpen(s.ctx, models.ListFilter{})
	s.Require().NoError(err)
	s.Require().Len(open, 1)
	s.Equal(original.ID, open[0].ID)
	s.Equal(second.ID, open[0].ResultID)
	s.Equal(original.SLADeadline, open[0].SLADeadline)

	_, err = s.items.FindOpenByResult(s.ctx, first.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.Equal([]string{string(audit.EventReviewEnqueued), string(audit.EventReviewRelinked)}, s.actions(subID))

	s.Run("a result from an earlier run leaves the link alone", func() {
		stale, err := verifymodels.NewResult(subID, cred, verifymodels.ResultManualReview, "registry:test", 0.6, nil, nil, s.now.Add(-time.Minute))
		s.Require().NoError(err)
		s.Require().NoError(s.results.Save(s.ctx, stale))

		s.Require().NoError(s.service.Enqueue(s.ctx, ports.EnqueueRequest{
			SubmissionID:  subID,
			ResultID:      stale.ID,
			CredentialRef: cred.Ref,
			Type:          models.ReviewNotFound,
			Priority:      models.PriorityHigh,
			Reason:        "license not found in registry",
		}))
		item, err := s.items.FindByID(s.ctx, original.ID)
		s.Require().NoError(err)
		s.Equal(second.ID, item.ResultID)
	})

	s.Run("approving the item resolves the latest result", func() {
		_, err := s.service.Approve(s.ctx, original.ID, "rev-1", "checked by phone")
		s.Require().NoError(err)
		latest, err := s.results.FindByID(s.ctx, second.ID)
		s.Require().NoError(err)
		s.Equal(verifymodels.ResultVerified, latest.Status)
	})
}

// =============================================================================
// Resolution
// =============================================================================

func (s *ReviewServiceSuite) TestApproveRecomputesOverallStatus() {
	subID := id.NewSubmissionID()
	s.saveResult(subID, s.license("A1"), verifymodels.ResultVerified)
	pending := s.saveResult(subID, s.license("B2"), verifymodels.ResultManualReview)
	item := s.enqueue(pending)
	s.drainEvents()

	later := requestcontext.WithTime(s.ctx, s.now.Add(3*time.Hour))
	resolved, err := s.service.Approve(later, item.ID, "reviewer-7", " documents checked ")
	s.Require().NoError(err)

	s.Equal(models.StatusApproved, resolved.Status)
	s.Equal("reviewer-7", resolved.ResolvedBy)
	s.Equal("documents checked", resolved.ResolutionNotes)

	result, err := s.results.FindByID(s.ctx, pending.ID)
	s.Require().NoError(err)
	s.Equal(verifymodels.ResultVerified, result.Status)
	s.Equal(verifymodels.Tier3, result.Tier)
	s.Equal("manual:reviewer-7", result.VerifiedBy)

	s.Equal([]string{"review_approved"}, s.recomp.calls)
	s.Require().NotNil(s.recomp.last)
	s.Equal(verifymodels.OverallVerified, s.recomp.last.Status)
	s.Equal(verifymodels.Tier2, s.recomp.last.Tier)

	s.Contains(s.actions(subID), string(audit.EventReviewApproved))
	events := s.drainEvents()
	s.Require().Len(events, 1)
	s.Equal(notify.EventReviewResolved, events[0].Type)
	s.Equal("review_approved", events[0].Trigger)
}

func (s *ReviewServiceSuite) TestReject() {
	subID := id.NewSubmissionID()
	pending := s.saveResult(subID, s.license("A1"), verifymodels.ResultManualReview)
	item := s.enqueue(pending)

	s.Run("empty reason changes nothing", func() {
		_, err := s.service.Reject(s.ctx, item.ID, "reviewer-1", "   ")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		stored, err := s.items.FindByID(s.ctx, item.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, stored.Status)
		result, err := s.results.FindByID(s.ctx, pending.ID)
		s.Require().NoError(err)
		s.Equal(verifymodels.ResultManualReview, result.Status)
		s.Empty(s.recomp.calls)
	})

	s.Run("rejection is recorded on both sides", func() {
		resolved, err := s.service.Reject(s.ctx, item.ID, "reviewer-1", "license revoked in 2024")
		s.Require().NoError(err)
		s.Equal(models.StatusRejected, resolved.Status)

		result, err := s.results.FindByID(s.ctx, pending.ID)
		s.Require().NoError(err)
		s.Equal(verifymodels.ResultRejected, result.Status)
		s.Equal(verifymodels.OverallRejected, s.recomp.last.Status)
	})

	s.Run("resolved item cannot be resolved again", func() {
		_, err := s.service.Approve(s.ctx, item.ID, "reviewer-2", "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func (s *ReviewServiceSuite) TestResolutionEdgeCases() {
	s.Run("unknown item", func() {
		_, err := s.service.Approve(s.ctx, id.NewReviewID(), "reviewer-1", "")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("missing linked result", func() {
		item, err := models.NewItem(models.NewItemParams{
			SubmissionID: id.NewSubmissionID(),
			ResultID:     id.NewResultID(),
			Type:         models.ReviewNotFound,
		}, s.now, time.Hour)
		s.Require().NoError(err)
		s.Require().NoError(s.items.Create(s.ctx, item))

		_, err = s.service.Approve(s.ctx, item.ID, "reviewer-1", "")
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))

		stored, err := s.items.FindByID(s.ctx, item.ID)
		s.Require().NoError(err)
		s.True(stored.IsOpen())
	})

	s.Run("recompute failure does not undo the decision", func() {
		subID := id.NewSubmissionID()
		pending := s.saveResult(subID, s.license("Z9"), verifymodels.ResultManualReview)
		item := s.enqueue(pending)
		s.recomp.err = errors.New("cache unavailable")
		defer func() { s.recomp.err = nil }()

		resolved, err := s.service.Approve(s.ctx, item.ID, "reviewer-1", "")
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, resolved.Status)
	})
}

// =============================================================================
// Assignment and escalation
// =============================================================================

func (s *ReviewServiceSuite) TestAssignAndEscalate() {
	subID := id.NewSubmissionID()
	pending := s.saveResult(subID, s.license("A1"), verifymodels.ResultManualReview)
	item := s.enqueue(pending)

	assigned, err := s.service.Assign(s.ctx, item.ID, "reviewer-3")
	s.Require().NoError(err)
	s.Equal(models.StatusInProgress, assigned.Status)
	s.Equal(id.ReviewerID("reviewer-3"), assigned.AssignedTo)

	_, err = s.service.Escalate(s.ctx, item.ID, "")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	escalated, err := s.service.Escalate(s.ctx, item.ID, "needs a senior reviewer")
	s.Require().NoError(err)
	s.Equal(models.StatusEscalated, escalated.Status)
	s.Equal(models.PriorityHigh, escalated.Priority)
	s.Equal(item.SLADeadline, escalated.SLADeadline)

	_, err = s.service.Escalate(s.ctx, item.ID, "again")
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	// escalated items can still be resolved
	_, err = s.service.Approve(s.ctx, item.ID, "senior-1", "verified by phone")
	s.Require().NoError(err)

	s.Equal([]string{
		string(audit.EventReviewEnqueued),
		string(audit.EventReviewAssigned),
		string(audit.EventReviewEscalated),
		string(audit.EventReviewApproved),
	}, s.actions(subID))
}

func (s *ReviewServiceSuite) TestListPending() {
	subID := id.NewSubmissionID()
	first := s.enqueue(s.saveResult(subID, s.license("A1"), verifymodels.ResultManualReview))
	later := requestcontext.WithTime(s.ctx, s.now.Add(time.Hour))
	r := s.saveResult(subID, s.license("B2"), verifymodels.ResultManualReview)
	s.Require().NoError(s.service.Enqueue(later, ports.EnqueueRequest{
		SubmissionID: subID, ResultID: r.ID, CredentialRef: r.CredentialRef,
		Type: models.ReviewDataDiscrepancy, Priority: models.PriorityLow,
	}))

	items, err := s.service.ListPending(s.ctx, models.ListFilter{})
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal(first.ID, items[0].ID)

	items, err = s.service.ListPending(s.ctx, models.ListFilter{Priority: models.PriorityLow})
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(r.ID, items[0].ResultID)
}

func (s *ReviewServiceSuite) TestSweepOverdue() {
	subID := id.NewSubmissionID()
	overdue := s.enqueue(s.saveResult(subID, s.license("A1"), verifymodels.ResultManualReview))
	alreadyEscalated := s.enqueue(s.saveResult(subID, s.license("B2"), verifymodels.ResultManualReview))
	_, err := s.service.Escalate(s.ctx, alreadyEscalated.ID, "manual")
	s.Require().NoError(err)

	fresh := requestcontext.WithTime(s.ctx, s.now.Add(47*time.Hour))
	notDue := s.saveResult(subID, s.license("C3"), verifymodels.ResultManualReview)
	s.Require().NoError(s.service.Enqueue(fresh, ports.EnqueueRequest{
		SubmissionID: subID, ResultID: notDue.ID, CredentialRef: notDue.CredentialRef,
		Type: models.ReviewNotFound, Priority: models.PriorityLow,
	}))

	sweepAt := requestcontext.WithTime(s.ctx, s.now.Add(49*time.Hour))
	n, err := s.service.SweepOverdue(sweepAt)
	s.Require().NoError(err)
	s.Equal(1, n)

	stored, err := s.items.FindByID(s.ctx, overdue.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusEscalated, stored.Status)
	s.Equal("sla deadline passed", stored.EscalationReason)

	n, err = s.service.SweepOverdue(sweepAt)
	s.Require().NoError(err)
	s.Zero(n)
}

// =============================================================================
// Supersede
// =============================================================================

func (s *ReviewServiceSuite) TestSupersede() {
	subID := id.NewSubmissionID()
	cred := s.license("A1")

	s.Run("no open item", func() {
		next := s.saveResult(subID, cred, verifymodels.ResultVerified)
		handled, err := s.service.Supersede(s.ctx, id.NewResultID(), next, nil)
		s.Require().NoError(err)
		s.False(handled)
	})

	s.Run("still needs review: relinked", func() {
		prev := s.saveResult(subID, cred, verifymodels.ResultManualReview)
		item := s.enqueue(prev)
		next := s.saveResult(subID, cred, verifymodels.ResultManualReview)

		later := requestcontext.WithTime(s.ctx, s.now.Add(2*time.Hour))
		handled, err := s.service.Supersede(later, prev.ID, next, &ports.EnqueueRequest{
			SubmissionID: subID, ResultID: next.ID, CredentialRef: next.CredentialRef,
			Type: models.ReviewDataDiscrepancy, Priority: models.PriorityMedium, Reason: "name mismatch",
		})
		s.Require().NoError(err)
		s.True(handled)

		stored, err := s.items.FindByID(s.ctx, item.ID)
		s.Require().NoError(err)
		s.Equal(next.ID, stored.ResultID)
		s.Equal(models.ReviewDataDiscrepancy, stored.Type)
		s.Equal(item.SLADeadline, stored.SLADeadline)
		s.True(stored.IsOpen())

		stored.ApplyApproval("cleanup", "", s.now)
		s.Require().NoError(s.items.Update(s.ctx, stored))
	})

	s.Run("verified recheck closes as approved", func() {
		prev := s.saveResult(subID, cred, verifymodels.ResultManualReview)
		item := s.enqueue(prev)
		next := s.saveResult(subID, cred, verifymodels.ResultVerified)

		handled, err := s.service.Supersede(s.ctx, prev.ID, next, nil)
		s.Require().NoError(err)
		s.True(handled)

		stored, err := s.items.FindByID(s.ctx, item.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, stored.Status)
		s.Equal(models.SystemRecheck, stored.ResolvedBy)
		s.Equal("superseded by recheck with status verified", stored.ResolutionNotes)
	})

	s.Run("failed recheck closes as rejected", func() {
		prev := s.saveResult(subID, cred, verifymodels.ResultManualReview)
		item := s.enqueue(prev)
		next := s.saveResult(subID, cred, verifymodels.ResultFailed)

		handled, err := s.service.Supersede(s.ctx, prev.ID, next, nil)
		s.Require().NoError(err)
		s.True(handled)

		stored, err := s.items.FindByID(s.ctx, item.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusRejected, stored.Status)
	})

	s.Run("unresolved recheck without a request", func() {
		prev := s.saveResult(subID, cred, verifymodels.ResultManualReview)
		s.enqueue(prev)
		next := s.saveResult(subID, cred, verifymodels.ResultManualReview)

		_, err := s.service.Supersede(s.ctx, prev.ID, next, nil)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestNewRequiresCollaborators(t *testing.T) {
	items := reviewstore.NewInMemory()
	results := resultstore.NewInMemory()
	uow := reviewstore.NewInMemoryUnitOfWork()
	recomp := RecomputeFunc(func(context.Context, id.SubmissionID, string) (*verifymodels.OverallVerification, error) {
		return nil, nil
	})

	cases := map[string]func() (*Service, error){
		"store":      func() (*Service, error) { return New(nil, results, uow, recomp) },
		"results":    func() (*Service, error) { return New(items, nil, uow, recomp) },
		"uow":        func() (*Service, error) { return New(items, results, nil, recomp) },
		"recomputer": func() (*Service, error) { return New(items, results, uow, nil) },
	}
	for name, build := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := build(); err == nil {
				t.Fatalf("expected an error without %s", name)
			}
		})
	}
}
