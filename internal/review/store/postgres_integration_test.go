//go:build integration

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"credverify/internal/review/models"
	verifymodels "credverify/internal/verification/models"
	resultstore "credverify/internal/verification/store/result"
	id "credverify/pkg/domain"
	"credverify/pkg/platform/sentinel"
	"credverify/pkg/platform/tx"
	"credverify/pkg/testutil/containers"
)

type PostgresReviewSuite struct {
	suite.Suite
	pg      *containers.PostgresContainer
	store   *PostgresStore
	results *resultstore.PostgresStore
	runner  *tx.Runner
	ctx     context.Context
	now     time.Time
}

func TestPostgresReviewSuite(t *testing.T) {
	suite.Run(t, new(PostgresReviewSuite))
}

func (s *PostgresReviewSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.store = NewPostgres(s.pg.DB)
	s.results = resultstore.NewPostgres(s.pg.DB)
	s.runner = tx.NewRunner(s.pg.DB)
	s.ctx = context.Background()
}

func (s *PostgresReviewSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(s.ctx))
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
}

func (s *PostgresReviewSuite) awaitingResult() *verifymodels.VerificationResult {
	cred := verifymodels.Credential{Type: verifymodels.CredentialLicense, Ref: "license:MX:1"}
	r, err := verifymodels.NewResult(id.NewSubmissionID(), cred, verifymodels.ResultManualReview, "registry:cedula-mx", 0.4, nil, nil, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.results.Save(s.ctx, r))
	return r
}

func (s *PostgresReviewSuite) itemFor(r *verifymodels.VerificationResult, priority models.Priority, createdAt time.Time) *models.Item {
	item, err := models.NewItem(models.NewItemParams{
		SubmissionID:  r.SubmissionID,
		ResultID:      r.ID,
		CredentialRef: string(r.CredentialRef),
		Type:          models.ReviewDataDiscrepancy,
		Priority:      priority,
		Reason:        "name mismatch",
	}, createdAt, 48*time.Hour)
	s.Require().NoError(err)
	return item
}

func (s *PostgresReviewSuite) TestOneOpenItemPerResult() {
	r := s.awaitingResult()
	item := s.itemFor(r, models.PriorityMedium, s.now)
	s.Require().NoError(s.store.Create(s.ctx, item))

	s.ErrorIs(s.store.Create(s.ctx, s.itemFor(r, models.PriorityHigh, s.now)), sentinel.ErrConflict)

	found, err := s.store.FindOpenByResult(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(item.ID, found.ID)

	item.ApplyApproval("reviewer:rev-1", "ok", s.now.Add(time.Hour))
	s.Require().NoError(s.store.Update(s.ctx, item))

	_, err = s.store.FindOpenByResult(s.ctx, r.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.NoError(s.store.Create(s.ctx, s.itemFor(r, models.PriorityLow, s.now)), "a closed item frees the slot")
}

func (s *PostgresReviewSuite) TestOneOpenItemPerCredential() {
	first := s.awaitingResult()
	second, err := verifymodels.NewResult(first.SubmissionID, verifymodels.Credential{
		Type: verifymodels.CredentialLicense, Ref: first.CredentialRef,
	}, verifymodels.ResultManualReview, "registry:cedula-mx", 0.4, nil, nil, s.now.Add(time.Minute))
	s.Require().NoError(err)
	s.Require().NoError(s.results.Save(s.ctx, second))

	item := s.itemFor(first, models.PriorityMedium, s.now)
	s.Require().NoError(s.store.Create(s.ctx, item))
	s.ErrorIs(s.store.Create(s.ctx, s.itemFor(second, models.PriorityMedium, s.now)), sentinel.ErrConflict)

	found, err := s.store.FindOpenByCredential(s.ctx, first.SubmissionID, string(first.CredentialRef))
	s.Require().NoError(err)
	s.Equal(item.ID, found.ID)
	s.Equal(first.ID, found.ResultID)
}

func (s *PostgresReviewSuite) TestListingOrder() {
	late := s.itemFor(s.awaitingResult(), models.PriorityHigh, s.now.Add(2*time.Hour))
	early := s.itemFor(s.awaitingResult(), models.PriorityLow, s.now)
	s.Require().NoError(s.store.Create(s.ctx, late))
	s.Require().NoError(s.store.Create(s.ctx, early))

	open, err := s.store.ListOpen(s.ctx, models.ListFilter{})
	s.Require().NoError(err)
	s.Require().Len(open, 2)
	s.Equal(early.ID, open[0].ID)

	high, err := s.store.ListOpen(s.ctx, models.ListFilter{Priority: models.PriorityHigh})
	s.Require().NoError(err)
	s.Require().Len(high, 1)
	s.Equal(late.ID, high[0].ID)

	overdue, err := s.store.ListOverdue(s.ctx, s.now.Add(49*time.Hour))
	s.Require().NoError(err)
	s.Require().Len(overdue, 1)
	s.Equal(early.ID, overdue[0].ID)
}

func (s *PostgresReviewSuite) TestUnitOfWorkRollsBackBothWrites() {
	r := s.awaitingResult()
	item := s.itemFor(r, models.PriorityMedium, s.now)
	s.Require().NoError(s.store.Create(s.ctx, item))

	boom := errors.New("boom")
	err := s.runner.RunInTx(s.ctx, func(ctx context.Context) error {
		r.ApplyReviewApproval(id.ReviewerID("rev-1"), s.now.Add(time.Hour))
		if err := s.results.Update(ctx, r); err != nil {
			return err
		}
		item.ApplyApproval("reviewer:rev-1", "", s.now.Add(time.Hour))
		if err := s.store.Update(ctx, item); err != nil {
			return err
		}
		return boom
	})
	s.Require().ErrorIs(err, boom)

	storedResult, err := s.results.FindByID(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(verifymodels.ResultManualReview, storedResult.Status)

	storedItem, err := s.store.FindByID(s.ctx, item.ID)
	s.Require().NoError(err)
	s.True(storedItem.IsOpen())
}
