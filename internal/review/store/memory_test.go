package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"credverify/internal/review/models"
	id "credverify/pkg/domain"
	"credverify/pkg/platform/sentinel"
)

type ReviewStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	now   time.Time
}

func TestReviewStoreSuite(t *testing.T) {
	suite.Run(t, new(ReviewStoreSuite))
}

func (s *ReviewStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
}

func (s *ReviewStoreSuite) newItem(priority models.Priority, createdAt time.Time) *models.Item {
	item, err := models.NewItem(models.NewItemParams{
		SubmissionID:  id.NewSubmissionID(),
		ResultID:      id.NewResultID(),
		CredentialRef: "license:MX:1",
		Type:          models.ReviewNotFound,
		Priority:      priority,
		Reason:        "not in registry",
	}, createdAt, 48*time.Hour)
	s.Require().NoError(err)
	return item
}

func (s *ReviewStoreSuite) TestCreateAndFind() {
	item := s.newItem(models.PriorityHigh, s.now)
	s.Require().NoError(s.store.Create(s.ctx, item))

	s.Run("by id", func() {
		found, err := s.store.FindByID(s.ctx, item.ID)
		s.Require().NoError(err)
		s.Equal(item.Reason, found.Reason)
	})

	s.Run("open item by result", func() {
		found, err := s.store.FindOpenByResult(s.ctx, item.ResultID)
		s.Require().NoError(err)
		s.Equal(item.ID, found.ID)
	})

	s.Run("second open item for the same result conflicts", func() {
		dup := s.newItem(models.PriorityLow, s.now)
		dup.ResultID = item.ResultID
		s.ErrorIs(s.store.Create(s.ctx, dup), sentinel.ErrConflict)
	})

	s.Run("second open item for the same credential conflicts", func() {
		dup := s.newItem(models.PriorityLow, s.now)
		dup.SubmissionID = item.SubmissionID
		s.ErrorIs(s.store.Create(s.ctx, dup), sentinel.ErrConflict)

		found, err := s.store.FindOpenByCredential(s.ctx, item.SubmissionID, item.CredentialRef)
		s.Require().NoError(err)
		s.Equal(item.ID, found.ID)

		_, err = s.store.FindOpenByCredential(s.ctx, item.SubmissionID, "license:MX:2")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("resolved item is no longer open", func() {
		found, err := s.store.FindByID(s.ctx, item.ID)
		s.Require().NoError(err)
		found.ApplyApproval("reviewer-1", "ok", s.now.Add(time.Hour))
		s.Require().NoError(s.store.Update(s.ctx, found))

		_, err = s.store.FindOpenByResult(s.ctx, item.ResultID)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("closed item frees the credential", func() {
		_, err := s.store.FindOpenByCredential(s.ctx, item.SubmissionID, item.CredentialRef)
		s.ErrorIs(err, sentinel.ErrNotFound)

		next := s.newItem(models.PriorityHigh, s.now.Add(2*time.Hour))
		next.SubmissionID = item.SubmissionID
		s.NoError(s.store.Create(s.ctx, next))
	})

	s.Run("unknown id", func() {
		_, err := s.store.FindByID(s.ctx, id.NewReviewID())
		s.ErrorIs(err, sentinel.ErrNotFound)
		s.ErrorIs(s.store.Update(s.ctx, s.newItem(models.PriorityLow, s.now)), sentinel.ErrNotFound)
	})
}

func (s *ReviewStoreSuite) TestListOpen() {
	late := s.newItem(models.PriorityLow, s.now.Add(2*time.Hour))
	early := s.newItem(models.PriorityHigh, s.now)
	middle := s.newItem(models.PriorityHigh, s.now.Add(time.Hour))
	closed := s.newItem(models.PriorityHigh, s.now.Add(-time.Hour))
	closed.ApplyRejection("reviewer-1", "fabricated", s.now)
	for _, item := range []*models.Item{late, early, middle, closed} {
		s.Require().NoError(s.store.Create(s.ctx, item))
	}

	s.Run("nearest deadline first", func() {
		items, err := s.store.ListOpen(s.ctx, models.ListFilter{})
		s.Require().NoError(err)
		s.Require().Len(items, 3)
		s.Equal(early.ID, items[0].ID)
		s.Equal(middle.ID, items[1].ID)
		s.Equal(late.ID, items[2].ID)
	})

	s.Run("priority filter and limit", func() {
		items, err := s.store.ListOpen(s.ctx, models.ListFilter{Priority: models.PriorityHigh, Limit: 1})
		s.Require().NoError(err)
		s.Require().Len(items, 1)
		s.Equal(early.ID, items[0].ID)
	})

	s.Run("overdue", func() {
		items, err := s.store.ListOverdue(s.ctx, s.now.Add(49*time.Hour+30*time.Minute))
		s.Require().NoError(err)
		s.Require().Len(items, 2)
		s.Equal(early.ID, items[0].ID)
		s.Equal(middle.ID, items[1].ID)
	})
}

func (s *ReviewStoreSuite) TestReturnedItemsAreCopies() {
	item := s.newItem(models.PriorityMedium, s.now)
	s.Require().NoError(s.store.Create(s.ctx, item))
	item.Status = models.StatusApproved

	found, err := s.store.FindByID(s.ctx, item.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, found.Status)
}
