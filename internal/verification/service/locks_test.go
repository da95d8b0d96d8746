package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"credverify/internal/verification/models"
	"credverify/internal/verification/providers"
	id "credverify/pkg/domain"
)

func TestSubmissionLocks(t *testing.T) {
	locks := newSubmissionLocks()
	subID := id.NewSubmissionID()

	release, err := locks.acquire(context.Background(), subID)
	require.NoError(t, err)
	assert.Equal(t, 1, locks.waiting(subID))

	t.Run("other submissions are not blocked", func(t *testing.T) {
		other, err := locks.acquire(context.Background(), id.NewSubmissionID())
		require.NoError(t, err)
		other()
	})

	t.Run("waiter gives up when its context ends", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := locks.acquire(ctx, subID)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 1, locks.waiting(subID))
	})

	t.Run("waiter runs once the holder releases", func(t *testing.T) {
		acquired := make(chan func())
		go func() {
			next, err := locks.acquire(context.Background(), subID)
			assert.NoError(t, err)
			acquired <- next
		}()
		require.Eventually(t, func() bool { return locks.waiting(subID) == 2 }, time.Second, time.Millisecond)
		release()

		select {
		case next := <-acquired:
			next()
		case <-time.After(time.Second):
			t.Fatal("waiter never acquired the submission")
		}
	})

	assert.Equal(t, 0, locks.waiting(subID))
	assert.Empty(t, locks.held)
}

// Two overlapping runs for one submission must not both check the same
// credential: the second waits and then plans from the first one's result.
func (s *VerificationServiceSuite) TestOverlappingVerifyRunsCheckOnce() {
	subID := s.submission(nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	s.registry.EXPECT().Lookup(gomock.Any(), "MX", "1234567").DoAndReturn(
		func(context.Context, string, string) (*providers.LookupResult, error) {
			close(entered)
			<-release
			return notFound(registrySource), nil
		}).Times(1)
	s.reviews.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	s.reviews.EXPECT().HasOpenItem(gomock.Any(), gomock.Any()).Return(true, nil).Times(1)

	type run struct {
		overall *models.OverallVerification
		err     error
	}
	runs := make(chan run, 2)
	verify := func() {
		overall, err := s.service.Verify(s.ctx, subID, VerifyOptions{})
		runs <- run{overall, err}
	}

	go verify()
	<-entered
	go verify()
	s.Require().Eventually(func() bool { return s.service.runs.waiting(subID) == 2 }, time.Second, time.Millisecond)
	close(release)

	for range 2 {
		select {
		case r := <-runs:
			s.Require().NoError(r.err)
			s.Equal(models.OverallInProgress, r.overall.Status)
		case <-time.After(2 * time.Second):
			s.FailNow("verify run did not finish")
		}
	}

	history, err := s.results.ListHistory(s.ctx, subID)
	s.Require().NoError(err)
	s.Len(history, 1)
	s.Equal(0, s.service.runs.waiting(subID))
}
