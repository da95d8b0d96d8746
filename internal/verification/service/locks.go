package service

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	id "credverify/pkg/domain"
)

// submissionLocks serializes verify runs per submission within one process.
// A second run waits for the first and then plans from its results, so
// overlapping calls never both save a first result for the same credential.
type submissionLocks struct {
	mu   sync.Mutex
	held map[id.SubmissionID]*submissionLock
}

type submissionLock struct {
	sem  *semaphore.Weighted
	refs int
}

func newSubmissionLocks() *submissionLocks {
	return &submissionLocks{held: make(map[id.SubmissionID]*submissionLock)}
}

// acquire blocks until the submission is free or ctx ends. The returned
// release must be called exactly once.
func (l *submissionLocks) acquire(ctx context.Context, submissionID id.SubmissionID) (func(), error) {
	l.mu.Lock()
	lock, ok := l.held[submissionID]
	if !ok {
		lock = &submissionLock{sem: semaphore.NewWeighted(1)}
		l.held[submissionID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	if err := lock.sem.Acquire(ctx, 1); err != nil {
		l.drop(submissionID, lock)
		return nil, err
	}
	return func() {
		lock.sem.Release(1)
		l.drop(submissionID, lock)
	}, nil
}

func (l *submissionLocks) drop(submissionID id.SubmissionID, lock *submissionLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(l.held, submissionID)
	}
}

// waiting counts runs holding or queued on a submission.
func (l *submissionLocks) waiting(submissionID id.SubmissionID) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lock, ok := l.held[submissionID]; ok {
		return lock.refs
	}
	return 0
}
