// Package result stores verification results. Rows are append-only per
// credential reference; review resolution updates the current row in place.
package result

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"credverify/internal/verification/models"
	id "credverify/pkg/domain"
	"credverify/pkg/platform/sentinel"
)

type entry struct {
	seq    int64
	result models.VerificationResult
}

// InMemory is a thread-safe in-memory result store for tests and
// standalone runs.
type InMemory struct {
	mu   sync.RWMutex
	seq  int64
	rows map[id.ResultID]*entry
}

func NewInMemory() *InMemory {
	return &InMemory{rows: make(map[id.ResultID]*entry)}
}

func (s *InMemory) Save(_ context.Context, r *models.VerificationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rows[r.ID]; exists {
		return fmt.Errorf("result %s: %w", r.ID, sentinel.ErrConflict)
	}
	s.seq++
	s.rows[r.ID] = &entry{seq: s.seq, result: clone(r)}
	return nil
}

func (s *InMemory) Update(_ context.Context, r *models.VerificationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.rows[r.ID]
	if !ok {
		return fmt.Errorf("result %s: %w", r.ID, sentinel.ErrNotFound)
	}
	e.result = clone(r)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, resultID id.ResultID) (*models.VerificationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.rows[resultID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	r := clone(&e.result)
	return &r, nil
}

// ListLatestBySubmission returns the newest row per credential reference.
func (s *InMemory) ListLatestBySubmission(_ context.Context, submissionID id.SubmissionID) ([]*models.VerificationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	latest := make(map[models.CredentialRef]*entry)
	for _, e := range s.rows {
		if e.result.SubmissionID != submissionID {
			continue
		}
		cur, ok := latest[e.result.CredentialRef]
		if !ok || newer(e, cur) {
			latest[e.result.CredentialRef] = e
		}
	}
	entries := make([]*entry, 0, len(latest))
	for _, e := range latest {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].result.CredentialRef < entries[j].result.CredentialRef
	})
	return collect(entries), nil
}

// ListHistory returns every row of the submission, newest first.
func (s *InMemory) ListHistory(_ context.Context, submissionID id.SubmissionID) ([]*models.VerificationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var entries []*entry
	for _, e := range s.rows {
		if e.result.SubmissionID == submissionID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return newer(entries[i], entries[j]) })
	return collect(entries), nil
}

func newer(a, b *entry) bool {
	if !a.result.CreatedAt.Equal(b.result.CreatedAt) {
		return a.result.CreatedAt.After(b.result.CreatedAt)
	}
	return a.seq > b.seq
}

func collect(entries []*entry) []*models.VerificationResult {
	out := make([]*models.VerificationResult, 0, len(entries))
	for _, e := range entries {
		r := clone(&e.result)
		out = append(out, &r)
	}
	return out
}

func clone(r *models.VerificationResult) models.VerificationResult {
	c := *r
	if r.Discrepancies != nil {
		c.Discrepancies = make([]models.Discrepancy, len(r.Discrepancies))
		copy(c.Discrepancies, r.Discrepancies)
	}
	c.RawPayload = append([]byte(nil), r.RawPayload...)
	if r.Supersedes != nil {
		prev := *r.Supersedes
		c.Supersedes = &prev
	}
	return c
}
