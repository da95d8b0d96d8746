// Package submission adapts the onboarding-owned submission records to the
// orchestrator's read port. Save exists for seeding and the onboarding
// side; verification only reads.
package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"credverify/internal/verification/models"
	id "credverify/pkg/domain"
	"credverify/pkg/platform/sentinel"
)

type InMemory struct {
	mu      sync.RWMutex
	records map[id.SubmissionID][]byte
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[id.SubmissionID][]byte)}
}

// Save stores a snapshot of the record, replacing any previous one.
func (s *InMemory) Save(_ context.Context, rec *models.SubmittedCredentialRecord) error {
	// Stored encoded so callers cannot mutate a record after handing it over.
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.SubmissionID] = raw
	return nil
}

func (s *InMemory) Find(_ context.Context, submissionID id.SubmissionID) (*models.SubmittedCredentialRecord, error) {
	s.mu.RLock()
	raw, ok := s.records[submissionID]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	var rec models.SubmittedCredentialRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode submission: %w", err)
	}
	return &rec, nil
}
