// Package store persists manual review items.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"credverify/internal/review/models"
	id "credverify/pkg/domain"
	"credverify/pkg/platform/sentinel"
)

// InMemory is a thread-safe review store for tests and standalone runs.
type InMemory struct {
	mu    sync.RWMutex
	items map[id.ReviewID]models.Item
}

func NewInMemory() *InMemory {
	return &InMemory{items: make(map[id.ReviewID]models.Item)}
}

func (s *InMemory) Create(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[item.ID]; exists {
		return fmt.Errorf("review item %s: %w", item.ID, sentinel.ErrConflict)
	}
	if item.IsOpen() {
		for _, other := range s.items {
			if !other.IsOpen() {
				continue
			}
			if other.ResultID == item.ResultID {
				return fmt.Errorf("open review item for result %s: %w", item.ResultID, sentinel.ErrConflict)
			}
			if other.SubmissionID == item.SubmissionID && other.CredentialRef == item.CredentialRef {
				return fmt.Errorf("open review item for %s: %w", item.CredentialRef, sentinel.ErrConflict)
			}
		}
	}
	s.items[item.ID] = copyItem(item)
	return nil
}

func (s *InMemory) Update(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[item.ID]; !ok {
		return fmt.Errorf("review item %s: %w", item.ID, sentinel.ErrNotFound)
	}
	s.items[item.ID] = copyItem(item)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, reviewID id.ReviewID) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[reviewID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := copyItem(&item)
	return &out, nil
}

func (s *InMemory) FindOpenByResult(_ context.Context, resultID id.ResultID) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ResultID == resultID && item.IsOpen() {
			out := copyItem(&item)
			return &out, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindOpenByCredential(_ context.Context, submissionID id.SubmissionID, credentialRef string) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.SubmissionID == submissionID && item.CredentialRef == credentialRef && item.IsOpen() {
			out := copyItem(&item)
			return &out, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListOpen(_ context.Context, filter models.ListFilter) ([]*models.Item, error) {
	filter = filter.Normalize()
	items := s.collect(func(item *models.Item) bool {
		return item.IsOpen() && (filter.Priority == "" || item.Priority == filter.Priority)
	})
	if len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items, nil
}

func (s *InMemory) ListOverdue(_ context.Context, now time.Time) ([]*models.Item, error) {
	return s.collect(func(item *models.Item) bool { return item.IsOverdue(now) }), nil
}

func (s *InMemory) collect(keep func(*models.Item) bool) []*models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Item
	for _, item := range s.items {
		if keep(&item) {
			c := copyItem(&item)
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SLADeadline.Equal(out[j].SLADeadline) {
			return out[i].SLADeadline.Before(out[j].SLADeadline)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func copyItem(item *models.Item) models.Item {
	c := *item
	if item.ResolvedAt != nil {
		at := *item.ResolvedAt
		c.ResolvedAt = &at
	}
	return c
}

// InMemoryUnitOfWork serializes units of work. The in-memory stores have
// no rollback, so callers rely on the result-before-item write order.
type InMemoryUnitOfWork struct {
	mu sync.Mutex
}

func NewInMemoryUnitOfWork() *InMemoryUnitOfWork {
	return &InMemoryUnitOfWork{}
}

func (u *InMemoryUnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return fn(ctx)
}
