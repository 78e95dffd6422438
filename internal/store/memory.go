package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore implements PlanStore in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	plans map[string]*StoredPlan
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{plans: make(map[string]*StoredPlan)}
}

// SavePlan stores a copy of plan, replacing any plan with the same id.
func (s *MemoryStore) SavePlan(ctx context.Context, plan *StoredPlan) error {
	if plan.ID == "" {
		return fmt.Errorf("plan id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *plan
	s.plans[plan.ID] = &cp
	return nil
}

// GetPlan returns the plan with id.
func (s *MemoryStore) GetPlan(ctx context.Context, id string) (*StoredPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plan, ok := s.plans[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *plan
	return &cp, nil
}

// ListPlans returns up to limit plans owned by userID, newest first.
func (s *MemoryStore) ListPlans(ctx context.Context, userID string, limit int) ([]*StoredPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*StoredPlan{}
	for _, p := range s.plans {
		if p.UserID != userID {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if n := listLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
