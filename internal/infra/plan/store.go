// File: internal/infra/plan/store.go
package plan

import (
	"fmt"
	"sync"

	"ruga-file-analysis/internal/domain"
	"ruga-file-analysis/internal/domain/model"
	"ruga-file-analysis/internal/domain/ports/repository"
)

var _ repository.PlanStore = (*Store)(nil)

// Store holds generated folder structures in memory, write-once.
type Store struct {
	mu    sync.RWMutex
	plans map[string]*model.StoredStructure
}

func NewStore() *Store {
	return &Store{plans: map[string]*model.StoredStructure{}}
}

func (s *Store) Save(plan *model.StoredStructure) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.plans[plan.ID]; exists {
		return fmt.Errorf("structure %s already stored: %w", plan.ID, domain.ErrInvalidArgument)
	}
	s.plans[plan.ID] = plan
	return nil
}

func (s *Store) Get(structureID string) (*model.StoredStructure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	plan, ok := s.plans[structureID]
	if !ok {
		return nil, fmt.Errorf("structure %s: %w", structureID, domain.ErrNotFound)
	}
	return plan, nil
}
