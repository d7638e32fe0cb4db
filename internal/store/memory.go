package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/navyaanair/M-A-lead-generation-tool/internal/model"
)

// Ensure MemoryStore implements model.CompanyStore.
var _ model.CompanyStore = (*MemoryStore)(nil)

// MemoryStore is an in-process catalog used for file-driven runs and tests.
// Nothing is persisted.
type MemoryStore struct {
	mu        sync.RWMutex
	companies []model.Company
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) List(_ context.Context) ([]model.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.companies), nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (model.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.companies[i], nil
	}
	return model.Company{}, fmt.Errorf("company %s: %w", id, model.ErrCompanyNotFound)
}

func (s *MemoryStore) Add(_ context.Context, c model.Company) (model.Company, error) {
	c, err := prepare(c)
	if err != nil {
		return model.Company{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index(c.ID) >= 0 {
		return model.Company{}, fmt.Errorf("company %s already exists", c.ID)
	}
	s.companies = append(s.companies, c)
	return c, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("company %s: %w", id, model.ErrCompanyNotFound)
	}
	s.companies = slices.Delete(s.companies, i, i+1)
	return nil
}

func (s *MemoryStore) index(id string) int {
	return slices.IndexFunc(s.companies, func(c model.Company) bool { return c.ID == id })
}
