package memory

import (
	"brandtheme/internal/types"
	"context"
	"sort"
	"sync"
)

// ConfigStore keeps brand configs in process memory. Used for local development and tests.
type ConfigStore struct {
	mu     sync.RWMutex
	brands map[string]types.BrandConfig
}

func NewConfigStore(seed map[string]types.BrandConfig) *ConfigStore {
	s := &ConfigStore{brands: make(map[string]types.BrandConfig, len(seed))}
	for id, cfg := range seed {
		s.brands[types.NormalizeTenantID(id)] = cfg.Clone()
	}
	return s
}

func (s *ConfigStore) GetBrandConfig(_ context.Context, tenantID string) (types.BrandConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.brands[tenantID]
	if !ok {
		return types.BrandConfig{}, types.ErrNotFound
	}
	return cfg.Clone(), nil
}

func (s *ConfigStore) ListTenants(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.brands))
	for id := range s.brands {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *ConfigStore) PutBrandConfig(_ context.Context, tenantID string, config types.BrandConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brands[tenantID] = config.Clone()
	return nil
}

func (s *ConfigStore) DeleteBrandConfig(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.brands, tenantID)
	return nil
}

func (s *ConfigStore) ClearAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brands = make(map[string]types.BrandConfig)
	return nil
}
