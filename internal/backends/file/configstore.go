package file

import (
	"brandtheme/internal/types"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/goccy/go-json"
)

// ConfigStore keeps every tenant in a single JSON document ({"<tenant>": {...}, ...}).
// Each write rewrites the whole document through a temp file + rename, so readers see either the
// previous or the next document, never a partial one.
type ConfigStore struct {
	path string
	// mu serializes read-modify-write cycles within the process.
	mu sync.Mutex
}

func NewConfigStore(path string) *ConfigStore {
	return &ConfigStore{path: path}
}

func (s *ConfigStore) GetBrandConfig(_ context.Context, tenantID string) (types.BrandConfig, error) {
	doc, err := s.load()
	if err != nil {
		return types.BrandConfig{}, err
	}
	raw, ok := doc[tenantID]
	if !ok {
		return types.BrandConfig{}, types.ErrNotFound
	}
	var cfg types.BrandConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return types.BrandConfig{}, types.Err(types.ErrConfigMalformed, err, "tenant %q in %s", tenantID, s.path)
	}
	return cfg, nil
}

func (s *ConfigStore) ListTenants(_ context.Context) ([]string, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(doc))
	for id := range doc {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *ConfigStore) PutBrandConfig(_ context.Context, tenantID string, config types.BrandConfig) error {
	raw, err := json.Marshal(config)
	if err != nil {
		return err
	}
	return s.update(func(doc map[string]json.RawMessage) {
		doc[tenantID] = raw
	})
}

func (s *ConfigStore) DeleteBrandConfig(_ context.Context, tenantID string) error {
	return s.update(func(doc map[string]json.RawMessage) {
		delete(doc, tenantID)
	})
}

func (s *ConfigStore) ClearAll(_ context.Context) error {
	return s.update(func(doc map[string]json.RawMessage) {
		for k := range doc {
			delete(doc, k)
		}
	})
}

func (s *ConfigStore) update(mutate func(map[string]json.RawMessage)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	mutate(doc)
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := writeAtomic(s.path, append(out, '\n'), 0o644); err != nil {
		return types.Err(types.ErrDataStoreAccess, err, "write %s", s.path)
	}
	return nil
}

// load reads the document. A missing file is an empty store.
func (s *ConfigStore) load() (map[string]json.RawMessage, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, types.Err(types.ErrDataStoreAccess, err, "read %s", s.path)
	}
	doc := map[string]json.RawMessage{}
	if len(b) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, types.Err(types.ErrDataStoreAccess, err, "parse %s", s.path)
	}
	return doc, nil
}

// writeAtomic writes data to a temp file in the target directory, fsyncs it and renames it over path.
func writeAtomic(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".brands-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("fsync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	_ = os.Chmod(tmpPath, perm)
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
