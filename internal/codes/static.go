// Package codes maps opaque short codes to tenant identifiers. Two strategies satisfy
// ports.CodeResolver: Static reads a fixed table from disk, Remote asks a verification service.
// FromSettings picks one at startup.
package codes

import (
	"brandtheme/internal/cache"
	"brandtheme/internal/config"
	"brandtheme/internal/metrics"
	"brandtheme/internal/ports"
	"brandtheme/internal/types"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/goccy/go-yaml"
	log "github.com/sirupsen/logrus"
)

const strategyStatic = "static"

// Static resolves codes from a code -> tenant table. The table is read from path on first use and
// kept until Clear. A missing file is an empty table. The file is YAML; JSON is accepted as well.
type Static struct {
	path string

	mu     sync.RWMutex
	table  map[string]string
	loaded bool
}

func NewStatic(path string) *Static {
	return &Static{path: path}
}

// NewStaticFromMap builds a resolver over a fixed table that is never read from disk.
func NewStaticFromMap(table map[string]string) *Static {
	s := &Static{table: make(map[string]string, len(table)), loaded: true}
	for code, tenant := range table {
		s.table[code] = tenant
	}
	return s
}

func (s *Static) Resolve(ctx context.Context, code string) (string, error) {
	table, err := s.load(ctx)
	if err != nil {
		metrics.CodeLookups.WithLabelValues(strategyStatic, "error").Inc()
		return "", err
	}
	tenant, ok := table[code]
	if !ok || tenant == "" {
		metrics.CodeLookups.WithLabelValues(strategyStatic, "not_found").Inc()
		return "", types.Err(types.ErrNotFound, nil, "code %q", code)
	}
	metrics.CodeLookups.WithLabelValues(strategyStatic, "found").Inc()
	return tenant, nil
}

// Exists reports whether Resolve succeeds. An unreadable table is logged and reported as false.
func (s *Static) Exists(ctx context.Context, code string) bool {
	_, err := s.Resolve(ctx, code)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		log.WithError(err).WithField("code", code).Warn("static code lookup failed; treating code as unknown")
	}
	return err == nil
}

// Clear drops the loaded table; the next lookup reads the file again.
func (s *Static) Clear() {
	if s.path == "" {
		return
	}
	s.mu.Lock()
	s.table = nil
	s.loaded = false
	s.mu.Unlock()
	metrics.CacheInvalidations.WithLabelValues("codes_static", "all").Inc()
}

func (s *Static) load(_ context.Context) (map[string]string, error) {
	s.mu.RLock()
	if s.loaded {
		t := s.table
		s.mu.RUnlock()
		return t, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.table, nil
	}
	table, err := readTable(s.path)
	if err != nil {
		return nil, err
	}
	s.table = table
	s.loaded = true
	log.WithFields(log.Fields{"path": s.path, "codes": len(table)}).Info("static code table loaded")
	return table, nil
}

func readTable(path string) (map[string]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.WithField("path", path).Warn("static code table not found; no codes will resolve")
			return map[string]string{}, nil
		}
		return nil, types.Err(types.ErrResolution, err, "read %s", path)
	}
	table := map[string]string{}
	if err := yaml.Unmarshal(b, &table); err != nil {
		return nil, types.Err(types.ErrResolution, err, "parse %s", path)
	}
	return table, nil
}

// FromSettings constructs the strategy selected by CODE_RESOLVER.
func FromSettings(s config.Settings) (ports.CodeResolver, error) {
	switch s.CodeResolver {
	case config.CodeResolverStatic:
		return NewStatic(s.CodesConfigPath), nil
	case config.CodeResolverRemote:
		r, err := NewRemote(s.CodeLookupURL,
			WithTimeout(s.CodeLookupTimeout),
			WithLookupField(s.CodeLookupField),
			WithCacheOptions(cache.FromSettings(s)...),
		)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown code resolver %q", s.CodeResolver)
	}
}
