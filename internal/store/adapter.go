package store

import (
	"brandtheme/internal/cache"
	"brandtheme/internal/metrics"
	"brandtheme/internal/ports"
	"brandtheme/internal/pub"
	"brandtheme/internal/types"
	"context"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Invalidator is implemented by every cache derived from a tenant's BrandConfig. The adapter calls
// it synchronously after each successful write, once its own cache entry is gone.
type Invalidator interface {
	Invalidate(tenantID string)
	Clear()
}

// Adapter is the read/write access point to the configuration store. Lookups are case-insensitive,
// reads are cached per tenant, and every write invalidates the adapter's entry and then all
// registered dependents before returning.
type Adapter struct {
	backend ports.ConfigStore
	cache   *cache.Cache[types.BrandConfig]
	locks   keyedMutex

	mu         sync.RWMutex
	dependents []Invalidator

	events ports.Publisher
	topic  string
}

type Option func(*Adapter)

// WithCacheOptions configures the per-tenant read cache.
func WithCacheOptions(opts ...cache.Option) Option {
	return func(a *Adapter) { a.cache = cache.New[types.BrandConfig]("brand_config", opts...) }
}

// WithEvents publishes a types.BrandEvent to topic after each write.
func WithEvents(p ports.Publisher, topic string) Option {
	return func(a *Adapter) {
		a.events = p
		a.topic = topic
	}
}

func NewAdapter(backend ports.ConfigStore, opts ...Option) *Adapter {
	a := &Adapter{backend: backend}
	for _, opt := range opts {
		opt(a)
	}
	if a.cache == nil {
		a.cache = cache.New[types.BrandConfig]("brand_config")
	}
	return a
}

// OnInvalidate registers a dependent cache.
func (a *Adapter) OnInvalidate(inv Invalidator) {
	a.mu.Lock()
	a.dependents = append(a.dependents, inv)
	a.mu.Unlock()
}

// Get returns the tenant's config with variants sorted by (weight, style).
// Errors: types.ErrNotFound, types.ErrConfigMalformed, types.ErrDataStoreAccess.
func (a *Adapter) Get(ctx context.Context, tenantID string) (types.BrandConfig, error) {
	key := types.NormalizeTenantID(tenantID)
	cfg, err := a.cache.GetOrLoad(ctx, key, func(ctx context.Context) (types.BrandConfig, error) {
		return a.read(ctx, key)
	})
	if err != nil {
		return types.BrandConfig{}, err
	}
	return cfg.Clone(), nil
}

// Exists reports whether the tenant is configured. A tenant whose config is malformed exists; the
// malformation surfaces on Get. Store failures are returned, not folded into false.
func (a *Adapter) Exists(ctx context.Context, tenantID string) (bool, error) {
	_, err := a.Get(ctx, tenantID)
	switch {
	case err == nil, errors.Is(err, types.ErrConfigMalformed):
		return true, nil
	case errors.Is(err, types.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// ListIDs returns all tenant identifiers in ascending order.
func (a *Adapter) ListIDs(ctx context.Context) ([]string, error) {
	ids, err := a.backend.ListTenants(ctx)
	if err != nil {
		return nil, classify(err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Replace atomically replaces an existing tenant's document. It returns types.ErrNotFound when the
// tenant does not exist. Once it returns nil, no cache observes the previous document.
func (a *Adapter) Replace(ctx context.Context, tenantID string, cfg types.BrandConfig) error {
	key := types.NormalizeTenantID(tenantID)
	unlock := a.locks.lock(key)
	defer unlock()

	if _, err := a.backend.GetBrandConfig(ctx, key); err != nil && !errors.Is(err, types.ErrConfigMalformed) {
		return a.writeFailed("replace", key, classify(err))
	}
	return a.write(ctx, "replace", key, cfg, types.EventBrandUpdated)
}

// Create adds a new tenant. It returns types.ErrAlreadyExists when the tenant is already configured.
func (a *Adapter) Create(ctx context.Context, tenantID string, cfg types.BrandConfig) error {
	key := types.NormalizeTenantID(tenantID)
	unlock := a.locks.lock(key)
	defer unlock()

	_, err := a.backend.GetBrandConfig(ctx, key)
	switch {
	case err == nil, errors.Is(err, types.ErrConfigMalformed):
		return a.writeFailed("create", key, types.Err(types.ErrAlreadyExists, nil, "tenant %q", key))
	case !errors.Is(err, types.ErrNotFound):
		return a.writeFailed("create", key, classify(err))
	}
	return a.write(ctx, "create", key, cfg, types.EventBrandCreated)
}

// Delete removes a tenant. It returns types.ErrNotFound when the tenant does not exist.
func (a *Adapter) Delete(ctx context.Context, tenantID string) error {
	key := types.NormalizeTenantID(tenantID)
	unlock := a.locks.lock(key)
	defer unlock()

	if _, err := a.backend.GetBrandConfig(ctx, key); err != nil && !errors.Is(err, types.ErrConfigMalformed) {
		return a.writeFailed("delete", key, classify(err))
	}
	if err := a.backend.DeleteBrandConfig(ctx, key); err != nil {
		return a.writeFailed("delete", key, classify(err))
	}
	metrics.StoreWrites.WithLabelValues("delete", "ok").Inc()
	a.Invalidate(key)
	a.publish(ctx, types.BrandEvent{Type: types.EventBrandDeleted, Tenant: key})
	return nil
}

// Invalidate drops every cached value derived from the tenant's config. Writers that change the
// backing store out of band (editing the document by hand, another process) call it after their
// write. The adapter's own entry goes first so a dependent that repopulates immediately reads the
// new document.
func (a *Adapter) Invalidate(tenantID string) {
	key := types.NormalizeTenantID(tenantID)
	a.cache.Invalidate(key)
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, d := range a.dependents {
		d.Invalidate(key)
	}
}

// InvalidateAll drops every cached value for every tenant.
func (a *Adapter) InvalidateAll() {
	a.cache.Clear()
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, d := range a.dependents {
		d.Clear()
	}
}

func (a *Adapter) read(ctx context.Context, key string) (types.BrandConfig, error) {
	cfg, err := a.backend.GetBrandConfig(ctx, key)
	if err != nil {
		return types.BrandConfig{}, classify(err)
	}
	if err := cfg.CheckRequired(); err != nil {
		return types.BrandConfig{}, types.Err(err, nil, "tenant %q", key)
	}
	cfg.Normalize()
	return cfg, nil
}

// write validates and stores cfg, then invalidates. Callers hold the tenant lock.
func (a *Adapter) write(ctx context.Context, op, key string, cfg types.BrandConfig, eventType string) error {
	cfg = cfg.Clone()
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return a.writeFailed(op, key, err)
	}
	if err := a.backend.PutBrandConfig(ctx, key, cfg); err != nil {
		return a.writeFailed(op, key, classify(err))
	}
	metrics.StoreWrites.WithLabelValues(op, "ok").Inc()
	a.Invalidate(key)
	log.WithFields(log.Fields{"tenant": key, "op": op}).Info("brand config written")
	a.publish(ctx, types.BrandEvent{Type: eventType, Tenant: key})
	return nil
}

func (a *Adapter) writeFailed(op, key string, err error) error {
	metrics.StoreWrites.WithLabelValues(op, "error").Inc()
	log.WithError(err).WithFields(log.Fields{"tenant": key, "op": op}).Warn("brand config write rejected")
	return err
}

// publish notifies external subscribers. The write is already committed and local caches are
// already invalid, so a failure here is logged rather than returned.
func (a *Adapter) publish(ctx context.Context, evt types.BrandEvent) {
	if a.events == nil || a.topic == "" {
		return
	}
	if err := pub.PublishEvent(ctx, a.events, a.topic, evt); err != nil {
		log.WithError(err).WithFields(log.Fields{"tenant": evt.Tenant, "event": evt.Type}).Error("failed to publish brand event")
	}
}

// classify keeps the typed store errors and marks anything else as a store access failure.
func classify(err error) error {
	if errors.Is(err, types.ErrNotFound) || errors.Is(err, types.ErrConfigMalformed) || errors.Is(err, types.ErrDataStoreAccess) {
		return err
	}
	return types.Err(types.ErrDataStoreAccess, err, "")
}

type keyedMutex struct{ m sync.Map }

func (k *keyedMutex) lock(key string) (unlock func()) {
	v, _ := k.m.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
