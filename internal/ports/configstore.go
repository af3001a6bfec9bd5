package ports

import (
	"brandtheme/internal/types"
	"context"
)

// ConfigStore is the backend holding tenant identifier -> BrandConfig. It is the single source of truth;
// the in-process caching and invalidation live in store.Adapter on top of it.
// Tenant identifiers passed in are already lower-cased.
type ConfigStore interface {
	// GetBrandConfig returns the configuration for a tenant.
	// MUST return types.ErrNotFound if the tenant does not exist.
	GetBrandConfig(ctx context.Context, tenantID string) (types.BrandConfig, error)

	// ListTenants returns every tenant identifier, sorted ascending.
	ListTenants(ctx context.Context) ([]string, error)

	// PutBrandConfig atomically replaces (or creates) the whole document for a tenant.
	PutBrandConfig(ctx context.Context, tenantID string, config types.BrandConfig) error

	DeleteBrandConfig(ctx context.Context, tenantID string) error

	// ClearAll purges all brand configurations. Used in tests only.
	ClearAll(ctx context.Context) error
}
