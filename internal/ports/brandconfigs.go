package ports

import (
	"brandtheme/internal/types"
	"context"
)

// BrandConfigs is the cached, case-insensitive read side of the configuration store that the
// resolution services consume. store.Adapter implements it.
type BrandConfigs interface {
	// Get MUST return types.ErrNotFound for an unknown tenant and types.ErrConfigMalformed when the
	// stored document lacks a required field.
	Get(ctx context.Context, tenantID string) (types.BrandConfig, error)

	// Exists is true for every stored tenant, malformed ones included.
	Exists(ctx context.Context, tenantID string) (bool, error)

	// ListIDs returns every tenant identifier in ascending order.
	ListIDs(ctx context.Context) ([]string, error)
}
