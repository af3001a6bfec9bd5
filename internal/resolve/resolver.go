// Package resolve turns a code-or-identifier from a request into one canonical tenant identifier.
package resolve

import (
	"brandtheme/internal/ports"
	"brandtheme/internal/types"
	"context"
)

type Resolver struct {
	codes   ports.CodeResolver
	configs ports.BrandConfigs
}

func NewResolver(codes ports.CodeResolver, configs ports.BrandConfigs) *Resolver {
	return &Resolver{codes: codes, configs: configs}
}

// Resolve returns the lower-cased tenant identifier for codeOrID.
//
// The input is tried as a code first and only then as a direct identifier, so a code that equals a
// tenant identifier resolves to whatever the code maps to. A code lookup that fails (as opposed to
// an unknown code) also falls through to the direct-identifier check.
//
// Errors: types.ErrNotFound when neither interpretation matches; store failures from the
// direct-identifier check are returned as is.
func (r *Resolver) Resolve(ctx context.Context, codeOrID string) (string, error) {
	if r.codes.Exists(ctx, codeOrID) {
		tenant, err := r.codes.Resolve(ctx, codeOrID)
		if err != nil {
			return "", err
		}
		return types.NormalizeTenantID(tenant), nil
	}

	id := types.NormalizeTenantID(codeOrID)
	ok, err := r.configs.Exists(ctx, id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", types.Err(types.ErrNotFound, nil, "%q is not a valid code or brand", codeOrID)
	}
	return id, nil
}
