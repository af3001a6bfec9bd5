package store

import (
	"brandtheme/internal/types"
	"context"
	"fmt"
	"strings"
)

// UpsertFontVariant adds v to the family in slot, or replaces the file of the variant with the same
// (weight, style). A missing secondary family is created with familyName; a non-empty familyName
// renames an existing family. It reports whether an existing variant was replaced.
func (a *Adapter) UpsertFontVariant(ctx context.Context, tenantID, slot, familyName string, v types.FontVariant) (bool, error) {
	if err := v.Validate(); err != nil {
		return false, err
	}
	replaced := false
	err := a.modify(ctx, "font_upsert", tenantID, func(cfg *types.BrandConfig) error {
		fam, err := familyFor(cfg, slot, true)
		if err != nil {
			return err
		}
		if name := strings.TrimSpace(familyName); name != "" {
			fam.Name = name
		}
		replaced = fam.UpsertVariant(v)
		return nil
	})
	return replaced, err
}

// DeleteFontVariant removes the (weight, style) variant from the family in slot.
// It returns types.ErrNotFound when the family or the variant does not exist.
func (a *Adapter) DeleteFontVariant(ctx context.Context, tenantID, slot string, weight int, style string) error {
	return a.modify(ctx, "font_delete", tenantID, func(cfg *types.BrandConfig) error {
		fam, err := familyFor(cfg, slot, false)
		if err != nil {
			return err
		}
		if !fam.RemoveVariant(weight, style) {
			return types.Err(types.ErrNotFound, nil, "fonts.%s has no %d %s variant", slot, weight, style)
		}
		return nil
	})
}

// UpdateColors merges colors into the tenant's color map. Every key must be a known color role.
func (a *Adapter) UpdateColors(ctx context.Context, tenantID string, colors map[string]string) error {
	for role := range colors {
		if !types.IsColorRole(role) {
			return fmt.Errorf("%w: unknown color role %q", types.ErrInvalidBrandConfig, role)
		}
	}
	return a.modify(ctx, "colors", tenantID, func(cfg *types.BrandConfig) error {
		if cfg.Colors == nil {
			cfg.Colors = make(map[string]string, len(colors))
		}
		for role, value := range colors {
			cfg.Colors[role] = value
		}
		return nil
	})
}

// modify runs a read-modify-write of one tenant's document under the tenant lock. It reads the
// backend, not the cache, so concurrent modifications compose.
func (a *Adapter) modify(ctx context.Context, op, tenantID string, fn func(*types.BrandConfig) error) error {
	key := types.NormalizeTenantID(tenantID)
	unlock := a.locks.lock(key)
	defer unlock()

	cfg, err := a.backend.GetBrandConfig(ctx, key)
	if err != nil {
		return a.writeFailed(op, key, classify(err))
	}
	if err := fn(&cfg); err != nil {
		return a.writeFailed(op, key, err)
	}
	return a.write(ctx, op, key, cfg, types.EventBrandUpdated)
}

func familyFor(cfg *types.BrandConfig, slot string, create bool) (*types.FontFamily, error) {
	switch slot {
	case types.FontSlotPrimary:
		if cfg.Fonts.Primary == nil {
			if !create {
				return nil, types.Err(types.ErrNotFound, nil, "fonts.primary is not set")
			}
			cfg.Fonts.Primary = &types.FontFamily{}
		}
		return cfg.Fonts.Primary, nil
	case types.FontSlotSecondary:
		if cfg.Fonts.Secondary == nil {
			if !create {
				return nil, types.Err(types.ErrNotFound, nil, "fonts.secondary is not set")
			}
			cfg.Fonts.Secondary = &types.FontFamily{}
		}
		return cfg.Fonts.Secondary, nil
	default:
		return nil, fmt.Errorf("%w: unknown font slot %q", types.ErrInvalidBrandConfig, slot)
	}
}
