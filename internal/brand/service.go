// Package brand serves tenant brand configurations with every asset reference materialized as an
// absolute URL under the static base.
//
// Asset layout under the static base:
//
//	{static}/brands/{tenant}/images/{logo}
//	{static}/brands/{tenant}/images/placeholders/{path}
//	{static}/brands/{tenant}/fonts/{file}
//
// The generated stylesheet is not a static asset; it lives at {api}/api/fonts/{tenant}/fonts.css.
package brand

import (
	"brandtheme/internal/ports"
	"brandtheme/internal/types"
	"context"
	"strings"
)

type Service struct {
	configs       ports.BrandConfigs
	staticBaseURL string
	apiBaseURL    string
}

// NewService builds the service. An empty apiBaseURL derives it from staticBaseURL by dropping a
// trailing "/static".
func NewService(configs ports.BrandConfigs, staticBaseURL, apiBaseURL string) *Service {
	staticBaseURL = strings.TrimRight(staticBaseURL, "/")
	if apiBaseURL == "" {
		apiBaseURL = strings.TrimSuffix(staticBaseURL, "/static")
	}
	return &Service{
		configs:       configs,
		staticBaseURL: staticBaseURL,
		apiBaseURL:    strings.TrimRight(apiBaseURL, "/"),
	}
}

// GetConfig returns the raw configuration with relative asset references.
func (s *Service) GetConfig(ctx context.Context, tenantID string) (types.BrandConfig, error) {
	return s.configs.Get(ctx, tenantID)
}

func (s *Service) ListTenantIDs(ctx context.Context) ([]string, error) {
	return s.configs.ListIDs(ctx)
}

// LogoURLs maps each logo slot to its absolute URL.
func (s *Service) LogoURLs(tenantID string, logos map[string]string) map[string]string {
	out := make(map[string]string, len(logos))
	for slot, file := range logos {
		out[slot] = s.assetURL(tenantID, "images", file)
	}
	return out
}

// PlaceholderURLs maps each category and slot to its absolute URL.
func (s *Service) PlaceholderURLs(tenantID string, placeholders map[string]map[string]string) map[string]map[string]string {
	out := make(map[string]map[string]string, len(placeholders))
	for category, items := range placeholders {
		urls := make(map[string]string, len(items))
		for slot, path := range items {
			urls[slot] = s.assetURL(tenantID, "images", "placeholders", path)
		}
		out[category] = urls
	}
	return out
}

// FontVariantURLs returns a copy of family whose variant files are absolute URLs. Variant order is kept.
func (s *Service) FontVariantURLs(tenantID string, family types.FontFamily) types.FontFamily {
	out := types.FontFamily{Name: family.Name, Variants: make([]types.FontVariant, 0, len(family.Variants))}
	for _, v := range family.Variants {
		out.Variants = append(out.Variants, types.FontVariant{
			File:   s.assetURL(tenantID, "fonts", v.File),
			Weight: v.Weight,
			Style:  v.Style,
		})
	}
	return out
}

// StylesheetURL points at the API endpoint serving the generated font stylesheet.
func (s *Service) StylesheetURL(tenantID string) string {
	return s.apiBaseURL + "/api/fonts/" + tenantID + "/fonts.css"
}

// Theme assembles the full theme document for a resolved tenant.
func (s *Service) Theme(ctx context.Context, tenantID string) (types.Theme, error) {
	tenantID = types.NormalizeTenantID(tenantID)
	cfg, err := s.configs.Get(ctx, tenantID)
	if err != nil {
		return types.Theme{}, err
	}
	theme := types.Theme{
		CustomerName: cfg.CustomerName,
		Colors:       colorsOrEmpty(cfg.Colors),
		Fonts: types.ThemeFonts{
			Primary:  types.NewThemeFontFamily(s.FontVariantURLs(tenantID, *cfg.Fonts.Primary)),
			Fallback: cfg.Fonts.FallbackOrDefault(),
			CSSURL:   s.StylesheetURL(tenantID),
		},
		Logos:        s.LogoURLs(tenantID, cfg.Logos),
		Placeholders: s.PlaceholderURLs(tenantID, cfg.Placeholders),
	}
	if cfg.Fonts.Secondary != nil {
		secondary := types.NewThemeFontFamily(s.FontVariantURLs(tenantID, *cfg.Fonts.Secondary))
		theme.Fonts.Secondary = &secondary
	}
	return theme, nil
}

// Colors returns the colors-only projection for a resolved tenant.
func (s *Service) Colors(ctx context.Context, tenantID string) (types.ThemeColors, error) {
	cfg, err := s.configs.Get(ctx, tenantID)
	if err != nil {
		return types.ThemeColors{}, err
	}
	return types.ThemeColors{CustomerName: cfg.CustomerName, Colors: colorsOrEmpty(cfg.Colors)}, nil
}

func (s *Service) assetURL(tenantID string, parts ...string) string {
	return s.staticBaseURL + "/brands/" + tenantID + "/" + strings.Join(parts, "/")
}

func colorsOrEmpty(c map[string]string) map[string]string {
	if c == nil {
		return map[string]string{}
	}
	return c
}
