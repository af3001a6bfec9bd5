// Package fonts renders a tenant's @font-face stylesheet. Output is a pure function of the tenant's
// BrandConfig and the static base URL, so it is cached per tenant until the configuration changes.
package fonts

import (
	"brandtheme/internal/cache"
	"brandtheme/internal/types"
	"context"
	"fmt"
	"path"
	"strings"
)

// Source supplies the configuration and the absolute variant URLs; brand.Service implements it.
type Source interface {
	GetConfig(ctx context.Context, tenantID string) (types.BrandConfig, error)
	FontVariantURLs(tenantID string, family types.FontFamily) types.FontFamily
}

type Generator struct {
	source Source
	cache  *cache.Cache[string]
}

// NewGenerator builds a generator. Register it with store.Adapter.OnInvalidate so writes drop the
// affected stylesheet.
func NewGenerator(source Source, opts ...cache.Option) *Generator {
	return &Generator{source: source, cache: cache.New[string]("stylesheet", opts...)}
}

// Stylesheet returns the tenant's stylesheet. Two calls with no configuration write in between
// return identical text.
func (g *Generator) Stylesheet(ctx context.Context, tenantID string) (string, error) {
	key := types.NormalizeTenantID(tenantID)
	return g.cache.GetOrLoad(ctx, key, func(ctx context.Context) (string, error) {
		cfg, err := g.source.GetConfig(ctx, key)
		if err != nil {
			return "", err
		}
		return g.render(key, cfg), nil
	})
}

// Invalidate drops the tenant's cached stylesheet.
func (g *Generator) Invalidate(tenantID string) {
	g.cache.Invalidate(types.NormalizeTenantID(tenantID))
}

// Clear drops every cached stylesheet.
func (g *Generator) Clear() {
	g.cache.Clear()
}

func (g *Generator) render(tenantID string, cfg types.BrandConfig) string {
	fallback := cfg.Fonts.FallbackOrDefault()
	primary := cfg.Fonts.Primary
	secondaryName := primary.Name

	blocks := []string{
		fmt.Sprintf("/* Fonts for %s */", cfg.CustomerName),
		"/* Generated dynamically - DO NOT EDIT */\n",
		fmt.Sprintf("/* Primary Font: %s */", primary.Name),
	}
	blocks = append(blocks, g.fontFaces(tenantID, *primary)...)

	if sec := cfg.Fonts.Secondary; sec != nil {
		secondaryName = sec.Name
		blocks = append(blocks, fmt.Sprintf("\n/* Secondary Font: %s */", sec.Name))
		blocks = append(blocks, g.fontFaces(tenantID, *sec)...)
	}

	blocks = append(blocks, fmt.Sprintf(`
/* CSS Custom Properties */
:root {
  --font-primary: '%s', %s;
  --font-secondary: '%s', %s;
  --font-fallback: %s;
}`, primary.Name, fallback, secondaryName, fallback, fallback))

	return strings.Join(blocks, "\n\n")
}

func (g *Generator) fontFaces(tenantID string, family types.FontFamily) []string {
	withURLs := g.source.FontVariantURLs(tenantID, family)
	out := make([]string, 0, len(withURLs.Variants))
	for _, v := range withURLs.Variants {
		out = append(out, fontFace(family.Name, v))
	}
	return out
}

func fontFace(family string, v types.FontVariant) string {
	return fmt.Sprintf(`@font-face {
  font-family: '%s';
  src: url('%s') format('%s');
  font-weight: %d;
  font-style: %s;
  font-display: swap;
}`, family, v.File, FormatHint(v.File), v.Weight, v.Style)
}

var formatHints = map[string]string{
	"woff2": "woff2",
	"woff":  "woff",
	"ttf":   "truetype",
	"otf":   "opentype",
	"eot":   "embedded-opentype",
}

// FormatHint returns the CSS format() hint for a font file name or URL, judged by its extension.
// Unknown extensions are "truetype".
func FormatHint(file string) string {
	if i := strings.IndexAny(file, "?#"); i >= 0 {
		file = file[:i]
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(file), "."))
	if hint, ok := formatHints[ext]; ok {
		return hint
	}
	return "truetype"
}
