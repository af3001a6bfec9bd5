package types

import (
	"fmt"
	"sort"
	"strings"
)

// BrandConfig is stored per tenant in the configuration store and cached in-process.
// CustomerName is for display purposes only.
// Colors maps a color role (see ColorRoles) to a CSS color value.
// Logos maps a logo slot (header, favicon, ...) to a filename relative to the tenant's images directory.
// Placeholders maps a category (car, moto, ...) to slot -> path relative to the tenant's placeholders directory.
type BrandConfig struct {
	CustomerName string                       `json:"customerName" yaml:"customerName" dynamodbav:"customerName"`
	Colors       map[string]string            `json:"colors" yaml:"colors" dynamodbav:"colors"`
	Fonts        FontSet                      `json:"fonts" yaml:"fonts" dynamodbav:"fonts"`
	Logos        map[string]string            `json:"logos" yaml:"logos" dynamodbav:"logos"`
	Placeholders map[string]map[string]string `json:"placeholders" yaml:"placeholders" dynamodbav:"placeholders"`
}

// FontSet holds the tenant's font families. Primary is required; Secondary is optional and
// Fallback defaults to DefaultFontFallback.
type FontSet struct {
	Primary   *FontFamily `json:"primary" yaml:"primary" dynamodbav:"primary"`
	Secondary *FontFamily `json:"secondary,omitempty" yaml:"secondary,omitempty" dynamodbav:"secondary,omitempty"`
	Fallback  string      `json:"fallback,omitempty" yaml:"fallback,omitempty" dynamodbav:"fallback,omitempty"`
}

type FontFamily struct {
	Name     string        `json:"name" yaml:"name" dynamodbav:"name"`
	Variants []FontVariant `json:"variants" yaml:"variants" dynamodbav:"variants"`
}

// FontVariant is one (weight, style) instance of a family. File is relative to the tenant's fonts
// directory when stored and an absolute URL once materialized.
type FontVariant struct {
	File   string `json:"file" yaml:"file" dynamodbav:"file"`
	Weight int    `json:"weight" yaml:"weight" dynamodbav:"weight"`
	Style  string `json:"style" yaml:"style" dynamodbav:"style"`
}

const (
	DefaultFontFallback = "Arial, sans-serif"

	FontStyleNormal = "normal"
	FontStyleItalic = "italic"

	MinFontWeight = 100
	MaxFontWeight = 900

	FontSlotPrimary   = "primary"
	FontSlotSecondary = "secondary"
)

// ColorRoles is the fixed set of color role names a BrandConfig may define.
var ColorRoles = []string{
	"primary", "primaryDisabled", "secondary", "link",
	"background", "backgroundSecondary", "headerBackground",
	"navBar", "navBarSecondary",
	"text", "textSecondary", "border", "overlay",
	"error", "errorBackground", "errorText", "success", "warning",
	"buttonNext", "buttonNextDisabled", "buttonNextText",
	"buttonBack", "buttonBackDisabled", "buttonBackText",
	"skeleton",
}

var colorRoleSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(ColorRoles))
	for _, r := range ColorRoles {
		m[r] = struct{}{}
	}
	return m
}()

// IsColorRole reports whether role is one of ColorRoles.
func IsColorRole(role string) bool {
	_, ok := colorRoleSet[role]
	return ok
}

// NormalizeTenantID returns the canonical (lower-case) form of a tenant identifier.
func NormalizeTenantID(id string) string {
	return strings.ToLower(id)
}

// FallbackOrDefault returns the configured fallback stack or DefaultFontFallback.
func (f FontSet) FallbackOrDefault() string {
	if strings.TrimSpace(f.Fallback) == "" {
		return DefaultFontFallback
	}
	return f.Fallback
}

// SortVariants orders variants by (weight, style) in place.
func (f *FontFamily) SortVariants() {
	sort.SliceStable(f.Variants, func(i, j int) bool {
		a, b := f.Variants[i], f.Variants[j]
		if a.Weight != b.Weight {
			return a.Weight < b.Weight
		}
		return a.Style < b.Style
	})
}

// UpsertVariant replaces the file of the variant sharing v's (weight, style), or appends v.
// The variants stay sorted by (weight, style). It reports whether an existing variant was replaced.
func (f *FontFamily) UpsertVariant(v FontVariant) bool {
	replaced := false
	for i := range f.Variants {
		if f.Variants[i].Weight == v.Weight && f.Variants[i].Style == v.Style {
			f.Variants[i].File = v.File
			replaced = true
			break
		}
	}
	if !replaced {
		f.Variants = append(f.Variants, v)
	}
	f.SortVariants()
	return replaced
}

// RemoveVariant drops the variant at (weight, style). It reports whether one was removed.
func (f *FontFamily) RemoveVariant(weight int, style string) bool {
	for i := range f.Variants {
		if f.Variants[i].Weight == weight && f.Variants[i].Style == style {
			f.Variants = append(f.Variants[:i:i], f.Variants[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy so cached values are never mutated by callers.
func (c BrandConfig) Clone() BrandConfig {
	out := BrandConfig{
		CustomerName: c.CustomerName,
		Colors:       cloneStrings(c.Colors),
		Fonts: FontSet{
			Primary:   c.Fonts.Primary.clone(),
			Secondary: c.Fonts.Secondary.clone(),
			Fallback:  c.Fonts.Fallback,
		},
		Logos: cloneStrings(c.Logos),
	}
	if c.Placeholders != nil {
		out.Placeholders = make(map[string]map[string]string, len(c.Placeholders))
		for k, v := range c.Placeholders {
			out.Placeholders[k] = cloneStrings(v)
		}
	}
	return out
}

func (f *FontFamily) clone() *FontFamily {
	if f == nil {
		return nil
	}
	out := &FontFamily{Name: f.Name}
	if f.Variants != nil {
		out.Variants = append([]FontVariant(nil), f.Variants...)
	}
	return out
}

func cloneStrings(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// CheckRequired verifies the fields a reader cannot default: customerName and the primary family name.
// A failure wraps ErrConfigMalformed.
func (c BrandConfig) CheckRequired() error {
	if strings.TrimSpace(c.CustomerName) == "" {
		return fmt.Errorf("%w: customerName is required", ErrConfigMalformed)
	}
	if c.Fonts.Primary == nil {
		return fmt.Errorf("%w: fonts.primary is required", ErrConfigMalformed)
	}
	if strings.TrimSpace(c.Fonts.Primary.Name) == "" {
		return fmt.Errorf("%w: fonts.primary.name is required", ErrConfigMalformed)
	}
	return nil
}

// Validate is the write-time check: required fields plus recognized color roles and well-formed,
// unique font variants. A failure wraps ErrInvalidBrandConfig.
func (c BrandConfig) Validate() error {
	if err := c.CheckRequired(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBrandConfig, err)
	}
	for role := range c.Colors {
		if !IsColorRole(role) {
			return fmt.Errorf("%w: unknown color role %q", ErrInvalidBrandConfig, role)
		}
	}
	if err := c.Fonts.Primary.validate(FontSlotPrimary); err != nil {
		return err
	}
	if c.Fonts.Secondary != nil {
		if err := c.Fonts.Secondary.validate(FontSlotSecondary); err != nil {
			return err
		}
	}
	return nil
}

func (f *FontFamily) validate(slot string) error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: fonts.%s.name is required", ErrInvalidBrandConfig, slot)
	}
	seen := make(map[string]struct{}, len(f.Variants))
	for _, v := range f.Variants {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("fonts.%s: %w", slot, err)
		}
		k := fmt.Sprintf("%d/%s", v.Weight, v.Style)
		if _, dup := seen[k]; dup {
			return fmt.Errorf("%w: fonts.%s has more than one %d %s variant", ErrInvalidBrandConfig, slot, v.Weight, v.Style)
		}
		seen[k] = struct{}{}
	}
	return nil
}

func (v FontVariant) Validate() error {
	if strings.TrimSpace(v.File) == "" {
		return fmt.Errorf("%w: variant file is required", ErrInvalidBrandConfig)
	}
	if v.Weight < MinFontWeight || v.Weight > MaxFontWeight {
		return fmt.Errorf("%w: variant weight must be within [%d,%d], got %d", ErrInvalidBrandConfig, MinFontWeight, MaxFontWeight, v.Weight)
	}
	if v.Style != FontStyleNormal && v.Style != FontStyleItalic {
		return fmt.Errorf("%w: variant style must be %q or %q, got %q", ErrInvalidBrandConfig, FontStyleNormal, FontStyleItalic, v.Style)
	}
	return nil
}

// Normalize sorts every family's variants so reads are deterministic.
func (c *BrandConfig) Normalize() {
	if c.Fonts.Primary != nil {
		c.Fonts.Primary.SortVariants()
	}
	if c.Fonts.Secondary != nil {
		c.Fonts.Secondary.SortVariants()
	}
}
