package types

// Theme is the resolved, URL-materialized document served to frontends.
type Theme struct {
	CustomerName string                       `json:"customerName"`
	Colors       map[string]string            `json:"colors"`
	Fonts        ThemeFonts                   `json:"fonts"`
	Logos        map[string]string            `json:"logos"`
	Placeholders map[string]map[string]string `json:"placeholders"`
}

type ThemeFonts struct {
	Primary   ThemeFontFamily  `json:"primary"`
	Secondary *ThemeFontFamily `json:"secondary"`
	Fallback  string           `json:"fallback"`
	CSSURL    string           `json:"cssUrl"`
}

type ThemeFontFamily struct {
	Name     string             `json:"name"`
	Variants []ThemeFontVariant `json:"variants"`
}

type ThemeFontVariant struct {
	Src    string `json:"src"`
	Weight int    `json:"weight"`
	Style  string `json:"style"`
}

// ThemeColors is the colors-only projection of a theme.
type ThemeColors struct {
	CustomerName string            `json:"customerName"`
	Colors       map[string]string `json:"colors"`
}

// NewThemeFontFamily converts a family whose variant files are already absolute URLs.
func NewThemeFontFamily(f FontFamily) ThemeFontFamily {
	out := ThemeFontFamily{Name: f.Name, Variants: make([]ThemeFontVariant, 0, len(f.Variants))}
	for _, v := range f.Variants {
		out.Variants = append(out.Variants, ThemeFontVariant{Src: v.File, Weight: v.Weight, Style: v.Style})
	}
	return out
}
