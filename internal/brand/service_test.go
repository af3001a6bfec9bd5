package brand

import (
	"brandtheme/internal/backends/memory"
	"brandtheme/internal/store"
	"brandtheme/internal/types"
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
)

type BrandServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	adapter *store.Adapter
	svc     *Service
}

func TestBrandServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BrandServiceTestSuite))
}

func (s *BrandServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.adapter = store.NewAdapter(memory.NewConfigStore(map[string]types.BrandConfig{
		"acme": {
			CustomerName: "Acme",
			Colors:       map[string]string{"primary": "#ff0000"},
			Fonts: types.FontSet{
				Primary: &types.FontFamily{Name: "Inter", Variants: []types.FontVariant{
					{File: "Inter-Bold.woff2", Weight: 700, Style: "normal"},
					{File: "Inter-Regular.woff2", Weight: 400, Style: "normal"},
				}},
				Secondary: &types.FontFamily{Name: "Merriweather", Variants: []types.FontVariant{
					{File: "Merriweather.ttf", Weight: 400, Style: "normal"},
				}},
				Fallback: "Helvetica, sans-serif",
			},
			Logos: map[string]string{"header": "logo.svg", "favicon": "favicon.ico"},
			Placeholders: map[string]map[string]string{
				"car": {"front": "car/front.png", "back": "car/back.png"},
			},
		},
		"beta": {
			CustomerName: "Beta",
			Fonts:        types.FontSet{Primary: &types.FontFamily{Name: "Roboto"}},
		},
	}))
	s.svc = NewService(s.adapter, "https://cdn.example.com/static/", "")
}

func (s *BrandServiceTestSuite) TestLogoURLs() {
	urls := s.svc.LogoURLs("acme", map[string]string{"header": "logo.svg"})
	s.Equal(map[string]string{"header": "https://cdn.example.com/static/brands/acme/images/logo.svg"}, urls)
}

func (s *BrandServiceTestSuite) TestPlaceholderURLs() {
	urls := s.svc.PlaceholderURLs("acme", map[string]map[string]string{"moto": {"side": "moto/side.png"}})
	s.Equal("https://cdn.example.com/static/brands/acme/images/placeholders/moto/side.png", urls["moto"]["side"])
}

func (s *BrandServiceTestSuite) TestFontVariantURLsKeepOrderAndInput() {
	in := types.FontFamily{Name: "Inter", Variants: []types.FontVariant{
		{File: "b.woff2", Weight: 700, Style: "normal"},
		{File: "a.woff2", Weight: 400, Style: "normal"},
	}}
	out := s.svc.FontVariantURLs("acme", in)
	s.Equal("Inter", out.Name)
	s.Equal("https://cdn.example.com/static/brands/acme/fonts/b.woff2", out.Variants[0].File)
	s.Equal(700, out.Variants[0].Weight)
	s.Equal("a.woff2", in.Variants[1].File)
}

func (s *BrandServiceTestSuite) TestStylesheetURL() {
	s.Equal("https://cdn.example.com/api/fonts/acme/fonts.css", s.svc.StylesheetURL("acme"))

	svc := NewService(s.adapter, "https://cdn.example.com/static", "https://api.example.com/")
	s.Equal("https://api.example.com/api/fonts/acme/fonts.css", svc.StylesheetURL("acme"))
}

func (s *BrandServiceTestSuite) TestTheme() {
	theme, err := s.svc.Theme(s.ctx, "ACME")
	s.Require().NoError(err)

	s.Equal("Acme", theme.CustomerName)
	s.Equal("#ff0000", theme.Colors["primary"])
	s.Equal("https://cdn.example.com/static/brands/acme/images/favicon.ico", theme.Logos["favicon"])
	s.Equal("https://cdn.example.com/static/brands/acme/images/placeholders/car/back.png", theme.Placeholders["car"]["back"])

	s.Equal("Inter", theme.Fonts.Primary.Name)
	s.Require().Len(theme.Fonts.Primary.Variants, 2)
	s.Equal(types.ThemeFontVariant{Src: "https://cdn.example.com/static/brands/acme/fonts/Inter-Regular.woff2", Weight: 400, Style: "normal"},
		theme.Fonts.Primary.Variants[0])
	s.Require().NotNil(theme.Fonts.Secondary)
	s.Equal("Merriweather", theme.Fonts.Secondary.Name)
	s.Equal("Helvetica, sans-serif", theme.Fonts.Fallback)
	s.Equal("https://cdn.example.com/api/fonts/acme/fonts.css", theme.Fonts.CSSURL)
}

func (s *BrandServiceTestSuite) TestThemeDefaultsOptionalFields() {
	theme, err := s.svc.Theme(s.ctx, "beta")
	s.Require().NoError(err)
	s.Nil(theme.Fonts.Secondary)
	s.Equal(types.DefaultFontFallback, theme.Fonts.Fallback)
	s.NotNil(theme.Colors)
	s.Empty(theme.Logos)
	s.Empty(theme.Placeholders)
	s.Empty(theme.Fonts.Primary.Variants)
}

func (s *BrandServiceTestSuite) TestThemeNotFound() {
	_, err := s.svc.Theme(s.ctx, "nope")
	s.ErrorIs(err, types.ErrNotFound)

	_, err = s.svc.Colors(s.ctx, "nope")
	s.ErrorIs(err, types.ErrNotFound)
}

func (s *BrandServiceTestSuite) TestColors() {
	c, err := s.svc.Colors(s.ctx, "acme")
	s.Require().NoError(err)
	s.Equal("Acme", c.CustomerName)
	s.Equal(map[string]string{"primary": "#ff0000"}, c.Colors)
}

func (s *BrandServiceTestSuite) TestGetConfigAndList() {
	cfg, err := s.svc.GetConfig(s.ctx, "Acme")
	s.Require().NoError(err)
	s.Equal("logo.svg", cfg.Logos["header"])

	ids, err := s.svc.ListTenantIDs(s.ctx)
	s.NoError(err)
	s.Equal([]string{"acme", "beta"}, ids)
}

func (s *BrandServiceTestSuite) TestThemeFollowsWrites() {
	_, err := s.svc.Theme(s.ctx, "acme")
	s.Require().NoError(err)

	s.Require().NoError(s.adapter.UpdateColors(s.ctx, "acme", map[string]string{"primary": "#00ff00"}))
	theme, err := s.svc.Theme(s.ctx, "acme")
	s.NoError(err)
	s.Equal("#00ff00", theme.Colors["primary"])
}
