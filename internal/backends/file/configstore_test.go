package file

import (
	"brandtheme/internal/types"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
)

type FileStoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	path  string
	store *ConfigStore
}

func TestFileStoreTestSuite(t *testing.T) {
	suite.Run(t, new(FileStoreTestSuite))
}

func (s *FileStoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.path = filepath.Join(s.T().TempDir(), "config", "brands.json")
	s.store = NewConfigStore(s.path)
}

func sample(name string) types.BrandConfig {
	return types.BrandConfig{
		CustomerName: name,
		Colors:       map[string]string{"primary": "#ff0000"},
		Fonts: types.FontSet{
			Primary: &types.FontFamily{Name: "Inter", Variants: []types.FontVariant{
				{File: "Inter-Regular.woff2", Weight: 400, Style: "normal"},
			}},
		},
		Logos: map[string]string{"header": "logo.svg"},
	}
}

func (s *FileStoreTestSuite) TestMissingFileIsEmpty() {
	ids, err := s.store.ListTenants(s.ctx)
	s.NoError(err)
	s.Empty(ids)

	_, err = s.store.GetBrandConfig(s.ctx, "acme")
	s.ErrorIs(err, types.ErrNotFound)
}

func (s *FileStoreTestSuite) TestPutGetListDelete() {
	s.Require().NoError(s.store.PutBrandConfig(s.ctx, "zeta", sample("Zeta")))
	s.Require().NoError(s.store.PutBrandConfig(s.ctx, "acme", sample("Acme")))

	cfg, err := s.store.GetBrandConfig(s.ctx, "acme")
	s.NoError(err)
	s.Equal("Acme", cfg.CustomerName)
	s.Equal("Inter-Regular.woff2", cfg.Fonts.Primary.Variants[0].File)

	ids, err := s.store.ListTenants(s.ctx)
	s.NoError(err)
	s.Equal([]string{"acme", "zeta"}, ids)

	s.NoError(s.store.DeleteBrandConfig(s.ctx, "zeta"))
	ids, err = s.store.ListTenants(s.ctx)
	s.NoError(err)
	s.Equal([]string{"acme"}, ids)

	s.NoError(s.store.ClearAll(s.ctx))
	ids, err = s.store.ListTenants(s.ctx)
	s.NoError(err)
	s.Empty(ids)
}

func (s *FileStoreTestSuite) TestReplaceLeavesNoTempFiles() {
	s.Require().NoError(s.store.PutBrandConfig(s.ctx, "acme", sample("Acme")))
	s.Require().NoError(s.store.PutBrandConfig(s.ctx, "acme", sample("Acme Two")))

	entries, err := os.ReadDir(filepath.Dir(s.path))
	s.NoError(err)
	s.Len(entries, 1)

	cfg, err := s.store.GetBrandConfig(s.ctx, "acme")
	s.NoError(err)
	s.Equal("Acme Two", cfg.CustomerName)
}

func (s *FileStoreTestSuite) TestMalformedTenantIsIsolated() {
	doc := `{"acme": {"customerName": "Acme", "fonts": {"primary": {"name": "Inter", "variants": [{"file": "a.woff2", "weight": "bold", "style": "normal"}]}}},
	         "beta": {"customerName": "Beta", "fonts": {"primary": {"name": "Inter", "variants": []}}}}`
	s.Require().NoError(os.MkdirAll(filepath.Dir(s.path), 0o755))
	s.Require().NoError(os.WriteFile(s.path, []byte(doc), 0o644))

	_, err := s.store.GetBrandConfig(s.ctx, "acme")
	s.ErrorIs(err, types.ErrConfigMalformed)

	cfg, err := s.store.GetBrandConfig(s.ctx, "beta")
	s.NoError(err)
	s.Equal("Beta", cfg.CustomerName)
}

func (s *FileStoreTestSuite) TestBrokenDocumentIsAccessError() {
	s.Require().NoError(os.MkdirAll(filepath.Dir(s.path), 0o755))
	s.Require().NoError(os.WriteFile(s.path, []byte("{not json"), 0o644))

	_, err := s.store.ListTenants(s.ctx)
	s.ErrorIs(err, types.ErrDataStoreAccess)
}
