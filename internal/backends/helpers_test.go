package backends

import (
	"brandtheme/internal/backends/file"
	"brandtheme/internal/backends/memory"
	"brandtheme/internal/types"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
)

type BackendsTestSuite struct {
	suite.Suite
}

func TestBackendsTestSuite(t *testing.T) {
	suite.Run(t, new(BackendsTestSuite))
}

func (s *BackendsTestSuite) TestDefaultsToFile() {
	s.T().Setenv(ConfigBackendEnvKey, "")
	s.T().Setenv(BrandsConfigPathKey, filepath.Join(s.T().TempDir(), "brands.json"))
	store, err := ConfigBackendFromEnv(context.Background())
	s.NoError(err)
	s.IsType(&file.ConfigStore{}, store)
}

func (s *BackendsTestSuite) TestMemory() {
	s.T().Setenv(ConfigBackendEnvKey, BackendMemory)
	store, err := ConfigBackendFromEnv(context.Background())
	s.NoError(err)
	s.IsType(&memory.ConfigStore{}, store)
}

func (s *BackendsTestSuite) TestUnknownBackend() {
	s.T().Setenv(ConfigBackendEnvKey, "cassandra")
	_, err := ConfigBackendFromEnv(context.Background())
	s.ErrorIs(err, types.ErrInvalidBackend)
}
