package redis

import (
	"brandtheme/internal/types"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	configKeyNameTemplate = "_brandtheme_cfg_%s"
	tenantSetKey          = "_brandtheme_tenants"
)

type ConfigStore struct {
	cli *redis.Client
}

func NewConfigStore(cli *redis.Client) *ConfigStore {
	return &ConfigStore{cli: cli}
}

func (s *ConfigStore) GetBrandConfig(ctx context.Context, tenantID string) (types.BrandConfig, error) {
	out := s.cli.Get(ctx, getConfigKey(tenantID))
	if err := out.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return types.BrandConfig{}, types.ErrNotFound
		}
		return types.BrandConfig{}, types.Err(types.ErrDataStoreAccess, err, "")
	}
	var cfg types.BrandConfig
	if err := json.Unmarshal([]byte(out.Val()), &cfg); err != nil {
		return types.BrandConfig{}, types.Err(types.ErrConfigMalformed, err, "tenant %q", tenantID)
	}
	return cfg, nil
}

func (s *ConfigStore) ListTenants(ctx context.Context) ([]string, error) {
	ids, err := s.cli.SMembers(ctx, tenantSetKey).Result()
	if err != nil {
		return nil, types.Err(types.ErrDataStoreAccess, err, "")
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *ConfigStore) PutBrandConfig(ctx context.Context, tenantID string, config types.BrandConfig) error {
	out, err := json.Marshal(config)
	if err != nil {
		return err
	}
	// The document and its set membership change together.
	_, err = s.cli.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, getConfigKey(tenantID), string(out), 0)
		p.SAdd(ctx, tenantSetKey, tenantID)
		return nil
	})
	if err != nil {
		return types.Err(types.ErrDataStoreAccess, err, "")
	}
	return nil
}

func (s *ConfigStore) DeleteBrandConfig(ctx context.Context, tenantID string) error {
	_, err := s.cli.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, getConfigKey(tenantID))
		p.SRem(ctx, tenantSetKey, tenantID)
		return nil
	})
	if err != nil {
		return types.Err(types.ErrDataStoreAccess, err, "")
	}
	return nil
}

func (s *ConfigStore) ClearAll(ctx context.Context) error {
	ids, err := s.cli.SMembers(ctx, tenantSetKey).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, getConfigKey(id))
	}
	keys = append(keys, tenantSetKey)
	log.WithField("tenants", len(ids)).Debug("clearing brand configs")
	return s.cli.Del(ctx, keys...).Err()
}

func getConfigKey(id string) string {
	return fmt.Sprintf(configKeyNameTemplate, id)
}
