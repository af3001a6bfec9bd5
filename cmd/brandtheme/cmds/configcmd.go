package cmds

import (
	"brandtheme/internal/codes"
	"brandtheme/internal/resolve"
	"brandtheme/internal/store"
	"brandtheme/internal/types"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// PutConfig loads a YAML (or JSON) document of tenant -> BrandConfig and writes every tenant through
// the adapter, creating new tenants and replacing existing ones. All tenants are validated before the
// first write, so an invalid document changes nothing. It returns the number of tenants written.
func PutConfig(ctx context.Context, adapter *store.Adapter, path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	doc := map[string]types.BrandConfig{}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(doc) == 0 {
		return 0, fmt.Errorf("%s: no tenants defined", path)
	}

	ids := make([]string, 0, len(doc))
	for id, cfg := range doc {
		if strings.TrimSpace(id) == "" {
			return 0, fmt.Errorf("%w: empty tenant identifier", types.ErrInvalidBrandConfig)
		}
		if err := cfg.Validate(); err != nil {
			return 0, fmt.Errorf("tenant %q: %w", id, err)
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		err := adapter.Create(ctx, id, doc[id])
		if errors.Is(err, types.ErrAlreadyExists) {
			err = adapter.Replace(ctx, id, doc[id])
		}
		if err != nil {
			return 0, fmt.Errorf("tenant %q: %w", id, err)
		}
		log.WithField("tenant", types.NormalizeTenantID(id)).Info("brand config stored")
	}
	return len(ids), nil
}

// GetConfig renders one tenant's stored configuration as YAML.
func GetConfig(ctx context.Context, adapter *store.Adapter, tenantID string) ([]byte, error) {
	cfg, err := adapter.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(map[string]types.BrandConfig{types.NormalizeTenantID(tenantID): cfg})
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and write brand configurations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "put <file>",
		Short: "Create or replace the tenants defined in a YAML/JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := openWriter(cmd.Context())
			if err != nil {
				return err
			}
			n, err := PutConfig(cmd.Context(), adapter, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d tenant(s) written\n", n)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <tenant>",
		Short: "Print a tenant's configuration as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, _, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			out, err := GetConfig(cmd.Context(), adapter, args[0])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tenant identifiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			adapter, _, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			ids, err := adapter.ListIDs(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <tenant>",
		Short: "Remove a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := openWriter(cmd.Context())
			if err != nil {
				return err
			}
			return adapter.Delete(cmd.Context(), args[0])
		},
	})
	return cmd
}

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <code-or-tenant>",
		Short: "Print the tenant identifier a code or identifier resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, settings, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			cr, err := codes.FromSettings(settings)
			if err != nil {
				return err
			}
			tenant, err := resolve.NewResolver(cr, adapter).Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tenant)
			return nil
		},
	}
}
