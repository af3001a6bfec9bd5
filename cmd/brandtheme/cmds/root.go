// Package cmds holds the brandtheme command line: the HTTP server and the maintenance commands that
// edit the configuration store through the same adapter the server uses.
package cmds

import (
	"brandtheme/internal/api"
	"brandtheme/internal/backends"
	"brandtheme/internal/cache"
	"brandtheme/internal/config"
	"brandtheme/internal/pub"
	"brandtheme/internal/store"
	"context"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCmd assembles the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "brandtheme",
		Short:         "Per-tenant brand theme service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := config.FromEnv()
			if err != nil {
				return err
			}
			return configureLogging(settings)
		},
	}
	root.AddCommand(
		newServeCmd(),
		newConfigCmd(),
		newFontCmd(),
		newColorsCmd(),
		newResolveCmd(),
	)
	return root
}

// Execute runs the root command against os.Args.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func configureLogging(s config.Settings) error {
	level, err := log.ParseLevel(s.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", config.LogLevelKey, err)
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	switch strings.ToLower(s.LogFormat) {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// openStore builds the store adapter from the environment, with event publication when a topic is
// configured.
func openStore(ctx context.Context) (*store.Adapter, config.Settings, error) {
	settings, err := config.FromEnv()
	if err != nil {
		return nil, config.Settings{}, err
	}
	backend, err := backends.ConfigBackendFromEnv(ctx)
	if err != nil {
		return nil, config.Settings{}, err
	}
	opts := []store.Option{store.WithCacheOptions(cache.FromSettings(settings)...)}
	if settings.InvalidationTopicARN != "" {
		p, err := pub.NewSNSFromConfig(ctx, settings.SNSEndpoint)
		if err != nil {
			return nil, config.Settings{}, fmt.Errorf("sns publisher: %w", err)
		}
		opts = append(opts, store.WithEvents(p, settings.InvalidationTopicARN))
	}
	return store.NewAdapter(backend, opts...), settings, nil
}

// openWriter is openStore for commands that write: after each write the running server is told
// to drop what it cached for the tenant.
func openWriter(ctx context.Context) (*store.Adapter, error) {
	adapter, settings, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := registerHook(adapter, settings); err != nil {
		return nil, err
	}
	return adapter, nil
}

func registerHook(adapter *store.Adapter, settings config.Settings) error {
	if !settings.InvalidationHook {
		return nil
	}
	hook, err := api.NewInvalidationHook(settings.InvalidationHookURL, api.WithHookTimeout(settings.InvalidationHookTimeout))
	if err != nil {
		return fmt.Errorf("%s: %w", config.InvalidationHookURLKey, err)
	}
	adapter.OnInvalidate(hook)
	return nil
}
