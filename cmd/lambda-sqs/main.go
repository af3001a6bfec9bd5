//go:build lambda

package main

import (
	"brandtheme/internal/api"
	"brandtheme/internal/backends"
	"brandtheme/internal/cache"
	"brandtheme/internal/config"
	"brandtheme/internal/ingest"
	"brandtheme/internal/pub"
	"brandtheme/internal/store"
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Info("The .env file not found.")
	}

	ctx := context.Background()

	settings, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Failed to read settings: %v", err)
	}

	backend, err := backends.ConfigBackendFromEnv(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize config store: %v", err)
	}

	opts := []store.Option{store.WithCacheOptions(cache.FromSettings(settings)...)}
	if settings.InvalidationTopicARN != "" {
		publisher, err := pub.NewSNSFromConfig(ctx, settings.SNSEndpoint)
		if err != nil {
			log.Fatalf("Failed to initialize SNS publisher: %v", err)
		}
		opts = append(opts, store.WithEvents(publisher, settings.InvalidationTopicARN))
	}

	adapter := store.NewAdapter(backend, opts...)
	if settings.InvalidationHook {
		hook, err := api.NewInvalidationHook(settings.InvalidationHookURL, api.WithHookTimeout(settings.InvalidationHookTimeout))
		if err != nil {
			log.Fatalf("Failed to initialize invalidation hook: %v", err)
		}
		adapter.OnInvalidate(hook)
	}

	handler := ingest.NewHandler(adapter)

	// Start Lambda runtime
	lambda.Start(handler.HandleSQSEvent)
}
