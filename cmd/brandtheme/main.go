package main

import (
	"brandtheme/cmd/brandtheme/cmds"
	"context"
	"os"

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

	if err := cmds.Execute(context.Background()); err != nil {
		log.WithError(err).Fatal("brandtheme failed")
	}
}
