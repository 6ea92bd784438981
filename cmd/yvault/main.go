package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/elys-network/yvault/cmd/yvault/cli"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}
}

// main is the entry point for the yvault service.
func main() {
	if err := cli.Execute(); err != nil {
		log.Error().Err(err).Msg("yvault exited with error")
		os.Exit(1)
	}
}
