package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/elys-network/yvault/internal/config"
	"github.com/elys-network/yvault/internal/logger"
	"github.com/elys-network/yvault/internal/state"
)

// ResetDBCmd drops and recreates the database schema.
func ResetDBCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "reset-db",
		Short: "Drop all yvault tables and recreate the schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirm {
				return fmt.Errorf("refusing to drop tables without --yes")
			}

			logger.Initialize(config.LogLevel(), config.LogFormat())

			dbCfg, err := config.LoadDBConfig()
			if err != nil {
				return fmt.Errorf("failed to load database configuration: %w", err)
			}
			if err := state.InitDB(dbCfg); err != nil {
				return err
			}
			defer state.CloseDB()

			log.Warn().Str("database", dbCfg.DBName).Msg("Resetting database")
			if err := state.DropSchema(); err != nil {
				return err
			}
			if err := state.EnsureSchema(); err != nil {
				return err
			}
			log.Info().Msg("Database reset completed successfully")
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "yes", false, "confirm dropping all tables")
	return cmd
}
