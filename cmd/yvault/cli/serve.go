package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/elys-network/yvault/internal/config"
	"github.com/elys-network/yvault/internal/keeper"
	"github.com/elys-network/yvault/internal/logger"
	"github.com/elys-network/yvault/internal/metrics"
	"github.com/elys-network/yvault/internal/state"
	"github.com/elys-network/yvault/internal/web"
)

const shutdownTimeout = 10 * time.Second

// ServeCmd starts the vault, its API and the keeper scheduler.
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the simulated vault with its HTTP API and keeper",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	// --- 1. Initialization Phase ---
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Initialize(cfg.LogLevel, cfg.LogFormat)
	log.Info().Str("mode", cfg.Mode).Msg("yvault starting...")

	if err := state.InitDB(cfg.DB); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		return fmt.Errorf("failed to ensure database schema: %w", err)
	}

	// --- 2. Vault assembly ---
	sim, err := buildSimulation(cfg.Vault, state.NewRecorder())
	if err != nil {
		return fmt.Errorf("failed to assemble vault: %w", err)
	}
	metrics.Init()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- 3. Start Web Server ---
	webServer, err := web.NewWebServer(web.Config{
		Port:        cfg.WebPort,
		Vault:             sim.Vault,
		Ledger:            sim.Ledger,
		History:           state.NewHarvestRepository(),
		HealthCheck:       state.TestDBConnection,
		SimulationActions: cfg.Mode == config.SimulationMode,
	})
	if err != nil {
		return err
	}
	go func() {
		log.Info().Str("port", cfg.WebPort).Str("url", "http://localhost:"+cfg.WebPort).Msg("Starting yvault API")
		if err := webServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Web server failed")
			stop()
		}
	}()

	// --- 4. Keeper ---
	k, err := keeper.New(keeper.Config{
		Vault:            sim.Vault,
		Address:          cfg.Vault.Roles.Keeper,
		DistributeEpochs: cfg.Keeper.DistributeEpochs,
		Counter:          state.RoundCounter{},
	})
	if err != nil {
		return err
	}
	scheduler := keeper.NewScheduler(ctx, k)
	if err := scheduler.Register(keeper.Schedules{
		Round:      cfg.Keeper.RoundCron,
		Earn:       cfg.Keeper.EarnCron,
		Harvest:    cfg.Keeper.HarvestCron,
		Distribute: cfg.Keeper.DistributeCron,
	}); err != nil {
		return err
	}
	scheduler.Start()

	<-ctx.Done()
	log.Info().Msg("Shutdown signal received")

	scheduler.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := webServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Web server shutdown failed")
	}
	return nil
}
