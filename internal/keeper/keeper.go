package keeper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/elys-network/yvault/internal/logger"
	"github.com/elys-network/yvault/internal/types"
)

// Vault is the set of keeper-gated vault operations.
type Vault interface {
	Distribute(ctx context.Context, caller types.Address, epochCount uint32) error
	Earn(ctx context.Context, caller types.Address) (sdkmath.Int, error)
	Harvest(ctx context.Context, caller types.Address) (types.HarvestEvent, error)
}

// RoundCounter persists the number of completed keeper rounds.
type RoundCounter interface {
	IncrementRoundNumber() (int, error)
}

// Config holds the configuration for creating a new Keeper
type Config struct {
	Vault            Vault
	Address          types.Address // The keeper role address the vault checks
	DistributeEpochs uint32
	Counter          RoundCounter // Optional
}

// RoundResult summarizes one keeper round.
type RoundResult struct {
	RoundID  string
	Round    int
	Deployed sdkmath.Int
	Harvest  *types.HarvestEvent
	Duration time.Duration
}

// Keeper drives the vault's automation: distribute, earn and harvest.
// Steps never overlap, so scheduled jobs do not trip the vault's in-progress guard.
type Keeper struct {
	mu      sync.Mutex
	logger  zerolog.Logger
	vault   Vault
	address types.Address
	epochs  uint32
	counter RoundCounter
}

// New creates a keeper from cfg.
func New(cfg Config) (*Keeper, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("keeper configuration validation failed: %w", err)
	}
	return &Keeper{
		logger:  logger.GetForComponent("keeper"),
		vault:   cfg.Vault,
		address: cfg.Address,
		epochs:  cfg.DistributeEpochs,
		counter: cfg.Counter,
	}, nil
}

func validateConfig(cfg Config) error {
	if cfg.Vault == nil {
		return fmt.Errorf("vault cannot be nil")
	}
	if cfg.Address.Empty() {
		return fmt.Errorf("keeper address cannot be empty")
	}
	if cfg.DistributeEpochs == 0 {
		return fmt.Errorf("distribute epochs must be positive")
	}
	return nil
}

// RunRound runs distribute, earn and harvest in that order. A failed step is
// logged and does not stop the later ones; all step errors are returned joined.
func (k *Keeper) RunRound(ctx context.Context) (RoundResult, error) {
	start := time.Now()

	// Generate unique round ID for tracing logs across the entire round
	roundID := uuid.New().String()
	roundLogger := k.logger.With().Str("round_id", roundID).Logger()
	roundLogger.Info().Msg("--- Starting keeper round ---")

	result := RoundResult{RoundID: roundID, Deployed: sdkmath.ZeroInt()}
	var errs []error

	if err := k.distribute(ctx, roundLogger); err != nil {
		errs = append(errs, err)
	}
	deployed, err := k.earn(ctx, roundLogger)
	if err != nil {
		errs = append(errs, err)
	} else {
		result.Deployed = deployed
	}
	event, err := k.harvest(ctx, roundLogger)
	if err != nil {
		errs = append(errs, err)
	} else {
		result.Harvest = &event
	}

	if k.counter != nil {
		round, err := k.counter.IncrementRoundNumber()
		if err != nil {
			roundLogger.Error().Err(err).Msg("Failed to increment round counter")
		} else {
			result.Round = round
		}
	}

	result.Duration = time.Since(start)
	roundLogger.Info().
		Int("round", result.Round).
		Int("failedSteps", len(errs)).
		Dur("duration", result.Duration).
		Msg("--- Keeper round completed ---")

	return result, errors.Join(errs...)
}

// Distribute triggers the reward distributor.
func (k *Keeper) Distribute(ctx context.Context) error {
	return k.distribute(ctx, k.logger)
}

// Earn deploys idle funds.
func (k *Keeper) Earn(ctx context.Context) (sdkmath.Int, error) {
	return k.earn(ctx, k.logger)
}

// Harvest books strategy profit.
func (k *Keeper) Harvest(ctx context.Context) (types.HarvestEvent, error) {
	return k.harvest(ctx, k.logger)
}

func (k *Keeper) distribute(ctx context.Context, log zerolog.Logger) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if err := k.vault.Distribute(ctx, k.address, k.epochs); err != nil {
		log.Error().Err(err).Uint32("epochs", k.epochs).Msg("Distribute step failed")
		return fmt.Errorf("distribute: %w", err)
	}
	log.Info().Uint32("epochs", k.epochs).Msg("Distribute step completed")
	return nil
}

func (k *Keeper) earn(ctx context.Context, log zerolog.Logger) (sdkmath.Int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	deployed, err := k.vault.Earn(ctx, k.address)
	if err != nil {
		log.Error().Err(err).Msg("Earn step failed")
		return sdkmath.ZeroInt(), fmt.Errorf("earn: %w", err)
	}
	log.Info().Str("deployed", deployed.String()).Msg("Earn step completed")
	return deployed, nil
}

func (k *Keeper) harvest(ctx context.Context, log zerolog.Logger) (types.HarvestEvent, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	event, err := k.vault.Harvest(ctx, k.address)
	if err != nil {
		log.Error().Err(err).Msg("Harvest step failed")
		return types.HarvestEvent{}, fmt.Errorf("harvest: %w", err)
	}
	log.Info().
		Str("harvest_id", event.ID).
		Str("gross_profit", event.GrossProfit.String()).
		Str("fees", event.TotalFees().String()).
		Msg("Harvest step completed")
	return event, nil
}
