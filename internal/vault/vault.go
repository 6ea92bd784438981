/*

The vault pools deposits of a single want token and tracks each depositor's claim as shares.

Every state-mutating operation runs behind a single in-progress flag. An operation entered
while another one is outstanding, whether from a re-entrant strategy callback or from a
concurrent caller, fails immediately with ErrReentrantCall. Work is staged on a snapshot
and committed only after every external call has succeeded.

*/

package vault

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/rs/zerolog"

	"github.com/elys-network/yvault/internal/fees"
	"github.com/elys-network/yvault/internal/logger"
	"github.com/elys-network/yvault/internal/metrics"
	"github.com/elys-network/yvault/internal/types"
)

// Config holds the configuration for creating a new Vault instance
type Config struct {
	Name     string
	Symbol   string // Also the denom of the share coin
	Want     string
	Decimals uint32
	Address  types.Address

	Ledger      AssetLedger
	Strategy    StrategyAdapter   // Optional, can be attached later with SetStrategy
	Distributor RewardDistributor // Optional
	Clock       Clock             // Defaults to SystemClock
	Recorder    Recorder          // Defaults to NoopRecorder

	Roles      types.RolesConfig
	Fees       types.FeeConfig
	ReserveBps uint64

	// PrimeDistributorOnHarvest triggers a single-epoch distribution before
	// every strategy harvest.
	PrimeDistributorOnHarvest bool
}

// Vault is the accounting core: shares, fees and the strategy it deploys into.
type Vault struct {
	mu       sync.RWMutex
	inFlight atomic.Bool
	logger   zerolog.Logger

	name     string
	symbol   string
	want     string
	decimals uint32
	address  types.Address

	ledger      AssetLedger
	strategy    StrategyAdapter
	distributor RewardDistributor
	clock       Clock
	recorder    Recorder

	roles            types.RolesConfig
	fees             types.FeeConfig
	reserveBps       uint64
	primeDistributor bool

	status      types.VaultStatus
	totalShares sdkmath.Int
	shares      map[types.Address]sdkmath.Int
	lastHarvest time.Time

	// Strategy result reported by a harvest that failed to book; the next harvest includes it.
	unbooked sdkmath.Int
}

// snapshot is a consistent copy of the vault state an operation computes on.
type snapshot struct {
	status      types.VaultStatus
	totalShares sdkmath.Int
	roles       types.RolesConfig
	fees        types.FeeConfig
	reserveBps  uint64
	strategy    StrategyAdapter
	lastHarvest time.Time
	unbooked    sdkmath.Int
}

// New creates an active vault with no shares outstanding.
func New(cfg Config) (*Vault, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("vault configuration validation failed: %w", err)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = NoopRecorder{}
	}

	v := &Vault{
		logger:           logger.GetForComponent("vault_core"),
		name:             cfg.Name,
		symbol:           cfg.Symbol,
		want:             cfg.Want,
		decimals:         cfg.Decimals,
		address:          cfg.Address,
		ledger:           cfg.Ledger,
		strategy:         cfg.Strategy,
		distributor:      cfg.Distributor,
		clock:            clock,
		recorder:         recorder,
		roles:            cfg.Roles,
		fees:             cfg.Fees,
		reserveBps:       cfg.ReserveBps,
		primeDistributor: cfg.PrimeDistributorOnHarvest,
		status:           types.VaultActive,
		totalShares:      sdkmath.ZeroInt(),
		shares:           make(map[types.Address]sdkmath.Int),
		lastHarvest:      clock.Now(),
		unbooked:         sdkmath.ZeroInt(),
	}

	v.logger.Info().
		Str("name", v.name).
		Str("want", v.want).
		Str("address", v.address.String()).
		Bool("strategyAttached", v.strategy != nil).
		Msg("Vault created")

	return v, nil
}

// validateConfig validates the vault configuration
func validateConfig(cfg Config) error {
	if cfg.Name == "" {
		return fmt.Errorf("vault name cannot be empty")
	}
	if err := sdk.ValidateDenom(cfg.Symbol); err != nil {
		return fmt.Errorf("vault symbol %q is not a valid share denom: %w", cfg.Symbol, err)
	}
	if cfg.Want == "" {
		return fmt.Errorf("want denom cannot be empty")
	}
	if cfg.Address.Empty() {
		return fmt.Errorf("vault address cannot be empty")
	}
	if cfg.Ledger == nil {
		return fmt.Errorf("asset ledger cannot be nil")
	}
	if cfg.Roles.Governance.Empty() {
		return fmt.Errorf("governance address cannot be empty")
	}
	if cfg.Roles.Treasury.Empty() {
		return fmt.Errorf("treasury address cannot be empty")
	}
	if cfg.Roles.Strategist.Empty() {
		return fmt.Errorf("strategist address cannot be empty")
	}
	if cfg.ReserveBps > types.RateDenom {
		return fmt.Errorf("reserve of %d bps exceeds %d", cfg.ReserveBps, types.RateDenom)
	}
	if cfg.PrimeDistributorOnHarvest && cfg.Distributor == nil {
		return fmt.Errorf("distributor priming requires a distributor")
	}
	return fees.ValidateFeeConfig(cfg.Fees)
}

// enter claims the in-progress flag. The returned release must be deferred.
func (v *Vault) enter(operation string) (func(), error) {
	if !v.inFlight.CompareAndSwap(false, true) {
		return func() {}, errorsmod.Wrapf(types.ErrReentrantCall, "%s rejected", operation)
	}
	return func() { v.inFlight.Store(false) }, nil
}

// track counts the outcome of an operation and logs failures.
func (v *Vault) track(operation string, caller types.Address, err error) {
	if err != nil {
		metrics.RecordOperation(operation, metrics.Error)
		v.logger.Warn().
			Err(err).
			Str("operation", operation).
			Str("caller", caller.String()).
			Msg("Vault operation failed")
		return
	}
	metrics.RecordOperation(operation, metrics.Success)
}

func (v *Vault) snapshot() snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return snapshot{
		status:      v.status,
		totalShares: v.totalShares,
		roles:       v.roles,
		fees:        v.fees,
		reserveBps:  v.reserveBps,
		strategy:    v.strategy,
		lastHarvest: v.lastHarvest,
		unbooked:    v.unbooked,
	}
}

// requireRole fails with ErrUnauthorized unless caller is one of allowed.
func requireRole(operation string, caller types.Address, allowed ...types.Address) error {
	if !caller.Empty() {
		for _, a := range allowed {
			if caller == a {
				return nil
			}
		}
	}
	return errorsmod.Wrapf(types.ErrUnauthorized, "%s is not permitted to %s", caller, operation)
}

func requireActive(operation string, s snapshot) error {
	if s.status != types.VaultActive {
		return errorsmod.Wrapf(types.ErrVaultPaused, "cannot %s", operation)
	}
	return nil
}

// idleBalance returns the want held by the vault itself.
func (v *Vault) idleBalance(ctx context.Context) (sdkmath.Int, error) {
	idle, err := v.ledger.BalanceOf(ctx, v.address)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to read vault balance: %w", err)
	}
	return idle, nil
}

// deployedBalance returns the value held by strategy, zero when none is attached.
func deployedBalance(ctx context.Context, strategy StrategyAdapter) (sdkmath.Int, error) {
	if strategy == nil {
		return sdkmath.ZeroInt(), nil
	}
	deployed, err := strategy.BalanceOf(ctx)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to read strategy balance: %w", err)
	}
	return deployed, nil
}

// poolValue returns idle plus deployed want.
func (v *Vault) poolValue(ctx context.Context, strategy StrategyAdapter) (sdkmath.Int, error) {
	idle, err := v.idleBalance(ctx)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	deployed, err := deployedBalance(ctx, strategy)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	return idle.Add(deployed), nil
}

// transferFailed keeps ledger errors that already carry ErrTransferFailed and
// wraps everything else in it.
func transferFailed(err error, format string, args ...interface{}) error {
	if errors.Is(err, types.ErrTransferFailed) {
		return errorsmod.Wrapf(err, format, args...)
	}
	return errorsmod.Wrapf(types.ErrTransferFailed, format+": %s", append(args, err)...)
}
