/*

StakingProxy models the reward locking proxy that sits next to a strategy. Rewards accrue
on the proxy's own ledger account. When its keeper calls Distribute, the proxy forwards the
whole accrued balance to the recipient, normally the strategy, where it shows up as profit
at the next harvest.

*/

package distributor

import (
	"context"
	"fmt"
	"sync"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/elys-network/yvault/internal/logger"
	"github.com/elys-network/yvault/internal/types"
)

// Ledger is the part of the asset ledger the proxy needs.
type Ledger interface {
	BalanceOf(ctx context.Context, account types.Address) (sdkmath.Int, error)
	Transfer(ctx context.Context, from, to types.Address, amount sdkmath.Int) error
}

// Config holds the configuration for creating a new StakingProxy
type Config struct {
	Address   types.Address // Proxy account on the ledger
	Owner     types.Address // May change the keeper
	Keeper    types.Address // May distribute, optional at construction
	Recipient types.Address // Receives distributed rewards
	Ledger    Ledger
}

// Distribution reports the result of one Distribute call.
type Distribution struct {
	Epochs uint32
	Amount sdkmath.Int
}

// StakingProxy is a keeper-triggered reward distributor.
type StakingProxy struct {
	mu        sync.Mutex
	logger    zerolog.Logger
	address   types.Address
	owner     types.Address
	keeper    types.Address
	recipient types.Address
	ledger    Ledger

	distributions []Distribution
}

// NewStakingProxy creates a proxy from cfg.
func NewStakingProxy(cfg Config) (*StakingProxy, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("staking proxy configuration validation failed: %w", err)
	}
	return &StakingProxy{
		logger:    logger.GetForComponent("staking_proxy"),
		address:   cfg.Address,
		owner:     cfg.Owner,
		keeper:    cfg.Keeper,
		recipient: cfg.Recipient,
		ledger:    cfg.Ledger,
	}, nil
}

func validateConfig(cfg Config) error {
	if cfg.Address.Empty() {
		return fmt.Errorf("proxy address cannot be empty")
	}
	if cfg.Owner.Empty() {
		return fmt.Errorf("proxy owner cannot be empty")
	}
	if cfg.Recipient.Empty() {
		return fmt.Errorf("reward recipient cannot be empty")
	}
	if cfg.Ledger == nil {
		return fmt.Errorf("ledger cannot be nil")
	}
	return nil
}

// Address returns the proxy's ledger account, where rewards accrue.
func (p *StakingProxy) Address() types.Address {
	return p.address
}

// Keeper returns the address allowed to distribute.
func (p *StakingProxy) Keeper() types.Address {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.keeper
}

// SetKeeper changes the keeper. Only the owner may call it.
func (p *StakingProxy) SetKeeper(_ context.Context, caller, keeper types.Address) error {
	if caller.Empty() || caller != p.owner {
		return errorsmod.Wrapf(types.ErrUnauthorized, "%s is not the proxy owner", caller)
	}
	if keeper.Empty() {
		return errorsmod.Wrap(types.ErrInvalidAddress, "keeper address is required")
	}

	p.mu.Lock()
	p.keeper = keeper
	p.mu.Unlock()

	p.logger.Info().Str("keeper", keeper.String()).Msg("Proxy keeper updated")
	return nil
}

// Distribute forwards the accrued rewards to the recipient. epochCount must be
// at least one. An empty proxy returns ErrNothingToDistribute.
func (p *StakingProxy) Distribute(ctx context.Context, caller types.Address, epochCount uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if caller.Empty() || caller != p.keeper {
		return errorsmod.Wrapf(types.ErrUnauthorized, "%s is not the proxy keeper", caller)
	}
	if epochCount == 0 {
		return errorsmod.Wrap(types.ErrInvalidAmount, "epoch count must be at least one")
	}

	accrued, err := p.ledger.BalanceOf(ctx, p.address)
	if err != nil {
		return fmt.Errorf("failed to read proxy balance: %w", err)
	}
	if !accrued.IsPositive() {
		return errorsmod.Wrapf(types.ErrNothingToDistribute, "no rewards accrued over %d epochs", epochCount)
	}

	if err := p.ledger.Transfer(ctx, p.address, p.recipient, accrued); err != nil {
		return fmt.Errorf("failed to forward %s to %s: %w", accrued, p.recipient, err)
	}
	p.distributions = append(p.distributions, Distribution{Epochs: epochCount, Amount: accrued})

	p.logger.Info().
		Uint32("epochs", epochCount).
		Str("amount", accrued.String()).
		Str("recipient", p.recipient.String()).
		Msg("Rewards distributed")
	return nil
}

// Distributions returns every successful distribution, oldest first.
func (p *StakingProxy) Distributions() []Distribution {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Distribution, len(p.distributions))
	copy(out, p.distributions)
	return out
}
