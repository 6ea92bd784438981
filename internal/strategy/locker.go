/*

LockerStrategy holds its position as a plain want balance on the asset ledger under its own
address. Rewards forwarded by the reward distributor land on that balance and compound in place.

The strategy books the principal it has received from the vault. Harvest reports the balance
above the booked principal as profit (negative on a loss) and rebooks the principal to the
current balance, so each unit of profit is reported exactly once.

*/

package strategy

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

// Ledger is the part of the asset ledger the strategy moves funds with.
type Ledger interface {
	BalanceOf(ctx context.Context, account types.Address) (sdkmath.Int, error)
	Transfer(ctx context.Context, from, to types.Address, amount sdkmath.Int) error
	TransferFrom(ctx context.Context, spender, from, to types.Address, amount sdkmath.Int) error
}

// LockerStrategy moves funds only between itself and its vault.
type LockerStrategy struct {
	mu        sync.Mutex
	logger    zerolog.Logger
	address   types.Address
	vault     types.Address
	ledger    Ledger
	principal sdkmath.Int
}

// NewLockerStrategy creates a strategy at address serving vault.
func NewLockerStrategy(address, vault types.Address, ledger Ledger) (*LockerStrategy, error) {
	if address.Empty() || vault.Empty() {
		return nil, fmt.Errorf("strategy and vault addresses cannot be empty")
	}
	if address == vault {
		return nil, fmt.Errorf("strategy address must differ from the vault address")
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger cannot be nil")
	}
	return &LockerStrategy{
		logger:    logger.GetForComponent("locker_strategy"),
		address:   address,
		vault:     vault,
		ledger:    ledger,
		principal: sdkmath.ZeroInt(),
	}, nil
}

// Address returns the strategy's ledger account.
func (s *LockerStrategy) Address() types.Address {
	return s.address
}

// Vault returns the only account the strategy sends funds to.
func (s *LockerStrategy) Vault() types.Address {
	return s.vault
}

// Principal returns the amount booked as deposited by the vault.
func (s *LockerStrategy) Principal() sdkmath.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.principal
}

// Deposit pulls amount from the vault using the allowance the vault granted.
func (s *LockerStrategy) Deposit(ctx context.Context, amount sdkmath.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return errorsmod.Wrap(types.ErrInvalidAmount, "strategy deposit must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.TransferFrom(ctx, s.address, s.vault, s.address, amount); err != nil {
		return fmt.Errorf("failed to pull %s from vault: %w", amount, err)
	}
	s.principal = s.principal.Add(amount)

	s.logger.Debug().Str("amount", amount.String()).Str("principal", s.principal.String()).Msg("Strategy deposit")
	return nil
}

// Withdraw sends up to amount back to the vault, capped at the strategy balance.
func (s *LockerStrategy) Withdraw(ctx context.Context, amount sdkmath.Int) (sdkmath.Int, error) {
	return s.withdrawCapped(ctx, amount, sdkmath.Int{})
}

func (s *LockerStrategy) withdrawCapped(ctx context.Context, amount, limit sdkmath.Int) (sdkmath.Int, error) {
	if amount.IsNil() || !amount.IsPositive() {
		return sdkmath.ZeroInt(), errorsmod.Wrap(types.ErrInvalidAmount, "strategy withdrawal must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	balance, err := s.ledger.BalanceOf(ctx, s.address)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to read strategy balance: %w", err)
	}
	send := sdkmath.MinInt(amount, balance)
	if !limit.IsNil() {
		send = sdkmath.MinInt(send, limit)
	}
	if !send.IsPositive() {
		return sdkmath.ZeroInt(), nil
	}

	if err := s.ledger.Transfer(ctx, s.address, s.vault, send); err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to return %s to vault: %w", send, err)
	}
	s.principal = s.principal.Sub(send)
	if s.principal.IsNegative() {
		s.principal = sdkmath.ZeroInt()
	}

	s.logger.Debug().Str("requested", amount.String()).Str("sent", send.String()).Msg("Strategy withdrawal")
	return send, nil
}

// Harvest reports the balance change since the previous harvest and rebooks the principal.
func (s *LockerStrategy) Harvest(ctx context.Context) (sdkmath.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance, err := s.ledger.BalanceOf(ctx, s.address)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to read strategy balance: %w", err)
	}
	profit := balance.Sub(s.principal)
	s.principal = balance

	s.logger.Info().Str("profit", profit.String()).Str("balance", balance.String()).Msg("Strategy harvested")
	return profit, nil
}

// BalanceOf returns the strategy's current want balance.
func (s *LockerStrategy) BalanceOf(ctx context.Context) (sdkmath.Int, error) {
	balance, err := s.ledger.BalanceOf(ctx, s.address)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to read strategy balance: %w", err)
	}
	return balance, nil
}
