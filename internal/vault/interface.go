package vault

import (
	"context"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/yvault/internal/types"
)

// AssetLedger is the fungible asset store holding the want token.
// The vault never implements balances itself; it only moves them through this interface.
type AssetLedger interface {
	// BalanceOf returns the want balance of account.
	BalanceOf(ctx context.Context, account types.Address) (sdkmath.Int, error)

	// Transfer moves amount from one account to another.
	Transfer(ctx context.Context, from, to types.Address, amount sdkmath.Int) error

	// TransferFrom moves amount on behalf of spender, consuming its allowance.
	TransferFrom(ctx context.Context, spender, from, to types.Address, amount sdkmath.Int) error

	// Approve sets the amount spender may move out of owner's balance.
	Approve(ctx context.Context, owner, spender types.Address, amount sdkmath.Int) error
}

// StrategyAdapter is the pluggable yield strategy the vault deploys capital into.
type StrategyAdapter interface {
	// Address returns the strategy's account on the asset ledger.
	Address() types.Address

	// Deposit pulls amount from the vault (which has approved it) into the position.
	Deposit(ctx context.Context, amount sdkmath.Int) error

	// Withdraw returns up to amount to the vault and reports what was actually sent.
	Withdraw(ctx context.Context, amount sdkmath.Int) (sdkmath.Int, error)

	// Harvest realizes the result since the previous harvest. A loss is negative.
	Harvest(ctx context.Context) (sdkmath.Int, error)

	// BalanceOf returns the value currently deployed in the strategy.
	BalanceOf(ctx context.Context) (sdkmath.Int, error)
}

// RewardDistributor is the staking proxy that converts accrued rewards into a
// distributable form when triggered by its keeper.
type RewardDistributor interface {
	Distribute(ctx context.Context, caller types.Address, epochCount uint32) error
	SetKeeper(ctx context.Context, caller, keeper types.Address) error
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// Recorder receives every harvest event once it has been committed.
type Recorder interface {
	RecordHarvest(ctx context.Context, event types.HarvestEvent) error
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// NoopRecorder discards harvest events.
type NoopRecorder struct{}

// RecordHarvest implements Recorder.
func (NoopRecorder) RecordHarvest(context.Context, types.HarvestEvent) error {
	return nil
}
