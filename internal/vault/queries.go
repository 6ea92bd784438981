package vault

import (
	"context"
	"time"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/elys-network/yvault/internal/accounting"
	"github.com/elys-network/yvault/internal/types"
)

func (v *Vault) Name() string           { return v.name }
func (v *Vault) Symbol() string         { return v.symbol }
func (v *Vault) Want() string           { return v.want }
func (v *Vault) Decimals() uint32       { return v.decimals }
func (v *Vault) Address() types.Address { return v.address }

func (v *Vault) Status() types.VaultStatus {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.status
}

func (v *Vault) Roles() types.RolesConfig {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.roles
}

func (v *Vault) Fees() types.FeeConfig {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.fees
}

func (v *Vault) ReserveBps() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.reserveBps
}

// Strategy returns the attached strategy, nil when none is attached.
func (v *Vault) Strategy() StrategyAdapter {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.strategy
}

func (v *Vault) LastHarvest() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.lastHarvest
}

// TotalSupply returns the total shares outstanding.
func (v *Vault) TotalSupply() sdkmath.Int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.totalShares
}

// SharesOf returns the shares held by account.
func (v *Vault) SharesOf(account types.Address) sdkmath.Int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.sharesLocked(account)
}

// ShareCoin returns account's shares as a coin of the vault symbol.
func (v *Vault) ShareCoin(account types.Address) sdk.Coin {
	return sdk.NewCoin(v.symbol, v.SharesOf(account))
}

// Balance returns the pool value: idle want plus the strategy's deployed value.
func (v *Vault) Balance(ctx context.Context) (sdkmath.Int, error) {
	return v.poolValue(ctx, v.Strategy())
}

// Available returns what Earn would deploy right now.
func (v *Vault) Available(ctx context.Context) (sdkmath.Int, error) {
	return v.available(ctx, v.ReserveBps())
}

// PricePerShare returns the pool value of one share.
func (v *Vault) PricePerShare(ctx context.Context) (sdkmath.LegacyDec, error) {
	pool, err := v.Balance(ctx)
	if err != nil {
		return sdkmath.LegacyZeroDec(), err
	}
	return accounting.PricePerShare(v.TotalSupply(), pool), nil
}

// ClaimOf returns the want account's shares are currently worth, before the withdrawal fee.
func (v *Vault) ClaimOf(ctx context.Context, account types.Address) (sdkmath.Int, error) {
	shares := v.SharesOf(account)
	if shares.IsZero() {
		return sdkmath.ZeroInt(), nil
	}
	pool, err := v.Balance(ctx)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	return accounting.AssetForShares(shares, v.TotalSupply(), pool)
}

// Summary returns a point-in-time view of the vault.
func (v *Vault) Summary(ctx context.Context) (types.VaultSummary, error) {
	snap := v.snapshot()

	idle, err := v.idleBalance(ctx)
	if err != nil {
		return types.VaultSummary{}, err
	}
	deployed, err := deployedBalance(ctx, snap.strategy)
	if err != nil {
		return types.VaultSummary{}, err
	}
	available, err := v.available(ctx, snap.reserveBps)
	if err != nil {
		return types.VaultSummary{}, err
	}

	pool := idle.Add(deployed)
	summary := types.VaultSummary{
		Name:          v.name,
		Symbol:        v.symbol,
		Want:          v.want,
		Decimals:      v.decimals,
		Status:        snap.status,
		TotalShares:   snap.totalShares,
		IdleBalance:   idle,
		Deployed:      deployed,
		PoolValue:     pool,
		Available:     available,
		PricePerShare: accounting.PricePerShare(snap.totalShares, pool),
		ReserveBps:    snap.reserveBps,
		Fees:          snap.fees,
		Roles:         snap.roles,
		LastHarvest:   snap.lastHarvest,
	}
	if snap.strategy != nil {
		summary.Strategy = snap.strategy.Address()
	}
	return summary, nil
}
