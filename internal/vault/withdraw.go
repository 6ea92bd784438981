package vault

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/yvault/internal/accounting"
	"github.com/elys-network/yvault/internal/fees"
	"github.com/elys-network/yvault/internal/metrics"
	"github.com/elys-network/yvault/internal/types"
)

// Withdraw burns shares owned by caller and sends the redeemed want, net of the
// withdrawal fee, to caller. Withdrawals are accepted in every vault state.
func (v *Vault) Withdraw(ctx context.Context, caller types.Address, shares sdkmath.Int) (net sdkmath.Int, err error) {
	release, err := v.enter("withdraw")
	defer release()
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	defer func() { v.track("withdraw", caller, err) }()

	return v.withdraw(ctx, caller, shares)
}

// WithdrawAll redeems every share caller owns.
func (v *Vault) WithdrawAll(ctx context.Context, caller types.Address) (net sdkmath.Int, err error) {
	release, err := v.enter("withdraw")
	defer release()
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	defer func() { v.track("withdraw", caller, err) }()

	owned := v.SharesOf(caller)
	if owned.IsZero() {
		return sdkmath.ZeroInt(), errorsmod.Wrapf(types.ErrInsufficientShares, "%s holds no shares", caller)
	}
	return v.withdraw(ctx, caller, owned)
}

func (v *Vault) withdraw(ctx context.Context, caller types.Address, shares sdkmath.Int) (sdkmath.Int, error) {
	if caller.Empty() {
		return sdkmath.ZeroInt(), errorsmod.Wrap(types.ErrInvalidAddress, "withdrawer is required")
	}
	if shares.IsNil() || !shares.IsPositive() {
		return sdkmath.ZeroInt(), errorsmod.Wrap(types.ErrInvalidAmount, "shares to withdraw must be positive")
	}

	snap := v.snapshot()
	if owned := v.SharesOf(caller); owned.LT(shares) {
		return sdkmath.ZeroInt(), errorsmod.Wrapf(types.ErrInsufficientShares, "%s holds %s shares, requested %s", caller, owned, shares)
	}

	pool, err := v.poolValue(ctx, snap.strategy)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	gross, err := accounting.AssetForShares(shares, snap.totalShares, pool)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	if gross.IsZero() {
		return sdkmath.ZeroInt(), errorsmod.Wrapf(types.ErrInvalidAmount, "%s shares redeem nothing", shares)
	}
	net, fee, err := fees.ApplyWithdrawalFee(gross, snap.fees.WithdrawalFee)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	if err := v.ensureLiquidity(ctx, snap.strategy, gross); err != nil {
		return sdkmath.ZeroInt(), err
	}

	if net.IsPositive() {
		if err := v.ledger.Transfer(ctx, v.address, caller, net); err != nil {
			return sdkmath.ZeroInt(), transferFailed(err, "send %s to %s", net, caller)
		}
	}
	if fee.IsPositive() {
		if err := v.ledger.Transfer(ctx, v.address, snap.roles.Treasury, fee); err != nil {
			return sdkmath.ZeroInt(), transferFailed(err, "send withdrawal fee %s to treasury", fee)
		}
		metrics.RecordFee(metrics.FeeWithdrawal, fee)
	}

	v.mu.Lock()
	remaining := v.sharesLocked(caller).Sub(shares)
	if remaining.IsZero() {
		delete(v.shares, caller)
	} else {
		v.shares[caller] = remaining
	}
	v.totalShares = v.totalShares.Sub(shares)
	totalShares := v.totalShares
	v.mu.Unlock()

	poolAfter := pool.Sub(gross)
	metrics.ObserveVaultState(totalShares, poolAfter, accounting.PricePerShare(totalShares, poolAfter))

	v.logger.Info().
		Str("caller", caller.String()).
		Str("shares", shares.String()).
		Str("gross", gross.String()).
		Str("fee", fee.String()).
		Str("net", net.String()).
		Msg("Withdrawal paid")

	return net, nil
}

// ensureLiquidity pulls any shortfall between the idle balance and amount back
// from the strategy.
func (v *Vault) ensureLiquidity(ctx context.Context, strategy StrategyAdapter, amount sdkmath.Int) error {
	idle, err := v.idleBalance(ctx)
	if err != nil {
		return err
	}
	if idle.GTE(amount) {
		return nil
	}
	if strategy == nil {
		return errorsmod.Wrapf(types.ErrInsufficientLiquidity, "idle %s below %s and no strategy attached", idle, amount)
	}

	shortfall := amount.Sub(idle)
	withdrawn, err := strategy.Withdraw(ctx, shortfall)
	if err != nil {
		return errorsmod.Wrapf(types.ErrInsufficientLiquidity, "strategy could not return %s: %s", shortfall, err)
	}

	idle, err = v.idleBalance(ctx)
	if err != nil {
		return err
	}
	if idle.LT(amount) {
		return errorsmod.Wrapf(types.ErrInsufficientLiquidity, "strategy returned %s of %s shortfall", withdrawn, shortfall)
	}

	v.logger.Debug().
		Str("shortfall", shortfall.String()).
		Str("withdrawn", withdrawn.String()).
		Msg("Pulled shortfall from strategy")
	return nil
}
