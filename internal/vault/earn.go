package vault

import (
	"context"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/yvault/internal/metrics"
	"github.com/elys-network/yvault/internal/types"
)

// Earn deploys the idle balance above the reserve into the strategy and returns
// the amount deployed. Nothing to deploy is not an error.
func (v *Vault) Earn(ctx context.Context, caller types.Address) (deployed sdkmath.Int, err error) {
	release, err := v.enter("earn")
	defer release()
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	snap := v.snapshot()
	if err := requireRole("earn", caller, snap.roles.Governance, snap.roles.Keeper); err != nil {
		v.track("earn", caller, err)
		return sdkmath.ZeroInt(), err
	}
	if err := requireActive("earn", snap); err != nil {
		v.track("earn", caller, err)
		return sdkmath.ZeroInt(), err
	}
	if snap.strategy == nil {
		v.track("earn", caller, types.ErrStrategyNotSet)
		return sdkmath.ZeroInt(), errorsmod.Wrap(types.ErrStrategyNotSet, "cannot earn")
	}

	deployable, err := v.available(ctx, snap.reserveBps)
	if err != nil {
		v.track("earn", caller, err)
		return sdkmath.ZeroInt(), err
	}
	if !deployable.IsPositive() {
		metrics.RecordOperation("earn", metrics.Noop)
		v.logger.Debug().Str("caller", caller.String()).Msg("Nothing to deploy")
		return sdkmath.ZeroInt(), nil
	}

	strategyAddr := snap.strategy.Address()
	if err := v.ledger.Approve(ctx, v.address, strategyAddr, deployable); err != nil {
		v.track("earn", caller, err)
		return sdkmath.ZeroInt(), transferFailed(err, "approve strategy for %s", deployable)
	}
	if err := snap.strategy.Deposit(ctx, deployable); err != nil {
		if resetErr := v.ledger.Approve(ctx, v.address, strategyAddr, sdkmath.ZeroInt()); resetErr != nil {
			v.logger.Error().Err(resetErr).Msg("Failed to clear strategy allowance")
		}
		err = fmt.Errorf("strategy deposit of %s failed: %w", deployable, err)
		v.track("earn", caller, err)
		return sdkmath.ZeroInt(), err
	}

	metrics.RecordOperation("earn", metrics.Success)
	v.logger.Info().
		Str("caller", caller.String()).
		Str("deployed", deployable.String()).
		Str("strategy", strategyAddr.String()).
		Msg("Deployed idle balance to strategy")

	return deployable, nil
}

// WithdrawToVault pulls the whole strategy position back into the idle balance.
// Governance uses it before migrating to a new strategy.
func (v *Vault) WithdrawToVault(ctx context.Context, caller types.Address) (withdrawn sdkmath.Int, err error) {
	release, err := v.enter("withdraw_to_vault")
	defer release()
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	defer func() { v.track("withdraw_to_vault", caller, err) }()

	snap := v.snapshot()
	if err := requireRole("withdraw to vault", caller, snap.roles.Governance); err != nil {
		return sdkmath.ZeroInt(), err
	}
	if snap.strategy == nil {
		return sdkmath.ZeroInt(), errorsmod.Wrap(types.ErrStrategyNotSet, "nothing to withdraw from")
	}

	deployed, err := deployedBalance(ctx, snap.strategy)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	if !deployed.IsPositive() {
		return sdkmath.ZeroInt(), nil
	}

	withdrawn, err = snap.strategy.Withdraw(ctx, deployed)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("strategy withdrawal of %s failed: %w", deployed, err)
	}

	v.logger.Info().
		Str("requested", deployed.String()).
		Str("withdrawn", withdrawn.String()).
		Msg("Recalled strategy position to vault")
	return withdrawn, nil
}

// available returns the idle balance above the reserve.
func (v *Vault) available(ctx context.Context, reserveBps uint64) (sdkmath.Int, error) {
	idle, err := v.idleBalance(ctx)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	if !idle.IsPositive() {
		return sdkmath.ZeroInt(), nil
	}
	reserve, err := idle.SafeMul(sdkmath.NewIntFromUint64(reserveBps))
	if err != nil {
		return sdkmath.ZeroInt(), errorsmod.Wrapf(types.ErrInvalidAmount, "reserve calculation overflow: %s", err)
	}
	return idle.Sub(reserve.QuoRaw(types.RateDenom)), nil
}
