package vault

import (
	"context"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/yvault/internal/accounting"
	"github.com/elys-network/yvault/internal/metrics"
	"github.com/elys-network/yvault/internal/types"
)

// Deposit pulls amount of want from caller and mints the resulting shares to caller.
// The caller must have approved the vault for at least amount.
func (v *Vault) Deposit(ctx context.Context, caller types.Address, amount sdkmath.Int) (sdkmath.Int, error) {
	return v.DepositFor(ctx, caller, caller, amount)
}

// DepositFor pulls amount of want from caller and mints the resulting shares to recipient.
func (v *Vault) DepositFor(ctx context.Context, caller, recipient types.Address, amount sdkmath.Int) (minted sdkmath.Int, err error) {
	release, err := v.enter("deposit")
	defer release()
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	defer func() { v.track("deposit", caller, err) }()

	if caller.Empty() || recipient.Empty() {
		return sdkmath.ZeroInt(), errorsmod.Wrap(types.ErrInvalidAddress, "depositor and recipient are required")
	}
	if amount.IsNil() || !amount.IsPositive() {
		return sdkmath.ZeroInt(), errorsmod.Wrap(types.ErrInvalidAmount, "deposit amount must be positive")
	}

	snap := v.snapshot()
	if err := requireActive("deposit", snap); err != nil {
		return sdkmath.ZeroInt(), err
	}

	poolBefore, err := v.poolValue(ctx, snap.strategy)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	// Reject dust before any asset moves.
	expected, err := accounting.SharesForAsset(amount, snap.totalShares, poolBefore)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	if expected.IsZero() {
		return sdkmath.ZeroInt(), errorsmod.Wrapf(types.ErrInvalidAmount, "deposit of %s is too small to mint a share", amount)
	}

	idleBefore, err := v.idleBalance(ctx)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	if err := v.ledger.TransferFrom(ctx, v.address, caller, v.address, amount); err != nil {
		return sdkmath.ZeroInt(), transferFailed(err, "pull %s from %s", amount, caller)
	}
	idleAfter, err := v.idleBalance(ctx)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	// Shares are priced on what actually arrived.
	received := idleAfter.Sub(idleBefore)
	if !received.IsPositive() {
		return sdkmath.ZeroInt(), errorsmod.Wrapf(types.ErrTransferFailed, "ledger credited %s for a deposit of %s", received, amount)
	}
	minted, err = accounting.SharesForAsset(received, snap.totalShares, poolBefore)
	if err == nil && minted.IsZero() {
		err = errorsmod.Wrapf(types.ErrInvalidAmount, "received %s is too small to mint a share", received)
	}
	if err != nil {
		if refundErr := v.ledger.Transfer(ctx, v.address, caller, received); refundErr != nil {
			v.logger.Error().Err(refundErr).Str("caller", caller.String()).Str("amount", received.String()).Msg("Failed to refund rejected deposit")
		}
		return sdkmath.ZeroInt(), err
	}

	v.mu.Lock()
	v.shares[recipient] = v.sharesLocked(recipient).Add(minted)
	v.totalShares = v.totalShares.Add(minted)
	totalShares := v.totalShares
	v.mu.Unlock()

	poolAfter := poolBefore.Add(received)
	metrics.ObserveVaultState(totalShares, poolAfter, accounting.PricePerShare(totalShares, poolAfter))

	v.logger.Info().
		Str("caller", caller.String()).
		Str("recipient", recipient.String()).
		Str("amount", received.String()).
		Str("shares", minted.String()).
		Msg("Deposit accepted")

	return minted, nil
}

func (v *Vault) sharesLocked(account types.Address) sdkmath.Int {
	if s, ok := v.shares[account]; ok {
		return s
	}
	return sdkmath.ZeroInt()
}
