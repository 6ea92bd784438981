/*
Share accounting converts between asset amounts and vault shares.

Both conversions use a single floor division so rounding always favors the pool:
a deposit never mints more shares than its proportional value, and a redemption
never pays out more than its proportional entitlement.
*/

package accounting

import (
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/yvault/internal/types"
)

// SharesForAsset returns the shares minted for depositing amount into a pool
// worth poolValueBefore with totalShares outstanding.
// The first deposit into an empty pool mints shares 1:1.
func SharesForAsset(amount, totalShares, poolValueBefore sdkmath.Int) (sdkmath.Int, error) {
	if err := requirePositive(amount, "amount"); err != nil {
		return sdkmath.ZeroInt(), err
	}
	if err := requireNonNegative(totalShares, "total shares"); err != nil {
		return sdkmath.ZeroInt(), err
	}
	if err := requireNonNegative(poolValueBefore, "pool value"); err != nil {
		return sdkmath.ZeroInt(), err
	}

	if totalShares.IsZero() {
		return amount, nil
	}
	if poolValueBefore.IsZero() {
		return sdkmath.ZeroInt(), errorsmod.Wrapf(types.ErrInvalidAmount,
			"pool value is zero with %s shares outstanding", totalShares)
	}

	num, err := amount.SafeMul(totalShares)
	if err != nil {
		return sdkmath.ZeroInt(), errorsmod.Wrapf(types.ErrInvalidAmount, "share calculation overflow: %s", err)
	}
	return num.Quo(poolValueBefore), nil
}

// AssetForShares returns the assets redeemable for shares out of a pool worth
// poolValue with totalShares outstanding.
func AssetForShares(shares, totalShares, poolValue sdkmath.Int) (sdkmath.Int, error) {
	if err := requirePositive(shares, "shares"); err != nil {
		return sdkmath.ZeroInt(), err
	}
	if err := requireNonNegative(poolValue, "pool value"); err != nil {
		return sdkmath.ZeroInt(), err
	}
	if totalShares.IsNil() || shares.GT(totalShares) {
		return sdkmath.ZeroInt(), errorsmod.Wrapf(types.ErrInsufficientShares,
			"requested %s of %s outstanding", shares, totalShares)
	}

	num, err := shares.SafeMul(poolValue)
	if err != nil {
		return sdkmath.ZeroInt(), errorsmod.Wrapf(types.ErrInvalidAmount, "redemption calculation overflow: %s", err)
	}
	return num.Quo(totalShares), nil
}

// PricePerShare returns poolValue/totalShares, or one when no shares exist.
func PricePerShare(totalShares, poolValue sdkmath.Int) sdkmath.LegacyDec {
	if totalShares.IsNil() || !totalShares.IsPositive() || poolValue.IsNil() {
		return sdkmath.LegacyOneDec()
	}
	return sdkmath.LegacyNewDecFromInt(poolValue).QuoInt(totalShares)
}

func requirePositive(v sdkmath.Int, name string) error {
	if v.IsNil() || !v.IsPositive() {
		return errorsmod.Wrapf(types.ErrInvalidAmount, "%s must be positive", name)
	}
	return nil
}

func requireNonNegative(v sdkmath.Int, name string) error {
	if v.IsNil() || v.IsNegative() {
		return errorsmod.Wrapf(types.ErrInvalidAmount, "%s must not be negative", name)
	}
	return nil
}
