/*
The fee engine splits harvested profit and prices fee shares.

Rates are validated once, when they are configured. Charging never fails because
of a rate, only on arithmetic overflow.
*/

package fees

import (
	"time"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/yvault/internal/types"
)

var (
	rateDenom     = sdkmath.NewInt(types.RateDenom)
	yearRateDenom = sdkmath.NewInt(types.SecondsPerYear).MulRaw(types.RateDenom)
)

// ValidateFeeConfig checks every rate against its ceiling.
func ValidateFeeConfig(cfg types.FeeConfig) error {
	if cfg.PerformanceFeeGovernance > types.MaxPerformanceFee {
		return errorsmod.Wrapf(types.ErrInvalidFeeConfig, "governance performance fee %d exceeds %d", cfg.PerformanceFeeGovernance, types.MaxPerformanceFee)
	}
	if cfg.PerformanceFeeStrategist > types.MaxPerformanceFee {
		return errorsmod.Wrapf(types.ErrInvalidFeeConfig, "strategist performance fee %d exceeds %d", cfg.PerformanceFeeStrategist, types.MaxPerformanceFee)
	}
	if cfg.PerformanceFeeGovernance+cfg.PerformanceFeeStrategist > types.RateDenom {
		return errorsmod.Wrapf(types.ErrInvalidFeeConfig, "combined performance fees exceed %d", types.RateDenom)
	}
	if cfg.WithdrawalFee > types.MaxWithdrawalFee {
		return errorsmod.Wrapf(types.ErrInvalidFeeConfig, "withdrawal fee %d exceeds %d", cfg.WithdrawalFee, types.MaxWithdrawalFee)
	}
	if cfg.ManagementFee > types.MaxManagementFee {
		return errorsmod.Wrapf(types.ErrInvalidFeeConfig, "management fee %d exceeds %d", cfg.ManagementFee, types.MaxManagementFee)
	}
	return nil
}

// ApplyPerformanceFee splits grossProfit into the governance fee, the strategist
// fee and the net profit left to depositors. A loss or zero profit is not charged.
// govFee + stratFee + netProfit always equals grossProfit.
func ApplyPerformanceFee(grossProfit sdkmath.Int, govRate, stratRate uint64) (govFee, stratFee, netProfit sdkmath.Int, err error) {
	zero := sdkmath.ZeroInt()
	if grossProfit.IsNil() {
		return zero, zero, zero, errorsmod.Wrap(types.ErrInvalidAmount, "gross profit is nil")
	}
	if !grossProfit.IsPositive() {
		return zero, zero, grossProfit, nil
	}

	govFee, err = proportion(grossProfit, govRate)
	if err != nil {
		return zero, zero, zero, err
	}
	stratFee, err = proportion(grossProfit, stratRate)
	if err != nil {
		return zero, zero, zero, err
	}
	return govFee, stratFee, grossProfit.Sub(govFee).Sub(stratFee), nil
}

// ApplyManagementFee returns the annualized management fee on poolValue for the
// elapsed time. It accrues on time alone, independent of profit.
func ApplyManagementFee(poolValue sdkmath.Int, rate uint64, elapsed time.Duration) (sdkmath.Int, error) {
	seconds := int64(elapsed / time.Second)
	if poolValue.IsNil() || !poolValue.IsPositive() || rate == 0 || seconds <= 0 {
		return sdkmath.ZeroInt(), nil
	}

	num, err := poolValue.SafeMul(sdkmath.NewIntFromUint64(rate))
	if err != nil {
		return sdkmath.ZeroInt(), overflow(err)
	}
	num, err = num.SafeMul(sdkmath.NewInt(seconds))
	if err != nil {
		return sdkmath.ZeroInt(), overflow(err)
	}
	return num.Quo(yearRateDenom), nil
}

// ApplyWithdrawalFee deducts the withdrawal fee from amount.
func ApplyWithdrawalFee(amount sdkmath.Int, rate uint64) (netAmount, feeAmount sdkmath.Int, err error) {
	if amount.IsNil() || amount.IsNegative() {
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), errorsmod.Wrap(types.ErrInvalidAmount, "withdrawal amount must not be negative")
	}
	feeAmount, err = proportion(amount, rate)
	if err != nil {
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), err
	}
	return amount.Sub(feeAmount), feeAmount, nil
}

// FeeShares prices a fee of feeAmount assets in shares, against the pool value
// that excludes every fee charged in the same harvest. Each recipient of one
// harvest must be priced against the same pre-mint supply. A fee cannot be
// priced while no shares are outstanding.
func FeeShares(feeAmount, totalShares, poolValueExcludingFees sdkmath.Int) (sdkmath.Int, error) {
	if feeAmount.IsNil() || !feeAmount.IsPositive() {
		return sdkmath.ZeroInt(), nil
	}
	if totalShares.IsNil() || !totalShares.IsPositive() {
		return sdkmath.ZeroInt(), errorsmod.Wrapf(types.ErrInvalidAmount,
			"cannot price a fee of %s with no shares outstanding", feeAmount)
	}
	if !poolValueExcludingFees.IsPositive() {
		return sdkmath.ZeroInt(), errorsmod.Wrapf(types.ErrInvalidAmount,
			"fees of %s consume the whole pool", feeAmount)
	}
	num, err := feeAmount.SafeMul(totalShares)
	if err != nil {
		return sdkmath.ZeroInt(), overflow(err)
	}
	return num.Quo(poolValueExcludingFees), nil
}

func proportion(amount sdkmath.Int, rate uint64) (sdkmath.Int, error) {
	if rate == 0 {
		return sdkmath.ZeroInt(), nil
	}
	num, err := amount.SafeMul(sdkmath.NewIntFromUint64(rate))
	if err != nil {
		return sdkmath.ZeroInt(), overflow(err)
	}
	return num.Quo(rateDenom), nil
}

func overflow(err error) error {
	return errorsmod.Wrapf(types.ErrInvalidAmount, "fee calculation overflow: %s", err)
}
