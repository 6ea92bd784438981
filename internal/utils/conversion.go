/*
This file contains common utility functions for converting between SDK math amounts,
user input and floats used for display and metrics.
*/

package utils

import (
	"errors"
	"fmt"
	"math"
	"strings"

	sdkmath "cosmossdk.io/math"
)

// Error definitions for zero-tolerance error handling
var (
	ErrInvalidPrecision = errors.New("precision is invalid")
	ErrAmountNil        = errors.New("amount is nil")
	ErrAmountNegative   = errors.New("amount is negative")
	ErrNotFinite        = errors.New("value is not finite")
	ErrConversionFailed = errors.New("conversion failed")
	ErrInvalidAmount    = errors.New("amount is not a valid integer")
)

// SDKIntToFloat64 converts an SDK Int to float64 with proper precision handling
func SDKIntToFloat64(amount sdkmath.Int, precision int) (float64, error) {
	if precision < 0 || precision > 18 {
		return 0, fmt.Errorf("%w: %d (must be between 0 and 18)", ErrInvalidPrecision, precision)
	}
	if amount.IsNil() {
		return 0, ErrAmountNil
	}
	if amount.IsNegative() {
		return 0, ErrAmountNegative
	}

	result := sdkmath.LegacyNewDecFromInt(amount).Quo(powerOfTen(precision))
	resultFloat, err := result.Float64()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrConversionFailed, err)
	}

	if math.IsNaN(resultFloat) || math.IsInf(resultFloat, 0) {
		return 0, fmt.Errorf("%w: result is %f", ErrNotFinite, resultFloat)
	}

	return resultFloat, nil
}

// SignedSDKIntToFloat64 converts a possibly negative SDK Int in base units to float64.
func SignedSDKIntToFloat64(amount sdkmath.Int) (float64, error) {
	if amount.IsNil() {
		return 0, ErrAmountNil
	}
	v, err := SDKIntToFloat64(amount.Abs(), 0)
	if err != nil {
		return 0, err
	}
	if amount.IsNegative() {
		return -v, nil
	}
	return v, nil
}

// ParseAmount parses a base-unit integer amount such as "1000000".
// Negative and non-integer input is rejected.
func ParseAmount(s string) (sdkmath.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	amount, ok := sdkmath.NewIntFromString(s)
	if !ok {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if amount.IsNegative() {
		return sdkmath.ZeroInt(), ErrAmountNegative
	}
	return amount, nil
}

// FormatAmount renders a base-unit amount as a decimal string with the given precision,
// e.g. 1234500 at precision 6 is "1.2345".
func FormatAmount(amount sdkmath.Int, precision int) (string, error) {
	if precision < 0 || precision > 18 {
		return "", fmt.Errorf("%w: %d (must be between 0 and 18)", ErrInvalidPrecision, precision)
	}
	if amount.IsNil() {
		return "", ErrAmountNil
	}
	dec := sdkmath.LegacyNewDecFromInt(amount).Quo(powerOfTen(precision))
	out := strings.TrimRight(dec.String(), "0")
	return strings.TrimSuffix(out, "."), nil
}

func powerOfTen(precision int) sdkmath.LegacyDec {
	factor := sdkmath.LegacyNewDec(1)
	for i := 0; i < precision; i++ {
		factor = factor.Mul(sdkmath.LegacyNewDec(10))
	}
	return factor
}
