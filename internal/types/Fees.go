/*

This file contains the fee policy types for the vault: the four fee rates and their hard ceilings.

All rates are expressed in basis points of RateDenom.

*/

package types

const (
	// RateDenom is the basis point denominator used by every fee rate.
	RateDenom = 10_000

	// MaxPerformanceFee is the ceiling for each of the two performance fee rates.
	MaxPerformanceFee = 3_000
	// MaxWithdrawalFee is the ceiling for the withdrawal fee rate.
	MaxWithdrawalFee = 200
	// MaxManagementFee is the ceiling for the annualized management fee rate.
	MaxManagementFee = 200

	// SecondsPerYear is the year length used to prorate the management fee.
	SecondsPerYear = 31_556_952
)

// FeeConfig holds the four fee rates of a vault, in basis points.
type FeeConfig struct {
	PerformanceFeeGovernance uint64 `json:"performance_fee_governance"` // Share of harvested profit minted to the treasury
	PerformanceFeeStrategist uint64 `json:"performance_fee_strategist"` // Share of harvested profit minted to the strategist
	WithdrawalFee            uint64 `json:"withdrawal_fee"`             // Taken from the withdrawn assets, sent to the treasury
	ManagementFee            uint64 `json:"management_fee"`             // Annualized, charged on pool value at harvest
}
