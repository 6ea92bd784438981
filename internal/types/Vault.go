/*

This file contains the vault state types: lifecycle status, harvest events and the summary read model.

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

// VaultStatus is the lifecycle state of a vault.
type VaultStatus string

const (
	VaultActive VaultStatus = "ACTIVE"
	VaultPaused VaultStatus = "PAUSED"
)

// HarvestEvent records the accounting of a single harvest.
// It is emitted once and is not used for replay.
type HarvestEvent struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	ElapsedSeconds int64     `json:"elapsed_seconds"` // Time since the previous harvest

	GrossProfit   sdkmath.Int `json:"gross_profit"` // Negative on a strategy loss
	GovernanceFee sdkmath.Int `json:"governance_fee"`
	StrategistFee sdkmath.Int `json:"strategist_fee"`
	ManagementFee sdkmath.Int `json:"management_fee"`
	NetProfit     sdkmath.Int `json:"net_profit"`

	// Shares minted for each fee
	GovernanceFeeShares sdkmath.Int `json:"governance_fee_shares"`
	StrategistFeeShares sdkmath.Int `json:"strategist_fee_shares"`
	ManagementFeeShares sdkmath.Int `json:"management_fee_shares"`

	// Vault state after the harvest
	PoolValue     sdkmath.Int       `json:"pool_value"`
	TotalShares   sdkmath.Int       `json:"total_shares"`
	PricePerShare sdkmath.LegacyDec `json:"price_per_share"`
}

// TotalFees returns the asset value of all fees charged by the harvest.
func (e HarvestEvent) TotalFees() sdkmath.Int {
	return e.GovernanceFee.Add(e.StrategistFee).Add(e.ManagementFee)
}

// VaultSummary is a point-in-time view of a vault used by the API and dashboards.
type VaultSummary struct {
	Name          string            `json:"name"`
	Symbol        string            `json:"symbol"`
	Want          string            `json:"want"`
	Decimals      uint32            `json:"decimals"`
	Status        VaultStatus       `json:"status"`
	TotalShares   sdkmath.Int       `json:"total_shares"`
	IdleBalance   sdkmath.Int       `json:"idle_balance"`
	Deployed      sdkmath.Int       `json:"deployed"`
	PoolValue     sdkmath.Int       `json:"pool_value"`
	Available     sdkmath.Int       `json:"available"`
	PricePerShare sdkmath.LegacyDec `json:"price_per_share"`
	ReserveBps    uint64            `json:"reserve_bps"`
	Fees          FeeConfig         `json:"fees"`
	Roles         RolesConfig       `json:"roles"`
	Strategy      Address           `json:"strategy,omitempty"`
	LastHarvest   time.Time         `json:"last_harvest"`
}
