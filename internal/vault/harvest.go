package vault

import (
	"context"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"

	"github.com/elys-network/yvault/internal/accounting"
	"github.com/elys-network/yvault/internal/fees"
	"github.com/elys-network/yvault/internal/metrics"
	"github.com/elys-network/yvault/internal/types"
)

// Harvest realizes the strategy result, charges the performance fees on a profit
// and the management fee for the time since the previous harvest, and mints the
// fee shares. The governance performance fee and the management fee are minted
// to the treasury, the strategist fee to the strategist.
//
// A harvest at the same timestamp as the previous one accrues no management fee.
// A harvest with no shares outstanding charges no fee at all.
func (v *Vault) Harvest(ctx context.Context, caller types.Address) (event types.HarvestEvent, err error) {
	release, err := v.enter("harvest")
	defer release()
	if err != nil {
		return types.HarvestEvent{}, err
	}
	defer func() { v.track("harvest", caller, err) }()

	snap := v.snapshot()
	if err := requireRole("harvest", caller, snap.roles.Keeper); err != nil {
		return types.HarvestEvent{}, err
	}
	if err := requireActive("harvest", snap); err != nil {
		return types.HarvestEvent{}, err
	}
	if snap.strategy == nil {
		return types.HarvestEvent{}, errorsmod.Wrap(types.ErrStrategyNotSet, "cannot harvest")
	}

	now := v.clock.Now()

	if v.primeDistributor {
		if err := v.distribute(ctx, caller, 1); err != nil {
			return types.HarvestEvent{}, fmt.Errorf("failed to prime reward distributor: %w", err)
		}
	}

	reported, err := snap.strategy.Harvest(ctx)
	if err != nil {
		return types.HarvestEvent{}, fmt.Errorf("strategy harvest failed: %w", err)
	}
	if reported.IsNil() {
		reported = sdkmath.ZeroInt()
	}

	// The strategy has rebooked its position; from here a failure carries the
	// result over to the next harvest instead of dropping it.
	profit := reported.Add(snap.unbooked)
	defer func() {
		if err != nil {
			v.mu.Lock()
			v.unbooked = profit
			v.mu.Unlock()
		}
	}()

	pool, err := v.poolValue(ctx, snap.strategy)
	if err != nil {
		return types.HarvestEvent{}, err
	}

	var (
		govFee, stratFee, managementFee = sdkmath.ZeroInt(), sdkmath.ZeroInt(), sdkmath.ZeroInt()
		govShares, stratShares          = sdkmath.ZeroInt(), sdkmath.ZeroInt()
		managementShares                = sdkmath.ZeroInt()
		netProfit                       = profit
	)

	elapsed := now.Sub(snap.lastHarvest)
	if elapsed < 0 {
		elapsed = 0
	}

	// With no shares outstanding there is no holder to charge; the result stays
	// in the pool and goes to the next depositor.
	if snap.totalShares.IsPositive() {
		govFee, stratFee, netProfit, err = fees.ApplyPerformanceFee(profit, snap.fees.PerformanceFeeGovernance, snap.fees.PerformanceFeeStrategist)
		if err != nil {
			return types.HarvestEvent{}, err
		}

		// The management fee is charged on the pool as it stood before this harvest's profit.
		managementBase := pool
		if profit.IsPositive() {
			managementBase = pool.Sub(profit)
		}
		if managementBase.IsNegative() {
			managementBase = sdkmath.ZeroInt()
		}
		managementFee, err = fees.ApplyManagementFee(managementBase, snap.fees.ManagementFee, elapsed)
		if err != nil {
			return types.HarvestEvent{}, err
		}

		// Every fee is priced against the same pre-mint supply.
		poolExcludingFees := pool.Sub(govFee).Sub(stratFee).Sub(managementFee)
		govShares, err = fees.FeeShares(govFee, snap.totalShares, poolExcludingFees)
		if err != nil {
			return types.HarvestEvent{}, err
		}
		stratShares, err = fees.FeeShares(stratFee, snap.totalShares, poolExcludingFees)
		if err != nil {
			return types.HarvestEvent{}, err
		}
		managementShares, err = fees.FeeShares(managementFee, snap.totalShares, poolExcludingFees)
		if err != nil {
			return types.HarvestEvent{}, err
		}
	} else if !pool.IsZero() {
		v.logger.Warn().
			Str("pool_value", pool.String()).
			Str("gross_profit", profit.String()).
			Msg("Harvest with no shares outstanding; fees skipped")
	}

	treasuryShares := govShares.Add(managementShares)
	totalShares := snap.totalShares.Add(treasuryShares).Add(stratShares)

	event = types.HarvestEvent{
		ID:                  uuid.New().String(),
		Timestamp:           now,
		ElapsedSeconds:      int64(elapsed.Seconds()),
		GrossProfit:         profit,
		GovernanceFee:       govFee,
		StrategistFee:       stratFee,
		ManagementFee:       managementFee,
		NetProfit:           netProfit,
		GovernanceFeeShares: govShares,
		StrategistFeeShares: stratShares,
		ManagementFeeShares: managementShares,
		PoolValue:           pool,
		TotalShares:         totalShares,
		PricePerShare:       accounting.PricePerShare(totalShares, pool),
	}

	v.mu.Lock()
	if treasuryShares.IsPositive() {
		v.shares[snap.roles.Treasury] = v.sharesLocked(snap.roles.Treasury).Add(treasuryShares)
	}
	if stratShares.IsPositive() {
		v.shares[snap.roles.Strategist] = v.sharesLocked(snap.roles.Strategist).Add(stratShares)
	}
	v.totalShares = totalShares
	v.lastHarvest = now
	v.unbooked = sdkmath.ZeroInt()
	v.mu.Unlock()

	metrics.ObserveHarvest(event)

	v.logger.Info().
		Str("harvest_id", event.ID).
		Str("gross_profit", profit.String()).
		Str("governance_fee", govFee.String()).
		Str("strategist_fee", stratFee.String()).
		Str("management_fee", managementFee.String()).
		Int64("elapsed_seconds", event.ElapsedSeconds).
		Str("price_per_share", event.PricePerShare.String()).
		Msg("Harvest booked")

	if recErr := v.recorder.RecordHarvest(ctx, event); recErr != nil {
		v.logger.Error().Err(recErr).Str("harvest_id", event.ID).Msg("Failed to record harvest event")
	}

	return event, nil
}
