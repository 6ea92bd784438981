package state

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/elys-network/yvault/internal/types"
)

// SaveHarvestEvent inserts a harvest event and returns its row id.
func SaveHarvestEvent(ctx context.Context, event types.HarvestEvent) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}
	if err := validateHarvestEvent(event); err != nil {
		return 0, err
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal harvest event: %w", err)
	}

	query := `
		INSERT INTO harvest_events (
			harvest_id, harvested_at, elapsed_seconds,
			gross_profit, governance_fee, strategist_fee, management_fee, net_profit,
			governance_fee_shares, strategist_fee_shares, management_fee_shares,
			pool_value, total_shares, price_per_share, event
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING row_id
	`

	var rowID int64
	err = DB.QueryRowContext(ctx, query,
		event.ID, event.Timestamp.UTC(), event.ElapsedSeconds,
		event.GrossProfit.String(), event.GovernanceFee.String(), event.StrategistFee.String(),
		event.ManagementFee.String(), event.NetProfit.String(),
		event.GovernanceFeeShares.String(), event.StrategistFeeShares.String(), event.ManagementFeeShares.String(),
		event.PoolValue.String(), event.TotalShares.String(), event.PricePerShare.String(), eventJSON,
	).Scan(&rowID)
	if err != nil {
		log.Error().Err(err).Str("harvest_id", event.ID).Msg("Failed to insert harvest event")
		return 0, fmt.Errorf("failed to insert harvest event: %w", err)
	}

	log.Info().Int64("row_id", rowID).Str("harvest_id", event.ID).Msg("Saved harvest event")
	return rowID, nil
}

// validateHarvestEvent rejects events whose numeric fields were never set;
// a nil sdkmath.Int would panic on String().
func validateHarvestEvent(event types.HarvestEvent) error {
	if event.ID == "" {
		return fmt.Errorf("harvest event has no id")
	}
	ints := map[string]bool{
		"gross_profit":          event.GrossProfit.IsNil(),
		"governance_fee":        event.GovernanceFee.IsNil(),
		"strategist_fee":        event.StrategistFee.IsNil(),
		"management_fee":        event.ManagementFee.IsNil(),
		"net_profit":            event.NetProfit.IsNil(),
		"governance_fee_shares": event.GovernanceFeeShares.IsNil(),
		"strategist_fee_shares": event.StrategistFeeShares.IsNil(),
		"management_fee_shares": event.ManagementFeeShares.IsNil(),
		"pool_value":            event.PoolValue.IsNil(),
		"total_shares":          event.TotalShares.IsNil(),
	}
	for name, isNil := range ints {
		if isNil {
			return fmt.Errorf("harvest event %s: %s is not set", event.ID, name)
		}
	}
	if event.PricePerShare.IsNil() {
		return fmt.Errorf("harvest event %s: price_per_share is not set", event.ID)
	}
	return nil
}

// Recorder persists harvest events for the vault.
type Recorder struct{}

// NewRecorder returns a Recorder backed by the global DB.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordHarvest stores event.
func (r *Recorder) RecordHarvest(ctx context.Context, event types.HarvestEvent) error {
	_, err := SaveHarvestEvent(ctx, event)
	return err
}
