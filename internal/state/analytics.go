package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/elys-network/yvault/internal/types"
)

// ErrHarvestNotFound is returned when a harvest row does not exist.
var ErrHarvestNotFound = errors.New("harvest not found")

// HarvestRecord is a stored harvest event.
type HarvestRecord struct {
	RowID int64 `json:"row_id"`
	types.HarvestEvent
	RecordedAt time.Time `json:"recorded_at"`
}

// FeeTotals aggregates fees over all stored harvests
type FeeTotals struct {
	Harvests       int         `json:"harvests"`
	GrossProfit    sdkmath.Int `json:"gross_profit"`
	GovernanceFees sdkmath.Int `json:"governance_fees"`
	StrategistFees sdkmath.Int `json:"strategist_fees"`
	ManagementFees sdkmath.Int `json:"management_fees"`
}

const harvestColumns = `
	row_id, harvest_id, harvested_at, recorded_at, elapsed_seconds,
	gross_profit, governance_fee, strategist_fee, management_fee, net_profit,
	governance_fee_shares, strategist_fee_shares, management_fee_shares,
	pool_value, total_shares, price_per_share
`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanHarvest reads one harvest row. NUMERIC columns are scanned as text and
// parsed so that no precision is lost.
func scanHarvest(row rowScanner) (HarvestRecord, error) {
	var rec HarvestRecord
	var gross, govFee, stratFee, mgmtFee, net, govShares, stratShares, mgmtShares, pool, supply, price string

	err := row.Scan(
		&rec.RowID, &rec.ID, &rec.Timestamp, &rec.RecordedAt, &rec.ElapsedSeconds,
		&gross, &govFee, &stratFee, &mgmtFee, &net,
		&govShares, &stratShares, &mgmtShares,
		&pool, &supply, &price,
	)
	if err != nil {
		return HarvestRecord{}, err
	}

	ints := []struct {
		dst *sdkmath.Int
		src string
	}{
		{&rec.GrossProfit, gross},
		{&rec.GovernanceFee, govFee},
		{&rec.StrategistFee, stratFee},
		{&rec.ManagementFee, mgmtFee},
		{&rec.NetProfit, net},
		{&rec.GovernanceFeeShares, govShares},
		{&rec.StrategistFeeShares, stratShares},
		{&rec.ManagementFeeShares, mgmtShares},
		{&rec.PoolValue, pool},
		{&rec.TotalShares, supply},
	}
	for _, f := range ints {
		v, ok := sdkmath.NewIntFromString(f.src)
		if !ok {
			return HarvestRecord{}, fmt.Errorf("invalid integer column value %q", f.src)
		}
		*f.dst = v
	}

	rec.PricePerShare, err = sdkmath.LegacyNewDecFromStr(price)
	if err != nil {
		return HarvestRecord{}, fmt.Errorf("invalid price_per_share %q: %w", price, err)
	}
	return rec, nil
}

// GetRecentHarvests retrieves the most recent harvests, newest first
func GetRecentHarvests(ctx context.Context, limit int) ([]HarvestRecord, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	if limit <= 0 || limit > 100 {
		limit = 10 // Default limit
	}

	query := `SELECT ` + harvestColumns + ` FROM harvest_events ORDER BY harvested_at DESC, row_id DESC LIMIT $1`

	rows, err := DB.QueryContext(ctx, query, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to query recent harvests")
		return nil, fmt.Errorf("failed to query recent harvests: %w", err)
	}
	defer rows.Close()

	harvests := []HarvestRecord{}
	for rows.Next() {
		rec, err := scanHarvest(rows)
		if err != nil {
			log.Error().Err(err).Msg("Failed to scan harvest row")
			continue // Skip this row and continue with others
		}
		harvests = append(harvests, rec)
	}

	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("Error occurred during row iteration")
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	log.Debug().Int("count", len(harvests)).Int("limit", limit).Msg("Retrieved recent harvests")
	return harvests, nil
}

// GetHarvestByID retrieves a harvest by its row id
func GetHarvestByID(ctx context.Context, rowID int64) (*HarvestRecord, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `SELECT ` + harvestColumns + ` FROM harvest_events WHERE row_id = $1`
	rec, err := scanHarvest(DB.QueryRowContext(ctx, query, rowID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("harvest with ID %d: %w", rowID, ErrHarvestNotFound)
		}
		log.Error().Err(err).Int64("row_id", rowID).Msg("Failed to query harvest by ID")
		return nil, fmt.Errorf("failed to query harvest by ID: %w", err)
	}
	return &rec, nil
}

// GetLatestHarvest retrieves the most recent harvest.
func GetLatestHarvest(ctx context.Context) (*HarvestRecord, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `SELECT ` + harvestColumns + ` FROM harvest_events ORDER BY harvested_at DESC, row_id DESC LIMIT 1`
	rec, err := scanHarvest(DB.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHarvestNotFound
		}
		return nil, fmt.Errorf("failed to query latest harvest: %w", err)
	}
	return &rec, nil
}

// GetFeeTotals sums profit and fees over all harvests.
func GetFeeTotals(ctx context.Context) (*FeeTotals, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(gross_profit), 0)::TEXT,
			COALESCE(SUM(governance_fee), 0)::TEXT,
			COALESCE(SUM(strategist_fee), 0)::TEXT,
			COALESCE(SUM(management_fee), 0)::TEXT
		FROM harvest_events
	`

	totals := &FeeTotals{}
	var gross, gov, strat, mgmt string
	err := DB.QueryRowContext(ctx, query).Scan(&totals.Harvests, &gross, &gov, &strat, &mgmt)
	if err != nil {
		return nil, fmt.Errorf("failed to get fee totals: %w", err)
	}

	for _, f := range []struct {
		dst *sdkmath.Int
		src string
	}{
		{&totals.GrossProfit, gross},
		{&totals.GovernanceFees, gov},
		{&totals.StrategistFees, strat},
		{&totals.ManagementFees, mgmt},
	} {
		v, ok := sdkmath.NewIntFromString(f.src)
		if !ok {
			return nil, fmt.Errorf("invalid fee total %q", f.src)
		}
		*f.dst = v
	}

	log.Debug().
		Int("harvests", totals.Harvests).
		Str("governanceFees", totals.GovernanceFees.String()).
		Msg("Retrieved fee totals")
	return totals, nil
}

// HarvestRepository serves stored harvests to the API.
type HarvestRepository struct{}

// NewHarvestRepository returns a HarvestRepository backed by the global DB.
func NewHarvestRepository() *HarvestRepository {
	return &HarvestRepository{}
}

func (HarvestRepository) Recent(ctx context.Context, limit int) ([]HarvestRecord, error) {
	return GetRecentHarvests(ctx, limit)
}

func (HarvestRepository) Latest(ctx context.Context) (*HarvestRecord, error) {
	return GetLatestHarvest(ctx)
}

func (HarvestRepository) ByID(ctx context.Context, rowID int64) (*HarvestRecord, error) {
	return GetHarvestByID(ctx, rowID)
}

func (HarvestRepository) FeeTotals(ctx context.Context) (*FeeTotals, error) {
	return GetFeeTotals(ctx)
}
