package state

import (
	"context"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elys-network/yvault/internal/types"
)

func sampleEvent(id string) types.HarvestEvent {
	return types.HarvestEvent{
		ID:                  id,
		Timestamp:           time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		ElapsedSeconds:      3600,
		GrossProfit:         sdkmath.NewInt(100),
		GovernanceFee:       sdkmath.NewInt(10),
		StrategistFee:       sdkmath.NewInt(5),
		ManagementFee:       sdkmath.ZeroInt(),
		NetProfit:           sdkmath.NewInt(85),
		GovernanceFeeShares: sdkmath.NewInt(9),
		StrategistFeeShares: sdkmath.NewInt(4),
		ManagementFeeShares: sdkmath.ZeroInt(),
		PoolValue:           sdkmath.NewInt(1100),
		TotalShares:         sdkmath.NewInt(1013),
		PricePerShare:       sdkmath.LegacyMustNewDecFromStr("1.085883514313919052"),
	}
}

func TestFunctionsRequireDB(t *testing.T) {
	require.Nil(t, DB)
	ctx := context.Background()

	_, err := SaveHarvestEvent(ctx, sampleEvent("a"))
	assert.ErrorContains(t, err, "database not initialized")
	_, err = GetRecentHarvests(ctx, 5)
	assert.ErrorContains(t, err, "database not initialized")
	_, err = GetHarvestByID(ctx, 1)
	assert.ErrorContains(t, err, "database not initialized")
	_, err = GetLatestHarvest(ctx)
	assert.ErrorContains(t, err, "database not initialized")
	_, err = GetFeeTotals(ctx)
	assert.ErrorContains(t, err, "database not initialized")
	_, err = GetCurrentRoundNumber()
	assert.ErrorContains(t, err, "database not initialized")
	_, err = IncrementRoundNumber()
	assert.ErrorContains(t, err, "database not initialized")
	assert.ErrorContains(t, ResetRoundNumber(), "database not initialized")
	assert.ErrorContains(t, EnsureSchema(), "database not initialized")
	assert.ErrorContains(t, DropSchema(), "database not initialized")
	assert.Error(t, TestDBConnection())
	assert.Error(t, NewRecorder().RecordHarvest(ctx, sampleEvent("a")))
}

func TestValidateHarvestEvent(t *testing.T) {
	require.NoError(t, validateHarvestEvent(sampleEvent("ok")))

	noID := sampleEvent("")
	assert.ErrorContains(t, validateHarvestEvent(noID), "no id")

	missingInt := sampleEvent("x")
	missingInt.NetProfit = sdkmath.Int{}
	assert.ErrorContains(t, validateHarvestEvent(missingInt), "net_profit")

	missingPrice := sampleEvent("y")
	missingPrice.PricePerShare = sdkmath.LegacyDec{}
	assert.ErrorContains(t, validateHarvestEvent(missingPrice), "price_per_share")
}

func TestDBConfigDSN(t *testing.T) {
	cfg := DBConfig{Host: "localhost", Port: 5432, User: "vault", Password: "secret", DBName: "yvault", SSLMode: "disable"}
	assert.Equal(t, "host=localhost port=5432 user=vault password=secret dbname=yvault sslmode=disable", cfg.DSN())
}
