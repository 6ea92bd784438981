package metrics

import (
	"net/http"
	"sync"

	sdkmath "cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/elys-network/yvault/internal/types"
	"github.com/elys-network/yvault/internal/utils"
)

type Outcome string

const (
	Success Outcome = "success"
	Error   Outcome = "error"
	Noop    Outcome = "noop"
)

func (o Outcome) String() string {
	return string(o)
}

// Fee categories reported on yvault_fees_collected_total.
const (
	FeeGovernance = "performance_governance"
	FeeStrategist = "performance_strategist"
	FeeManagement = "management"
	FeeWithdrawal = "withdrawal"
)

var (
	once sync.Once

	operationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yvault_operations_total",
			Help: "The total number of vault operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	feesCollectedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yvault_fees_collected_total",
			Help: "Asset value of fees charged, in base units of the want token",
		},
		[]string{"category"},
	)

	harvestProfitGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "yvault_harvest_profit",
			Help: "Gross profit realized by the most recent harvest, negative on a loss",
		},
	)

	pricePerShareGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "yvault_price_per_share",
			Help: "Pool value divided by total shares",
		},
	)

	totalSupplyGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "yvault_total_supply",
			Help: "Total vault shares outstanding",
		},
	)

	poolValueGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "yvault_pool_value",
			Help: "Idle plus deployed want balance",
		},
	)
)

// Init registers the vault collectors with the default registry.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			operationsCounter,
			feesCollectedCounter,
			harvestProfitGauge,
			pricePerShareGauge,
			totalSupplyGauge,
			poolValueGauge,
		)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordOperation counts a vault operation.
func RecordOperation(operation string, outcome Outcome) {
	operationsCounter.WithLabelValues(operation, outcome.String()).Inc()
}

// RecordFee adds amount to the collected fees of category.
func RecordFee(category string, amount sdkmath.Int) {
	if amount.IsNil() || !amount.IsPositive() {
		return
	}
	v, err := utils.SDKIntToFloat64(amount, 0)
	if err != nil {
		log.Warn().Err(err).Str("category", category).Msg("Failed to convert fee for metrics")
		return
	}
	feesCollectedCounter.WithLabelValues(category).Add(v)
}

// ObserveHarvest records the fees and resulting vault state of a harvest.
func ObserveHarvest(event types.HarvestEvent) {
	RecordFee(FeeGovernance, event.GovernanceFee)
	RecordFee(FeeStrategist, event.StrategistFee)
	RecordFee(FeeManagement, event.ManagementFee)

	if profit, err := utils.SignedSDKIntToFloat64(event.GrossProfit); err == nil {
		harvestProfitGauge.Set(profit)
	}
	ObserveVaultState(event.TotalShares, event.PoolValue, event.PricePerShare)
}

// ObserveVaultState sets the supply, pool value and share price gauges.
func ObserveVaultState(totalShares, poolValue sdkmath.Int, pricePerShare sdkmath.LegacyDec) {
	if v, err := utils.SDKIntToFloat64(totalShares, 0); err == nil {
		totalSupplyGauge.Set(v)
	}
	if v, err := utils.SDKIntToFloat64(poolValue, 0); err == nil {
		poolValueGauge.Set(v)
	}
	if !pricePerShare.IsNil() {
		if v, err := pricePerShare.Float64(); err == nil {
			pricePerShareGauge.Set(v)
		}
	}
}
