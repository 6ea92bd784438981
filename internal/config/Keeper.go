package config

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Default keeper schedules (cron with seconds). The hourly round distributes,
// earns and harvests; the standalone harvest and distribute jobs are off
// unless configured.
const (
	DefaultRoundCron      = "0 0 * * * *"
	DefaultEarnCron       = "0 */10 * * * *"
	DefaultHarvestCron    = ""
	DefaultDistributeCron = ""
)

// KeeperConfig holds the keeper automation settings.
type KeeperConfig struct {
	RoundCron        string
	EarnCron         string
	HarvestCron      string
	DistributeCron   string
	DistributeEpochs uint32
}

// loadKeeperConfig loads keeper settings. A cron variable set to "off" disables that job.
func loadKeeperConfig(cfg *AppConfig) error {
	k := &cfg.Keeper

	k.RoundCron = cronOrDisabled("KEEPER_ROUND_CRON", DefaultRoundCron)
	k.EarnCron = cronOrDisabled("KEEPER_EARN_CRON", DefaultEarnCron)
	k.HarvestCron = cronOrDisabled("KEEPER_HARVEST_CRON", DefaultHarvestCron)
	k.DistributeCron = cronOrDisabled("KEEPER_DISTRIBUTE_CRON", DefaultDistributeCron)

	epochs, err := getEnvAsUint64OrDefault("DISTRIBUTE_EPOCHS", 1)
	if err != nil {
		return err
	}
	if epochs == 0 || epochs > 1000 {
		return fmt.Errorf("environment variable DISTRIBUTE_EPOCHS must be between 1 and 1000, got: %d", epochs)
	}
	k.DistributeEpochs = uint32(epochs)

	log.Debug().
		Str("round", k.RoundCron).
		Str("earn", k.EarnCron).
		Str("harvest", k.HarvestCron).
		Str("distribute", k.DistributeCron).
		Uint32("epochs", k.DistributeEpochs).
		Msg("Keeper configuration loaded successfully.")
	return nil
}

func cronOrDisabled(key, def string) string {
	spec := getEnvOrDefault(key, def)
	if spec == "off" {
		return ""
	}
	return spec
}
