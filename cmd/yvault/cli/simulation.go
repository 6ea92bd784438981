package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/elys-network/yvault/internal/config"
	"github.com/elys-network/yvault/internal/distributor"
	"github.com/elys-network/yvault/internal/ledger"
	"github.com/elys-network/yvault/internal/strategy"
	"github.com/elys-network/yvault/internal/vault"
)

// simulation is a vault wired to an in-memory ledger, a locker strategy and a
// staking proxy that forwards rewards into the strategy. Genesis accounts start
// with the vault approved for their whole balance; later top-ups go through
// POST /api/ledger/approve.
type simulation struct {
	Ledger      *ledger.MemoryLedger
	Strategy    *strategy.LockerStrategy
	Distributor *distributor.StakingProxy
	Vault       *vault.Vault
}

func buildSimulation(cfg config.VaultConfig, recorder vault.Recorder) (*simulation, error) {
	ctx := context.Background()
	l := ledger.NewMemoryLedger(cfg.Want)
	for _, b := range cfg.GenesisBalances {
		if err := l.Mint(b.Address, b.Amount); err != nil {
			return nil, fmt.Errorf("failed to mint genesis balance for %s: %w", b.Address, err)
		}
		if err := l.Approve(ctx, b.Address, cfg.Address, l.Allowance(b.Address, cfg.Address).Add(b.Amount)); err != nil {
			return nil, fmt.Errorf("failed to approve vault for %s: %w", b.Address, err)
		}
	}

	s, err := strategy.NewLockerStrategy(cfg.StrategyAddress, cfg.Address, l)
	if err != nil {
		return nil, err
	}

	proxy, err := distributor.NewStakingProxy(distributor.Config{
		Address:   cfg.DistributorAddress,
		Owner:     cfg.Roles.Governance,
		Keeper:    cfg.Roles.Keeper,
		Recipient: cfg.StrategyAddress,
		Ledger:    l,
	})
	if err != nil {
		return nil, err
	}

	v, err := vault.New(vault.Config{
		Name:                      cfg.Name,
		Symbol:                    cfg.Symbol,
		Want:                      cfg.Want,
		Decimals:                  cfg.Decimals,
		Address:                   cfg.Address,
		Ledger:                    l,
		Strategy:                  s,
		Distributor:               proxy,
		Recorder:                  recorder,
		Roles:                     cfg.Roles,
		Fees:                      cfg.Fees,
		ReserveBps:                cfg.ReserveBps,
		PrimeDistributorOnHarvest: cfg.PrimeDistributorOnHarvest,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("vault", cfg.Address.String()).
		Str("strategy", cfg.StrategyAddress.String()).
		Str("distributor", cfg.DistributorAddress.String()).
		Int("genesisAccounts", len(cfg.GenesisBalances)).
		Msg("Simulation vault assembled")

	return &simulation{Ledger: l, Strategy: s, Distributor: proxy, Vault: v}, nil
}
