/*

This file loads the vault definition: identity, role addresses, fee rates and
the simulated genesis balances the in-memory ledger starts from.

Addresses are bech32 strings under ADDRESS_PREFIX.

*/

package config

import (
	"fmt"
	"strings"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/rs/zerolog/log"

	"github.com/elys-network/yvault/internal/fees"
	"github.com/elys-network/yvault/internal/types"
	"github.com/elys-network/yvault/internal/utils"
)

// VaultConfig describes the vault and the accounts around it.
type VaultConfig struct {
	Name     string
	Symbol   string
	Want     string
	Decimals uint32

	AddressPrefix      string
	Address            types.Address
	StrategyAddress    types.Address
	DistributorAddress types.Address

	Roles                     types.RolesConfig
	Fees                      types.FeeConfig
	ReserveBps                uint64
	PrimeDistributorOnHarvest bool

	GenesisBalances []GenesisBalance
}

// GenesisBalance is an initial want balance of the simulated ledger.
type GenesisBalance struct {
	Address types.Address
	Amount  sdkmath.Int
}

func loadVaultConfig(cfg *AppConfig) error {
	log.Info().Msg("Loading vault configuration from environment variables...")

	v := &cfg.Vault
	var err error

	if v.Name, err = getEnv("VAULT_NAME"); err != nil {
		return err
	}
	if v.Symbol, err = getEnv("VAULT_SYMBOL"); err != nil {
		return err
	}
	if v.Want, err = getEnv("VAULT_WANT_DENOM"); err != nil {
		return err
	}
	if err := sdk.ValidateDenom(v.Want); err != nil {
		return fmt.Errorf("VAULT_WANT_DENOM: %w", err)
	}
	decimals, err := getEnvAsUint64OrDefault("VAULT_DECIMALS", 6)
	if err != nil {
		return err
	}
	if decimals > 18 {
		return fmt.Errorf("VAULT_DECIMALS must be at most 18, got %d", decimals)
	}
	v.Decimals = uint32(decimals)

	if v.AddressPrefix, err = getEnv("ADDRESS_PREFIX"); err != nil {
		return err
	}

	required := []struct {
		key string
		dst *types.Address
	}{
		{"VAULT_ADDRESS", &v.Address},
		{"STRATEGY_ADDRESS", &v.StrategyAddress},
		{"DISTRIBUTOR_ADDRESS", &v.DistributorAddress},
		{"GOVERNANCE_ADDRESS", &v.Roles.Governance},
		{"STRATEGIST_ADDRESS", &v.Roles.Strategist},
		{"KEEPER_ADDRESS", &v.Roles.Keeper},
		{"TREASURY_ADDRESS", &v.Roles.Treasury},
	}
	for _, r := range required {
		raw, err := getEnv(r.key)
		if err != nil {
			return err
		}
		if *r.dst, err = parseAddress(r.key, raw, v.AddressPrefix); err != nil {
			return err
		}
	}

	optional := []struct {
		key string
		dst *types.Address
	}{
		{"GUARDIAN_ADDRESS", &v.Roles.Guardian},
		{"REWARDS_ADDRESS", &v.Roles.Rewards},
	}
	for _, o := range optional {
		raw := getEnvOrDefault(o.key, "")
		if raw == "" {
			continue
		}
		if *o.dst, err = parseAddress(o.key, raw, v.AddressPrefix); err != nil {
			return err
		}
	}

	if v.Address == v.StrategyAddress || v.Address == v.DistributorAddress {
		return fmt.Errorf("vault, strategy and distributor addresses must differ")
	}

	rates := []struct {
		key string
		dst *uint64
	}{
		{"PERFORMANCE_FEE_GOVERNANCE", &v.Fees.PerformanceFeeGovernance},
		{"PERFORMANCE_FEE_STRATEGIST", &v.Fees.PerformanceFeeStrategist},
		{"WITHDRAWAL_FEE", &v.Fees.WithdrawalFee},
		{"MANAGEMENT_FEE", &v.Fees.ManagementFee},
	}
	for _, r := range rates {
		if *r.dst, err = getEnvAsUint64(r.key); err != nil {
			return err
		}
	}
	if err := fees.ValidateFeeConfig(v.Fees); err != nil {
		return fmt.Errorf("fee configuration: %w", err)
	}

	if v.ReserveBps, err = getEnvAsUint64OrDefault("RESERVE_BPS", 0); err != nil {
		return err
	}
	if v.ReserveBps > types.RateDenom {
		return fmt.Errorf("RESERVE_BPS must be at most %d, got %d", types.RateDenom, v.ReserveBps)
	}
	if v.PrimeDistributorOnHarvest, err = getEnvAsBool("PRIME_DISTRIBUTOR_ON_HARVEST", false); err != nil {
		return err
	}

	if v.GenesisBalances, err = parseGenesisBalances(getEnvOrDefault("SIM_GENESIS_BALANCES", ""), v.AddressPrefix); err != nil {
		return err
	}

	log.Debug().
		Str("name", v.Name).
		Str("symbol", v.Symbol).
		Interface("fees", v.Fees).
		Int("genesisAccounts", len(v.GenesisBalances)).
		Msg("Vault configuration loaded successfully.")

	return nil
}

// parseAddress checks that raw is a bech32 address with the expected prefix.
func parseAddress(key, raw, prefix string) (types.Address, error) {
	raw = strings.TrimSpace(raw)
	bz, err := sdk.GetFromBech32(raw, prefix)
	if err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	if err := sdk.VerifyAddressFormat(bz); err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	return types.Address(raw), nil
}

// parseGenesisBalances parses "addr=amount,addr=amount". Empty input yields no balances.
func parseGenesisBalances(raw, prefix string) ([]GenesisBalance, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var balances []GenesisBalance
	seen := make(map[types.Address]bool)
	for _, entry := range strings.Split(raw, ",") {
		addrStr, amountStr, ok := strings.Cut(strings.TrimSpace(entry), "=")
		if !ok {
			return nil, fmt.Errorf("SIM_GENESIS_BALANCES: entry %q must be address=amount", entry)
		}
		addr, err := parseAddress("SIM_GENESIS_BALANCES", addrStr, prefix)
		if err != nil {
			return nil, err
		}
		if seen[addr] {
			return nil, fmt.Errorf("SIM_GENESIS_BALANCES: duplicate address %s", addr)
		}
		seen[addr] = true

		amount, err := utils.ParseAmount(amountStr)
		if err != nil {
			return nil, fmt.Errorf("SIM_GENESIS_BALANCES: %s: %w", addr, err)
		}
		if !amount.IsPositive() {
			return nil, fmt.Errorf("SIM_GENESIS_BALANCES: %s: amount must be positive", addr)
		}
		balances = append(balances, GenesisBalance{Address: addr, Amount: amount})
	}
	return balances, nil
}
