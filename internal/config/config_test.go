package config

import (
	"bytes"
	"os"
	"testing"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddress(t *testing.T, seed byte) string {
	t.Helper()
	addr, err := sdk.Bech32ifyAddressBytes("elys", bytes.Repeat([]byte{seed}, 20))
	require.NoError(t, err)
	return addr
}

// setValidEnv sets a complete simulation configuration.
func setValidEnv(t *testing.T) map[string]string {
	t.Helper()
	env := map[string]string{
		"VAULT_MODE":                 "simulation",
		"DB_HOST":                    "localhost",
		"DB_PORT":                    "5432",
		"DB_USER":                    "vault",
		"DB_PASSWORD":                "secret",
		"DB_NAME":                    "yvault",
		"VAULT_NAME":                 "Yield USDC",
		"VAULT_SYMBOL":               "yvUSDC",
		"VAULT_WANT_DENOM":           "uusdc",
		"ADDRESS_PREFIX":             "elys",
		"VAULT_ADDRESS":              testAddress(t, 1),
		"STRATEGY_ADDRESS":           testAddress(t, 2),
		"DISTRIBUTOR_ADDRESS":        testAddress(t, 3),
		"GOVERNANCE_ADDRESS":         testAddress(t, 4),
		"STRATEGIST_ADDRESS":         testAddress(t, 5),
		"KEEPER_ADDRESS":             testAddress(t, 6),
		"TREASURY_ADDRESS":           testAddress(t, 7),
		"PERFORMANCE_FEE_GOVERNANCE": "1000",
		"PERFORMANCE_FEE_STRATEGIST": "500",
		"WITHDRAWAL_FEE":             "50",
		"MANAGEMENT_FEE":             "200",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}
	return env
}

func TestLoadConfig_Valid(t *testing.T) {
	env := setValidEnv(t)
	t.Setenv("GUARDIAN_ADDRESS", testAddress(t, 8))
	t.Setenv("RESERVE_BPS", "500")
	t.Setenv("PRIME_DISTRIBUTOR_ON_HARVEST", "true")
	t.Setenv("KEEPER_DISTRIBUTE_CRON", "off")
	t.Setenv("SIM_GENESIS_BALANCES", testAddress(t, 9)+"=1000000, "+testAddress(t, 10)+"=5")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, SimulationMode, cfg.Mode)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "8080", cfg.WebPort)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "disable", cfg.DB.SSLMode)

	assert.Equal(t, uint32(6), cfg.Vault.Decimals)
	assert.Equal(t, env["VAULT_ADDRESS"], cfg.Vault.Address.String())
	assert.Equal(t, env["TREASURY_ADDRESS"], cfg.Vault.Roles.Treasury.String())
	assert.Equal(t, testAddress(t, 8), cfg.Vault.Roles.Guardian.String())
	assert.True(t, cfg.Vault.Roles.Rewards.Empty())
	assert.Equal(t, uint64(1000), cfg.Vault.Fees.PerformanceFeeGovernance)
	assert.Equal(t, uint64(200), cfg.Vault.Fees.ManagementFee)
	assert.Equal(t, uint64(500), cfg.Vault.ReserveBps)
	assert.True(t, cfg.Vault.PrimeDistributorOnHarvest)

	require.Len(t, cfg.Vault.GenesisBalances, 2)
	assert.Equal(t, int64(1000000), cfg.Vault.GenesisBalances[0].Amount.Int64())
	assert.Equal(t, int64(5), cfg.Vault.GenesisBalances[1].Amount.Int64())

	assert.Equal(t, DefaultRoundCron, cfg.Keeper.RoundCron)
	assert.Equal(t, DefaultEarnCron, cfg.Keeper.EarnCron)
	assert.Empty(t, cfg.Keeper.HarvestCron)
	assert.Empty(t, cfg.Keeper.DistributeCron)
	assert.Equal(t, uint32(1), cfg.Keeper.DistributeEpochs)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"live mode refused", "VAULT_MODE", "live", "VAULT_MODE"},
		{"bad port", "DB_PORT", "70000", "DB_PORT"},
		{"non numeric port", "DB_PORT", "abc", "DB_PORT"},
		{"bad denom", "VAULT_WANT_DENOM", "1", "VAULT_WANT_DENOM"},
		{"wrong prefix", "GOVERNANCE_ADDRESS", "cosmos1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5lzv7xu", "GOVERNANCE_ADDRESS"},
		{"garbage address", "TREASURY_ADDRESS", "treasury", "TREASURY_ADDRESS"},
		{"fee above ceiling", "WITHDRAWAL_FEE", "201", "fee configuration"},
		{"reserve above denominator", "RESERVE_BPS", "10001", "RESERVE_BPS"},
		{"bad bool", "PRIME_DISTRIBUTOR_ON_HARVEST", "maybe", "PRIME_DISTRIBUTOR_ON_HARVEST"},
		{"zero epochs", "DISTRIBUTE_EPOCHS", "0", "DISTRIBUTE_EPOCHS"},
		{"decimals too large", "VAULT_DECIMALS", "19", "VAULT_DECIMALS"},
		{"malformed genesis", "SIM_GENESIS_BALANCES", "nobody", "SIM_GENESIS_BALANCES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setValidEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig_SameVaultAndStrategy(t *testing.T) {
	env := setValidEnv(t)
	t.Setenv("STRATEGY_ADDRESS", env["VAULT_ADDRESS"])
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	setValidEnv(t)
	// An empty value still counts as set.
	unsetEnv(t, "KEEPER_ADDRESS")
	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KEEPER_ADDRESS is required")
}

func TestParseGenesisBalances(t *testing.T) {
	a := testAddress(t, 11)

	balances, err := parseGenesisBalances("", "elys")
	require.NoError(t, err)
	assert.Nil(t, balances)

	_, err = parseGenesisBalances(a+"=10,"+a+"=20", "elys")
	assert.ErrorContains(t, err, "duplicate")

	_, err = parseGenesisBalances(a+"=0", "elys")
	assert.ErrorContains(t, err, "positive")

	_, err = parseGenesisBalances(a+"=-3", "elys")
	assert.Error(t, err)
}

func TestLoadDBConfig(t *testing.T) {
	setValidEnv(t)
	t.Setenv("DB_SSLMODE", "require")
	db, err := LoadDBConfig()
	require.NoError(t, err)
	assert.Equal(t, "require", db.SSLMode)
	assert.Equal(t, "yvault", db.DBName)
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	prev, had := os.LookupEnv(key)
	os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, prev)
		}
	})
}
