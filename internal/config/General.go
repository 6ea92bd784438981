package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/elys-network/yvault/internal/state"
)

// SimulationMode is the only mode this build runs in: the vault operates on
// an in-memory ledger seeded from SIM_GENESIS_BALANCES.
const SimulationMode = "simulation"

// AppConfig holds all application configuration loaded from environment variables.
type AppConfig struct {
	Mode      string
	LogLevel  string
	LogFormat string // "console" or "json"
	WebPort   string
	DB        state.DBConfig

	Vault  VaultConfig
	Keeper KeeperConfig
}

// LoadConfig loads configuration from environment variables.
// Variables without a documented default are required.
func LoadConfig() (*AppConfig, error) {
	log.Info().Msg("Loading application configuration from environment variables...")

	cfg := &AppConfig{}
	var err error

	cfg.Mode, err = getEnv("VAULT_MODE")
	if err != nil {
		return nil, err
	}
	if cfg.Mode != SimulationMode {
		return nil, fmt.Errorf("VAULT_MODE must be %q, got %q", SimulationMode, cfg.Mode)
	}

	cfg.LogLevel = LogLevel()
	cfg.LogFormat = LogFormat()
	cfg.WebPort = getEnvOrDefault("WEB_PORT", "8080")

	if err := loadDBConfig(cfg); err != nil {
		return nil, err
	}
	if err := loadVaultConfig(cfg); err != nil {
		return nil, err
	}
	if err := loadKeeperConfig(cfg); err != nil {
		return nil, err
	}

	log.Debug().
		Str("mode", cfg.Mode).
		Str("vault", cfg.Vault.Address.String()).
		Str("want", cfg.Vault.Want).
		Msg("Configuration loaded successfully.")

	return cfg, nil
}

// LogLevel returns LOG_LEVEL, defaulting to info.
func LogLevel() string {
	return getEnvOrDefault("LOG_LEVEL", "info")
}

// LogFormat returns LOG_FORMAT, defaulting to console.
func LogFormat() string {
	return getEnvOrDefault("LOG_FORMAT", "console")
}

// LoadDBConfig loads only the database settings, for maintenance commands.
func LoadDBConfig() (state.DBConfig, error) {
	cfg := &AppConfig{}
	if err := loadDBConfig(cfg); err != nil {
		return state.DBConfig{}, err
	}
	return cfg.DB, nil
}

func loadDBConfig(cfg *AppConfig) error {
	var err error

	cfg.DB.Host, err = getEnv("DB_HOST")
	if err != nil {
		return err
	}
	port, err := getEnvAsUint64("DB_PORT")
	if err != nil {
		return err
	}
	if port == 0 || port > 65535 {
		return fmt.Errorf("environment variable DB_PORT must be a valid port, got: %d", port)
	}
	cfg.DB.Port = int(port)

	cfg.DB.User, err = getEnv("DB_USER")
	if err != nil {
		return err
	}
	cfg.DB.Password, err = getEnv("DB_PASSWORD")
	if err != nil {
		return err
	}
	cfg.DB.DBName, err = getEnv("DB_NAME")
	if err != nil {
		return err
	}
	cfg.DB.SSLMode = getEnvOrDefault("DB_SSLMODE", "disable")
	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvOrDefault retrieves a string environment variable, falling back to def when unset or blank.
func getEnvOrDefault(key, def string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return value
	}
	return def
}

// getEnvAsUint64 retrieves an environment variable as a uint64. Returns error if not set or invalid.
func getEnvAsUint64(key string) (uint64, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid uint64, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsUint64OrDefault is getEnvAsUint64 for optional variables.
func getEnvAsUint64OrDefault(key string, def uint64) (uint64, error) {
	if _, exists := os.LookupEnv(key); !exists {
		return def, nil
	}
	return getEnvAsUint64(key)
}

// getEnvAsBool retrieves an optional boolean environment variable.
func getEnvAsBool(key string, def bool) (bool, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return def, nil
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return false, errors.New("environment variable " + key + " must be a valid bool, got: " + valueStr)
	}
	return value, nil
}
