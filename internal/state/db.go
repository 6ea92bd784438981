// ./internal/state/db.go
package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.

	// Pool limits; zero selects the default.
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

const (
	defaultMaxOpenConns    = 25
	defaultConnMaxLifetime = 5 * time.Minute
	connectTimeout         = 10 * time.Second
)

// DSN returns the lib/pq connection string for cfg.
func (cfg DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
}

// InitDB opens the global pool and verifies the server is reachable.
func InitDB(cfg DBConfig) error {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = defaultMaxOpenConns
	}
	lifetime := cfg.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = defaultConnMaxLifetime
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen)
	db.SetConnMaxLifetime(lifetime)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	DB = db
	log.Info().
		Str("host", cfg.Host).
		Str("database", cfg.DBName).
		Int("maxOpenConns", maxOpen).
		Msg("Connected to PostgreSQL")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
		DB = nil
	}
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS harvest_events (
			row_id BIGSERIAL PRIMARY KEY,
			harvest_id UUID NOT NULL UNIQUE,
			harvested_at TIMESTAMPTZ NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			elapsed_seconds BIGINT NOT NULL,

			-- Profit split, in base units of the want token
			gross_profit NUMERIC(78, 0) NOT NULL,
			governance_fee NUMERIC(78, 0) NOT NULL,
			strategist_fee NUMERIC(78, 0) NOT NULL,
			management_fee NUMERIC(78, 0) NOT NULL,
			net_profit NUMERIC(78, 0) NOT NULL,

			-- Shares minted for each fee
			governance_fee_shares NUMERIC(78, 0) NOT NULL,
			strategist_fee_shares NUMERIC(78, 0) NOT NULL,
			management_fee_shares NUMERIC(78, 0) NOT NULL,

			-- Vault state after the harvest
			pool_value NUMERIC(78, 0) NOT NULL,
			total_shares NUMERIC(78, 0) NOT NULL,
			price_per_share NUMERIC(60, 18) NOT NULL,

			event JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_harvest_events_harvested_at ON harvest_events(harvested_at DESC);

		-- Round counter table for persistent keeper round tracking
		CREATE TABLE IF NOT EXISTS keeper_rounds (
			id INTEGER PRIMARY KEY DEFAULT 1,
			current_round INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT single_row_check CHECK (id = 1)
		);

		-- Insert initial row if it doesn't exist
		INSERT INTO keeper_rounds (id, current_round)
		VALUES (1, 0)
		ON CONFLICT (id) DO NOTHING;
	`
	_, err := DB.Exec(schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Database schema ensured.")
	return nil
}

// DropSchema drops every table owned by the service.
func DropSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	dropTablesQuery := `
		DROP TABLE IF EXISTS harvest_events CASCADE;
		DROP TABLE IF EXISTS keeper_rounds CASCADE;
	`
	if _, err := DB.Exec(dropTablesQuery); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	log.Warn().Msg("Dropped all tables")
	return nil
}

// TestDBConnection tests if the database connection is healthy
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Use a short timeout context for health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := DB.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
