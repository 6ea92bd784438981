package state

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// GetCurrentRoundNumber retrieves the current keeper round number from the database
func GetCurrentRoundNumber() (int, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	var currentRound int
	query := `SELECT current_round FROM keeper_rounds WHERE id = 1`
	err := DB.QueryRow(query).Scan(&currentRound)
	if err != nil {
		if err == sql.ErrNoRows {
			// Schema seeds the row; treat a missing one as round zero.
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get current round number: %w", err)
	}

	return currentRound, nil
}

// IncrementRoundNumber atomically increments and returns the new round number
func IncrementRoundNumber() (int, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	var newRound int
	query := `
		UPDATE keeper_rounds
		SET current_round = current_round + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
		RETURNING current_round
	`
	err := DB.QueryRow(query).Scan(&newRound)
	if err != nil {
		return 0, fmt.Errorf("failed to increment round number: %w", err)
	}

	log.Debug().Int("round", newRound).Msg("Incremented keeper round number")
	return newRound, nil
}

// ResetRoundNumber resets the round counter to 0
func ResetRoundNumber() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	query := `UPDATE keeper_rounds SET current_round = 0, updated_at = CURRENT_TIMESTAMP WHERE id = 1`
	_, err := DB.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to reset round number: %w", err)
	}

	log.Info().Msg("Reset keeper round number to 0")
	return nil
}

// RoundCounter exposes the persistent round counter to the keeper.
type RoundCounter struct{}

func (RoundCounter) IncrementRoundNumber() (int, error) {
	return IncrementRoundNumber()
}
