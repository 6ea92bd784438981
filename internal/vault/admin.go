package vault

import (
	"context"

	errorsmod "cosmossdk.io/errors"

	"github.com/elys-network/yvault/internal/fees"
	"github.com/elys-network/yvault/internal/types"
)

// SetFeeConfig replaces the fee rates. Rates are validated here and never at charge time.
func (v *Vault) SetFeeConfig(caller types.Address, cfg types.FeeConfig) error {
	return v.govern("set_fee_config", caller, func() error {
		if err := fees.ValidateFeeConfig(cfg); err != nil {
			return err
		}
		v.mu.Lock()
		v.fees = cfg
		v.mu.Unlock()

		v.logger.Info().
			Uint64("performanceFeeGovernance", cfg.PerformanceFeeGovernance).
			Uint64("performanceFeeStrategist", cfg.PerformanceFeeStrategist).
			Uint64("withdrawalFee", cfg.WithdrawalFee).
			Uint64("managementFee", cfg.ManagementFee).
			Msg("Fee configuration updated")
		return nil
	})
}

// SetStrategy attaches a new strategy. The current strategy must be empty;
// recall its funds with WithdrawToVault first.
func (v *Vault) SetStrategy(ctx context.Context, caller types.Address, strategy StrategyAdapter) error {
	return v.govern("set_strategy", caller, func() error {
		if strategy == nil {
			return errorsmod.Wrap(types.ErrStrategyNotSet, "strategy cannot be nil")
		}
		if strategy.Address().Empty() {
			return errorsmod.Wrap(types.ErrInvalidAddress, "strategy address is required")
		}

		current := v.snapshot().strategy
		deployed, err := deployedBalance(ctx, current)
		if err != nil {
			return err
		}
		if deployed.IsPositive() {
			return errorsmod.Wrapf(types.ErrStrategyNotEmpty, "%s still holds %s", current.Address(), deployed)
		}

		v.mu.Lock()
		v.strategy = strategy
		v.mu.Unlock()

		v.logger.Info().Str("strategy", strategy.Address().String()).Msg("Strategy attached")
		return nil
	})
}

// SetReserveBps sets the share of the idle balance Earn keeps back.
func (v *Vault) SetReserveBps(caller types.Address, reserveBps uint64) error {
	return v.govern("set_reserve", caller, func() error {
		if reserveBps > types.RateDenom {
			return errorsmod.Wrapf(types.ErrInvalidAmount, "reserve of %d bps exceeds %d", reserveBps, types.RateDenom)
		}
		v.mu.Lock()
		v.reserveBps = reserveBps
		v.mu.Unlock()
		return nil
	})
}

// SetGovernance hands governance to a new address.
func (v *Vault) SetGovernance(caller, governance types.Address) error {
	return v.setRole("set_governance", caller, governance, func(r *types.RolesConfig) { r.Governance = governance })
}

// SetStrategist sets the recipient of the strategist performance fee.
func (v *Vault) SetStrategist(caller, strategist types.Address) error {
	return v.setRole("set_strategist", caller, strategist, func(r *types.RolesConfig) { r.Strategist = strategist })
}

func (v *Vault) SetKeeper(caller, keeper types.Address) error {
	return v.setRole("set_keeper", caller, keeper, func(r *types.RolesConfig) { r.Keeper = keeper })
}

func (v *Vault) SetGuardian(caller, guardian types.Address) error {
	return v.setRole("set_guardian", caller, guardian, func(r *types.RolesConfig) { r.Guardian = guardian })
}

// SetTreasury sets the recipient of governance fees and withdrawal fees.
func (v *Vault) SetTreasury(caller, treasury types.Address) error {
	return v.setRole("set_treasury", caller, treasury, func(r *types.RolesConfig) { r.Treasury = treasury })
}

func (v *Vault) SetRewards(caller, rewards types.Address) error {
	return v.setRole("set_rewards", caller, rewards, func(r *types.RolesConfig) { r.Rewards = rewards })
}

// Pause stops deposits, earn and harvest. Withdrawals stay open.
func (v *Vault) Pause(caller types.Address) (err error) {
	release, err := v.enter("pause")
	defer release()
	if err != nil {
		return err
	}
	defer func() { v.track("pause", caller, err) }()

	snap := v.snapshot()
	if err := requireRole("pause", caller, snap.roles.Guardian, snap.roles.Governance); err != nil {
		return err
	}
	v.setStatus(types.VaultPaused, caller)
	return nil
}

// Unpause reopens the vault. Only governance may unpause.
func (v *Vault) Unpause(caller types.Address) error {
	return v.govern("unpause", caller, func() error {
		v.setStatus(types.VaultActive, caller)
		return nil
	})
}

func (v *Vault) setStatus(status types.VaultStatus, caller types.Address) {
	v.mu.Lock()
	previous := v.status
	v.status = status
	v.mu.Unlock()

	if previous != status {
		v.logger.Warn().Str("status", string(status)).Str("caller", caller.String()).Msg("Vault status changed")
	}
}

// govern runs apply behind the guard once caller is confirmed as governance.
func (v *Vault) govern(operation string, caller types.Address, apply func() error) (err error) {
	release, err := v.enter(operation)
	defer release()
	if err != nil {
		return err
	}
	defer func() { v.track(operation, caller, err) }()

	if err := requireRole(operation, caller, v.snapshot().roles.Governance); err != nil {
		return err
	}
	return apply()
}

func (v *Vault) setRole(operation string, caller, address types.Address, apply func(*types.RolesConfig)) error {
	return v.govern(operation, caller, func() error {
		if address.Empty() {
			return errorsmod.Wrapf(types.ErrInvalidAddress, "%s requires an address", operation)
		}
		v.mu.Lock()
		apply(&v.roles)
		v.mu.Unlock()

		v.logger.Info().Str("operation", operation).Str("address", address.String()).Msg("Role updated")
		return nil
	})
}
