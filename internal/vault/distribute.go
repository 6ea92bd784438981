package vault

import (
	"context"
	"errors"
	"fmt"

	errorsmod "cosmossdk.io/errors"

	"github.com/elys-network/yvault/internal/metrics"
	"github.com/elys-network/yvault/internal/types"
)

// Distribute triggers the reward distributor for epochCount epochs on behalf of
// the keeper. A distributor with nothing to distribute is not a failure.
func (v *Vault) Distribute(ctx context.Context, caller types.Address, epochCount uint32) (err error) {
	release, err := v.enter("distribute")
	defer release()
	if err != nil {
		return err
	}
	defer func() { v.track("distribute", caller, err) }()

	snap := v.snapshot()
	if err := requireRole("distribute", caller, snap.roles.Keeper); err != nil {
		return err
	}
	return v.distribute(ctx, caller, epochCount)
}

func (v *Vault) distribute(ctx context.Context, caller types.Address, epochCount uint32) error {
	if v.distributor == nil {
		return errorsmod.Wrap(types.ErrInvalidAddress, "no reward distributor configured")
	}

	err := v.distributor.Distribute(ctx, caller, epochCount)
	if errors.Is(err, types.ErrNothingToDistribute) {
		metrics.RecordOperation("distribute_proxy", metrics.Noop)
		v.logger.Info().Uint32("epochs", epochCount).Msg("Reward distributor had nothing to distribute")
		return nil
	}
	if err != nil {
		return fmt.Errorf("reward distribution failed: %w", err)
	}

	metrics.RecordOperation("distribute_proxy", metrics.Success)
	v.logger.Info().Uint32("epochs", epochCount).Msg("Reward distribution triggered")
	return nil
}
