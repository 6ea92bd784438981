package types

import (
	errorsmod "cosmossdk.io/errors"
)

// Codespace is the error codespace for all vault errors.
const Codespace = "yvault"

var (
	ErrUnauthorized          = errorsmod.Register(Codespace, 2, "unauthorized")
	ErrInvalidAmount         = errorsmod.Register(Codespace, 3, "invalid amount")
	ErrInsufficientShares    = errorsmod.Register(Codespace, 4, "insufficient shares")
	ErrInsufficientLiquidity = errorsmod.Register(Codespace, 5, "insufficient liquidity")
	ErrTransferFailed        = errorsmod.Register(Codespace, 6, "transfer failed")
	ErrVaultPaused           = errorsmod.Register(Codespace, 7, "vault is paused")
	ErrReentrantCall         = errorsmod.Register(Codespace, 8, "operation already in progress")
	ErrInvalidFeeConfig      = errorsmod.Register(Codespace, 9, "invalid fee configuration")
	ErrStrategyNotSet        = errorsmod.Register(Codespace, 10, "strategy not set")
	ErrStrategyNotEmpty      = errorsmod.Register(Codespace, 11, "strategy still holds funds")
	ErrInvalidAddress        = errorsmod.Register(Codespace, 12, "invalid address")
	ErrNothingToDistribute   = errorsmod.Register(Codespace, 13, "nothing to distribute")
)
