/*

MemoryLedger is an in-process fungible asset ledger for a single denom.

It backs the simulation daemon and the tests. It offers the balance, transfer and
allowance surface the vault consumes, plus Mint and Burn for seeding balances and
simulating yield or losses.

*/

package ledger

import (
	"context"
	"sync"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/elys-network/yvault/internal/logger"
	"github.com/elys-network/yvault/internal/types"
)

type allowanceKey struct {
	owner   types.Address
	spender types.Address
}

// MemoryLedger stores balances and allowances in memory.
type MemoryLedger struct {
	mu         sync.RWMutex
	logger     zerolog.Logger
	denom      string
	balances   map[types.Address]sdkmath.Int
	allowances map[allowanceKey]sdkmath.Int
	supply     sdkmath.Int
}

// NewMemoryLedger creates an empty ledger for denom.
func NewMemoryLedger(denom string) *MemoryLedger {
	return &MemoryLedger{
		logger:     logger.GetForComponent("memory_ledger"),
		denom:      denom,
		balances:   make(map[types.Address]sdkmath.Int),
		allowances: make(map[allowanceKey]sdkmath.Int),
		supply:     sdkmath.ZeroInt(),
	}
}

// Denom returns the asset denom tracked by the ledger.
func (l *MemoryLedger) Denom() string {
	return l.denom
}

// BalanceOf returns the balance of account.
func (l *MemoryLedger) BalanceOf(_ context.Context, account types.Address) (sdkmath.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balanceLocked(account), nil
}

// TotalSupply returns the sum of all balances.
func (l *MemoryLedger) TotalSupply() sdkmath.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.supply
}

// Transfer moves amount from one account to another.
func (l *MemoryLedger) Transfer(_ context.Context, from, to types.Address, amount sdkmath.Int) error {
	if err := validateTransfer(from, to, amount); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.moveLocked(from, to, amount)
}

// Approve sets the amount spender may move out of owner's balance.
func (l *MemoryLedger) Approve(_ context.Context, owner, spender types.Address, amount sdkmath.Int) error {
	if owner.Empty() || spender.Empty() {
		return errorsmod.Wrap(types.ErrInvalidAddress, "owner and spender are required")
	}
	if amount.IsNil() || amount.IsNegative() {
		return errorsmod.Wrap(types.ErrInvalidAmount, "allowance must not be negative")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.allowances[allowanceKey{owner: owner, spender: spender}] = amount
	return nil
}

// Allowance returns the amount spender may still move out of owner's balance.
func (l *MemoryLedger) Allowance(owner, spender types.Address) sdkmath.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if a, ok := l.allowances[allowanceKey{owner: owner, spender: spender}]; ok {
		return a
	}
	return sdkmath.ZeroInt()
}

// TransferFrom moves amount from one account to another on behalf of spender,
// consuming spender's allowance.
func (l *MemoryLedger) TransferFrom(_ context.Context, spender, from, to types.Address, amount sdkmath.Int) error {
	if err := validateTransfer(from, to, amount); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := allowanceKey{owner: from, spender: spender}
	allowance, ok := l.allowances[key]
	if !ok || allowance.LT(amount) {
		return errorsmod.Wrapf(types.ErrTransferFailed, "allowance of %s for %s is below %s", spender, from, amount)
	}
	if err := l.moveLocked(from, to, amount); err != nil {
		return err
	}
	l.allowances[key] = allowance.Sub(amount)
	return nil
}

// Mint credits amount to account out of thin air.
func (l *MemoryLedger) Mint(account types.Address, amount sdkmath.Int) error {
	if account.Empty() {
		return errorsmod.Wrap(types.ErrInvalidAddress, "mint recipient is required")
	}
	if amount.IsNil() || !amount.IsPositive() {
		return errorsmod.Wrap(types.ErrInvalidAmount, "mint amount must be positive")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] = l.balanceLocked(account).Add(amount)
	l.supply = l.supply.Add(amount)

	l.logger.Debug().Str("account", account.String()).Str("amount", amount.String()).Msg("Minted")
	return nil
}

// Burn removes amount from account.
func (l *MemoryLedger) Burn(account types.Address, amount sdkmath.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return errorsmod.Wrap(types.ErrInvalidAmount, "burn amount must be positive")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	balance := l.balanceLocked(account)
	if balance.LT(amount) {
		return errorsmod.Wrapf(types.ErrTransferFailed, "cannot burn %s from %s holding %s", amount, account, balance)
	}
	l.balances[account] = balance.Sub(amount)
	l.supply = l.supply.Sub(amount)
	return nil
}

func (l *MemoryLedger) balanceLocked(account types.Address) sdkmath.Int {
	if b, ok := l.balances[account]; ok {
		return b
	}
	return sdkmath.ZeroInt()
}

func (l *MemoryLedger) moveLocked(from, to types.Address, amount sdkmath.Int) error {
	balance := l.balanceLocked(from)
	if balance.LT(amount) {
		return errorsmod.Wrapf(types.ErrTransferFailed, "%s holds %s, cannot send %s", from, balance, amount)
	}
	l.balances[from] = balance.Sub(amount)
	l.balances[to] = l.balanceLocked(to).Add(amount)
	return nil
}

func validateTransfer(from, to types.Address, amount sdkmath.Int) error {
	if from.Empty() || to.Empty() {
		return errorsmod.Wrap(types.ErrInvalidAddress, "sender and recipient are required")
	}
	if amount.IsNil() || !amount.IsPositive() {
		return errorsmod.Wrapf(types.ErrInvalidAmount, "transfer amount must be positive, got %v", amount)
	}
	return nil
}
