package strategy

import (
	"context"
	"errors"
	"sync"

	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/yvault/internal/ledger"
	"github.com/elys-network/yvault/internal/types"
)

// ErrNotPrimed is returned by a MockStrategy harvest that requires priming and was not primed.
var ErrNotPrimed = errors.New("reward distributor was not primed before harvest")

// UnprimedBehaviour selects what an unprimed harvest does when priming is required.
type UnprimedBehaviour int

const (
	// UnprimedZeroProfit reports zero profit and leaves the pending profit unbooked.
	UnprimedZeroProfit UnprimedBehaviour = iota
	// UnprimedFail fails the harvest with ErrNotPrimed.
	UnprimedFail
)

// MockStrategy is a LockerStrategy with controls for simulating yield, losses,
// illiquidity and failures. Each priming covers a single harvest.
type MockStrategy struct {
	*LockerStrategy

	ledger *ledger.MemoryLedger

	mu                sync.Mutex
	withdrawCap       sdkmath.Int
	harvestErr        error
	onHarvest         func(ctx context.Context)
	requirePriming    bool
	unprimedBehaviour UnprimedBehaviour
	primed            bool
	harvests          int
}

// NewMockStrategy creates a mock strategy at address serving vault on l.
func NewMockStrategy(address, vault types.Address, l *ledger.MemoryLedger) (*MockStrategy, error) {
	locker, err := NewLockerStrategy(address, vault, l)
	if err != nil {
		return nil, err
	}
	return &MockStrategy{LockerStrategy: locker, ledger: l}, nil
}

// SimulateProfit credits amount of yield to the strategy position.
func (m *MockStrategy) SimulateProfit(amount sdkmath.Int) error {
	return m.ledger.Mint(m.Address(), amount)
}

// SimulateLoss removes amount from the strategy position.
func (m *MockStrategy) SimulateLoss(amount sdkmath.Int) error {
	return m.ledger.Burn(m.Address(), amount)
}

// SetWithdrawCap limits every withdrawal to limit. A nil Int removes the limit.
func (m *MockStrategy) SetWithdrawCap(limit sdkmath.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.withdrawCap = limit
}

// FailHarvest makes every harvest fail with err until it is called with nil.
func (m *MockStrategy) FailHarvest(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.harvestErr = err
}

// OnHarvest registers a hook run at the start of every harvest, before any
// balance is read. Tests use it to call back into the vault.
func (m *MockStrategy) OnHarvest(hook func(ctx context.Context)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onHarvest = hook
}

// RequirePriming makes harvests depend on a prior Prime call.
func (m *MockStrategy) RequirePriming(behaviour UnprimedBehaviour) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requirePriming = true
	m.unprimedBehaviour = behaviour
}

// Prime marks the reward distributor as having run before the next harvest.
func (m *MockStrategy) Prime() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.primed = true
}

// Harvests returns the number of harvest calls that reached the strategy.
func (m *MockStrategy) Harvests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.harvests
}

// Withdraw applies the withdrawal cap on top of the locker mechanics.
func (m *MockStrategy) Withdraw(ctx context.Context, amount sdkmath.Int) (sdkmath.Int, error) {
	m.mu.Lock()
	limit := m.withdrawCap
	m.mu.Unlock()
	return m.withdrawCapped(ctx, amount, limit)
}

// Harvest runs the hook, applies the configured failure and priming rules and
// otherwise harvests like a LockerStrategy.
func (m *MockStrategy) Harvest(ctx context.Context) (sdkmath.Int, error) {
	m.mu.Lock()
	hook := m.onHarvest
	m.mu.Unlock()
	if hook != nil {
		hook(ctx)
	}

	m.mu.Lock()
	m.harvests++
	harvestErr := m.harvestErr
	unprimed := m.requirePriming && !m.primed
	behaviour := m.unprimedBehaviour
	m.primed = false
	m.mu.Unlock()

	if harvestErr != nil {
		return sdkmath.ZeroInt(), harvestErr
	}
	if unprimed {
		if behaviour == UnprimedFail {
			return sdkmath.ZeroInt(), ErrNotPrimed
		}
		return sdkmath.ZeroInt(), nil
	}
	return m.LockerStrategy.Harvest(ctx)
}
