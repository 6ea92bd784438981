package distributor

import (
	"context"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elys-network/yvault/internal/ledger"
	"github.com/elys-network/yvault/internal/types"
)

func newProxy(t *testing.T) (*StakingProxy, *ledger.MemoryLedger) {
	t.Helper()
	l := ledger.NewMemoryLedger("uusdc")
	p, err := NewStakingProxy(Config{
		Address:   "proxy",
		Owner:     "gov",
		Keeper:    "keeper",
		Recipient: "strategy",
		Ledger:    l,
	})
	require.NoError(t, err)
	return p, l
}

func TestNewStakingProxy_Validation(t *testing.T) {
	l := ledger.NewMemoryLedger("uusdc")

	_, err := NewStakingProxy(Config{Owner: "gov", Recipient: "strategy", Ledger: l})
	require.Error(t, err)
	_, err = NewStakingProxy(Config{Address: "proxy", Recipient: "strategy", Ledger: l})
	require.Error(t, err)
	_, err = NewStakingProxy(Config{Address: "proxy", Owner: "gov", Ledger: l})
	require.Error(t, err)
	_, err = NewStakingProxy(Config{Address: "proxy", Owner: "gov", Recipient: "strategy"})
	require.Error(t, err)
}

func TestStakingProxy_Distribute(t *testing.T) {
	ctx := context.Background()
	p, l := newProxy(t)
	require.NoError(t, l.Mint(p.Address(), sdkmath.NewInt(75)))

	require.NoError(t, p.Distribute(ctx, "keeper", 1))

	got, err := l.BalanceOf(ctx, "strategy")
	require.NoError(t, err)
	assert.Equal(t, int64(75), got.Int64())

	left, err := l.BalanceOf(ctx, p.Address())
	require.NoError(t, err)
	assert.True(t, left.IsZero())

	require.Len(t, p.Distributions(), 1)
	assert.Equal(t, uint32(1), p.Distributions()[0].Epochs)
}

func TestStakingProxy_DistributeErrors(t *testing.T) {
	ctx := context.Background()
	p, l := newProxy(t)

	require.ErrorIs(t, p.Distribute(ctx, "keeper", 1), types.ErrNothingToDistribute)

	require.NoError(t, l.Mint(p.Address(), sdkmath.NewInt(10)))
	require.ErrorIs(t, p.Distribute(ctx, "stranger", 1), types.ErrUnauthorized)
	require.ErrorIs(t, p.Distribute(ctx, "keeper", 0), types.ErrInvalidAmount)
	assert.Empty(t, p.Distributions())
}

func TestStakingProxy_SetKeeper(t *testing.T) {
	ctx := context.Background()
	p, l := newProxy(t)
	require.NoError(t, l.Mint(p.Address(), sdkmath.NewInt(10)))

	require.ErrorIs(t, p.SetKeeper(ctx, "keeper", "other"), types.ErrUnauthorized)
	require.ErrorIs(t, p.SetKeeper(ctx, "gov", ""), types.ErrInvalidAddress)

	require.NoError(t, p.SetKeeper(ctx, "gov", "other"))
	assert.Equal(t, types.Address("other"), p.Keeper())

	require.ErrorIs(t, p.Distribute(ctx, "keeper", 1), types.ErrUnauthorized)
	require.NoError(t, p.Distribute(ctx, "other", 1))
}
