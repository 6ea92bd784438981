package keeper

import (
	"context"
	"errors"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elys-network/yvault/internal/distributor"
	"github.com/elys-network/yvault/internal/ledger"
	"github.com/elys-network/yvault/internal/strategy"
	"github.com/elys-network/yvault/internal/types"
	"github.com/elys-network/yvault/internal/vault"
)

type fakeVault struct {
	calls         []string
	callers       []types.Address
	epochs        uint32
	distributeErr error
	earnErr       error
	harvestErr    error
}

func (f *fakeVault) Distribute(_ context.Context, caller types.Address, epochCount uint32) error {
	f.calls = append(f.calls, "distribute")
	f.callers = append(f.callers, caller)
	f.epochs = epochCount
	return f.distributeErr
}

func (f *fakeVault) Earn(_ context.Context, caller types.Address) (sdkmath.Int, error) {
	f.calls = append(f.calls, "earn")
	f.callers = append(f.callers, caller)
	if f.earnErr != nil {
		return sdkmath.ZeroInt(), f.earnErr
	}
	return sdkmath.NewInt(500), nil
}

func (f *fakeVault) Harvest(_ context.Context, caller types.Address) (types.HarvestEvent, error) {
	f.calls = append(f.calls, "harvest")
	f.callers = append(f.callers, caller)
	if f.harvestErr != nil {
		return types.HarvestEvent{}, f.harvestErr
	}
	return types.HarvestEvent{
		ID:            "h1",
		GrossProfit:   sdkmath.NewInt(7),
		GovernanceFee: sdkmath.ZeroInt(),
		StrategistFee: sdkmath.ZeroInt(),
		ManagementFee: sdkmath.ZeroInt(),
	}, nil
}

type fakeCounter struct {
	n   int
	err error
}

func (c *fakeCounter) IncrementRoundNumber() (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.n++
	return c.n, nil
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Address: "keeper", DistributeEpochs: 1})
	require.Error(t, err)
	_, err = New(Config{Vault: &fakeVault{}, DistributeEpochs: 1})
	require.Error(t, err)
	_, err = New(Config{Vault: &fakeVault{}, Address: "keeper"})
	require.Error(t, err)
}

func TestRunRound_Order(t *testing.T) {
	fv := &fakeVault{}
	counter := &fakeCounter{}
	k, err := New(Config{Vault: fv, Address: "keeper", DistributeEpochs: 2, Counter: counter})
	require.NoError(t, err)

	result, err := k.RunRound(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"distribute", "earn", "harvest"}, fv.calls)
	for _, c := range fv.callers {
		assert.Equal(t, types.Address("keeper"), c)
	}
	assert.Equal(t, uint32(2), fv.epochs)
	assert.Equal(t, int64(500), result.Deployed.Int64())
	require.NotNil(t, result.Harvest)
	assert.Equal(t, "h1", result.Harvest.ID)
	assert.Equal(t, 1, result.Round)
	assert.NotEmpty(t, result.RoundID)
}

func TestRunRound_ContinuesAfterFailedStep(t *testing.T) {
	errDistribute := errors.New("proxy down")
	errHarvest := errors.New("strategy down")
	fv := &fakeVault{distributeErr: errDistribute, harvestErr: errHarvest}
	k, err := New(Config{Vault: fv, Address: "keeper", DistributeEpochs: 1, Counter: &fakeCounter{err: errors.New("db down")}})
	require.NoError(t, err)

	result, err := k.RunRound(context.Background())
	require.ErrorIs(t, err, errDistribute)
	require.ErrorIs(t, err, errHarvest)

	assert.Equal(t, []string{"distribute", "earn", "harvest"}, fv.calls)
	assert.Equal(t, int64(500), result.Deployed.Int64())
	assert.Nil(t, result.Harvest)
	assert.Equal(t, 0, result.Round)
}

func TestRunRound_AgainstVault(t *testing.T) {
	ctx := context.Background()
	l := ledger.NewMemoryLedger("uusdc")
	s, err := strategy.NewMockStrategy("strategy", "vault", l)
	require.NoError(t, err)
	p, err := distributor.NewStakingProxy(distributor.Config{
		Address: "proxy", Owner: "governance", Keeper: "keeper", Recipient: "strategy", Ledger: l,
	})
	require.NoError(t, err)
	v, err := vault.New(vault.Config{
		Name: "Yield USDC", Symbol: "yvUSDC", Want: "uusdc", Address: "vault",
		Ledger: l, Strategy: s, Distributor: p,
		Roles: types.RolesConfig{Governance: "governance", Strategist: "strategist", Keeper: "keeper", Treasury: "treasury"},
	})
	require.NoError(t, err)

	require.NoError(t, l.Mint("alice", sdkmath.NewInt(1000)))
	require.NoError(t, l.Approve(ctx, "alice", "vault", sdkmath.NewInt(1000)))
	_, err = v.Deposit(ctx, "alice", sdkmath.NewInt(1000))
	require.NoError(t, err)
	require.NoError(t, l.Mint("proxy", sdkmath.NewInt(30)))

	k, err := New(Config{Vault: v, Address: "keeper", DistributeEpochs: 1})
	require.NoError(t, err)

	result, err := k.RunRound(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), result.Deployed.Int64())
	require.NotNil(t, result.Harvest)
	assert.Equal(t, int64(30), result.Harvest.GrossProfit.Int64())

	pool, err := v.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1030), pool.Int64())
}

func TestScheduler_Register(t *testing.T) {
	k, err := New(Config{Vault: &fakeVault{}, Address: "keeper", DistributeEpochs: 1})
	require.NoError(t, err)

	s := NewScheduler(context.Background(), k)
	require.NoError(t, s.Register(Schedules{Earn: "0 */5 * * * *", Harvest: "0 0 */6 * * *"}))
	assert.Equal(t, 2, s.Jobs())

	err = NewScheduler(context.Background(), k).Register(Schedules{Harvest: "every now and then"})
	require.Error(t, err)
}

func TestScheduler_StartStop(t *testing.T) {
	k, err := New(Config{Vault: &fakeVault{}, Address: "keeper", DistributeEpochs: 1})
	require.NoError(t, err)

	s := NewScheduler(context.Background(), k)
	require.NoError(t, s.Register(Schedules{Distribute: "0 0 0 * * *"}))
	s.Start()
	s.Stop()
}

func TestScheduler_RoundJobRunsFullRound(t *testing.T) {
	fv := &fakeVault{}
	counter := &fakeCounter{}
	k, err := New(Config{Vault: fv, Address: "keeper", DistributeEpochs: 3, Counter: counter})
	require.NoError(t, err)

	s := NewScheduler(context.Background(), k)
	require.NoError(t, s.Register(Schedules{Round: "0 0 * * * *"}))
	assert.Equal(t, 1, s.Jobs())

	s.roundJob()
	assert.Equal(t, []string{"distribute", "earn", "harvest"}, fv.calls)
	assert.Equal(t, uint32(3), fv.epochs)
	assert.Equal(t, 1, counter.n)
}
