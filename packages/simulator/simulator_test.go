package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simledger/simledger/packages/ledger"
	"github.com/simledger/simledger/packages/ledger/utxo"
	"github.com/simledger/simledger/packages/ledger/utxoutil"
	"github.com/simledger/simledger/packages/scripts"
)

func TestSimulator_CreateIdentity(t *testing.T) {
	sim := New(utxo.NewBaseValue(1000))

	userA, err := sim.CreateIdentity(utxo.NewBaseValue(100))
	require.NoError(t, err)

	assert.True(t, utxo.NewBaseValue(100).Equal(sim.ValueAt(userA.Address())))
	assert.True(t, utxo.NewBaseValue(900).Equal(sim.ValueAt(sim.Admin().Address())))
}

func TestSimulator_Spend(t *testing.T) {
	sim := New(utxo.NewBaseValue(1000))

	userA, err := sim.CreateIdentity(utxo.NewBaseValue(100))
	require.NoError(t, err)
	userB, err := sim.CreateIdentity(nil)
	require.NoError(t, err)

	require.NoError(t, sim.Spend(userA, userB.Address(), utxo.NewBaseValue(30)))

	assert.True(t, utxo.NewBaseValue(70).Equal(sim.ValueAt(userA.Address())))
	assert.True(t, utxo.NewBaseValue(30).Equal(sim.ValueAt(userB.Address())))
	assert.Equal(t, 0, sim.Ledger().Log().FailureCount())
}

func TestSimulator_MustFail(t *testing.T) {
	sim := New(utxo.NewBaseValue(1000))

	userA, err := sim.CreateIdentity(utxo.NewBaseValue(70))
	require.NoError(t, err)
	userB, err := sim.CreateIdentity(nil)
	require.NoError(t, err)

	logSizeBefore := sim.Ledger().Log().Size()
	outputsBefore := len(sim.Ledger().UnspentOutputs())

	// the overspend fails as expected and leaves no trace
	require.NoError(t, sim.MustFail(func() error {
		return sim.Spend(userA, userB.Address(), utxo.NewBaseValue(1000))
	}))

	assert.True(t, utxo.NewBaseValue(70).Equal(sim.ValueAt(userA.Address())))
	assert.True(t, sim.ValueAt(userB.Address()).IsZero())
	assert.Equal(t, 0, sim.Ledger().Log().FailureCount())
	assert.Equal(t, logSizeBefore, sim.Ledger().Log().Size())
	assert.Equal(t, outputsBefore, len(sim.Ledger().UnspentOutputs()))
}

func TestSimulator_MustFail_UnexpectedSuccess(t *testing.T) {
	sim := New(utxo.NewBaseValue(1000))

	userA, err := sim.CreateIdentity(utxo.NewBaseValue(100))
	require.NoError(t, err)
	userB, err := sim.CreateIdentity(nil)
	require.NoError(t, err)

	// the valid spend succeeds, which violates the expectation; its effects are rolled back
	err = sim.MustFail(func() error {
		return sim.Spend(userA, userB.Address(), utxo.NewBaseValue(30))
	})
	assert.ErrorIs(t, err, ledger.ErrAssertionFailed)

	assert.True(t, utxo.NewBaseValue(100).Equal(sim.ValueAt(userA.Address())))
	assert.True(t, sim.ValueAt(userB.Address()).IsZero())

	// the violated expectation itself is recorded
	failures := sim.Ledger().Log().Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, ledger.AssertionFailedEntry, failures[0].Kind)
}

func TestSimulator_WaitSlots(t *testing.T) {
	sim := New(utxo.NewBaseValue(1000))

	balanceBefore := sim.ValueAt(sim.Admin().Address())

	currentSlot, err := sim.WaitSlots(10)
	require.NoError(t, err)
	assert.EqualValues(t, 10, currentSlot)
	assert.EqualValues(t, 10, sim.CurrentSlot())
	assert.True(t, balanceBefore.Equal(sim.ValueAt(sim.Admin().Address())))
}

func TestSimulator_OneShotMint(t *testing.T) {
	sim := New(utxo.NewBaseValue(1000))
	admin := sim.Admin()

	outputs := sim.Ledger().OutputsAt(admin.Address())
	require.Len(t, outputs, 1)

	policy := scripts.NewOneShotPolicy(outputs[0].ID())
	assetID := utxo.NewAssetID(policy.Hash())

	mintDraft, err := utxoutil.Consume(outputs[0]).Combine(
		utxoutil.Mint(policy, 50, nil),
		utxoutil.PayTo(admin.Address(), utxo.NewValue(map[utxo.AssetID]int64{utxo.BaseAssetID: 1000, assetID: 50})),
	)
	require.NoError(t, err)
	require.NoError(t, sim.SubmitDraft(mintDraft, admin))
	assert.EqualValues(t, 50, sim.ValueAt(admin.Address()).Get(assetID))

	// minting the same asset again cannot consume the spent output and is rejected
	require.NoError(t, sim.MustFail(func() error {
		remaining := sim.Ledger().OutputsAt(admin.Address())
		require.Len(t, remaining, 1)

		secondDraft, combineErr := utxoutil.Consume(remaining[0]).Combine(
			utxoutil.Mint(policy, 50, nil),
			utxoutil.PayTo(admin.Address(), remaining[0].Balances().Add(utxo.NewValue(map[utxo.AssetID]int64{assetID: 50}))),
		)
		require.NoError(t, combineErr)

		return sim.SubmitDraft(secondDraft, admin)
	}))

	assert.EqualValues(t, 50, sim.ValueAt(admin.Address()).Get(assetID))
	assert.Equal(t, 0, sim.Ledger().Log().FailureCount())
}

func TestSimulator_CheckBalances(t *testing.T) {
	sim := New(utxo.NewBaseValue(1000))

	userA, err := sim.CreateIdentity(utxo.NewBaseValue(100))
	require.NoError(t, err)
	userB, err := sim.CreateIdentity(nil)
	require.NoError(t, err)

	{ // the expectation matches the action exactly
		expected := NewBalanceDiff().
			Loses(userA.Address(), utxo.NewBaseValue(30)).
			Gains(userB.Address(), utxo.NewBaseValue(30))

		mismatches, err := sim.CheckBalances(expected, func() error {
			return sim.Spend(userA, userB.Address(), utxo.NewBaseValue(30))
		})
		require.NoError(t, err)
		assert.Empty(t, mismatches)
	}

	{ // a wrong expectation is reported per address, with expected and observed deltas
		expected := NewBalanceDiff().
			Loses(userA.Address(), utxo.NewBaseValue(10)).
			Gains(userB.Address(), utxo.NewBaseValue(10))

		mismatches, err := sim.CheckBalances(expected, func() error {
			return sim.Spend(userA, userB.Address(), utxo.NewBaseValue(20))
		})
		assert.ErrorIs(t, err, ledger.ErrAssertionFailed)
		require.Len(t, mismatches, 2)
		assert.True(t, mismatches[0].Expected.Equal(utxo.NewBaseValue(10).Negate()))
		assert.True(t, mismatches[0].Actual.Equal(utxo.NewBaseValue(20).Negate()))

		// the composite failure is in the event log
		failures := sim.Ledger().Log().Failures()
		require.Len(t, failures, 1)
		assert.Equal(t, ledger.AssertionFailedEntry, failures[0].Kind)
	}
}

func TestBalanceDiff_Combine(t *testing.T) {
	sim := New(utxo.NewBaseValue(1000))
	userA, err := sim.CreateIdentity(nil)
	require.NoError(t, err)
	userB, err := sim.CreateIdentity(nil)
	require.NoError(t, err)

	first := NewBalanceDiff().
		Loses(userA.Address(), utxo.NewBaseValue(30)).
		Gains(userB.Address(), utxo.NewBaseValue(30))
	second := NewBalanceDiff().
		Gains(userA.Address(), utxo.NewBaseValue(10))

	// same-address contributions add, combination is commutative
	combined := first.Combine(second)
	assert.True(t, combined.Delta(userA.Address()).Equal(utxo.NewBaseValue(20).Negate()))
	assert.True(t, combined.Delta(userB.Address()).Equal(utxo.NewBaseValue(30)))
	assert.True(t, second.Combine(first).Delta(userA.Address()).Equal(combined.Delta(userA.Address())))

	// an unmentioned address has a zero expected delta
	assert.True(t, combined.Delta(sim.Admin().Address()).IsZero())
}
