package ledger

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simledger/simledger/packages/ledger/utxo"
	"github.com/simledger/simledger/packages/ledger/utxoutil"
	"github.com/simledger/simledger/packages/registry"
	"github.com/simledger/simledger/packages/scripts"
)

func setupLedger(t *testing.T, genesisFunds int64, opts ...Option) (testLedger *Ledger, identities *registry.Registry, admin *registry.Identity) {
	identities = registry.New()
	admin, err := identities.CreateAdmin()
	require.NoError(t, err)

	return New(utxo.NewBaseValue(genesisFunds), admin.Address(), opts...), identities, admin
}

// transfer builds and submits a plain transfer with change flowing back to the sender.
func transfer(t *testing.T, testLedger *Ledger, from *registry.Identity, to utxo.Address, amount int64) (err error) {
	plan, err := testLedger.SelectOutputs(from.Address(), utxo.NewBaseValue(amount))
	if err != nil {
		return err
	}

	draft := utxoutil.Consume(plan.Consumed...)
	if draft, err = draft.Combine(utxoutil.PayTo(to, utxo.NewBaseValue(amount))); err != nil {
		return err
	}
	if !plan.Remainder.IsZero() {
		if draft, err = draft.Combine(utxoutil.PayTo(from.Address(), plan.Remainder)); err != nil {
			return err
		}
	}

	transaction, err := utxoutil.Build(draft, from)
	require.NoError(t, err)

	return testLedger.Submit(transaction)
}

func TestLedger_Genesis(t *testing.T) {
	testLedger, _, admin := setupLedger(t, 1000)

	assert.True(t, utxo.NewBaseValue(1000).Equal(testLedger.BalanceAt(admin.Address())))

	outputs := testLedger.UnspentOutputs()
	require.Len(t, outputs, 1)
	assert.Equal(t, utxo.NewOutputID(utxo.EmptyTransactionID, 0), outputs[0].ID())
	assert.EqualValues(t, 0, testLedger.CurrentSlot())
}

func TestLedger_SubmitTransfer(t *testing.T) {
	testLedger, identities, admin := setupLedger(t, 1000)
	alice := identities.CreateIdentity()

	acceptedCount := 0
	testLedger.Events.TransactionAccepted.Attach(events.NewClosure(func(_ utxo.TransactionID) {
		acceptedCount++
	}))

	require.NoError(t, transfer(t, testLedger, admin, alice.Address(), 100))

	assert.True(t, utxo.NewBaseValue(100).Equal(testLedger.BalanceAt(alice.Address())))
	assert.True(t, utxo.NewBaseValue(900).Equal(testLedger.BalanceAt(admin.Address())))
	assert.Equal(t, 1, acceptedCount)
	assert.Equal(t, 0, testLedger.Log().FailureCount())
}

func TestLedger_RejectsConservationViolation(t *testing.T) {
	testLedger, identities, admin := setupLedger(t, 1000)
	alice := identities.CreateIdentity()

	genesisOutput, exists := testLedger.Output(utxo.NewOutputID(utxo.EmptyTransactionID, 0))
	require.True(t, exists)

	// the outputs claim more than the inputs provide
	draft, err := utxoutil.Consume(genesisOutput).Combine(utxoutil.PayTo(alice.Address(), utxo.NewBaseValue(2000)))
	require.NoError(t, err)
	transaction, err := utxoutil.Build(draft, admin)
	require.NoError(t, err)

	err = testLedger.Submit(transaction)
	assert.ErrorIs(t, err, ErrConservation)

	// nothing was mutated and the rejection was logged
	assert.True(t, utxo.NewBaseValue(1000).Equal(testLedger.BalanceAt(admin.Address())))
	require.Equal(t, 1, testLedger.Log().FailureCount())
	assert.Equal(t, TransactionRejectedEntry, testLedger.Log().Failures()[0].Kind)
}

func TestLedger_RejectsDoubleSpend(t *testing.T) {
	testLedger, identities, admin := setupLedger(t, 1000)
	alice := identities.CreateIdentity()
	bob := identities.CreateIdentity()

	genesisOutput, exists := testLedger.Output(utxo.NewOutputID(utxo.EmptyTransactionID, 0))
	require.True(t, exists)

	buildSpend := func(target utxo.Address) (transaction *utxo.Transaction) {
		draft, err := utxoutil.Consume(genesisOutput).Combine(utxoutil.PayTo(target, utxo.NewBaseValue(1000)))
		require.NoError(t, err)
		transaction, err = utxoutil.Build(draft, admin)
		require.NoError(t, err)

		return transaction
	}

	// both transactions were selected against the same snapshot; the race surfaces at commit time
	require.NoError(t, testLedger.Submit(buildSpend(alice.Address())))
	assert.ErrorIs(t, testLedger.Submit(buildSpend(bob.Address())), ErrMissingOrSpentInput)

	assert.True(t, utxo.NewBaseValue(1000).Equal(testLedger.BalanceAt(alice.Address())))
	assert.True(t, testLedger.BalanceAt(bob.Address()).IsZero())
}

func TestLedger_RejectsDuplicateInput(t *testing.T) {
	testLedger, identities, admin := setupLedger(t, 100)
	alice := identities.CreateIdentity()

	genesisOutput, exists := testLedger.Output(utxo.NewOutputID(utxo.EmptyTransactionID, 0))
	require.True(t, exists)

	// the same output is referenced by two inputs, so the consumed side sums to twice its balance and the
	// transaction conserves value on paper; assembled manually since the builder rejects duplicate inputs
	essence := utxo.NewTransactionEssence(
		utxo.Inputs{utxo.NewInput(genesisOutput), utxo.NewInput(genesisOutput)},
		[]*utxo.Output{utxo.NewOutput(alice.Address(), utxo.NewBaseValue(200))},
		utxo.NewEmptyValue(), 0, utxo.SlotWindow{},
	)
	signature := utxo.NewSignatureUnlockBlock(admin.PublicKey(), admin.Sign(essence.Bytes()))
	doubled := utxo.NewTransaction(essence, utxo.UnlockBlocks{signature, signature}, nil, nil)

	assert.ErrorIs(t, testLedger.Submit(doubled), ErrMissingOrSpentInput)

	// the genesis output is still unspent and no value was created
	assert.True(t, utxo.NewBaseValue(100).Equal(testLedger.BalanceAt(admin.Address())))
	assert.True(t, testLedger.BalanceAt(alice.Address()).IsZero())
}

func TestLedger_RejectsForgedSignature(t *testing.T) {
	testLedger, identities, _ := setupLedger(t, 1000)
	mallory := identities.CreateIdentity()

	genesisOutput, exists := testLedger.Output(utxo.NewOutputID(utxo.EmptyTransactionID, 0))
	require.True(t, exists)

	// mallory signs for an output she does not own
	essence := utxo.NewTransactionEssence(
		utxo.Inputs{utxo.NewInput(genesisOutput)},
		[]*utxo.Output{utxo.NewOutput(mallory.Address(), utxo.NewBaseValue(1000))},
		utxo.NewEmptyValue(), 0, utxo.SlotWindow{},
	)
	forged := utxo.NewTransaction(essence, utxo.UnlockBlocks{
		utxo.NewSignatureUnlockBlock(mallory.PublicKey(), mallory.Sign(essence.Bytes())),
	}, nil, nil)

	assert.ErrorIs(t, testLedger.Submit(forged), ErrAuthorization)
	assert.True(t, testLedger.BalanceAt(mallory.Address()).IsZero())
}

func TestLedger_TimeValidity(t *testing.T) {
	testLedger, identities, admin := setupLedger(t, 1000)
	alice := identities.CreateIdentity()

	genesisOutput, exists := testLedger.Output(utxo.NewOutputID(utxo.EmptyTransactionID, 0))
	require.True(t, exists)

	draft, err := utxoutil.Consume(genesisOutput).Combine(
		utxoutil.PayTo(alice.Address(), utxo.NewBaseValue(1000)),
		utxoutil.ValidBetween(5, 10),
	)
	require.NoError(t, err)
	transaction, err := utxoutil.Build(draft, admin)
	require.NoError(t, err)

	// slot 0 lies before the window opens
	assert.ErrorIs(t, testLedger.Submit(transaction), ErrTimeValidity)

	currentSlot, err := testLedger.WaitSlots(5)
	require.NoError(t, err)
	assert.EqualValues(t, 5, currentSlot)

	require.NoError(t, testLedger.Submit(transaction))
	assert.True(t, utxo.NewBaseValue(1000).Equal(testLedger.BalanceAt(alice.Address())))
}

func TestLedger_WaitSlots(t *testing.T) {
	testLedger, _, admin := setupLedger(t, 1000)

	balanceBefore := testLedger.BalanceAt(admin.Address())
	outputCountBefore := len(testLedger.UnspentOutputs())

	currentSlot, err := testLedger.WaitSlots(10)
	require.NoError(t, err)
	assert.EqualValues(t, 10, currentSlot)
	assert.EqualValues(t, 10, testLedger.CurrentSlot())

	// waiting never touches balances or outputs
	assert.True(t, balanceBefore.Equal(testLedger.BalanceAt(admin.Address())))
	assert.Equal(t, outputCountBefore, len(testLedger.UnspentOutputs()))

	_, err = testLedger.WaitSlots(-1)
	assert.ErrorIs(t, err, ErrInvalidSlotCount)
}

func TestLedger_StrictLimits(t *testing.T) {
	{
		testLedger, identities, admin := setupLedger(t, 1000, WithMaxOutputCount(1), WithStrictLimits(true))
		alice := identities.CreateIdentity()

		err := transfer(t, testLedger, admin, alice.Address(), 100)
		assert.ErrorIs(t, err, ErrLimitExceeded)
		assert.True(t, testLedger.BalanceAt(alice.Address()).IsZero())
	}

	// the same violation is only a warning by default
	{
		testLedger, identities, admin := setupLedger(t, 1000, WithMaxOutputCount(1))
		alice := identities.CreateIdentity()

		require.NoError(t, transfer(t, testLedger, admin, alice.Address(), 100))
		assert.True(t, utxo.NewBaseValue(100).Equal(testLedger.BalanceAt(alice.Address())))
	}
}

func TestLedger_OneShotMint(t *testing.T) {
	testLedger, _, admin := setupLedger(t, 1000)

	genesisOutput, exists := testLedger.Output(utxo.NewOutputID(utxo.EmptyTransactionID, 0))
	require.True(t, exists)

	// the policy authorizes exactly one mint: the transaction must consume the genesis output
	policy := scripts.NewOneShotPolicy(genesisOutput.ID())
	assetID := utxo.NewAssetID(policy.Hash())

	draft, err := utxoutil.Consume(genesisOutput).Combine(
		utxoutil.Mint(policy, 50, nil),
		utxoutil.PayTo(admin.Address(), utxo.NewValue(map[utxo.AssetID]int64{utxo.BaseAssetID: 1000, assetID: 50})),
	)
	require.NoError(t, err)
	transaction, err := utxoutil.Build(draft, admin)
	require.NoError(t, err)

	require.NoError(t, testLedger.Submit(transaction))
	assert.EqualValues(t, 50, testLedger.BalanceAt(admin.Address()).Get(assetID))

	// a second mint of the same asset cannot consume the spent genesis output again
	plan, err := testLedger.SelectOutputs(admin.Address(), utxo.NewBaseValue(10))
	require.NoError(t, err)

	secondDraft, err := utxoutil.Consume(plan.Consumed...).Combine(
		utxoutil.Mint(policy, 50, nil),
		utxoutil.PayTo(admin.Address(), plan.Consumed[0].Balances().Add(utxo.NewValue(map[utxo.AssetID]int64{assetID: 50}))),
	)
	require.NoError(t, err)
	secondMint, err := utxoutil.Build(secondDraft, admin)
	require.NoError(t, err)

	assert.ErrorIs(t, testLedger.Submit(secondMint), ErrAuthorization)
	assert.EqualValues(t, 50, testLedger.BalanceAt(admin.Address()).Get(assetID))
}

func TestLedger_RejectsUnbackedMint(t *testing.T) {
	testLedger, _, admin := setupLedger(t, 1000)

	genesisOutput, exists := testLedger.Output(utxo.NewOutputID(utxo.EmptyTransactionID, 0))
	require.True(t, exists)

	assetID := utxo.NewAssetID(utxo.NewScriptHash([]byte("unbacked")))

	// mint without a witness, assembled manually since the builder would attach one
	essence := utxo.NewTransactionEssence(
		utxo.Inputs{utxo.NewInput(genesisOutput)},
		[]*utxo.Output{utxo.NewOutput(admin.Address(), utxo.NewValue(map[utxo.AssetID]int64{utxo.BaseAssetID: 1000, assetID: 5}))},
		utxo.NewValue(map[utxo.AssetID]int64{assetID: 5}), 0, utxo.SlotWindow{},
	)
	unbacked := utxo.NewTransaction(essence, utxo.UnlockBlocks{
		utxo.NewSignatureUnlockBlock(admin.PublicKey(), admin.Sign(essence.Bytes())),
	}, nil, nil)

	assert.ErrorIs(t, testLedger.Submit(unbacked), ErrAuthorization)
}

func TestLedger_RejectsReplayedTransaction(t *testing.T) {
	testLedger, _, admin := setupLedger(t, 1000)

	// an input-less mint is legal under a permissive policy, but its ID never changes between submissions
	policy := scripts.AlwaysSucceed{}
	assetID := utxo.NewAssetID(policy.Hash())

	draft, err := utxoutil.Mint(policy, 25, nil).Combine(
		utxoutil.PayTo(admin.Address(), utxo.NewValue(map[utxo.AssetID]int64{assetID: 25})),
	)
	require.NoError(t, err)
	mint, err := utxoutil.Build(draft)
	require.NoError(t, err)

	require.NoError(t, testLedger.Submit(mint))
	assert.EqualValues(t, 25, testLedger.BalanceAt(admin.Address()).Get(assetID))
	outputCount := len(testLedger.UnspentOutputs())

	// resubmitting would book the same OutputIDs again
	assert.ErrorIs(t, testLedger.Submit(mint), ErrReplayedTransaction)
	assert.EqualValues(t, 25, testLedger.BalanceAt(admin.Address()).Get(assetID))
	assert.Len(t, testLedger.UnspentOutputs(), outputCount)
}

// datumEcho authorizes a spend if the redeemer reproduces the datum attached to the consumed output.
type datumEcho struct{}

func (d datumEcho) Hash() (scriptHash utxo.ScriptHash) {
	return utxo.NewScriptHash([]byte("datum-echo"))
}

func (d datumEcho) Evaluate(context *utxo.ScriptContext) (err error) {
	if !bytes.Equal(context.Datum, context.Redeemer) {
		return errors.New("redeemer does not reproduce the datum")
	}

	return nil
}

func TestLedger_DatumSpend(t *testing.T) {
	testLedger, identities, admin := setupLedger(t, 1000)
	alice := identities.CreateIdentity()

	script := datumEcho{}
	scriptAddress := utxo.NewScriptAddress(script.Hash())
	datum := []byte("expected payload")

	// lock funds at the script address with the datum attached
	plan, err := testLedger.SelectOutputs(admin.Address(), utxo.NewBaseValue(100))
	require.NoError(t, err)

	lockDraft, err := utxoutil.Consume(plan.Consumed...).Combine(
		utxoutil.PayToWithDatum(scriptAddress, utxo.NewBaseValue(100), datum),
		utxoutil.PayTo(admin.Address(), plan.Remainder),
	)
	require.NoError(t, err)
	lockTransaction, err := utxoutil.Build(lockDraft, admin)
	require.NoError(t, err)
	require.NoError(t, testLedger.Submit(lockTransaction))

	lockedOutputs := testLedger.OutputsAt(scriptAddress)
	require.Len(t, lockedOutputs, 1)

	// the datum is retrievable through its handle
	storedDatum, exists := testLedger.Datum(lockedOutputs[0].DatumHash())
	require.True(t, exists)
	assert.Equal(t, datum, storedDatum)

	// a wrong redeemer is rejected, the right one unlocks
	badDraft, err := utxoutil.ConsumeWithScript(lockedOutputs[0], script, []byte("wrong")).
		Combine(utxoutil.PayTo(alice.Address(), utxo.NewBaseValue(100)))
	require.NoError(t, err)
	badSpend, err := utxoutil.Build(badDraft)
	require.NoError(t, err)
	assert.ErrorIs(t, testLedger.Submit(badSpend), ErrAuthorization)

	goodDraft, err := utxoutil.ConsumeWithScript(lockedOutputs[0], script, datum).
		Combine(utxoutil.PayTo(alice.Address(), utxo.NewBaseValue(100)))
	require.NoError(t, err)
	goodSpend, err := utxoutil.Build(goodDraft)
	require.NoError(t, err)
	require.NoError(t, testLedger.Submit(goodSpend))

	assert.True(t, utxo.NewBaseValue(100).Equal(testLedger.BalanceAt(alice.Address())))
}

func TestLedger_SnapshotRestore(t *testing.T) {
	testLedger, identities, admin := setupLedger(t, 1000)
	alice := identities.CreateIdentity()

	snapshot := testLedger.TakeSnapshot()
	logSizeBefore := testLedger.Log().Size()

	require.NoError(t, transfer(t, testLedger, admin, alice.Address(), 100))
	_, err := testLedger.WaitSlots(3)
	require.NoError(t, err)

	testLedger.RestoreSnapshot(snapshot)

	assert.True(t, utxo.NewBaseValue(1000).Equal(testLedger.BalanceAt(admin.Address())))
	assert.True(t, testLedger.BalanceAt(alice.Address()).IsZero())
	assert.EqualValues(t, 0, testLedger.CurrentSlot())
	assert.Equal(t, logSizeBefore, testLedger.Log().Size())

	// the snapshot stays valid for a second restore
	require.NoError(t, transfer(t, testLedger, admin, alice.Address(), 100))
	testLedger.RestoreSnapshot(snapshot)
	assert.True(t, testLedger.BalanceAt(alice.Address()).IsZero())
}
