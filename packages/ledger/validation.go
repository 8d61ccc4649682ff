package ledger

import (
	"github.com/cockroachdb/errors"

	"github.com/simledger/simledger/packages/ledger/utxo"
)

// region validation pipeline //////////////////////////////////////////////////////////////////////////////////////////

// checkTransaction runs the full validation pipeline over a submitted transaction. The checks run in a fixed order
// so that a transaction violating several rules is always rejected for the same reason: conservation, input
// existence, spend authorization, mint authorization, time validity, resource limits. It returns the resolved
// consumed outputs on success so that the commit does not have to look them up again.
func (l *Ledger) checkTransaction(transaction *utxo.Transaction) (consumedOutputs []*utxo.Output, err error) {
	if l.storage.TransactionCommitted(transaction.ID()) {
		return nil, errors.Errorf("transaction %s was already committed: %w", transaction.ID(), ErrReplayedTransaction)
	}

	if err = l.transactionBalancesValid(transaction); err != nil {
		return nil, err
	}

	if consumedOutputs, err = l.resolveInputs(transaction); err != nil {
		return nil, err
	}

	if err = l.unlockBlocksValid(transaction, consumedOutputs); err != nil {
		return nil, err
	}

	if err = l.mintsValid(transaction, consumedOutputs); err != nil {
		return nil, err
	}

	if err = l.timeValidityValid(transaction); err != nil {
		return nil, err
	}

	if err = l.limitsValid(transaction); err != nil {
		return nil, err
	}

	return consumedOutputs, nil
}

// transactionBalancesValid checks that the transaction preserves value: the sum of the consumed balances plus the
// minted value must equal the sum of the produced balances plus the fee. The consumed side is computed from the
// balance snapshots embedded in the inputs, so a stale snapshot surfaces here before the existence check does.
func (l *Ledger) transactionBalancesValid(transaction *utxo.Transaction) (err error) {
	essence := transaction.Essence()

	if essence.Fee() < 0 {
		return errors.Errorf("transaction %s declares a negative fee: %w", transaction.ID(), ErrConservation)
	}

	produced := utxo.NewBaseValue(essence.Fee())
	for _, output := range essence.Outputs() {
		if !output.Balances().IsNonNegative() {
			return errors.Errorf("transaction %s produces an output with negative balances: %w", transaction.ID(), ErrConservation)
		}
		produced = produced.Add(output.Balances())
	}

	consumed := essence.Inputs().TotalBalances().Add(essence.Mint())
	if !consumed.Equal(produced) {
		return errors.Errorf("transaction %s consumes %s but produces %s: %w", transaction.ID(), consumed, produced, ErrConservation)
	}

	return nil
}

// resolveInputs looks up every referenced output in the live UTXO set and checks that its balances still match the
// snapshot embedded in the input. A missing output means it never existed or was already spent.
func (l *Ledger) resolveInputs(transaction *utxo.Transaction) (consumedOutputs []*utxo.Output, err error) {
	inputs := transaction.Essence().Inputs()

	consumedOutputs = make([]*utxo.Output, len(inputs))
	referencedOutputIDs := utxo.NewOutputIDs()
	for i, input := range inputs {
		if !referencedOutputIDs.Add(input.ReferencedOutputID()) {
			return nil, errors.Errorf("transaction %s consumes output %s twice: %w", transaction.ID(), input.ReferencedOutputID(), ErrMissingOrSpentInput)
		}

		output, exists := l.storage.Output(input.ReferencedOutputID())
		if !exists {
			return nil, errors.Errorf("transaction %s references output %s: %w", transaction.ID(), input.ReferencedOutputID(), ErrMissingOrSpentInput)
		}
		if !output.Balances().Equal(input.ReferencedOutput().Balances()) {
			return nil, errors.Errorf("transaction %s carries a stale snapshot of output %s: %w", transaction.ID(), input.ReferencedOutputID(), ErrMissingOrSpentInput)
		}

		consumedOutputs[i] = output
	}

	return consumedOutputs, nil
}

// unlockBlocksValid checks that every consumed output is properly unlocked: ED25519 addresses by a signature over
// the essence bytes, script addresses by evaluating the attached script against a spend context.
func (l *Ledger) unlockBlocksValid(transaction *utxo.Transaction, consumedOutputs []*utxo.Output) (err error) {
	unlockBlocks := transaction.UnlockBlocks()
	if len(unlockBlocks) != len(consumedOutputs) {
		return errors.Errorf("transaction %s carries %d unlock blocks for %d inputs: %w", transaction.ID(), len(unlockBlocks), len(consumedOutputs), ErrAuthorization)
	}

	for i, output := range consumedOutputs {
		switch unlockBlock := unlockBlocks[i].(type) {
		case *utxo.SignatureUnlockBlock:
			if output.Address().Type() != utxo.ED25519AddressType {
				return errors.Errorf("transaction %s unlocks script output %s with a signature: %w", transaction.ID(), output.ID(), ErrAuthorization)
			}
			if !unlockBlock.AddressSignatureValid(output.Address(), transaction.Essence().Bytes()) {
				return errors.Errorf("transaction %s carries an invalid signature for output %s: %w", transaction.ID(), output.ID(), ErrAuthorization)
			}
		case *utxo.ScriptUnlockBlock:
			if output.Address().Type() != utxo.ScriptAddressType {
				return errors.Errorf("transaction %s unlocks signature output %s with a script: %w", transaction.ID(), output.ID(), ErrAuthorization)
			}
			if unlockBlock.Script().Hash() != output.Address().ScriptHash() {
				return errors.Errorf("transaction %s unlocks output %s with the wrong script: %w", transaction.ID(), output.ID(), ErrAuthorization)
			}

			if scriptErr := unlockBlock.Script().Evaluate(l.spendContext(transaction, consumedOutputs, uint16(i), unlockBlock.Redeemer())); scriptErr != nil {
				return errors.Errorf("transaction %s failed to unlock output %s: %v: %w", transaction.ID(), output.ID(), scriptErr, ErrAuthorization)
			}
		default:
			return errors.Errorf("transaction %s carries an unlock block of unknown type for output %s: %w", transaction.ID(), output.ID(), ErrAuthorization)
		}
	}

	return nil
}

// spendContext assembles the ScriptContext for unlocking the input at the given index. The datum of the consumed
// output is resolved from the transaction's attached datums first and the ledger's datum store second.
func (l *Ledger) spendContext(transaction *utxo.Transaction, consumedOutputs []*utxo.Output, inputIndex uint16, redeemer []byte) (context *utxo.ScriptContext) {
	context = &utxo.ScriptContext{
		Transaction:     transaction,
		ConsumedOutputs: consumedOutputs,
		CurrentSlot:     l.clock.CurrentSlot(),
		Purpose:         utxo.SpendPurpose,
		InputIndex:      inputIndex,
		Redeemer:        redeemer,
	}

	if datumHash := consumedOutputs[inputIndex].DatumHash(); datumHash != utxo.EmptyDatumHash {
		if datum, exists := transaction.Datum(datumHash); exists {
			context.Datum = datum
		} else if datum, exists = l.storage.Datum(datumHash); exists {
			context.Datum = datum
		}
	}

	return context
}

// mintsValid checks that every asset class the transaction mints or burns is authorized by a witness whose policy
// script hashes to the asset's identifier and whose evaluation succeeds. The base asset can never be minted.
func (l *Ledger) mintsValid(transaction *utxo.Transaction, consumedOutputs []*utxo.Output) (err error) {
	transaction.Essence().Mint().ForEach(func(assetID utxo.AssetID, amount int64) bool {
		if assetID == utxo.BaseAssetID {
			err = errors.Errorf("transaction %s mints the base asset: %w", transaction.ID(), ErrAuthorization)
			return false
		}

		witness, exists := transaction.MintWitness(assetID)
		if !exists {
			err = errors.Errorf("transaction %s mints asset %s without a witness: %w", transaction.ID(), assetID, ErrAuthorization)
			return false
		}
		if utxo.NewAssetID(witness.Policy().Hash()) != assetID {
			err = errors.Errorf("transaction %s mints asset %s with a mismatched policy: %w", transaction.ID(), assetID, ErrAuthorization)
			return false
		}

		if scriptErr := witness.Policy().Evaluate(&utxo.ScriptContext{
			Transaction:     transaction,
			ConsumedOutputs: consumedOutputs,
			CurrentSlot:     l.clock.CurrentSlot(),
			Purpose:         utxo.MintPurpose,
			Asset:           assetID,
			Redeemer:        witness.Redeemer(),
		}); scriptErr != nil {
			err = errors.Errorf("transaction %s failed the minting policy of asset %s: %v: %w", transaction.ID(), assetID, scriptErr, ErrAuthorization)
			return false
		}

		return true
	})

	return err
}

// timeValidityValid checks that the current slot lies inside the transaction's validity window.
func (l *Ledger) timeValidityValid(transaction *utxo.Transaction) (err error) {
	if currentSlot := l.clock.CurrentSlot(); !transaction.Essence().Validity().Contains(currentSlot) {
		return errors.Errorf("transaction %s is not valid in slot %d: %w", transaction.ID(), currentSlot, ErrTimeValidity)
	}

	return nil
}

// limitsValid checks the configured input and output count limits. Violations are warnings by default and only
// reject the transaction when strict limits are enabled.
func (l *Ledger) limitsValid(transaction *utxo.Transaction) (err error) {
	essence := transaction.Essence()

	if inputCount := len(essence.Inputs()); inputCount > l.options.maxInputCount {
		if l.options.strictLimits {
			return errors.Errorf("transaction %s consumes %d inputs (limit %d): %w", transaction.ID(), inputCount, l.options.maxInputCount, ErrLimitExceeded)
		}
		l.options.log.Warnf("transaction %s consumes %d inputs (limit %d)", transaction.ID(), inputCount, l.options.maxInputCount)
	}

	if outputCount := len(essence.Outputs()); outputCount > l.options.maxOutputCount {
		if l.options.strictLimits {
			return errors.Errorf("transaction %s produces %d outputs (limit %d): %w", transaction.ID(), outputCount, l.options.maxOutputCount, ErrLimitExceeded)
		}
		l.options.log.Warnf("transaction %s produces %d outputs (limit %d)", transaction.ID(), outputCount, l.options.maxOutputCount)
	}

	return nil
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
