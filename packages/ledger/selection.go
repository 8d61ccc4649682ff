package ledger

import (
	"github.com/cockroachdb/errors"

	"github.com/simledger/simledger/packages/ledger/utxo"
)

// region SpendPlan ////////////////////////////////////////////////////////////////////////////////////////////////////

// SpendPlan is the result of coin selection: the outputs to consume and the remainder that flows back to the owner
// as change.
type SpendPlan struct {
	// Consumed contains the selected outputs in the order they were picked.
	Consumed []*utxo.Output

	// Remainder is the surplus value of the consumed outputs over the target.
	Remainder *utxo.Value
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region coin selection ///////////////////////////////////////////////////////////////////////////////////////////////

// SelectOutputs greedily collects unspent outputs owned by the given address until their accumulated balances cover
// the target value. Outputs are scanned in the UTXO set's insertion order, so the same ledger history always yields
// the same selection. An output only gets picked if it still contributes to an uncovered part of the target.
// Selection is advisory: the UTXO set is not mutated and the picked outputs only leave it when a transaction
// consuming them is committed. An uncoverable target is recorded as a failure in the event log.
func (l *Ledger) SelectOutputs(owner utxo.Address, target *utxo.Value) (plan *SpendPlan, err error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if plan, err = l.selectOutputs(owner, target); err != nil {
		entry := &LogEntry{
			Kind:    TransactionRejectedEntry,
			Slot:    l.clock.CurrentSlot(),
			Reason:  err,
			Message: err.Error(),
		}
		l.log.append(entry)
		l.Events.TransactionRejected.Trigger(entry)
	}

	return plan, err
}

func (l *Ledger) selectOutputs(owner utxo.Address, target *utxo.Value) (plan *SpendPlan, err error) {
	plan = &SpendPlan{
		Consumed:  make([]*utxo.Output, 0),
		Remainder: utxo.NewEmptyValue(),
	}

	remaining := target.Clone()
	collected := utxo.NewEmptyValue()
	l.storage.ForEachUnspentOutput(func(output *utxo.Output) bool {
		if !output.Address().Equals(owner) {
			return true
		}

		// skip outputs that do not cover any still-missing asset
		if remaining.NonNegativePart().Sub(output.Balances()).NonNegativePart().Equal(remaining.NonNegativePart()) {
			return true
		}

		plan.Consumed = append(plan.Consumed, output)
		collected = collected.Add(output.Balances())
		remaining = remaining.Sub(output.Balances())

		return !remaining.NonNegativePart().IsZero()
	})

	if !remaining.NonNegativePart().IsZero() {
		return nil, errors.Errorf("failed to cover %s for address %s: %w", target, owner, ErrInsufficientFunds)
	}
	plan.Remainder = collected.Sub(target)

	return plan, nil
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
