package ledger

import (
	"sync"

	"github.com/simledger/simledger/packages/ledger/utxo"
)

// region Ledger ///////////////////////////////////////////////////////////////////////////////////////////////////////

// Ledger is a deterministic, in-process UTXO ledger. It validates submitted transactions against the full rule set
// (value conservation, input existence, spend and mint authorization, time validity, resource limits) and commits
// them atomically: a transaction either updates the UTXO set completely or leaves it untouched.
type Ledger struct {
	// Events is a dictionary for Ledger related events.
	Events *Events

	options *options
	storage *Storage
	clock   *Clock
	log     *EventLog
	mutex   sync.RWMutex
}

// New creates a Ledger whose genesis state consists of a single output holding the given funds, owned by the given
// address. The genesis output is booked under the empty TransactionID.
func New(genesisFunds *utxo.Value, genesisAddress utxo.Address, opts ...Option) (ledger *Ledger) {
	ledger = &Ledger{
		Events:  NewEvents(),
		options: newOptions(opts...),
		storage: newStorage(),
		log:     newEventLog(),
	}
	ledger.clock = newClock(ledger.options.genesisTime, ledger.options.slotDuration)

	genesisOutput := utxo.NewOutput(genesisAddress, genesisFunds)
	genesisOutput.SetID(utxo.NewOutputID(utxo.EmptyTransactionID, 0))
	ledger.storage.bookOutput(genesisOutput)
	ledger.storage.markCommitted(utxo.EmptyTransactionID)

	ledger.options.log.Debugw("ledger initialized", "genesisFunds", genesisFunds.String(), "genesisAddress", genesisAddress.Base58())

	return ledger
}

// Submit validates the given transaction and, if every check passes, commits it atomically: the consumed outputs
// leave the UTXO set, the produced outputs enter it under their final OutputIDs, and attached datums are stored.
// Either way the outcome is appended to the event log.
func (l *Ledger) Submit(transaction *utxo.Transaction) (err error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	consumedOutputs, err := l.checkTransaction(transaction)
	if err != nil {
		entry := &LogEntry{
			Kind:          TransactionRejectedEntry,
			Slot:          l.clock.CurrentSlot(),
			TransactionID: transaction.ID(),
			Reason:        err,
			Message:       err.Error(),
		}
		l.log.append(entry)
		l.Events.TransactionRejected.Trigger(entry)
		l.options.log.Debugw("transaction rejected", "transactionID", transaction.ID().String(), "reason", err)

		return err
	}

	l.commitTransaction(transaction, consumedOutputs)

	l.log.append(&LogEntry{
		Kind:          TransactionAcceptedEntry,
		Slot:          l.clock.CurrentSlot(),
		TransactionID: transaction.ID(),
		Message:       "transaction accepted",
	})
	l.Events.TransactionAccepted.Trigger(transaction.ID())
	l.options.log.Debugw("transaction accepted", "transactionID", transaction.ID().String())

	return nil
}

// commitTransaction applies a fully validated transaction to the ledger state.
func (l *Ledger) commitTransaction(transaction *utxo.Transaction, consumedOutputs []*utxo.Output) {
	l.storage.markCommitted(transaction.ID())

	for _, output := range consumedOutputs {
		l.storage.consumeOutput(output.ID())
	}

	for index, output := range transaction.Essence().Outputs() {
		booked := output.Clone()
		booked.SetID(utxo.NewOutputID(transaction.ID(), uint16(index)))
		l.storage.bookOutput(booked)
	}

	transaction.Datums().ForEach(func(datumHash utxo.DatumHash, datum []byte) bool {
		l.storage.storeDatum(datumHash, datum)

		return true
	})
}

// WaitSlots advances the clock by the given number of slots and records the advance in the event log.
func (l *Ledger) WaitSlots(count int64) (currentSlot utxo.Slot, err error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if currentSlot, err = l.clock.AdvanceSlots(count); err != nil {
		return currentSlot, err
	}

	l.log.append(&LogEntry{
		Kind:    SlotAdvancedEntry,
		Slot:    currentSlot,
		Message: "clock advanced",
	})
	l.Events.SlotAdvanced.Trigger(currentSlot)

	return currentSlot, nil
}

// CurrentSlot returns the ledger's current slot.
func (l *Ledger) CurrentSlot() (currentSlot utxo.Slot) {
	return l.clock.CurrentSlot()
}

// Clock returns the ledger's slot clock.
func (l *Ledger) Clock() (clock *Clock) {
	return l.clock
}

// Log returns the ledger's append-only event log.
func (l *Ledger) Log() (log *EventLog) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.log
}

// RecordAssertionFailure appends an assertion failure to the event log and triggers the corresponding event.
func (l *Ledger) RecordAssertionFailure(message string, reason error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	entry := &LogEntry{
		Kind:    AssertionFailedEntry,
		Slot:    l.clock.CurrentSlot(),
		Reason:  reason,
		Message: message,
	}
	l.log.append(entry)
	l.Events.AssertionFailed.Trigger(entry)
}

// TakeSnapshot captures the current ledger state. The returned Snapshot stays valid regardless of later mutations.
func (l *Ledger) TakeSnapshot() (snapshot *Snapshot) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return &Snapshot{
		storage:  l.storage.clone(),
		slot:     l.clock.CurrentSlot(),
		logSize:  l.log.Size(),
		failures: l.log.FailureCount(),
	}
}

// RestoreSnapshot rewinds the UTXO set, the datum store, the clock and the event log to the captured state. The
// Snapshot stays reusable after the restore.
func (l *Ledger) RestoreSnapshot(snapshot *Snapshot) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.storage = snapshot.storage.clone()
	l.clock.restore(snapshot.slot)
	l.log.truncate(snapshot.logSize)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region read access //////////////////////////////////////////////////////////////////////////////////////////////////

// Output returns the unspent output with the given OutputID.
func (l *Ledger) Output(outputID utxo.OutputID) (output *utxo.Output, exists bool) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.storage.Output(outputID)
}

// UnspentOutputs returns every unspent output in booking order.
func (l *Ledger) UnspentOutputs() (outputs []*utxo.Output) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	outputs = make([]*utxo.Output, 0, l.storage.UnspentOutputCount())
	l.storage.ForEachUnspentOutput(func(output *utxo.Output) bool {
		outputs = append(outputs, output)

		return true
	})

	return outputs
}

// OutputsAt returns every unspent output owned by the given address, in booking order.
func (l *Ledger) OutputsAt(address utxo.Address) (outputs []*utxo.Output) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	outputs = make([]*utxo.Output, 0)
	l.storage.ForEachUnspentOutput(func(output *utxo.Output) bool {
		if output.Address().Equals(address) {
			outputs = append(outputs, output)
		}

		return true
	})

	return outputs
}

// BalanceAt returns the total value held by the given address.
func (l *Ledger) BalanceAt(address utxo.Address) (balance *utxo.Value) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	balance = utxo.NewEmptyValue()
	l.storage.ForEachUnspentOutput(func(output *utxo.Output) bool {
		if output.Address().Equals(address) {
			balance = balance.Add(output.Balances())
		}

		return true
	})

	return balance
}

// Datum returns the datum stored under the given hash.
func (l *Ledger) Datum(datumHash utxo.DatumHash) (datum []byte, exists bool) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return l.storage.Datum(datumHash)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
