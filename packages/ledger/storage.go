package ledger

import (
	"github.com/iotaledger/hive.go/generics/orderedmap"

	"github.com/simledger/simledger/packages/ledger/utxo"
)

// region Storage //////////////////////////////////////////////////////////////////////////////////////////////////////

// Storage holds the live UTXO set and the datum store of a Ledger. Outputs are keyed by their OutputID and kept in
// insertion order, which is what makes coin selection deterministic.
type Storage struct {
	unspentOutputs        *orderedmap.OrderedMap[utxo.OutputID, *utxo.Output]
	datums                *orderedmap.OrderedMap[utxo.DatumHash, []byte]
	committedTransactions utxo.TransactionIDs
}

// newStorage creates an empty Storage.
func newStorage() (new *Storage) {
	return &Storage{
		unspentOutputs:        orderedmap.New[utxo.OutputID, *utxo.Output](),
		datums:                orderedmap.New[utxo.DatumHash, []byte](),
		committedTransactions: utxo.NewTransactionIDs(),
	}
}

// Output returns the unspent Output with the given OutputID.
func (s *Storage) Output(outputID utxo.OutputID) (output *utxo.Output, exists bool) {
	return s.unspentOutputs.Get(outputID)
}

// bookOutput adds an Output to the UTXO set.
func (s *Storage) bookOutput(output *utxo.Output) {
	s.unspentOutputs.Set(output.ID(), output)
}

// consumeOutput removes an Output from the UTXO set.
func (s *Storage) consumeOutput(outputID utxo.OutputID) {
	s.unspentOutputs.Delete(outputID)
}

// storeDatum stores a datum under its hash. Storing the same datum twice is a no-op.
func (s *Storage) storeDatum(datumHash utxo.DatumHash, datum []byte) {
	if _, exists := s.datums.Get(datumHash); !exists {
		stored := make([]byte, len(datum))
		copy(stored, datum)

		s.datums.Set(datumHash, stored)
	}
}

// markCommitted records a TransactionID as committed. Committed IDs stay recorded even after all of the
// transaction's outputs were spent, so OutputIDs are never booked twice.
func (s *Storage) markCommitted(txID utxo.TransactionID) {
	s.committedTransactions.Add(txID)
}

// TransactionCommitted returns true if a transaction with the given TransactionID was committed before.
func (s *Storage) TransactionCommitted(txID utxo.TransactionID) (committed bool) {
	return s.committedTransactions.Has(txID)
}

// Datum returns the datum with the given hash.
func (s *Storage) Datum(datumHash utxo.DatumHash) (datum []byte, exists bool) {
	return s.datums.Get(datumHash)
}

// ForEachUnspentOutput iterates through the UTXO set in insertion order.
func (s *Storage) ForEachUnspentOutput(callback func(output *utxo.Output) bool) {
	s.unspentOutputs.ForEach(func(_ utxo.OutputID, output *utxo.Output) bool {
		return callback(output)
	})
}

// UnspentOutputCount returns the number of unspent outputs.
func (s *Storage) UnspentOutputCount() (count int) {
	return s.unspentOutputs.Size()
}

// clone returns a deep copy of the Storage (used by snapshots).
func (s *Storage) clone() (cloned *Storage) {
	cloned = newStorage()
	s.unspentOutputs.ForEach(func(outputID utxo.OutputID, output *utxo.Output) bool {
		cloned.unspentOutputs.Set(outputID, output)

		return true
	})
	s.datums.ForEach(func(datumHash utxo.DatumHash, datum []byte) bool {
		cloned.datums.Set(datumHash, datum)

		return true
	})
	cloned.committedTransactions = s.committedTransactions.Clone()

	return cloned
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Snapshot /////////////////////////////////////////////////////////////////////////////////////////////////////

// Snapshot captures the full ledger state at a point in time. Restoring it rewinds the UTXO set, the datum store,
// the clock and the event log to the captured state.
type Snapshot struct {
	storage  *Storage
	slot     utxo.Slot
	logSize  int
	failures int
}

// FailureCount returns the number of failure log entries at the time the snapshot was taken.
func (s *Snapshot) FailureCount() (count int) {
	return s.failures
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
