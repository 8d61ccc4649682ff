package simulator

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/generics/orderedmap"
	"github.com/iotaledger/hive.go/stringify"

	"github.com/simledger/simledger/packages/ledger"
	"github.com/simledger/simledger/packages/ledger/utxo"
)

// region BalanceDiff //////////////////////////////////////////////////////////////////////////////////////////////////

// BalanceDiff declares the expected net balance change per address over an action. Addresses that are not mentioned
// are not checked.
type BalanceDiff struct {
	deltas *orderedmap.OrderedMap[utxo.Address, *utxo.Value]
}

// NewBalanceDiff creates an empty BalanceDiff (every mentioned address is expected to be unchanged).
func NewBalanceDiff() (diff *BalanceDiff) {
	return &BalanceDiff{
		deltas: orderedmap.New[utxo.Address, *utxo.Value](),
	}
}

// Gains declares that the address is expected to gain the given value.
func (b *BalanceDiff) Gains(address utxo.Address, value *utxo.Value) (self *BalanceDiff) {
	return b.adds(address, value)
}

// Loses declares that the address is expected to lose the given value.
func (b *BalanceDiff) Loses(address utxo.Address, value *utxo.Value) (self *BalanceDiff) {
	return b.adds(address, value.Negate())
}

// Unchanged declares that the address is expected to keep its balance (it still gets checked).
func (b *BalanceDiff) Unchanged(address utxo.Address) (self *BalanceDiff) {
	return b.adds(address, utxo.NewEmptyValue())
}

// Delta returns the expected net change for the given address.
func (b *BalanceDiff) Delta(address utxo.Address) (delta *utxo.Value) {
	if delta, exists := b.deltas.Get(address); exists {
		return delta
	}

	return utxo.NewEmptyValue()
}

// Combine merges the expectations of two diffs by summing per-address deltas.
func (b *BalanceDiff) Combine(other *BalanceDiff) (combined *BalanceDiff) {
	combined = NewBalanceDiff()
	b.deltas.ForEach(func(address utxo.Address, delta *utxo.Value) bool {
		combined.adds(address, delta)

		return true
	})
	other.deltas.ForEach(func(address utxo.Address, delta *utxo.Value) bool {
		combined.adds(address, delta)

		return true
	})

	return combined
}

// ForEach iterates through the declared expectations in declaration order.
func (b *BalanceDiff) ForEach(callback func(address utxo.Address, delta *utxo.Value) bool) {
	b.deltas.ForEach(callback)
}

func (b *BalanceDiff) adds(address utxo.Address, value *utxo.Value) (self *BalanceDiff) {
	if existing, exists := b.deltas.Get(address); exists {
		b.deltas.Set(address, existing.Add(value))
	} else {
		b.deltas.Set(address, value.Clone())
	}

	return b
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region CheckBalances ////////////////////////////////////////////////////////////////////////////////////////////////

// Mismatch describes one address whose observed balance change deviated from the expectation.
type Mismatch struct {
	// Address is the address whose balance deviated.
	Address utxo.Address

	// Expected is the declared net change.
	Expected *utxo.Value

	// Actual is the observed net change.
	Actual *utxo.Value
}

// String returns a human-readable version of the Mismatch.
func (m *Mismatch) String() (humanReadable string) {
	return stringify.Struct("Mismatch",
		stringify.StructField("address", m.Address),
		stringify.StructField("expected", m.Expected),
		stringify.StructField("actual", m.Actual),
	)
}

// CheckBalances runs an action and verifies that every address mentioned in the expectation changed by exactly the
// declared delta. All deviations are collected rather than stopping at the first one, and a single composite
// assertion failure is recorded in the event log. An error returned by the action itself is passed through.
func (s *Simulator) CheckBalances(expected *BalanceDiff, action func() error) (mismatches []*Mismatch, err error) {
	before := orderedmap.New[utxo.Address, *utxo.Value]()
	expected.ForEach(func(address utxo.Address, _ *utxo.Value) bool {
		before.Set(address, s.ledger.BalanceAt(address))

		return true
	})

	if err = action(); err != nil {
		return nil, err
	}

	mismatches = make([]*Mismatch, 0)
	expected.ForEach(func(address utxo.Address, delta *utxo.Value) bool {
		previous, _ := before.Get(address)
		actual := s.ledger.BalanceAt(address).Sub(previous)
		if !actual.Equal(delta) {
			mismatches = append(mismatches, &Mismatch{
				Address:  address,
				Expected: delta.Clone(),
				Actual:   actual,
			})
		}

		return true
	})

	if len(mismatches) != 0 {
		descriptions := make([]string, len(mismatches))
		for i, mismatch := range mismatches {
			descriptions[i] = mismatch.String()
		}

		err = errors.Errorf("%d balance expectations not met: %w", len(mismatches), ledger.ErrAssertionFailed)
		s.ledger.RecordAssertionFailure(strings.Join(descriptions, "; "), err)

		return mismatches, err
	}

	return nil, nil
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
