// Package simulator is the high-level facade over the ledger engine: it owns the identity registry, funds fresh
// identities from the admin account, builds and submits transfer transactions, and provides the balance-diff and
// must-fail assertion helpers that scenario tests are written against.
package simulator

import (
	"github.com/cockroachdb/errors"

	"github.com/simledger/simledger/packages/ledger"
	"github.com/simledger/simledger/packages/ledger/utxo"
	"github.com/simledger/simledger/packages/ledger/utxoutil"
	"github.com/simledger/simledger/packages/registry"
)

// region Simulator ////////////////////////////////////////////////////////////////////////////////////////////////////

// Simulator wires a Ledger to an identity Registry and exposes the operations that scenario tests are written
// against. All state lives in process; two simulators never share anything.
type Simulator struct {
	ledger   *ledger.Ledger
	registry *registry.Registry
	admin    *registry.Identity
}

// New creates a Simulator whose ledger starts with the given genesis funds owned by a freshly generated admin
// identity.
func New(genesisFunds *utxo.Value, opts ...ledger.Option) (simulator *Simulator) {
	reg := registry.New()
	admin, _ := reg.CreateAdmin()

	return &Simulator{
		ledger:   ledger.New(genesisFunds, admin.Address(), opts...),
		registry: reg,
		admin:    admin,
	}
}

// Ledger returns the underlying Ledger.
func (s *Simulator) Ledger() (l *ledger.Ledger) {
	return s.ledger
}

// Registry returns the identity Registry.
func (s *Simulator) Registry() (r *registry.Registry) {
	return s.registry
}

// Admin returns the administrative identity that owns the genesis funds.
func (s *Simulator) Admin() (admin *registry.Identity) {
	return s.admin
}

// CreateIdentity creates a fresh "user-N" identity and, if initialFunds is non-zero, funds it from the admin
// account.
func (s *Simulator) CreateIdentity(initialFunds *utxo.Value) (identity *registry.Identity, err error) {
	identity = s.registry.CreateIdentity()

	if initialFunds != nil && !initialFunds.IsZero() {
		if err = s.Spend(s.admin, identity.Address(), initialFunds); err != nil {
			return nil, errors.Errorf("failed to fund identity %s: %w", identity.Name(), err)
		}
	}

	return identity, nil
}

// Spend moves the given value from the sender to the target address. Inputs are covered by deterministic coin
// selection over the sender's outputs and any surplus flows back to the sender as change.
func (s *Simulator) Spend(from *registry.Identity, to utxo.Address, value *utxo.Value) (err error) {
	plan, err := s.ledger.SelectOutputs(from.Address(), value)
	if err != nil {
		return err
	}

	draft := utxoutil.Consume(plan.Consumed...)
	if draft, err = draft.Combine(utxoutil.PayTo(to, value)); err != nil {
		return err
	}
	if !plan.Remainder.IsZero() {
		if draft, err = draft.Combine(utxoutil.PayTo(from.Address(), plan.Remainder)); err != nil {
			return err
		}
	}

	return s.SubmitDraft(draft, from)
}

// SubmitDraft builds a signed transaction from the given draft and submits it to the ledger.
func (s *Simulator) SubmitDraft(draft *utxo.Draft, signers ...utxo.Signer) (err error) {
	transaction, err := utxoutil.Build(draft, signers...)
	if err != nil {
		return err
	}

	return s.ledger.Submit(transaction)
}

// WaitSlots advances the simulated clock by the given number of slots.
func (s *Simulator) WaitSlots(count int64) (currentSlot utxo.Slot, err error) {
	return s.ledger.WaitSlots(count)
}

// CurrentSlot returns the simulated clock's current slot.
func (s *Simulator) CurrentSlot() (currentSlot utxo.Slot) {
	return s.ledger.CurrentSlot()
}

// ValueAt returns the total value held by the given address.
func (s *Simulator) ValueAt(address utxo.Address) (value *utxo.Value) {
	return s.ledger.BalanceAt(address)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region MustFail /////////////////////////////////////////////////////////////////////////////////////////////////////

// MustFail runs an action that is expected to fail and rolls the ledger state back afterwards, so an expected
// failure can be probed without disturbing the scenario. The expectation is met if the action returns an error or
// produces a new failure entry in the event log. An action that unexpectedly succeeds is recorded as an assertion
// failure and its effects are rolled back anyway.
func (s *Simulator) MustFail(action func() error) (err error) {
	snapshot := s.ledger.TakeSnapshot()

	actionErr := action()
	failed := actionErr != nil || s.ledger.Log().FailureCount() > snapshot.FailureCount()

	s.ledger.RestoreSnapshot(snapshot)

	if !failed {
		err = errors.Errorf("action was expected to fail but succeeded: %w", ledger.ErrAssertionFailed)
		s.ledger.RecordAssertionFailure("must-fail expectation not met", err)

		return err
	}

	return nil
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
