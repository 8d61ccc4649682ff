package utxo

// region Script ///////////////////////////////////////////////////////////////////////////////////////////////////////

// Script is the capability that decides whether a spending or minting condition is satisfied. The ledger engine only
// ever depends on this interface; concrete validator behaviors are supplied by the test author (see the scripts
// package for examples). Implementations must be pure: they may inspect the ScriptContext but never mutate state.
type Script interface {
	// Hash returns the content-addressed identifier of the Script. Script addresses and minted AssetIDs are derived
	// from it.
	Hash() (scriptHash ScriptHash)

	// Evaluate returns nil if the condition encoded by the Script is satisfied in the given context.
	Evaluate(context *ScriptContext) (err error)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region ScriptContext ////////////////////////////////////////////////////////////////////////////////////////////////

// PurposeType discriminates what a Script evaluation is asked to authorize.
type PurposeType byte

const (
	// SpendPurpose asks the Script to authorize the consumption of a specific input.
	SpendPurpose PurposeType = iota

	// MintPurpose asks the Script to authorize the minting or burning of a specific asset class.
	MintPurpose
)

// ScriptContext is the full context that a Script evaluation receives: the submitted Transaction, the resolved
// Outputs it consumes, the current slot, and a pointer to the specific input or asset the evaluation is about.
type ScriptContext struct {
	// Transaction is the transaction under validation.
	Transaction *Transaction

	// ConsumedOutputs are the resolved Outputs referenced by the Transaction's inputs, in input order.
	ConsumedOutputs []*Output

	// CurrentSlot is the ledger's slot at submission time.
	CurrentSlot Slot

	// Purpose declares whether a spend or a mint is being authorized.
	Purpose PurposeType

	// InputIndex points at the input being satisfied (SpendPurpose only).
	InputIndex uint16

	// Asset identifies the asset class being minted or burned (MintPurpose only).
	Asset AssetID

	// Datum holds the decoded bytes of the datum attached to the consumed Output (SpendPurpose only, nil if absent).
	Datum []byte

	// Redeemer holds the opaque redeemer bytes supplied by the transaction for this evaluation.
	Redeemer []byte
}

// MintedAmount returns the amount of the context's asset class that the transaction mints (negative for burns).
func (s *ScriptContext) MintedAmount() (amount int64) {
	return s.Transaction.Essence().Mint().Get(s.Asset)
}

// ConsumesOutput returns true if the transaction under validation consumes the given OutputID.
func (s *ScriptContext) ConsumesOutput(outputID OutputID) (consumes bool) {
	for _, input := range s.Transaction.Essence().Inputs() {
		if input.ReferencedOutputID() == outputID {
			return true
		}
	}

	return false
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
