package utxoutil

import (
	"github.com/cockroachdb/errors"

	"github.com/simledger/simledger/packages/ledger/utxo"
)

// ErrMissingSigner is returned by Build when a key-secured input has no matching Signer among the supplied ones.
var ErrMissingSigner = errors.New("no signer for consumed output")

// Consume creates a fragment that spends the given key-secured Outputs.
func Consume(outputs ...*utxo.Output) (fragment *utxo.Draft) {
	fragment = utxo.NewDraft()
	for _, output := range outputs {
		fragment.AddInput(utxo.NewInput(output), nil)
	}

	return fragment
}

// ConsumeWithScript creates a fragment that spends a script-secured Output, supplying the unlocking Script and the
// redeemer bytes its evaluation receives.
func ConsumeWithScript(output *utxo.Output, script utxo.Script, redeemer []byte) (fragment *utxo.Draft) {
	fragment = utxo.NewDraft()
	fragment.AddInput(utxo.NewInput(output), utxo.NewSpendWitness(script, redeemer))

	return fragment
}

// PayTo creates a fragment that produces an Output holding the given Value at the given Address.
func PayTo(address utxo.Address, value *utxo.Value) (fragment *utxo.Draft) {
	fragment = utxo.NewDraft()
	fragment.AddOutput(utxo.NewOutput(address, value))

	return fragment
}

// PayToWithDatum creates a fragment that produces an Output with an attached datum. The encoded datum travels in the
// transaction's attached-data table and is stored by the ledger at commit time.
func PayToWithDatum(address utxo.Address, value *utxo.Value, datumBytes []byte) (fragment *utxo.Draft) {
	fragment = utxo.NewDraft()
	datumHash := fragment.AddDatum(datumBytes)
	fragment.AddOutput(utxo.NewOutputWithDatum(address, value, datumHash))

	return fragment
}

// Mint creates a fragment that mints the given amount of the asset class identified by the policy's hash. Negative
// amounts burn.
func Mint(policy utxo.Script, amount int64, redeemer []byte) (fragment *utxo.Draft) {
	fragment = utxo.NewDraft()
	fragment.AddMint(utxo.NewAssetID(policy.Hash()), amount, utxo.NewMintWitness(policy, redeemer))

	return fragment
}

// WithFee creates a fragment that declares a fee (in units of the base asset).
func WithFee(fee int64) (fragment *utxo.Draft) {
	fragment = utxo.NewDraft()
	fragment.SetFee(fee)

	return fragment
}

// ValidBetween creates a fragment that restricts the transaction's validity to the given slot window (a zero maxSlot
// leaves the window open-ended).
func ValidBetween(minSlot, maxSlot utxo.Slot) (fragment *utxo.Draft) {
	fragment = utxo.NewDraft()
	fragment.SetValidity(utxo.SlotWindow{MinSlot: minSlot, MaxSlot: maxSlot})

	return fragment
}

// Build turns a fully combined Draft into an immutable, signed Transaction. For every key-secured input it selects
// the Signer whose public key hashes to the output's address and signs the essence bytes; script-secured inputs are
// unlocked with the Draft's spend witnesses. Build fails if a key input has no matching Signer or a script input has
// no witness - deliberately malformed transactions for negative tests are assembled with utxo.NewTransaction
// directly.
func Build(draft *utxo.Draft, signers ...utxo.Signer) (transaction *utxo.Transaction, err error) {
	essence := utxo.NewTransactionEssence(draft.Inputs(), draft.Outputs(), draft.Mint(), draft.Fee(), draft.Validity())
	essenceBytes := essence.Bytes()

	unlockBlocks := make(utxo.UnlockBlocks, len(draft.Inputs()))
	for i, input := range draft.Inputs() {
		consumed := input.ReferencedOutput()

		switch consumed.Address().Type() {
		case utxo.ED25519AddressType:
			signer, exists := signerFor(consumed.Address(), signers)
			if !exists {
				return nil, errors.Errorf("input %s: %w", input.ReferencedOutputID(), ErrMissingSigner)
			}
			unlockBlocks[i] = utxo.NewSignatureUnlockBlock(signer.PublicKey(), signer.Sign(essenceBytes))

		case utxo.ScriptAddressType:
			witness, exists := draft.SpendWitness(input.ReferencedOutputID())
			if !exists {
				return nil, errors.Errorf("input %s has no spend witness: %w", input.ReferencedOutputID(), ErrMissingSigner)
			}
			unlockBlocks[i] = utxo.NewScriptUnlockBlock(witness.Script(), witness.Redeemer())
		}
	}

	return utxo.NewTransaction(essence, unlockBlocks, draft.Datums(), draft.MintWitnesses()), nil
}

// signerFor returns the Signer whose public key corresponds to the given Address.
func signerFor(address utxo.Address, signers []utxo.Signer) (signer utxo.Signer, exists bool) {
	for _, candidate := range signers {
		if address.CorrespondsTo(candidate.PublicKey()) {
			return candidate, true
		}
	}

	return nil, false
}
