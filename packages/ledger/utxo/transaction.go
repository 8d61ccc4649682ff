package utxo

import (
	"sync"

	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/iotaledger/hive.go/generics/orderedmap"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
)

// region Input / Inputs ///////////////////////////////////////////////////////////////////////////////////////////////

// Input references an Output that a Transaction consumes. Besides the OutputID it carries a snapshot of the
// referenced Output taken at build time, so that drafts can be balanced without touching the ledger. The ledger
// itself always re-resolves the reference against its own UTXO set.
type Input struct {
	referencedOutputID OutputID
	referencedOutput   *Output
}

// NewInput creates an Input that references the given Output.
func NewInput(referencedOutput *Output) (input *Input) {
	return &Input{
		referencedOutputID: referencedOutput.ID(),
		referencedOutput:   referencedOutput,
	}
}

// ReferencedOutputID returns the identifier of the consumed Output.
func (i *Input) ReferencedOutputID() (outputID OutputID) {
	return i.referencedOutputID
}

// ReferencedOutput returns the build-time snapshot of the consumed Output.
func (i *Input) ReferencedOutput() (output *Output) {
	return i.referencedOutput
}

// String returns a human-readable version of the Input.
func (i *Input) String() (humanReadable string) {
	return stringify.Struct("Input",
		stringify.StructField("referencedOutputID", i.referencedOutputID),
	)
}

// Inputs represents an ordered list of Inputs.
type Inputs []*Input

// Clone returns a shallow copy of the Inputs list.
func (i Inputs) Clone() (cloned Inputs) {
	cloned = make(Inputs, len(i))
	copy(cloned, i)

	return cloned
}

// TotalBalances returns the aggregate Value of the referenced Output snapshots.
func (i Inputs) TotalBalances() (total *Value) {
	total = NewEmptyValue()
	for _, input := range i {
		total = total.Add(input.ReferencedOutput().Balances())
	}

	return total
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region TransactionEssence ///////////////////////////////////////////////////////////////////////////////////////////

// TransactionEssence contains the signed payload of a Transaction: what it consumes, what it produces, what it mints
// or burns, the fee it pays and the slot window it is valid in.
type TransactionEssence struct {
	inputs   Inputs
	outputs  []*Output
	mint     *Value
	fee      int64
	validity SlotWindow
}

// NewTransactionEssence creates a TransactionEssence from the given details.
func NewTransactionEssence(inputs Inputs, outputs []*Output, mint *Value, fee int64, validity SlotWindow) (essence *TransactionEssence) {
	return &TransactionEssence{
		inputs:   inputs,
		outputs:  outputs,
		mint:     mint.Clone(),
		fee:      fee,
		validity: validity,
	}
}

// Inputs returns the Inputs consumed by the essence.
func (t *TransactionEssence) Inputs() (inputs Inputs) {
	return t.inputs
}

// Outputs returns the Outputs produced by the essence.
func (t *TransactionEssence) Outputs() (outputs []*Output) {
	return t.outputs
}

// Mint returns the minted (positive) and burned (negative) balances of the essence.
func (t *TransactionEssence) Mint() (mint *Value) {
	return t.mint
}

// Fee returns the fee paid by the essence (in units of the base asset).
func (t *TransactionEssence) Fee() (fee int64) {
	return t.fee
}

// Validity returns the slot window the essence is valid in.
func (t *TransactionEssence) Validity() (validity SlotWindow) {
	return t.validity
}

// Bytes returns a deterministic serialization of the essence. It is the content that gets signed and hashed into the
// TransactionID.
func (t *TransactionEssence) Bytes() (serialized []byte) {
	marshalUtil := marshalutil.New()

	marshalUtil.WriteUint32(uint32(len(t.inputs)))
	for _, input := range t.inputs {
		marshalUtil.WriteBytes(input.ReferencedOutputID().Bytes())
	}

	marshalUtil.WriteUint32(uint32(len(t.outputs)))
	for _, output := range t.outputs {
		marshalUtil.WriteBytes(output.Bytes())
	}

	marshalUtil.WriteBytes(t.mint.Bytes())
	marshalUtil.WriteInt64(t.fee)
	marshalUtil.WriteBytes(t.validity.Bytes())

	return marshalUtil.Bytes()
}

// String returns a human-readable version of the TransactionEssence.
func (t *TransactionEssence) String() (humanReadable string) {
	return stringify.Struct("TransactionEssence",
		stringify.StructField("inputs", len(t.inputs)),
		stringify.StructField("outputs", len(t.outputs)),
		stringify.StructField("mint", t.mint),
		stringify.StructField("fee", t.fee),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region UnlockBlocks /////////////////////////////////////////////////////////////////////////////////////////////////

// UnlockBlock is the spend-authorization proof for a single Input. The UnlockBlock at index i authorizes the Input at
// index i of the essence.
type UnlockBlock interface {
	// String returns a human-readable version of the UnlockBlock.
	String() (humanReadable string)
}

// SignatureUnlockBlock authorizes the consumption of a key-secured Output by an ED25519 signature over the essence
// bytes.
type SignatureUnlockBlock struct {
	publicKey ed25519.PublicKey
	signature ed25519.Signature
}

// NewSignatureUnlockBlock creates a SignatureUnlockBlock from the given public key and signature.
func NewSignatureUnlockBlock(publicKey ed25519.PublicKey, signature ed25519.Signature) (unlockBlock *SignatureUnlockBlock) {
	return &SignatureUnlockBlock{
		publicKey: publicKey,
		signature: signature,
	}
}

// PublicKey returns the public key that produced the signature.
func (s *SignatureUnlockBlock) PublicKey() (publicKey ed25519.PublicKey) {
	return s.publicKey
}

// AddressSignatureValid returns true if the block's public key hashes to the given Address and its signature is a
// valid signature of the given data.
func (s *SignatureUnlockBlock) AddressSignatureValid(address Address, signedData []byte) (valid bool) {
	return address.CorrespondsTo(s.publicKey) && s.publicKey.VerifySignature(signedData, s.signature)
}

// String returns a human-readable version of the SignatureUnlockBlock.
func (s *SignatureUnlockBlock) String() (humanReadable string) {
	return stringify.Struct("SignatureUnlockBlock",
		stringify.StructField("publicKey", s.publicKey),
	)
}

// ScriptUnlockBlock authorizes the consumption of a script-secured Output by supplying the locking Script together
// with the redeemer bytes that its evaluation receives.
type ScriptUnlockBlock struct {
	script   Script
	redeemer []byte
}

// NewScriptUnlockBlock creates a ScriptUnlockBlock from the given Script and redeemer.
func NewScriptUnlockBlock(script Script, redeemer []byte) (unlockBlock *ScriptUnlockBlock) {
	return &ScriptUnlockBlock{
		script:   script,
		redeemer: redeemer,
	}
}

// Script returns the locking Script supplied by the block.
func (s *ScriptUnlockBlock) Script() (script Script) {
	return s.script
}

// Redeemer returns the redeemer bytes supplied by the block.
func (s *ScriptUnlockBlock) Redeemer() (redeemer []byte) {
	return s.redeemer
}

// String returns a human-readable version of the ScriptUnlockBlock.
func (s *ScriptUnlockBlock) String() (humanReadable string) {
	return stringify.Struct("ScriptUnlockBlock",
		stringify.StructField("scriptHash", s.script.Hash()),
	)
}

// UnlockBlocks is an ordered list of UnlockBlocks, parallel to the essence's Inputs.
type UnlockBlocks []UnlockBlock

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region MintWitness //////////////////////////////////////////////////////////////////////////////////////////////////

// MintWitness backs the minting or burning of one asset class with its policy Script and redeemer.
type MintWitness struct {
	policy   Script
	redeemer []byte
}

// NewMintWitness creates a MintWitness from the given policy Script and redeemer.
func NewMintWitness(policy Script, redeemer []byte) (witness *MintWitness) {
	return &MintWitness{
		policy:   policy,
		redeemer: redeemer,
	}
}

// Policy returns the minting policy Script.
func (m *MintWitness) Policy() (policy Script) {
	return m.policy
}

// Redeemer returns the redeemer bytes of the witness.
func (m *MintWitness) Redeemer() (redeemer []byte) {
	return m.redeemer
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Transaction //////////////////////////////////////////////////////////////////////////////////////////////////

// Transaction is an immutable, submittable transaction value: the signed essence plus its witness data (unlock
// blocks, attached datums and mint witnesses). It is not committed until the ledger validated and applied it.
type Transaction struct {
	id            TransactionID
	idOnce        sync.Once
	essence       *TransactionEssence
	unlockBlocks  UnlockBlocks
	datums        *orderedmap.OrderedMap[DatumHash, []byte]
	mintWitnesses *orderedmap.OrderedMap[AssetID, *MintWitness]
}

// NewTransaction creates a Transaction from the given essence and witness data. Passing nil for the datum or mint
// witness tables is allowed and leaves them empty.
func NewTransaction(essence *TransactionEssence, unlockBlocks UnlockBlocks, datums *orderedmap.OrderedMap[DatumHash, []byte], mintWitnesses *orderedmap.OrderedMap[AssetID, *MintWitness]) (transaction *Transaction) {
	if datums == nil {
		datums = orderedmap.New[DatumHash, []byte]()
	}
	if mintWitnesses == nil {
		mintWitnesses = orderedmap.New[AssetID, *MintWitness]()
	}

	return &Transaction{
		essence:       essence,
		unlockBlocks:  unlockBlocks,
		datums:        datums,
		mintWitnesses: mintWitnesses,
	}
}

// ID returns the identifier of the Transaction (the hash of its essence bytes).
func (t *Transaction) ID() (id TransactionID) {
	t.idOnce.Do(func() {
		t.id = NewTransactionID(t.essence.Bytes())
	})

	return t.id
}

// Essence returns the signed payload of the Transaction.
func (t *Transaction) Essence() (essence *TransactionEssence) {
	return t.essence
}

// UnlockBlocks returns the spend-authorization proofs of the Transaction.
func (t *Transaction) UnlockBlocks() (unlockBlocks UnlockBlocks) {
	return t.unlockBlocks
}

// Datum returns the decoded bytes of the attached datum with the given handle.
func (t *Transaction) Datum(datumHash DatumHash) (datumBytes []byte, exists bool) {
	return t.datums.Get(datumHash)
}

// Datums returns the attached-data table of the Transaction.
func (t *Transaction) Datums() (datums *orderedmap.OrderedMap[DatumHash, []byte]) {
	return t.datums
}

// MintWitness returns the witness that backs the minting of the given asset class.
func (t *Transaction) MintWitness(assetID AssetID) (witness *MintWitness, exists bool) {
	return t.mintWitnesses.Get(assetID)
}

// String returns a human-readable version of the Transaction.
func (t *Transaction) String() (humanReadable string) {
	return stringify.Struct("Transaction",
		stringify.StructField("id", t.ID()),
		stringify.StructField("essence", t.essence),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
