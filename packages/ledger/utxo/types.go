package utxo

import (
	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/generics/set"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/types"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

// region TransactionID ////////////////////////////////////////////////////////////////////////////////////////////////

// TransactionID is a unique identifier for a Transaction (the blake2b-256 hash of its essence).
type TransactionID struct {
	types.Identifier
}

// NewTransactionID returns the TransactionID for the given essence bytes.
func NewTransactionID(essenceBytes []byte) (new TransactionID) {
	return TransactionID{
		types.NewIdentifier(essenceBytes),
	}
}

// Unmarshal un-serializes a TransactionID using a MarshalUtil.
func (t TransactionID) Unmarshal(marshalUtil *marshalutil.MarshalUtil) (txID TransactionID, err error) {
	err = txID.Identifier.FromMarshalUtil(marshalUtil)
	return
}

// String returns a human-readable version of the TransactionID.
func (t TransactionID) String() (humanReadable string) {
	return "TransactionID(" + t.Alias() + ")"
}

// EmptyTransactionID contains the null-value of the TransactionID type. It is reserved for the genesis output.
var EmptyTransactionID TransactionID

// TransactionIDLength contains the byte length of a serialized TransactionID.
const TransactionIDLength = types.IdentifierLength

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region TransactionIDs ///////////////////////////////////////////////////////////////////////////////////////////////

// TransactionIDs represents a collection of TransactionIDs.
type TransactionIDs = *set.AdvancedSet[TransactionID]

// NewTransactionIDs returns a new TransactionID collection with the given elements.
func NewTransactionIDs(ids ...TransactionID) (new TransactionIDs) {
	return set.NewAdvancedSet[TransactionID](ids...)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region OutputID /////////////////////////////////////////////////////////////////////////////////////////////////////

// OutputID is the unique locator of an Output (origin transaction plus output index). OutputIDs are never reused,
// not even after the identified Output was spent.
type OutputID struct {
	TransactionID TransactionID
	Index         uint16
}

// NewOutputID returns a new OutputID for the given details.
func NewOutputID(txID TransactionID, index uint16) (new OutputID) {
	return OutputID{
		TransactionID: txID,
		Index:         index,
	}
}

// FromMarshalUtil un-serializes an OutputID from a MarshalUtil.
func (o *OutputID) FromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (err error) {
	if err = o.TransactionID.FromMarshalUtil(marshalUtil); err != nil {
		return errors.Errorf("failed to parse TransactionID: %w", err)
	}
	if o.Index, err = marshalUtil.ReadUint16(); err != nil {
		return errors.Errorf("failed to parse Index: %w", err)
	}

	return nil
}

// Unmarshal un-serializes an OutputID using a MarshalUtil (additional unmarshal signature required for AdvancedSet).
func (o OutputID) Unmarshal(marshalUtil *marshalutil.MarshalUtil) (outputID OutputID, err error) {
	err = outputID.FromMarshalUtil(marshalUtil)
	return outputID, err
}

// Bytes returns the serialized version of the OutputID.
func (o OutputID) Bytes() (serialized []byte) {
	return marshalutil.New(OutputIDLength).
		Write(o.TransactionID).
		WriteUint16(o.Index).
		Bytes()
}

// Base58 returns a base58 encoded version of the OutputID.
func (o OutputID) Base58() (base58Encoded string) {
	return base58.Encode(o.Bytes())
}

// String returns a human-readable version of the OutputID.
func (o OutputID) String() (humanReadable string) {
	return "OutputID(" + o.Base58() + ")"
}

// EmptyOutputID contains the null-value of the OutputID type.
var EmptyOutputID OutputID

// OutputIDLength contains the byte length of a serialized OutputID.
const OutputIDLength = TransactionIDLength + marshalutil.Uint16Size

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region OutputIDs ////////////////////////////////////////////////////////////////////////////////////////////////////

// OutputIDs represents a collection of OutputIDs.
type OutputIDs = *set.AdvancedSet[OutputID]

// NewOutputIDs returns a new OutputID collection with the given elements.
func NewOutputIDs(ids ...OutputID) (new OutputIDs) {
	return set.NewAdvancedSet[OutputID](ids...)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region ScriptHash ///////////////////////////////////////////////////////////////////////////////////////////////////

// ScriptHashLength represents the length of a ScriptHash (amount of bytes).
const ScriptHashLength = 32

// ScriptHash is the content-addressed identifier of a Script.
type ScriptHash [ScriptHashLength]byte

// NewScriptHash returns the ScriptHash of the given serialized script body.
func NewScriptHash(scriptBytes []byte) (scriptHash ScriptHash) {
	return blake2b.Sum256(scriptBytes)
}

// Bytes returns a serialized version of the ScriptHash.
func (s ScriptHash) Bytes() (serialized []byte) {
	return s[:]
}

// Base58 returns a base58 encoded version of the ScriptHash.
func (s ScriptHash) Base58() (base58Encoded string) {
	return base58.Encode(s[:])
}

// String returns a human-readable version of the ScriptHash.
func (s ScriptHash) String() (humanReadable string) {
	return "ScriptHash(" + s.Base58() + ")"
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region DatumHash ////////////////////////////////////////////////////////////////////////////////////////////////////

// DatumHashLength represents the length of a DatumHash (amount of bytes).
const DatumHashLength = 32

// DatumHash is the content-addressed handle of a piece of attached data. The ledger treats the encoded datum as
// opaque bytes and only ever compares handles.
type DatumHash [DatumHashLength]byte

// NewDatumHash returns the DatumHash of the given encoded datum.
func NewDatumHash(datumBytes []byte) (datumHash DatumHash) {
	return blake2b.Sum256(datumBytes)
}

// Bytes returns a serialized version of the DatumHash.
func (d DatumHash) Bytes() (serialized []byte) {
	return d[:]
}

// Base58 returns a base58 encoded version of the DatumHash.
func (d DatumHash) Base58() (base58Encoded string) {
	return base58.Encode(d[:])
}

// String returns a human-readable version of the DatumHash.
func (d DatumHash) String() (humanReadable string) {
	return "DatumHash(" + d.Base58() + ")"
}

// EmptyDatumHash contains the null-value of the DatumHash type (no datum attached).
var EmptyDatumHash DatumHash

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Slot / SlotWindow ////////////////////////////////////////////////////////////////////////////////////////////

// Slot is a discrete simulated time unit. Slots only ever advance through explicit wait operations.
type Slot int64

// SlotWindow is the validity interval of a Transaction, denominated in slots. A zero MaxSlot means "unbounded".
type SlotWindow struct {
	MinSlot Slot
	MaxSlot Slot
}

// Contains returns true if the given slot lies within the window.
func (s SlotWindow) Contains(slot Slot) (contains bool) {
	if slot < s.MinSlot {
		return false
	}
	if s.MaxSlot != 0 && slot > s.MaxSlot {
		return false
	}

	return true
}

// Intersect returns the intersection of two SlotWindows (used when combining Draft fragments).
func (s SlotWindow) Intersect(other SlotWindow) (intersection SlotWindow) {
	intersection.MinSlot = s.MinSlot
	if other.MinSlot > intersection.MinSlot {
		intersection.MinSlot = other.MinSlot
	}

	intersection.MaxSlot = s.MaxSlot
	if other.MaxSlot != 0 && (intersection.MaxSlot == 0 || other.MaxSlot < intersection.MaxSlot) {
		intersection.MaxSlot = other.MaxSlot
	}

	return intersection
}

// Bytes returns a serialized version of the SlotWindow.
func (s SlotWindow) Bytes() (serialized []byte) {
	return marshalutil.New(2 * marshalutil.Int64Size).
		WriteInt64(int64(s.MinSlot)).
		WriteInt64(int64(s.MaxSlot)).
		Bytes()
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
