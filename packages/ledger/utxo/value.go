package utxo

import (
	"bytes"
	"sort"

	"github.com/iotaledger/hive.go/generics/orderedmap"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
	"github.com/mr-tron/base58"
)

// region AssetID //////////////////////////////////////////////////////////////////////////////////////////////////////

// AssetIDLength represents the length of an AssetID (amount of bytes).
const AssetIDLength = 32

// AssetID is the identifier of an asset class held by a Value. The zero value identifies the plain settlement token.
// Minted asset classes carry the hash of their minting policy script, which ties every non-base asset to exactly one
// authorizing script.
type AssetID [AssetIDLength]byte

// BaseAssetID is the zero value of the AssetID type and identifies the plain settlement token.
var BaseAssetID AssetID

// NewAssetID returns the AssetID that corresponds to the given ScriptHash of a minting policy.
func NewAssetID(policyHash ScriptHash) (assetID AssetID) {
	copy(assetID[:], policyHash[:])
	return assetID
}

// Bytes returns a serialized version of the AssetID.
func (a AssetID) Bytes() (serialized []byte) {
	return a[:]
}

// Base58 returns a base58 encoded version of the AssetID.
func (a AssetID) Base58() (base58Encoded string) {
	return base58.Encode(a[:])
}

// String returns a human-readable version of the AssetID.
func (a AssetID) String() (humanReadable string) {
	if a == BaseAssetID {
		return "BASE"
	}

	return "AssetID(" + a.Base58() + ")"
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Value ////////////////////////////////////////////////////////////////////////////////////////////////////////

// Value is a commutative-monoid quantity over AssetIDs. Balances are signed so the same type serves both settled
// output values (which must be non-negative) and balance deltas used by assertions. Zero balances are never stored.
type Value struct {
	balances *orderedmap.OrderedMap[AssetID, int64]
}

// NewValue creates a Value from the given balances (entries with a zero amount are dropped).
func NewValue(balances map[AssetID]int64) (value *Value) {
	value = &Value{balances: orderedmap.New[AssetID, int64]()}

	assetIDs := make([]AssetID, 0, len(balances))
	for assetID := range balances {
		assetIDs = append(assetIDs, assetID)
	}
	sort.Slice(assetIDs, func(i, j int) bool {
		return bytes.Compare(assetIDs[i][:], assetIDs[j][:]) < 0
	})

	for _, assetID := range assetIDs {
		if balance := balances[assetID]; balance != 0 {
			value.balances.Set(assetID, balance)
		}
	}

	return value
}

// NewBaseValue creates a Value that holds the given amount of the plain settlement token.
func NewBaseValue(amount int64) (value *Value) {
	return NewValue(map[AssetID]int64{BaseAssetID: amount})
}

// NewEmptyValue creates the identity element of the Value monoid.
func NewEmptyValue() (value *Value) {
	return &Value{balances: orderedmap.New[AssetID, int64]()}
}

// Get returns the balance of the given asset (zero if the asset is absent).
func (v *Value) Get(assetID AssetID) (balance int64) {
	balance, _ = v.balances.Get(assetID)
	return balance
}

// ForEach calls the callback for each asset/balance pair and aborts the iteration when it returns false.
func (v *Value) ForEach(callback func(assetID AssetID, balance int64) bool) {
	v.balances.ForEach(callback)
}

// Size returns the number of asset classes with a non-zero balance.
func (v *Value) Size() (size int) {
	return v.balances.Size()
}

// Add returns a new Value that holds the sum of the receiver and the given Value.
func (v *Value) Add(other *Value) (result *Value) {
	summed := v.toMap()
	other.ForEach(func(assetID AssetID, balance int64) bool {
		summed[assetID] += balance
		return true
	})

	return NewValue(summed)
}

// Negate returns a new Value with every balance negated.
func (v *Value) Negate() (result *Value) {
	negated := make(map[AssetID]int64)
	v.ForEach(func(assetID AssetID, balance int64) bool {
		negated[assetID] = -balance
		return true
	})

	return NewValue(negated)
}

// Sub returns a new Value that holds the difference between the receiver and the given Value.
func (v *Value) Sub(other *Value) (result *Value) {
	return v.Add(other.Negate())
}

// NonNegativePart returns a new Value that only contains the positive balances of the receiver. It is the clipping
// operation used by coin selection to track the still-outstanding target.
func (v *Value) NonNegativePart() (result *Value) {
	clipped := make(map[AssetID]int64)
	v.ForEach(func(assetID AssetID, balance int64) bool {
		if balance > 0 {
			clipped[assetID] = balance
		}
		return true
	})

	return NewValue(clipped)
}

// IsZero returns true if the Value holds no non-zero balance.
func (v *Value) IsZero() (isZero bool) {
	return v.balances.Size() == 0
}

// IsNonNegative returns true if every stored balance is positive (settled output values must satisfy this).
func (v *Value) IsNonNegative() (nonNegative bool) {
	nonNegative = true
	v.ForEach(func(_ AssetID, balance int64) bool {
		nonNegative = balance > 0
		return nonNegative
	})

	return nonNegative
}

// LessOrEqual implements the partial order of the Value monoid: it returns true if every balance of the receiver is
// smaller than or equal to the corresponding balance of the given Value.
func (v *Value) LessOrEqual(other *Value) (lessOrEqual bool) {
	return v.Sub(other).NonNegativePart().IsZero()
}

// Equal returns true if the receiver holds exactly the same balances as the given Value.
func (v *Value) Equal(other *Value) (equal bool) {
	return v.Sub(other).IsZero()
}

// Clone returns a copy of the Value.
func (v *Value) Clone() (cloned *Value) {
	return NewValue(v.toMap())
}

// Bytes returns a canonical serialization of the Value (assets sorted lexicographically) so that identical Values
// always hash identically.
func (v *Value) Bytes() (serialized []byte) {
	assetIDs := make([]AssetID, 0, v.balances.Size())
	v.ForEach(func(assetID AssetID, _ int64) bool {
		assetIDs = append(assetIDs, assetID)
		return true
	})
	sort.Slice(assetIDs, func(i, j int) bool {
		return bytes.Compare(assetIDs[i][:], assetIDs[j][:]) < 0
	})

	marshalUtil := marshalutil.New()
	marshalUtil.WriteUint32(uint32(len(assetIDs)))
	for _, assetID := range assetIDs {
		marshalUtil.WriteBytes(assetID.Bytes())
		marshalUtil.WriteInt64(v.Get(assetID))
	}

	return marshalUtil.Bytes()
}

// String returns a human-readable version of the Value.
func (v *Value) String() (humanReadable string) {
	structBuilder := stringify.StructBuilder("Value")
	v.ForEach(func(assetID AssetID, balance int64) bool {
		structBuilder.AddField(stringify.StructField(assetID.String(), balance))
		return true
	})

	return structBuilder.String()
}

// toMap returns the balances of the Value as a plain map.
func (v *Value) toMap() (balances map[AssetID]int64) {
	balances = make(map[AssetID]int64)
	v.ForEach(func(assetID AssetID, balance int64) bool {
		balances[assetID] = balance
		return true
	})

	return balances
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
