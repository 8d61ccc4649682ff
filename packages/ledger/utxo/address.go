package utxo

import (
	"bytes"

	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

// region AddressType //////////////////////////////////////////////////////////////////////////////////////////////////

// AddressType represents the type of an Address.
type AddressType byte

const (
	// ED25519AddressType represents an Address that is secured by an ED25519 key pair.
	ED25519AddressType AddressType = iota

	// ScriptAddressType represents an Address whose outputs are locked by a Script.
	ScriptAddressType
)

// String returns a human-readable version of the AddressType.
func (a AddressType) String() (humanReadable string) {
	return [...]string{
		"ED25519AddressType",
		"ScriptAddressType",
	}[a]
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Address //////////////////////////////////////////////////////////////////////////////////////////////////////

// AddressDigestLength represents the length of an Address digest (amount of bytes).
const AddressDigestLength = 32

// Address is the spendable location that an Output belongs to. Key addresses hold the blake2b-256 digest of the
// owner's public key, script addresses hold the hash of the locking Script.
type Address struct {
	addressType AddressType
	digest      [AddressDigestLength]byte
}

// NewED25519Address creates a new key-secured Address for the given public key.
func NewED25519Address(publicKey ed25519.PublicKey) (address Address) {
	return Address{
		addressType: ED25519AddressType,
		digest:      blake2b.Sum256(publicKey[:]),
	}
}

// NewScriptAddress creates a new script-secured Address for the given ScriptHash.
func NewScriptAddress(scriptHash ScriptHash) (address Address) {
	return Address{
		addressType: ScriptAddressType,
		digest:      scriptHash,
	}
}

// Type returns the AddressType of the Address.
func (a Address) Type() (addressType AddressType) {
	return a.addressType
}

// Digest returns the hashed key material of the Address.
func (a Address) Digest() (digest [AddressDigestLength]byte) {
	return a.digest
}

// ScriptHash returns the hash of the locking Script of a script-secured Address.
func (a Address) ScriptHash() (scriptHash ScriptHash) {
	return a.digest
}

// CorrespondsTo returns true if the Address is the key address that is derived from the given public key.
func (a Address) CorrespondsTo(publicKey ed25519.PublicKey) (corresponds bool) {
	if a.addressType != ED25519AddressType {
		return false
	}
	digest := blake2b.Sum256(publicKey[:])

	return bytes.Equal(a.digest[:], digest[:])
}

// Equals returns true if the two Addresses are identical.
func (a Address) Equals(other Address) (equal bool) {
	return a.addressType == other.addressType && a.digest == other.digest
}

// Bytes returns a serialized version of the Address.
func (a Address) Bytes() (serialized []byte) {
	return marshalutil.New(1 + AddressDigestLength).
		WriteByte(byte(a.addressType)).
		WriteBytes(a.digest[:]).
		Bytes()
}

// Base58 returns a base58 encoded version of the Address.
func (a Address) Base58() (base58Encoded string) {
	return base58.Encode(a.Bytes())
}

// String returns a human-readable version of the Address.
func (a Address) String() (humanReadable string) {
	return a.addressType.String() + "(" + a.Base58() + ")"
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
