package utxo

import (
	"github.com/iotaledger/hive.go/crypto/ed25519"
)

// region Signer ///////////////////////////////////////////////////////////////////////////////////////////////////////

// Signer is the capability to produce spend-authorization signatures for key-secured Outputs. The registry's
// identities implement it; the ledger itself only ever verifies.
type Signer interface {
	// PublicKey returns the public key whose hash is the Signer's Address digest.
	PublicKey() (publicKey ed25519.PublicKey)

	// Sign signs the given data with the Signer's private key.
	Sign(data []byte) (signature ed25519.Signature)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
