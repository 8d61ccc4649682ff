// Package scripts provides ready-made Script implementations for common test scenarios: unconditional outcomes,
// hash-locked spends and one-shot minting policies. They double as examples for writing custom validators against
// the utxo.Script interface.
package scripts

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/marshalutil"
	"golang.org/x/crypto/blake2b"

	"github.com/simledger/simledger/packages/ledger/utxo"
)

// script type tags keep the hashes of different script families disjoint even when their parameters collide.
const (
	alwaysSucceedTag byte = iota
	alwaysFailTag
	hashLockTag
	oneShotPolicyTag
)

// region AlwaysSucceed ////////////////////////////////////////////////////////////////////////////////////////////////

// AlwaysSucceed is a Script that authorizes everything. It is useful as a stand-in when a scenario only exercises
// the accounting rules.
type AlwaysSucceed struct{}

// Hash returns the content-addressed identifier of the Script.
func (a AlwaysSucceed) Hash() (scriptHash utxo.ScriptHash) {
	return utxo.NewScriptHash([]byte{alwaysSucceedTag})
}

// Evaluate always authorizes.
func (a AlwaysSucceed) Evaluate(_ *utxo.ScriptContext) (err error) {
	return nil
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region AlwaysFail ///////////////////////////////////////////////////////////////////////////////////////////////////

// ErrScriptRefused is the error that AlwaysFail rejects with.
var ErrScriptRefused = errors.New("script refused")

// AlwaysFail is a Script that rejects everything. Funds locked at its address are unspendable.
type AlwaysFail struct{}

// Hash returns the content-addressed identifier of the Script.
func (a AlwaysFail) Hash() (scriptHash utxo.ScriptHash) {
	return utxo.NewScriptHash([]byte{alwaysFailTag})
}

// Evaluate always rejects.
func (a AlwaysFail) Evaluate(_ *utxo.ScriptContext) (err error) {
	return ErrScriptRefused
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region HashLock /////////////////////////////////////////////////////////////////////////////////////////////////////

// HashLock is a Script that authorizes a spend if the redeemer's blake2b digest matches the configured image. The
// expected digest is typically carried in the consumed output's datum when it varies per output.
type HashLock struct {
	// Image is the blake2b digest that the redeemer must hash to.
	Image [32]byte
}

// NewHashLock creates a HashLock guarding the given secret.
func NewHashLock(secret []byte) (script *HashLock) {
	return &HashLock{
		Image: blake2b.Sum256(secret),
	}
}

// Hash returns the content-addressed identifier of the Script.
func (h *HashLock) Hash() (scriptHash utxo.ScriptHash) {
	return utxo.NewScriptHash(marshalutil.New().
		WriteByte(hashLockTag).
		WriteBytes(h.Image[:]).
		Bytes())
}

// Evaluate authorizes if the supplied redeemer hashes to the configured image.
func (h *HashLock) Evaluate(context *utxo.ScriptContext) (err error) {
	if digest := blake2b.Sum256(context.Redeemer); !bytes.Equal(digest[:], h.Image[:]) {
		return errors.New("redeemer does not match the hash lock")
	}

	return nil
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region OneShotPolicy ////////////////////////////////////////////////////////////////////////////////////////////////

// OneShotPolicy is a minting policy that authorizes exactly one mint: the transaction must consume the configured
// output. Since output identifiers are never reused the policy can never be satisfied a second time, which makes
// the asset supply final. Burns are always allowed.
type OneShotPolicy struct {
	// MustConsume is the output whose consumption authorizes the mint.
	MustConsume utxo.OutputID
}

// NewOneShotPolicy creates a OneShotPolicy bound to the given output.
func NewOneShotPolicy(mustConsume utxo.OutputID) (script *OneShotPolicy) {
	return &OneShotPolicy{
		MustConsume: mustConsume,
	}
}

// Hash returns the content-addressed identifier of the Script.
func (o *OneShotPolicy) Hash() (scriptHash utxo.ScriptHash) {
	return utxo.NewScriptHash(marshalutil.New().
		WriteByte(oneShotPolicyTag).
		WriteBytes(o.MustConsume.Bytes()).
		Bytes())
}

// Evaluate authorizes a mint if the transaction consumes the bound output, and any burn.
func (o *OneShotPolicy) Evaluate(context *utxo.ScriptContext) (err error) {
	if context.Purpose == utxo.MintPurpose && context.MintedAmount() < 0 {
		return nil
	}

	if !context.ConsumesOutput(o.MustConsume) {
		return errors.Errorf("transaction does not consume %s", o.MustConsume)
	}

	return nil
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
