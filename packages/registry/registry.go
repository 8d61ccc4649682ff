package registry

import (
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/iotaledger/hive.go/generics/orderedmap"
	"github.com/iotaledger/hive.go/stringify"
	"go.uber.org/atomic"

	"github.com/simledger/simledger/packages/ledger/utxo"
)

// region Identity /////////////////////////////////////////////////////////////////////////////////////////////////////

// Identity is a named keypair with the address derived from its public key. It implements utxo.Signer and can
// therefore be handed straight to the transaction builder.
type Identity struct {
	name    string
	keyPair ed25519.KeyPair
	address utxo.Address
}

// newIdentity generates a fresh keypair under the given name.
func newIdentity(name string) (identity *Identity) {
	keyPair := ed25519.GenerateKeyPair()

	return &Identity{
		name:    name,
		keyPair: keyPair,
		address: utxo.NewED25519Address(keyPair.PublicKey),
	}
}

// Name returns the unique name of the Identity.
func (i *Identity) Name() (name string) {
	return i.name
}

// Address returns the Address owned by the Identity.
func (i *Identity) Address() (address utxo.Address) {
	return i.address
}

// PublicKey returns the public key of the Identity.
func (i *Identity) PublicKey() (publicKey ed25519.PublicKey) {
	return i.keyPair.PublicKey
}

// Sign signs the given data with the Identity's private key.
func (i *Identity) Sign(data []byte) (signature ed25519.Signature) {
	return i.keyPair.PrivateKey.Sign(data)
}

// String returns a human-readable version of the Identity.
func (i *Identity) String() (humanReadable string) {
	return stringify.Struct("Identity",
		stringify.StructField("name", i.name),
		stringify.StructField("address", i.address),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Registry /////////////////////////////////////////////////////////////////////////////////////////////////////

// AdminName is the reserved name of the administrative identity.
const AdminName = "admin"

// ErrDuplicateName is returned when an identity is requested under a name that is already taken.
var ErrDuplicateName = errors.New("identity name already taken")

// Registry keeps track of every identity created during a simulation. User names are allocated from a monotonic
// counter and never recycled, so a name observed in a report always refers to the same keypair for the lifetime of
// the Registry.
type Registry struct {
	identities *orderedmap.OrderedMap[string, *Identity]
	userCount  atomic.Uint64
}

// New creates an empty Registry.
func New() (registry *Registry) {
	return &Registry{
		identities: orderedmap.New[string, *Identity](),
	}
}

// CreateAdmin creates the administrative identity. It can only be created once.
func (r *Registry) CreateAdmin() (identity *Identity, err error) {
	return r.CreateNamedIdentity(AdminName)
}

// CreateIdentity creates a fresh identity under the next free "user-N" name.
func (r *Registry) CreateIdentity() (identity *Identity) {
	identity = newIdentity("user-" + strconv.FormatUint(r.userCount.Inc(), 10))
	r.identities.Set(identity.Name(), identity)

	return identity
}

// CreateNamedIdentity creates a fresh identity under an explicit name.
func (r *Registry) CreateNamedIdentity(name string) (identity *Identity, err error) {
	if _, exists := r.identities.Get(name); exists {
		return nil, errors.Errorf("failed to create identity %q: %w", name, ErrDuplicateName)
	}

	identity = newIdentity(name)
	r.identities.Set(name, identity)

	return identity, nil
}

// Identity returns the identity registered under the given name.
func (r *Registry) Identity(name string) (identity *Identity, exists bool) {
	return r.identities.Get(name)
}

// IdentityByAddress returns the identity that owns the given address.
func (r *Registry) IdentityByAddress(address utxo.Address) (identity *Identity, exists bool) {
	r.identities.ForEach(func(_ string, candidate *Identity) bool {
		if candidate.Address().Equals(address) {
			identity = candidate
			exists = true

			return false
		}

		return true
	})

	return identity, exists
}

// ForEach iterates through the registered identities in creation order.
func (r *Registry) ForEach(callback func(identity *Identity) bool) {
	r.identities.ForEach(func(_ string, identity *Identity) bool {
		return callback(identity)
	})
}

// Size returns the number of registered identities.
func (r *Registry) Size() (size int) {
	return r.identities.Size()
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
