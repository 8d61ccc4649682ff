package utxo

import (
	"sync"

	"github.com/iotaledger/hive.go/generics/orderedmap"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/iotaledger/hive.go/stringify"
)

// region Output ///////////////////////////////////////////////////////////////////////////////////////////////////////

// Output is a single unspent transaction output: an amount of Value that belongs to an Address, optionally carrying
// the handle of an attached datum. Outputs are owned exclusively by the ledger's UTXO set; in-flight transactions
// reference them but never duplicate them.
type Output struct {
	id        OutputID
	idMutex   sync.RWMutex
	address   Address
	balances  *Value
	datumHash DatumHash
}

// NewOutput creates an Output that locks the given balances at the given Address.
func NewOutput(address Address, balances *Value) (output *Output) {
	return &Output{
		address:  address,
		balances: balances.Clone(),
	}
}

// NewOutputWithDatum creates an Output that additionally carries the handle of an attached datum.
func NewOutputWithDatum(address Address, balances *Value, datumHash DatumHash) (output *Output) {
	output = NewOutput(address, balances)
	output.datumHash = datumHash

	return output
}

// ID returns the identifier of the Output. It is the zero value until the Output was committed by a transaction.
func (o *Output) ID() (id OutputID) {
	o.idMutex.RLock()
	defer o.idMutex.RUnlock()

	return o.id
}

// SetID assigns the identifier of the Output. It is called exactly once, by the ledger's commit step.
func (o *Output) SetID(id OutputID) {
	o.idMutex.Lock()
	defer o.idMutex.Unlock()

	o.id = id
}

// Address returns the Address that the Output belongs to.
func (o *Output) Address() (address Address) {
	return o.address
}

// Balances returns the Value held by the Output.
func (o *Output) Balances() (balances *Value) {
	return o.balances
}

// DatumHash returns the handle of the attached datum (EmptyDatumHash if none is attached).
func (o *Output) DatumHash() (datumHash DatumHash) {
	return o.datumHash
}

// Clone returns a copy of the Output.
func (o *Output) Clone() (cloned *Output) {
	cloned = NewOutputWithDatum(o.address, o.balances, o.datumHash)
	cloned.id = o.ID()

	return cloned
}

// Bytes returns a serialized version of the Output (without its identifier, which is derived at commit time).
func (o *Output) Bytes() (serialized []byte) {
	return marshalutil.New().
		WriteBytes(o.address.Bytes()).
		WriteBytes(o.balances.Bytes()).
		WriteBytes(o.datumHash.Bytes()).
		Bytes()
}

// String returns a human-readable version of the Output.
func (o *Output) String() (humanReadable string) {
	return stringify.Struct("Output",
		stringify.StructField("id", o.ID()),
		stringify.StructField("address", o.address),
		stringify.StructField("balances", o.balances),
		stringify.StructField("datumHash", o.datumHash),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Outputs //////////////////////////////////////////////////////////////////////////////////////////////////////

// Outputs represents a collection of Output objects indexed by their OutputID.
type Outputs struct {
	*orderedmap.OrderedMap[OutputID, *Output]
}

// NewOutputs returns a new Output collection with the given elements.
func NewOutputs(outputs ...*Output) (new Outputs) {
	new = Outputs{orderedmap.New[OutputID, *Output]()}
	for _, output := range outputs {
		new.Set(output.ID(), output)
	}

	return new
}

// Add adds the given Output to the collection.
func (o Outputs) Add(output *Output) {
	o.Set(output.ID(), output)
}

// IDs returns the identifiers of the stored Outputs.
func (o Outputs) IDs() (ids OutputIDs) {
	outputIDs := make([]OutputID, 0)
	o.OrderedMap.ForEach(func(id OutputID, _ *Output) bool {
		outputIDs = append(outputIDs, id)
		return true
	})

	return NewOutputIDs(outputIDs...)
}

// TotalBalances returns the aggregate Value held by all Outputs in the collection.
func (o Outputs) TotalBalances() (total *Value) {
	total = NewEmptyValue()
	o.OrderedMap.ForEach(func(_ OutputID, output *Output) bool {
		total = total.Add(output.Balances())
		return true
	})

	return total
}

// String returns a human-readable version of the Outputs.
func (o Outputs) String() (humanReadable string) {
	structBuilder := stringify.StructBuilder("Outputs")
	o.OrderedMap.ForEach(func(id OutputID, output *Output) bool {
		structBuilder.AddField(stringify.StructField(id.String(), output))
		return true
	})

	return structBuilder.String()
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
