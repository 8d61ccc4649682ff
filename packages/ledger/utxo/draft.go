package utxo

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/generics/orderedmap"
	"github.com/iotaledger/hive.go/stringify"
)

// region SpendWitness /////////////////////////////////////////////////////////////////////////////////////////////////

// SpendWitness carries the Script and redeemer that unlock one script-secured input of a Draft.
type SpendWitness struct {
	script   Script
	redeemer []byte
}

// NewSpendWitness creates a SpendWitness from the given Script and redeemer.
func NewSpendWitness(script Script, redeemer []byte) (witness *SpendWitness) {
	return &SpendWitness{
		script:   script,
		redeemer: redeemer,
	}
}

// Script returns the unlocking Script of the witness.
func (s *SpendWitness) Script() (script Script) {
	return s.script
}

// Redeemer returns the redeemer bytes of the witness.
func (s *SpendWitness) Redeemer() (redeemer []byte) {
	return s.redeemer
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Draft ////////////////////////////////////////////////////////////////////////////////////////////////////////

// ErrDraftConflict is returned when two Draft fragments cannot be combined because their fields overlap in an
// incompatible way (duplicate inputs or contradicting witnesses).
var ErrDraftConflict = errors.New("conflicting draft fragments")

// Draft is an unvalidated, composable transaction fragment. Drafts form a commutative monoid: NewDraft is the
// identity element and Combine merges disjoint fields (inputs, outputs), adds the Value-typed fields (mint, fee),
// intersects the validity window and unions the witness tables. A Draft is turned into a submittable Transaction by
// the utxoutil builder.
type Draft struct {
	inputs         Inputs
	spendWitnesses *orderedmap.OrderedMap[OutputID, *SpendWitness]
	outputs        []*Output
	mint           *Value
	fee            int64
	validity       SlotWindow
	datums         *orderedmap.OrderedMap[DatumHash, []byte]
	mintWitnesses  *orderedmap.OrderedMap[AssetID, *MintWitness]
}

// NewDraft creates the empty Draft (the identity element of the Combine operation).
func NewDraft() (draft *Draft) {
	return &Draft{
		inputs:         make(Inputs, 0),
		spendWitnesses: orderedmap.New[OutputID, *SpendWitness](),
		outputs:        make([]*Output, 0),
		mint:           NewEmptyValue(),
		datums:         orderedmap.New[DatumHash, []byte](),
		mintWitnesses:  orderedmap.New[AssetID, *MintWitness](),
	}
}

// Combine merges the receiver with the given Draft fragments into a new Draft. It never mutates its operands and
// returns ErrDraftConflict if two fragments consume the same input or carry contradicting witnesses.
func (d *Draft) Combine(fragments ...*Draft) (combined *Draft, err error) {
	combined = d.clone()
	for _, fragment := range fragments {
		if err = combined.merge(fragment); err != nil {
			return nil, err
		}
	}

	return combined, nil
}

// Inputs returns the Inputs consumed by the Draft.
func (d *Draft) Inputs() (inputs Inputs) {
	return d.inputs
}

// SpendWitness returns the witness that unlocks the given script-secured input.
func (d *Draft) SpendWitness(outputID OutputID) (witness *SpendWitness, exists bool) {
	return d.spendWitnesses.Get(outputID)
}

// Outputs returns the Outputs produced by the Draft.
func (d *Draft) Outputs() (outputs []*Output) {
	return d.outputs
}

// Mint returns the minted (positive) and burned (negative) balances of the Draft.
func (d *Draft) Mint() (mint *Value) {
	return d.mint
}

// Fee returns the fee declared by the Draft.
func (d *Draft) Fee() (fee int64) {
	return d.fee
}

// Validity returns the validity window of the Draft.
func (d *Draft) Validity() (validity SlotWindow) {
	return d.validity
}

// Datums returns the attached-data table of the Draft.
func (d *Draft) Datums() (datums *orderedmap.OrderedMap[DatumHash, []byte]) {
	return d.datums
}

// MintWitnesses returns the mint witness table of the Draft.
func (d *Draft) MintWitnesses() (witnesses *orderedmap.OrderedMap[AssetID, *MintWitness]) {
	return d.mintWitnesses
}

// String returns a human-readable version of the Draft.
func (d *Draft) String() (humanReadable string) {
	return stringify.Struct("Draft",
		stringify.StructField("inputs", len(d.inputs)),
		stringify.StructField("outputs", len(d.outputs)),
		stringify.StructField("mint", d.mint),
		stringify.StructField("fee", d.fee),
	)
}

// The following unexported mutators are only used by the utxoutil builder package to assemble single-field
// fragments; everything that crosses the package boundary is immutable.

// AddInput appends a consumed Output reference (with an optional script witness) to the Draft.
func (d *Draft) AddInput(input *Input, witness *SpendWitness) {
	d.inputs = append(d.inputs, input)
	if witness != nil {
		d.spendWitnesses.Set(input.ReferencedOutputID(), witness)
	}
}

// AddOutput appends a produced Output to the Draft.
func (d *Draft) AddOutput(output *Output) {
	d.outputs = append(d.outputs, output)
}

// AddMint adds minted or burned balances (and their witness, if any) to the Draft.
func (d *Draft) AddMint(assetID AssetID, amount int64, witness *MintWitness) {
	d.mint = d.mint.Add(NewValue(map[AssetID]int64{assetID: amount}))
	if witness != nil {
		d.mintWitnesses.Set(assetID, witness)
	}
}

// AddDatum stores the encoded datum under its content hash and returns the handle.
func (d *Draft) AddDatum(datumBytes []byte) (datumHash DatumHash) {
	datumHash = NewDatumHash(datumBytes)
	d.datums.Set(datumHash, datumBytes)

	return datumHash
}

// SetFee declares the fee of the Draft.
func (d *Draft) SetFee(fee int64) {
	d.fee = fee
}

// SetValidity declares the validity window of the Draft.
func (d *Draft) SetValidity(validity SlotWindow) {
	d.validity = validity
}

// clone returns a deep-enough copy of the Draft (Outputs and witnesses are shared, the containers are not).
func (d *Draft) clone() (cloned *Draft) {
	cloned = NewDraft()
	cloned.inputs = d.inputs.Clone()
	cloned.outputs = append(cloned.outputs, d.outputs...)
	cloned.mint = d.mint.Clone()
	cloned.fee = d.fee
	cloned.validity = d.validity
	d.spendWitnesses.ForEach(func(outputID OutputID, witness *SpendWitness) bool {
		cloned.spendWitnesses.Set(outputID, witness)
		return true
	})
	d.datums.ForEach(func(datumHash DatumHash, datumBytes []byte) bool {
		cloned.datums.Set(datumHash, datumBytes)
		return true
	})
	d.mintWitnesses.ForEach(func(assetID AssetID, witness *MintWitness) bool {
		cloned.mintWitnesses.Set(assetID, witness)
		return true
	})

	return cloned
}

// merge folds the given fragment into the receiver.
func (d *Draft) merge(fragment *Draft) (err error) {
	for _, input := range fragment.inputs {
		for _, existing := range d.inputs {
			if existing.ReferencedOutputID() == input.ReferencedOutputID() {
				return errors.Errorf("input %s consumed twice: %w", input.ReferencedOutputID(), ErrDraftConflict)
			}
		}
		d.inputs = append(d.inputs, input)
	}

	var conflictErr error
	fragment.spendWitnesses.ForEach(func(outputID OutputID, witness *SpendWitness) bool {
		if existing, exists := d.spendWitnesses.Get(outputID); exists && existing.Script().Hash() != witness.Script().Hash() {
			conflictErr = errors.Errorf("input %s unlocked by two different scripts: %w", outputID, ErrDraftConflict)
			return false
		}
		d.spendWitnesses.Set(outputID, witness)
		return true
	})
	if conflictErr != nil {
		return conflictErr
	}

	d.outputs = append(d.outputs, fragment.outputs...)
	d.mint = d.mint.Add(fragment.mint)
	d.fee += fragment.fee
	d.validity = d.validity.Intersect(fragment.validity)

	fragment.datums.ForEach(func(datumHash DatumHash, datumBytes []byte) bool {
		if existing, exists := d.datums.Get(datumHash); exists && !bytes.Equal(existing, datumBytes) {
			conflictErr = errors.Errorf("datum %s bound to two different payloads: %w", datumHash, ErrDraftConflict)
			return false
		}
		d.datums.Set(datumHash, datumBytes)
		return true
	})
	if conflictErr != nil {
		return conflictErr
	}

	fragment.mintWitnesses.ForEach(func(assetID AssetID, witness *MintWitness) bool {
		if existing, exists := d.mintWitnesses.Get(assetID); exists && existing.Policy().Hash() != witness.Policy().Hash() {
			conflictErr = errors.Errorf("asset %s backed by two different policies: %w", assetID, ErrDraftConflict)
			return false
		}
		d.mintWitnesses.Set(assetID, witness)
		return true
	})

	return conflictErr
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
