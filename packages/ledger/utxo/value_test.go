package utxo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	assetA = NewAssetID(NewScriptHash([]byte("policyA")))
	assetB = NewAssetID(NewScriptHash([]byte("policyB")))
)

func TestValue_Add(t *testing.T) {
	first := NewValue(map[AssetID]int64{BaseAssetID: 100, assetA: 5})
	second := NewValue(map[AssetID]int64{BaseAssetID: 50, assetB: 7})

	sum := first.Add(second)
	assert.EqualValues(t, 150, sum.Get(BaseAssetID))
	assert.EqualValues(t, 5, sum.Get(assetA))
	assert.EqualValues(t, 7, sum.Get(assetB))

	// addition is commutative
	assert.True(t, sum.Equal(second.Add(first)))

	// the empty value is the identity element
	assert.True(t, first.Equal(first.Add(NewEmptyValue())))
}

func TestValue_Sub(t *testing.T) {
	first := NewValue(map[AssetID]int64{BaseAssetID: 100})
	second := NewValue(map[AssetID]int64{BaseAssetID: 30, assetA: 5})

	difference := first.Sub(second)
	assert.EqualValues(t, 70, difference.Get(BaseAssetID))
	assert.EqualValues(t, -5, difference.Get(assetA))
	assert.False(t, difference.IsNonNegative())

	// subtracting a value from itself yields zero
	assert.True(t, first.Sub(first).IsZero())
}

func TestValue_NonNegativePart(t *testing.T) {
	mixed := NewValue(map[AssetID]int64{BaseAssetID: 100, assetA: -5, assetB: 3})

	clipped := mixed.NonNegativePart()
	assert.EqualValues(t, 100, clipped.Get(BaseAssetID))
	assert.EqualValues(t, 0, clipped.Get(assetA))
	assert.EqualValues(t, 3, clipped.Get(assetB))
	assert.True(t, clipped.IsNonNegative())
}

func TestValue_LessOrEqual(t *testing.T) {
	small := NewValue(map[AssetID]int64{BaseAssetID: 30})
	large := NewValue(map[AssetID]int64{BaseAssetID: 100, assetA: 5})
	other := NewValue(map[AssetID]int64{assetB: 1})

	assert.True(t, small.LessOrEqual(large))
	assert.False(t, large.LessOrEqual(small))

	// the order is partial: incomparable values compare false both ways
	assert.False(t, other.LessOrEqual(small))
	assert.False(t, small.LessOrEqual(other))

	assert.True(t, small.LessOrEqual(small))
}

func TestValue_ZeroBalancesAreDropped(t *testing.T) {
	value := NewValue(map[AssetID]int64{BaseAssetID: 100, assetA: 0})
	assert.Equal(t, 1, value.Size())

	// balances that cancel out disappear from the result
	canceled := value.Add(NewValue(map[AssetID]int64{BaseAssetID: -100}))
	assert.Equal(t, 0, canceled.Size())
	assert.True(t, canceled.IsZero())
	assert.True(t, canceled.Equal(NewEmptyValue()))
}

func TestValue_BytesDeterministic(t *testing.T) {
	first := NewValue(map[AssetID]int64{assetB: 7, BaseAssetID: 100, assetA: 5})
	second := NewValue(map[AssetID]int64{assetA: 5, assetB: 7, BaseAssetID: 100})

	// the serialization is canonical regardless of construction order
	assert.Equal(t, first.Bytes(), second.Bytes())
}
