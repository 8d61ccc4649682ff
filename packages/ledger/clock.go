package ledger

import (
	"time"

	"go.uber.org/atomic"

	"github.com/simledger/simledger/packages/ledger/utxo"
)

// region Clock ////////////////////////////////////////////////////////////////////////////////////////////////////////

// Clock is a deterministic slot counter. It starts at slot 0 and only ever moves forward when the owner of the
// Ledger explicitly advances it, which makes time-dependent validation reproducible across runs.
type Clock struct {
	slot         atomic.Int64
	genesisTime  time.Time
	slotDuration time.Duration
}

// newClock creates a Clock anchored at the given genesis time.
func newClock(genesisTime time.Time, slotDuration time.Duration) (new *Clock) {
	return &Clock{
		genesisTime:  genesisTime,
		slotDuration: slotDuration,
	}
}

// CurrentSlot returns the current slot.
func (c *Clock) CurrentSlot() (currentSlot utxo.Slot) {
	return utxo.Slot(c.slot.Load())
}

// SlotTime translates a slot into the wall-clock time it corresponds to.
func (c *Clock) SlotTime(slot utxo.Slot) (slotTime time.Time) {
	return c.genesisTime.Add(time.Duration(slot) * c.slotDuration)
}

// AdvanceSlots moves the clock forward by the given number of slots and returns the new current slot.
func (c *Clock) AdvanceSlots(count int64) (currentSlot utxo.Slot, err error) {
	if count < 0 {
		return c.CurrentSlot(), ErrInvalidSlotCount
	}

	return utxo.Slot(c.slot.Add(count)), nil
}

// restore resets the clock to the given slot (used by snapshot restores).
func (c *Clock) restore(slot utxo.Slot) {
	c.slot.Store(int64(slot))
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
