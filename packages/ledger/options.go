package ledger

import (
	"time"

	"go.uber.org/zap"
)

// region Options //////////////////////////////////////////////////////////////////////////////////////////////////////

// WithGenesisTime is an Option for the Ledger that sets the wall-clock time that slot 0 maps to.
func WithGenesisTime(genesisTime time.Time) Option {
	return func(options *options) {
		options.genesisTime = genesisTime
	}
}

// WithSlotDuration is an Option for the Ledger that sets the wall-clock length of a slot.
func WithSlotDuration(slotDuration time.Duration) Option {
	return func(options *options) {
		options.slotDuration = slotDuration
	}
}

// WithMaxInputCount is an Option for the Ledger that sets the advisory limit on the number of inputs per
// transaction.
func WithMaxInputCount(maxInputCount int) Option {
	return func(options *options) {
		options.maxInputCount = maxInputCount
	}
}

// WithMaxOutputCount is an Option for the Ledger that sets the advisory limit on the number of outputs per
// transaction.
func WithMaxOutputCount(maxOutputCount int) Option {
	return func(options *options) {
		options.maxOutputCount = maxOutputCount
	}
}

// WithStrictLimits is an Option for the Ledger that escalates resource-limit violations from logged warnings to hard
// rejections.
func WithStrictLimits(strict bool) Option {
	return func(options *options) {
		options.strictLimits = strict
	}
}

// WithLogger is an Option for the Ledger that sets the logger used for debug output (a no-op logger by default).
func WithLogger(log *zap.SugaredLogger) Option {
	return func(options *options) {
		options.log = log
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Option ///////////////////////////////////////////////////////////////////////////////////////////////////////

// Option represents the return type of optional parameters that can be handed into the constructor of the Ledger to
// configure its behavior.
type Option func(*options)

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region options //////////////////////////////////////////////////////////////////////////////////////////////////////

// options is a container for all configurable parameters of a Ledger. It is immutable after construction; there is
// no runtime reconfiguration.
type options struct {
	// genesisTime contains the wall-clock time that slot 0 maps to.
	genesisTime time.Time

	// slotDuration contains the wall-clock length of a slot.
	slotDuration time.Duration

	// maxInputCount contains the advisory limit on the number of inputs per transaction.
	maxInputCount int

	// maxOutputCount contains the advisory limit on the number of outputs per transaction.
	maxOutputCount int

	// strictLimits escalates limit violations from warnings to rejections.
	strictLimits bool

	// log receives debug output of the ledger engine.
	log *zap.SugaredLogger
}

// newOptions returns a new options object that corresponds to the handed in options and which is derived from the
// default options.
func newOptions(option ...Option) (new *options) {
	clonedDefaultOptions := defaultOptions
	clonedDefaultOptions.genesisTime = time.Unix(0, 0).UTC()
	return clonedDefaultOptions.apply(option...)
}

// apply modifies the options object by overriding the handed in options.
func (o *options) apply(options ...Option) (self *options) {
	for _, option := range options {
		option(o)
	}
	return o
}

// defaultOptions contains the default configuration parameters of a Ledger.
var defaultOptions = options{
	slotDuration:   time.Second,
	maxInputCount:  127,
	maxOutputCount: 127,
	strictLimits:   false,
	log:            zap.NewNop().Sugar(),
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
