package ledger

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrInsufficientFunds is returned when coin selection cannot cover the requested target from the owner's
	// available outputs.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrConservation is returned when a transaction does not preserve value (inputs + minted != outputs + fee).
	ErrConservation = errors.New("value not conserved")

	// ErrMissingOrSpentInput is returned when a referenced output is absent from the UTXO set. It is also how
	// double spends and coin-selection races surface at commit time.
	ErrMissingOrSpentInput = errors.New("input missing or already spent")

	// ErrReplayedTransaction is returned when a transaction with an already committed TransactionID is submitted
	// again. Re-booking the same transaction would reuse its OutputIDs.
	ErrReplayedTransaction = errors.New("transaction already committed")

	// ErrAuthorization is returned when a signature check or a script evaluation rejects a spend or a mint.
	ErrAuthorization = errors.New("spend not authorized")

	// ErrTimeValidity is returned when the current slot lies outside the transaction's validity window.
	ErrTimeValidity = errors.New("outside validity window")

	// ErrAssertionFailed is returned for balance-diff mismatches and unmet must-fail expectations.
	ErrAssertionFailed = errors.New("assertion failed")

	// ErrLimitExceeded is returned when a transaction exceeds a configured resource limit and strict limits are
	// enabled (otherwise the violation is only logged as a warning).
	ErrLimitExceeded = errors.New("resource limit exceeded")

	// ErrInvalidSlotCount is returned when a wait operation is asked to advance by a negative number of slots.
	ErrInvalidSlotCount = errors.New("slot count must be non-negative")
)
