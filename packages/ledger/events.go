package ledger

import (
	"github.com/iotaledger/hive.go/events"
	"github.com/iotaledger/hive.go/stringify"

	"github.com/simledger/simledger/packages/ledger/utxo"
)

// region LogEntry /////////////////////////////////////////////////////////////////////////////////////////////////////

// EntryKind tags the different kinds of events that the ledger records.
type EntryKind byte

const (
	// TransactionAcceptedEntry records a successfully committed transaction.
	TransactionAcceptedEntry EntryKind = iota

	// TransactionRejectedEntry records a rejected transaction together with its rejection reason.
	TransactionRejectedEntry

	// SlotAdvancedEntry records an explicit wait operation.
	SlotAdvancedEntry

	// AssertionFailedEntry records a balance-diff mismatch or an unmet must-fail expectation.
	AssertionFailedEntry
)

// String returns a human-readable version of the EntryKind.
func (e EntryKind) String() (humanReadable string) {
	return [...]string{
		"TransactionAccepted",
		"TransactionRejected",
		"SlotAdvanced",
		"AssertionFailed",
	}[e]
}

// LogEntry is a single, immutable record in the ledger's append-only event log.
type LogEntry struct {
	// Kind tags the entry.
	Kind EntryKind

	// Slot is the ledger's slot at the time the entry was appended.
	Slot utxo.Slot

	// TransactionID identifies the transaction the entry is about (zero for slot advances and assertions).
	TransactionID utxo.TransactionID

	// Reason carries the rejection or assertion error (nil for accepted transactions and slot advances).
	Reason error

	// Message carries free-form context for human-readable reports.
	Message string
}

// IsFailure returns true if the entry records a failure condition.
func (l *LogEntry) IsFailure() (isFailure bool) {
	return l.Kind == TransactionRejectedEntry || l.Kind == AssertionFailedEntry
}

// String returns a human-readable version of the LogEntry.
func (l *LogEntry) String() (humanReadable string) {
	return stringify.Struct("LogEntry",
		stringify.StructField("kind", l.Kind),
		stringify.StructField("slot", int64(l.Slot)),
		stringify.StructField("message", l.Message),
	)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region EventLog /////////////////////////////////////////////////////////////////////////////////////////////////////

// EventLog is the ordered, append-only sequence of simulation events. Entries are never mutated in place; reporting
// and test assertions read it through the accessors.
type EventLog struct {
	entries []*LogEntry
}

// newEventLog creates an empty EventLog.
func newEventLog() (new *EventLog) {
	return &EventLog{
		entries: make([]*LogEntry, 0),
	}
}

// append adds an entry at the end of the log.
func (e *EventLog) append(entry *LogEntry) {
	e.entries = append(e.entries, entry)
}

// Entries returns a copy of the log's entries in append order.
func (e *EventLog) Entries() (entries []*LogEntry) {
	entries = make([]*LogEntry, len(e.entries))
	copy(entries, e.entries)

	return entries
}

// Failures returns the subset of entries that record failures, in append order.
func (e *EventLog) Failures() (failures []*LogEntry) {
	failures = make([]*LogEntry, 0)
	for _, entry := range e.entries {
		if entry.IsFailure() {
			failures = append(failures, entry)
		}
	}

	return failures
}

// FailureCount returns the number of failure entries in the log.
func (e *EventLog) FailureCount() (count int) {
	for _, entry := range e.entries {
		if entry.IsFailure() {
			count++
		}
	}

	return count
}

// Size returns the number of entries in the log.
func (e *EventLog) Size() (size int) {
	return len(e.entries)
}

// truncate discards every entry past the given length (used by snapshot restores).
func (e *EventLog) truncate(length int) {
	if length < len(e.entries) {
		e.entries = e.entries[:length]
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Events ///////////////////////////////////////////////////////////////////////////////////////////////////////

// Events is a container for all of the Ledger related events.
type Events struct {
	// TransactionAccepted gets triggered when a transaction was validated and committed.
	TransactionAccepted *events.Event

	// TransactionRejected gets triggered when a transaction was rejected.
	TransactionRejected *events.Event

	// SlotAdvanced gets triggered when the clock advances.
	SlotAdvanced *events.Event

	// AssertionFailed gets triggered when a balance check or a must-fail expectation is violated.
	AssertionFailed *events.Event
}

// NewEvents creates a container for all of the Ledger related events.
func NewEvents() (new *Events) {
	return &Events{
		TransactionAccepted: events.NewEvent(transactionIDEventCaller),
		TransactionRejected: events.NewEvent(logEntryEventCaller),
		SlotAdvanced:        events.NewEvent(slotEventCaller),
		AssertionFailed:     events.NewEvent(logEntryEventCaller),
	}
}

func transactionIDEventCaller(handler interface{}, params ...interface{}) {
	handler.(func(utxo.TransactionID))(params[0].(utxo.TransactionID))
}

func logEntryEventCaller(handler interface{}, params ...interface{}) {
	handler.(func(*LogEntry))(params[0].(*LogEntry))
}

func slotEventCaller(handler interface{}, params ...interface{}) {
	handler.(func(utxo.Slot))(params[0].(utxo.Slot))
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
