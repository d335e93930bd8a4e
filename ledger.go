package brokerage

import (
	"iter"
	"sort"

	"github.com/google/uuid"
)

// EntryID uniquely identifies a committed ledger entry.
type EntryID = uuid.UUID

// Entry is a transaction committed to the ledger, with its identity and
// arrival sequence. The sequence breaks ties between same-day entries and
// between lots acquired on the same date.
type Entry struct {
	ID  EntryID
	Seq int // arrival order, strictly increasing
	Transaction
}

// Ledger is the validated, ordered record of economic events. It is
// append-only: entries are never edited or removed, corrections are new
// reversing entries. All derived state (lots, positions, performance) is
// recomputed from it, never patched.
//
// Entries are kept in chronological order. Backdated entries are permitted;
// appending one re-sorts the ledger and downstream consumers rebuild from
// scratch, which always yields the same result for the same entry set.
type Ledger struct {
	reg     *Registry
	entries []Entry
	seq     int
}

// NewLedger creates an empty ledger validating against the given registry.
func NewLedger(reg *Registry) *Ledger {
	return &Ledger{reg: reg, entries: make([]Entry, 0)}
}

// Registry returns the reference data this ledger validates against.
func (l *Ledger) Registry() *Registry { return l.reg }

// Append validates the transaction and commits it to the ledger. On failure
// the ledger is unchanged and the error explains the rejection; a rejected
// transaction is never partially applied.
func (l *Ledger) Append(tx Transaction) (EntryID, error) {
	return l.append(uuid.New(), tx)
}

// append commits with a caller-supplied id. The codec uses it to restore
// persisted ids: lot ids derive from entry ids, so specific-lot selections
// stored in the ledger stay resolvable across reloads.
func (l *Ledger) append(id EntryID, tx Transaction) (EntryID, error) {
	validated, err := tx.Validate(l.reg)
	if err != nil {
		return EntryID{}, err
	}
	entry := Entry{ID: id, Seq: l.seq, Transaction: validated}
	l.seq++
	l.entries = append(l.entries, entry)
	l.stableSort()
	return entry.ID, nil
}

// Rejected pairs a refused transaction with its reason, for batch reporting.
type Rejected struct {
	Transaction Transaction
	Err         error
}

// AppendAll commits each transaction in turn. A failing record does not abort
// the batch: it is reported individually and the rest proceed.
func (l *Ledger) AppendAll(txs ...Transaction) (accepted []EntryID, rejected []Rejected) {
	for _, tx := range txs {
		id, err := l.Append(tx)
		if err != nil {
			rejected = append(rejected, Rejected{Transaction: tx, Err: err})
			continue
		}
		accepted = append(accepted, id)
	}
	return accepted, rejected
}

// remove drops an entry by id. Only Commit uses it, to roll back an append
// the replay refused.
func (l *Ledger) remove(id EntryID) {
	for i, e := range l.entries {
		if e.ID == id {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return
		}
	}
}

// stableSort sorts the ledger by transaction date. The sort is stable, so
// entries on the same day keep their arrival order.
func (l *Ledger) stableSort() {
	sort.SliceStable(l.entries, func(i, j int) bool {
		return l.entries[i].Date.Before(l.entries[j].Date)
	})
}

// Entries returns an iterator over committed entries in chronological order.
// Every filter must accept an entry for it to be yielded.
func (l *Ledger) Entries(filters ...func(Entry) bool) iter.Seq2[int, Entry] {
	return func(yield func(int, Entry) bool) {
		for i, e := range l.entries {
			accept := true
			for _, filter := range filters {
				if !filter(e) {
					accept = false
					break
				}
			}
			if !accept {
				continue
			}
			if !yield(i, e) {
				return
			}
		}
	}
}

// EntriesAsOf returns an iterator over entries dated on or before the given
// date, in chronological order.
func (l *Ledger) EntriesAsOf(on Date, filters ...func(Entry) bool) iter.Seq2[int, Entry] {
	return func(yield func(int, Entry) bool) {
		for i, e := range l.Entries(filters...) {
			if e.Date.After(on) {
				// The ledger is sorted by date, so it is safe to stop.
				return
			}
			if !yield(i, e) {
				return
			}
		}
	}
}

// Entry returns the committed entry with the given id, or false.
func (l *Ledger) Entry(id EntryID) (Entry, bool) {
	for _, e := range l.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Len returns the number of committed entries.
func (l *Ledger) Len() int { return len(l.entries) }

// OldestDate returns the date of the earliest entry, or the zero date for an
// empty ledger.
func (l *Ledger) OldestDate() Date {
	if len(l.entries) == 0 {
		return Date{}
	}
	return l.entries[0].Date
}

// NewestDate returns the date of the latest entry, or the zero date for an
// empty ledger.
func (l *Ledger) NewestDate() Date {
	if len(l.entries) == 0 {
		return Date{}
	}
	return l.entries[len(l.entries)-1].Date
}

// ByAccount returns a predicate that filters entries by account id.
func ByAccount(account string) func(Entry) bool {
	return func(e Entry) bool { return e.Account == account }
}

// ByInstrument returns a predicate that filters entries by instrument symbol.
func ByInstrument(symbol string) func(Entry) bool {
	return func(e Entry) bool { return e.Instrument == symbol }
}

// ByKind returns a predicate that filters entries by kind.
func ByKind(kind Kind) func(Entry) bool {
	return func(e Entry) bool { return e.Kind == kind }
}
