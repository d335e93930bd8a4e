package brokerage

import (
	"fmt"
	"sort"
)

// LotState describes how much of a lot is left.
type LotState int

const (
	Open LotState = iota
	PartiallyClosed
	Closed
)

func (s LotState) String() string {
	switch s {
	case Open:
		return "open"
	case PartiallyClosed:
		return "partially-closed"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Lot is a discrete acquisition of an instrument with its own quantity and
// cost basis, consumed in whole or in part on disposal. The remaining
// quantity only ever decreases, monotonically, to zero.
//
// A lot id is deterministic: it derives from the id of the ledger entry that
// created it, so rebuilding the book from the same ledger always reproduces
// the same lots, and specific-lot selections stay valid across rebuilds.
type Lot struct {
	ID         string
	Account    string
	Instrument string
	Acquired   Date // original acquisition date, preserved through internal transfers
	Original   Quantity
	Remaining  Quantity
	UnitCost   Money   // cost basis per unit, opening fees capitalized
	Source     EntryID // the entry that created the lot (or carried it in)
	seq        int     // creation sequence, tie-break for same-day acquisitions
}

// State derives the lot state from its remaining quantity.
func (l *Lot) State() LotState {
	switch {
	case l.Remaining.IsZero():
		return Closed
	case l.Remaining.Equal(l.Original):
		return Open
	default:
		return PartiallyClosed
	}
}

// CostBasis returns the aggregate remaining cost basis of the lot.
func (l *Lot) CostBasis() Money { return l.UnitCost.Mul(l.Remaining) }

// consumption is a planned draw of quantity against a single lot.
type consumption struct {
	lot      *Lot
	quantity Quantity
}

// openLots filters out closed lots, preserving order.
func openLots(ls []*Lot) []*Lot {
	var open []*Lot
	for _, l := range ls {
		if !l.Remaining.IsZero() {
			open = append(open, l)
		}
	}
	return open
}

// totalRemaining sums the remaining quantity over the given lots.
func totalRemaining(ls []*Lot) Quantity {
	var total Quantity
	for _, l := range ls {
		total = total.Add(l.Remaining)
	}
	return total
}

// planConsumption selects which open lots a disposal draws from, in
// matching-rule order, without mutating anything. The plan either covers the
// whole requested quantity or fails with *InsufficientLotError: a disposal is
// all-or-nothing.
//
// FIFO orders by acquisition date then creation sequence (the tie-break for
// identical dates); LIFO is the exact reverse. SpecificLot consumes the
// caller-selected lots in the order selected.
func planConsumption(rule MatchingRule, account, instrument string, requested Quantity, ls []*Lot, selected []string) ([]consumption, error) {
	open := openLots(ls)

	if total := totalRemaining(open); total.LessThan(requested) {
		return nil, &InsufficientLotError{
			Account:    account,
			Instrument: instrument,
			Requested:  requested,
			Open:       total,
		}
	}

	var ordered []*Lot
	switch rule {
	case FIFO, LIFO:
		ordered = make([]*Lot, len(open))
		copy(ordered, open)
		sort.SliceStable(ordered, func(i, j int) bool {
			a, b := ordered[i], ordered[j]
			if a.Acquired != b.Acquired {
				if rule == LIFO {
					return b.Acquired.Before(a.Acquired)
				}
				return a.Acquired.Before(b.Acquired)
			}
			if rule == LIFO {
				return b.seq < a.seq
			}
			return a.seq < b.seq
		})
	case SpecificLot:
		index := make(map[string]*Lot, len(open))
		for _, l := range open {
			index[l.ID] = l
		}
		for _, id := range selected {
			l, ok := index[id]
			if !ok {
				return nil, validationf("selected lot %q is not open for %s in account %s", id, instrument, account)
			}
			ordered = append(ordered, l)
		}
		if total := totalRemaining(ordered); total.LessThan(requested) {
			return nil, &InsufficientLotError{
				Account:    account,
				Instrument: instrument,
				Requested:  requested,
				Open:       total,
			}
		}
	default:
		return nil, fmt.Errorf("unsupported matching rule: %v", rule)
	}

	var plan []consumption
	toConsume := requested
	for _, l := range ordered {
		if toConsume.IsZero() {
			break
		}
		take := l.Remaining.Min(toConsume)
		plan = append(plan, consumption{lot: l, quantity: take})
		toConsume = toConsume.Sub(take)
	}
	return plan, nil
}
