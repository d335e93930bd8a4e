package brokerage

import (
	"fmt"
	"iter"
)

// Range represents an inclusive range of dates.
type Range struct{ From, To Date }

// NewRange creates a new date range. If 'from' is after 'to', they are swapped.
func NewRange(from, to Date) Range {
	if from.After(to) {
		from, to = to, from
	}
	return Range{From: from, To: to}
}

// Contains reports whether the date falls in the range, boundaries included.
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Days returns an iterator that yields each date within the range, inclusive.
func (r Range) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.From; !d.After(r.To); d = d.Add(1) {
			if !yield(d) {
				return
			}
		}
	}
}

// Periods returns an iterator that yields each sequential period range
// overlapping r.
func (r Range) Periods(p Period) iter.Seq[Range] {
	return func(yield func(Range) bool) {
		for current := r.From; !current.After(r.To); {
			periodRange := p.Range(current)
			if !yield(periodRange) {
				return
			}
			current = periodRange.To.Add(1)
		}
	}
}

// Identifier computes a short unique identifier for the range, used to label
// report columns.
func (r Range) Identifier() string {
	switch {
	case r.From == r.To:
		return r.From.String()
	case r.From.StartOf(Monthly) == r.From && r.From.EndOf(Monthly) == r.To:
		return r.From.Format("2006-January")
	case r.From.StartOf(Quarterly) == r.From && r.From.EndOf(Quarterly) == r.To:
		return fmt.Sprintf("%d-Q%d", r.From.Year(), (r.From.Month()-1)/3+1)
	case r.From.StartOf(Yearly) == r.From && r.From.EndOf(Yearly) == r.To:
		return r.From.Format("2006")
	default:
		return fmt.Sprintf("%s_%s", r.From, r.To)
	}
}
