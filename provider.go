package brokerage

import (
	"context"
	"sort"
	"sync"
)

// PriceProvider answers "what was this instrument worth on that date".
// Implementations may hit the network; the context bounds the call. A missing
// quote is not an error at this level: implementations return a
// *PriceUnavailableError and the valuation layer degrades that position to
// quantity-only instead of failing the whole snapshot.
type PriceProvider interface {
	Price(ctx context.Context, instrument string, on Date) (Money, error)
}

// quoteSeries is a date-sorted price history for one instrument.
type quoteSeries struct {
	days   []Date
	prices []Money
}

// get returns the latest quote on or before the given day.
func (s *quoteSeries) get(on Date) (Money, bool) {
	i := sort.Search(len(s.days), func(i int) bool { return s.days[i].After(on) })
	if i == 0 {
		return Money{}, false
	}
	return s.prices[i-1], true
}

func (s *quoteSeries) set(on Date, price Money) {
	i := sort.Search(len(s.days), func(i int) bool { return !s.days[i].Before(on) })
	if i < len(s.days) && s.days[i] == on {
		s.prices[i] = price
		return
	}
	s.days = append(s.days, Date{})
	s.prices = append(s.prices, Money{})
	copy(s.days[i+1:], s.days[i:])
	copy(s.prices[i+1:], s.prices[i:])
	s.days[i] = on
	s.prices[i] = price
}

// QuoteTable is an in-memory PriceProvider backed by explicit quotes, the
// store behind the price file and the importer. A lookup carries back to the
// latest quote on or before the requested date, never forward.
//
// It is safe for concurrent lookups while valuation fans out per account.
type QuoteTable struct {
	mu     sync.RWMutex
	series map[string]*quoteSeries
}

// NewQuoteTable returns an empty quote table.
func NewQuoteTable() *QuoteTable {
	return &QuoteTable{series: make(map[string]*quoteSeries)}
}

// Set records a quote for the instrument on the given day, replacing any
// earlier quote for that day.
func (q *QuoteTable) Set(instrument string, on Date, price Money) {
	q.mu.Lock()
	defer q.mu.Unlock()
	s, ok := q.series[instrument]
	if !ok {
		s = &quoteSeries{}
		q.series[instrument] = s
	}
	s.set(on, price)
}

// Price implements PriceProvider.
func (q *QuoteTable) Price(ctx context.Context, instrument string, on Date) (Money, error) {
	if err := ctx.Err(); err != nil {
		return Money{}, err
	}
	q.mu.RLock()
	defer q.mu.RUnlock()
	s, ok := q.series[instrument]
	if !ok {
		return Money{}, &PriceUnavailableError{Instrument: instrument, On: on}
	}
	price, ok := s.get(on)
	if !ok {
		return Money{}, &PriceUnavailableError{Instrument: instrument, On: on}
	}
	return price, nil
}

// Instruments returns the instruments with at least one quote, in sorted order.
func (q *QuoteTable) Instruments() []string {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]string, 0, len(q.series))
	for sym := range q.series {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}
