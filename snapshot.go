package brokerage

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// Position is one valued holding line in a snapshot. MarketValue, Price and
// Unrealized are nil when no quote could be found for the date: the position
// still reports quantity and cost basis, and the snapshot says so instead of
// failing.
type Position struct {
	Account      string
	Instrument   string
	Quantity     Quantity
	CostBasis    Money // remaining cost basis over the open lots
	AveragePrice Money // cost basis per unit
	Price        *Money
	MarketValue  *Money // price x quantity x multiplier
	Unrealized   *Money // market value - cost basis
}

// CashPosition is the cash balance of one account in one currency, valued at
// face.
type CashPosition struct {
	Account  string
	Currency string
	Balance  Money
}

// Snapshot is the state of the holdings at one date: every open position
// with its valuation, cash balances, and the transfers still pending (which
// are excluded from the position lines until matched).
type Snapshot struct {
	On        Date
	Positions []Position
	Cash      []CashPosition
	Pending   []PendingTransfer
}

// ValueAsOf builds the book bounded at the given date and values every open
// position against the provider. Accounts are valued concurrently; the
// context bounds the underlying price lookups. A date before the first
// transaction yields an empty snapshot.
func ValueAsOf(ctx context.Context, ledger *Ledger, opts BookOptions, provider PriceProvider, on Date) (*Snapshot, error) {
	if ledger.Len() == 0 || on.Before(ledger.OldestDate()) {
		return &Snapshot{On: on}, nil
	}
	opts.AsOf = on
	book, err := NewBook(ledger, opts)
	if err != nil {
		return nil, err
	}
	return book.Snapshot(ctx, provider, on)
}

// Snapshot values the book's open positions at the given date. The book must
// have been built as of that date or earlier.
func (b *Book) Snapshot(ctx context.Context, provider PriceProvider, on Date) (*Snapshot, error) {
	snap := &Snapshot{On: on, Pending: b.PendingTransfers()}
	accounts := b.Accounts()

	perAccount := make([][]Position, len(accounts))
	errs := make([]error, len(accounts))
	var wg sync.WaitGroup
	for i, account := range accounts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			perAccount[i], errs[i] = b.valueAccount(ctx, provider, account, on)
		}()
	}
	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	for _, positions := range perAccount {
		snap.Positions = append(snap.Positions, positions...)
	}
	for _, account := range accounts {
		for _, ccy := range b.CashCurrencies(account) {
			snap.Cash = append(snap.Cash, CashPosition{
				Account:  account,
				Currency: ccy,
				Balance:  b.CashBalance(account, ccy),
			})
		}
	}
	return snap, nil
}

// valueAccount values the open positions of one account. Price misses
// degrade the line to quantity and cost; any other provider error aborts.
func (b *Book) valueAccount(ctx context.Context, provider PriceProvider, account string, on Date) ([]Position, error) {
	reg := b.ledger.Registry()
	var out []Position
	for _, symbol := range b.Holdings(account) {
		qty := b.Position(account, symbol)
		if qty.IsZero() {
			continue
		}
		basis := b.CostBasis(account, symbol)
		p := Position{
			Account:      account,
			Instrument:   symbol,
			Quantity:     qty,
			CostBasis:    basis,
			AveragePrice: basis.Div(qty),
		}

		inst := reg.Instrument(symbol)
		if inst != nil && inst.Type() == Cash {
			// cash values at face, one unit per unit of currency; the price
			// provider is never consulted.
			price := M(1, inst.Currency())
			value := price.Mul(qty)
			unrealized := value.Sub(basis)
			p.Price = &price
			p.MarketValue = &value
			p.Unrealized = &unrealized
			out = append(out, p)
			continue
		}

		mult := Q(1)
		if inst != nil {
			mult = inst.Multiplier()
		}
		price, err := provider.Price(ctx, symbol, on)
		var unavailable *PriceUnavailableError
		switch {
		case err == nil:
			value := price.Mul(qty).Mul(mult)
			unrealized := value.Sub(basis)
			p.Price = &price
			p.MarketValue = &value
			p.Unrealized = &unrealized
		case errors.As(err, &unavailable):
			// keep the position unvalued
		default:
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// ByAccount returns the subset of the snapshot belonging to one account.
func (s *Snapshot) ByAccount(account string) *Snapshot {
	sub := &Snapshot{On: s.On}
	for _, p := range s.Positions {
		if p.Account == account {
			sub.Positions = append(sub.Positions, p)
		}
	}
	for _, c := range s.Cash {
		if c.Account == account {
			sub.Cash = append(sub.Cash, c)
		}
	}
	for _, t := range s.Pending {
		if t.Account == account {
			sub.Pending = append(sub.Pending, t)
		}
	}
	return sub
}

// Total sums market values and cash balances in the given currency. Positions
// in other currencies are ignored; unpriced positions are skipped and
// reported by Unpriced.
func (s *Snapshot) Total(currency string) Money {
	total := M(0, currency)
	for _, p := range s.Positions {
		if p.MarketValue != nil && p.MarketValue.Currency() == currency {
			total = total.Add(*p.MarketValue)
		}
	}
	for _, c := range s.Cash {
		if c.Currency == currency {
			total = total.Add(c.Balance)
		}
	}
	return total
}

// TotalUnrealized sums the unrealized P&L of the priced positions in the
// given currency. Unpriced positions contribute nothing and are reported by
// Unpriced.
func (s *Snapshot) TotalUnrealized(currency string) Money {
	total := M(0, currency)
	for _, p := range s.Positions {
		if p.Unrealized != nil && p.Unrealized.Currency() == currency {
			total = total.Add(*p.Unrealized)
		}
	}
	return total
}

// Unpriced lists the instruments the snapshot could not value, sorted and
// deduplicated. An empty result means every position carries a market value.
func (s *Snapshot) Unpriced() []string {
	seen := make(map[string]struct{})
	for _, p := range s.Positions {
		if p.MarketValue == nil {
			seen[p.Instrument] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for sym := range seen {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}
