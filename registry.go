package brokerage

import (
	"fmt"
	"iter"
	"maps"
	"slices"
)

// InstrumentType is the closed set of instrument variants the engine knows.
type InstrumentType string

const (
	Stock InstrumentType = "stock"
	ETF   InstrumentType = "etf"
	// An Option carries contract terms (underlying, strike, expiry, right).
	Option InstrumentType = "option"
	// Cash positions value at face amount, one instrument per currency.
	Cash InstrumentType = "cash"
)

// ParseInstrumentType parses a string into an InstrumentType.
func ParseInstrumentType(s string) (InstrumentType, error) {
	switch InstrumentType(s) {
	case Stock, ETF, Option, Cash:
		return InstrumentType(s), nil
	default:
		return "", fmt.Errorf("unknown instrument type: %q", s)
	}
}

// OptionRight distinguishes calls from puts.
type OptionRight string

const (
	Call OptionRight = "call"
	Put  OptionRight = "put"
)

// defaultOptionMultiplier is the usual equity-option contract size.
const defaultOptionMultiplier = 100

// Instrument represents a tradeable asset: a stock, an ETF, an option
// contract, or a cash holding. Instruments are immutable once registered.
type Instrument struct {
	symbol   string         // the unique, broker-facing symbol used in the ledger
	name     string         // an optional human-friendly description
	typ      InstrumentType // the variant
	currency string         // trading currency; for Cash, the held currency

	// option contract terms, zero for other variants
	underlying string
	right      OptionRight
	strike     Money
	expiry     Date
	multiplier int64
}

// NewEquity registers terms for a stock or ETF instrument.
func NewEquity(symbol, name string, typ InstrumentType, currency string) Instrument {
	return Instrument{symbol: symbol, name: name, typ: typ, currency: currency}
}

// NewOption returns an option instrument with its contract terms.
// A zero multiplier defaults to the standard 100.
func NewOption(symbol, underlying string, right OptionRight, strike Money, expiry Date, multiplier int64) Instrument {
	if multiplier == 0 {
		multiplier = defaultOptionMultiplier
	}
	return Instrument{
		symbol:     symbol,
		typ:        Option,
		currency:   strike.Currency(),
		underlying: underlying,
		right:      right,
		strike:     strike,
		expiry:     expiry,
		multiplier: multiplier,
	}
}

// NewCash returns the cash instrument for a currency.
func NewCash(currency string) Instrument {
	return Instrument{symbol: "CASH:" + currency, typ: Cash, currency: currency}
}

// Symbol returns the unique symbol of the instrument.
func (i Instrument) Symbol() string { return i.symbol }

// Name returns the human-friendly description of the instrument.
func (i Instrument) Name() string { return i.name }

// Type returns the instrument variant.
func (i Instrument) Type() InstrumentType { return i.typ }

// Currency returns the currency the instrument trades (or is held) in.
func (i Instrument) Currency() string { return i.currency }

// Underlying returns the underlying symbol for an option, "" otherwise.
func (i Instrument) Underlying() string { return i.underlying }

// Right returns the option right (call or put), "" for non-options.
func (i Instrument) Right() OptionRight { return i.right }

// Strike returns the option strike price, zero for non-options.
func (i Instrument) Strike() Money { return i.strike }

// Expiry returns the option expiration date, zero for non-options.
func (i Instrument) Expiry() Date { return i.expiry }

// Multiplier returns the quantity-to-deliverable factor used in valuation:
// the contract multiplier for options, 1 for everything else.
func (i Instrument) Multiplier() Quantity {
	if i.typ == Option {
		return Q(i.multiplier)
	}
	return Q(1)
}

// Account identifies a brokerage account. Immutable once referenced by a
// transaction; corrections go through the ledger, never through the registry.
type Account struct {
	id      string // the unique account identifier used in the ledger
	name    string // display name
	broker  string
	taxable bool
}

// NewAccount declares an account.
func NewAccount(id, name, broker string, taxable bool) Account {
	return Account{id: id, name: name, broker: broker, taxable: taxable}
}

func (a Account) ID() string     { return a.id }
func (a Account) Name() string   { return a.name }
func (a Account) Broker() string { return a.broker }
func (a Account) Taxable() bool  { return a.taxable }

// Registry holds the static reference data the ledger validates against:
// accounts and instruments, indexed by identifier.
type Registry struct {
	accounts    map[string]Account
	instruments map[string]Instrument
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		accounts:    make(map[string]Account),
		instruments: make(map[string]Instrument),
	}
}

// AddAccount registers an account. Redefining an existing id is rejected,
// accounts are immutable reference data.
func (r *Registry) AddAccount(a Account) error {
	if a.ID() == "" {
		return fmt.Errorf("account id is missing")
	}
	if _, exists := r.accounts[a.ID()]; exists {
		return fmt.Errorf("account %q already registered", a.ID())
	}
	r.accounts[a.ID()] = a
	return nil
}

// AddInstrument registers an instrument. Redefining an existing symbol is rejected.
func (r *Registry) AddInstrument(i Instrument) error {
	if i.Symbol() == "" {
		return fmt.Errorf("instrument symbol is missing")
	}
	if _, exists := r.instruments[i.Symbol()]; exists {
		return fmt.Errorf("instrument %q already registered", i.Symbol())
	}
	r.instruments[i.Symbol()] = i
	return nil
}

// Account returns the account registered with this id, or nil if unknown.
func (r *Registry) Account(id string) *Account {
	a, ok := r.accounts[id]
	if !ok {
		return nil
	}
	return &a
}

// Instrument returns the instrument registered with this symbol, or nil if unknown.
func (r *Registry) Instrument(symbol string) *Instrument {
	i, ok := r.instruments[symbol]
	if !ok {
		return nil
	}
	return &i
}

// Accounts iterates over registered accounts in id order.
func (r *Registry) Accounts() iter.Seq[Account] {
	return func(yield func(Account) bool) {
		ids := slices.Collect(maps.Keys(r.accounts))
		slices.Sort(ids)
		for _, id := range ids {
			if !yield(r.accounts[id]) {
				return
			}
		}
	}
}

// Instruments iterates over registered instruments in symbol order.
func (r *Registry) Instruments() iter.Seq[Instrument] {
	return func(yield func(Instrument) bool) {
		symbols := slices.Collect(maps.Keys(r.instruments))
		slices.Sort(symbols)
		for _, symbol := range symbols {
			if !yield(r.instruments[symbol]) {
				return
			}
		}
	}
}
