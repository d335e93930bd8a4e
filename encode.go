package brokerage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// MarshalJSON implements the json.Marshaler interface, persisting the entry
// id ahead of the canonical transaction fields. Lot ids derive from entry
// ids, so the id must survive the round trip for stored specific-lot
// selections to remain resolvable.
func (e Entry) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", e.ID)
	w.EmbedFrom(e.Transaction)
	return w.MarshalJSON()
}

// txLine is the wire form of a transaction, one JSON object per ledger line.
// It mirrors the canonical field order of Transaction.MarshalJSON.
type txLine struct {
	ID            string          `json:"id,omitempty"`
	Date          Date            `json:"date"`
	Account       string          `json:"account"`
	Kind          string          `json:"kind"`
	Instrument    string          `json:"instrument,omitempty"`
	Quantity      Quantity        `json:"quantity,omitempty"`
	Price         decimal.Decimal `json:"price,omitempty"`
	Fees          decimal.Decimal `json:"fees,omitempty"`
	Amount        decimal.Decimal `json:"amount,omitempty"`
	Currency      string          `json:"currency,omitempty"`
	TransferGroup string          `json:"transferGroup,omitempty"`
	Lots          []string        `json:"lots,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

func (l txLine) transaction() Transaction {
	return Transaction{
		Date:          l.Date,
		Account:       l.Account,
		Instrument:    l.Instrument,
		Kind:          Kind(l.Kind),
		Quantity:      l.Quantity,
		Price:         M(l.Price, l.Currency),
		Fees:          M(l.Fees, l.Currency),
		Amount:        M(l.Amount, l.Currency),
		TransferGroup: l.TransferGroup,
		Lots:          l.Lots,
		Notes:         l.Notes,
	}
}

// EncodeLedger writes the ledger as JSONL, one entry per line in
// chronological order. Decoding the output reproduces the ledger, entry ids
// included.
func EncodeLedger(w io.Writer, ledger *Ledger) error {
	for _, e := range ledger.Entries() {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("could not marshal entry: %w", err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("could not write entry: %w", err)
		}
	}
	return nil
}

// DecodeLedger reads a JSONL transaction stream into a new ledger validated
// against the registry. The canonical store is trusted: the first invalid
// line fails the decode with its line number.
func DecodeLedger(r io.Reader, reg *Registry) (*Ledger, error) {
	ledger := NewLedger(reg)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var l txLine
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("line %d: could not decode transaction: %w", line, err)
		}
		// restore the persisted entry id; lines from hand-edited files may
		// lack one and get a fresh id.
		id := uuid.New()
		if l.ID != "" {
			parsed, err := uuid.Parse(l.ID)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid entry id %q: %w", line, l.ID, err)
			}
			id = parsed
		}
		if _, err := ledger.append(id, l.transaction()); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ledger: %w", err)
	}
	return ledger, nil
}

// accountLine and instrumentLine are the wire forms of the registry file.
type accountLine struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Broker  string `json:"broker,omitempty"`
	Taxable bool   `json:"taxable,omitempty"`
}

type instrumentLine struct {
	Symbol     string          `json:"symbol"`
	Name       string          `json:"name,omitempty"`
	Type       string          `json:"type"`
	Currency   string          `json:"currency"`
	Underlying string          `json:"underlying,omitempty"`
	Right      string          `json:"right,omitempty"`
	Strike     decimal.Decimal `json:"strike,omitempty"`
	Expiry     Date            `json:"expiry,omitzero"`
	Multiplier int64           `json:"multiplier,omitempty"`
}

// registryFile is the wire form of the whole registry.
type registryFile struct {
	Accounts    []accountLine    `json:"accounts"`
	Instruments []instrumentLine `json:"instruments"`
}

// EncodeRegistry writes the registry reference data as one JSON document.
func EncodeRegistry(w io.Writer, reg *Registry) error {
	var file registryFile
	for a := range reg.Accounts() {
		file.Accounts = append(file.Accounts, accountLine{
			ID:      a.ID(),
			Name:    a.Name(),
			Broker:  a.Broker(),
			Taxable: a.Taxable(),
		})
	}
	for inst := range reg.Instruments() {
		line := instrumentLine{
			Symbol:   inst.Symbol(),
			Name:     inst.Name(),
			Type:     string(inst.Type()),
			Currency: inst.Currency(),
		}
		if inst.Type() == Option {
			line.Underlying = inst.Underlying()
			line.Right = string(inst.Right())
			line.Strike = inst.Strike().Decimal()
			line.Expiry = inst.Expiry()
			line.Multiplier = inst.Multiplier().Decimal().IntPart()
		}
		file.Instruments = append(file.Instruments, line)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(file)
}

// DecodeRegistry reads a registry document written by EncodeRegistry.
func DecodeRegistry(r io.Reader) (*Registry, error) {
	var file registryFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("could not decode registry: %w", err)
	}
	reg := NewRegistry()
	for _, a := range file.Accounts {
		acc := NewAccount(a.ID, a.Name, a.Broker, a.Taxable)
		if err := reg.AddAccount(acc); err != nil {
			return nil, err
		}
	}
	for _, l := range file.Instruments {
		typ, err := ParseInstrumentType(l.Type)
		if err != nil {
			return nil, fmt.Errorf("instrument %q: %w", l.Symbol, err)
		}
		var inst Instrument
		switch typ {
		case Option:
			inst = NewOption(l.Symbol, l.Underlying, OptionRight(l.Right), M(l.Strike, l.Currency), l.Expiry, l.Multiplier)
		case Cash:
			inst = NewCash(l.Currency)
		default:
			inst = NewEquity(l.Symbol, l.Name, typ, l.Currency)
		}
		if err := reg.AddInstrument(inst); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// quoteLine is the wire form of one quote in the price file.
type quoteLine struct {
	Instrument string          `json:"instrument"`
	Date       Date            `json:"date"`
	Price      decimal.Decimal `json:"price"`
	Currency   string          `json:"currency"`
}

// EncodeQuotes writes the quote table as JSONL, sorted by instrument then date.
func EncodeQuotes(w io.Writer, quotes *QuoteTable) error {
	enc := json.NewEncoder(w)
	for _, sym := range quotes.Instruments() {
		s := quotes.series[sym]
		for i, day := range s.days {
			line := quoteLine{
				Instrument: sym,
				Date:       day,
				Price:      s.prices[i].Decimal(),
				Currency:   s.prices[i].Currency(),
			}
			if err := enc.Encode(line); err != nil {
				return fmt.Errorf("could not write quote for %s: %w", sym, err)
			}
		}
	}
	return nil
}

// DecodeQuotes reads a JSONL quote stream into a quote table.
func DecodeQuotes(r io.Reader) (*QuoteTable, error) {
	quotes := NewQuoteTable()
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var q quoteLine
		if err := json.Unmarshal(raw, &q); err != nil {
			return nil, fmt.Errorf("line %d: could not decode quote: %w", line, err)
		}
		quotes.Set(q.Instrument, q.Date, M(q.Price, q.Currency))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading quotes: %w", err)
	}
	return quotes, nil
}
