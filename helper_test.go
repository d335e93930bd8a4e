package brokerage

import (
	"testing"
)

// testRegistry returns a registry with the accounts and instruments the
// tests trade: two accounts and a stock, an ETF, a call option on AAPL and a
// USD cash holding.
func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	for _, a := range []Account{
		NewAccount("ira", "Retirement", "vanguard", false),
		NewAccount("taxable", "Main", "schwab", true),
	} {
		if err := reg.AddAccount(a); err != nil {
			t.Fatalf("AddAccount(%s): %v", a.ID(), err)
		}
	}
	for _, i := range []Instrument{
		NewEquity("AAPL", "Apple Inc.", Stock, "USD"),
		NewEquity("SPY", "S&P 500 ETF", ETF, "USD"),
		NewOption("AAPL260116C200", "AAPL", Call, M(200, "USD"), MustParse("2026-01-16"), 0),
		NewCash("USD"),
	} {
		if err := reg.AddInstrument(i); err != nil {
			t.Fatalf("AddInstrument(%s): %v", i.Symbol(), err)
		}
	}
	return reg
}

// mustAppend appends a transaction or fails the test.
func mustAppend(t *testing.T, l *Ledger, tx Transaction) EntryID {
	t.Helper()
	id, err := l.Append(tx)
	if err != nil {
		t.Fatalf("Append(%s %s): %v", tx.Kind, tx.Instrument, err)
	}
	return id
}

// buy returns a plain stock acquisition for tests.
func buy(day, account, symbol string, qty, price float64) Transaction {
	return Transaction{
		Date:       MustParse(day),
		Account:    account,
		Instrument: symbol,
		Kind:       KindBuy,
		Quantity:   Q(qty),
		Price:      M(price, "USD"),
	}
}

// sell returns a plain stock disposal for tests.
func sell(day, account, symbol string, qty, price float64) Transaction {
	return Transaction{
		Date:       MustParse(day),
		Account:    account,
		Instrument: symbol,
		Kind:       KindSell,
		Quantity:   Q(-qty),
		Price:      M(price, "USD"),
	}
}

// cashTx returns a pure cash transaction for tests.
func cashTx(day, account string, kind Kind, amount float64) Transaction {
	return Transaction{
		Date:    MustParse(day),
		Account: account,
		Kind:    kind,
		Amount:  M(amount, "USD"),
	}
}
