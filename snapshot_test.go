package brokerage

import (
	"context"
	"errors"
	"testing"
)

func TestValueAsOf(t *testing.T) {
	reg := testRegistry(t)
	l := NewLedger(reg)
	mustAppend(t, l, cashTx("2025-01-01", "ira", KindDeposit, 1000))
	mustAppend(t, l, buy("2025-01-02", "ira", "AAPL", 10, 10))
	mustAppend(t, l, buy("2025-01-02", "taxable", "SPY", 5, 40))

	quotes := NewQuoteTable()
	quotes.Set("AAPL", MustParse("2025-01-30"), M(15, "USD"))
	quotes.Set("SPY", MustParse("2025-01-31"), M(42, "USD"))

	snap, err := ValueAsOf(context.Background(), l, BookOptions{}, quotes, MustParse("2025-01-31"))
	if err != nil {
		t.Fatal(err)
	}

	if len(snap.Positions) != 2 {
		t.Fatalf("got %d positions, want 2", len(snap.Positions))
	}
	for _, p := range snap.Positions {
		switch p.Instrument {
		case "AAPL":
			// carried back from the 01-30 quote
			if p.MarketValue == nil || !p.MarketValue.Equal(M(150, "USD")) {
				t.Errorf("AAPL market value = %v, want $150.00", p.MarketValue)
			}
			if p.Unrealized == nil || !p.Unrealized.Equal(M(50, "USD")) {
				t.Errorf("AAPL unrealized = %v, want $50.00", p.Unrealized)
			}
		case "SPY":
			if p.MarketValue == nil || !p.MarketValue.Equal(M(210, "USD")) {
				t.Errorf("SPY market value = %v, want $210.00", p.MarketValue)
			}
		}
	}

	// 1000 deposited minus 100 spent on AAPL
	if got := snap.ByAccount("ira").Total("USD"); !got.Equal(M(1050, "USD")) {
		t.Errorf("ira total = %s, want $1050.00", got)
	}
	if got := len(snap.Unpriced()); got != 0 {
		t.Errorf("Unpriced() = %d instruments, want none", got)
	}
	if got := snap.TotalUnrealized("USD"); !got.Equal(M(60, "USD")) {
		t.Errorf("TotalUnrealized = %s, want $60.00", got)
	}
}

func TestValueAsOf_MissingPriceDegrades(t *testing.T) {
	reg := testRegistry(t)
	l := NewLedger(reg)
	mustAppend(t, l, buy("2025-01-02", "ira", "AAPL", 10, 10))

	// no quote at all for AAPL
	snap, err := ValueAsOf(context.Background(), l, BookOptions{}, NewQuoteTable(), MustParse("2025-01-31"))
	if err != nil {
		t.Fatalf("missing price must degrade, not fail: %v", err)
	}
	if len(snap.Positions) != 1 {
		t.Fatalf("got %d positions, want 1", len(snap.Positions))
	}
	p := snap.Positions[0]
	if p.MarketValue != nil || p.Price != nil || p.Unrealized != nil {
		t.Errorf("unpriced position still carries a valuation: %+v", p)
	}
	if !p.Quantity.Equal(Q(10)) || !p.CostBasis.Equal(M(100, "USD")) {
		t.Errorf("unpriced position lost quantity or cost: %+v", p)
	}
	if got := snap.Unpriced(); len(got) != 1 || got[0] != "AAPL" {
		t.Errorf("Unpriced() = %v, want [AAPL]", got)
	}
}

func TestValueAsOf_CashInstrumentAtFace(t *testing.T) {
	reg := testRegistry(t)
	l := NewLedger(reg)
	mustAppend(t, l, buy("2025-01-02", "ira", "CASH:USD", 500, 1))

	// no quotes at all: cash never consults the provider
	snap, err := ValueAsOf(context.Background(), l, BookOptions{}, NewQuoteTable(), MustParse("2025-01-31"))
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Positions) != 1 {
		t.Fatalf("got %d positions, want 1", len(snap.Positions))
	}
	p := snap.Positions[0]
	if p.MarketValue == nil || !p.MarketValue.Equal(M(500, "USD")) {
		t.Errorf("cash market value = %v, want $500.00 at face", p.MarketValue)
	}
	if got := snap.Unpriced(); len(got) != 0 {
		t.Errorf("Unpriced() = %v, want none", got)
	}
}

func TestValueAsOf_BeforeFirstTransaction(t *testing.T) {
	reg := testRegistry(t)
	l := NewLedger(reg)
	mustAppend(t, l, buy("2025-06-01", "ira", "AAPL", 10, 10))

	snap, err := ValueAsOf(context.Background(), l, BookOptions{}, NewQuoteTable(), MustParse("2025-01-01"))
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Positions) != 0 || len(snap.Cash) != 0 {
		t.Errorf("snapshot before the first transaction is not empty: %+v", snap)
	}
}

func TestValueAsOf_OptionMultiplier(t *testing.T) {
	reg := testRegistry(t)
	l := NewLedger(reg)
	mustAppend(t, l, Transaction{
		Date: MustParse("2025-01-10"), Account: "ira", Instrument: "AAPL260116C200",
		Kind: KindOptionOpen, Quantity: Q(2), Price: M(3.5, "USD"),
	})

	quotes := NewQuoteTable()
	quotes.Set("AAPL260116C200", MustParse("2025-02-01"), M(5, "USD"))

	snap, err := ValueAsOf(context.Background(), l, BookOptions{}, quotes, MustParse("2025-02-01"))
	if err != nil {
		t.Fatal(err)
	}
	p := snap.Positions[0]
	// 2 contracts x $5 x 100
	if p.MarketValue == nil || !p.MarketValue.Equal(M(1000, "USD")) {
		t.Errorf("option market value = %v, want $1000.00", p.MarketValue)
	}
	if p.Unrealized == nil || !p.Unrealized.Equal(M(300, "USD")) {
		t.Errorf("option unrealized = %v, want $300.00", p.Unrealized)
	}
}

func TestQuoteTable_CarriesBackNeverForward(t *testing.T) {
	quotes := NewQuoteTable()
	quotes.Set("AAPL", MustParse("2025-01-10"), M(10, "USD"))
	quotes.Set("AAPL", MustParse("2025-01-20"), M(12, "USD"))

	ctx := context.Background()
	tests := []struct {
		on    string
		want  Money
		found bool
	}{
		{"2025-01-09", Money{}, false},
		{"2025-01-10", M(10, "USD"), true},
		{"2025-01-15", M(10, "USD"), true},
		{"2025-01-20", M(12, "USD"), true},
		{"2025-06-01", M(12, "USD"), true},
	}
	for _, tt := range tests {
		got, err := quotes.Price(ctx, "AAPL", MustParse(tt.on))
		if tt.found {
			if err != nil {
				t.Errorf("Price(%s): unexpected error %v", tt.on, err)
				continue
			}
			if !got.Equal(tt.want) {
				t.Errorf("Price(%s) = %s, want %s", tt.on, got, tt.want)
			}
			continue
		}
		var unavailable *PriceUnavailableError
		if !errors.As(err, &unavailable) {
			t.Errorf("Price(%s): got %v, want *PriceUnavailableError", tt.on, err)
		}
	}
}
