package brokerage

import (
	"context"
	"testing"
)

func TestExternalFlows(t *testing.T) {
	reg := testRegistry(t)
	l := NewLedger(reg)
	mustAppend(t, l, cashTx("2025-01-10", "ira", KindDeposit, 1000))
	mustAppend(t, l, cashTx("2025-01-10", "ira", KindDeposit, 200))
	mustAppend(t, l, cashTx("2025-02-01", "ira", KindWithdrawal, 300))
	mustAppend(t, l, cashTx("2025-02-15", "taxable", KindDeposit, 50))
	mustAppend(t, l, cashTx("2026-01-01", "ira", KindDeposit, 999)) // out of range
	// internal transfers never feed the schedule
	mustAppend(t, l, buy("2025-01-11", "ira", "AAPL", 10, 10))
	mustAppend(t, l, Transaction{
		Date: MustParse("2025-03-01"), Account: "ira", Instrument: "AAPL",
		Kind: KindTransferOut, Quantity: Q(-10), TransferGroup: "g1",
	})

	r := NewRange(MustParse("2025-01-01"), MustParse("2025-12-31"))

	flows := ExternalFlows(l, "ira", "USD", r)
	if len(flows) != 2 {
		t.Fatalf("got %d flows, want 2", len(flows))
	}
	if flows[0].On != MustParse("2025-01-10") || !flows[0].Amount.Equal(M(1200, "USD")) {
		t.Errorf("first flow = %+v, want $1200.00 on 2025-01-10", flows[0])
	}
	if !flows[1].Amount.Equal(M(-300, "USD")) {
		t.Errorf("second flow = %+v, want -$300.00", flows[1])
	}

	// empty account means the whole portfolio
	all := ExternalFlows(l, "", "USD", r)
	if len(all) != 3 {
		t.Errorf("portfolio scope: got %d flows, want 3", len(all))
	}
}

func TestTimeWeighted(t *testing.T) {
	// 1000 grows to 1500, a 500 deposit lands, then 2000 grows to 2200:
	// 1.5 x 1.1 chain-linked.
	values := map[Date]Money{
		MustParse("2025-06-01"): M(2000, "USD"),
	}
	valueAt := func(on Date) (Money, error) { return values[on], nil }
	flows := []CashFlow{{On: MustParse("2025-06-01"), Amount: M(500, "USD")}}

	twr, err := timeWeighted(valueAt, M(1000, "USD"), M(2200, "USD"), flows)
	if err != nil {
		t.Fatal(err)
	}
	if !twr.Equal(65) {
		t.Errorf("TWR = %s, want 65.00%%", twr)
	}
}

func TestTimeWeighted_ZeroBeginLinksFlat(t *testing.T) {
	// the portfolio funds itself mid-range: no return exists before the
	// first dollar, so the first sub-period links as flat.
	values := map[Date]Money{
		MustParse("2025-06-01"): M(1000, "USD"),
	}
	valueAt := func(on Date) (Money, error) { return values[on], nil }
	flows := []CashFlow{{On: MustParse("2025-06-01"), Amount: M(1000, "USD")}}

	twr, err := timeWeighted(valueAt, M(0, "USD"), M(1100, "USD"), flows)
	if err != nil {
		t.Fatal(err)
	}
	if !twr.Equal(10) {
		t.Errorf("TWR = %s, want 10.00%%", twr)
	}
}

func TestInternalRate(t *testing.T) {
	r := NewRange(MustParse("2025-01-01"), MustParse("2026-01-01"))
	tests := []struct {
		name       string
		begin, end Money
		want       Percent
	}{
		{"gain", M(1000, "USD"), M(1100, "USD"), 10},
		{"loss", M(1000, "USD"), M(900, "USD"), -10},
		{"flat", M(1000, "USD"), M(1000, "USD"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := internalRate(tt.begin, tt.end, nil, r)
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("IRR = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestInternalRate_FlowTiming(t *testing.T) {
	// Same end value, but money arrived halfway through: the money-weighted
	// rate must come out above the whole-year rate on the same gain.
	r := NewRange(MustParse("2025-01-01"), MustParse("2026-01-01"))
	late := []CashFlow{{On: MustParse("2025-07-02"), Amount: M(1000, "USD")}}

	wholeYear, err := internalRate(M(1000, "USD"), M(1100, "USD"), nil, r)
	if err != nil {
		t.Fatal(err)
	}
	halfYear, err := internalRate(M(0, "USD"), M(1100, "USD"), late, r)
	if err != nil {
		t.Fatal(err)
	}
	if halfYear <= wholeYear {
		t.Errorf("IRR with a mid-year contribution = %s, want above the whole-year %s", halfYear, wholeYear)
	}
}

func TestComputePerformance(t *testing.T) {
	reg := testRegistry(t)
	l := NewLedger(reg)
	mustAppend(t, l, cashTx("2025-01-01", "ira", KindDeposit, 1000))
	mustAppend(t, l, buy("2025-01-01", "ira", "AAPL", 10, 100))

	quotes := NewQuoteTable()
	quotes.Set("AAPL", MustParse("2025-01-01"), M(100, "USD"))
	quotes.Set("AAPL", MustParse("2025-12-31"), M(110, "USD"))

	r := NewRange(MustParse("2025-01-01"), MustParse("2026-01-01"))
	perf, err := ComputePerformance(context.Background(), l, BookOptions{}, quotes, "ira", "USD", r)
	if err != nil {
		t.Fatal(err)
	}

	if !perf.Begin.Equal(M(0, "USD")) {
		t.Errorf("Begin = %s, want $0.00", perf.Begin)
	}
	if !perf.End.Equal(M(1100, "USD")) {
		t.Errorf("End = %s, want $1100.00", perf.End)
	}
	if !perf.Contributions().Equal(M(1000, "USD")) {
		t.Errorf("Contributions = %s, want $1000.00", perf.Contributions())
	}
	if !perf.Withdrawals().Equal(M(0, "USD")) {
		t.Errorf("Withdrawals = %s, want $0.00", perf.Withdrawals())
	}
	// the 1000 arrived on day one and left the year worth 1100
	if !perf.TWR.Equal(10) {
		t.Errorf("TWR = %s, want 10.00%%", perf.TWR)
	}
	if !perf.IRR.Equal(10) {
		t.Errorf("IRR = %s, want 10.00%%", perf.IRR)
	}
}
