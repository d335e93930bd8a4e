package brokerage

import (
	"context"
	"math"
)

// CashFlow is an external flow crossing the portfolio boundary on one day:
// positive for contributions, negative for withdrawals. Internal transfers
// never appear here, whether matched or pending.
type CashFlow struct {
	On     Date
	Amount Money
}

// ExternalFlows extracts the external cash flows of the range from the
// ledger, in the given currency, aggregated per day. An empty account means
// the whole portfolio.
func ExternalFlows(ledger *Ledger, account, currency string, r Range) []CashFlow {
	perDay := make(map[Date]Money)
	var days []Date
	for _, e := range ledger.Entries() {
		if !e.Kind.IsExternalFlow() || !r.Contains(e.Date) {
			continue
		}
		if account != "" && e.Account != account {
			continue
		}
		if e.Amount.Currency() != currency {
			continue
		}
		amount := e.Amount
		if e.Kind == KindWithdrawal {
			amount = amount.Neg()
		}
		if _, ok := perDay[e.Date]; !ok {
			days = append(days, e.Date)
		}
		perDay[e.Date] = perDay[e.Date].Add(amount)
	}
	flows := make([]CashFlow, 0, len(days))
	for _, d := range days {
		flows = append(flows, CashFlow{On: d, Amount: perDay[d]})
	}
	return flows
}

// Performance is the return of one account (or the whole portfolio) over a
// range, in one reporting currency.
//
// TWR strips the timing of external flows: sub-period returns are
// chain-linked at every flow boundary, so two owners of the same holdings
// get the same TWR regardless of when they deposited. IRR keeps that timing:
// it is the annualized rate discounting every flow and the terminal value to
// zero, actual/365.
type Performance struct {
	Account  string // empty for the portfolio
	Currency string
	Range    Range
	Begin    Money // value at the day before the range starts
	End      Money // value at the range end
	Flows    []CashFlow
	TWR      Percent
	IRR      Percent
}

// Contributions returns the total of positive external flows in the range.
func (p *Performance) Contributions() Money {
	total := M(0, p.Currency)
	for _, f := range p.Flows {
		if f.Amount.IsPositive() {
			total = total.Add(f.Amount)
		}
	}
	return total
}

// Withdrawals returns the total magnitude of negative external flows in the range.
func (p *Performance) Withdrawals() Money {
	total := M(0, p.Currency)
	for _, f := range p.Flows {
		if f.Amount.IsNegative() {
			total = total.Add(f.Amount.Neg())
		}
	}
	return total
}

// ComputePerformance values the scope at every external-flow boundary of the
// range and derives both TWR and IRR. An empty account means the whole
// portfolio: account results are summed into one schedule, never averaged.
func ComputePerformance(ctx context.Context, ledger *Ledger, opts BookOptions, provider PriceProvider, account, currency string, r Range) (*Performance, error) {
	valueAt := func(on Date) (Money, error) {
		snap, err := ValueAsOf(ctx, ledger, opts, provider, on)
		if err != nil {
			return Money{}, err
		}
		if account != "" {
			snap = snap.ByAccount(account)
		}
		return snap.Total(currency), nil
	}

	begin, err := valueAt(r.From.Add(-1))
	if err != nil {
		return nil, err
	}
	end, err := valueAt(r.To)
	if err != nil {
		return nil, err
	}
	flows := ExternalFlows(ledger, account, currency, r)

	perf := &Performance{
		Account:  account,
		Currency: currency,
		Range:    r,
		Begin:    begin,
		End:      end,
		Flows:    flows,
	}

	twr, err := timeWeighted(valueAt, begin, end, flows)
	if err != nil {
		return nil, err
	}
	perf.TWR = twr

	irr, err := internalRate(begin, end, flows, r)
	if err != nil {
		return nil, err
	}
	perf.IRR = irr
	return perf, nil
}

// timeWeighted chain-links sub-period returns between external flows. The
// valuation on a flow day is end-of-day, after the flow, so the flow is
// backed out of the numerator. A sub-period starting from a zero value (the
// portfolio funding itself) links as flat.
func timeWeighted(valueAt func(Date) (Money, error), begin, end Money, flows []CashFlow) (Percent, error) {
	linked := 1.0
	prev := begin.AsFloat()
	for _, f := range flows {
		v, err := valueAt(f.On)
		if err != nil {
			return 0, err
		}
		if prev != 0 {
			linked *= (v.AsFloat() - f.Amount.AsFloat()) / prev
		}
		prev = v.AsFloat()
	}
	if prev != 0 {
		linked *= end.AsFloat() / prev
	}
	return Percent(100 * (linked - 1)), nil
}

// internalRate solves for the annualized money-weighted rate of return. Days
// are counted actual/365. Flows are taken from the investor's side: the
// beginning value and contributions are money put in, withdrawals and the
// terminal value are money taken out.
func internalRate(begin, end Money, flows []CashFlow, r Range) (Percent, error) {
	type point struct {
		t  float64 // years from range start, actual/365
		cf float64
	}
	points := []point{{t: 0, cf: -begin.AsFloat()}}
	for _, f := range flows {
		points = append(points, point{
			t:  float64(f.On.Sub(r.From)) / 365,
			cf: -f.Amount.AsFloat(),
		})
	}
	points = append(points, point{
		t:  float64(r.To.Sub(r.From)) / 365,
		cf: end.AsFloat(),
	})

	npv := func(rate float64) (value, derivative float64) {
		for _, p := range points {
			disc := math.Pow(1+rate, -p.t)
			value += p.cf * disc
			derivative += p.cf * -p.t * disc / (1 + rate)
		}
		return value, derivative
	}

	const (
		seed      = 0.10
		newtonMax = 40
		bisectMax = 200
		rateFloor = -0.999999
		rateCeil  = 10.0
		npvTol    = 1e-9
		rateTol   = 1e-10
	)

	// Newton first: fast when the schedule is well behaved.
	rate := seed
	for i := 0; i < newtonMax; i++ {
		value, derivative := npv(rate)
		if math.Abs(value) < npvTol {
			return Percent(100 * rate), nil
		}
		if derivative == 0 {
			break
		}
		next := rate - value/derivative
		if next <= rateFloor || next > rateCeil || math.IsNaN(next) {
			break
		}
		if math.Abs(next-rate) < rateTol {
			return Percent(100 * next), nil
		}
		rate = next
	}

	// Bisection fallback over the bracketed search interval.
	lo, hi := rateFloor, rateCeil
	flo, _ := npv(lo)
	fhi, _ := npv(hi)
	if flo == 0 {
		return Percent(100 * lo), nil
	}
	if fhi == 0 {
		return Percent(100 * hi), nil
	}
	if (flo > 0) == (fhi > 0) {
		return 0, &NonConvergenceError{Iterations: newtonMax}
	}
	for i := 0; i < bisectMax; i++ {
		mid := (lo + hi) / 2
		fmid, _ := npv(mid)
		if math.Abs(fmid) < npvTol || (hi-lo)/2 < rateTol {
			return Percent(100 * mid), nil
		}
		if (fmid > 0) == (flo > 0) {
			lo, flo = mid, fmid
		} else {
			hi = mid
		}
	}
	return 0, &NonConvergenceError{Iterations: newtonMax + bisectMax}
}
