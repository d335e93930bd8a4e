package brokerage

import (
	"fmt"
	"maps"
	"slices"
)

// holdingKey addresses a lot book: lots are tracked per (account, instrument).
type holdingKey struct {
	account    string
	instrument string
}

// RealizedPnL is the profit or loss locked in when a closing transaction
// consumes (part of) a lot. One record per consumed lot, attributed to the
// closing entry, in matching-rule order.
type RealizedPnL struct {
	Account     string
	Instrument  string
	Date        Date    // date of the closing transaction
	Entry       EntryID // the closing entry
	LotID       string
	Acquired    Date     // the consumed lot's original acquisition date
	Quantity    Quantity // quantity consumed from this lot
	Proceeds    Money    // net of the fees allocated to this consumption
	Fees        Money    // closing fees allocated pro-rata by quantity
	CostBasis   Money    // consumed cost basis
	PnL         Money    // Proceeds - CostBasis
	HoldingDays int
}

// IncomeLine is a dividend, interest or fee event kept as its own
// income/expense line. These never blend into cost basis.
type IncomeLine struct {
	Account    string
	Instrument string // empty for account-level interest and fees
	Date       Date
	Kind       Kind
	Amount     Money // positive for income, negative for expenses
	Entry      EntryID
}

// BookOptions configures a ledger replay.
type BookOptions struct {
	// Rule is the lot matching rule for disposals that do not select
	// specific lots. Defaults to FIFO.
	Rule MatchingRule
	// AsOf bounds the replay; the zero date means the whole ledger.
	AsOf Date
	// VoidTransfers lists transfer-group ids explicitly abandoned by the
	// caller: their legs are ignored.
	VoidTransfers []string
	// GraceDays is the transfer grace window: pending groups older than this
	// at the replay bound surface an UnmatchedTransferError warning.
	// Zero disables the check.
	GraceDays int
}

// Book is the cost-basis state derived from one deterministic replay of the
// ledger: open and closed lots per (account, instrument), realized P&L
// records, income lines, cash balances, and pending transfers.
//
// A Book is never patched. Any ledger change, including a backdated entry,
// means building a fresh Book; the same ledger always reproduces the same
// Book, so the rebuild is idempotent.
type Book struct {
	ledger   *Ledger
	opts     BookOptions
	lots     map[holdingKey][]*Lot
	cash     map[holdingKey]Money // key.instrument holds the currency
	realized []RealizedPnL
	income   []IncomeLine
	matcher  *transferMatcher
	warnings []error
}

// NewBook replays the ledger into a Book. It fails only on an entry the
// replay cannot honor, such as a disposal exceeding open quantity after a
// backdated change; ledgers grown exclusively through Commit never trip this.
func NewBook(ledger *Ledger, opts BookOptions) (*Book, error) {
	b := &Book{
		ledger:  ledger,
		opts:    opts,
		lots:    make(map[holdingKey][]*Lot),
		cash:    make(map[holdingKey]Money),
		matcher: newTransferMatcher(opts.VoidTransfers),
	}

	bound := opts.AsOf
	if bound.IsZero() {
		bound = ledger.NewestDate()
	}

	for _, e := range ledger.EntriesAsOf(bound) {
		if err := b.apply(e); err != nil {
			return nil, fmt.Errorf("cannot apply %s entry of %s: %w", e.Kind, e.Date, err)
		}
	}

	if opts.GraceDays > 0 {
		for _, g := range b.matcher.pending() {
			if bound.Sub(g.since) > opts.GraceDays {
				leg := g.pendingLeg()
				b.warnings = append(b.warnings, &UnmatchedTransferError{
					Group:      leg.Group,
					Account:    leg.Account,
					Instrument: leg.Instrument,
					Since:      leg.Since,
				})
			}
		}
	}
	return b, nil
}

// apply folds a single entry into the book.
func (b *Book) apply(e Entry) error {
	switch {
	case e.Kind == KindTransferOut || e.Kind == KindTransferIn:
		return b.applyTransfer(e)
	case e.Kind.IsOpening():
		b.openLot(e)
		b.debitCash(e.Account, e.Amount)
	case e.Kind.IsClosing():
		if err := b.closeLots(e); err != nil {
			return err
		}
		b.creditCash(e.Account, e.Amount)
	case e.Kind.IsCash():
		b.applyCash(e)
	}
	return nil
}

// openLot creates a lot from an opening entry. Unit cost capitalizes the
// opening fees: (price x quantity x multiplier + fees) / quantity.
func (b *Book) openLot(e Entry) {
	key := holdingKey{account: e.Account, instrument: e.Instrument}
	lot := &Lot{
		ID:         e.ID.String(),
		Account:    e.Account,
		Instrument: e.Instrument,
		Acquired:   e.Date,
		Original:   e.Quantity,
		Remaining:  e.Quantity,
		UnitCost:   e.Amount.Div(e.Quantity),
		Source:     e.ID,
		seq:        e.Seq,
	}
	b.lots[key] = append(b.lots[key], lot)
}

// closeLots consumes open lots for a disposal and records realized P&L.
// The consumption is all-or-nothing: on failure nothing is mutated.
func (b *Book) closeLots(e Entry) error {
	key := holdingKey{account: e.Account, instrument: e.Instrument}
	ls := b.lots[key]

	requested := e.Quantity.Abs()
	if e.Kind == KindExpire && requested.IsZero() {
		// expire with zero quantity zeroes the whole remaining position.
		requested = totalRemaining(openLots(ls))
		if requested.IsZero() {
			return nil
		}
	}

	rule := b.opts.Rule
	if len(e.Lots) > 0 {
		rule = SpecificLot
	}
	plan, err := planConsumption(rule, e.Account, e.Instrument, requested, ls, e.Lots)
	if err != nil {
		return err
	}

	// Proceeds and closing fees are allocated pro-rata by consumed quantity.
	// The last consumption takes the residual, so the allocations always sum
	// exactly to the transaction's amount and fees despite division rounding.
	remainingProceeds, remainingFees := e.Amount, e.Fees
	for i, c := range plan {
		proceeds, fees := remainingProceeds, remainingFees
		if i < len(plan)-1 {
			proceeds = e.Amount.Mul(c.quantity).Div(requested)
			fees = e.Fees.Mul(c.quantity).Div(requested)
			remainingProceeds = remainingProceeds.Sub(proceeds)
			remainingFees = remainingFees.Sub(fees)
		}
		basis := c.lot.UnitCost.Mul(c.quantity)

		c.lot.Remaining = c.lot.Remaining.Sub(c.quantity)

		b.realized = append(b.realized, RealizedPnL{
			Account:     e.Account,
			Instrument:  e.Instrument,
			Date:        e.Date,
			Entry:       e.ID,
			LotID:       c.lot.ID,
			Acquired:    c.lot.Acquired,
			Quantity:    c.quantity,
			Proceeds:    proceeds,
			Fees:        fees,
			CostBasis:   basis,
			PnL:         proceeds.Sub(basis),
			HoldingDays: e.Date.Sub(c.lot.Acquired),
		})
	}
	return nil
}

// applyTransfer holds a transfer leg until its pair arrives, then resolves
// the group as one atomic operation: the consumed lots move into the
// destination account with acquisition dates and unit costs unchanged, so no
// taxable realization occurs. An unmatched or mismatched leg stays pending
// and does not affect position totals.
func (b *Book) applyTransfer(e Entry) error {
	g, matched := b.matcher.observe(e)
	if !matched {
		return nil
	}

	out, in := g.out, g.in
	key := holdingKey{account: out.Account, instrument: out.Instrument}
	requested := out.Quantity.Abs()

	rule := b.opts.Rule
	if len(out.Lots) > 0 {
		rule = SpecificLot
	}
	plan, err := planConsumption(rule, out.Account, out.Instrument, requested, b.lots[key], out.Lots)
	if err != nil {
		return err
	}

	destKey := holdingKey{account: in.Account, instrument: in.Instrument}
	for i, c := range plan {
		c.lot.Remaining = c.lot.Remaining.Sub(c.quantity)
		moved := &Lot{
			ID:         fmt.Sprintf("%s/%d", in.ID, i),
			Account:    in.Account,
			Instrument: in.Instrument,
			Acquired:   c.lot.Acquired, // carried over: the transfer is tax-neutral
			Original:   c.quantity,
			Remaining:  c.quantity,
			UnitCost:   c.lot.UnitCost, // carried over
			Source:     in.ID,
			seq:        in.Seq,
		}
		b.lots[destKey] = append(b.lots[destKey], moved)
	}
	return nil
}

// applyCash folds a pure cash event into balances and income lines.
func (b *Book) applyCash(e Entry) {
	switch e.Kind {
	case KindDeposit:
		b.creditCash(e.Account, e.Amount)
	case KindWithdrawal:
		b.debitCash(e.Account, e.Amount)
	case KindDividend, KindInterest:
		b.creditCash(e.Account, e.Amount)
		b.income = append(b.income, IncomeLine{
			Account: e.Account, Instrument: e.Instrument,
			Date: e.Date, Kind: e.Kind, Amount: e.Amount, Entry: e.ID,
		})
	case KindFee:
		b.debitCash(e.Account, e.Amount)
		b.income = append(b.income, IncomeLine{
			Account: e.Account, Instrument: e.Instrument,
			Date: e.Date, Kind: e.Kind, Amount: e.Amount.Neg(), Entry: e.ID,
		})
	}
}

func (b *Book) creditCash(account string, amount Money) {
	key := holdingKey{account: account, instrument: amount.Currency()}
	b.cash[key] = b.cash[key].Add(amount)
}

func (b *Book) debitCash(account string, amount Money) {
	key := holdingKey{account: account, instrument: amount.Currency()}
	b.cash[key] = b.cash[key].Sub(amount)
}

// Position returns the held quantity for (account, instrument): the sum of
// remaining lot quantities, which is the position invariant.
func (b *Book) Position(account, instrument string) Quantity {
	return totalRemaining(b.lots[holdingKey{account: account, instrument: instrument}])
}

// CostBasis returns the aggregate remaining cost basis for (account, instrument).
func (b *Book) CostBasis(account, instrument string) Money {
	var total Money
	for _, l := range b.lots[holdingKey{account: account, instrument: instrument}] {
		total = total.Add(l.CostBasis())
	}
	return total
}

// Lots returns copies of all lots ever created for (account, instrument),
// open and closed, in creation order.
func (b *Book) Lots(account, instrument string) []Lot {
	ls := b.lots[holdingKey{account: account, instrument: instrument}]
	out := make([]Lot, 0, len(ls))
	for _, l := range ls {
		out = append(out, *l)
	}
	return out
}

// CashBalance returns the cash balance of an account in the given currency.
func (b *Book) CashBalance(account, currency string) Money {
	bal, ok := b.cash[holdingKey{account: account, instrument: currency}]
	if !ok {
		return M(0, currency)
	}
	return bal
}

// CashCurrencies returns the currencies with cash activity in the account,
// in sorted order.
func (b *Book) CashCurrencies(account string) []string {
	var out []string
	for key := range b.cash {
		if key.account == account {
			out = append(out, key.instrument)
		}
	}
	slices.Sort(out)
	return out
}

// Holdings returns the instrument symbols with lot history in the account,
// in sorted order.
func (b *Book) Holdings(account string) []string {
	var out []string
	for key := range b.lots {
		if key.account == account {
			out = append(out, key.instrument)
		}
	}
	slices.Sort(out)
	return out
}

// Accounts returns the account ids the book has state for, in sorted order.
func (b *Book) Accounts() []string {
	seen := make(map[string]struct{})
	for key := range b.lots {
		seen[key.account] = struct{}{}
	}
	for key := range b.cash {
		seen[key.account] = struct{}{}
	}
	out := slices.Collect(maps.Keys(seen))
	slices.Sort(out)
	return out
}

// Realized returns the realized P&L records in ledger order.
func (b *Book) Realized() []RealizedPnL { return slices.Clone(b.realized) }

// Income returns the income and expense lines in ledger order.
func (b *Book) Income() []IncomeLine { return slices.Clone(b.income) }

// PendingTransfers returns the transfer groups still waiting for a valid
// pair, in first-seen order.
func (b *Book) PendingTransfers() []PendingTransfer {
	var out []PendingTransfer
	for _, g := range b.matcher.pending() {
		out = append(out, g.pendingLeg())
	}
	return out
}

// TransferState returns the state of a transfer group, or false if the group
// id was never seen.
func (b *Book) TransferState(group string) (TransferState, bool) {
	g, ok := b.matcher.groups[group]
	if !ok {
		return 0, false
	}
	return g.state, true
}

// Warnings returns non-fatal findings from the replay, such as transfers
// pending beyond the grace window.
func (b *Book) Warnings() []error { return slices.Clone(b.warnings) }

// Commit validates and appends a transaction, then proves the grown ledger
// still replays into a consistent book. A disposal exceeding the open
// quantity is rolled back and reported as an *InsufficientLotError, leaving
// the ledger and every lot unchanged. On success it returns the new entry id
// and the rebuilt book.
func Commit(l *Ledger, opts BookOptions, tx Transaction) (EntryID, *Book, error) {
	id, err := l.Append(tx)
	if err != nil {
		return EntryID{}, nil, err
	}
	b, err := NewBook(l, opts)
	if err != nil {
		l.remove(id)
		return EntryID{}, nil, err
	}
	return id, b, nil
}
