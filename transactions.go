package brokerage

import (
	"fmt"
)

// Kind is the closed enumeration of economic event kinds a ledger accepts.
// Broker action strings are mapped to a Kind at the import boundary; an
// action that maps to no Kind is rejected before it reaches the ledger.
type Kind string

const (
	KindBuy        Kind = "buy"
	KindSell       Kind = "sell"
	KindDividend   Kind = "dividend"
	KindInterest   Kind = "interest"
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
	KindFee        Kind = "fee"
	// Internal transfers move holdings between accounts of the same owner.
	// A matched pair of legs transplants lots without a tax event.
	KindTransferIn  Kind = "transfer_in"
	KindTransferOut Kind = "transfer_out"
	KindOptionOpen  Kind = "option_open"
	KindOptionClose Kind = "option_close"
	KindExercise    Kind = "exercise"
	KindAssignment  Kind = "assignment"
	KindExpire      Kind = "expire"
)

// ParseKind parses a string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindBuy, KindSell, KindDividend, KindInterest, KindDeposit,
		KindWithdrawal, KindFee, KindTransferIn, KindTransferOut,
		KindOptionOpen, KindOptionClose, KindExercise, KindAssignment, KindExpire:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown transaction kind: %q", s)
	}
}

// IsOpening reports whether the kind creates new lots.
func (k Kind) IsOpening() bool {
	switch k {
	case KindBuy, KindTransferIn, KindOptionOpen, KindAssignment:
		return true
	}
	return false
}

// IsClosing reports whether the kind consumes open lots.
func (k Kind) IsClosing() bool {
	switch k {
	case KindSell, KindTransferOut, KindOptionClose, KindExercise, KindExpire:
		return true
	}
	return false
}

// IsCash reports whether the kind is a pure cash event with no instrument
// position impact.
func (k Kind) IsCash() bool {
	switch k {
	case KindDividend, KindInterest, KindDeposit, KindWithdrawal, KindFee:
		return true
	}
	return false
}

// IsExternalFlow reports whether the kind moves money across the portfolio
// boundary. Internal transfers are excluded: they never distort the owner's
// return and never feed the performance schedule.
func (k Kind) IsExternalFlow() bool {
	return k == KindDeposit || k == KindWithdrawal
}

// Transaction is a validated, immutable economic event. Correcting a committed
// transaction means appending a reversing one, never editing in place.
//
// Quantity is signed: positive for opening kinds, negative for closing kinds,
// zero for pure cash kinds (and for expire, where zero means "all remaining").
// Amount is the positive total money moved; when zero it is derived as
// |quantity| x price x multiplier, plus fees for acquisitions and minus fees
// for disposals.
type Transaction struct {
	Date          Date     `json:"date"`
	Account       string   `json:"account"`
	Instrument    string   `json:"instrument,omitempty"` // empty for deposit, withdrawal, interest and fee
	Kind          Kind     `json:"kind"`
	Quantity      Quantity `json:"quantity,omitempty"`
	Price         Money    `json:"price,omitempty"` // unit price, per share or per contract unit
	Fees          Money    `json:"fees,omitempty"`
	Amount        Money    `json:"amount,omitempty"`
	TransferGroup string   `json:"transferGroup,omitempty"` // correlates the two legs of an internal transfer
	Lots          []string `json:"lots,omitempty"`          // caller-selected lot ids, for specific-lot disposal
	Notes         string   `json:"notes,omitempty"`
}

// requiresInstrument reports whether the kind must reference an instrument.
func (k Kind) requiresInstrument() bool {
	switch k {
	case KindDeposit, KindWithdrawal, KindInterest, KindFee:
		return false
	}
	return true
}

// Validate checks the transaction for correctness against the registry and
// applies quick fixes where applicable (deriving the amount, defaulting
// currencies from the instrument). It returns the validated (and potentially
// modified) transaction, or a *ValidationError detailing the failure.
//
// Validation here is stateless: sufficiency of open lots is checked when the
// book replays the ledger, because it depends on every earlier entry.
func (t Transaction) Validate(reg *Registry) (Transaction, error) {
	if t.Date.IsZero() {
		return t, validationf("transaction date is missing")
	}
	if _, err := ParseKind(string(t.Kind)); err != nil {
		return t, validationf("%v", err)
	}
	if t.Account == "" {
		return t, validationf("account is missing")
	}
	if reg.Account(t.Account) == nil {
		return t, validationf("account %q not registered", t.Account)
	}

	var inst *Instrument
	if t.Kind.requiresInstrument() {
		if t.Instrument == "" {
			return t, validationf("%s transaction requires an instrument", t.Kind)
		}
		inst = reg.Instrument(t.Instrument)
		if inst == nil {
			return t, validationf("instrument %q not registered", t.Instrument)
		}
	} else if t.Instrument != "" {
		if reg.Instrument(t.Instrument) == nil {
			return t, validationf("instrument %q not registered", t.Instrument)
		}
		inst = reg.Instrument(t.Instrument)
	}

	if err := t.checkSigns(inst); err != nil {
		return t, err
	}

	// Quick fix currencies from the instrument's trading currency.
	ccy := t.Price.Currency()
	if ccy == "" && inst != nil {
		ccy = inst.Currency()
	}
	if ccy == "" {
		ccy = t.Amount.Currency()
	}
	if ccy == "" {
		ccy = t.Fees.Currency()
	}
	if ccy == "" {
		return t, validationf("%s transaction has no resolvable currency", t.Kind)
	}
	t.Price = M(t.Price.Decimal(), ccy)
	t.Fees = M(t.Fees.Decimal(), ccy)

	if t.Fees.IsNegative() {
		return t, validationf("fees must not be negative, got %s", t.Fees)
	}

	// Derive the amount when absent: |quantity| x price x multiplier, fees
	// added on acquisitions and deducted on disposals.
	if t.Amount.IsZero() && !t.Quantity.IsZero() {
		mult := Q(1)
		if inst != nil {
			mult = inst.Multiplier()
		}
		gross := t.Price.Mul(t.Quantity.Abs()).Mul(mult)
		if t.Kind.IsOpening() {
			t.Amount = gross.Add(t.Fees)
		} else {
			t.Amount = gross.Sub(t.Fees)
		}
	}
	t.Amount = M(t.Amount.Decimal(), ccy)
	if t.Amount.IsNegative() {
		return t, validationf("%s transaction amount must not be negative, got %s", t.Kind, t.Amount)
	}

	if (t.Kind == KindTransferIn || t.Kind == KindTransferOut) && t.TransferGroup == "" {
		return t, validationf("%s transaction requires a transfer group id", t.Kind)
	}
	if len(t.Lots) > 0 && !t.Kind.IsClosing() {
		return t, validationf("%s transaction cannot select specific lots", t.Kind)
	}

	return t, nil
}

// checkSigns enforces the fixed sign/quantity contract of each kind.
func (t Transaction) checkSigns(inst *Instrument) error {
	switch {
	case t.Kind.IsOpening():
		if !t.Quantity.IsPositive() {
			return validationf("%s transaction quantity must be positive, got %s", t.Kind, t.Quantity)
		}
		if t.Price.IsNegative() {
			return validationf("%s transaction price must not be negative, got %s", t.Kind, t.Price)
		}
	case t.Kind == KindExpire:
		// Zero quantity closes the whole remaining position at zero proceeds.
		if t.Quantity.IsPositive() {
			return validationf("expire transaction quantity must be negative or zero, got %s", t.Quantity)
		}
		if !t.Price.IsZero() {
			return validationf("expire transaction carries no proceeds, got price %s", t.Price)
		}
	case t.Kind.IsClosing():
		if !t.Quantity.IsNegative() {
			return validationf("%s transaction quantity must be negative, got %s", t.Kind, t.Quantity)
		}
		if t.Price.IsNegative() {
			return validationf("%s transaction price must not be negative, got %s", t.Kind, t.Price)
		}
	case t.Kind.IsCash():
		if !t.Quantity.IsZero() {
			return validationf("%s transaction carries no quantity, got %s", t.Kind, t.Quantity)
		}
		if t.Amount.IsZero() || t.Amount.IsNegative() {
			return validationf("%s transaction amount must be positive, got %s", t.Kind, t.Amount)
		}
	}

	if t.Kind == KindOptionOpen || t.Kind == KindOptionClose ||
		t.Kind == KindExercise || t.Kind == KindAssignment || t.Kind == KindExpire {
		if inst == nil || inst.Type() != Option {
			return validationf("%s transaction requires an option instrument", t.Kind)
		}
	}
	return nil
}

// Equal reports whether two transactions describe the same economic event.
func (t Transaction) Equal(o Transaction) bool {
	if t.Date != o.Date || t.Account != o.Account || t.Instrument != o.Instrument ||
		t.Kind != o.Kind || t.TransferGroup != o.TransferGroup || t.Notes != o.Notes {
		return false
	}
	if !t.Quantity.Equal(o.Quantity) || !t.Price.Equal(o.Price) ||
		!t.Fees.Equal(o.Fees) || !t.Amount.Equal(o.Amount) {
		return false
	}
	if len(t.Lots) != len(o.Lots) {
		return false
	}
	for i := range t.Lots {
		if t.Lots[i] != o.Lots[i] {
			return false
		}
	}
	return true
}

// MarshalJSON implements the json.Marshaler interface with a canonical field order.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", t.Date)
	w.Append("account", t.Account)
	w.Append("kind", t.Kind)
	w.Optional("instrument", t.Instrument)
	if !t.Quantity.IsZero() {
		w.Append("quantity", t.Quantity)
	}
	if !t.Price.IsZero() {
		w.Append("price", t.Price.Decimal())
	}
	if !t.Fees.IsZero() {
		w.Append("fees", t.Fees.Decimal())
	}
	if !t.Amount.IsZero() {
		w.Append("amount", t.Amount.Decimal())
	}
	w.Optional("currency", t.Amount.Currency())
	w.Optional("transferGroup", t.TransferGroup)
	if len(t.Lots) > 0 {
		w.Append("lots", t.Lots)
	}
	w.Optional("notes", t.Notes)
	return w.MarshalJSON()
}
