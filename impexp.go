package brokerage

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// this file handles the broker import format: a JSON export of journal rows,
// whose exact shape varies per broker. An ImportMapping points the importer
// at the right places with JSONPath expressions.

// ImportMapping locates transaction fields inside a broker export. Records
// selects the array of journal rows; the remaining paths are evaluated
// against each row. Actions translates the broker's action strings into
// kinds: an action with no entry is rejected, never guessed.
type ImportMapping struct {
	Records  string
	Date     string
	Account  string
	Action   string
	Symbol   string
	Quantity string
	Price    string
	Fees     string
	Amount   string
	Currency string
	Group    string
	Notes    string
	Actions  map[string]Kind
}

// DefaultMapping reads the journal export format of the reference tracker:
// rows under "transactions", one action string per row, transfer legs
// correlated through the journal details group.
func DefaultMapping() ImportMapping {
	return ImportMapping{
		Records:  "$.transactions[*]",
		Date:     "$.date",
		Account:  "$.account",
		Action:   "$.transaction_type",
		Symbol:   "$.symbol",
		Quantity: "$.quantity",
		Price:    "$.price",
		Fees:     "$.fees",
		Amount:   "$.amount",
		Currency: "$.currency",
		Group:    "$.journal_details.transfer_group",
		Notes:    "$.notes",
		Actions: map[string]Kind{
			"buy":                KindBuy,
			"sell":               KindSell,
			"buy_to_open":        KindOptionOpen,
			"sell_to_open":       KindOptionOpen,
			"buy_to_close":       KindOptionClose,
			"sell_to_close":      KindOptionClose,
			"option_exercise":    KindExercise,
			"option_assignment":  KindAssignment,
			"option_expiration":  KindExpire,
			"dividend":           KindDividend,
			"interest":           KindInterest,
			"deposit":            KindDeposit,
			"withdrawal":         KindWithdrawal,
			"transfer_in":        KindTransferIn,
			"transfer_out":       KindTransferOut,
			"fee":                KindFee,
		},
	}
}

// Import reads a broker JSON export and appends its rows to the ledger. A
// row that cannot be mapped or validated is reported individually and the
// rest of the batch proceeds; only an unreadable document fails the import.
func Import(r io.Reader, mapping ImportMapping, ledger *Ledger) (accepted []EntryID, rejected []Rejected, err error) {
	var doc any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("cannot parse broker export: %w", err)
	}
	jrecords, err := jsonpath.Get(mapping.Records, doc)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot select records at %q: %w", mapping.Records, err)
	}
	records, ok := jrecords.([]any)
	if !ok {
		return nil, nil, fmt.Errorf("records at %q are not a list", mapping.Records)
	}

	for _, rec := range records {
		tx, err := mapping.transaction(rec)
		if err != nil {
			rejected = append(rejected, Rejected{Transaction: tx, Err: err})
			continue
		}
		id, err := ledger.Append(tx)
		if err != nil {
			rejected = append(rejected, Rejected{Transaction: tx, Err: err})
			continue
		}
		accepted = append(accepted, id)
	}
	return accepted, rejected, nil
}

// transaction maps one export row into a transaction. The broker action is
// looked up in the mapping: splits and other unmapped actions fail here.
func (m ImportMapping) transaction(rec any) (Transaction, error) {
	var tx Transaction

	action, err := jstring(m.Action, rec)
	if err != nil {
		return tx, fmt.Errorf("cannot read action: %w", err)
	}
	kind, ok := m.Actions[action]
	if !ok {
		return tx, validationf("unsupported broker action %q", action)
	}
	tx.Kind = kind

	day, err := jstring(m.Date, rec)
	if err != nil {
		return tx, fmt.Errorf("cannot read date: %w", err)
	}
	tx.Date, err = ParseDate(day)
	if err != nil {
		return tx, err
	}

	if tx.Account, err = jstring(m.Account, rec); err != nil {
		return tx, fmt.Errorf("cannot read account: %w", err)
	}
	tx.Instrument, _ = jstring(m.Symbol, rec)
	tx.TransferGroup, _ = jstring(m.Group, rec)
	tx.Notes, _ = jstring(m.Notes, rec)
	ccy, _ := jstring(m.Currency, rec)

	if qty, ok, err := jdecimal(m.Quantity, rec); err != nil {
		return tx, fmt.Errorf("cannot read quantity: %w", err)
	} else if ok {
		tx.Quantity = Q(qty)
	}
	if price, ok, err := jdecimal(m.Price, rec); err != nil {
		return tx, fmt.Errorf("cannot read price: %w", err)
	} else if ok {
		tx.Price = M(price, ccy)
	}
	if fees, ok, err := jdecimal(m.Fees, rec); err != nil {
		return tx, fmt.Errorf("cannot read fees: %w", err)
	} else if ok {
		tx.Fees = M(fees, ccy)
	}
	if amount, ok, err := jdecimal(m.Amount, rec); err != nil {
		return tx, fmt.Errorf("cannot read amount: %w", err)
	} else if ok {
		tx.Amount = M(amount.Abs(), ccy)
	}
	return tx, nil
}

// jstring evaluates a JSONPath expression expecting a string. jsonpath is
// never clear about whether it returns a list of one answer or a single
// answer, so a one-element list is unwrapped first.
func jstring(path string, jobj any) (string, error) {
	if path == "" {
		return "", nil
	}
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return "", err
	}
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	if jval == nil {
		return "", nil
	}
	s, ok := jval.(string)
	if !ok {
		return "", fmt.Errorf("value at %q is not a string: %v", path, jval)
	}
	return s, nil
}

// jdecimal evaluates a JSONPath expression expecting a number, given as a
// JSON number or a numeric string. The boolean reports presence.
func jdecimal(path string, jobj any) (decimal.Decimal, bool, error) {
	if path == "" {
		return decimal.Decimal{}, false, nil
	}
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		// an absent field is not an error: brokers omit what does not apply
		return decimal.Decimal{}, false, nil
	}
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	switch v := jval.(type) {
	case nil:
		return decimal.Decimal{}, false, nil
	case float64:
		return decimal.NewFromFloat(v), true, nil
	case string:
		if v == "" {
			return decimal.Decimal{}, false, nil
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Decimal{}, false, fmt.Errorf("value at %q is not a number: %q", path, v)
		}
		return d, true, nil
	default:
		return decimal.Decimal{}, false, fmt.Errorf("value at %q is not a number: %v", path, jval)
	}
}
