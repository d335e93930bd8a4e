package brokerage

import (
	"strings"
	"testing"
)

const brokerExport = `{
  "generated": "2025-07-01T10:00:00Z",
  "transactions": [
    {"date": "2025-01-02", "account": "ira", "transaction_type": "deposit", "amount": 1000, "currency": "USD"},
    {"date": "2025-01-03", "account": "ira", "transaction_type": "buy", "symbol": "AAPL", "quantity": 10, "price": "150.25", "fees": 1, "currency": "USD"},
    {"date": "2025-02-10", "account": "ira", "transaction_type": "dividend", "symbol": "AAPL", "amount": -25.40, "currency": "USD"},
    {"date": "2025-03-01", "account": "ira", "transaction_type": "stock_split", "symbol": "AAPL", "quantity": 10},
    {"date": "2025-04-01", "account": "ira", "transaction_type": "transfer_out", "symbol": "AAPL", "quantity": -10, "currency": "USD", "journal_details": {"transfer_group": "J-77"}},
    {"date": "2025-04-03", "account": "taxable", "transaction_type": "transfer_in", "symbol": "AAPL", "quantity": 10, "currency": "USD", "journal_details": {"transfer_group": "J-77"}}
  ]
}`

func TestImport_DefaultMapping(t *testing.T) {
	reg := testRegistry(t)
	l := NewLedger(reg)

	accepted, rejected, err := Import(strings.NewReader(brokerExport), DefaultMapping(), l)
	if err != nil {
		t.Fatal(err)
	}

	if len(accepted) != 5 {
		t.Errorf("accepted %d rows, want 5", len(accepted))
	}
	if len(rejected) != 1 {
		t.Fatalf("rejected %d rows, want 1", len(rejected))
	}
	// splits have no mapped kind and must be rejected, never guessed
	if !strings.Contains(rejected[0].Err.Error(), "stock_split") {
		t.Errorf("rejection %q does not name the unsupported action", rejected[0].Err)
	}

	book, err := NewBook(l, BookOptions{})
	if err != nil {
		t.Fatal(err)
	}
	// the export's transfer legs pair up through the journal details group
	if state, ok := book.TransferState("J-77"); !ok || state != TransferMatched {
		t.Errorf("transfer state = %v, want matched", state)
	}
	if got := book.Position("taxable", "AAPL"); !got.Equal(Q(10)) {
		t.Errorf("position after import = %s, want 10", got)
	}

	// brokers report dividends from their own side; amounts import as magnitudes
	income := book.Income()
	if len(income) != 1 || !income[0].Amount.Equal(M(25.40, "USD")) {
		t.Errorf("income = %+v, want one $25.40 dividend", income)
	}
}

func TestImport_PerRowValidation(t *testing.T) {
	reg := testRegistry(t)
	l := NewLedger(reg)

	// the second row references an unregistered account but the first must land
	export := `{"transactions": [
		{"date": "2025-01-02", "account": "ira", "transaction_type": "deposit", "amount": 100, "currency": "USD"},
		{"date": "2025-01-03", "account": "ghost", "transaction_type": "deposit", "amount": 100, "currency": "USD"}
	]}`
	accepted, rejected, err := Import(strings.NewReader(export), DefaultMapping(), l)
	if err != nil {
		t.Fatal(err)
	}
	if len(accepted) != 1 || len(rejected) != 1 {
		t.Fatalf("accepted %d / rejected %d, want 1 / 1", len(accepted), len(rejected))
	}
	if l.Len() != 1 {
		t.Errorf("ledger holds %d entries, want 1", l.Len())
	}
}

func TestImport_UnreadableDocument(t *testing.T) {
	reg := testRegistry(t)
	l := NewLedger(reg)
	if _, _, err := Import(strings.NewReader("not json"), DefaultMapping(), l); err == nil {
		t.Fatal("expected an error for an unparsable document")
	}
}
