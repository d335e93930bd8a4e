package renderer

import (
	"fmt"
	"strings"

	"brokerage"
)

// TransactionsMarkdown renders the ledger entries of a range as a markdown
// table, in chronological order.
func TransactionsMarkdown(ledger *brokerage.Ledger, r brokerage.Range, filters ...func(brokerage.Entry) bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Transactions from %s to %s\n\n", r.From, r.To)

	var count int
	for _, e := range ledger.Entries(filters...) {
		if !r.Contains(e.Date) {
			continue
		}
		if count == 0 {
			fmt.Fprintln(&b, "| Date | Account | Kind | Instrument | Quantity | Price | Fees | Amount |")
			fmt.Fprintln(&b, "|:---|:---|:---|:---|---:|---:|---:|---:|")
		}
		count++
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			e.Date, e.Account, e.Kind, e.Instrument,
			e.Quantity, e.Price, e.Fees, e.Amount)
	}
	if count == 0 {
		fmt.Fprintln(&b, "No transactions in the period.")
	} else {
		fmt.Fprintf(&b, "\n%d transactions.\n", count)
	}
	return b.String()
}

// RejectedMarkdown renders the per-record failures of a batch import.
func RejectedMarkdown(rejected []brokerage.Rejected) string {
	if len(rejected) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "## Rejected (%d)\n\n", len(rejected))
	for _, rej := range rejected {
		fmt.Fprintf(&b, "- %s %s %s: %v\n",
			rej.Transaction.Date, rej.Transaction.Kind, rej.Transaction.Instrument, rej.Err)
	}
	return b.String()
}
