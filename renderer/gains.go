package renderer

import (
	"fmt"
	"strings"

	"brokerage"
)

// GainsMarkdown renders the realized P&L records and income lines of a book
// over a range.
func GainsMarkdown(book *brokerage.Book, r brokerage.Range, rule brokerage.MatchingRule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Gains Report from %s to %s\n\n", r.From, r.To)
	fmt.Fprintf(&b, "Matching rule: %s\n\n", rule)

	records := book.Realized()
	var hasRealized bool
	for _, rec := range records {
		if !r.Contains(rec.Date) {
			continue
		}
		if !hasRealized {
			fmt.Fprintln(&b, "## Realized")
			fmt.Fprintln(&b)
			fmt.Fprintln(&b, "| Date | Account | Instrument | Lot | Quantity | Held (days) | Proceeds | Cost Basis | P&L |")
			fmt.Fprintln(&b, "|:---|:---|:---|:---|---:|---:|---:|---:|---:|")
			hasRealized = true
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %d | %s | %s | %s |\n",
			rec.Date, rec.Account, rec.Instrument, rec.LotID,
			rec.Quantity, rec.HoldingDays, rec.Proceeds, rec.CostBasis, rec.PnL.SignedString())
	}
	if hasRealized {
		fmt.Fprintln(&b)
	} else {
		fmt.Fprintln(&b, "No realized gains in the period.")
		fmt.Fprintln(&b)
	}

	var hasIncome bool
	for _, line := range book.Income() {
		if !r.Contains(line.Date) {
			continue
		}
		if !hasIncome {
			fmt.Fprintln(&b, "## Income and Expenses")
			fmt.Fprintln(&b)
			fmt.Fprintln(&b, "| Date | Account | Instrument | Kind | Amount |")
			fmt.Fprintln(&b, "|:---|:---|:---|:---|---:|")
			hasIncome = true
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			line.Date, line.Account, line.Instrument, line.Kind, line.Amount.SignedString())
	}
	if hasIncome {
		fmt.Fprintln(&b)
	}
	return b.String()
}
