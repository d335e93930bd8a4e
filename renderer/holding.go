// Package renderer formats engine reports as markdown, ready for the
// terminal renderer or for publishing as plain text.
package renderer

import (
	"fmt"
	"strings"

	"brokerage"
)

// HoldingMarkdown renders a snapshot as a markdown holdings report, totalled
// in the reporting currency.
func HoldingMarkdown(s *brokerage.Snapshot, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Holdings on %s\n\n", s.On)

	if len(s.Positions) > 0 {
		fmt.Fprintln(&b, "| Account | Instrument | Quantity | Avg Price | Cost Basis | Market Value | Unrealized |")
		fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|---:|")
		for _, p := range s.Positions {
			value, unrealized := "n/a", "n/a"
			if p.MarketValue != nil {
				value = p.MarketValue.String()
				unrealized = p.Unrealized.SignedString()
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
				p.Account, p.Instrument, p.Quantity,
				p.AveragePrice, p.CostBasis, value, unrealized)
		}
		fmt.Fprintln(&b)
	}

	if len(s.Cash) > 0 {
		fmt.Fprintln(&b, "## Cash")
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "| Account | Balance |")
		fmt.Fprintln(&b, "|:---|---:|")
		for _, c := range s.Cash {
			fmt.Fprintf(&b, "| %s | %s |\n", c.Account, c.Balance)
		}
		fmt.Fprintln(&b)
	}

	if len(s.Pending) > 0 {
		fmt.Fprintln(&b, "## Pending Transfers")
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "| Group | Account | Instrument | Quantity | Since |")
		fmt.Fprintln(&b, "|:---|:---|:---|---:|:---|")
		for _, t := range s.Pending {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				t.Group, t.Account, t.Instrument, t.Quantity, t.Since)
		}
		fmt.Fprintln(&b)
	}

	if len(s.Positions) > 0 || len(s.Cash) > 0 {
		fmt.Fprintf(&b, "Total: %s (unrealized %s)\n\n",
			s.Total(currency), s.TotalUnrealized(currency).SignedString())
	}

	if unpriced := s.Unpriced(); len(unpriced) > 0 {
		fmt.Fprintf(&b, "No price found for: %s.\n", strings.Join(unpriced, ", "))
	}
	return b.String()
}
