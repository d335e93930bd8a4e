package renderer

import (
	"fmt"
	"strings"

	"brokerage"
)

// PerformanceMarkdown renders a performance computation.
func PerformanceMarkdown(p *brokerage.Performance) string {
	var b strings.Builder
	scope := p.Account
	if scope == "" {
		scope = "Portfolio"
	}
	fmt.Fprintf(&b, "# %s Performance from %s to %s\n\n", scope, p.Range.From, p.Range.To)

	fmt.Fprintln(&b, "| | |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Beginning Value | %s |\n", p.Begin)
	fmt.Fprintf(&b, "| Ending Value | %s |\n", p.End)
	fmt.Fprintf(&b, "| Contributions | %s |\n", p.Contributions())
	fmt.Fprintf(&b, "| Withdrawals | %s |\n", p.Withdrawals())
	fmt.Fprintf(&b, "| Time-Weighted Return | %s |\n", p.TWR.SignedString())
	fmt.Fprintf(&b, "| Internal Rate of Return (annualized) | %s |\n", p.IRR.SignedString())
	fmt.Fprintln(&b)

	if len(p.Flows) > 0 {
		fmt.Fprintln(&b, "## External Flows")
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "| Date | Amount |")
		fmt.Fprintln(&b, "|:---|---:|")
		for _, f := range p.Flows {
			fmt.Fprintf(&b, "| %s | %s |\n", f.On, f.Amount.SignedString())
		}
		fmt.Fprintln(&b)
	}
	return b.String()
}
