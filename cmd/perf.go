package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"brokerage"
	"brokerage/renderer"

	"github.com/google/subcommands"
)

// perfCmd holds the flags for the 'perf' subcommand.
type perfCmd struct {
	period   string
	start    string
	date     string
	account  string
	currency string
}

func (*perfCmd) Name() string     { return "perf" }
func (*perfCmd) Synopsis() string { return "display time-weighted and money-weighted returns" }
func (*perfCmd) Usage() string {
	return `bpt perf [-p <period> | -from <start_date>] [-d <end_date>] [-a <account>] [-c <currency>]

  Computes the time-weighted return (TWR) and the annualized internal rate
  of return (IRR) of the portfolio, or of one account, over a date range.
`
}

func (c *perfCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "p", "year", "Predefined period (day, week, month, quarter, year)")
	f.StringVar(&c.start, "from", "", "Start date of a custom range, overrides -p")
	f.StringVar(&c.date, "d", brokerage.Today().String(), "End date of the range")
	f.StringVar(&c.account, "a", "", "Restrict to one account; empty means the whole portfolio")
	f.StringVar(&c.currency, "c", "", "Reporting currency, defaults to the configured one")
}

func (c *perfCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	reg, err := loadRegistry(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	ledger, err := loadLedger(cfg, reg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	quotes, err := loadQuotes(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	r, err := parseRange(c.period, c.start, c.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	currency := c.currency
	if currency == "" {
		currency = cfg.Currency
	}

	perf, err := brokerage.ComputePerformance(ctx, ledger, cfg.BookOptions(), quotes, c.account, currency, r)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.PerformanceMarkdown(perf))
	return subcommands.ExitSuccess
}
