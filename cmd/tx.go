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

// txCmd holds the flags for the 'tx' subcommand.
type txCmd struct {
	period  string
	start   string
	date    string
	account string
	symbol  string
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list ledger transactions" }
func (*txCmd) Usage() string {
	return `bpt tx [-p <period> | -from <start_date>] [-d <end_date>] [-a <account>] [-s <symbol>]

  Lists the transactions of a date range in chronological order.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "p", "month", "Predefined period (day, week, month, quarter, year)")
	f.StringVar(&c.start, "from", "", "Start date of a custom range, overrides -p")
	f.StringVar(&c.date, "d", brokerage.Today().String(), "End date of the range")
	f.StringVar(&c.account, "a", "", "Only transactions of this account")
	f.StringVar(&c.symbol, "s", "", "Only transactions of this instrument")
}

func (c *txCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	r, err := parseRange(c.period, c.start, c.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	var filters []func(brokerage.Entry) bool
	if c.account != "" {
		filters = append(filters, brokerage.ByAccount(c.account))
	}
	if c.symbol != "" {
		filters = append(filters, brokerage.ByInstrument(c.symbol))
	}

	printMarkdown(renderer.TransactionsMarkdown(ledger, r, filters...))
	return subcommands.ExitSuccess
}
