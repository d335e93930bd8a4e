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

// holdingCmd holds the flags for the 'holding' subcommand.
type holdingCmd struct {
	date    string
	account string
}

func (*holdingCmd) Name() string     { return "holding" }
func (*holdingCmd) Synopsis() string { return "display the valued holdings at a date" }
func (*holdingCmd) Usage() string {
	return `bpt holding [-d <date>] [-a <account>]

  Displays every open position with its market value at the given date,
  cash balances, and transfers still pending. Positions without a quote are
  reported with their quantity and cost basis only.
`
}

func (c *holdingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", brokerage.Today().String(), "Date for the holdings report")
	f.StringVar(&c.account, "a", "", "Restrict the report to one account")
}

func (c *holdingCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	on, err := brokerage.ParseDate(c.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

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

	snap, err := brokerage.ValueAsOf(ctx, ledger, cfg.BookOptions(), quotes, on)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if c.account != "" {
		snap = snap.ByAccount(c.account)
	}

	printMarkdown(renderer.HoldingMarkdown(snap, cfg.Currency))
	return subcommands.ExitSuccess
}
