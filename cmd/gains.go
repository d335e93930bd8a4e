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

// gainsCmd holds the flags for the 'gains' subcommand.
type gainsCmd struct {
	period string
	start  string
	date   string
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "display realized gains and income for a period" }
func (*gainsCmd) Usage() string {
	return `bpt gains [-p <period> | -from <start_date>] [-d <end_date>]

  Displays the realized P&L records of the period, one per consumed lot with
  its holding period, plus dividend, interest and fee lines.
`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "p", "year", "Predefined period (day, week, month, quarter, year)")
	f.StringVar(&c.start, "from", "", "Start date of a custom range, overrides -p")
	f.StringVar(&c.date, "d", brokerage.Today().String(), "End date of the range")
}

func (c *gainsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	opts := cfg.BookOptions()
	opts.AsOf = r.To
	book, err := brokerage.NewBook(ledger, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	log := logger()
	for _, w := range book.Warnings() {
		log.Warn().Msg(w.Error())
	}

	printMarkdown(renderer.GainsMarkdown(book, r, opts.Rule))
	return subcommands.ExitSuccess
}
