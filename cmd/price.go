package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"brokerage"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// priceCmd holds the flags for the 'price' subcommand.
type priceCmd struct {
	symbol   string
	date     string
	price    string
	currency string
}

func (*priceCmd) Name() string     { return "price" }
func (*priceCmd) Synopsis() string { return "record a closing price for an instrument" }
func (*priceCmd) Usage() string {
	return `bpt price -s <symbol> -p <price> [-d <date>] [-c <currency>]

  Records a quote in the price store. Valuations use the latest quote on or
  before the requested date.
`
}

func (c *priceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "Instrument symbol")
	f.StringVar(&c.date, "d", brokerage.Today().String(), "Quote date")
	f.StringVar(&c.price, "p", "", "Price per unit")
	f.StringVar(&c.currency, "c", "", "Quote currency, defaults to the instrument's")
}

func (c *priceCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if c.symbol == "" || c.price == "" {
		fmt.Fprintln(os.Stderr, "missing -s symbol or -p price")
		return subcommands.ExitUsageError
	}
	on, err := brokerage.ParseDate(c.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	value, err := decimal.NewFromString(c.price)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid price %q: %v\n", c.price, err)
		return subcommands.ExitUsageError
	}

	ccy := c.currency
	if ccy == "" {
		reg, err := loadRegistry(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		inst := reg.Instrument(c.symbol)
		if inst == nil {
			fmt.Fprintf(os.Stderr, "instrument %q not declared and no -c currency given\n", c.symbol)
			return subcommands.ExitUsageError
		}
		ccy = inst.Currency()
	}

	quotes, err := loadQuotes(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	quotes.Set(c.symbol, on, brokerage.M(value, ccy))
	if err := saveQuotes(cfg, quotes); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	log := logger()
	log.Info().Str("instrument", c.symbol).Str("date", on.String()).Msg("quote recorded")
	return subcommands.ExitSuccess
}
