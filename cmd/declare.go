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

// declareCmd holds the flags for the 'declare' subcommand.
type declareCmd struct {
	symbol     string
	name       string
	typ        string
	currency   string
	underlying string
	right      string
	strike     string
	expiry     string
	multiplier int64
	list       bool
}

func (*declareCmd) Name() string     { return "declare" }
func (*declareCmd) Synopsis() string { return "declare an instrument in the reference data" }
func (*declareCmd) Usage() string {
	return `bpt declare -s <symbol> -type <stock|etf|option|cash> [-c <currency>] [option terms]
bpt declare -list

  Declares an instrument so transactions can reference it. Options carry
  contract terms: -underlying, -right call|put, -strike, -expiry, -multiplier.
`
}

func (c *declareCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "Instrument symbol as used by the broker")
	f.StringVar(&c.name, "name", "", "Human-friendly description")
	f.StringVar(&c.typ, "type", "stock", "Instrument type: stock, etf, option or cash")
	f.StringVar(&c.currency, "c", "USD", "Trading currency")
	f.StringVar(&c.underlying, "underlying", "", "Underlying symbol (options)")
	f.StringVar(&c.right, "right", "", "Contract right: call or put (options)")
	f.StringVar(&c.strike, "strike", "", "Strike price (options)")
	f.StringVar(&c.expiry, "expiry", "", "Expiry date YYYY-MM-DD (options)")
	f.Int64Var(&c.multiplier, "multiplier", 0, "Contract multiplier, defaults to 100 (options)")
	f.BoolVar(&c.list, "list", false, "List declared instruments")
}

func (c *declareCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	if c.list {
		for inst := range reg.Instruments() {
			fmt.Printf("%s\t%s\t%s\t%s\n", inst.Symbol(), inst.Type(), inst.Currency(), inst.Name())
		}
		return subcommands.ExitSuccess
	}

	if c.symbol == "" {
		fmt.Fprintln(os.Stderr, "missing -s symbol")
		return subcommands.ExitUsageError
	}
	typ, err := brokerage.ParseInstrumentType(c.typ)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	var inst brokerage.Instrument
	switch typ {
	case brokerage.Option:
		strike, err := decimal.NewFromString(c.strike)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid strike %q: %v\n", c.strike, err)
			return subcommands.ExitUsageError
		}
		expiry, err := brokerage.ParseDate(c.expiry)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
		inst = brokerage.NewOption(c.symbol, c.underlying,
			brokerage.OptionRight(c.right), brokerage.M(strike, c.currency), expiry, c.multiplier)
	case brokerage.Cash:
		inst = brokerage.NewCash(c.currency)
	default:
		inst = brokerage.NewEquity(c.symbol, c.name, typ, c.currency)
	}

	if err := reg.AddInstrument(inst); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := saveRegistry(cfg, reg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	log := logger()
	log.Info().Str("instrument", inst.Symbol()).Msg("instrument declared")
	return subcommands.ExitSuccess
}
