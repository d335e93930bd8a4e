package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"brokerage"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// addCmd holds the flags for the 'add' subcommand.
type addCmd struct {
	date       string
	account    string
	kind       string
	instrument string
	quantity   string
	price      string
	fees       string
	amount     string
	group      string
	lots       string
	notes      string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "append a transaction to the ledger" }
func (*addCmd) Usage() string {
	return `bpt add -a <account> -k <kind> [-s <symbol>] [-q <quantity>] [-p <price>] [flags]

  Validates a transaction and appends it to the ledger. The ledger is
  append-only: corrections are new reversing transactions. A disposal
  exceeding the open quantity is rejected whole.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", brokerage.Today().String(), "Transaction date")
	f.StringVar(&c.account, "a", "", "Account id")
	f.StringVar(&c.kind, "k", "", "Transaction kind (buy, sell, dividend, ...)")
	f.StringVar(&c.instrument, "s", "", "Instrument symbol")
	f.StringVar(&c.quantity, "q", "", "Signed quantity: positive opens, negative closes")
	f.StringVar(&c.price, "p", "", "Unit price")
	f.StringVar(&c.fees, "fees", "", "Transaction fees")
	f.StringVar(&c.amount, "amount", "", "Total amount, derived from quantity and price when omitted")
	f.StringVar(&c.group, "group", "", "Transfer group id, required for transfer legs")
	f.StringVar(&c.lots, "lots", "", "Comma-separated lot ids for specific-lot matching")
	f.StringVar(&c.notes, "notes", "", "Free-form note")
}

func (c *addCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	tx, status := c.transaction()
	if status != subcommands.ExitSuccess {
		return status
	}

	id, book, err := brokerage.Commit(ledger, cfg.BookOptions(), tx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := saveLedger(cfg, ledger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	log := logger()
	log.Info().Str("id", id.String()).Str("kind", string(tx.Kind)).Msg("transaction committed")
	for _, w := range book.Warnings() {
		log.Warn().Msg(w.Error())
	}
	return subcommands.ExitSuccess
}

// transaction builds the transaction from the flags. Validation proper
// happens in the ledger.
func (c *addCmd) transaction() (brokerage.Transaction, subcommands.ExitStatus) {
	var tx brokerage.Transaction
	var err error

	tx.Date, err = brokerage.ParseDate(c.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return tx, subcommands.ExitUsageError
	}
	tx.Account = c.account
	tx.Kind = brokerage.Kind(c.kind)
	tx.Instrument = c.instrument
	tx.TransferGroup = c.group
	tx.Notes = c.notes
	if c.lots != "" {
		tx.Lots = strings.Split(c.lots, ",")
	}

	parse := func(name, s string) (decimal.Decimal, subcommands.ExitStatus) {
		if s == "" {
			return decimal.Decimal{}, subcommands.ExitSuccess
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid %s %q: %v\n", name, s, err)
			return d, subcommands.ExitUsageError
		}
		return d, subcommands.ExitSuccess
	}

	qty, status := parse("quantity", c.quantity)
	if status != subcommands.ExitSuccess {
		return tx, status
	}
	tx.Quantity = brokerage.Q(qty)

	// The currency is resolved during validation from the instrument.
	price, status := parse("price", c.price)
	if status != subcommands.ExitSuccess {
		return tx, status
	}
	tx.Price = brokerage.M(price, "")

	fees, status := parse("fees", c.fees)
	if status != subcommands.ExitSuccess {
		return tx, status
	}
	tx.Fees = brokerage.M(fees, "")

	amount, status := parse("amount", c.amount)
	if status != subcommands.ExitSuccess {
		return tx, status
	}
	tx.Amount = brokerage.M(amount, "")

	return tx, subcommands.ExitSuccess
}
