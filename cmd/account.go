package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"brokerage"

	"github.com/google/subcommands"
)

// accountCmd holds the flags for the 'account' subcommand.
type accountCmd struct {
	id      string
	name    string
	broker  string
	taxable bool
	list    bool
}

func (*accountCmd) Name() string     { return "account" }
func (*accountCmd) Synopsis() string { return "register a brokerage account or list them" }
func (*accountCmd) Usage() string {
	return `bpt account -id <id> [-name <name>] [-broker <broker>] [-taxable]
bpt account -list

  Registers a new account in the reference data. Accounts are immutable once
  registered.
`
}

func (c *accountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "Unique account identifier used in transactions")
	f.StringVar(&c.name, "name", "", "Human-friendly account name")
	f.StringVar(&c.broker, "broker", "", "Broker holding the account")
	f.BoolVar(&c.taxable, "taxable", false, "Mark the account as taxable")
	f.BoolVar(&c.list, "list", false, "List registered accounts")
}

func (c *accountCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
		for a := range reg.Accounts() {
			fmt.Printf("%s\t%s\t%s\n", a.ID(), a.Broker(), a.Name())
		}
		return subcommands.ExitSuccess
	}

	if c.id == "" {
		fmt.Fprintln(os.Stderr, "missing -id")
		return subcommands.ExitUsageError
	}
	account := brokerage.NewAccount(c.id, c.name, c.broker, c.taxable)
	if err := reg.AddAccount(account); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := saveRegistry(cfg, reg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	log := logger()
	log.Info().Str("account", c.id).Msg("account registered")
	return subcommands.ExitSuccess
}
