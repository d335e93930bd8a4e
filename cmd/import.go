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

// importCmd holds the flags for the 'import' subcommand.
type importCmd struct {
	file    string
	records string
	dryRun  bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import transactions from a broker JSON export" }
func (*importCmd) Usage() string {
	return `bpt import -f <export.json> [-records <jsonpath>] [-n]

  Reads a broker journal export and appends its rows to the ledger. Rows
  with unsupported actions (stock splits, for instance) or failing
  validation are reported individually; the rest of the batch proceeds.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "Broker export file (JSON)")
	f.StringVar(&c.records, "records", "", "JSONPath selecting the journal rows, defaults to $.transactions[*]")
	f.BoolVar(&c.dryRun, "n", false, "Validate only, do not write the ledger")
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		fmt.Fprintln(os.Stderr, "missing -f export file")
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

	in, err := os.Open(c.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open export %q: %v\n", c.file, err)
		return subcommands.ExitFailure
	}
	defer in.Close()

	mapping := brokerage.DefaultMapping()
	if c.records != "" {
		mapping.Records = c.records
	}

	accepted, rejected, err := brokerage.Import(in, mapping, ledger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	log := logger()
	log.Info().Int("accepted", len(accepted)).Int("rejected", len(rejected)).Msg("import done")
	if len(rejected) > 0 {
		printMarkdown(renderer.RejectedMarkdown(rejected))
	}

	if c.dryRun {
		log.Info().Msg("dry run, ledger not written")
		return subcommands.ExitSuccess
	}
	if err := saveLedger(cfg, ledger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
