package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// fmtCmd holds the flags for the 'fmt' subcommand.
type fmtCmd struct{}

func (*fmtCmd) Name() string     { return "fmt" }
func (*fmtCmd) Synopsis() string { return "rewrite the ledger file in canonical form" }
func (*fmtCmd) Usage() string {
	return `bpt fmt

  Reads the ledger and rewrites it sorted chronologically with canonical
  field order, so diffs stay small.
`
}

func (*fmtCmd) SetFlags(f *flag.FlagSet) {}

func (*fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	if err := saveLedger(cfg, ledger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	log := logger()
	log.Info().Int("transactions", ledger.Len()).Msg("ledger rewritten")
	return subcommands.ExitSuccess
}
