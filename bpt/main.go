package main

import (
	"context"
	"flag"
	"os"
	"path"

	"brokerage/cmd"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	// Shell completion: this returns immediately unless invoked by the shell.
	completer := &complete.Command{
		Sub: map[string]*complete.Command{
			"account": {Flags: map[string]complete.Predictor{"id": predict.Nothing, "name": predict.Nothing, "broker": predict.Nothing}},
			"declare": {Flags: map[string]complete.Predictor{"s": predict.Nothing, "type": predict.Set{"stock", "etf", "option", "cash"}}},
			"price":   {Flags: map[string]complete.Predictor{"s": predict.Nothing, "p": predict.Nothing}},
			"add":     {Flags: map[string]complete.Predictor{"a": predict.Nothing, "k": predict.Set{"buy", "sell", "dividend", "interest", "deposit", "withdrawal", "fee", "transfer_in", "transfer_out", "option_open", "option_close", "exercise", "assignment", "expire"}}},
			"tx":      {Flags: map[string]complete.Predictor{"p": predict.Set{"day", "week", "month", "quarter", "year"}}},
			"import":  {Flags: map[string]complete.Predictor{"f": predict.Files("*.json")}},
			"fmt":     {},
			"holding": {},
			"gains":   {Flags: map[string]complete.Predictor{"p": predict.Set{"day", "week", "month", "quarter", "year"}}},
			"perf":    {Flags: map[string]complete.Predictor{"p": predict.Set{"day", "week", "month", "quarter", "year"}}},
			"topic":   {},
		},
		Flags: map[string]complete.Predictor{
			"config": predict.Files("*.yaml"),
		},
	}
	completer.Complete("bpt")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(subcommands.HelpCommand(), "")
	commander.Register(subcommands.FlagsCommand(), "")
	commander.Register(subcommands.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
