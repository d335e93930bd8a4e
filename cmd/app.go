// Package cmd implements the CLI application to manage a brokerage ledger.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"brokerage"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package calls Register() to declare subcommands, and Execute() on the
// user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&accountCmd{}, "registry")
	c.Register(&declareCmd{}, "registry")
	c.Register(&priceCmd{}, "registry")

	c.Register(&addCmd{}, "transactions")
	c.Register(&txCmd{}, "transactions")
	c.Register(&importCmd{}, "transactions")
	c.Register(&fmtCmd{}, "transactions")

	c.Register(&holdingCmd{}, "reports")
	c.Register(&gainsCmd{}, "reports")
	c.Register(&perfCmd{}, "reports")

	c.Register(&topicCmd{}, "documentation")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to
// use global variables.

var configFile = flag.String("config", "brokerage.yaml", "Path to the workspace settings file (YAML)")
var verbose = flag.Bool("v", false, "Enable debug logging")

// logger returns the application logger, writing human-readable lines to stderr.
func logger() zerolog.Logger {
	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// loadConfig reads the workspace settings, falling back to defaults when the
// file does not exist.
func loadConfig() (brokerage.Config, error) {
	return brokerage.LoadConfig(*configFile)
}

// loadRegistry reads the accounts-and-instruments file. A missing file yields
// an empty registry so the first "account" or "declare" can create it.
func loadRegistry(cfg brokerage.Config) (*brokerage.Registry, error) {
	f, err := os.Open(cfg.RegistryFile)
	if errors.Is(err, fs.ErrNotExist) {
		return brokerage.NewRegistry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open registry %q: %w", cfg.RegistryFile, err)
	}
	defer f.Close()
	return brokerage.DecodeRegistry(f)
}

// saveRegistry writes the registry back to the workspace.
func saveRegistry(cfg brokerage.Config, reg *brokerage.Registry) error {
	f, err := os.Create(cfg.RegistryFile)
	if err != nil {
		return fmt.Errorf("cannot create registry %q: %w", cfg.RegistryFile, err)
	}
	defer f.Close()
	return brokerage.EncodeRegistry(f, reg)
}

// loadLedger reads the transaction store validated against the registry. A
// missing file yields an empty ledger.
func loadLedger(cfg brokerage.Config, reg *brokerage.Registry) (*brokerage.Ledger, error) {
	f, err := os.Open(cfg.LedgerFile)
	if errors.Is(err, fs.ErrNotExist) {
		return brokerage.NewLedger(reg), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open ledger %q: %w", cfg.LedgerFile, err)
	}
	defer f.Close()
	return brokerage.DecodeLedger(f, reg)
}

// saveLedger rewrites the whole transaction store in canonical order.
func saveLedger(cfg brokerage.Config, ledger *brokerage.Ledger) error {
	f, err := os.Create(cfg.LedgerFile)
	if err != nil {
		return fmt.Errorf("cannot create ledger %q: %w", cfg.LedgerFile, err)
	}
	defer f.Close()
	return brokerage.EncodeLedger(f, ledger)
}

// loadQuotes reads the price store. A missing file yields an empty table.
func loadQuotes(cfg brokerage.Config) (*brokerage.QuoteTable, error) {
	f, err := os.Open(cfg.QuotesFile)
	if errors.Is(err, fs.ErrNotExist) {
		return brokerage.NewQuoteTable(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open quotes %q: %w", cfg.QuotesFile, err)
	}
	defer f.Close()
	return brokerage.DecodeQuotes(f)
}

// saveQuotes writes the price store back to the workspace.
func saveQuotes(cfg brokerage.Config, quotes *brokerage.QuoteTable) error {
	f, err := os.Create(cfg.QuotesFile)
	if err != nil {
		return fmt.Errorf("cannot create quotes %q: %w", cfg.QuotesFile, err)
	}
	defer f.Close()
	return brokerage.EncodeQuotes(f, quotes)
}

// printMarkdown renders markdown for the terminal, falling back to the raw
// text when the terminal renderer cannot be built.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(0),
	)
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
