package brokerage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_MissingFileYieldsDefaults(t *testing.T) {
	c, err := LoadConfig(filepath.Join(t.TempDir(), "brokerage.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if c.MatchingRule() != FIFO {
		t.Errorf("default rule = %v, want FIFO", c.MatchingRule())
	}
	if c.Currency != "USD" || c.GraceDays != 30 {
		t.Errorf("defaults = %+v", c)
	}
}

func TestConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brokerage.yaml")
	want := DefaultConfig(t.TempDir())
	want.Matching = "lifo"
	want.VoidTransfers = []string{"g1"}
	if err := SaveConfig(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.MatchingRule() != LIFO || len(got.VoidTransfers) != 1 {
		t.Errorf("got %+v, want %+v", got, want)
	}
	opts := got.BookOptions()
	if opts.Rule != LIFO || opts.GraceDays != 30 || len(opts.VoidTransfers) != 1 {
		t.Errorf("BookOptions = %+v", opts)
	}
}

func TestConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brokerage.yaml")
	if err := os.WriteFile(path, []byte("currency: EUR\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Currency != "EUR" {
		t.Errorf("currency = %q, want EUR", c.Currency)
	}
	if c.GraceDays != 30 || c.Matching != "fifo" {
		t.Errorf("unset fields lost their defaults: %+v", c)
	}
}
