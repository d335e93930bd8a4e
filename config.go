package brokerage

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk settings of a brokerage workspace: where the files
// live and how disposals match lots. It is deliberately small; everything
// else is per-command flags.
type Config struct {
	// LedgerFile is the JSONL transaction store.
	LedgerFile string `yaml:"ledger"`
	// RegistryFile is the accounts-and-instruments reference file.
	RegistryFile string `yaml:"registry"`
	// QuotesFile is the JSONL price store.
	QuotesFile string `yaml:"quotes"`
	// Matching names the default lot matching rule: fifo, lifo or specific.
	Matching string `yaml:"matching"`
	// Currency is the reporting currency for valuations and performance.
	Currency string `yaml:"currency"`
	// GraceDays is the transfer grace window in days.
	GraceDays int `yaml:"graceDays"`
	// VoidTransfers lists abandoned transfer-group ids.
	VoidTransfers []string `yaml:"voidTransfers,omitempty"`
}

// DefaultConfig returns the settings used when no config file exists, rooted
// in the given directory.
func DefaultConfig(dir string) Config {
	return Config{
		LedgerFile:   filepath.Join(dir, "transactions.jsonl"),
		RegistryFile: filepath.Join(dir, "registry.json"),
		QuotesFile:   filepath.Join(dir, "quotes.jsonl"),
		Matching:     "fifo",
		Currency:     "USD",
		GraceDays:    30,
	}
}

// LoadConfig reads the YAML settings file. A missing file yields the
// defaults rooted next to the requested path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(filepath.Dir(path)), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("cannot read config %q: %w", path, err)
	}
	c := DefaultConfig(filepath.Dir(path))
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("cannot parse config %q: %w", path, err)
	}
	return c, nil
}

// SaveConfig writes the settings as YAML.
func SaveConfig(path string, c Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %q: %w", path, err)
	}
	return nil
}

// MatchingRule parses the configured rule, defaulting to FIFO.
func (c Config) MatchingRule() MatchingRule {
	rule, err := ParseMatchingRule(c.Matching)
	if err != nil {
		return FIFO
	}
	return rule
}

// BookOptions derives replay options from the settings.
func (c Config) BookOptions() BookOptions {
	return BookOptions{
		Rule:          c.MatchingRule(),
		GraceDays:     c.GraceDays,
		VoidTransfers: c.VoidTransfers,
	}
}
