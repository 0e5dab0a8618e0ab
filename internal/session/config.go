package session

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/omnifarius/blackjack/internal/deck"
)

// Config holds the table rules and timers. All durations are in ticks;
// the session ticks once per second unless overridden for tests.
type Config struct {
	MinBet    int `hcl:"min_bet,optional"`
	MaxBet    int `hcl:"max_bet,optional"`
	DeckCount int `hcl:"decks,optional"`

	// ActivityTimeout is how long the dealer waits for a first bet
	// before closing the table.
	ActivityTimeout int `hcl:"activity_timeout,optional"`
	// BetTimeout is the countdown between the first bet and the deal,
	// during which more players may get in.
	BetTimeout int `hcl:"bet_timeout,optional"`
	// ActiveDelay is the input window for each player decision.
	ActiveDelay int `hcl:"active_delay,optional"`
	// DealerPause is the suspense pause between dealer draws.
	DealerPause int `hcl:"dealer_pause,optional"`
}

type fileConfig struct {
	Table *Config `hcl:"table,block"`
}

// DefaultConfig returns the stock table rules.
func DefaultConfig() Config {
	return Config{
		MinBet:          10,
		MaxBet:          1000,
		DeckCount:       1,
		ActivityTimeout: 45,
		BetTimeout:      10,
		ActiveDelay:     20,
		DealerPause:     2,
	}
}

// LoadConfig loads table configuration from an HCL file. A missing file
// yields the defaults; zero-valued fields are back-filled with defaults
// before validation.
func LoadConfig(filename string) (Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := DefaultConfig()
	if fc.Table != nil {
		cfg = cfg.merged(*fc.Table)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) merged(over Config) Config {
	if over.MinBet != 0 {
		c.MinBet = over.MinBet
	}
	if over.MaxBet != 0 {
		c.MaxBet = over.MaxBet
	}
	if over.DeckCount != 0 {
		c.DeckCount = over.DeckCount
	}
	if over.ActivityTimeout != 0 {
		c.ActivityTimeout = over.ActivityTimeout
	}
	if over.BetTimeout != 0 {
		c.BetTimeout = over.BetTimeout
	}
	if over.ActiveDelay != 0 {
		c.ActiveDelay = over.ActiveDelay
	}
	if over.DealerPause != 0 {
		c.DealerPause = over.DealerPause
	}
	return c
}

// Validate enforces the configuration invariants.
func (c Config) Validate() error {
	if c.MinBet <= 0 {
		return fmt.Errorf("min_bet must be more than 0, got %d", c.MinBet)
	}
	if c.MaxBet < c.MinBet {
		return fmt.Errorf("max_bet must be at least min_bet (%d), got %d", c.MinBet, c.MaxBet)
	}
	if c.DeckCount < deck.MinDecks || c.DeckCount > deck.MaxDecks {
		return fmt.Errorf("decks must be between %d and %d, got %d", deck.MinDecks, deck.MaxDecks, c.DeckCount)
	}
	if c.ActivityTimeout <= 30 {
		return fmt.Errorf("activity_timeout must be more than 30, got %d", c.ActivityTimeout)
	}
	if c.BetTimeout <= 5 {
		return fmt.Errorf("bet_timeout must be more than 5, got %d", c.BetTimeout)
	}
	if c.ActiveDelay <= 10 {
		return fmt.Errorf("active_delay must be more than 10, got %d", c.ActiveDelay)
	}
	if c.DealerPause < 0 {
		return fmt.Errorf("dealer_pause must not be negative, got %d", c.DealerPause)
	}
	return nil
}
