package main

import "fmt"

// LeadersCmd prints the leaderboard from a sqlite ledger without
// starting any tables.
type LeadersCmd struct {
	DB  string `kong:"required,help='SQLite ledger path'"`
	Top int    `kong:"default='10',help='Number of players to show'"`
}

func (c *LeadersCmd) Run(cli *CLI) error {
	logger := setupLogger(cli.Debug)

	bank, closeBank, err := openBank(c.DB, logger)
	if err != nil {
		return err
	}
	defer closeBank()

	if c.Top < 1 {
		return fmt.Errorf("top must be at least 1")
	}
	return printLeaders(bank, c.Top)
}
