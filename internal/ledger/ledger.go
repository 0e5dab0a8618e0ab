// Package ledger holds player balances, the one resource shared across
// sessions. Balance mutations are atomic per player so concurrent play
// at two tables cannot double-spend.
package ledger

import (
	"errors"
	"time"

	"github.com/omnifarius/blackjack/internal/game"
)

// StartingBalance is credited when an account is opened.
const StartingBalance = 1000

var (
	// ErrNoAccount is returned for operations on an unregistered player
	ErrNoAccount = errors.New("no ledger account")

	// ErrAccountExists is returned when registering twice
	ErrAccountExists = errors.New("account already exists")

	// ErrInsufficientFunds is returned when a withdrawal or transfer
	// exceeds the balance
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrPaydayTooSoon is returned when the payday cooldown has not elapsed
	ErrPaydayTooSoon = errors.New("payday cooldown has not elapsed")

	// ErrBadAmount is returned for zero or negative amounts
	ErrBadAmount = errors.New("amount must be positive")

	// ErrSelfTransfer is returned when transferring to oneself
	ErrSelfTransfer = errors.New("cannot transfer to yourself")
)

// Ledger is the balance surface the session engine depends on. All
// operations are synchronous and strongly consistent from the engine's
// viewpoint.
type Ledger interface {
	AccountExists(player game.PlayerID) bool
	Balance(player game.PlayerID) (int, error)
	CanSpend(player game.PlayerID, amount int) bool
	Deposit(player game.PlayerID, amount int) error
	Withdraw(player game.PlayerID, amount int) error
}

// Bank extends Ledger with the account-keeping operations the command
// layer offers players directly.
type Bank interface {
	Ledger
	Register(player game.PlayerID) (int, error)
	Payday(player game.PlayerID) (int, error)
	Transfer(from, to game.PlayerID, amount int) error
	Leaders(top int) ([]Entry, error)
}

// Entry is one row of the leader board.
type Entry struct {
	Player  game.PlayerID
	Balance int
}

// PaydayPolicy configures the free-credit faucet.
type PaydayPolicy struct {
	Credits  int
	Cooldown time.Duration
}

// DefaultPaydayPolicy matches the table defaults: 1000 credits at most
// once every five minutes.
func DefaultPaydayPolicy() PaydayPolicy {
	return PaydayPolicy{Credits: 1000, Cooldown: 5 * time.Minute}
}
