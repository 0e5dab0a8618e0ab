package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/coder/quartz"
	_ "modernc.org/sqlite"

	"github.com/omnifarius/blackjack/internal/game"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    player      TEXT PRIMARY KEY,
    balance     INTEGER NOT NULL,
    last_payday INTEGER NOT NULL DEFAULT 0
);
`

// Store is a SQLite-backed Bank. Conditional updates inside transactions
// make each read-check-write on a player's balance atomic, which is what
// keeps two sessions settling the same player honest.
type Store struct {
	sqlDB  *sql.DB
	clock  quartz.Clock
	payday PaydayPolicy
}

// Open opens (or creates) a SQLite bank at path. Pass a nil clock to use
// the real clock for payday cooldowns.
func Open(path string, clock quartz.Clock) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("ledger path is required")
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ensure accounts table: %w", err)
	}
	return &Store{sqlDB: sqlDB, clock: clock, payday: DefaultPaydayPolicy()}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SetPaydayPolicy overrides the payday faucet settings.
func (s *Store) SetPaydayPolicy(p PaydayPolicy) { s.payday = p }

// Register opens an account with the starting balance.
func (s *Store) Register(player game.PlayerID) (int, error) {
	res, err := s.sqlDB.Exec(
		`INSERT INTO accounts (player, balance) VALUES (?, ?) ON CONFLICT (player) DO NOTHING`,
		string(player), StartingBalance,
	)
	if err != nil {
		return 0, fmt.Errorf("register account: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("register account: %w", err)
	}
	if rows == 0 {
		return 0, ErrAccountExists
	}
	return StartingBalance, nil
}

// AccountExists reports whether the player holds an account.
func (s *Store) AccountExists(player game.PlayerID) bool {
	_, err := s.Balance(player)
	return err == nil
}

// Balance returns the player's balance.
func (s *Store) Balance(player game.PlayerID) (int, error) {
	var balance int
	err := s.sqlDB.QueryRow(
		`SELECT balance FROM accounts WHERE player = ?`, string(player),
	).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNoAccount
	}
	if err != nil {
		return 0, fmt.Errorf("query balance: %w", err)
	}
	return balance, nil
}

// CanSpend reports whether the player's balance covers the amount.
func (s *Store) CanSpend(player game.PlayerID, amount int) bool {
	balance, err := s.Balance(player)
	return err == nil && balance >= amount
}

// Deposit credits the player's account.
func (s *Store) Deposit(player game.PlayerID, amount int) error {
	if amount <= 0 {
		return ErrBadAmount
	}
	res, err := s.sqlDB.Exec(
		`UPDATE accounts SET balance = balance + ? WHERE player = ?`,
		amount, string(player),
	)
	if err != nil {
		return fmt.Errorf("deposit: %w", err)
	}
	return requireRow(res)
}

// Withdraw debits the player's account, failing without mutation if the
// balance cannot cover the amount.
func (s *Store) Withdraw(player game.PlayerID, amount int) error {
	if amount <= 0 {
		return ErrBadAmount
	}
	res, err := s.sqlDB.Exec(
		`UPDATE accounts SET balance = balance - ? WHERE player = ? AND balance >= ?`,
		amount, string(player), amount,
	)
	if err != nil {
		return fmt.Errorf("withdraw: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("withdraw: %w", err)
	}
	if rows == 0 {
		if !s.AccountExists(player) {
			return ErrNoAccount
		}
		return ErrInsufficientFunds
	}
	return nil
}

// Payday credits the faucet amount if the cooldown has elapsed, and
// returns the new balance.
func (s *Store) Payday(player game.PlayerID) (int, error) {
	now := s.clock.Now().UnixMilli()
	cutoff := now - s.payday.Cooldown.Milliseconds()

	ctx := context.Background()
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("payday: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var balance int
	var lastPayday int64
	err = tx.QueryRow(
		`SELECT balance, last_payday FROM accounts WHERE player = ?`, string(player),
	).Scan(&balance, &lastPayday)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNoAccount
	}
	if err != nil {
		return 0, fmt.Errorf("payday: %w", err)
	}
	// last_payday of zero means the account has never drawn a payday
	if lastPayday != 0 && lastPayday > cutoff {
		return balance, ErrPaydayTooSoon
	}
	balance += s.payday.Credits
	if _, err := tx.Exec(
		`UPDATE accounts SET balance = ?, last_payday = ? WHERE player = ?`,
		balance, now, string(player),
	); err != nil {
		return 0, fmt.Errorf("payday: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("payday: %w", err)
	}
	return balance, nil
}

// Transfer moves credits between two accounts in one transaction.
func (s *Store) Transfer(from, to game.PlayerID, amount int) error {
	if from == to {
		return ErrSelfTransfer
	}
	if amount <= 0 {
		return ErrBadAmount
	}

	ctx := context.Background()
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRow(`SELECT 1 FROM accounts WHERE player = ?`, string(to)).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoAccount
	}
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}

	res, err := tx.Exec(
		`UPDATE accounts SET balance = balance - ? WHERE player = ? AND balance >= ?`,
		amount, string(from), amount,
	)
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	if rows == 0 {
		var srcExists int
		err = tx.QueryRow(`SELECT 1 FROM accounts WHERE player = ?`, string(from)).Scan(&srcExists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNoAccount
		}
		return ErrInsufficientFunds
	}
	if _, err := tx.Exec(
		`UPDATE accounts SET balance = balance + ? WHERE player = ?`,
		amount, string(to),
	); err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	return nil
}

// Leaders returns the top balances in descending order.
func (s *Store) Leaders(top int) ([]Entry, error) {
	if top < 1 {
		top = 10
	}
	rows, err := s.sqlDB.Query(
		`SELECT player, balance FROM accounts ORDER BY balance DESC, player ASC LIMIT ?`, top,
	)
	if err != nil {
		return nil, fmt.Errorf("query leaders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var player string
		var balance int
		if err := rows.Scan(&player, &balance); err != nil {
			return nil, fmt.Errorf("scan leader: %w", err)
		}
		entries = append(entries, Entry{Player: game.PlayerID(player), Balance: balance})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaders: %w", err)
	}
	// Stable order for equal balances regardless of collation
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Balance != entries[j].Balance {
			return entries[i].Balance > entries[j].Balance
		}
		return entries[i].Player < entries[j].Player
	})
	return entries, nil
}

func requireRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNoAccount
	}
	return nil
}
