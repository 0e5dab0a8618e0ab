package ledger

import (
	"sort"
	"sync"
	"time"

	"github.com/coder/quartz"

	"github.com/omnifarius/blackjack/internal/game"
)

// Memory is an in-process Bank. The accounts map is guarded by mu; each
// account carries its own lock so a read-check-write on one player's
// balance is a single atomic step without serializing unrelated players.
type Memory struct {
	mu       sync.RWMutex
	accounts map[game.PlayerID]*memAccount
	clock    quartz.Clock
	payday   PaydayPolicy
}

type memAccount struct {
	mu         sync.Mutex
	balance    int
	lastPayday time.Time
}

// NewMemory creates an empty in-memory bank. Pass nil to use the real
// clock for payday cooldowns.
func NewMemory(clock quartz.Clock) *Memory {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Memory{
		accounts: make(map[game.PlayerID]*memAccount),
		clock:    clock,
		payday:   DefaultPaydayPolicy(),
	}
}

// SetPaydayPolicy overrides the payday faucet settings.
func (m *Memory) SetPaydayPolicy(p PaydayPolicy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payday = p
}

func (m *Memory) account(player game.PlayerID) (*memAccount, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acct, ok := m.accounts[player]
	return acct, ok
}

// Register opens an account with the starting balance.
func (m *Memory) Register(player game.PlayerID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[player]; ok {
		return 0, ErrAccountExists
	}
	m.accounts[player] = &memAccount{balance: StartingBalance}
	return StartingBalance, nil
}

// AccountExists reports whether the player holds an account.
func (m *Memory) AccountExists(player game.PlayerID) bool {
	_, ok := m.account(player)
	return ok
}

// Balance returns the player's balance.
func (m *Memory) Balance(player game.PlayerID) (int, error) {
	acct, ok := m.account(player)
	if !ok {
		return 0, ErrNoAccount
	}
	acct.mu.Lock()
	defer acct.mu.Unlock()
	return acct.balance, nil
}

// CanSpend reports whether the player holds an account with at least the
// given balance.
func (m *Memory) CanSpend(player game.PlayerID, amount int) bool {
	acct, ok := m.account(player)
	if !ok {
		return false
	}
	acct.mu.Lock()
	defer acct.mu.Unlock()
	return acct.balance >= amount
}

// Deposit credits the player's account.
func (m *Memory) Deposit(player game.PlayerID, amount int) error {
	if amount <= 0 {
		return ErrBadAmount
	}
	acct, ok := m.account(player)
	if !ok {
		return ErrNoAccount
	}
	acct.mu.Lock()
	defer acct.mu.Unlock()
	acct.balance += amount
	return nil
}

// Withdraw debits the player's account, failing without mutation if the
// balance cannot cover the amount.
func (m *Memory) Withdraw(player game.PlayerID, amount int) error {
	if amount <= 0 {
		return ErrBadAmount
	}
	acct, ok := m.account(player)
	if !ok {
		return ErrNoAccount
	}
	acct.mu.Lock()
	defer acct.mu.Unlock()
	if acct.balance < amount {
		return ErrInsufficientFunds
	}
	acct.balance -= amount
	return nil
}

// Payday credits the faucet amount if the cooldown has elapsed, and
// returns the new balance.
func (m *Memory) Payday(player game.PlayerID) (int, error) {
	m.mu.RLock()
	policy := m.payday
	m.mu.RUnlock()

	acct, ok := m.account(player)
	if !ok {
		return 0, ErrNoAccount
	}
	acct.mu.Lock()
	defer acct.mu.Unlock()
	now := m.clock.Now()
	if !acct.lastPayday.IsZero() && now.Sub(acct.lastPayday) < policy.Cooldown {
		return acct.balance, ErrPaydayTooSoon
	}
	acct.lastPayday = now
	acct.balance += policy.Credits
	return acct.balance, nil
}

// Transfer moves credits between two accounts. Both account locks are
// taken in player-ID order so concurrent opposing transfers cannot
// deadlock.
func (m *Memory) Transfer(from, to game.PlayerID, amount int) error {
	if from == to {
		return ErrSelfTransfer
	}
	if amount <= 0 {
		return ErrBadAmount
	}
	src, ok := m.account(from)
	if !ok {
		return ErrNoAccount
	}
	dst, ok := m.account(to)
	if !ok {
		return ErrNoAccount
	}

	first, second := src, dst
	if to < from {
		first, second = dst, src
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	if src.balance < amount {
		return ErrInsufficientFunds
	}
	src.balance -= amount
	dst.balance += amount
	return nil
}

// Leaders returns the top balances in descending order.
func (m *Memory) Leaders(top int) ([]Entry, error) {
	if top < 1 {
		top = 10
	}
	m.mu.RLock()
	entries := make([]Entry, 0, len(m.accounts))
	for player, acct := range m.accounts {
		acct.mu.Lock()
		entries = append(entries, Entry{Player: player, Balance: acct.balance})
		acct.mu.Unlock()
	}
	m.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Balance != entries[j].Balance {
			return entries[i].Balance > entries[j].Balance
		}
		return entries[i].Player < entries[j].Player
	})
	if len(entries) > top {
		entries = entries[:top]
	}
	return entries, nil
}
