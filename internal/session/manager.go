package session

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/omnifarius/blackjack/internal/game"
	"github.com/omnifarius/blackjack/internal/ledger"
)

// ErrNoTable is returned for operations addressed to a table with no
// running session.
var ErrNoTable = errors.New("no session for table")

// Manager owns the set of live sessions, one per table. Joining a table
// with no session creates and starts one; a session that terminates is
// reaped from the set.
type Manager struct {
	cfg       Config
	ledger    ledger.Ledger
	announcer Announcer
	logger    *log.Logger
	opts      []Option

	mu       sync.RWMutex
	sessions map[game.TableID]*Session
}

// NewManager creates a session manager. The options are applied to
// every session it creates.
func NewManager(cfg Config, lgr ledger.Ledger, announcer Announcer, logger *log.Logger, opts ...Option) *Manager {
	return &Manager{
		cfg:       cfg,
		ledger:    lgr,
		announcer: announcer,
		logger:    logger.WithPrefix("manager"),
		opts:      opts,
		sessions:  make(map[game.TableID]*Session),
	}
}

// Join seats the player at the table, creating the session on first
// join. Returns the seat taken.
func (m *Manager) Join(table game.TableID, player game.PlayerID, seat int) (int, error) {
	m.mu.Lock()
	sess, ok := m.sessions[table]
	if ok {
		m.mu.Unlock()
		return sess.Join(player, seat)
	}

	sess = NewSession(table, m.cfg, m.ledger, m.announcer, m.logger, m.opts...)
	taken, err := sess.Join(player, seat)
	if err != nil {
		m.mu.Unlock()
		return 0, err
	}
	m.sessions[table] = sess
	m.mu.Unlock()

	m.logger.Info("session created", "table", table, "player", player)
	sess.Start()
	go m.reap(sess)
	return taken, nil
}

// reap removes a terminated session from the set.
func (m *Manager) reap(sess *Session) {
	<-sess.Done()
	m.mu.Lock()
	if m.sessions[sess.Table()] == sess {
		delete(m.sessions, sess.Table())
	}
	m.mu.Unlock()
	m.logger.Info("session removed", "table", sess.Table())
}

// Get returns the session for a table, if any.
func (m *Manager) Get(table game.TableID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[table]
	return sess, ok
}

// List returns the tables with live sessions, sorted.
func (m *Manager) List() []game.TableID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tables := make([]game.TableID, 0, len(m.sessions))
	for table := range m.sessions {
		tables = append(tables, table)
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i] < tables[j] })
	return tables
}

// Leave removes the player from the table's session.
func (m *Manager) Leave(table game.TableID, player game.PlayerID) error {
	sess, ok := m.Get(table)
	if !ok {
		return ErrNoTable
	}
	return sess.Leave(player)
}

// SubmitBet routes a bet to the table's session.
func (m *Manager) SubmitBet(table game.TableID, player game.PlayerID, amount int) error {
	sess, ok := m.Get(table)
	if !ok {
		return ErrNoTable
	}
	return sess.SubmitBet(player, amount)
}

// RepeatBet routes a repeat-bet request to the table's session.
func (m *Manager) RepeatBet(table game.TableID, player game.PlayerID) error {
	sess, ok := m.Get(table)
	if !ok {
		return ErrNoTable
	}
	return sess.RepeatBet(player)
}

// SubmitTurnAction routes a turn decision to the table's session.
func (m *Manager) SubmitTurnAction(table game.TableID, player game.PlayerID, action game.Action) error {
	sess, ok := m.Get(table)
	if !ok {
		return ErrNoTable
	}
	return sess.SubmitTurnAction(player, action)
}

// Stop requests a graceful stop of the table's session. The session
// settles any round in flight before terminating.
func (m *Manager) Stop(table game.TableID) error {
	sess, ok := m.Get(table)
	if !ok {
		return ErrNoTable
	}
	sess.Stop()
	return nil
}

// StopAll requests a graceful stop of every session and waits for all
// of them to settle and terminate, or for the context to expire.
func (m *Manager) StopAll(ctx context.Context) error {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	m.mu.RUnlock()

	g, ctx := errgroup.WithContext(ctx)
	for _, sess := range sessions {
		sess.Stop()
		g.Go(func() error {
			select {
			case <-sess.Done():
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}
	return g.Wait()
}
