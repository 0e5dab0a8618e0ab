// Package session implements the per-table game loop: betting windows,
// dealing, player turns with splits, dealer resolution and settlement.
// Each session runs on a single goroutine; every inbound action and
// every timer tick is serialized through that goroutine so the state
// machine only ever observes one consistent status at a time.
package session

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/omnifarius/blackjack/internal/deck"
	"github.com/omnifarius/blackjack/internal/game"
	"github.com/omnifarius/blackjack/internal/ledger"
)

// Status is the session lifecycle state.
type Status int

const (
	StatusAwaitingBets Status = iota
	StatusActiveBets
	StatusDealing
	StatusPlayerTurn
	StatusFinishing
	StatusStopping
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusAwaitingBets:
		return "awaiting bets"
	case StatusActiveBets:
		return "active bets"
	case StatusDealing:
		return "dealing"
	case StatusPlayerTurn:
		return "player turn"
	case StatusFinishing:
		return "finishing"
	case StatusStopping:
		return "stopping"
	case StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ErrSessionClosed is returned for actions submitted to a session that
// has already terminated.
var ErrSessionClosed = errors.New("session is closed")

type commandKind int

const (
	cmdBet commandKind = iota
	cmdRepeatBet
	cmdTurn
	cmdJoin
	cmdLeave
)

type cmdResult struct {
	seat int
	err  error
}

type command struct {
	kind   commandKind
	player game.PlayerID
	amount int
	action game.Action
	seat   int
	reply  chan cmdResult
}

func (c command) respond(seat int, err error) {
	c.reply <- cmdResult{seat: seat, err: err}
}

// Option configures a Session.
type Option func(*Session)

// WithClock injects the clock driving all ticks and pauses.
func WithClock(clock quartz.Clock) Option {
	return func(s *Session) { s.clock = clock }
}

// WithTickInterval overrides the one-second logical tick, letting tests
// run the same tick counts in milliseconds.
func WithTickInterval(d time.Duration) Option {
	return func(s *Session) { s.tickEvery = d }
}

// WithShoeFunc overrides how the per-round shoe is built, letting tests
// rig the deal order.
func WithShoeFunc(fn func() (*deck.Shoe, error)) Option {
	return func(s *Session) { s.newShoe = fn }
}

// WithRand injects the shuffle randomness source.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

// Session is the root aggregate for one table. It owns the shoe, the
// current round's hands, the seating map and the round counters. All
// round state below the mutex line is touched only by the Run goroutine.
type Session struct {
	table     game.TableID
	cfg       Config
	ledger    ledger.Ledger
	announcer Announcer
	logger    *log.Logger
	clock     quartz.Clock
	tickEvery time.Duration
	newShoe   func() (*deck.Shoe, error)
	rng       *rand.Rand

	commands chan command
	done     chan struct{}
	stopFlag atomic.Bool

	mu      sync.Mutex
	status  Status
	started bool

	// Round state, owned by the Run goroutine.
	seating    *game.Seating
	shoe       *deck.Shoe
	bets       map[game.PlayerID]int
	betOrder   []game.PlayerID
	lastBets   map[game.PlayerID]int
	hands      map[game.PlayerID][]*game.Hand
	dealer     *game.Hand
	blackjacks map[*game.Hand]bool
	betReady   bool

	// Session counters.
	handsPlayed int
	playerBJs   int
	dealerBJs   int
	snapshots   map[game.PlayerID]int
}

// NewSession creates a session for a table. It does not start the game
// loop; callers seat the first player and then call Start.
func NewSession(table game.TableID, cfg Config, lgr ledger.Ledger, announcer Announcer, logger *log.Logger, opts ...Option) *Session {
	s := &Session{
		table:      table,
		cfg:        cfg,
		ledger:     lgr,
		announcer:  announcer,
		logger:     logger.WithPrefix("session").With("table", table),
		clock:      quartz.NewReal(),
		tickEvery:  time.Second,
		commands:   make(chan command, 16),
		done:       make(chan struct{}),
		status:     StatusAwaitingBets,
		seating:    game.NewSeating(),
		bets:       make(map[game.PlayerID]int),
		lastBets:   make(map[game.PlayerID]int),
		hands:      make(map[game.PlayerID][]*game.Hand),
		blackjacks: make(map[*game.Hand]bool),
		snapshots:  make(map[game.PlayerID]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.newShoe == nil {
		s.newShoe = func() (*deck.Shoe, error) {
			shoe, err := deck.NewShoe(s.cfg.DeckCount, s.rng)
			if err != nil {
				return nil, err
			}
			shoe.Shuffle()
			return shoe, nil
		}
	}
	return s
}

// Table returns the table identity this session serves.
func (s *Session) Table() game.TableID { return s.table }

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Done is closed once the session has terminated and all settlement
// writes have completed.
func (s *Session) Done() <-chan struct{} { return s.done }

// Start launches the game loop.
func (s *Session) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()
	go s.run()
}

// Stop requests a graceful stop, honored at the next tick boundary. A
// round in flight is played out and settled before teardown.
func (s *Session) Stop() {
	s.stopFlag.Store(true)
}

// Join seats a player, falling back to the lowest free seat when no
// specific seat is requested. Safe both before and after Start.
func (s *Session) Join(player game.PlayerID, seat int) (int, error) {
	s.mu.Lock()
	if !s.started {
		defer s.mu.Unlock()
		return s.seating.Join(player, seat)
	}
	s.mu.Unlock()
	res, err := s.send(command{kind: cmdJoin, player: player, seat: seat})
	if err != nil {
		return 0, err
	}
	return res.seat, nil
}

// Leave removes the player's seat. When the last player leaves, the
// session stops after the current round settles.
func (s *Session) Leave(player game.PlayerID) error {
	_, err := s.send(command{kind: cmdLeave, player: player})
	return err
}

// SubmitBet places or replaces the player's bet for the upcoming round.
func (s *Session) SubmitBet(player game.PlayerID, amount int) error {
	_, err := s.send(command{kind: cmdBet, player: player, amount: amount})
	return err
}

// RepeatBet resubmits the player's bet from the previous round.
func (s *Session) RepeatBet(player game.PlayerID) error {
	_, err := s.send(command{kind: cmdRepeatBet, player: player})
	return err
}

// SubmitTurnAction submits a turn decision for the player currently to
// act. Actions from anyone else are rejected with ErrIllegalAction.
func (s *Session) SubmitTurnAction(player game.PlayerID, action game.Action) error {
	_, err := s.send(command{kind: cmdTurn, player: player, action: action})
	return err
}

func (s *Session) send(c command) (cmdResult, error) {
	c.reply = make(chan cmdResult, 1)
	select {
	case s.commands <- c:
	case <-s.done:
		return cmdResult{}, ErrSessionClosed
	}
	select {
	case res := <-c.reply:
		return res, res.err
	case <-s.done:
		return cmdResult{}, ErrSessionClosed
	}
}

func (s *Session) setStatus(st Status) {
	s.mu.Lock()
	prev := s.status
	s.status = st
	s.mu.Unlock()
	if prev != st {
		s.logger.Debug("status change", "from", prev, "to", st)
	}
}

func (s *Session) stopping() bool { return s.stopFlag.Load() }

func (s *Session) announce(format string, args ...any) {
	s.announcer.Announce(s.table, fmt.Sprintf(format, args...))
}

func (s *Session) ticks(n int) time.Duration {
	return time.Duration(n) * s.tickEvery
}

// tick blocks for one tick interval, handling at most one queued command
// in the meantime. Commands never block the loop; they are applied here,
// inside the loop goroutine.
func (s *Session) tick() {
	fired := make(chan struct{})
	t := s.clock.AfterFunc(s.tickEvery, func() { close(fired) })
	defer t.Stop()
	select {
	case cmd := <-s.commands:
		s.dispatch(cmd)
	case <-fired:
	}
}

// pause waits d without going deaf to commands. Skipped when stopping.
func (s *Session) pause(d time.Duration) {
	start := s.clock.Now()
	for s.clock.Now().Sub(start) < d && !s.stopping() {
		s.tick()
	}
}

// dispatch applies a command outside a player's turn window.
func (s *Session) dispatch(cmd command) {
	switch cmd.kind {
	case cmdJoin:
		seat, err := s.seating.Join(cmd.player, cmd.seat)
		if err == nil {
			s.announce("%s sits at seat %d.", cmd.player, seat)
		}
		cmd.respond(seat, err)
	case cmdLeave:
		if !s.seating.Leave(cmd.player) {
			cmd.respond(0, game.ErrNotSeated)
			return
		}
		s.announce("%s leaves the table.", cmd.player)
		if s.seating.Empty() {
			s.logger.Info("last player left, stopping after this round")
			s.stopFlag.Store(true)
		}
		cmd.respond(0, nil)
	case cmdBet:
		cmd.respond(0, s.handleBet(cmd.player, cmd.amount))
	case cmdRepeatBet:
		last, ok := s.lastBets[cmd.player]
		if !ok {
			cmd.respond(0, game.ErrNoPreviousBet)
			return
		}
		cmd.respond(0, s.handleBet(cmd.player, last))
	case cmdTurn:
		// Not this player's turn (or no turn in progress at all).
		cmd.respond(0, game.ErrIllegalAction)
	}
}

// handleBet validates and records a bet. Validation order: seat,
// account, funds, range, betting window. The bet replaces any prior bet
// by the same player this round; balances stay untouched until
// settlement.
func (s *Session) handleBet(player game.PlayerID, amount int) error {
	if _, seated := s.seating.SeatOf(player); !seated {
		return game.ErrNotSeated
	}
	if !s.ledger.AccountExists(player) {
		return ledger.ErrNoAccount
	}
	if !s.ledger.CanSpend(player, amount) {
		return ledger.ErrInsufficientFunds
	}
	if amount < s.cfg.MinBet || amount > s.cfg.MaxBet {
		return game.ErrBetOutOfRange
	}
	st := s.Status()
	if st != StatusAwaitingBets && st != StatusActiveBets {
		return game.ErrBettingClosed
	}

	if _, repeat := s.bets[player]; !repeat {
		s.betOrder = append(s.betOrder, player)
	}
	s.bets[player] = amount
	if _, ok := s.snapshots[player]; !ok {
		if balance, err := s.ledger.Balance(player); err == nil {
			s.snapshots[player] = balance
		}
	}
	s.betReady = true
	s.setStatus(StatusActiveBets)

	balance, _ := s.ledger.Balance(player)
	s.announce("Bet %d accepted, dealing soon. %s's balance is: %d", amount, player, balance)
	return nil
}

// run is the session control loop. One round per iteration; stop
// requests are honored at loop boundaries so settlement is never cut
// short.
func (s *Session) run() {
	defer close(s.done)
	defer s.setStatus(StatusStopped)
	s.logger.Info("table opened")

	for {
		if !s.awaitBets() {
			break
		}
		if !s.collectBets() {
			break
		}
		s.playRound()
		s.resetRound()
		if s.stopping() {
			break
		}
	}
	s.setStatus(StatusStopping)
	s.finish()
}

// awaitBets waits for a first bet, closing the table when none arrives
// within the activity timeout. Returns false to terminate.
func (s *Session) awaitBets() bool {
	s.setStatus(StatusAwaitingBets)
	s.announce("Dealer ready! Place your bets now please.")
	start := s.clock.Now()
	limit := s.ticks(s.cfg.ActivityTimeout)
	for {
		if s.stopping() {
			return false
		}
		if len(s.bets) > 0 {
			return true
		}
		if s.clock.Now().Sub(start) >= limit {
			s.announce("Sorry, you took too long to bet! Closing table.")
			s.logger.Info("activity timeout reached")
			return false
		}
		s.tick()
	}
}

// collectBets runs the betting countdown, announcing the remaining time
// once per tick while the ready flag is set. Returns false to terminate.
func (s *Session) collectBets() bool {
	start := s.clock.Now()
	limit := s.ticks(s.cfg.BetTimeout)
	for {
		if s.stopping() {
			return false
		}
		remaining := limit - s.clock.Now().Sub(start)
		if remaining <= 0 {
			return true
		}
		if s.betReady {
			s.announce("Betting ends in %d seconds.", int((remaining+s.tickEvery-1)/s.tickEvery))
			s.betReady = false
		}
		s.tick()
	}
}

// playRound runs one full round: deal, player turns, dealer resolution,
// settlement.
func (s *Session) playRound() {
	roundID := uuid.NewString()
	logger := s.logger.With("round", roundID)
	s.setStatus(StatusDealing)

	shoe, err := s.newShoe()
	if err != nil {
		logger.Error("failed to build shoe", "error", err)
		s.announce("The shoe could not be prepared; round abandoned.")
		return
	}
	s.shoe = shoe
	s.announce("Shuffling and dealing...")

	if !s.deal(logger) {
		return
	}

	if s.dealer.Blackjack() {
		s.dealerBJs++
		logger.Debug("dealer blackjack")
		s.announce("Dealer Blackjack!!!")
		s.announce("Dealer's hand: %s", s.dealer)
		for _, player := range s.betOrder {
			for _, h := range s.hands[player] {
				if h.Blackjack() {
					h.MarkPush()
					s.announce("Push for %s.", player)
				} else {
					h.MarkLost()
					s.announce("Sorry %s, you lose.", player)
				}
			}
		}
		s.settle(logger)
		return
	}

	for _, player := range s.betOrder {
		if hs := s.hands[player]; len(hs) > 0 {
			s.playHand(player, hs[0], logger)
		}
	}

	s.finishRound(logger)
	s.settle(logger)
}

// deal builds the initial hands: two cards per betting player in bet
// order, then two to the dealer with the first concealed.
func (s *Session) deal(logger *log.Logger) bool {
	for _, player := range s.betOrder {
		h := game.NewHand(player, s.bets[player])
		if err := s.shoe.MoveCards(h, 2); err != nil {
			return s.abortDeal(logger, err)
		}
		s.hands[player] = []*game.Hand{h}
	}
	s.dealer = game.NewDealerHand()
	if err := s.shoe.MoveCards(s.dealer, 2); err != nil {
		return s.abortDeal(logger, err)
	}

	s.announce("Dealer's hand: %s", s.dealer.Concealed())
	for _, player := range s.betOrder {
		s.announce("%s's hand: %s", player, s.hands[player][0])
	}
	return true
}

// abortDeal abandons a round whose shoe ran dry before the deal
// completed. No bets were settled, so no balances moved.
func (s *Session) abortDeal(logger *log.Logger, err error) bool {
	logger.Error("shoe exhausted during deal", "error", err)
	s.announce("The shoe ran out of cards; round abandoned, no bets taken.")
	return false
}

// waitTurnInput blocks for one tick or until the active player submits
// a turn action. Other commands are dispatched in place.
func (s *Session) waitTurnInput(player game.PlayerID) (command, bool) {
	fired := make(chan struct{})
	t := s.clock.AfterFunc(s.tickEvery, func() { close(fired) })
	defer t.Stop()
	select {
	case cmd := <-s.commands:
		if cmd.kind == cmdTurn && cmd.player == player {
			return cmd, true
		}
		s.dispatch(cmd)
		return command{}, false
	case <-fired:
		return command{}, false
	}
}

// playHand runs the input window for one sub-hand. Blackjacks
// auto-resolve at double payout without prompting. No input before the
// window closes forces a stand. Hits reset the window; double, split,
// surrender and stand end the turn.
func (s *Session) playHand(player game.PlayerID, h *game.Hand, logger *log.Logger) {
	if h.Blackjack() {
		h.MarkBlackjackWin()
		s.blackjacks[h] = true
		s.playerBJs++
		logger.Debug("player blackjack", "player", player)
		s.announce("BLACKJACK! Congrats, %s.", player)
		return
	}

	s.setStatus(StatusPlayerTurn)
	s.announce("%s, you're up with %s! hit, stand, double, split or surrender?", player, h)
	start := s.clock.Now()
	window := s.ticks(s.cfg.ActiveDelay)

	for {
		if s.stopping() {
			s.announce("%s stands.", player)
			return
		}
		if s.clock.Now().Sub(start) >= window {
			s.announce("%s timed out.", player)
			s.announce("%s stands.", player)
			return
		}

		cmd, ok := s.waitTurnInput(player)
		if !ok {
			continue
		}

		switch cmd.action {
		case game.Stand:
			cmd.respond(0, nil)
			s.announce("%s stands.", player)
			return

		case game.Hit:
			cmd.respond(0, nil)
			if s.hit(player, h, logger) {
				return
			}
			start = s.clock.Now()

		case game.Double:
			if !h.Untouched() {
				cmd.respond(0, game.ErrIllegalAction)
				s.announce("Sorry %s, you can only double down on your initial two card hand.", player)
				continue
			}
			if !s.ledger.CanSpend(player, h.Bet()*2) {
				cmd.respond(0, ledger.ErrInsufficientFunds)
				s.announce("Not enough funds to double, %s. You can just hit instead.", player)
				continue
			}
			cmd.respond(0, nil)
			h.DoubleBet()
			s.announce("%s doubles down to %d.", player, h.Bet())
			s.hit(player, h, logger)
			return

		case game.Surrender:
			if !h.Untouched() {
				cmd.respond(0, game.ErrIllegalAction)
				s.announce("Sorry %s, you can only surrender your initial hand.", player)
				continue
			}
			cmd.respond(0, nil)
			h.MarkSurrendered()
			s.announce("%s surrenders and gets half their bet back.", player)
			return

		case game.Split:
			if !h.Splittable() {
				cmd.respond(0, game.ErrIllegalAction)
				s.announce("Sorry %s, that hand cannot be split.", player)
				continue
			}
			if !s.ledger.CanSpend(player, h.Bet()*2) {
				cmd.respond(0, ledger.ErrInsufficientFunds)
				s.announce("Not enough funds to split, %s.", player)
				continue
			}
			cmd.respond(0, nil)
			s.split(player, h, logger)
			return

		default:
			cmd.respond(0, game.ErrIllegalAction)
		}
	}
}

// hit draws one card into the hand. Returns true when the turn is over:
// the hand busted or reached twenty-one.
func (s *Session) hit(player game.PlayerID, h *game.Hand, logger *log.Logger) bool {
	card, err := s.shoe.Draw()
	if err != nil {
		logger.Error("shoe exhausted mid-turn", "error", err, "player", player)
		s.announce("The shoe is out of cards; %s stands.", player)
		return true
	}
	h.AddCard(card)
	s.announce("%s draws %s, now %s", player, card, h)
	if h.Busted() {
		s.announce("%s busted with %d.", player, h.High())
		h.MarkLost()
		return true
	}
	return h.High() == 21
}

// split turns one two-card hand into two one-card hands, each carrying
// the original bet and one fresh card, then plays the newest sub-hand
// first, depth first.
func (s *Session) split(player game.PlayerID, h *game.Hand, logger *log.Logger) {
	cards := h.Cards()
	first := game.NewHand(player, h.Bet())
	first.AddCard(cards[0])
	second := game.NewHand(player, h.Bet())
	second.AddCard(cards[1])
	if err := s.shoe.MoveCards(first, 1); err != nil {
		logger.Error("shoe exhausted during split", "error", err, "player", player)
		s.announce("The shoe is out of cards; %s stands.", player)
		return
	}
	if err := s.shoe.MoveCards(second, 1); err != nil {
		logger.Error("shoe exhausted during split", "error", err, "player", player)
		s.announce("The shoe is out of cards; %s stands.", player)
		return
	}

	hs := s.hands[player]
	for i, have := range hs {
		if have == h {
			replaced := make([]*game.Hand, 0, len(hs)+1)
			replaced = append(replaced, hs[:i]...)
			replaced = append(replaced, first, second)
			replaced = append(replaced, hs[i+1:]...)
			s.hands[player] = replaced
			break
		}
	}

	s.announce("%s splits: %s and %s", player, first, second)
	logger.Debug("hand split", "player", player, "bet", first.Bet())
	s.playHand(player, second, logger)
	s.playHand(player, first, logger)
}

// finishRound reveals and resolves the dealer's hand, then compares it
// against every hand still carrying a positive bet.
func (s *Session) finishRound(logger *log.Logger) {
	s.setStatus(StatusFinishing)
	s.announce("Revealing dealer's hand: %s", s.dealer)

	var contenders []*game.Hand
	for _, player := range s.betOrder {
		for _, h := range s.hands[player] {
			if h.Bet() > 0 && !s.blackjacks[h] {
				contenders = append(contenders, h)
			}
		}
	}

	if len(contenders) == 0 {
		if s.playerBlackjacksThisRound() == 0 {
			s.announce("Sorry table, looks like the house won this round!")
		} else {
			s.announce("Nice blackjacks, but the rest of you are losers!")
		}
		return
	}

	for s.dealer.High() < 17 {
		s.pause(s.ticks(s.cfg.DealerPause))
		card, err := s.shoe.Draw()
		if err != nil {
			logger.Error("shoe exhausted during dealer draw", "error", err)
			break
		}
		s.announce("Dealer hits.")
		s.dealer.AddCard(card)
		s.announce("Dealer's hand: %s", s.dealer)
	}

	if s.dealer.Busted() {
		s.announce("Dealer busts with %d. Everyone's a winner! Unless you busted...", s.dealer.High())
		return
	}
	s.announce("Dealer stands at %d.", s.dealer.High())

	for _, h := range contenders {
		player := h.Owner()
		switch {
		case s.dealer.High() > h.High():
			s.announce("Sorry %s, but you lose with %d!", player, h.High())
			h.MarkLost()
		case h.High() > s.dealer.High():
			s.announce("Congrats %s, you win with %d!", player, h.High())
		default:
			s.announce("Push at %d, take back your bet, %s.", h.High(), player)
			h.MarkPush()
		}
	}
}

func (s *Session) playerBlackjacksThisRound() int {
	return len(s.blackjacks)
}

// settle moves every hand's result through the ledger in bet order, one
// fixed reproducible pass, then announces the new balances. A ledger
// fault skips the affected hand and keeps going; the order makes a
// partial failure inspectable.
func (s *Session) settle(logger *log.Logger) {
	for _, player := range s.betOrder {
		for _, h := range s.hands[player] {
			bet := h.Bet()
			var err error
			switch {
			case bet > 0:
				err = s.ledger.Deposit(player, bet)
			case bet < 0:
				err = s.ledger.Withdraw(player, -bet)
			}
			if err != nil {
				logger.Error("ledger settlement failed", "error", err, "player", player, "bet", bet)
			}
		}
		if balance, err := s.ledger.Balance(player); err == nil {
			s.announce("%s, your new balance is: %d", player, balance)
		}
	}
	s.handsPlayed++
	logger.Debug("round settled", "hands_played", s.handsPlayed)
}

// resetRound archives the bets for repeat convenience and clears all
// round-scoped state.
func (s *Session) resetRound() {
	for player, bet := range s.bets {
		s.lastBets[player] = bet
	}
	s.bets = make(map[game.PlayerID]int)
	s.betOrder = nil
	s.hands = make(map[game.PlayerID][]*game.Hand)
	s.blackjacks = make(map[*game.Hand]bool)
	s.dealer = nil
	s.shoe = nil
	s.betReady = false
}

// finish announces the session summary. A table that never completed a
// round closes silently.
func (s *Session) finish() {
	s.logger.Info("table closed", "hands_played", s.handsPlayed,
		"player_blackjacks", s.playerBJs, "dealer_blackjacks", s.dealerBJs)
	if s.handsPlayed == 0 {
		return
	}

	s.announce("Blackjack ended. Hands played: %d. Player blackjacks: %d. Dealer blackjacks: %d.",
		s.handsPlayed, s.playerBJs, s.dealerBJs)

	var winner, loser game.PlayerID
	var best, worst int
	for player, snapshot := range s.snapshots {
		balance, err := s.ledger.Balance(player)
		if err != nil {
			continue
		}
		delta := balance - snapshot
		if winner == "" || delta > best {
			winner, best = player, delta
		}
		if loser == "" || delta < worst {
			loser, worst = player, delta
		}
	}
	if winner != "" && best > 0 {
		s.announce("Biggest winner: %s (%+d).", winner, best)
	}
	if loser != "" && worst < 0 {
		s.announce("Biggest loser: %s (%+d).", loser, worst)
	}
}
