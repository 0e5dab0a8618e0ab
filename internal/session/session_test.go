package session

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/omnifarius/blackjack/internal/deck"
	"github.com/omnifarius/blackjack/internal/game"
	"github.com/omnifarius/blackjack/internal/ledger"
)

// recorder captures announcements for assertions.
type recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recorder) Announce(_ game.TableID, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, text)
}

func (r *recorder) contains(substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.msgs {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func (r *recorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

func waitForMessage(t *testing.T, rec *recorder, substr string) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if rec.contains(substr) {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q, messages: %v", substr, rec.messages())
}

func waitDone(t *testing.T, sess *Session) {
	t.Helper()
	select {
	case <-sess.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("session did not terminate")
	}
}

func testConfig() Config {
	// Tick counts are generous because tests tick every millisecond.
	return Config{
		MinBet:          10,
		MaxBet:          1000,
		DeckCount:       1,
		ActivityTimeout: 5000,
		BetTimeout:      100,
		ActiveDelay:     5000,
		DealerPause:     0,
	}
}

// newTestSession builds a running session dealing the given rigged cards
// each round, with every named player registered and seated.
func newTestSession(t *testing.T, cfg Config, cards string, players ...game.PlayerID) (*Session, *recorder, *ledger.Memory) {
	t.Helper()
	bank := ledger.NewMemory(nil)
	rec := &recorder{}
	logger := log.New(io.Discard)

	opts := []Option{WithTickInterval(time.Millisecond)}
	if cards != "" {
		opts = append(opts, WithShoeFunc(func() (*deck.Shoe, error) {
			return deck.NewShoeFromCards(deck.MustParseCards(cards)...), nil
		}))
	}
	sess := NewSession("lobby", cfg, bank, rec, logger, opts...)
	for _, player := range players {
		_, err := bank.Register(player)
		require.NoError(t, err)
		_, err = sess.Join(player, 0)
		require.NoError(t, err)
	}
	sess.Start()
	t.Cleanup(func() {
		sess.Stop()
		select {
		case <-sess.Done():
		case <-time.After(10 * time.Second):
		}
	})
	return sess, rec, bank
}

func balanceOf(t *testing.T, bank *ledger.Memory, player game.PlayerID) int {
	t.Helper()
	balance, err := bank.Balance(player)
	require.NoError(t, err)
	return balance
}

func TestSingleHandWin(t *testing.T) {
	// alice: T9 (19), dealer: K7 (17). Stand wins even money.
	sess, rec, bank := newTestSession(t, testConfig(), "Th9dKs7c", "alice")

	require.NoError(t, sess.SubmitBet("alice", 100))
	waitForMessage(t, rec, "alice, you're up with")
	require.NoError(t, sess.SubmitTurnAction("alice", game.Stand))

	waitForMessage(t, rec, "alice, your new balance is: 1100")
	require.Equal(t, 1100, balanceOf(t, bank, "alice"))
	require.True(t, rec.contains("Dealer stands at 17."))
}

func TestSingleHandBust(t *testing.T) {
	// alice: T6 (16), hit draws 9 for 25.
	sess, rec, bank := newTestSession(t, testConfig(), "Th6dKs7c9h", "alice")

	require.NoError(t, sess.SubmitBet("alice", 100))
	waitForMessage(t, rec, "alice, you're up with")
	require.NoError(t, sess.SubmitTurnAction("alice", game.Hit))

	waitForMessage(t, rec, "alice busted with 25.")
	waitForMessage(t, rec, "alice, your new balance is: 900")
	require.Equal(t, 900, balanceOf(t, bank, "alice"))
	require.True(t, rec.contains("house won this round"))
}

func TestPlayerBlackjackPaysDouble(t *testing.T) {
	sess, rec, bank := newTestSession(t, testConfig(), "AsKdKs7c", "alice")

	require.NoError(t, sess.SubmitBet("alice", 100))
	waitForMessage(t, rec, "BLACKJACK! Congrats, alice.")
	waitForMessage(t, rec, "alice, your new balance is: 1200")
	require.Equal(t, 1200, balanceOf(t, bank, "alice"))
	require.True(t, rec.contains("Nice blackjacks"))
	// The dealer never draws with no contenders left.
	require.False(t, rec.contains("Dealer hits."))
}

func TestDealerBlackjackBeatsOrdinaryHand(t *testing.T) {
	sess, rec, bank := newTestSession(t, testConfig(), "Th9dAsKs", "alice")

	require.NoError(t, sess.SubmitBet("alice", 100))
	waitForMessage(t, rec, "Dealer Blackjack!!!")
	waitForMessage(t, rec, "alice, your new balance is: 900")
	require.Equal(t, 900, balanceOf(t, bank, "alice"))
	require.True(t, rec.contains("Sorry alice, you lose."))
}

func TestDealerBlackjackPushesPlayerBlackjack(t *testing.T) {
	sess, rec, bank := newTestSession(t, testConfig(), "AsKdAhKc", "alice")

	require.NoError(t, sess.SubmitBet("alice", 100))
	waitForMessage(t, rec, "Push for alice.")
	waitForMessage(t, rec, "alice, your new balance is: 1000")
	require.Equal(t, 1000, balanceOf(t, bank, "alice"))
}

func TestDoubleDown(t *testing.T) {
	// alice: 5+6 (11), doubles, draws T for 21 against dealer 17.
	sess, rec, bank := newTestSession(t, testConfig(), "5h6dKs7cTh", "alice")

	require.NoError(t, sess.SubmitBet("alice", 100))
	waitForMessage(t, rec, "alice, you're up with")
	require.NoError(t, sess.SubmitTurnAction("alice", game.Double))

	waitForMessage(t, rec, "alice doubles down to 200.")
	waitForMessage(t, rec, "alice, your new balance is: 1200")
	require.Equal(t, 1200, balanceOf(t, bank, "alice"))
}

func TestDoubleRequiresFunds(t *testing.T) {
	sess, rec, bank := newTestSession(t, testConfig(), "5h6dKs7cTh", "alice")
	require.NoError(t, bank.Withdraw("alice", 850)) // leaves 150

	require.NoError(t, sess.SubmitBet("alice", 100))
	waitForMessage(t, rec, "alice, you're up with")

	err := sess.SubmitTurnAction("alice", game.Double)
	require.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	waitForMessage(t, rec, "Not enough funds to double, alice.")

	// The turn is still open; hitting to 21 beats the dealer's 17.
	require.NoError(t, sess.SubmitTurnAction("alice", game.Hit))
	waitForMessage(t, rec, "alice, your new balance is: 250")
	require.Equal(t, 250, balanceOf(t, bank, "alice"))
}

func TestDoubleOnlyOnInitialHand(t *testing.T) {
	// alice: 2+3, hits a 4, then tries to double on three cards.
	sess, rec, _ := newTestSession(t, testConfig(), "2h3dKs7c4h5s", "alice")

	require.NoError(t, sess.SubmitBet("alice", 100))
	waitForMessage(t, rec, "alice, you're up with")
	require.NoError(t, sess.SubmitTurnAction("alice", game.Hit))

	err := sess.SubmitTurnAction("alice", game.Double)
	require.ErrorIs(t, err, game.ErrIllegalAction)

	require.NoError(t, sess.SubmitTurnAction("alice", game.Hit)) // 5s makes 14
	require.NoError(t, sess.SubmitTurnAction("alice", game.Stand))
	waitForMessage(t, rec, "alice, your new balance is: 900")
}

func TestSurrender(t *testing.T) {
	sess, rec, bank := newTestSession(t, testConfig(), "Th6dKs7c", "alice")

	require.NoError(t, sess.SubmitBet("alice", 100))
	waitForMessage(t, rec, "alice, you're up with")
	require.NoError(t, sess.SubmitTurnAction("alice", game.Surrender))

	waitForMessage(t, rec, "alice surrenders and gets half their bet back.")
	waitForMessage(t, rec, "alice, your new balance is: 950")
	require.Equal(t, 950, balanceOf(t, bank, "alice"))
}

func TestSplitPlaysBothHands(t *testing.T) {
	// alice: 8+8 split into 8+T (18) and 8+9 (17) against dealer 17.
	// The 18 wins, the 17 pushes.
	sess, rec, bank := newTestSession(t, testConfig(), "8h8dKs7cTh9c", "alice")

	require.NoError(t, sess.SubmitBet("alice", 100))
	waitForMessage(t, rec, "alice, you're up")
	require.NoError(t, sess.SubmitTurnAction("alice", game.Split))
	waitForMessage(t, rec, "alice splits:")

	// The newest sub-hand (8♦ 9♣) is played before the first (8♥ T♥).
	waitForMessage(t, rec, "alice, you're up with 8♦ 9♣ (17)!")
	require.NoError(t, sess.SubmitTurnAction("alice", game.Stand))
	waitForMessage(t, rec, "alice, you're up with 8♥ T♥ (18)!")
	require.NoError(t, sess.SubmitTurnAction("alice", game.Stand))

	waitForMessage(t, rec, "alice, your new balance is: 1100")
	require.Equal(t, 1100, balanceOf(t, bank, "alice"))
	require.True(t, rec.contains("Congrats alice, you win with 18!"))
	require.True(t, rec.contains("Push at 17, take back your bet, alice."))
}

func TestSplitRequiresPair(t *testing.T) {
	sess, rec, _ := newTestSession(t, testConfig(), "Th6dKs7c", "alice")

	require.NoError(t, sess.SubmitBet("alice", 100))
	waitForMessage(t, rec, "alice, you're up with")

	err := sess.SubmitTurnAction("alice", game.Split)
	require.ErrorIs(t, err, game.ErrIllegalAction)
	waitForMessage(t, rec, "that hand cannot be split")

	require.NoError(t, sess.SubmitTurnAction("alice", game.Stand))
	waitForMessage(t, rec, "alice, your new balance is: 900")
}

func TestTwoPlayersInBetOrder(t *testing.T) {
	// alice: T9 (19), bob: 6T (16) hits a 2 for 18; dealer 17.
	sess, rec, bank := newTestSession(t, testConfig(), "Th9d6hTdKs7c2s", "alice", "bob")

	require.NoError(t, sess.SubmitBet("alice", 100))
	require.NoError(t, sess.SubmitBet("bob", 50))

	waitForMessage(t, rec, "alice, you're up with")
	// Acting out of turn is rejected without disturbing alice's window.
	require.ErrorIs(t, sess.SubmitTurnAction("bob", game.Hit), game.ErrIllegalAction)
	require.NoError(t, sess.SubmitTurnAction("alice", game.Stand))

	waitForMessage(t, rec, "bob, you're up with")
	require.NoError(t, sess.SubmitTurnAction("bob", game.Hit))
	require.NoError(t, sess.SubmitTurnAction("bob", game.Stand))

	waitForMessage(t, rec, "bob, your new balance is: 1050")
	require.Equal(t, 1100, balanceOf(t, bank, "alice"))
	require.Equal(t, 1050, balanceOf(t, bank, "bob"))
}

func TestTurnTimeoutForcesStand(t *testing.T) {
	cfg := testConfig()
	cfg.ActiveDelay = 50
	sess, rec, bank := newTestSession(t, cfg, "Th9dKs7c", "alice")

	require.NoError(t, sess.SubmitBet("alice", 100))
	waitForMessage(t, rec, "alice timed out.")
	waitForMessage(t, rec, "alice stands.")
	waitForMessage(t, rec, "alice, your new balance is: 1100")
	require.Equal(t, 1100, balanceOf(t, bank, "alice"))
}

func TestBetValidation(t *testing.T) {
	sess, rec, bank := newTestSession(t, testConfig(), "Th9dKs7c", "alice")

	require.ErrorIs(t, sess.SubmitBet("ghost", 100), game.ErrNotSeated)

	_, err := sess.Join("carol", 0)
	require.NoError(t, err)
	require.ErrorIs(t, sess.SubmitBet("carol", 100), ledger.ErrNoAccount)

	require.ErrorIs(t, sess.SubmitBet("alice", 1001), ledger.ErrInsufficientFunds)

	require.NoError(t, bank.Deposit("alice", 5000))
	require.ErrorIs(t, sess.SubmitBet("alice", 1001), game.ErrBetOutOfRange)
	require.ErrorIs(t, sess.SubmitBet("alice", 9), game.ErrBetOutOfRange)

	require.NoError(t, sess.SubmitBet("alice", 100))
	waitForMessage(t, rec, "alice, you're up with")
	require.ErrorIs(t, sess.SubmitBet("alice", 100), game.ErrBettingClosed)
	require.NoError(t, sess.SubmitTurnAction("alice", game.Stand))
}

func TestBetReplacesPriorBet(t *testing.T) {
	sess, rec, bank := newTestSession(t, testConfig(), "Th9dKs7c", "alice")

	require.NoError(t, sess.SubmitBet("alice", 50))
	require.NoError(t, sess.SubmitBet("alice", 100))
	waitForMessage(t, rec, "alice, you're up with")
	require.NoError(t, sess.SubmitTurnAction("alice", game.Stand))

	// Only the replacement bet settles.
	waitForMessage(t, rec, "alice, your new balance is: 1100")
	require.Equal(t, 1100, balanceOf(t, bank, "alice"))
}

func TestRepeatBet(t *testing.T) {
	sess, rec, bank := newTestSession(t, testConfig(), "Th9dKs7c", "alice")

	require.ErrorIs(t, sess.RepeatBet("alice"), game.ErrNoPreviousBet)

	require.NoError(t, sess.SubmitBet("alice", 100))
	waitForMessage(t, rec, "alice, you're up with")
	require.NoError(t, sess.SubmitTurnAction("alice", game.Stand))
	waitForMessage(t, rec, "alice, your new balance is: 1100")

	// Next round, same cards: repeat the 100 and win again.
	waitForMessage(t, rec, "Dealer ready! Place your bets now please.")
	require.NoError(t, sess.RepeatBet("alice"))
	waitForMessage(t, rec, "alice, your new balance is: 1200")
	require.Equal(t, 1200, balanceOf(t, bank, "alice"))
}

func TestStopMidTurnForcesStandAndSettles(t *testing.T) {
	sess, rec, bank := newTestSession(t, testConfig(), "Th9dKs7c", "alice")

	require.NoError(t, sess.SubmitBet("alice", 100))
	waitForMessage(t, rec, "alice, you're up with")
	sess.Stop()

	waitDone(t, sess)
	require.True(t, rec.contains("alice stands."))
	require.Equal(t, 1100, balanceOf(t, bank, "alice"))
	require.True(t, rec.contains("Blackjack ended."))
	require.True(t, rec.contains("Biggest winner: alice (+100)."))
	require.Equal(t, StatusStopped, sess.Status())
}

func TestLastPlayerLeavingStopsSession(t *testing.T) {
	sess, rec, _ := newTestSession(t, testConfig(), "", "alice")

	require.NoError(t, sess.Leave("alice"))
	waitDone(t, sess)
	require.True(t, rec.contains("alice leaves the table."))
	// No hands were played, so the table closes without a summary.
	require.False(t, rec.contains("Blackjack ended."))

	require.ErrorIs(t, sess.SubmitBet("alice", 100), ErrSessionClosed)
	_, err := sess.Join("bob", 0)
	require.ErrorIs(t, err, ErrSessionClosed)
}

func TestLeaveNotSeated(t *testing.T) {
	sess, _, _ := newTestSession(t, testConfig(), "", "alice")
	require.ErrorIs(t, sess.Leave("ghost"), game.ErrNotSeated)
}

func TestJoinWhileRunning(t *testing.T) {
	sess, rec, _ := newTestSession(t, testConfig(), "", "alice")

	seat, err := sess.Join("bob", 3)
	require.NoError(t, err)
	require.Equal(t, 3, seat)
	waitForMessage(t, rec, "bob sits at seat 3.")

	_, err = sess.Join("carol", 3)
	require.ErrorIs(t, err, game.ErrSeatOccupied)
}

func TestActivityTimeoutClosesTable(t *testing.T) {
	cfg := testConfig()
	cfg.ActivityTimeout = 50
	sess, rec, _ := newTestSession(t, cfg, "", "alice")

	waitDone(t, sess)
	require.True(t, rec.contains("Sorry, you took too long to bet! Closing table."))
	require.False(t, rec.contains("Blackjack ended."))
}

func TestDealerBustPaysRemainingHands(t *testing.T) {
	// Dealer 6+T (16) must draw, pulls a K for 26 and busts.
	sess, rec, bank := newTestSession(t, testConfig(), "Th9d6sTcKh", "alice")

	require.NoError(t, sess.SubmitBet("alice", 100))
	waitForMessage(t, rec, "alice, you're up with")
	require.NoError(t, sess.SubmitTurnAction("alice", game.Stand))

	waitForMessage(t, rec, "Dealer busts with 26.")
	waitForMessage(t, rec, "alice, your new balance is: 1100")
	require.Equal(t, 1100, balanceOf(t, bank, "alice"))
	require.True(t, rec.contains("Dealer hits."))
}

func TestExhaustedShoeAbandonsRound(t *testing.T) {
	// One card cannot cover the deal; the round aborts with no ledger
	// movement and the table keeps running.
	sess, rec, bank := newTestSession(t, testConfig(), "Th", "alice")

	require.NoError(t, sess.SubmitBet("alice", 100))
	waitForMessage(t, rec, "round abandoned, no bets taken.")
	require.Equal(t, 1000, balanceOf(t, bank, "alice"))

	waitForMessage(t, rec, "Dealer ready! Place your bets now please.")
	require.NotEqual(t, StatusStopped, sess.Status())
}

func TestActivityTimeoutWithMockClock(t *testing.T) {
	clock := quartz.NewMock(t)
	bank := ledger.NewMemory(nil)
	rec := &recorder{}
	sess := NewSession("lobby", DefaultConfig(), bank, rec, log.New(io.Discard),
		WithClock(clock))

	_, err := bank.Register("alice")
	require.NoError(t, err)
	_, err = sess.Join("alice", 0)
	require.NoError(t, err)
	sess.Start()

	ctx := context.Background()
	for i := 0; i < 200; i++ {
		select {
		case <-sess.Done():
			require.True(t, rec.contains("Closing table."))
			return
		default:
		}
		clock.Advance(time.Second).MustWait(ctx)
		time.Sleep(time.Millisecond)
	}
	t.Fatal("session did not close under the mock clock")
}
