package game

import (
	"fmt"
	"strings"

	"github.com/omnifarius/blackjack/internal/deck"
)

// Hand is an ordered set of cards owned by one player (or the dealer)
// within a round, together with the bet riding on it. The bet is signed:
// positive is the amount at risk, negative a loss already applied, zero
// a push. Low and high values are maintained incrementally on AddCard
// rather than recomputed per read.
type Hand struct {
	owner    PlayerID
	isDealer bool
	cards    []deck.Card

	bet       int
	low       int
	high      int
	hasAce    bool
	blackjack bool
}

// NewHand creates an empty hand for a player with the given bet at risk.
func NewHand(owner PlayerID, bet int) *Hand {
	return &Hand{owner: owner, bet: bet}
}

// NewDealerHand creates the dealer's hand. It carries no bet.
func NewDealerHand() *Hand {
	return &Hand{isDealer: true}
}

// AddCard appends a card and updates the derived values.
func (h *Hand) AddCard(c deck.Card) {
	h.cards = append(h.cards, c)
	h.low += c.Value()
	if c.IsAce() {
		h.hasAce = true
	}
	if h.hasAce && h.low+10 <= 21 {
		h.high = h.low + 10
	} else {
		h.high = h.low
	}
	if len(h.cards) == 2 && h.high == 21 {
		h.blackjack = true
	}
}

// Owner returns the owning player. Empty for the dealer's hand.
func (h *Hand) Owner() PlayerID { return h.owner }

// IsDealer reports whether this is the dealer's hand.
func (h *Hand) IsDealer() bool { return h.isDealer }

// Cards returns the cards in deal order.
func (h *Hand) Cards() []deck.Card { return h.cards }

// Low returns the hard value (every Ace counted as one).
func (h *Hand) Low() int { return h.low }

// High returns the best value: low plus ten if an Ace can be soft
// without busting, otherwise equal to low.
func (h *Hand) High() int { return h.high }

// HasAce reports whether the hand holds at least one Ace.
func (h *Hand) HasAce() bool { return h.hasAce }

// Blackjack reports whether the hand is a natural: exactly two cards
// totaling twenty-one.
func (h *Hand) Blackjack() bool { return h.blackjack }

// Busted reports whether even the best value exceeds twenty-one.
func (h *Hand) Busted() bool { return h.high > 21 }

// Splittable reports whether the hand may be split: exactly two cards of
// equal rank, or two ten-valued cards.
func (h *Hand) Splittable() bool {
	if len(h.cards) != 2 {
		return false
	}
	a, b := h.cards[0].Rank, h.cards[1].Rank
	return a == b || (a >= deck.Ten && b >= deck.Ten)
}

// Untouched reports whether the hand still holds only its first two
// cards, the state double and surrender require.
func (h *Hand) Untouched() bool { return len(h.cards) == 2 }

// Bet returns the signed bet riding on the hand.
func (h *Hand) Bet() int { return h.bet }

// DoubleBet doubles the amount at risk.
func (h *Hand) DoubleBet() { h.bet *= 2 }

// MarkLost flips the bet negative, recording a loss to settle.
func (h *Hand) MarkLost() {
	if h.bet > 0 {
		h.bet = -h.bet
	}
}

// MarkPush zeroes the bet; settlement moves nothing.
func (h *Hand) MarkPush() { h.bet = 0 }

// MarkBlackjackWin doubles the bet so settlement pays two to one.
func (h *Hand) MarkBlackjackWin() { h.bet *= 2 }

// MarkSurrendered records a surrender: half the original bet is lost.
func (h *Hand) MarkSurrendered() { h.bet = -(h.bet / 2) }

// String renders the full hand with its value, e.g. "A♠ K♦ (11/21)".
// Soft hands show both values.
func (h *Hand) String() string {
	parts := make([]string, len(h.cards))
	for i, c := range h.cards {
		parts[i] = c.String()
	}
	return fmt.Sprintf("%s (%s)", strings.Join(parts, " "), h.valueString())
}

// Concealed renders the hand with the first card hidden, the way the
// dealer's hand is shown before resolution.
func (h *Hand) Concealed() string {
	parts := make([]string, len(h.cards))
	showing := 0
	showingAce := false
	for i, c := range h.cards {
		if i == 0 {
			parts[i] = "??"
			continue
		}
		parts[i] = c.String()
		showing += c.Value()
		if c.IsAce() {
			showingAce = true
		}
	}
	value := fmt.Sprintf("%d", showing)
	if showingAce && showing+10 <= 21 {
		value = fmt.Sprintf("%d/%d", showing, showing+10)
	}
	return fmt.Sprintf("%s (showing %s)", strings.Join(parts, " "), value)
}

func (h *Hand) valueString() string {
	if h.hasAce && h.high != h.low {
		return fmt.Sprintf("%d/%d", h.low, h.high)
	}
	return fmt.Sprintf("%d", h.high)
}
